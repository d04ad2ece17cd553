// Copyright (C) 2025, Stable Foundation Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vault

import "github.com/stablefdn/usdx/token"

// DepositFee computes the progressive tiered fee on a deposit: the
// portion below FeeTier1Threshold at the tier-1 rate, anything above
// it at the lower tier-2 rate. Division truncates toward zero, so the
// fee never exceeds the amount for sub-100% rates.
func DepositFee(amount uint64) (uint64, error) {
	if amount < FeeTier1Threshold {
		return feeAt(amount, FeeTier1Bps)
	}

	tier1, err := feeAt(FeeTier1Threshold, FeeTier1Bps)
	if err != nil {
		return 0, err
	}
	tier2, err := feeAt(amount-FeeTier1Threshold, FeeTier2Bps)
	if err != nil {
		return 0, err
	}
	fee, ok := token.CheckedAdd(tier1, tier2)
	if !ok {
		return 0, ErrOverflow
	}
	return fee, nil
}

// RedemptionFee computes the flat redemption fee on a settled
// withdrawal.
func RedemptionFee(amount uint64) (uint64, error) {
	return feeAt(amount, RedemptionFeeBps)
}

func feeAt(amount, bps uint64) (uint64, error) {
	scaled, ok := token.CheckedMul(amount, bps)
	if !ok {
		return 0, ErrOverflow
	}
	return scaled / bpsDenominator, nil
}
