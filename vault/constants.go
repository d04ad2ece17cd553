// Copyright (C) 2025, Stable Foundation Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vault

// Protocol parameters. Amounts are in base units at 6 decimals.
const (
	// Decimals is the precision of both the collateral and the
	// synthetic token.
	Decimals uint8 = 6

	// MinDeposit is 100 units.
	MinDeposit uint64 = 100_000_000
	// MaxDeposit is 100M units.
	MaxDeposit uint64 = 100_000_000_000_000
	// MaxWithdrawal is 100M units.
	MaxWithdrawal uint64 = 100_000_000_000_000

	// WithdrawalDelay is the mandatory cool-down between requesting
	// and settling a withdrawal: 7 days in seconds.
	WithdrawalDelay int64 = 7 * 24 * 60 * 60

	// Deposit fee schedule, in basis points (1 bp = 0.01%). The first
	// FeeTier1Threshold of a deposit is charged at FeeTier1Bps, the
	// remainder at the lower FeeTier2Bps.
	FeeTier1Threshold uint64 = 500_000_000_000 // 500k units
	FeeTier1Bps       uint64 = 100             // 1.0%
	FeeTier2Bps       uint64 = 50              // 0.5%

	// RedemptionFeeBps is the flat fee on settled withdrawals.
	RedemptionFeeBps uint64 = 25 // 0.25%

	bpsDenominator uint64 = 10_000
)
