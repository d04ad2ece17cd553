// Copyright (C) 2025, Stable Foundation Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vault

import "github.com/luxfi/geth/common"

// Typed records handed to the event sink on every completed mutation.

type DepositEvent struct {
	User            common.Address
	CollateralIn    uint64
	SyntheticMinted uint64
	Fee             uint64
	Timestamp       int64
}

type WithdrawalInitiatedEvent struct {
	User        common.Address
	Amount      uint64
	RequestTime int64
}

type WithdrawalCompletedEvent struct {
	User          common.Address
	Burned        uint64
	CollateralOut uint64
	RedemptionFee uint64
	Timestamp     int64
}

type PausedEvent struct {
	Authority common.Address
	Paused    bool
	Timestamp int64
}

type AuthorityUpdatedEvent struct {
	OldAuthority common.Address
	NewAuthority common.Address
	Timestamp    int64
}

type FeesWithdrawnEvent struct {
	Authority common.Address
	Amount    uint64
	Timestamp int64
}

type TreasuryDepositEvent struct {
	Authority common.Address
	Amount    uint64
	Timestamp int64
}

type TreasuryWithdrawalEvent struct {
	Authority common.Address
	Amount    uint64
	Timestamp int64
}

type MetadataCreatedEvent struct {
	Name      string
	Symbol    string
	URI       string
	Timestamp int64
}
