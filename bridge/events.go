// Copyright (C) 2025, Stable Foundation Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bridge

import "github.com/luxfi/geth/common"

// BridgedInEvent records a completed inbound mint from a verified
// counterparty attestation.
type BridgedInEvent struct {
	Recipient common.Address
	Amount    uint64
	Digest    [32]byte
	Timestamp int64
}

// BridgedOutEvent is what the off-chain relayer watches for: the burn
// happened here, delivery to the counterparty chain is its job.
type BridgedOutEvent struct {
	User        common.Address
	Amount      uint64
	Destination [20]byte
	Timestamp   int64
}

type BridgePausedEvent struct {
	Authority common.Address
	Paused    bool
	Timestamp int64
}

type BridgeAuthorityUpdatedEvent struct {
	OldAuthority common.Address
	NewAuthority common.Address
	Timestamp    int64
}
