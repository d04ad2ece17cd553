// Copyright (C) 2025, Stable Foundation Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bridge

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/luxfi/geth/common"
)

var (
	ErrPaused              = errors.New("bridge is paused")
	ErrAlreadyPaused       = errors.New("bridge is already paused")
	ErrNotPaused           = errors.New("bridge is not paused")
	ErrNotInitialized      = errors.New("bridge not initialized")
	ErrAlreadyInitialized  = errors.New("bridge already initialized")
	ErrUnauthorized        = errors.New("unauthorized authority")
	ErrAlreadyProcessed    = errors.New("attestation already processed")
	ErrZeroAmount          = errors.New("amount must be greater than zero")
	ErrBelowMinimum        = errors.New("amount below minimum transfer")
	ErrInsufficientBalance = errors.New("insufficient synthetic balance")
	ErrOverflow            = errors.New("arithmetic overflow")
)

// bridgeState is the bridge-side ledger. Its inbound/outbound counters
// are independent of the vault's supply counter even though both draw
// on the same token; there is no cross-component reconciliation.
type bridgeState struct {
	Authority            common.Address
	SyntheticMint        common.Address
	CounterpartyChain    uint16
	CounterpartyContract [32]byte
	TotalInboundMinted   uint64
	TotalOutboundBurned  uint64
	Paused               bool
	Initialized          bool
}

var bridgeStateKey = []byte("bridge")

const bridgeRecordLen = 2*common.AddressLength + 2 + 32 + 2*8 + 2

func (s *bridgeState) encode() []byte {
	buf := make([]byte, 0, bridgeRecordLen)
	buf = append(buf, s.Authority.Bytes()...)
	buf = append(buf, s.SyntheticMint.Bytes()...)
	buf = binary.BigEndian.AppendUint16(buf, s.CounterpartyChain)
	buf = append(buf, s.CounterpartyContract[:]...)
	buf = binary.BigEndian.AppendUint64(buf, s.TotalInboundMinted)
	buf = binary.BigEndian.AppendUint64(buf, s.TotalOutboundBurned)
	buf = append(buf, boolByte(s.Paused), boolByte(s.Initialized))
	return buf
}

func decodeBridgeState(raw []byte) (*bridgeState, error) {
	if len(raw) != bridgeRecordLen {
		return nil, fmt.Errorf("bridge record: want %d bytes, got %d", bridgeRecordLen, len(raw))
	}
	var s bridgeState
	s.Authority = common.BytesToAddress(raw[0:20])
	s.SyntheticMint = common.BytesToAddress(raw[20:40])
	s.CounterpartyChain = binary.BigEndian.Uint16(raw[40:42])
	copy(s.CounterpartyContract[:], raw[42:74])
	s.TotalInboundMinted = binary.BigEndian.Uint64(raw[74:82])
	s.TotalOutboundBurned = binary.BigEndian.Uint64(raw[82:90])
	s.Paused = raw[90] == 1
	s.Initialized = raw[91] == 1
	return &s, nil
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
