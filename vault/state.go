// Copyright (C) 2025, Stable Foundation Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vault

import (
	"encoding/binary"
	"fmt"

	"github.com/luxfi/geth/common"
)

// ledgerState is the single accounting record the vault maintains.
// Invariant: TotalCollateral >= TotalMinted at all times; treasury
// withdrawals may only draw the excess.
type ledgerState struct {
	Authority       common.Address
	SyntheticMint   common.Address
	CollateralMint  common.Address
	VaultAccount    common.Address // custody account holding collateral
	TotalMinted     uint64         // synthetic tokens outstanding via deposits
	TotalCollateral uint64         // collateral held in the vault account
	TotalFees       uint64         // accrued deposit + redemption fees
	Paused          bool
	Initialized     bool
}

// pendingWithdrawal is the one-per-user two-phase withdrawal record.
// It exists only between RequestWithdrawal and SettleWithdrawal.
type pendingWithdrawal struct {
	Owner       common.Address
	Amount      uint64
	RequestedAt int64
}

var stateKey = []byte("ledger")

const (
	ledgerRecordLen     = 4*common.AddressLength + 3*8 + 2
	withdrawalRecordLen = common.AddressLength + 8 + 8
)

func (s *ledgerState) encode() []byte {
	buf := make([]byte, 0, ledgerRecordLen)
	buf = append(buf, s.Authority.Bytes()...)
	buf = append(buf, s.SyntheticMint.Bytes()...)
	buf = append(buf, s.CollateralMint.Bytes()...)
	buf = append(buf, s.VaultAccount.Bytes()...)
	buf = binary.BigEndian.AppendUint64(buf, s.TotalMinted)
	buf = binary.BigEndian.AppendUint64(buf, s.TotalCollateral)
	buf = binary.BigEndian.AppendUint64(buf, s.TotalFees)
	buf = append(buf, boolByte(s.Paused), boolByte(s.Initialized))
	return buf
}

func decodeLedger(raw []byte) (*ledgerState, error) {
	if len(raw) != ledgerRecordLen {
		return nil, fmt.Errorf("ledger record: want %d bytes, got %d", ledgerRecordLen, len(raw))
	}
	var s ledgerState
	s.Authority = common.BytesToAddress(raw[0:20])
	s.SyntheticMint = common.BytesToAddress(raw[20:40])
	s.CollateralMint = common.BytesToAddress(raw[40:60])
	s.VaultAccount = common.BytesToAddress(raw[60:80])
	s.TotalMinted = binary.BigEndian.Uint64(raw[80:88])
	s.TotalCollateral = binary.BigEndian.Uint64(raw[88:96])
	s.TotalFees = binary.BigEndian.Uint64(raw[96:104])
	s.Paused = raw[104] == 1
	s.Initialized = raw[105] == 1
	return &s, nil
}

func (w *pendingWithdrawal) encode() []byte {
	buf := make([]byte, 0, withdrawalRecordLen)
	buf = append(buf, w.Owner.Bytes()...)
	buf = binary.BigEndian.AppendUint64(buf, w.Amount)
	buf = binary.BigEndian.AppendUint64(buf, uint64(w.RequestedAt))
	return buf
}

func decodeWithdrawal(raw []byte) (*pendingWithdrawal, error) {
	if len(raw) != withdrawalRecordLen {
		return nil, fmt.Errorf("withdrawal record: want %d bytes, got %d", withdrawalRecordLen, len(raw))
	}
	var w pendingWithdrawal
	w.Owner = common.BytesToAddress(raw[0:20])
	w.Amount = binary.BigEndian.Uint64(raw[20:28])
	w.RequestedAt = int64(binary.BigEndian.Uint64(raw[28:36]))
	return &w, nil
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
