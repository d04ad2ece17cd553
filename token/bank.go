// Copyright (C) 2025, Stable Foundation Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package token implements the asset transfer primitive backing the
// vault and bridge engines: a bank of mints and per-holder balances
// with atomic mint, burn, and transfer operations.
//
// Every mutation either completes fully or returns an error with no
// state change. All arithmetic is checked; an overflow aborts the
// operation instead of wrapping.
package token

import (
	"errors"
	"sync"

	"github.com/luxfi/geth/common"
)

var (
	ErrMintExists          = errors.New("mint already exists")
	ErrUnknownMint         = errors.New("unknown mint")
	ErrNotMintAuthority    = errors.New("signer is not the mint authority")
	ErrNotHolder           = errors.New("burn must be signed by the holder")
	ErrInsufficientBalance = errors.New("insufficient token balance")
	ErrOverflow            = errors.New("arithmetic overflow")
)

// Mint describes a token issue: who may mint it, its precision, and
// the total amount outstanding.
type Mint struct {
	Authority common.Address
	Decimals  uint8
	Supply    uint64
}

// Bank holds all mints and balances. A single lock serializes every
// mutating call, giving the all-or-nothing semantics the engines
// assume.
type Bank struct {
	mu       sync.RWMutex
	mints    map[common.Address]*Mint
	balances map[common.Address]map[common.Address]uint64 // mint -> holder -> amount
}

// NewBank creates an empty bank.
func NewBank() *Bank {
	return &Bank{
		mints:    make(map[common.Address]*Mint),
		balances: make(map[common.Address]map[common.Address]uint64),
	}
}

// CreateMint registers a new mint under the given authority.
func (b *Bank) CreateMint(id, authority common.Address, decimals uint8) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.mints[id] != nil {
		return ErrMintExists
	}
	b.mints[id] = &Mint{Authority: authority, Decimals: decimals}
	b.balances[id] = make(map[common.Address]uint64)
	return nil
}

// SetMintAuthority hands minting rights for id from current to next.
func (b *Bank) SetMintAuthority(current, id, next common.Address) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	mint := b.mints[id]
	if mint == nil {
		return ErrUnknownMint
	}
	if mint.Authority != current {
		return ErrNotMintAuthority
	}
	mint.Authority = next
	return nil
}

// MintTo creates amount new units of id in to's account. Only the
// mint authority may call this.
func (b *Bank) MintTo(authority, id, to common.Address, amount uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	mint := b.mints[id]
	if mint == nil {
		return ErrUnknownMint
	}
	if mint.Authority != authority {
		return ErrNotMintAuthority
	}

	supply, ok := CheckedAdd(mint.Supply, amount)
	if !ok {
		return ErrOverflow
	}
	balance, ok := CheckedAdd(b.balances[id][to], amount)
	if !ok {
		return ErrOverflow
	}

	mint.Supply = supply
	b.balances[id][to] = balance
	return nil
}

// Burn destroys amount units of id held by from. The burn must be
// signed by the holder itself.
func (b *Bank) Burn(authority, id, from common.Address, amount uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	mint := b.mints[id]
	if mint == nil {
		return ErrUnknownMint
	}
	if authority != from {
		return ErrNotHolder
	}

	balance := b.balances[id][from]
	if balance < amount {
		return ErrInsufficientBalance
	}
	supply, ok := CheckedSub(mint.Supply, amount)
	if !ok {
		return ErrOverflow
	}

	mint.Supply = supply
	b.balances[id][from] = balance - amount
	return nil
}

// Transfer moves amount units of id from one holder to another.
func (b *Bank) Transfer(id, from, to common.Address, amount uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.mints[id] == nil {
		return ErrUnknownMint
	}

	fromBal := b.balances[id][from]
	if fromBal < amount {
		return ErrInsufficientBalance
	}
	toBal, ok := CheckedAdd(b.balances[id][to], amount)
	if !ok {
		return ErrOverflow
	}

	b.balances[id][from] = fromBal - amount
	b.balances[id][to] = toBal
	return nil
}

// Balance returns the holder's balance of id. Unknown mints and
// holders read as zero.
func (b *Bank) Balance(id, holder common.Address) uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.balances[id][holder]
}

// Supply returns the outstanding supply of id.
func (b *Bank) Supply(id common.Address) uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if mint := b.mints[id]; mint != nil {
		return mint.Supply
	}
	return 0
}

// MintAuthority returns the current authority of id, or the zero
// address if the mint does not exist.
func (b *Bank) MintAuthority(id common.Address) common.Address {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if mint := b.mints[id]; mint != nil {
		return mint.Authority
	}
	return common.Address{}
}
