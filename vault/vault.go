// Copyright (C) 2025, Stable Foundation Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package vault implements the collateral-backed token ledger: users
// deposit the reference collateral asset, receive the synthetic token
// minus a tiered fee, and redeem it through a time-locked two-phase
// withdrawal. One accounting record backs the whole system and every
// operation keeps collateral >= synthetic outstanding.
package vault

import (
	"fmt"
	"sync"
	"time"

	"github.com/luxfi/database"
	"github.com/luxfi/database/prefixdb"
	"github.com/luxfi/geth/common"
	log "github.com/luxfi/log"

	"github.com/stablefdn/usdx/events"
	"github.com/stablefdn/usdx/store"
	"github.com/stablefdn/usdx/token"
)

// Config carries the vault's collaborators and identities. Bank and DB
// are required; the rest default.
type Config struct {
	Bank *token.Bank
	DB   database.Database
	Sink events.Sink
	Log  log.Logger

	// SyntheticMint is created at Initialize with the vault account as
	// its authority. CollateralMint must already exist.
	SyntheticMint  common.Address
	CollateralMint common.Address

	// VaultAccount is the delegated-authority account: it holds the
	// collateral custody balance and signs synthetic mints.
	VaultAccount common.Address

	// Now returns the current unix time. Injectable for tests.
	Now func() int64
}

// Vault is the accounting and verification engine for the collateral
// ledger. A single lock serializes every state-mutating call; each
// call validates fully before touching the bank or the ledger, so a
// failure leaves no partial state.
type Vault struct {
	mu sync.Mutex

	bank        *token.Bank
	state       *store.KV
	withdrawals *store.KV
	meta        *store.KV
	sink        events.Sink
	log         log.Logger
	now         func() int64

	ledger ledgerState
}

// New wires a vault over its collaborators and reloads any persisted
// ledger record.
func New(cfg Config) (*Vault, error) {
	if cfg.Bank == nil || cfg.DB == nil {
		return nil, fmt.Errorf("vault: bank and db are required")
	}
	if cfg.Sink == nil {
		cfg.Sink = events.NoOp{}
	}
	if cfg.Log == nil {
		cfg.Log = log.NewTestLogger(log.InfoLevel)
	}
	if cfg.Now == nil {
		cfg.Now = func() int64 { return time.Now().Unix() }
	}

	v := &Vault{
		bank:        cfg.Bank,
		state:       store.New(prefixdb.New([]byte("state"), cfg.DB)),
		withdrawals: store.New(prefixdb.New([]byte("withdrawals"), cfg.DB)),
		meta:        store.New(prefixdb.New([]byte("metadata"), cfg.DB)),
		sink:        cfg.Sink,
		log:         cfg.Log,
		now:         cfg.Now,
		ledger: ledgerState{
			SyntheticMint:  cfg.SyntheticMint,
			CollateralMint: cfg.CollateralMint,
			VaultAccount:   cfg.VaultAccount,
		},
	}

	raw, err := v.state.Get(stateKey)
	if err != nil {
		return nil, fmt.Errorf("vault: load ledger: %w", err)
	}
	if raw != nil {
		ledger, err := decodeLedger(raw)
		if err != nil {
			return nil, fmt.Errorf("vault: load ledger: %w", err)
		}
		v.ledger = *ledger
	}
	return v, nil
}

// Initialize provisions the ledger record and creates the synthetic
// mint under the vault account's authority.
func (v *Vault) Initialize(authority common.Address) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.ledger.Initialized {
		return ErrAlreadyInitialized
	}

	if err := v.bank.CreateMint(v.ledger.SyntheticMint, v.ledger.VaultAccount, Decimals); err != nil {
		return fmt.Errorf("vault: create synthetic mint: %w", err)
	}

	v.ledger.Authority = authority
	v.ledger.TotalMinted = 0
	v.ledger.TotalCollateral = 0
	v.ledger.TotalFees = 0
	v.ledger.Paused = false
	v.ledger.Initialized = true

	if err := v.persist(); err != nil {
		return err
	}
	v.log.Info(fmt.Sprintf("vault initialized, authority %s", authority))
	return nil
}

// Pause gates every user-facing operation. Authority only.
func (v *Vault) Pause(authority common.Address) error {
	return v.setPaused(authority, true)
}

// Unpause lifts the gate. Authority only.
func (v *Vault) Unpause(authority common.Address) error {
	return v.setPaused(authority, false)
}

func (v *Vault) setPaused(authority common.Address, paused bool) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.ledger.Initialized {
		return ErrNotInitialized
	}
	if authority != v.ledger.Authority {
		return ErrUnauthorized
	}

	v.ledger.Paused = paused
	if err := v.persist(); err != nil {
		return err
	}

	v.sink.Emit(PausedEvent{Authority: authority, Paused: paused, Timestamp: v.now()})
	v.log.Info(fmt.Sprintf("vault paused=%v", paused))
	return nil
}

// UpdateAuthority rotates the administrative authority.
func (v *Vault) UpdateAuthority(authority, next common.Address) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.ledger.Initialized {
		return ErrNotInitialized
	}
	if authority != v.ledger.Authority {
		return ErrUnauthorized
	}

	old := v.ledger.Authority
	v.ledger.Authority = next
	if err := v.persist(); err != nil {
		return err
	}

	v.sink.Emit(AuthorityUpdatedEvent{OldAuthority: old, NewAuthority: next, Timestamp: v.now()})
	v.log.Info(fmt.Sprintf("authority updated %s -> %s", old, next))
	return nil
}

// Snapshot is a read-only copy of the ledger record.
type Snapshot struct {
	Authority       common.Address
	SyntheticMint   common.Address
	CollateralMint  common.Address
	VaultAccount    common.Address
	TotalMinted     uint64
	TotalCollateral uint64
	TotalFees       uint64
	Paused          bool
	Initialized     bool
}

// Snapshot returns the current ledger state.
func (v *Vault) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	return Snapshot{
		Authority:       v.ledger.Authority,
		SyntheticMint:   v.ledger.SyntheticMint,
		CollateralMint:  v.ledger.CollateralMint,
		VaultAccount:    v.ledger.VaultAccount,
		TotalMinted:     v.ledger.TotalMinted,
		TotalCollateral: v.ledger.TotalCollateral,
		TotalFees:       v.ledger.TotalFees,
		Paused:          v.ledger.Paused,
		Initialized:     v.ledger.Initialized,
	}
}

func (v *Vault) persist() error {
	if err := v.state.Put(stateKey, v.ledger.encode()); err != nil {
		return fmt.Errorf("vault: persist ledger: %w", err)
	}
	return nil
}
