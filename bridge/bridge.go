// Copyright (C) 2025, Stable Foundation Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package bridge moves the synthetic token to and from the
// counterparty chain. Inbound transfers are authorized by a verified
// attestation and applied at most once; outbound transfers burn
// locally and emit an event for the off-chain relayer. The bridge
// keeps its own supply counters, separate from the vault's ledger.
package bridge

import (
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"github.com/luxfi/database"
	"github.com/luxfi/database/prefixdb"
	"github.com/luxfi/geth/common"
	log "github.com/luxfi/log"

	"github.com/stablefdn/usdx/attestation"
	"github.com/stablefdn/usdx/events"
	"github.com/stablefdn/usdx/store"
	"github.com/stablefdn/usdx/token"
)

// Config carries the bridge's collaborators. Bank and DB are required.
type Config struct {
	Bank *token.Bank
	DB   database.Database
	Sink events.Sink
	Log  log.Logger

	// SyntheticMint is the token the bridge mints and burns. At
	// Initialize the bridge takes over its mint authority.
	SyntheticMint common.Address

	// BridgeAccount is the delegated-authority account the bridge
	// signs mints with.
	BridgeAccount common.Address

	// Now returns the current unix time. Injectable for tests.
	Now func() int64
}

// Bridge is the cross-chain ingestion and egress engine. One lock
// serializes every mutating call; the consumed-attestation record is
// created through the store's atomic create-if-absent strictly before
// the mint it authorizes.
type Bridge struct {
	mu sync.Mutex

	bank          *token.Bank
	state         *store.KV
	consumed      *store.KV
	sink          events.Sink
	log           log.Logger
	now           func() int64
	bridgeAccount common.Address

	st bridgeState
}

// New wires a bridge over its collaborators and reloads any persisted
// bridge record.
func New(cfg Config) (*Bridge, error) {
	if cfg.Bank == nil || cfg.DB == nil {
		return nil, fmt.Errorf("bridge: bank and db are required")
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

	b := &Bridge{
		bank:          cfg.Bank,
		state:         store.New(prefixdb.New([]byte("state"), cfg.DB)),
		consumed:      store.New(prefixdb.New([]byte("consumed"), cfg.DB)),
		sink:          cfg.Sink,
		log:           cfg.Log,
		now:           cfg.Now,
		bridgeAccount: cfg.BridgeAccount,
		st: bridgeState{
			SyntheticMint: cfg.SyntheticMint,
		},
	}

	raw, err := b.state.Get(bridgeStateKey)
	if err != nil {
		return nil, fmt.Errorf("bridge: load state: %w", err)
	}
	if raw != nil {
		st, err := decodeBridgeState(raw)
		if err != nil {
			return nil, fmt.Errorf("bridge: load state: %w", err)
		}
		b.st = *st
	}
	return b, nil
}

// Initialize records the counterparty endpoint and takes over the
// synthetic mint's authority, so only the bridge can mint inbound
// transfers.
func (b *Bridge) Initialize(authority common.Address, counterpartyChain uint16, counterpartyContract [32]byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.st.Initialized {
		return ErrAlreadyInitialized
	}

	if err := b.bank.SetMintAuthority(authority, b.st.SyntheticMint, b.bridgeAccount); err != nil {
		return fmt.Errorf("bridge: take mint authority: %w", err)
	}

	b.st.Authority = authority
	b.st.CounterpartyChain = counterpartyChain
	b.st.CounterpartyContract = counterpartyContract
	b.st.TotalInboundMinted = 0
	b.st.TotalOutboundBurned = 0
	b.st.Paused = false
	b.st.Initialized = true

	if err := b.persist(); err != nil {
		return err
	}
	b.log.Info(fmt.Sprintf("bridge initialized against chain %d", counterpartyChain))
	return nil
}

// ReceiveFromCounterparty applies an inbound attestation: verifies it,
// consumes its digest exactly once, and mints the carried amount to
// recipient. Submitting the same buffer again fails with
// ErrAlreadyProcessed and mints nothing.
func (b *Bridge) ReceiveFromCounterparty(recipient common.Address, raw []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.st.Initialized {
		return ErrNotInitialized
	}
	if b.st.Paused {
		return ErrPaused
	}

	payload, err := attestation.Verify(raw, b.st.CounterpartyChain, b.st.CounterpartyContract, padAddress(recipient))
	if err != nil {
		return err
	}

	// Validate the mint fully before consuming the digest: a consumed
	// record without its mint would burn the attestation.
	newInbound, ok := token.CheckedAdd(b.st.TotalInboundMinted, payload.Amount)
	if !ok {
		return ErrOverflow
	}
	if _, ok := token.CheckedAdd(b.bank.Supply(b.st.SyntheticMint), payload.Amount); !ok {
		return ErrOverflow
	}
	if _, ok := token.CheckedAdd(b.bank.Balance(b.st.SyntheticMint, recipient), payload.Amount); !ok {
		return ErrOverflow
	}

	// Replay gate: the record creation must precede the mint, and the
	// existence check and write are one indivisible store operation.
	digest := attestation.Digest(raw)
	created, err := b.consumed.PutIfAbsent(digest[:], consumedRecord(b.now()))
	if err != nil {
		return fmt.Errorf("bridge: mark attestation consumed: %w", err)
	}
	if !created {
		return ErrAlreadyProcessed
	}

	if err := b.bank.MintTo(b.bridgeAccount, b.st.SyntheticMint, recipient, payload.Amount); err != nil {
		return fmt.Errorf("bridge: inbound mint: %w", err)
	}

	b.st.TotalInboundMinted = newInbound
	b.sink.Emit(BridgedInEvent{Recipient: recipient, Amount: payload.Amount, Digest: digest, Timestamp: b.now()})
	b.log.Info(fmt.Sprintf("inbound mint %d to %s", payload.Amount, recipient))

	// The transfer is final once the mint lands: a persist failure
	// leaves only the counter unrecorded, and the consumed digest
	// makes a resubmission report ErrAlreadyProcessed.
	return b.persist()
}

// SendToCounterparty burns amount from user and emits the transfer for
// the relayer to forward. destination is an opaque counterparty-chain
// address; only its width is fixed here.
func (b *Bridge) SendToCounterparty(user common.Address, amount uint64, destination [20]byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.st.Initialized {
		return ErrNotInitialized
	}
	if b.st.Paused {
		return ErrPaused
	}
	if amount == 0 {
		return ErrZeroAmount
	}
	if amount < attestation.MinTransfer {
		return ErrBelowMinimum
	}
	if b.bank.Balance(b.st.SyntheticMint, user) < amount {
		return ErrInsufficientBalance
	}
	newOutbound, ok := token.CheckedAdd(b.st.TotalOutboundBurned, amount)
	if !ok {
		return ErrOverflow
	}

	if err := b.bank.Burn(user, b.st.SyntheticMint, user, amount); err != nil {
		return fmt.Errorf("bridge: outbound burn: %w", err)
	}

	b.st.TotalOutboundBurned = newOutbound
	if err := b.persist(); err != nil {
		return err
	}

	b.sink.Emit(BridgedOutEvent{User: user, Amount: amount, Destination: destination, Timestamp: b.now()})
	b.log.Info(fmt.Sprintf("outbound burn %d from %s", amount, user))
	return nil
}

// Pause stops both directions. Fails if already paused.
func (b *Bridge) Pause(authority common.Address) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.st.Initialized {
		return ErrNotInitialized
	}
	if authority != b.st.Authority {
		return ErrUnauthorized
	}
	if b.st.Paused {
		return ErrAlreadyPaused
	}

	b.st.Paused = true
	if err := b.persist(); err != nil {
		return err
	}
	b.sink.Emit(BridgePausedEvent{Authority: authority, Paused: true, Timestamp: b.now()})
	b.log.Info("bridge paused")
	return nil
}

// Unpause resumes. Fails if not paused.
func (b *Bridge) Unpause(authority common.Address) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.st.Initialized {
		return ErrNotInitialized
	}
	if authority != b.st.Authority {
		return ErrUnauthorized
	}
	if !b.st.Paused {
		return ErrNotPaused
	}

	b.st.Paused = false
	if err := b.persist(); err != nil {
		return err
	}
	b.sink.Emit(BridgePausedEvent{Authority: authority, Paused: false, Timestamp: b.now()})
	b.log.Info("bridge unpaused")
	return nil
}

// UpdateAuthority rotates the bridge's administrative authority.
func (b *Bridge) UpdateAuthority(authority, next common.Address) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.st.Initialized {
		return ErrNotInitialized
	}
	if authority != b.st.Authority {
		return ErrUnauthorized
	}

	old := b.st.Authority
	b.st.Authority = next
	if err := b.persist(); err != nil {
		return err
	}
	b.sink.Emit(BridgeAuthorityUpdatedEvent{OldAuthority: old, NewAuthority: next, Timestamp: b.now()})
	return nil
}

// Consumed reports whether an attestation with this digest has been
// processed.
func (b *Bridge) Consumed(digest [32]byte) (bool, error) {
	return b.consumed.Has(digest[:])
}

// Snapshot is a read-only copy of the bridge record.
type Snapshot struct {
	Authority            common.Address
	SyntheticMint        common.Address
	CounterpartyChain    uint16
	CounterpartyContract [32]byte
	TotalInboundMinted   uint64
	TotalOutboundBurned  uint64
	Paused               bool
	Initialized          bool
}

// Snapshot returns the current bridge state.
func (b *Bridge) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Snapshot{
		Authority:            b.st.Authority,
		SyntheticMint:        b.st.SyntheticMint,
		CounterpartyChain:    b.st.CounterpartyChain,
		CounterpartyContract: b.st.CounterpartyContract,
		TotalInboundMinted:   b.st.TotalInboundMinted,
		TotalOutboundBurned:  b.st.TotalOutboundBurned,
		Paused:               b.st.Paused,
		Initialized:          b.st.Initialized,
	}
}

func (b *Bridge) persist() error {
	if err := b.state.Put(bridgeStateKey, b.st.encode()); err != nil {
		return fmt.Errorf("bridge: persist state: %w", err)
	}
	return nil
}

// padAddress widens a local 20-byte account to the 32-byte recipient
// field the counterparty chain emits (left-padded with zeros).
func padAddress(addr common.Address) [32]byte {
	var out [32]byte
	copy(out[12:], addr.Bytes())
	return out
}

// consumedRecord is the value stored under an attestation digest: the
// processing timestamp. The key's existence is the replay signal.
func consumedRecord(now int64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(now))
	return buf[:]
}
