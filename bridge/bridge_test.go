// Copyright (C) 2025, Stable Foundation Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bridge

import (
	"encoding/binary"
	"errors"
	"sync"
	"testing"

	"github.com/luxfi/database"
	"github.com/luxfi/database/memdb"
	"github.com/luxfi/geth/common"
	"github.com/stretchr/testify/require"

	"github.com/stablefdn/usdx/attestation"
	"github.com/stablefdn/usdx/events"
	"github.com/stablefdn/usdx/token"
)

const counterpartyChain uint16 = 30

var (
	usdxMint      = common.HexToAddress("0x02")
	bridgeAccount = common.HexToAddress("0x0b")
	authority     = common.HexToAddress("0xad")
	user          = common.HexToAddress("0xa1")

	counterpartyContract = [32]byte{0xc0, 0xff, 0xee}
)

type fixture struct {
	bridge *Bridge
	bank   *token.Bank
	sink   *events.Recorder
	db     database.Database
	now    *int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	bank := token.NewBank()
	require.NoError(t, bank.CreateMint(usdxMint, authority, 6))

	now := int64(1_700_000_000)
	sink := events.NewRecorder()
	db := memdb.New()
	b, err := New(Config{
		Bank:          bank,
		DB:            db,
		Sink:          sink,
		SyntheticMint: usdxMint,
		BridgeAccount: bridgeAccount,
		Now:           func() int64 { return now },
	})
	require.NoError(t, err)
	require.NoError(t, b.Initialize(authority, counterpartyChain, counterpartyContract))

	return &fixture{bridge: b, bank: bank, sink: sink, db: db, now: &now}
}

// buildAttestation assembles a well-formed counterparty message for
// the given local recipient.
func buildAttestation(recipient common.Address, amount, sequence uint64) []byte {
	buf := make([]byte, 182)
	buf[0] = 1 // version
	binary.BigEndian.PutUint16(buf[99:], counterpartyChain)
	copy(buf[101:], counterpartyContract[:])
	binary.BigEndian.PutUint64(buf[133:], sequence)
	buf[141] = 1 // consistency level
	copy(buf[142+12:], recipient.Bytes())
	binary.BigEndian.PutUint64(buf[174:], amount)
	return buf
}

func TestInitializeTakesMintAuthority(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, bridgeAccount, f.bank.MintAuthority(usdxMint))
	require.ErrorIs(t, f.bridge.Initialize(authority, counterpartyChain, counterpartyContract), ErrAlreadyInitialized)
}

func TestReceiveMints(t *testing.T) {
	f := newFixture(t)
	raw := buildAttestation(user, 600_000_000, 1)

	require.NoError(t, f.bridge.ReceiveFromCounterparty(user, raw))

	require.Equal(t, uint64(600_000_000), f.bank.Balance(usdxMint, user))
	snap := f.bridge.Snapshot()
	require.Equal(t, uint64(600_000_000), snap.TotalInboundMinted)

	consumed, err := f.bridge.Consumed(attestation.Digest(raw))
	require.NoError(t, err)
	require.True(t, consumed)
}

func TestReceiveRejectsForged(t *testing.T) {
	f := newFixture(t)

	wrongChain := buildAttestation(user, 600_000_000, 1)
	binary.BigEndian.PutUint16(wrongChain[99:], 2)
	require.ErrorIs(t, f.bridge.ReceiveFromCounterparty(user, wrongChain), attestation.ErrWrongOriginChain)

	wrongEmitter := buildAttestation(user, 600_000_000, 1)
	wrongEmitter[101] ^= 0xff
	require.ErrorIs(t, f.bridge.ReceiveFromCounterparty(user, wrongEmitter), attestation.ErrUnknownEmitter)

	other := common.HexToAddress("0x42")
	require.ErrorIs(t, f.bridge.ReceiveFromCounterparty(other, buildAttestation(user, 600_000_000, 1)), attestation.ErrRecipientMismatch)

	// Nothing minted, nothing consumed.
	require.Equal(t, uint64(0), f.bank.Supply(usdxMint))
	require.Zero(t, f.bridge.Snapshot().TotalInboundMinted)
}

// The identical buffer applied twice mints exactly once.
func TestReceiveReplayRejected(t *testing.T) {
	f := newFixture(t)
	raw := buildAttestation(user, 600_000_000, 1)

	require.NoError(t, f.bridge.ReceiveFromCounterparty(user, raw))
	require.ErrorIs(t, f.bridge.ReceiveFromCounterparty(user, raw), ErrAlreadyProcessed)

	require.Equal(t, uint64(600_000_000), f.bank.Balance(usdxMint, user))
	require.Equal(t, uint64(600_000_000), f.bridge.Snapshot().TotalInboundMinted)

	// A distinct attestation (new sequence) still goes through.
	require.NoError(t, f.bridge.ReceiveFromCounterparty(user, buildAttestation(user, 600_000_000, 2)))
	require.Equal(t, uint64(1_200_000_000), f.bank.Balance(usdxMint, user))
}

// Concurrent submissions of the same buffer: at most one may mint.
func TestReceiveConcurrentReplay(t *testing.T) {
	f := newFixture(t)
	raw := buildAttestation(user, 600_000_000, 1)

	const goroutines = 16
	errs := make([]error, goroutines)
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = f.bridge.ReceiveFromCounterparty(user, raw)
		}(i)
	}
	wg.Wait()

	var minted, replayed int
	for _, err := range errs {
		switch {
		case err == nil:
			minted++
		case errors.Is(err, ErrAlreadyProcessed):
			replayed++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	require.Equal(t, 1, minted)
	require.Equal(t, goroutines-1, replayed)
	require.Equal(t, uint64(600_000_000), f.bank.Supply(usdxMint))
}

func TestSendBurnsAndEmits(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.bridge.ReceiveFromCounterparty(user, buildAttestation(user, 2_000_000_000, 1)))

	dest := [20]byte{0xde, 0xad}
	require.NoError(t, f.bridge.SendToCounterparty(user, 600_000_000, dest))

	require.Equal(t, uint64(1_400_000_000), f.bank.Balance(usdxMint, user))
	snap := f.bridge.Snapshot()
	require.Equal(t, uint64(600_000_000), snap.TotalOutboundBurned)

	var found bool
	for _, ev := range f.sink.Events() {
		if out, ok := ev.(BridgedOutEvent); ok {
			found = true
			require.Equal(t, user, out.User)
			require.Equal(t, uint64(600_000_000), out.Amount)
			require.Equal(t, dest, out.Destination)
		}
	}
	require.True(t, found, "no BridgedOutEvent emitted")
}

func TestSendValidation(t *testing.T) {
	f := newFixture(t)
	dest := [20]byte{}

	require.ErrorIs(t, f.bridge.SendToCounterparty(user, 0, dest), ErrZeroAmount)
	require.ErrorIs(t, f.bridge.SendToCounterparty(user, attestation.MinTransfer-1, dest), ErrBelowMinimum)
	require.ErrorIs(t, f.bridge.SendToCounterparty(user, attestation.MinTransfer, dest), ErrInsufficientBalance)
}

func TestPauseGatesBothDirections(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.bridge.Pause(authority))

	require.ErrorIs(t, f.bridge.ReceiveFromCounterparty(user, buildAttestation(user, 600_000_000, 1)), ErrPaused)
	require.ErrorIs(t, f.bridge.SendToCounterparty(user, 600_000_000, [20]byte{}), ErrPaused)

	require.ErrorIs(t, f.bridge.Pause(authority), ErrAlreadyPaused)
	require.NoError(t, f.bridge.Unpause(authority))
	require.ErrorIs(t, f.bridge.Unpause(authority), ErrNotPaused)
	require.NoError(t, f.bridge.ReceiveFromCounterparty(user, buildAttestation(user, 600_000_000, 1)))
}

func TestPauseAuthorityOnly(t *testing.T) {
	f := newFixture(t)
	require.ErrorIs(t, f.bridge.Pause(user), ErrUnauthorized)

	next := common.HexToAddress("0x77")
	require.NoError(t, f.bridge.UpdateAuthority(authority, next))
	require.ErrorIs(t, f.bridge.Pause(authority), ErrUnauthorized)
	require.NoError(t, f.bridge.Pause(next))
}

var errDiskPut = errors.New("disk put failed")

// flakyPutDB accepts a fixed number of writes, then rejects the rest.
type flakyPutDB struct {
	database.Database
	allowPuts int
}

func (d *flakyPutDB) Put(key, val []byte) error {
	if d.allowPuts == 0 {
		return errDiskPut
	}
	d.allowPuts--
	return d.Database.Put(key, val)
}

// An inbound transfer is final once the mint lands: a state-persist
// failure still leaves the tokens minted, the digest consumed, and the
// event emitted, and a resubmission reports ErrAlreadyProcessed.
func TestReceivePersistFailureIsFinal(t *testing.T) {
	bank := token.NewBank()
	require.NoError(t, bank.CreateMint(usdxMint, authority, 6))

	sink := events.NewRecorder()
	// One write for Initialize, one for the consumed record, then the
	// state persist fails.
	db := &flakyPutDB{Database: memdb.New(), allowPuts: 2}
	b, err := New(Config{
		Bank:          bank,
		DB:            db,
		Sink:          sink,
		SyntheticMint: usdxMint,
		BridgeAccount: bridgeAccount,
	})
	require.NoError(t, err)
	require.NoError(t, b.Initialize(authority, counterpartyChain, counterpartyContract))

	raw := buildAttestation(user, 600_000_000, 1)
	require.ErrorIs(t, b.ReceiveFromCounterparty(user, raw), errDiskPut)

	require.Equal(t, uint64(600_000_000), bank.Balance(usdxMint, user))
	consumed, err := b.Consumed(attestation.Digest(raw))
	require.NoError(t, err)
	require.True(t, consumed)

	var found bool
	for _, ev := range sink.Events() {
		if _, ok := ev.(BridgedInEvent); ok {
			found = true
		}
	}
	require.True(t, found, "no BridgedInEvent emitted")

	db.allowPuts = 8
	require.ErrorIs(t, b.ReceiveFromCounterparty(user, raw), ErrAlreadyProcessed)
}

// Counters and consumed records survive a restart over the same
// database: a replay after reload is still rejected.
func TestReload(t *testing.T) {
	f := newFixture(t)
	raw := buildAttestation(user, 600_000_000, 1)
	require.NoError(t, f.bridge.ReceiveFromCounterparty(user, raw))

	b2, err := New(Config{
		Bank:          f.bank,
		DB:            f.db,
		SyntheticMint: usdxMint,
		BridgeAccount: bridgeAccount,
	})
	require.NoError(t, err)

	snap := b2.Snapshot()
	require.True(t, snap.Initialized)
	require.Equal(t, counterpartyChain, snap.CounterpartyChain)
	require.Equal(t, uint64(600_000_000), snap.TotalInboundMinted)

	require.ErrorIs(t, b2.ReceiveFromCounterparty(user, raw), ErrAlreadyProcessed)
}
