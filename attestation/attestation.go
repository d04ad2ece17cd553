// Copyright (C) 2025, Stable Foundation Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package attestation validates signed cross-chain messages before the
// bridge acts on them. The raw buffer is untrusted: every field is
// extracted with an explicit bounds check, and the origin chain and
// emitter are verified before any payload byte is interpreted.
//
// The layout follows the guardian-network message format:
//
//	[0]       version
//	[1:5]     guardian set index
//	[5]       signature count, then the signatures
//	...       body: timestamp, nonce
//	[99:101]  emitter chain (u16 big-endian)
//	[101:133] emitter address (32 bytes)
//	[133:141] sequence (u64 big-endian)
//	[141]     consistency level
//	[142:]    payload: recipient (32 bytes) + amount (u64 big-endian)
//
// Structural validation only: the guardian signature set itself is not
// verified here.
package attestation

import (
	"encoding/binary"
	"errors"

	"github.com/luxfi/crypto"
)

const (
	// MinLength rejects buffers too short to hold the fixed header.
	MinLength = 100

	emitterChainOffset = 99
	emitterOffset      = emitterChainOffset + 2
	payloadOffset      = emitterOffset + 32 + 8 + 1 // past sequence and consistency level
	payloadLength      = 32 + 8                     // recipient + amount

	// MinTransfer is the smallest amount an attestation may carry
	// (500 units at 6 decimals).
	MinTransfer uint64 = 500_000_000
)

var (
	ErrInvalidAttestation = errors.New("attestation truncated or malformed")
	ErrWrongOriginChain   = errors.New("attestation from wrong origin chain")
	ErrUnknownEmitter     = errors.New("attestation from unknown emitter")
	ErrInvalidPayload     = errors.New("attestation payload too short")
	ErrZeroAmount         = errors.New("attestation amount is zero")
	ErrBelowMinimum       = errors.New("attestation amount below minimum transfer")
	ErrRecipientMismatch  = errors.New("attestation recipient does not match target account")
)

// Payload is the typed result of a successful verification.
type Payload struct {
	Recipient [32]byte
	Amount    uint64
}

// Verify checks raw against the configured origin chain, emitter
// contract, and intended recipient, and extracts the transfer payload.
// Checks run in a fixed order so a buffer from an unrelated source is
// rejected before its bytes are trusted as a payload layout. No state
// is touched; callers decide what a valid attestation authorizes.
func Verify(raw []byte, originChain uint16, emitter, recipient [32]byte) (*Payload, error) {
	if len(raw) < MinLength {
		return nil, ErrInvalidAttestation
	}

	if len(raw) < emitterOffset {
		return nil, ErrInvalidAttestation
	}
	chain := binary.BigEndian.Uint16(raw[emitterChainOffset:emitterOffset])
	if chain != originChain {
		return nil, ErrWrongOriginChain
	}

	if len(raw) < emitterOffset+32 {
		return nil, ErrInvalidAttestation
	}
	var from [32]byte
	copy(from[:], raw[emitterOffset:emitterOffset+32])
	if from != emitter {
		return nil, ErrUnknownEmitter
	}

	if len(raw) < payloadOffset+payloadLength {
		return nil, ErrInvalidPayload
	}
	var p Payload
	copy(p.Recipient[:], raw[payloadOffset:payloadOffset+32])
	p.Amount = binary.BigEndian.Uint64(raw[payloadOffset+32 : payloadOffset+payloadLength])

	if p.Amount == 0 {
		return nil, ErrZeroAmount
	}
	if p.Amount < MinTransfer {
		return nil, ErrBelowMinimum
	}

	if p.Recipient != recipient {
		return nil, ErrRecipientMismatch
	}

	return &p, nil
}

// Digest is the attestation's identity for replay protection: the
// keccak-256 hash of the full raw buffer.
func Digest(raw []byte) [32]byte {
	var d [32]byte
	copy(d[:], crypto.Keccak256(raw))
	return d
}
