// Copyright (C) 2025, Stable Foundation Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package events carries typed records from the engines to off-chain
// observers. Emission is fire-and-forget: the engines never block on
// or check delivery.
package events

import "sync"

// Sink receives typed event records.
type Sink interface {
	Emit(ev any)
}

// NoOp discards every event.
type NoOp struct{}

func (NoOp) Emit(any) {}

// Recorder keeps every emitted event in order. Used by tests and by
// relayer shims that poll for outbound transfers.
type Recorder struct {
	mu     sync.Mutex
	events []any
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Emit(ev any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

// Events returns a snapshot of everything emitted so far.
func (r *Recorder) Events() []any {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]any, len(r.events))
	copy(out, r.events)
	return out
}
