// Copyright (C) 2025, Stable Foundation Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package store wraps a durable key-value database with the one
// primitive the engines cannot get from the raw interface: an atomic
// create-if-absent. The existence check and the write happen under a
// single lock, so two callers racing on the same key can never both
// observe "absent".
package store

import (
	"sync"

	"github.com/luxfi/database"
)

// KV is a locked view over a database. All engine state that must
// survive a restart (ledger record, bridge record, pending
// withdrawals, consumed attestations) goes through one of these.
type KV struct {
	mu sync.Mutex
	db database.Database
}

// New wraps db. Callers typically hand in a prefixdb so each entity
// gets its own keyspace.
func New(db database.Database) *KV {
	return &KV{db: db}
}

// PutIfAbsent writes val under key only if the key does not exist.
// It reports whether the record was created. A false return with a
// nil error means the key was already present.
func (s *KV) PutIfAbsent(key, val []byte) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ok, err := s.db.Has(key)
	if err != nil {
		return false, err
	}
	if ok {
		return false, nil
	}
	if err := s.db.Put(key, val); err != nil {
		return false, err
	}
	return true, nil
}

func (s *KV) Put(key, val []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Put(key, val)
}

// Get returns the value for key, or (nil, nil) if the key is absent.
func (s *KV) Get(key []byte) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	val, err := s.db.Get(key)
	if err == database.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

func (s *KV) Has(key []byte) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Has(key)
}

func (s *KV) Delete(key []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Delete(key)
}
