// Copyright (C) 2025, Stable Foundation Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vault

import (
	"encoding/json"
	"fmt"

	"github.com/luxfi/geth/common"
)

// Metadata labels the synthetic token for off-chain registries. It
// carries no invariants; registration is fire-and-forget.
type Metadata struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
	URI    string `json:"uri"`
}

var metadataKey = []byte("token")

// CreateMetadata records the synthetic token's display metadata.
// Authority only.
func (v *Vault) CreateMetadata(authority common.Address, name, symbol, uri string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.ledger.Initialized {
		return ErrNotInitialized
	}
	if authority != v.ledger.Authority {
		return ErrUnauthorized
	}

	raw, err := json.Marshal(Metadata{Name: name, Symbol: symbol, URI: uri})
	if err != nil {
		return fmt.Errorf("vault: encode metadata: %w", err)
	}
	if err := v.meta.Put(metadataKey, raw); err != nil {
		return fmt.Errorf("vault: store metadata: %w", err)
	}

	v.sink.Emit(MetadataCreatedEvent{Name: name, Symbol: symbol, URI: uri, Timestamp: v.now()})
	v.log.Info(fmt.Sprintf("metadata registered: %s (%s)", name, symbol))
	return nil
}

// TokenMetadata returns the registered metadata, if any.
func (v *Vault) TokenMetadata() (*Metadata, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	raw, err := v.meta.Get(metadataKey)
	if err != nil {
		return nil, fmt.Errorf("vault: load metadata: %w", err)
	}
	if raw == nil {
		return nil, nil
	}
	var m Metadata
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("vault: decode metadata: %w", err)
	}
	return &m, nil
}
