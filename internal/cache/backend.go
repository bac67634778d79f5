// Macrocore - Sports Nutrition Computation Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/macrocore

package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Backend is the byte-level key/value store behind a Store.
//
// Implementations must treat expired entries as absent, must be safe for
// concurrent use, and must not block operations on different keys behind a
// long-running call. Errors are reported, never panicked; Store degrades
// them to a miss.
type Backend interface {
	// Get returns the value and true if the key exists and has not expired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key for ttl, replacing any existing entry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources (sweeper goroutines, owned databases).
	Close() error
}

// BackendType selects a Backend implementation.
type BackendType string

const (
	// BackendMemory is an unbounded TTL map with an optional sweeper.
	BackendMemory BackendType = "memory"

	// BackendLFU is a bounded least-frequently-used cache. Best for the
	// product catalog where a small set of items takes most reads.
	BackendLFU BackendType = "lfu"

	// BackendBadger persists entries in badger with native TTL, shared
	// across restarts.
	BackendBadger BackendType = "badger"
)

// BackendConfig holds configuration for creating a backend.
type BackendConfig struct {
	// Type specifies the implementation (memory, lfu or badger).
	Type BackendType

	// Capacity is the maximum number of entries (lfu only).
	Capacity int

	// SweepInterval enables the background sweeper for memory and lfu when > 0.
	SweepInterval time.Duration

	// DB is the badger database (badger only). It is not closed by the backend.
	DB *badger.DB

	// Prefix namespaces keys inside a shared badger database.
	Prefix string
}

// NewBackend creates a backend from the configuration.
//
//	b, err := cache.NewBackend(cache.BackendConfig{Type: cache.BackendLFU, Capacity: 5000})
func NewBackend(cfg BackendConfig) (Backend, error) {
	switch cfg.Type {
	case BackendLFU:
		return NewLFUBackend(cfg.Capacity, cfg.SweepInterval), nil
	case BackendBadger:
		if cfg.DB == nil {
			return nil, fmt.Errorf("badger cache backend requires a database")
		}
		return NewBadgerBackend(cfg.DB, cfg.Prefix), nil
	case BackendMemory, "":
		return NewMemoryBackend(cfg.SweepInterval), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Type)
	}
}
