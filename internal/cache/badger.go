// Macrocore - Sports Nutrition Computation Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/macrocore

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// BadgerBackend stores entries in a badger database using badger's native
// per-entry TTL. Expired entries are invisible to reads and reclaimed by
// badger's compaction.
//
// The database is shared with other users (storage repositories), so keys
// are namespaced by prefix and Close does not close the database.
type BadgerBackend struct {
	db     *badger.DB
	prefix string
}

// NewBadgerBackend creates a backend over db. An empty prefix defaults to "cache:".
func NewBadgerBackend(db *badger.DB, prefix string) *BadgerBackend {
	if prefix == "" {
		prefix = "cache:"
	}
	return &BadgerBackend{db: db, prefix: prefix}
}

func (b *BadgerBackend) key(k string) []byte {
	return []byte(b.prefix + k)
}

// Get returns the value for key if present and not expired.
func (b *BadgerBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(b.key(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("badger get: %w", err)
	}
	return value, true, nil
}

// Set stores value for ttl.
func (b *BadgerBackend) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry(b.key(key), value).WithTTL(ttl))
	})
	if err != nil {
		return fmt.Errorf("badger set: %w", err)
	}
	return nil
}

// Delete removes key.
func (b *BadgerBackend) Delete(_ context.Context, key string) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(b.key(key))
	})
	if err != nil {
		return fmt.Errorf("badger delete: %w", err)
	}
	return nil
}

// Close is a no-op; the database belongs to the caller.
func (b *BadgerBackend) Close() error {
	return nil
}
