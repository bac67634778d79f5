// Macrocore - Sports Nutrition Computation Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/macrocore

package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"

	"github.com/tomtom215/macrocore/internal/logging"
)

// ErrClosed is returned by every operation after Close.
var ErrClosed = errors.New("storage closed")

// Config controls how the Badger database is opened.
type Config struct {
	// Path is the directory for Badger files. Ignored when InMemory is set.
	Path string

	// InMemory keeps everything in RAM. Used by tests and ephemeral deployments.
	InMemory bool

	// SyncWrites forces fsync after every write.
	SyncWrites bool

	// Compression enables Snappy block compression.
	Compression bool

	// GCInterval is how often GCService runs value log GC. Zero disables it.
	GCInterval time.Duration

	// GCRatio is the discard ratio passed to RunValueLogGC.
	GCRatio float64
}

// DefaultConfig returns the defaults used when no configuration is supplied.
func DefaultConfig() Config {
	return Config{
		Path:        "/data/macrocore",
		SyncWrites:  true,
		Compression: true,
		GCInterval:  10 * time.Minute,
		GCRatio:     0.5,
	}
}

// DB wraps a Badger database shared by the profile and product stores.
type DB struct {
	db     *badger.DB
	config Config

	mu     sync.RWMutex
	closed bool
}

// Open opens (or creates) the database described by cfg.
func Open(cfg Config) (*DB, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("storage path is required unless in_memory is set")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(cfg.Path)
		opts.SyncWrites = cfg.SyncWrites
	}
	if cfg.Compression {
		opts.Compression = options.Snappy
	}

	// Reduce logging verbosity
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	logging.Info().
		Str("path", cfg.Path).
		Bool("in_memory", cfg.InMemory).
		Bool("sync_writes", cfg.SyncWrites).
		Msg("Storage opened")

	return &DB{db: db, config: cfg}, nil
}

// Badger exposes the underlying database so the cache can share it.
func (d *DB) Badger() *badger.DB {
	return d.db
}

// InMemory reports whether the database lives only in RAM.
func (d *DB) InMemory() bool {
	return d.config.InMemory
}

// Close closes the database. It is safe to call more than once.
func (d *DB) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true

	if err := d.db.Close(); err != nil {
		return fmt.Errorf("close BadgerDB: %w", err)
	}
	logging.Info().Msg("Storage closed")
	return nil
}

// Ping runs an empty read transaction, for health checks.
func (d *DB) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return d.view(func(*badger.Txn) error { return nil })
}

func (d *DB) view(fn func(txn *badger.Txn) error) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrClosed
	}
	return d.db.View(fn)
}

func (d *DB) update(fn func(txn *badger.Txn) error) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrClosed
	}
	return d.db.Update(fn)
}

// runGC reclaims value log space until Badger reports nothing to rewrite.
func (d *DB) runGC(ctx context.Context) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrClosed
	}

	ratio := d.config.GCRatio
	if ratio <= 0 || ratio >= 1 {
		ratio = 0.5
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := d.db.RunValueLogGC(ratio)
		if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrGCInMemoryMode) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// GCService runs periodic value log GC. It implements suture.Service.
type GCService struct {
	db       *DB
	interval time.Duration
}

// NewGCService creates a GC service for db.
func NewGCService(db *DB) *GCService {
	return &GCService{db: db, interval: db.config.GCInterval}
}

// Serve runs until ctx is cancelled.
func (s *GCService) Serve(ctx context.Context) error {
	if s.db.InMemory() || s.interval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.db.runGC(ctx); err != nil && !errors.Is(err, context.Canceled) {
				if errors.Is(err, ErrClosed) {
					return err
				}
				logging.Warn().Err(err).Msg("Storage value log GC failed")
			}
		}
	}
}

// String implements fmt.Stringer for suture logging.
func (s *GCService) String() string {
	return "storage-gc"
}
