// Macrocore - Sports Nutrition Computation Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/macrocore

package cache

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/macrocore/internal/logging"
	"github.com/tomtom215/macrocore/internal/metrics"
	"github.com/tomtom215/macrocore/internal/models"
)

// Loader produces the value for a missing key. The context it receives is
// detached from the caller's cancellation; the loader must bound its own
// running time (e.g. an HTTP client timeout).
type Loader[V any] func(ctx context.Context) (V, error)

// Store is a typed cache over a Backend.
//
// Values are stored JSON-encoded, so every reader gets its own copy and
// mutating a returned value never affects other readers. Backend failures
// are wrapped in models.CacheError, logged, counted and treated as a miss.
//
// GetOrLoad has single-flight semantics: concurrent callers for the same
// missing key share one loader invocation and all receive its result or
// its error.
type Store[V any] struct {
	name       string
	backend    Backend
	defaultTTL time.Duration
	group      singleflight.Group
	logger     zerolog.Logger

	// fills tracks keys with a load in flight. Entries are dropped when the
	// last load for the key finishes.
	mu    sync.Mutex
	fills map[string]*fill
}

// fill fences loads of one key against Delete. gen advances on every Delete
// of the key; a load only writes if gen is unchanged since it started, and
// the check and the write happen under mu so a Delete cannot slip between.
type fill struct {
	mu    sync.Mutex
	gen   uint64
	loads int
}

// NewStore creates a named store. The name labels metrics and logs.
// defaultTTL applies when a caller passes ttl <= 0.
func NewStore[V any](name string, backend Backend, defaultTTL time.Duration) *Store[V] {
	if defaultTTL <= 0 {
		defaultTTL = 5 * time.Minute
	}
	return &Store[V]{
		name:       name,
		backend:    backend,
		defaultTTL: defaultTTL,
		fills:      make(map[string]*fill),
		logger:     logging.WithComponent("cache").With().Str("cache", name).Logger(),
	}
}

// Name returns the store name.
func (s *Store[V]) Name() string {
	return s.name
}

// Get returns the cached value for key. Expired entries and backend errors
// are reported as a miss.
func (s *Store[V]) Get(ctx context.Context, key string) (V, bool) {
	var zero V

	data, ok := s.read(ctx, key)
	if !ok {
		metrics.RecordCacheLookup(s.name, false)
		return zero, false
	}

	v, err := s.decode(data)
	if err != nil {
		s.degrade(ctx, &models.CacheError{Op: "decode", Key: key, Err: err})
		_ = s.backend.Delete(ctx, key)
		metrics.RecordCacheLookup(s.name, false)
		return zero, false
	}

	metrics.RecordCacheLookup(s.name, true)
	return v, true
}

// Set stores value under key. ttl <= 0 uses the store default.
// Failures are logged and counted; the cache is never the source of truth.
func (s *Store[V]) Set(ctx context.Context, key string, value V, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		s.degrade(ctx, &models.CacheError{Op: "encode", Key: key, Err: err})
		return
	}
	s.write(ctx, key, data, ttl)
}

// Delete invalidates key. An in-flight load of key started before the delete
// will not populate the cache, and the next GetOrLoad for key starts a fresh
// load instead of joining the old one. Loads of other keys are unaffected.
func (s *Store[V]) Delete(ctx context.Context, key string) {
	s.mu.Lock()
	f := s.fills[key]
	s.mu.Unlock()
	if f != nil {
		// Waits for a fill write in progress; the backend delete below
		// then removes what it wrote.
		f.mu.Lock()
		f.gen++
		f.mu.Unlock()
	}

	s.group.Forget(key)
	if err := s.backend.Delete(ctx, key); err != nil {
		s.degrade(ctx, &models.CacheError{Op: "delete", Key: key, Err: err})
	}
}

// GetOrLoad returns the cached value for key, or runs loader once across all
// concurrent callers and caches its result for ttl.
//
// Loader errors are not cached and are returned to every waiting caller.
// A caller whose ctx is canceled stops waiting and gets ctx.Err(); the
// shared load keeps running for the remaining waiters.
func (s *Store[V]) GetOrLoad(ctx context.Context, key string, ttl time.Duration, loader Loader[V]) (V, error) {
	var zero V

	if v, ok := s.Get(ctx, key); ok {
		return v, nil
	}

	ch := s.group.DoChan(key, func() (interface{}, error) {
		loadCtx := context.WithoutCancel(ctx)

		// A concurrent flight may have filled the key between our miss and
		// joining the group.
		if data, ok := s.read(loadCtx, key); ok {
			return data, nil
		}

		f, start := s.beginFill(key)
		defer s.endFill(key, f)

		v, err := loader(loadCtx)
		if err != nil {
			metrics.CacheLoads.WithLabelValues(s.name, "error").Inc()
			return nil, err
		}
		metrics.CacheLoads.WithLabelValues(s.name, "success").Inc()

		data, err := json.Marshal(v)
		if err != nil {
			return nil, &models.CacheError{Op: "encode", Key: key, Err: err}
		}

		f.mu.Lock()
		if f.gen == start {
			s.write(loadCtx, key, data, ttl)
		} else {
			s.logger.Debug().Str("key", key).Msg("Skipping cache fill invalidated during load")
		}
		f.mu.Unlock()
		return data, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Shared {
			metrics.CacheSharedLoads.WithLabelValues(s.name).Inc()
		}
		if res.Err != nil {
			return zero, res.Err
		}
		data, ok := res.Val.([]byte)
		if !ok {
			return zero, fmt.Errorf("cache %s: unexpected flight result %T", s.name, res.Val)
		}
		return s.decode(data)
	}
}

func (s *Store[V]) beginFill(key string) (*fill, uint64) {
	s.mu.Lock()
	f, ok := s.fills[key]
	if !ok {
		f = &fill{}
		s.fills[key] = f
	}
	f.loads++
	s.mu.Unlock()

	f.mu.Lock()
	defer f.mu.Unlock()
	return f, f.gen
}

func (s *Store[V]) endFill(key string, f *fill) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f.loads--
	if f.loads == 0 && s.fills[key] == f {
		delete(s.fills, key)
	}
}

// Close closes the backend.
func (s *Store[V]) Close() error {
	return s.backend.Close()
}

func (s *Store[V]) read(ctx context.Context, key string) ([]byte, bool) {
	data, ok, err := s.backend.Get(ctx, key)
	if err != nil {
		s.degrade(ctx, &models.CacheError{Op: "get", Key: key, Err: err})
		return nil, false
	}
	return data, ok
}

func (s *Store[V]) write(ctx context.Context, key string, data []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	if err := s.backend.Set(ctx, key, data, ttl); err != nil {
		s.degrade(ctx, &models.CacheError{Op: "set", Key: key, Err: err})
	}
}

func (s *Store[V]) decode(data []byte) (V, error) {
	var v V
	err := json.Unmarshal(data, &v)
	return v, err
}

func (s *Store[V]) degrade(ctx context.Context, cerr *models.CacheError) {
	metrics.CacheErrors.WithLabelValues(s.name, cerr.Op).Inc()
	logger := s.logger
	if id := logging.RequestIDFromContext(ctx); id != "" {
		logger = logger.With().Str("request_id", id).Logger()
	}
	logger.Warn().Err(cerr).Msg("Cache operation failed, treating as miss")
}

// GenerateKey builds a compact, deterministic key from a prefix and any
// JSON-serializable parameters.
//
//	key := cache.GenerateKey("recommendation", params) // "recommendation:3f2a..."
func GenerateKey(prefix string, params interface{}) string {
	data, err := json.Marshal(params)
	if err != nil {
		return fmt.Sprintf("%s:%v", prefix, params)
	}
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%x", prefix, hash[:16])
}
