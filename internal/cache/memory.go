// Macrocore - Sports Nutrition Computation Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/macrocore

package cache

import (
	"context"
	"sync"
	"time"

	"github.com/tomtom215/macrocore/internal/metrics"
)

// Entry is a cached value with its expiry. There is exactly one entry per
// key; Set overwrites it.
type Entry struct {
	Key       string
	Value     []byte
	ExpiresAt time.Time
}

func (e *Entry) expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

// MemoryBackend is a thread-safe in-process TTL map.
//
// Expired entries are evicted lazily on Get. When a sweep interval is
// configured a background goroutine also removes them periodically so that
// keys that are never read again do not accumulate.
type MemoryBackend struct {
	mu      sync.RWMutex
	entries map[string]Entry
	now     func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// NewMemoryBackend creates a memory backend. sweepInterval <= 0 disables the sweeper.
func NewMemoryBackend(sweepInterval time.Duration) *MemoryBackend {
	m := &MemoryBackend{
		entries: make(map[string]Entry),
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	if sweepInterval > 0 {
		go m.sweepLoop(sweepInterval)
	}
	return m
}

// Get returns the value for key if present and not expired.
func (m *MemoryBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	entry, exists := m.entries[key]
	m.mu.RUnlock()

	if !exists {
		return nil, false, nil
	}

	if entry.expired(m.now()) {
		m.mu.Lock()
		// Re-check under the write lock: a concurrent Set may have refreshed it.
		if current, ok := m.entries[key]; ok && current.expired(m.now()) {
			delete(m.entries, key)
			metrics.CacheEvictions.WithLabelValues(string(BackendMemory), "expired").Inc()
		}
		m.mu.Unlock()
		return nil, false, nil
	}

	return entry.Value, true, nil
}

// Set stores value for ttl.
func (m *MemoryBackend) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	m.entries[key] = Entry{Key: key, Value: value, ExpiresAt: m.now().Add(ttl)}
	m.mu.Unlock()
	return nil
}

// Delete removes key.
func (m *MemoryBackend) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, including expired ones not yet evicted.
func (m *MemoryBackend) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Sweep removes every expired entry and returns how many were removed.
func (m *MemoryBackend) Sweep() int {
	now := m.now()
	removed := 0

	m.mu.Lock()
	for key, entry := range m.entries {
		if entry.expired(now) {
			delete(m.entries, key)
			removed++
		}
	}
	m.mu.Unlock()

	if removed > 0 {
		metrics.CacheEvictions.WithLabelValues(string(BackendMemory), "expired").Add(float64(removed))
	}
	return removed
}

// Close stops the sweeper. Safe to call more than once.
func (m *MemoryBackend) Close() error {
	m.stopOnce.Do(func() { close(m.stop) })
	return nil
}

func (m *MemoryBackend) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Sweep()
		case <-m.stop:
			return
		}
	}
}
