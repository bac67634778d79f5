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

// lfuEntry is a node in a frequency list.
type lfuEntry struct {
	key       string
	value     []byte
	freq      int
	expiresAt time.Time
	prev      *lfuEntry
	next      *lfuEntry
}

// freqList is a doubly-linked list of entries sharing one access frequency,
// most recently touched at the front.
type freqList struct {
	head *lfuEntry
	tail *lfuEntry
	size int
}

func newFreqList() *freqList {
	fl := &freqList{head: &lfuEntry{}, tail: &lfuEntry{}}
	fl.head.next = fl.tail
	fl.tail.prev = fl.head
	return fl
}

func (fl *freqList) pushFront(e *lfuEntry) {
	e.prev = fl.head
	e.next = fl.head.next
	fl.head.next.prev = e
	fl.head.next = e
	fl.size++
}

func (fl *freqList) unlink(e *lfuEntry) {
	e.prev.next = e.next
	e.next.prev = e.prev
	e.prev = nil
	e.next = nil
	fl.size--
}

func (fl *freqList) back() *lfuEntry {
	if fl.size == 0 {
		return nil
	}
	return fl.tail.prev
}

// LFUBackend is a bounded cache that evicts the least frequently used entry
// (least recently used among ties) when full. Get, Set and eviction are O(1).
//
// Entries carry their own TTL and expire lazily on access, like MemoryBackend.
type LFUBackend struct {
	mu       sync.Mutex
	capacity int
	keyMap   map[string]*lfuEntry
	freqMap  map[int]*freqList
	minFreq  int
	now      func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// NewLFUBackend creates an LFU backend holding at most capacity entries.
// capacity <= 0 defaults to 10000. sweepInterval <= 0 disables the sweeper.
func NewLFUBackend(capacity int, sweepInterval time.Duration) *LFUBackend {
	if capacity <= 0 {
		capacity = 10000
	}
	c := &LFUBackend{
		capacity: capacity,
		keyMap:   make(map[string]*lfuEntry, capacity),
		freqMap:  make(map[int]*freqList),
		now:      time.Now,
		stop:     make(chan struct{}),
	}
	if sweepInterval > 0 {
		go c.sweepLoop(sweepInterval)
	}
	return c
}

// Get returns the value for key and bumps its frequency.
func (c *LFUBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.keyMap[key]
	if !ok {
		return nil, false, nil
	}
	if !c.now().Before(e.expiresAt) {
		c.remove(e)
		metrics.CacheEvictions.WithLabelValues(string(BackendLFU), "expired").Inc()
		return nil, false, nil
	}

	c.touch(e)
	return e.value, true, nil
}

// Set stores value for ttl, evicting the least frequently used entry when full.
func (c *LFUBackend) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.now().Add(ttl)

	if e, ok := c.keyMap[key]; ok {
		e.value = value
		e.expiresAt = expiresAt
		c.touch(e)
		return nil
	}

	if len(c.keyMap) >= c.capacity {
		c.evict()
	}

	e := &lfuEntry{key: key, value: value, freq: 1, expiresAt: expiresAt}
	if c.freqMap[1] == nil {
		c.freqMap[1] = newFreqList()
	}
	c.freqMap[1].pushFront(e)
	c.keyMap[key] = e
	c.minFreq = 1
	return nil
}

// Delete removes key.
func (c *LFUBackend) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.keyMap[key]; ok {
		c.remove(e)
	}
	return nil
}

// Len returns the number of stored entries.
func (c *LFUBackend) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.keyMap)
}

// Frequency returns the access count for key, or 0 if absent.
func (c *LFUBackend) Frequency(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.keyMap[key]; ok {
		return e.freq
	}
	return 0
}

// Sweep removes every expired entry and returns how many were removed.
func (c *LFUBackend) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for _, e := range c.keyMap {
		if !now.Before(e.expiresAt) {
			c.remove(e)
			removed++
		}
	}
	if removed > 0 {
		metrics.CacheEvictions.WithLabelValues(string(BackendLFU), "expired").Add(float64(removed))
	}
	return removed
}

// Close stops the sweeper. Safe to call more than once.
func (c *LFUBackend) Close() error {
	c.stopOnce.Do(func() { close(c.stop) })
	return nil
}

func (c *LFUBackend) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.Sweep()
		case <-c.stop:
			return
		}
	}
}

// Internal methods (must be called with lock held)

// touch moves e to the next frequency list.
func (c *LFUBackend) touch(e *lfuEntry) {
	if fl, ok := c.freqMap[e.freq]; ok {
		fl.unlink(e)
		if fl.size == 0 {
			delete(c.freqMap, e.freq)
			if c.minFreq == e.freq {
				c.minFreq++
			}
		}
	}

	e.freq++
	if c.freqMap[e.freq] == nil {
		c.freqMap[e.freq] = newFreqList()
	}
	c.freqMap[e.freq].pushFront(e)
}

// evict drops the least recently used entry of the lowest frequency.
func (c *LFUBackend) evict() {
	fl := c.freqMap[c.minFreq]
	if fl == nil || fl.size == 0 {
		// minFreq can go stale after removals; rescan.
		c.minFreq = 0
		for f, l := range c.freqMap {
			if l.size > 0 && (c.minFreq == 0 || f < c.minFreq) {
				c.minFreq = f
			}
		}
		if fl = c.freqMap[c.minFreq]; fl == nil {
			return
		}
	}

	if victim := fl.back(); victim != nil {
		c.remove(victim)
		metrics.CacheEvictions.WithLabelValues(string(BackendLFU), "capacity").Inc()
	}
}

func (c *LFUBackend) remove(e *lfuEntry) {
	if fl, ok := c.freqMap[e.freq]; ok {
		fl.unlink(e)
		if fl.size == 0 {
			delete(c.freqMap, e.freq)
		}
	}
	delete(c.keyMap, e.key)
}
