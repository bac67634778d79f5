// Macrocore - Sports Nutrition Computation Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/macrocore

/*
Package cache provides the typed, single-flight cache shared by the catalog
and the recommendation orchestrator.

# Architecture

A Store[V] is a typed front end over a byte-level Backend:

	Store[V] (JSON codec, single-flight, metrics, degrade-to-miss)
	    |
	    +-- MemoryBackend  unbounded TTL map, lazy expiry, optional sweeper
	    +-- LFUBackend     bounded, O(1) least-frequently-used eviction
	    +-- BadgerBackend  persistent, native badger TTL, shared DB with prefix

Stores are constructed at service start and closed at shutdown; there is no
package-level cache instance.

# Semantics

  - Get never returns an expired entry. Expiry is checked on read; a sweeper
    is only needed to bound memory for keys that are never read again.
  - Set overwrites. There is one entry per key.
  - Delete is the write-through invalidation hook. It also fences in-flight
    loads: a load that began before the Delete does not write its result.
  - GetOrLoad collapses concurrent misses for a key into one loader call
    (golang.org/x/sync/singleflight). Different keys never wait on each other.
    Loader errors are shared with all waiters and never cached.
  - The loader runs on a context detached from the first caller's
    cancellation, so one disconnecting client does not fail the others.
  - Backend errors become models.CacheError, counted in cache_errors_total
    and logged at warn level, then handled as a miss.

# Usage

	products := cache.NewStore[models.Product]("product", backend, time.Hour)

	p, err := products.GetOrLoad(ctx, "product:"+id, time.Hour, func(ctx context.Context) (models.Product, error) {
	    return repo.FindByID(ctx, id)
	})

	// after an update
	products.Delete(ctx, "product:"+id)
*/
package cache
