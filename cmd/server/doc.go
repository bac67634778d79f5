// Macrocore - Sports Nutrition Computation Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/macrocore

// Package main is the entry point for the Macrocore server.
//
// Macrocore computes nutrition targets from health profiles, serves a cached
// product catalog and fronts an external recommendation scoring service with
// caching, request coalescing, a circuit breaker and a catalog fallback.
//
// # Startup Order
//
//  1. Configuration: defaults, optional YAML file, environment (Koanf v2)
//  2. Logging: zerolog with the configured level and format
//  3. Storage: Badger database for profiles and products
//  4. Caches: product and recommendation stores on the configured backend
//  5. Events: product change bus (gochannel or NATS, optionally embedded)
//  6. Recommendation: HTTP client, circuit breaker, orchestrator, fallback
//  7. HTTP: Chi router with CORS, rate limiting and Prometheus metrics
//  8. Supervisor: suture tree running GC, the invalidation listener and HTTP
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the root context. The HTTP server drains for up
// to HTTP_SHUTDOWN_TIMEOUT, then the event bus, caches and database are
// closed in reverse order of creation.
//
// # Example
//
//	export STORAGE_PATH=/var/lib/macrocore
//	export RECOMMEND_SERVICE_URL=http://scoring:8000/api/recommendations
//	export CACHE_BACKEND=lfu
//	./macrocore
package main
