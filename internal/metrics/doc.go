// Macrocore - Sports Nutrition Computation Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/macrocore

/*
Package metrics provides Prometheus metrics for the computation core.

All collectors are registered on the default registry through promauto and
exposed at /metrics by the API router.

# Available Metrics

Cache Metrics (label cache = product | product_barcode | recommendation):
  - cache_hits_total, cache_misses_total
  - cache_errors_total: backend failures degraded to a miss (labels: cache, op)
  - cache_loads_total: loader invocations, one per single-flight group
  - cache_shared_loads_total: callers that joined an in-flight load
  - cache_evictions_total: expiry and capacity evictions (labels: backend, reason)

Recommendation Metrics:
  - recommendation_requests_total: outcome = cache_hit | upstream | fallback
  - recommendation_service_call_duration_seconds: upstream latency
  - recommendations_allergen_filtered_total

Circuit Breaker Metrics:
  - circuit_breaker_state: 0=closed, 1=half-open, 2=open
  - circuit_breaker_requests_total: result = success | failure | rejected
  - circuit_breaker_state_transitions_total

Catalog and Event Metrics:
  - catalog_writes_total, catalog_invalidations_total
  - events_published_total, events_consumed_total

API Metrics:
  - api_requests_total, api_request_duration_seconds

# Example Queries

Recommendation fallback ratio:

	sum(rate(recommendation_requests_total{outcome="fallback"}[5m]))
	  / sum(rate(recommendation_requests_total[5m]))

Product cache hit rate:

	rate(cache_hits_total{cache="product"}[5m])
	  / (rate(cache_hits_total{cache="product"}[5m]) + rate(cache_misses_total{cache="product"}[5m]))
*/
package metrics
