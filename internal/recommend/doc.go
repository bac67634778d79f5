// Macrocore - Sports Nutrition Computation Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/macrocore

// Package recommend orchestrates product recommendations for a user.
//
// # Flow
//
// GetRecommendations loads the health profile, builds a cache key from
// (userId, goal, activityLevel, limit, maxProducts) and calls the external
// scoring service through cache.Store.GetOrLoad, so concurrent identical
// requests share a single outbound call. The raw service response is what
// gets cached; allergen filtering, ordering and truncation are applied on
// every read so that a profile edit takes effect immediately.
//
// # Failure Handling
//
// Outbound calls are bounded by a timeout, a token bucket (x/time/rate) that
// fails fast instead of queueing, and a gobreaker circuit breaker. Any of
// these failing yields an *models.ExternalServiceError, which never reaches
// the caller: the result is marked Fallback and filled from a FallbackSource
// (by default CatalogFallback, which ranks catalog products by goal).
// Fallback results are not cached.
//
// # Ordering
//
// Recommendations are ordered by score descending, then confidence
// descending. Ties keep the order returned by the service.
//
// # Thread Safety
//
// Orchestrator, HTTPClient, BreakerClient and CatalogFallback are safe for
// concurrent use.
package recommend
