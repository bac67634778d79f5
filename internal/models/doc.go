// Macrocore - Sports Nutrition Computation Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/macrocore

/*
Package models defines the data structures shared by the computation core.

# Overview

The types in this package are plain values. They carry JSON tags for the
REST layer and the external recommendation service, and validate tags
consumed by internal/validation:

  - HealthProfile: physiological snapshot of one user
  - NutritionResult and MacroTargets: output of the nutrition calculator
  - Product, ProductFilter, ProductPage: catalog entities and queries
  - Recommendation, RecommendationResult: orchestrator output
  - ProductChanged: invalidation event broadcast on catalog writes

# Errors

errors.go holds the error taxonomy used across the core. Every typed error
matches a sentinel through errors.Is:

	if errors.Is(err, models.ErrNotFound) {
	    // 404
	}

ValidationError and NotFoundError propagate to the caller unchanged.
ExternalServiceError and CacheError are contained inside the core: the
orchestrator turns the former into RecommendationResult.Fallback and the
cache turns the latter into a miss.

# Immutability

The core never mutates a HealthProfile it receives. Products handed out by
the catalog are decoded copies of the cached bytes, so callers may modify
them freely without affecting other readers.
*/
package models
