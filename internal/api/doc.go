// Macrocore - Sports Nutrition Computation Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/macrocore

/*
Package api exposes the computation core over HTTP using the Chi router.

Handlers are thin: they decode the request, call the nutrition calculator,
the product catalog, the profile store or the recommendation orchestrator,
and encode the result in the standard models.APIResponse envelope.

# Routes

	POST   /api/v1/nutrition/calculate
	GET    /api/v1/profiles/{userId}
	PUT    /api/v1/profiles/{userId}
	DELETE /api/v1/profiles/{userId}
	GET    /api/v1/profiles/{userId}/nutrition
	GET    /api/v1/products
	POST   /api/v1/products
	GET    /api/v1/products/search?q=
	GET    /api/v1/products/barcode/{code}
	GET    /api/v1/products/{id}
	PUT    /api/v1/products/{id}
	DELETE /api/v1/products/{id}
	GET    /api/v1/products/{id}/portion?grams=
	GET    /api/v1/recommendations/{userId}?goal=&activityLevel=&limit=&maxProducts=
	GET    /health
	GET    /metrics

# Error Mapping

Errors are classified with errors.Is against the sentinels in internal/models:

  - models.ErrValidation: 400 VALIDATION_FAILED, with per-field details
  - models.ErrNotFound: 404 NOT_FOUND
  - models.ErrExternalService: 502 EXTERNAL_SERVICE_ERROR
  - models.ErrCache: 503 CACHE_UNAVAILABLE
  - anything else: 500 INTERNAL_ERROR

Malformed request bodies are rejected with 400 BAD_REQUEST.

# Middleware

Every request passes through request ID assignment, the zerolog access log,
real IP extraction, panic recovery, response compression and CORS. API routes
add inbound rate limiting (go-chi/httprate), security headers and Prometheus
request metrics keyed by route pattern.
*/
package api
