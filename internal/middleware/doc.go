// Macrocore - Sports Nutrition Computation Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/macrocore

/*
Package middleware provides HTTP middleware shared by the API router.

Middleware here uses the plain func(http.HandlerFunc) http.HandlerFunc
shape; the api package adapts it for chi's r.Use.

  - RequestID: assigns or propagates X-Request-ID and seeds the logging
    context with request and correlation IDs
  - PrometheusMetrics: records request count and latency per route pattern
  - AccessLog: one structured zerolog line per request

Usage:

	handler := middleware.RequestID(middleware.PrometheusMetrics(mux.ServeHTTP))
*/
package middleware
