// Macrocore - Sports Nutrition Computation Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/macrocore

package middleware

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/macrocore/internal/logging"
)

// AccessLog logs one line per request with method, route, status and
// duration. 5xx responses log at error level, 4xx at warn, the rest at debug.
// It must run inside RequestID to pick up the request ID.
func AccessLog(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		next(ww, r)

		var event *zerolog.Event
		switch {
		case ww.statusCode >= 500:
			event = logging.Error()
		case ww.statusCode >= 400:
			event = logging.Warn()
		default:
			event = logging.Debug()
		}

		event.
			Str("component", "http").
			Str("request_id", logging.RequestIDFromContext(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("route", routePattern(r)).
			Int("status", ww.statusCode).
			Int("bytes", ww.bytes).
			Dur("duration", time.Since(start)).
			Msg("HTTP request")
	}
}
