// Macrocore - Sports Nutrition Computation Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/macrocore

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/tomtom215/macrocore/internal/middleware"
	"github.com/tomtom215/macrocore/internal/models"
)

// SecurityConfig configures CORS and per-client rate limits.
type SecurityConfig struct {
	// AllowedOrigins is the CORS allow list. "*" allows any origin.
	AllowedOrigins []string

	// Requests per Window per client IP across /api/v1.
	Requests int
	Window   time.Duration

	// RecommendationRequests per Window per client IP on the
	// recommendations endpoint, on top of Requests.
	RecommendationRequests int

	// Disabled turns both limits off.
	Disabled bool
}

// DefaultSecurityConfig allows no cross-origin callers, 100 API requests and
// 20 recommendation requests per minute per client.
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		AllowedOrigins:         []string{},
		Requests:               100,
		Window:                 time.Minute,
		RecommendationRequests: 20,
	}
}

// Security builds the CORS, rate limit and response header middleware.
type Security struct {
	config SecurityConfig
	cors   func(http.Handler) http.Handler
}

// NewSecurity creates the middleware set for cfg.
func NewSecurity(cfg SecurityConfig) *Security {
	return &Security{
		config: cfg,
		cors: cors.Handler(cors.Options{
			AllowedOrigins: cfg.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type", middleware.RequestIDHeader},
			ExposedHeaders: []string{middleware.RequestIDHeader, "X-RateLimit-Remaining"},
			MaxAge:         int((24 * time.Hour).Seconds()),
		}),
	}
}

// CORS answers preflight requests and sets the allow headers.
func (s *Security) CORS() func(http.Handler) http.Handler {
	return s.cors
}

// RateLimit limits each client IP across the API.
func (s *Security) RateLimit() func(http.Handler) http.Handler {
	return s.limit(s.config.Requests)
}

// RecommendationLimit is the tighter per-client budget for the
// recommendations endpoint, whose misses each cost a scoring service call.
func (s *Security) RecommendationLimit() func(http.Handler) http.Handler {
	return s.limit(s.config.RecommendationRequests)
}

func (s *Security) limit(requests int) func(http.Handler) http.Handler {
	if s.config.Disabled || requests <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(requests, s.config.Window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
			respondError(w, http.StatusTooManyRequests, models.CodeRateLimited, "Rate limit exceeded", nil, nil)
		}),
	)
}

// APISecurityHeaders marks API responses as uncacheable JSON that must not be
// framed or sniffed. HSTS is added on TLS connections.
func APISecurityHeaders() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "no-referrer")
			h.Set("Cache-Control", "no-store")
			if r.TLS != nil {
				h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}
			next.ServeHTTP(w, r)
		})
	}
}
