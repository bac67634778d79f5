// Macrocore - Sports Nutrition Computation Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/macrocore

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/macrocore/internal/middleware"
	"github.com/tomtom215/macrocore/internal/models"
)

// Router wires handlers and middleware into a Chi mux.
type Router struct {
	handler  *Handler
	security *Security
}

// NewRouter creates a router. A nil security uses DefaultSecurityConfig.
func NewRouter(handler *Handler, security *Security) *Router {
	if security == nil {
		security = NewSecurity(DefaultSecurityConfig())
	}
	return &Router{handler: handler, security: security}
}

// chiMiddleware adapts http.HandlerFunc middleware to Chi's func(http.Handler) http.Handler.
func chiMiddleware(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	r.Use(chiMiddleware(middleware.RequestID)) // X-Request-ID plus logging context
	r.Use(chiMiddleware(middleware.AccessLog))
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Compress(5, "application/json"))
	r.Use(router.security.CORS()) // global so OPTIONS preflight is answered

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusNotFound, models.CodeNotFound, "Route not found", nil, nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil, nil)
	})

	// ========================
	// Operational Endpoints
	// ========================
	r.Get("/health", router.handler.Health)
	r.Handle("/metrics", promhttp.Handler())

	// ========================
	// Core API Endpoints
	// ========================
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.security.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))

		r.Post("/nutrition/calculate", router.handler.CalculateNutrition)

		r.Route("/profiles/{userId}", func(r chi.Router) {
			r.Get("/", router.handler.GetProfile)
			r.Put("/", router.handler.PutProfile)
			r.Delete("/", router.handler.DeleteProfile)
			r.Get("/nutrition", router.handler.ProfileNutrition)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", router.handler.ListProducts)
			r.Post("/", router.handler.CreateProduct)
			r.Get("/search", router.handler.SearchProducts)
			r.Get("/barcode/{code}", router.handler.GetProductByBarcode)
			r.Get("/{id}", router.handler.GetProduct)
			r.Put("/{id}", router.handler.UpdateProduct)
			r.Delete("/{id}", router.handler.DeleteProduct)
			r.Get("/{id}/portion", router.handler.ProductPortion)
		})

		r.With(router.security.RecommendationLimit()).
			Get("/recommendations/{userId}", router.handler.GetRecommendations)
	})

	return r
}
