// Macrocore - Sports Nutrition Computation Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/macrocore

package api

import (
	"context"
	"time"

	"github.com/tomtom215/macrocore/internal/models"
)

// ProfileRepository stores health profiles. storage.ProfileStore satisfies it.
type ProfileRepository interface {
	FindByID(ctx context.Context, userID string) (*models.HealthProfile, error)
	Upsert(ctx context.Context, p *models.HealthProfile) error
	Delete(ctx context.Context, userID string) error
}

// ProductCatalog is the cached product catalog. catalog.Catalog satisfies it.
type ProductCatalog interface {
	GetByID(ctx context.Context, id string) (*models.Product, error)
	GetByBarcode(ctx context.Context, code string) (*models.Product, error)
	GetPage(ctx context.Context, page, limit int, filter models.ProductFilter) (*models.ProductPage, error)
	Search(ctx context.Context, query string) ([]models.Product, error)
	Create(ctx context.Context, p *models.Product) (*models.Product, error)
	Update(ctx context.Context, id string, p *models.Product) (*models.Product, error)
	Delete(ctx context.Context, id string) error
	GetNutritionForPortion(ctx context.Context, id string, grams float64) (*models.PortionNutrition, error)
}

// Recommender produces recommendations for a user.
// recommend.Orchestrator satisfies it.
type Recommender interface {
	GetRecommendations(ctx context.Context, userID, goal, activityLevel string, opts models.RecommendationOptions) (*models.RecommendationResult, error)
}

// HealthCheck reports whether a dependency is usable.
type HealthCheck func(ctx context.Context) error

// Handler holds the dependencies shared by all HTTP handlers.
type Handler struct {
	profiles    ProfileRepository
	catalog     ProductCatalog
	recommender Recommender
	checks      map[string]HealthCheck
	version     string
	startTime   time.Time
}

// NewHandler creates a handler over the given core components.
func NewHandler(profiles ProfileRepository, catalog ProductCatalog, recommender Recommender) *Handler {
	return &Handler{
		profiles:    profiles,
		catalog:     catalog,
		recommender: recommender,
		checks:      make(map[string]HealthCheck),
		version:     "dev",
		startTime:   time.Now(),
	}
}

// AddHealthCheck registers a named dependency check reported by /health.
// It must be called before the handler serves requests.
func (h *Handler) AddHealthCheck(name string, check HealthCheck) {
	h.checks[name] = check
}

// SetVersion sets the version string reported by /health.
func (h *Handler) SetVersion(v string) {
	h.version = v
}
