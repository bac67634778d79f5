// Macrocore - Sports Nutrition Computation Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/macrocore

package main

import (
	"fmt"

	"github.com/tomtom215/macrocore/internal/cache"
	"github.com/tomtom215/macrocore/internal/catalog"
	"github.com/tomtom215/macrocore/internal/config"
	"github.com/tomtom215/macrocore/internal/events"
	"github.com/tomtom215/macrocore/internal/logging"
	"github.com/tomtom215/macrocore/internal/models"
	"github.com/tomtom215/macrocore/internal/recommend"
	"github.com/tomtom215/macrocore/internal/storage"
)

// Key prefixes for the badger cache backend inside the shared database.
const (
	productCachePrefix        = "cache/products/"
	recommendationCachePrefix = "cache/recommendations/"
)

// caches holds the typed cache stores.
type caches struct {
	products        *cache.Store[models.Product]
	recommendations *cache.Store[[]models.Recommendation]
}

func (c *caches) Close() {
	for _, closer := range []interface{ Close() error }{c.products, c.recommendations} {
		if err := closer.Close(); err != nil {
			logging.Warn().Err(err).Msg("Error closing cache")
		}
	}
}

// initCaches builds one store per cached value type on the configured backend.
func initCaches(cfg *config.Config, db *storage.DB) (*caches, error) {
	newBackend := func(prefix string) (cache.Backend, error) {
		return cache.NewBackend(cache.BackendConfig{
			Type:          cfg.Cache.BackendType(),
			Capacity:      cfg.Cache.Capacity,
			SweepInterval: cfg.Cache.SweepInterval,
			DB:            db.Badger(),
			Prefix:        prefix,
		})
	}

	productBackend, err := newBackend(productCachePrefix)
	if err != nil {
		return nil, fmt.Errorf("product cache: %w", err)
	}
	recBackend, err := newBackend(recommendationCachePrefix)
	if err != nil {
		_ = productBackend.Close()
		return nil, fmt.Errorf("recommendation cache: %w", err)
	}

	logging.Info().
		Str("backend", cfg.Cache.Backend).
		Int("capacity", cfg.Cache.Capacity).
		Dur("product_ttl", cfg.Cache.ProductTTL).
		Dur("recommendation_ttl", cfg.Cache.RecommendationTTL).
		Msg("Caches initialized")

	return &caches{
		products:        cache.NewStore[models.Product]("products", productBackend, cfg.Cache.ProductTTL),
		recommendations: cache.NewStore[[]models.Recommendation]("recommendations", recBackend, cfg.Cache.RecommendationTTL),
	}, nil
}

// initEvents creates the product change bus, or returns nil when events are disabled.
func initEvents(cfg *config.Config) (*events.Bus, error) {
	if !cfg.Events.Enabled {
		logging.Info().Msg("Product change events disabled (EVENTS_ENABLED=false)")
		return nil, nil
	}

	bus, err := events.NewBus(cfg.Events.ToEventsConfig())
	if err != nil {
		return nil, fmt.Errorf("event bus: %w", err)
	}

	logging.Info().
		Str("transport", bus.Transport()).
		Str("topic", bus.Topic()).
		Bool("embedded_nats", cfg.Events.NATS.Embedded).
		Msg("Event bus initialized")
	return bus, nil
}

// recommendComponents holds the recommendation pipeline.
type recommendComponents struct {
	orchestrator *recommend.Orchestrator
	breaker      *recommend.BreakerClient
}

// initRecommend wires HTTP client -> circuit breaker -> orchestrator, with the
// catalog as fallback source.
func initRecommend(cfg *config.Config, profiles recommend.ProfileRepository, results *cache.Store[[]models.Recommendation], cat *catalog.Catalog) (*recommendComponents, error) {
	rc := cfg.ToRecommendConfig()
	if err := rc.Validate(); err != nil {
		return nil, err
	}

	breaker := recommend.NewBreakerClient(recommend.NewHTTPClient(rc), rc.Breaker)
	orch := recommend.NewOrchestrator(profiles, breaker, results, rc.CacheTTL)
	orch.SetFallback(recommend.NewCatalogFallback(cat, rc.FallbackSize))

	logging.Info().
		Str("service_url", rc.ServiceURL).
		Dur("timeout", rc.Timeout).
		Float64("rate_per_second", rc.RatePerSecond).
		Int("fallback_size", rc.FallbackSize).
		Msg("Recommendation orchestrator initialized")

	return &recommendComponents{orchestrator: orch, breaker: breaker}, nil
}
