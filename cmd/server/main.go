// Macrocore - Sports Nutrition Computation Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/macrocore

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/macrocore/internal/api"
	"github.com/tomtom215/macrocore/internal/catalog"
	"github.com/tomtom215/macrocore/internal/config"
	"github.com/tomtom215/macrocore/internal/events"
	"github.com/tomtom215/macrocore/internal/logging"
	"github.com/tomtom215/macrocore/internal/storage"
	"github.com/tomtom215/macrocore/internal/supervisor"
	"github.com/tomtom215/macrocore/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		logging.Error().Err(err).Msg("Macrocore stopped with error")
		os.Exit(1)
	}
}

//nolint:gocyclo // Sequential setup steps
func run() error {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logCfg := cfg.Logging.ToLoggingConfig()
	logCfg.Version = version
	logging.Init(logCfg)
	logging.Info().Str("version", version).Msg("Starting Macrocore")

	// Storage
	db, err := storage.Open(cfg.Storage.ToStorageConfig())
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing storage")
		}
	}()

	// Caches
	stores, err := initCaches(cfg, db)
	if err != nil {
		return err
	}
	defer stores.Close()

	// Catalog and change events
	profiles := storage.NewProfileStore(db)
	cat := catalog.New(storage.NewProductStore(db), stores.products, cfg.Cache.ProductTTL)

	bus, err := initEvents(cfg)
	if err != nil {
		return err
	}
	if bus != nil {
		cat.SetPublisher(bus)
		defer func() {
			if err := bus.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing event bus")
			}
		}()
	}

	// Recommendations
	rec, err := initRecommend(cfg, profiles, stores.recommendations, cat)
	if err != nil {
		return fmt.Errorf("recommendation setup: %w", err)
	}

	// HTTP
	handler := api.NewHandler(profiles, cat, rec.orchestrator)
	handler.SetVersion(version)
	handler.AddHealthCheck("storage", db.Ping)

	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
	}
	for _, origin := range cfg.Security.CORSOrigins {
		if origin == "*" {
			logging.Warn().Msg("CORS allows any origin (CORS_ORIGINS=*); set explicit origins in production")
			break
		}
	}

	security := api.NewSecurity(api.SecurityConfig{
		AllowedOrigins:         cfg.Security.CORSOrigins,
		Requests:               cfg.Security.RateLimitReqs,
		Window:                 cfg.Security.RateLimitWindow,
		RecommendationRequests: cfg.Security.RecommendRateLimitReqs,
		Disabled:               cfg.Security.RateLimitDisabled,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           api.NewRouter(handler, security).SetupChi(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	// Supervisor tree
	treeCfg := supervisor.DefaultTreeConfig()
	treeCfg.ShutdownTimeout = cfg.Server.ShutdownTimeout
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), treeCfg)
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	tree.AddDataService(storage.NewGCService(db))
	if bus != nil {
		tree.AddMessagingService(events.NewInvalidationListener(bus, cat))
	}
	tree.AddAPIService(services.NewHTTPServerService(server, addr, cfg.Server.ShutdownTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		logging.Info().Msg("Shutdown signal received")
	}()

	logging.Info().Str("addr", addr).Msg("Starting supervisor tree")
	if err := tree.Run(ctx); err != nil {
		return err
	}

	logging.Info().
		Str("breaker_state", rec.breaker.State().String()).
		Msg("Macrocore stopped gracefully")
	return nil
}
