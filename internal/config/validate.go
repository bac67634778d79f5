// Macrocore - Sports Nutrition Computation Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/macrocore

package config

import (
	"fmt"
	"strings"

	"github.com/tomtom215/macrocore/internal/cache"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateLogging(); err != nil {
		return err
	}

	if err := c.validateCache(); err != nil {
		return err
	}

	if err := c.validateStorage(); err != nil {
		return err
	}

	if err := c.validateRecommend(); err != nil {
		return err
	}

	if err := c.validateEvents(); err != nil {
		return err
	}

	return c.validateSecurity()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("HTTP_READ_TIMEOUT and HTTP_WRITE_TIMEOUT must be positive")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("HTTP_SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	validLevels := map[string]bool{
		"trace": true, "debug": true, "info": true,
		"warn": true, "error": true, "fatal": true, "panic": true, "disabled": true,
	}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error, fatal, panic, disabled (got: %s)", c.Logging.Level)
	}

	format := strings.ToLower(c.Logging.Format)
	if format != "json" && format != "console" {
		return fmt.Errorf("LOG_FORMAT must be 'json' or 'console' (got: %s)", c.Logging.Format)
	}
	return nil
}

func (c *Config) validateCache() error {
	switch c.Cache.BackendType() {
	case cache.BackendMemory, cache.BackendBadger:
	case cache.BackendLFU:
		if c.Cache.Capacity < 1 {
			return fmt.Errorf("CACHE_CAPACITY must be at least 1 for the lfu backend")
		}
	default:
		return fmt.Errorf("CACHE_BACKEND must be 'memory', 'lfu' or 'badger' (got: %s)", c.Cache.Backend)
	}

	if c.Cache.ProductTTL <= 0 {
		return fmt.Errorf("CACHE_PRODUCT_TTL must be positive")
	}
	if c.Cache.RecommendationTTL <= 0 {
		return fmt.Errorf("CACHE_RECOMMENDATION_TTL must be positive")
	}
	if c.Cache.SweepInterval < 0 {
		return fmt.Errorf("CACHE_SWEEP_INTERVAL must not be negative")
	}
	return nil
}

func (c *Config) validateStorage() error {
	if !c.Storage.InMemory && c.Storage.Path == "" {
		return fmt.Errorf("STORAGE_PATH is required unless STORAGE_IN_MEMORY=true")
	}
	if c.Storage.GCRatio <= 0 || c.Storage.GCRatio >= 1 {
		return fmt.Errorf("STORAGE_GC_RATIO must be between 0 and 1 (exclusive)")
	}
	return nil
}

func (c *Config) validateRecommend() error {
	rc := c.ToRecommendConfig()
	return rc.Validate()
}

func (c *Config) validateEvents() error {
	ec := c.Events.ToEventsConfig()
	return ec.Validate()
}

func (c *Config) validateSecurity() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < 1 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1")
	}
	if c.Security.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
	}
	if c.Security.RecommendRateLimitReqs < 1 {
		return fmt.Errorf("RECOMMEND_RATE_LIMIT_REQUESTS must be at least 1")
	}
	return nil
}
