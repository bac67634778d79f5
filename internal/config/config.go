// Macrocore - Sports Nutrition Computation Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/macrocore

package config

import (
	"os"
	"time"

	"github.com/tomtom215/macrocore/internal/cache"
	"github.com/tomtom215/macrocore/internal/events"
	"github.com/tomtom215/macrocore/internal/logging"
	"github.com/tomtom215/macrocore/internal/recommend"
	"github.com/tomtom215/macrocore/internal/storage"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`
	Cache     CacheConfig     `koanf:"cache"`
	Storage   StorageConfig   `koanf:"storage"`
	Recommend RecommendConfig `koanf:"recommend"`
	Events    EventsConfig    `koanf:"events"`
	Security  SecurityConfig  `koanf:"security"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// LoggingConfig holds logging configuration for zerolog.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	// Default: false
	Caller bool `koanf:"caller"`
}

// CacheConfig selects the cache backend and entry lifetimes.
type CacheConfig struct {
	// Backend is memory, lfu or badger. The badger backend shares the
	// storage database under its own key prefix.
	Backend string `koanf:"backend"`

	// Capacity bounds the lfu backend.
	Capacity int `koanf:"capacity"`

	// SweepInterval enables background expiry for memory and lfu.
	SweepInterval time.Duration `koanf:"sweep_interval"`

	// ProductTTL is the lifetime of cached catalog products.
	ProductTTL time.Duration `koanf:"product_ttl"`

	// RecommendationTTL is the lifetime of cached scoring service responses.
	RecommendationTTL time.Duration `koanf:"recommendation_ttl"`
}

// StorageConfig holds Badger settings for the profile and product stores.
type StorageConfig struct {
	Path        string        `koanf:"path"`
	InMemory    bool          `koanf:"in_memory"`
	SyncWrites  bool          `koanf:"sync_writes"`
	Compression bool          `koanf:"compression"`
	GCInterval  time.Duration `koanf:"gc_interval"`
	GCRatio     float64       `koanf:"gc_ratio"`
}

// RecommendConfig configures the external scoring service client.
type RecommendConfig struct {
	ServiceURL    string        `koanf:"service_url"`
	Timeout       time.Duration `koanf:"timeout"`
	RatePerSecond float64       `koanf:"rate_per_second"`
	Burst         int           `koanf:"burst"`
	FallbackSize  int           `koanf:"fallback_size"`
	Breaker       BreakerConfig `koanf:"breaker"`
}

// BreakerConfig configures the circuit breaker around the scoring service.
type BreakerConfig struct {
	MaxRequests  uint32        `koanf:"max_requests"`
	Interval     time.Duration `koanf:"interval"`
	Timeout      time.Duration `koanf:"timeout"`
	MinRequests  uint32        `koanf:"min_requests"`
	FailureRatio float64       `koanf:"failure_ratio"`
}

// EventsConfig configures product change broadcasting.
type EventsConfig struct {
	Enabled      bool          `koanf:"enabled"`
	Transport    string        `koanf:"transport"`
	Topic        string        `koanf:"topic"`
	CloseTimeout time.Duration `koanf:"close_timeout"`
	BufferSize   int64         `koanf:"buffer_size"`
	NATS         NATSConfig    `koanf:"nats"`
}

// NATSConfig holds NATS connection settings for the nats transport.
type NATSConfig struct {
	URL           string        `koanf:"url"`
	Embedded      bool          `koanf:"embedded"`
	EmbeddedHost  string        `koanf:"embedded_host"`
	EmbeddedPort  int           `koanf:"embedded_port"`
	MaxReconnects int           `koanf:"max_reconnects"`
	ReconnectWait time.Duration `koanf:"reconnect_wait"`
}

// SecurityConfig holds CORS and inbound rate limit settings.
// RecommendRateLimitReqs is a tighter per-client budget for the
// recommendations endpoint, which fans out to the scoring service.
type SecurityConfig struct {
	CORSOrigins            []string      `koanf:"cors_origins"`
	RateLimitReqs          int           `koanf:"rate_limit_reqs"`
	RateLimitWindow        time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled      bool          `koanf:"rate_limit_disabled"`
	RecommendRateLimitReqs int           `koanf:"recommend_rate_limit_reqs"`
}

// ToLoggingConfig converts to the logging package configuration.
func (c *LoggingConfig) ToLoggingConfig() logging.Config {
	return logging.Config{
		Level:  c.Level,
		Format: c.Format,
		Caller: c.Caller,
		Output: os.Stderr,
	}
}

// BackendType returns the configured cache backend type.
func (c *CacheConfig) BackendType() cache.BackendType {
	return cache.BackendType(c.Backend)
}

// ToStorageConfig converts to the storage package configuration.
func (c *StorageConfig) ToStorageConfig() storage.Config {
	return storage.Config{
		Path:        c.Path,
		InMemory:    c.InMemory,
		SyncWrites:  c.SyncWrites,
		Compression: c.Compression,
		GCInterval:  c.GCInterval,
		GCRatio:     c.GCRatio,
	}
}

// ToRecommendConfig converts to the recommend package configuration.
// The result cache TTL comes from the cache section.
func (c *Config) ToRecommendConfig() recommend.Config {
	r := c.Recommend
	return recommend.Config{
		ServiceURL:    r.ServiceURL,
		Timeout:       r.Timeout,
		RatePerSecond: r.RatePerSecond,
		Burst:         r.Burst,
		CacheTTL:      c.Cache.RecommendationTTL,
		FallbackSize:  r.FallbackSize,
		Breaker: recommend.BreakerConfig{
			MaxRequests:  r.Breaker.MaxRequests,
			Interval:     r.Breaker.Interval,
			Timeout:      r.Breaker.Timeout,
			MinRequests:  r.Breaker.MinRequests,
			FailureRatio: r.Breaker.FailureRatio,
		},
	}
}

// ToEventsConfig converts to the events package configuration.
func (c *EventsConfig) ToEventsConfig() events.Config {
	return events.Config{
		Enabled:       c.Enabled,
		Transport:     c.Transport,
		URL:           c.NATS.URL,
		Embedded:      c.NATS.Embedded,
		EmbeddedHost:  c.NATS.EmbeddedHost,
		EmbeddedPort:  c.NATS.EmbeddedPort,
		Topic:         c.Topic,
		MaxReconnects: c.NATS.MaxReconnects,
		ReconnectWait: c.NATS.ReconnectWait,
		CloseTimeout:  c.CloseTimeout,
		BufferSize:    c.BufferSize,
	}
}
