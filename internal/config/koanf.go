// Macrocore - Sports Nutrition Computation Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/macrocore

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/macrocore/internal/events"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/macrocore/config.yaml",
	"/etc/macrocore/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			Host:            "0.0.0.0",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Cache: CacheConfig{
			Backend:           "lfu",
			Capacity:          10000,
			SweepInterval:     time.Minute,
			ProductTTL:        time.Hour, // product:{id} entries live 3600 s
			RecommendationTTL: 10 * time.Minute,
		},
		Storage: StorageConfig{
			Path:        "/data/macrocore",
			InMemory:    false,
			SyncWrites:  true,
			Compression: true,
			GCInterval:  10 * time.Minute,
			GCRatio:     0.5,
		},
		Recommend: RecommendConfig{
			ServiceURL:    "http://localhost:8000/api/recommendations",
			Timeout:       3 * time.Second,
			RatePerSecond: 50,
			Burst:         100,
			FallbackSize:  10,
			Breaker: BreakerConfig{
				MaxRequests:  3,
				Interval:     time.Minute,
				Timeout:      30 * time.Second,
				MinRequests:  10,
				FailureRatio: 0.6,
			},
		},
		Events: EventsConfig{
			Enabled:      true,
			Transport:    events.TransportGoChannel, // in-process; nats for multi-instance
			Topic:        events.DefaultTopic,
			CloseTimeout: 10 * time.Second,
			BufferSize:   256,
			NATS: NATSConfig{
				URL:           "nats://127.0.0.1:4222",
				Embedded:      false,
				EmbeddedHost:  "127.0.0.1",
				EmbeddedPort:  4222,
				MaxReconnects: -1, // unlimited
				ReconnectWait: 2 * time.Second,
			},
		},
		Security: SecurityConfig{
			CORSOrigins:            []string{"*"},
			RateLimitReqs:          100,
			RateLimitWindow:        time.Minute,
			RateLimitDisabled:      false,
			RecommendRateLimitReqs: 20,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
//
// Precedence is ENV > File > Defaults. The result is validated.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// HTTP_PORT -> server.port, RECOMMEND_TIMEOUT -> recommend.timeout
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars arrive as strings while the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) == 0 {
			continue
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
var envMappings = map[string]string{
	// Server mappings
	"http_port":             "server.port",
	"http_host":             "server.host",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_idle_timeout":     "server.idle_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",

	// Logging mappings
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Cache mappings
	"cache_backend":            "cache.backend",
	"cache_capacity":           "cache.capacity",
	"cache_sweep_interval":     "cache.sweep_interval",
	"cache_product_ttl":        "cache.product_ttl",
	"cache_recommendation_ttl": "cache.recommendation_ttl",

	// Storage mappings
	"storage_path":        "storage.path",
	"storage_in_memory":   "storage.in_memory",
	"storage_sync_writes": "storage.sync_writes",
	"storage_compression": "storage.compression",
	"storage_gc_interval": "storage.gc_interval",
	"storage_gc_ratio":    "storage.gc_ratio",

	// Recommendation service mappings
	"recommend_service_url":           "recommend.service_url",
	"recommend_timeout":               "recommend.timeout",
	"recommend_rate_per_second":       "recommend.rate_per_second",
	"recommend_burst":                 "recommend.burst",
	"recommend_fallback_size":         "recommend.fallback_size",
	"recommend_breaker_max_requests":  "recommend.breaker.max_requests",
	"recommend_breaker_interval":      "recommend.breaker.interval",
	"recommend_breaker_timeout":       "recommend.breaker.timeout",
	"recommend_breaker_min_requests":  "recommend.breaker.min_requests",
	"recommend_breaker_failure_ratio": "recommend.breaker.failure_ratio",

	// Events mappings
	"events_enabled":       "events.enabled",
	"events_transport":     "events.transport",
	"events_topic":         "events.topic",
	"events_close_timeout": "events.close_timeout",
	"events_buffer_size":   "events.buffer_size",
	"nats_url":             "events.nats.url",
	"nats_embedded":        "events.nats.embedded",
	"nats_embedded_host":   "events.nats.embedded_host",
	"nats_embedded_port":   "events.nats.embedded_port",
	"nats_max_reconnects":  "events.nats.max_reconnects",
	"nats_reconnect_wait":  "events.nats.reconnect_wait",

	// Security mappings
	"cors_origins":                  "security.cors_origins",
	"rate_limit_requests":           "security.rate_limit_reqs",
	"rate_limit_window":             "security.rate_limit_window",
	"disable_rate_limit":            "security.rate_limit_disabled",
	"recommend_rate_limit_requests": "security.recommend_rate_limit_reqs",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - HTTP_PORT -> server.port
//   - CACHE_BACKEND -> cache.backend
//   - NATS_URL -> events.nats.url
//   - DISABLE_RATE_LIMIT -> security.rate_limit_disabled
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}

	// For unmapped keys, return empty string to skip them
	// This prevents random environment variables from polluting config
	return ""
}
