// Macrocore - Sports Nutrition Computation Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/macrocore

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/macrocore/internal/cache"
	"github.com/tomtom215/macrocore/internal/events"
)

// chdirTemp moves the test into an empty directory so no stray config.yaml
// is picked up from DefaultConfigPaths.
func chdirTemp(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	origDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("Failed to change to temp directory: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(origDir); err != nil {
			t.Errorf("Failed to restore working directory: %v", err)
		}
	})
	return tmpDir
}

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "macrocore.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

// TestDefaultConfig verifies that defaultConfig() returns proper defaults
func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Cache.ProductTTL != time.Hour {
		t.Errorf("Cache.ProductTTL = %v, want 1h", cfg.Cache.ProductTTL)
	}
	if cfg.Cache.BackendType() != cache.BackendLFU {
		t.Errorf("Cache.Backend = %q, want lfu", cfg.Cache.Backend)
	}
	if cfg.Events.Transport != events.TransportGoChannel {
		t.Errorf("Events.Transport = %q, want gochannel", cfg.Events.Transport)
	}
	if cfg.Recommend.Timeout != 3*time.Second {
		t.Errorf("Recommend.Timeout = %v, want 3s", cfg.Recommend.Timeout)
	}
	if len(cfg.Security.CORSOrigins) != 1 || cfg.Security.CORSOrigins[0] != "*" {
		t.Errorf("Security.CORSOrigins = %v, want [*]", cfg.Security.CORSOrigins)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate, got %v", err)
	}
}

// TestEnvTransformFunc verifies environment variable name transformations
func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"HTTP_PORT", "server.port"},
		{"LOG_LEVEL", "logging.level"},
		{"CACHE_BACKEND", "cache.backend"},
		{"CACHE_PRODUCT_TTL", "cache.product_ttl"},
		{"STORAGE_IN_MEMORY", "storage.in_memory"},
		{"RECOMMEND_SERVICE_URL", "recommend.service_url"},
		{"RECOMMEND_BREAKER_FAILURE_RATIO", "recommend.breaker.failure_ratio"},
		{"NATS_URL", "events.nats.url"},
		{"NATS_EMBEDDED", "events.nats.embedded"},
		{"DISABLE_RATE_LIMIT", "security.rate_limit_disabled"},
		{"cors_origins", "security.cors_origins"},

		// Unmapped keys are dropped
		{"PATH", ""},
		{"HOME", ""},
		{"RANDOM_VAR", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := envTransformFunc(tt.input); got != tt.expected {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

// TestFindConfigFile tests config file discovery
func TestFindConfigFile(t *testing.T) {
	tmpDir := chdirTemp(t)

	t.Run("no config file exists", func(t *testing.T) {
		t.Setenv(ConfigPathEnvVar, "")
		if result := findConfigFile(); result != "" {
			t.Errorf("findConfigFile() = %q, want empty string", result)
		}
	})

	t.Run("config.yaml exists", func(t *testing.T) {
		t.Setenv(ConfigPathEnvVar, "")
		if err := os.WriteFile(filepath.Join(tmpDir, "config.yaml"), []byte("server: {}"), 0o600); err != nil {
			t.Fatalf("Failed to create config file: %v", err)
		}
		defer os.Remove(filepath.Join(tmpDir, "config.yaml"))

		if result := findConfigFile(); result != "config.yaml" {
			t.Errorf("findConfigFile() = %q, want config.yaml", result)
		}
	})

	t.Run("CONFIG_PATH env var takes precedence", func(t *testing.T) {
		customPath := writeConfig(t, tmpDir, "server: {}")
		t.Setenv(ConfigPathEnvVar, customPath)

		if result := findConfigFile(); result != customPath {
			t.Errorf("findConfigFile() = %q, want %q", result, customPath)
		}
	})

	t.Run("CONFIG_PATH env var with non-existent file", func(t *testing.T) {
		t.Setenv(ConfigPathEnvVar, "/non/existent/config.yaml")
		if result := findConfigFile(); result != "" {
			t.Errorf("findConfigFile() = %q, want empty string", result)
		}
	})
}

// TestLoadWithKoanfEnvVars tests loading configuration from environment variables
func TestLoadWithKoanfEnvVars(t *testing.T) {
	chdirTemp(t)
	t.Setenv(ConfigPathEnvVar, "")
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CACHE_BACKEND", "memory")
	t.Setenv("CACHE_PRODUCT_TTL", "30m")
	t.Setenv("RECOMMEND_BREAKER_MIN_REQUESTS", "20")
	t.Setenv("STORAGE_IN_MEMORY", "true")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Cache.BackendType() != cache.BackendMemory {
		t.Errorf("Cache.Backend = %q, want memory", cfg.Cache.Backend)
	}
	if cfg.Cache.ProductTTL != 30*time.Minute {
		t.Errorf("Cache.ProductTTL = %v, want 30m", cfg.Cache.ProductTTL)
	}
	if cfg.Recommend.Breaker.MinRequests != 20 {
		t.Errorf("Recommend.Breaker.MinRequests = %d, want 20", cfg.Recommend.Breaker.MinRequests)
	}
	if !cfg.Storage.InMemory {
		t.Error("Storage.InMemory = false, want true")
	}
	want := []string{"https://a.example", "https://b.example"}
	if strings.Join(cfg.Security.CORSOrigins, "|") != strings.Join(want, "|") {
		t.Errorf("Security.CORSOrigins = %v, want %v", cfg.Security.CORSOrigins, want)
	}

	// Untouched values keep their defaults.
	if cfg.Recommend.Timeout != 3*time.Second {
		t.Errorf("Recommend.Timeout = %v, want default 3s", cfg.Recommend.Timeout)
	}
}

// TestLoadWithKoanfConfigFile tests loading configuration from a YAML file
func TestLoadWithKoanfConfigFile(t *testing.T) {
	tmpDir := chdirTemp(t)
	path := writeConfig(t, tmpDir, `
server:
  port: 7000
cache:
  backend: badger
  recommendation_ttl: 2m
recommend:
  service_url: http://scoring.internal:9000/score
  breaker:
    failure_ratio: 0.4
events:
  transport: nats
  nats:
    embedded: true
    embedded_port: -1
security:
  cors_origins:
    - https://app.example
`)
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 7000 {
		t.Errorf("Server.Port = %d, want 7000", cfg.Server.Port)
	}
	if cfg.Cache.BackendType() != cache.BackendBadger {
		t.Errorf("Cache.Backend = %q, want badger", cfg.Cache.Backend)
	}
	if cfg.Cache.RecommendationTTL != 2*time.Minute {
		t.Errorf("Cache.RecommendationTTL = %v, want 2m", cfg.Cache.RecommendationTTL)
	}
	if cfg.Recommend.ServiceURL != "http://scoring.internal:9000/score" {
		t.Errorf("Recommend.ServiceURL = %q", cfg.Recommend.ServiceURL)
	}
	if cfg.Recommend.Breaker.FailureRatio != 0.4 {
		t.Errorf("Breaker.FailureRatio = %v, want 0.4", cfg.Recommend.Breaker.FailureRatio)
	}
	if cfg.Events.Transport != events.TransportNATS || !cfg.Events.NATS.Embedded || cfg.Events.NATS.EmbeddedPort != -1 {
		t.Errorf("Events = %+v", cfg.Events)
	}
	if len(cfg.Security.CORSOrigins) != 1 || cfg.Security.CORSOrigins[0] != "https://app.example" {
		t.Errorf("Security.CORSOrigins = %v", cfg.Security.CORSOrigins)
	}

	rc := cfg.ToRecommendConfig()
	if rc.CacheTTL != 2*time.Minute || rc.Breaker.FailureRatio != 0.4 {
		t.Errorf("ToRecommendConfig() = %+v", rc)
	}
	ec := cfg.Events.ToEventsConfig()
	if ec.Transport != events.TransportNATS || !ec.Embedded || ec.Topic != events.DefaultTopic {
		t.Errorf("ToEventsConfig() = %+v", ec)
	}
}

// TestLoadWithKoanfEnvOverridesFile verifies ENV > File precedence
func TestLoadWithKoanfEnvOverridesFile(t *testing.T) {
	tmpDir := chdirTemp(t)
	path := writeConfig(t, tmpDir, "server:\n  port: 7000\nlogging:\n  level: warn\n")
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("HTTP_PORT", "7500")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}
	if cfg.Server.Port != 7500 {
		t.Errorf("Server.Port = %d, want 7500 from env", cfg.Server.Port)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want warn from file", cfg.Logging.Level)
	}
}

// TestLoadWithKoanfValidation tests that invalid configuration is rejected
func TestLoadWithKoanfValidation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"bad port", map[string]string{"HTTP_PORT": "70000"}, "HTTP_PORT"},
		{"bad log level", map[string]string{"LOG_LEVEL": "verbose"}, "LOG_LEVEL"},
		{"bad cache backend", map[string]string{"CACHE_BACKEND": "redis"}, "CACHE_BACKEND"},
		{"lfu without capacity", map[string]string{"CACHE_CAPACITY": "0"}, "CACHE_CAPACITY"},
		{"zero product ttl", map[string]string{"CACHE_PRODUCT_TTL": "0s"}, "CACHE_PRODUCT_TTL"},
		{"relative service url", map[string]string{"RECOMMEND_SERVICE_URL": "/score"}, "service_url"},
		{"unknown transport", map[string]string{"EVENTS_TRANSPORT": "kafka"}, "transport"},
		{"zero rate limit", map[string]string{"RATE_LIMIT_REQUESTS": "0"}, "RATE_LIMIT_REQUESTS"},
		{"storage path", map[string]string{"STORAGE_PATH": ""}, "STORAGE_PATH"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chdirTemp(t)
			t.Setenv(ConfigPathEnvVar, "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := LoadWithKoanf()
			if err == nil {
				t.Fatal("LoadWithKoanf() should fail")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestRecommendRateLimit(t *testing.T) {
	cfg := defaultConfig()
	if cfg.Security.RecommendRateLimitReqs != 20 {
		t.Errorf("RecommendRateLimitReqs = %d, want 20", cfg.Security.RecommendRateLimitReqs)
	}

	cfg.Security.RecommendRateLimitReqs = 0
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "RECOMMEND_RATE_LIMIT_REQUESTS") {
		t.Errorf("Validate() error = %v, want RECOMMEND_RATE_LIMIT_REQUESTS", err)
	}

	if got := envTransformFunc("RECOMMEND_RATE_LIMIT_REQUESTS"); got != "security.recommend_rate_limit_reqs" {
		t.Errorf("envTransformFunc() = %q", got)
	}
}

func TestValidate_RateLimitDisabledSkipsChecks(t *testing.T) {
	cfg := defaultConfig()
	cfg.Security.RateLimitDisabled = true
	cfg.Security.RateLimitReqs = 0

	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestToStorageConfig(t *testing.T) {
	cfg := defaultConfig()
	cfg.Storage.InMemory = true

	sc := cfg.Storage.ToStorageConfig()
	if !sc.InMemory || sc.Path != cfg.Storage.Path || sc.GCRatio != 0.5 {
		t.Errorf("ToStorageConfig() = %+v", sc)
	}
	if lc := cfg.Logging.ToLoggingConfig(); lc.Level != "info" || lc.Output == nil {
		t.Errorf("ToLoggingConfig() = %+v", lc)
	}
}
