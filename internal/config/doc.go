// Macrocore - Sports Nutrition Computation Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/macrocore

/*
Package config provides centralized configuration management for Macrocore.

Configuration is loaded with Koanf v2 from three layers, later layers
overriding earlier ones:

 1. Built-in defaults (see defaultConfig)
 2. An optional YAML file, from CONFIG_PATH or the first of DefaultConfigPaths
 3. Environment variables, through an explicit mapping table

Unknown environment variables are ignored so the process environment
cannot pollute the configuration.

# Configuration Structure

  - ServerConfig: HTTP listener address and timeouts
  - LoggingConfig: zerolog level, format and caller info
  - CacheConfig: cache backend selection and TTLs
  - StorageConfig: Badger database for profiles and products
  - RecommendConfig: external scoring service, rate limit and circuit breaker
  - EventsConfig: product change broadcast (gochannel or NATS)
  - SecurityConfig: CORS origins and inbound rate limiting

# Environment Variables

Server:
  - HTTP_HOST, HTTP_PORT
  - HTTP_READ_TIMEOUT, HTTP_WRITE_TIMEOUT, HTTP_IDLE_TIMEOUT, HTTP_SHUTDOWN_TIMEOUT

Logging:
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER

Cache:
  - CACHE_BACKEND (memory, lfu, badger)
  - CACHE_CAPACITY, CACHE_SWEEP_INTERVAL
  - CACHE_PRODUCT_TTL, CACHE_RECOMMENDATION_TTL

Storage:
  - STORAGE_PATH, STORAGE_IN_MEMORY, STORAGE_SYNC_WRITES, STORAGE_GC_INTERVAL

Recommendation service:
  - RECOMMEND_SERVICE_URL, RECOMMEND_TIMEOUT
  - RECOMMEND_RATE_PER_SECOND, RECOMMEND_BURST, RECOMMEND_FALLBACK_SIZE
  - RECOMMEND_BREAKER_MAX_REQUESTS, RECOMMEND_BREAKER_INTERVAL,
    RECOMMEND_BREAKER_TIMEOUT, RECOMMEND_BREAKER_MIN_REQUESTS,
    RECOMMEND_BREAKER_FAILURE_RATIO

Events:
  - EVENTS_ENABLED, EVENTS_TRANSPORT (gochannel, nats), EVENTS_TOPIC
  - NATS_URL, NATS_EMBEDDED, NATS_EMBEDDED_HOST, NATS_EMBEDDED_PORT

Security:
  - CORS_ORIGINS (comma-separated)
  - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT
  - RECOMMEND_RATE_LIMIT_REQUESTS (per window, recommendations endpoint)

# Usage

	cfg, err := config.LoadWithKoanf()
	if err != nil {
	    log.Fatal(err)
	}
	logging.Init(cfg.Logging.ToLoggingConfig())
*/
package config
