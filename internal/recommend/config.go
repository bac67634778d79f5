// Macrocore - Sports Nutrition Computation Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/macrocore

package recommend

import (
	"fmt"
	"net/url"
	"time"
)

// Config contains all configuration for the recommendation orchestrator.
type Config struct {
	// ServiceURL is the full endpoint of the external scoring service.
	ServiceURL string

	// Timeout bounds a single outbound call.
	Timeout time.Duration

	// RatePerSecond and Burst configure the outbound token bucket.
	// A RatePerSecond of zero disables local rate limiting.
	RatePerSecond float64
	Burst         int

	// CacheTTL is how long a service response stays cached.
	CacheTTL time.Duration

	// FallbackSize is the number of catalog products used when the service fails.
	FallbackSize int

	// Breaker configures the circuit breaker around the service.
	Breaker BreakerConfig
}

// BreakerConfig configures the gobreaker circuit breaker.
type BreakerConfig struct {
	// MaxRequests is the number of probes allowed in half-open state.
	MaxRequests uint32

	// Interval resets the failure counts while closed.
	Interval time.Duration

	// Timeout is how long the breaker stays open before probing.
	Timeout time.Duration

	// MinRequests is the sample size required before tripping.
	MinRequests uint32

	// FailureRatio trips the breaker once reached.
	FailureRatio float64
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		ServiceURL:    "http://localhost:8000/api/recommendations",
		Timeout:       3 * time.Second,
		RatePerSecond: 50,
		Burst:         100,
		CacheTTL:      10 * time.Minute,
		FallbackSize:  10,
		Breaker: BreakerConfig{
			MaxRequests:  3,
			Interval:     time.Minute,
			Timeout:      30 * time.Second,
			MinRequests:  10,
			FailureRatio: 0.6,
		},
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	u, err := url.Parse(c.ServiceURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("recommend: service_url %q is not an absolute URL", c.ServiceURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("recommend: timeout must be positive")
	}
	if c.RatePerSecond < 0 {
		return fmt.Errorf("recommend: rate_per_second must not be negative")
	}
	if c.RatePerSecond > 0 && c.Burst < 1 {
		return fmt.Errorf("recommend: burst must be at least 1 when rate limiting is enabled")
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("recommend: cache_ttl must be positive")
	}
	if c.FallbackSize < 0 || c.FallbackSize > 100 {
		return fmt.Errorf("recommend: fallback_size must be between 0 and 100")
	}
	if c.Breaker.FailureRatio <= 0 || c.Breaker.FailureRatio > 1 {
		return fmt.Errorf("recommend: breaker failure_ratio must be in (0, 1]")
	}
	return nil
}
