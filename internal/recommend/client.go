// Macrocore - Sports Nutrition Computation Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/macrocore

package recommend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/tomtom215/macrocore/internal/logging"
	"github.com/tomtom215/macrocore/internal/metrics"
	"github.com/tomtom215/macrocore/internal/models"
)

// ServiceName identifies the scoring service in errors and metrics.
const ServiceName = "recommendation-service"

// maxResponseBytes caps the size of a decoded service response.
const maxResponseBytes = 4 << 20

// ErrRateLimited is wrapped in an ExternalServiceError when the local token
// bucket has no capacity.
var ErrRateLimited = errors.New("outbound rate limit exceeded")

// ScoringClient calls the external scoring service.
// Every failure is returned as an *models.ExternalServiceError.
type ScoringClient interface {
	Score(ctx context.Context, req models.ScoringRequest) ([]models.Recommendation, error)
}

// HTTPClient is the JSON over HTTP ScoringClient.
type HTTPClient struct {
	url     string
	client  *http.Client
	timeout time.Duration
	limiter *rate.Limiter
}

// NewHTTPClient creates a client for cfg.ServiceURL.
func NewHTTPClient(cfg Config) *HTTPClient {
	c := &HTTPClient{
		url:     cfg.ServiceURL,
		timeout: cfg.Timeout,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
	if cfg.RatePerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.Burst)
	}
	return c
}

// Score posts req and decodes the recommendation list.
func (c *HTTPClient) Score(ctx context.Context, req models.ScoringRequest) (recs []models.Recommendation, err error) {
	start := time.Now()
	defer func() {
		metrics.RecordExternalCall(time.Since(start), err)
	}()

	// Fail fast rather than queue: waiting would extend every waiter's latency.
	if c.limiter != nil && !c.limiter.Allow() {
		return nil, &models.ExternalServiceError{Service: ServiceName, Err: ErrRateLimited}
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal scoring request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, &models.ExternalServiceError{Service: ServiceName, Err: fmt.Errorf("create request: %w", err)}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if id := logging.RequestIDFromContext(ctx); id != "" {
		httpReq.Header.Set("X-Request-ID", id)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, &models.ExternalServiceError{Service: ServiceName, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, &models.ExternalServiceError{
			Service:    ServiceName,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status: %s", resp.Status),
		}
	}

	var payload models.ScoringResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&payload); err != nil {
		return nil, &models.ExternalServiceError{Service: ServiceName, Err: fmt.Errorf("decode response: %w", err)}
	}
	recs, dropped := sanitizeRecommendations(payload.Recommendations)
	if dropped > 0 {
		logging.Ctx(ctx).Warn().
			Str("service", ServiceName).
			Int("dropped", dropped).
			Msg("Dropped scoring service entries with missing id or out-of-range score")
	}
	return recs, nil
}

// sanitizeRecommendations keeps entries with a product id, a score in
// [0, 100] and a confidence in [0, 1]. The result is never nil.
func sanitizeRecommendations(in []models.Recommendation) ([]models.Recommendation, int) {
	out := make([]models.Recommendation, 0, len(in))
	for _, r := range in {
		if r.ProductID == "" ||
			!(r.Score >= 0 && r.Score <= 100) ||
			!(r.Confidence >= 0 && r.Confidence <= 1) {
			continue
		}
		out = append(out, r)
	}
	return out, len(in) - len(out)
}
