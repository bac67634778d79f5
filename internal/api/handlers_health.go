// Macrocore - Sports Nutrition Computation Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/macrocore

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/macrocore/internal/logging"
	"github.com/tomtom215/macrocore/internal/models"
)

// healthCheckTimeout bounds each dependency check.
const healthCheckTimeout = 2 * time.Second

// Health handles GET /health.
// It returns 200 when every registered check passes and 503 otherwise.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := models.HealthStatus{
		Status:  "healthy",
		Version: h.version,
		Uptime:  time.Since(h.startTime).Seconds(),
	}

	if len(h.checks) > 0 {
		status.Dependencies = make(map[string]string, len(h.checks))
	}
	for name, check := range h.checks {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		err := check(ctx)
		cancel()

		if err != nil {
			logging.Ctx(r.Context()).Warn().Err(err).Str("dependency", name).Msg("Health check failed")
			status.Dependencies[name] = "unavailable"
			status.Status = "degraded"
			continue
		}
		status.Dependencies[name] = "ok"
	}

	code := http.StatusOK
	if status.Status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	respondData(w, r, code, status)
}
