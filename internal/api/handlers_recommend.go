// Macrocore - Sports Nutrition Computation Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/macrocore

package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/macrocore/internal/models"
)

// GetRecommendations handles GET /api/v1/recommendations/{userId}.
//
// goal and activityLevel default to the stored profile's values. The
// response metadata carries fallback=true when the scoring service was
// unavailable and a locally derived set was served.
func (h *Handler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	limit, verr := getIntParam(r, "limit", 0)
	if verr != nil {
		respondServiceError(w, r, verr)
		return
	}
	maxProducts, verr := getIntParam(r, "maxProducts", 0)
	if verr != nil {
		respondServiceError(w, r, verr)
		return
	}

	q := r.URL.Query()
	result, err := h.recommender.GetRecommendations(
		r.Context(),
		chi.URLParam(r, "userId"),
		strings.TrimSpace(q.Get("goal")),
		strings.TrimSpace(q.Get("activityLevel")),
		models.RecommendationOptions{Limit: limit, MaxProducts: maxProducts},
	)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	meta := newMetadata(r)
	meta.Fallback = result.Fallback
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status:   "success",
		Data:     result,
		Metadata: meta,
	})
}
