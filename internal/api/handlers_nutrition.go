// Macrocore - Sports Nutrition Computation Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/macrocore

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/macrocore/internal/models"
	"github.com/tomtom215/macrocore/internal/nutrition"
)

// CalculateNutrition handles POST /api/v1/nutrition/calculate.
// The body is a models.NutritionInput; nothing is stored.
func (h *Handler) CalculateNutrition(w http.ResponseWriter, r *http.Request) {
	var in models.NutritionInput
	if !decodeJSON(w, r, &in) {
		return
	}

	result, err := nutrition.Calculate(in)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, result)
}

// ProfileNutrition handles GET /api/v1/profiles/{userId}/nutrition.
func (h *Handler) ProfileNutrition(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profiles.FindByID(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	result, err := nutrition.CalculateForProfile(profile)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, result)
}
