// Macrocore - Sports Nutrition Computation Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/macrocore

package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/macrocore/internal/logging"
	"github.com/tomtom215/macrocore/internal/models"
	"github.com/tomtom215/macrocore/internal/validation"
)

// GetProfile handles GET /api/v1/profiles/{userId}.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profiles.FindByID(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, profile)
}

// PutProfile handles PUT /api/v1/profiles/{userId}.
// The path parameter wins over any user_id in the body.
func (h *Handler) PutProfile(w http.ResponseWriter, r *http.Request) {
	var profile models.HealthProfile
	if !decodeJSON(w, r, &profile) {
		return
	}
	profile.UserID = strings.TrimSpace(chi.URLParam(r, "userId"))

	if verr := validation.ValidateStruct(&profile); verr != nil {
		respondServiceError(w, r, verr)
		return
	}

	if err := h.profiles.Upsert(r.Context(), &profile); err != nil {
		respondServiceError(w, r, err)
		return
	}

	logging.Ctx(r.Context()).Info().
		Str("user_id", sanitizeLogValue(profile.UserID)).
		Msg("Health profile saved")
	respondData(w, r, http.StatusOK, &profile)
}

// DeleteProfile handles DELETE /api/v1/profiles/{userId}.
func (h *Handler) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if err := h.profiles.Delete(r.Context(), userID); err != nil {
		respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
