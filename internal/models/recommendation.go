// Macrocore - Sports Nutrition Computation Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/macrocore

package models

// Dosage is optional structured intake advice attached to a recommendation.
type Dosage struct {
	Amount    float64 `json:"amount"`
	Unit      string  `json:"unit"`
	Frequency string  `json:"frequency,omitempty"`
	Timing    string  `json:"timing,omitempty"`
}

// Recommendation is a single scored product suggestion.
type Recommendation struct {
	ProductID  string   `json:"product_id"`
	Score      float64  `json:"score"`
	Confidence float64  `json:"confidence"`
	Reasons    []string `json:"reasons,omitempty"`
	Warnings   []string `json:"warnings,omitempty"`
	Allergens  []string `json:"allergens,omitempty"`
	Dosage     *Dosage  `json:"dosage,omitempty"`
}

// RecommendationResult is returned by the orchestrator. Fallback is true when
// the external service was unavailable and a locally derived set was used.
type RecommendationResult struct {
	Recommendations []Recommendation `json:"recommendations"`
	Fallback        bool             `json:"fallback"`
}

// RecommendationOptions tunes a recommendation request.
// Limit 0 returns every filtered result. MaxProducts 0 is not forwarded.
type RecommendationOptions struct {
	Limit       int `json:"limit" validate:"gte=0,lte=100"`
	MaxProducts int `json:"max_products" validate:"gte=0,lte=1000"`
}

// ScoringRequest is the payload sent to the external recommendation service.
type ScoringRequest struct {
	UserID             string   `json:"userId"`
	Goal               string   `json:"goal"`
	ActivityLevel      string   `json:"activityLevel"`
	DietaryPreferences []string `json:"dietaryPreferences"`
	Allergies          []string `json:"allergies"`
	MaxProducts        *int     `json:"maxProducts,omitempty"`
}

// ScoringResponse is the external recommendation service response body.
type ScoringResponse struct {
	Recommendations []Recommendation `json:"recommendations"`
}
