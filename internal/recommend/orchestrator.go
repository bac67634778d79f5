// Macrocore - Sports Nutrition Computation Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/macrocore

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/macrocore/internal/cache"
	"github.com/tomtom215/macrocore/internal/logging"
	"github.com/tomtom215/macrocore/internal/metrics"
	"github.com/tomtom215/macrocore/internal/models"
	"github.com/tomtom215/macrocore/internal/validation"
)

// ProfileNotFoundMessage is the message of the error returned for unknown users.
const ProfileNotFoundMessage = "User profile not found"

// Outcome labels for metrics.RecommendationRequests.
const (
	outcomeCacheHit = "cache_hit"
	outcomeExternal = "external"
	outcomeFallback = "fallback"
)

// ProfileRepository loads health profiles. Missing profiles yield an error
// matching models.ErrNotFound (or a nil profile).
type ProfileRepository interface {
	FindByID(ctx context.Context, userID string) (*models.HealthProfile, error)
}

// Orchestrator produces recommendations for a user.
type Orchestrator struct {
	profiles ProfileRepository
	client   ScoringClient
	fallback FallbackSource
	results  *cache.Store[[]models.Recommendation]
	ttl      time.Duration
	logger   zerolog.Logger
}

// NewOrchestrator creates an orchestrator. results caches raw service
// responses for ttl.
func NewOrchestrator(profiles ProfileRepository, client ScoringClient, results *cache.Store[[]models.Recommendation], ttl time.Duration) *Orchestrator {
	return &Orchestrator{
		profiles: profiles,
		client:   client,
		results:  results,
		ttl:      ttl,
		logger:   logging.WithComponent("recommend"),
	}
}

// SetFallback configures where fallback recommendations come from.
// Without one a fallback result is empty.
func (o *Orchestrator) SetFallback(f FallbackSource) {
	o.fallback = f
}

// cacheKeyParams is hashed into the result cache key.
type cacheKeyParams struct {
	UserID        string `json:"user_id"`
	Goal          string `json:"goal"`
	ActivityLevel string `json:"activity_level"`
	Limit         int    `json:"limit"`
	MaxProducts   int    `json:"max_products"`
}

// CacheKey returns the result cache key for a request.
func CacheKey(userID, goal, activityLevel string, opts models.RecommendationOptions) string {
	return cache.GenerateKey("recommendation", cacheKeyParams{
		UserID:        userID,
		Goal:          goal,
		ActivityLevel: activityLevel,
		Limit:         opts.Limit,
		MaxProducts:   opts.MaxProducts,
	})
}

// GetRecommendations returns recommendations for userID. Empty goal and
// activityLevel default to the profile's values.
//
// Only validation and not-found errors (and caller cancellation) are
// returned; scoring service failures produce a Fallback result instead.
func (o *Orchestrator) GetRecommendations(ctx context.Context, userID, goal, activityLevel string, opts models.RecommendationOptions) (*models.RecommendationResult, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, validation.Required("user_id")
	}

	profile, err := o.loadProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if goal == "" {
		goal = profile.Goal
	}
	if activityLevel == "" {
		activityLevel = profile.ActivityLevel
	}
	if verr := validateRequest(goal, activityLevel, &opts); verr != nil {
		return nil, verr
	}

	logger := o.logger.With().
		Str("user_id", userID).
		Str("goal", goal).
		Str("request_id", logging.RequestIDFromContext(ctx)).
		Logger()

	key := CacheKey(userID, goal, activityLevel, opts)
	loaded := false
	raw, err := o.results.GetOrLoad(ctx, key, o.ttl, func(ctx context.Context) ([]models.Recommendation, error) {
		loaded = true
		return o.client.Score(ctx, buildScoringRequest(profile, goal, activityLevel, opts))
	})

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		logger.Warn().Err(err).Msg("Recommendation service failed, serving fallback")
		metrics.RecommendationRequests.WithLabelValues(outcomeFallback).Inc()

		return &models.RecommendationResult{
			Recommendations: finalize(o.fallbackRecommendations(ctx, profile, goal, logger), profile.Allergies, opts.Limit),
			Fallback:        true,
		}, nil
	}

	outcome := outcomeCacheHit
	if loaded {
		outcome = outcomeExternal
	}
	metrics.RecommendationRequests.WithLabelValues(outcome).Inc()

	return &models.RecommendationResult{
		Recommendations: finalize(raw, profile.Allergies, opts.Limit),
		Fallback:        false,
	}, nil
}

func (o *Orchestrator) loadProfile(ctx context.Context, userID string) (*models.HealthProfile, error) {
	profile, err := o.profiles.FindByID(ctx, userID)
	if errors.Is(err, models.ErrNotFound) || (err == nil && profile == nil) {
		return nil, models.NewNotFoundError("profile", userID, ProfileNotFoundMessage)
	}
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return profile, nil
}

func (o *Orchestrator) fallbackRecommendations(ctx context.Context, profile *models.HealthProfile, goal string, logger zerolog.Logger) []models.Recommendation {
	if o.fallback == nil {
		return []models.Recommendation{}
	}
	recs, err := o.fallback.Fallback(ctx, profile, goal)
	if err != nil {
		logger.Warn().Err(err).Msg("Fallback source failed, returning empty result")
		return []models.Recommendation{}
	}
	return recs
}

func validateRequest(goal, activityLevel string, opts *models.RecommendationOptions) *validation.Error {
	if verr := validation.ValidateVar("goal", goal, "oneof=weight_loss muscle_gain maintain endurance"); verr != nil {
		return verr
	}
	if verr := validation.ValidateVar("activity_level", activityLevel, "oneof=sedentary light moderate active very_active"); verr != nil {
		return verr
	}
	return validation.ValidateStruct(opts)
}

func buildScoringRequest(profile *models.HealthProfile, goal, activityLevel string, opts models.RecommendationOptions) models.ScoringRequest {
	req := models.ScoringRequest{
		UserID:             profile.UserID,
		Goal:               goal,
		ActivityLevel:      activityLevel,
		DietaryPreferences: nonNil(profile.DietaryPreferences),
		Allergies:          nonNil(profile.Allergies),
	}
	if opts.MaxProducts > 0 {
		maxProducts := opts.MaxProducts
		req.MaxProducts = &maxProducts
	}
	return req
}

// finalize drops allergen conflicts, orders by score then confidence and
// truncates to limit (0 keeps everything).
func finalize(recs []models.Recommendation, allergies []string, limit int) []models.Recommendation {
	out := FilterAllergens(recs, allergies)
	SortRecommendations(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// FilterAllergens returns the recommendations whose allergens do not
// intersect allergies. Comparison is case-insensitive.
func FilterAllergens(recs []models.Recommendation, allergies []string) []models.Recommendation {
	out := make([]models.Recommendation, 0, len(recs))
	for i := range recs {
		if models.IntersectsFold(recs[i].Allergens, allergies) {
			continue
		}
		out = append(out, recs[i])
	}
	if dropped := len(recs) - len(out); dropped > 0 {
		metrics.RecommendationsFiltered.Add(float64(dropped))
	}
	return out
}

// SortRecommendations orders by score descending, then confidence
// descending. Equal elements keep their relative order.
func SortRecommendations(recs []models.Recommendation) {
	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].Score != recs[j].Score {
			return recs[i].Score > recs[j].Score
		}
		return recs[i].Confidence > recs[j].Confidence
	})
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
