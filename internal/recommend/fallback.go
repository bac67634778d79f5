// Macrocore - Sports Nutrition Computation Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/macrocore

package recommend

import (
	"context"
	"math"
	"sort"

	"github.com/tomtom215/macrocore/internal/models"
)

// Fallback scoring constants.
const (
	FallbackConfidence = 0.3
	FallbackReason     = "service unavailable: catalog default"

	// fallbackPageSize and fallbackMaxScan bound the catalog scan.
	fallbackPageSize = 100
	fallbackMaxScan  = 1000
)

// FallbackSource supplies recommendations when the scoring service fails.
type FallbackSource interface {
	Fallback(ctx context.Context, profile *models.HealthProfile, goal string) ([]models.Recommendation, error)
}

// ProductLister pages through the catalog. *catalog.Catalog satisfies it.
type ProductLister interface {
	GetPage(ctx context.Context, page, limit int, filter models.ProductFilter) (*models.ProductPage, error)
}

// CatalogFallback ranks catalog products by how well they fit a goal.
type CatalogFallback struct {
	products ProductLister
	size     int
}

// NewCatalogFallback returns a fallback producing at most size recommendations.
func NewCatalogFallback(products ProductLister, size int) *CatalogFallback {
	return &CatalogFallback{products: products, size: size}
}

// Fallback returns up to size products that avoid the profile's allergens,
// ordered by goal fit and then product id. The result is deterministic for a
// given catalog.
func (f *CatalogFallback) Fallback(ctx context.Context, profile *models.HealthProfile, goal string) ([]models.Recommendation, error) {
	if f.size <= 0 {
		return []models.Recommendation{}, nil
	}

	filter := models.ProductFilter{ExcludeAllergens: profile.Allergies}

	var candidates []models.Product
	for page := 1; len(candidates) < fallbackMaxScan; page++ {
		result, err := f.products.GetPage(ctx, page, fallbackPageSize, filter)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, result.Items...)
		if page >= result.Pages || len(result.Items) == 0 {
			break
		}
	}

	recs := make([]models.Recommendation, 0, len(candidates))
	for i := range candidates {
		p := &candidates[i]
		recs = append(recs, models.Recommendation{
			ProductID:  p.ID,
			Score:      FallbackScore(goal, p),
			Confidence: FallbackConfidence,
			Reasons:    []string{FallbackReason},
			Allergens:  p.Allergens,
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].Score != recs[j].Score {
			return recs[i].Score > recs[j].Score
		}
		return recs[i].ProductID < recs[j].ProductID
	})

	if len(recs) > f.size {
		recs = recs[:f.size]
	}
	return recs, nil
}

// FallbackScore is GoalFit on the 0..100 recommendation score scale,
// rounded to one decimal.
func FallbackScore(goal string, p *models.Product) float64 {
	return math.Round(GoalFit(goal, p)*1000) / 10
}

// GoalFit scores a product for a goal on a 0..1 scale:
//
//	weight_loss  share of energy from protein
//	muscle_gain  protein grams per 100 g
//	endurance    carbohydrate grams per 100 g
//	maintain     closeness to a 25/50/25 protein/carb/fat energy split
func GoalFit(goal string, p *models.Product) float64 {
	proteinKcal := p.Protein * 4
	carbKcal := p.Carbs * 4
	fatKcal := p.Fat * 9
	total := proteinKcal + carbKcal + fatKcal

	switch goal {
	case models.GoalWeightLoss:
		if total == 0 {
			return 0
		}
		return proteinKcal / total
	case models.GoalMuscleGain:
		return clamp01(p.Protein / 100)
	case models.GoalEndurance:
		return clamp01(p.Carbs / 100)
	default:
		if total == 0 {
			return 0
		}
		distance := math.Abs(proteinKcal/total-0.25) +
			math.Abs(carbKcal/total-0.50) +
			math.Abs(fatKcal/total-0.25)
		return clamp01(1 - distance/2)
	}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
