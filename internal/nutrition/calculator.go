// Macrocore - Sports Nutrition Computation Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/macrocore

// Package nutrition computes daily energy and macronutrient targets.
//
// All functions are pure: identical input always yields identical output and
// nothing is read from or written to shared state. They are safe to call
// concurrently from any number of goroutines.
//
// # Formulas
//
// BMR uses Mifflin-St Jeor:
//
//	male   = 10*weightKg + 6.25*heightCm - 5*age + 5
//	female = 10*weightKg + 6.25*heightCm - 5*age - 161
//
// TDEE is BMR times the activity multiplier (see ActivityMultiplier).
//
// Macros start from a goal-specific protein allowance in g/kg. The calories
// left after protein are split between carbohydrate and fat by a goal ratio,
// so protein, carb and fat calories add up to TDEE (within rounding).
//
// Water intake is 35 ml per kg of bodyweight.
package nutrition

import (
	"math"

	"github.com/tomtom215/macrocore/internal/models"
	"github.com/tomtom215/macrocore/internal/validation"
)

// Energy density in kcal per gram.
const (
	KcalPerGramProtein = 4.0
	KcalPerGramCarbs   = 4.0
	KcalPerGramFat     = 9.0
)

// WaterMlPerKg is the daily water allowance per kg of bodyweight.
const WaterMlPerKg = 35.0

// activityMultipliers must stay strictly increasing in models.ActivityLevels order.
var activityMultipliers = map[string]float64{
	models.ActivitySedentary:  1.2,
	models.ActivityLight:      1.375,
	models.ActivityModerate:   1.55,
	models.ActivityActive:     1.725,
	models.ActivityVeryActive: 1.9,
}

// macroSplit describes how a goal distributes energy.
type macroSplit struct {
	proteinPerKg float64
	// carbShare is the fraction of non-protein calories assigned to carbs;
	// the rest goes to fat.
	carbShare float64
}

var macroSplits = map[string]macroSplit{
	models.GoalWeightLoss: {proteinPerKg: 2.0, carbShare: 35.0 / 60.0},
	models.GoalMuscleGain: {proteinPerKg: 2.0, carbShare: 55.0 / 80.0},
	models.GoalMaintain:   {proteinPerKg: 1.4, carbShare: 50.0 / 80.0},
	models.GoalEndurance:  {proteinPerKg: 1.4, carbShare: 60.0 / 80.0},
}

// Calculate validates the input and returns BMR, TDEE, macro and water targets.
// It returns a *validation.Error naming the offending field
// and bound when age, weight, height or an enum is out of range.
func Calculate(in models.NutritionInput) (models.NutritionResult, error) {
	if verr := validation.ValidateStruct(&in); verr != nil {
		return models.NutritionResult{}, verr
	}

	bmr := BMR(in.Gender, in.WeightKg, in.HeightCm, in.Age)
	tdee := bmr * activityMultipliers[in.ActivityLevel]

	return models.NutritionResult{
		BMR:         bmr,
		TDEE:        tdee,
		Macros:      Macros(in.Goal, tdee, in.WeightKg),
		WaterLiters: WaterLiters(in.WeightKg),
	}, nil
}

// CalculateForProfile is Calculate over a stored health profile.
func CalculateForProfile(p *models.HealthProfile) (models.NutritionResult, error) {
	return Calculate(p.NutritionInput())
}

// BMR returns the Mifflin-St Jeor basal metabolic rate in kcal/day.
// Inputs are not range checked.
func BMR(gender string, weightKg, heightCm float64, age int) float64 {
	base := 10*weightKg + 6.25*heightCm - 5*float64(age)
	if gender == models.GenderFemale {
		return base - 161
	}
	return base + 5
}

// ActivityMultiplier returns the TDEE multiplier for an activity level.
// The boolean is false for unknown levels.
func ActivityMultiplier(level string) (float64, bool) {
	m, ok := activityMultipliers[level]
	return m, ok
}

// Macros distributes tdee across protein, carbohydrate and fat for a goal.
// Unknown goals use the maintain split.
func Macros(goal string, tdee, weightKg float64) models.MacroTargets {
	split, ok := macroSplits[goal]
	if !ok {
		split = macroSplits[models.GoalMaintain]
	}

	proteinKcal := split.proteinPerKg * weightKg * KcalPerGramProtein
	if proteinKcal > tdee {
		// Degenerate profiles (very light, very old) cannot afford the full
		// protein allowance; keep the energy total intact instead.
		proteinKcal = math.Max(tdee, 0)
	}
	remaining := tdee - proteinKcal
	carbKcal := remaining * split.carbShare
	fatKcal := remaining - carbKcal

	return models.MacroTargets{
		ProteinGrams: round(proteinKcal/KcalPerGramProtein, 1),
		CarbsGrams:   round(carbKcal/KcalPerGramCarbs, 1),
		FatGrams:     round(fatKcal/KcalPerGramFat, 1),
	}
}

// WaterLiters returns the daily water target in liters.
func WaterLiters(weightKg float64) float64 {
	return round(weightKg*WaterMlPerKg/1000, 2)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
