// Macrocore - Sports Nutrition Computation Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/macrocore

package models

import "time"

// Gender values accepted by the BMR formula.
const (
	GenderMale   = "male"
	GenderFemale = "female"
)

// Activity levels, ordered from least to most active.
const (
	ActivitySedentary  = "sedentary"
	ActivityLight      = "light"
	ActivityModerate   = "moderate"
	ActivityActive     = "active"
	ActivityVeryActive = "very_active"
)

// Training goals.
const (
	GoalWeightLoss = "weight_loss"
	GoalMuscleGain = "muscle_gain"
	GoalMaintain   = "maintain"
	GoalEndurance  = "endurance"
)

// ActivityLevels lists every activity level in ascending order of energy expenditure.
var ActivityLevels = []string{
	ActivitySedentary,
	ActivityLight,
	ActivityModerate,
	ActivityActive,
	ActivityVeryActive,
}

// Goals lists every supported goal.
var Goals = []string{GoalWeightLoss, GoalMuscleGain, GoalMaintain, GoalEndurance}

// HealthProfile is the physiological snapshot a computation runs against.
// Ranges are enforced by the validate tags.
type HealthProfile struct {
	UserID             string    `json:"user_id" validate:"required,max=128"`
	Age                int       `json:"age" validate:"gte=13,lte=120"`
	Gender             string    `json:"gender" validate:"required,oneof=male female"`
	WeightKg           float64   `json:"weight_kg" validate:"gte=30,lte=300"`
	HeightCm           float64   `json:"height_cm" validate:"gte=100,lte=250"`
	ActivityLevel      string    `json:"activity_level" validate:"required,oneof=sedentary light moderate active very_active"`
	Goal               string    `json:"goal" validate:"required,oneof=weight_loss muscle_gain maintain endurance"`
	Allergies          []string  `json:"allergies,omitempty" validate:"omitempty,max=50,dive,required,max=64"`
	DietaryPreferences []string  `json:"dietary_preferences,omitempty" validate:"omitempty,max=50,dive,required,max=64"`
	UpdatedAt          time.Time `json:"updated_at,omitempty"`
}

// NutritionInput is the subset of HealthProfile the calculator needs.
// It lets callers compute targets without a stored profile.
type NutritionInput struct {
	Age           int     `json:"age" validate:"gte=13,lte=120"`
	Gender        string  `json:"gender" validate:"required,oneof=male female"`
	WeightKg      float64 `json:"weight_kg" validate:"gte=30,lte=300"`
	HeightCm      float64 `json:"height_cm" validate:"gte=100,lte=250"`
	ActivityLevel string  `json:"activity_level" validate:"required,oneof=sedentary light moderate active very_active"`
	Goal          string  `json:"goal" validate:"required,oneof=weight_loss muscle_gain maintain endurance"`
}

// NutritionInput extracts the calculator input from the profile.
func (p *HealthProfile) NutritionInput() NutritionInput {
	return NutritionInput{
		Age:           p.Age,
		Gender:        p.Gender,
		WeightKg:      p.WeightKg,
		HeightCm:      p.HeightCm,
		ActivityLevel: p.ActivityLevel,
		Goal:          p.Goal,
	}
}

// MacroTargets holds daily macronutrient targets in grams.
type MacroTargets struct {
	ProteinGrams float64 `json:"protein_grams"`
	CarbsGrams   float64 `json:"carbs_grams"`
	FatGrams     float64 `json:"fat_grams"`
}

// Calories returns the energy content of the targets in kcal.
func (m MacroTargets) Calories() float64 {
	return m.ProteinGrams*4 + m.CarbsGrams*4 + m.FatGrams*9
}

// NutritionResult is the output of the nutrition calculator.
// It is recomputed on demand and never cached.
type NutritionResult struct {
	BMR         float64      `json:"bmr"`
	TDEE        float64      `json:"tdee"`
	Macros      MacroTargets `json:"macros"`
	WaterLiters float64      `json:"water_liters"`
}
