// Macrocore - Sports Nutrition Computation Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/macrocore

package models

import (
	"strings"
	"time"
)

// Product is a catalog item. Nutrition fields are per 100 g.
type Product struct {
	ID        string    `json:"id" validate:"omitempty,max=64,printascii,excludesall=:/"`
	Name      string    `json:"name" validate:"required,max=200"`
	Category  string    `json:"category" validate:"required,max=100"`
	Calories  float64   `json:"calories" validate:"gte=0,lte=900"`
	Protein   float64   `json:"protein" validate:"gte=0,lte=100"`
	Carbs     float64   `json:"carbs" validate:"gte=0,lte=100"`
	Fat       float64   `json:"fat" validate:"gte=0,lte=100"`
	Price     float64   `json:"price" validate:"gte=0"`
	Barcode   string    `json:"barcode,omitempty" validate:"omitempty,max=32,alphanum"`
	Allergens []string  `json:"allergens,omitempty" validate:"omitempty,dive,required,max=64"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// HasAnyAllergen reports whether the product declares any of the given allergens.
// Comparison is case-insensitive.
func (p *Product) HasAnyAllergen(allergens []string) bool {
	return IntersectsFold(p.Allergens, allergens)
}

// PortionNutrition is a product's nutrition scaled to a portion size.
type PortionNutrition struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Grams     float64 `json:"grams"`
	Calories  float64 `json:"calories"`
	Protein   float64 `json:"protein"`
	Carbs     float64 `json:"carbs"`
	Fat       float64 `json:"fat"`
}

// Range is an inclusive numeric bound. A nil side is unbounded.
type Range struct {
	Min *float64 `json:"min,omitempty" validate:"omitempty,gte=0"`
	Max *float64 `json:"max,omitempty" validate:"omitempty,gte=0"`
}

// Contains reports whether v lies within the range.
func (r Range) Contains(v float64) bool {
	if r.Min != nil && v < *r.Min {
		return false
	}
	if r.Max != nil && v > *r.Max {
		return false
	}
	return true
}

// ProductFilter narrows a catalog page. All conditions are AND-combined.
type ProductFilter struct {
	Category         string   `json:"category,omitempty" validate:"omitempty,max=100"`
	Calories         Range    `json:"calories"`
	Protein          Range    `json:"protein"`
	Carbs            Range    `json:"carbs"`
	Fat              Range    `json:"fat"`
	Price            Range    `json:"price"`
	ExcludeAllergens []string `json:"exclude_allergens,omitempty" validate:"omitempty,dive,required,max=64"`
}

// Matches reports whether a product satisfies every condition of the filter.
func (f *ProductFilter) Matches(p *Product) bool {
	if f.Category != "" && !strings.EqualFold(f.Category, p.Category) {
		return false
	}
	if !f.Calories.Contains(p.Calories) ||
		!f.Protein.Contains(p.Protein) ||
		!f.Carbs.Contains(p.Carbs) ||
		!f.Fat.Contains(p.Fat) ||
		!f.Price.Contains(p.Price) {
		return false
	}
	if len(f.ExcludeAllergens) > 0 && p.HasAnyAllergen(f.ExcludeAllergens) {
		return false
	}
	return true
}

// ProductPage is one page of a filtered catalog query.
type ProductPage struct {
	Items []Product `json:"items"`
	Total int       `json:"total"`
	Page  int       `json:"page"`
	Limit int       `json:"limit"`
	Pages int       `json:"pages"`
}

// Product change actions carried by ProductChanged.
const (
	ProductCreated = "created"
	ProductUpdated = "updated"
	ProductDeleted = "deleted"
)

// ProductChanged is broadcast after every catalog write so that every
// instance drops its cached copy.
type ProductChanged struct {
	ProductID  string    `json:"product_id"`
	Barcode    string    `json:"barcode,omitempty"`
	OldBarcode string    `json:"old_barcode,omitempty"`
	Action     string    `json:"action"`
	OccurredAt time.Time `json:"occurred_at"`
}

// IntersectsFold reports whether a and b share an element, ignoring case
// and surrounding whitespace.
func IntersectsFold(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(b))
	for _, s := range b {
		set[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
	}
	for _, s := range a {
		if _, ok := set[strings.ToLower(strings.TrimSpace(s))]; ok {
			return true
		}
	}
	return false
}
