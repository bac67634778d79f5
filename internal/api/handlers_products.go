// Macrocore - Sports Nutrition Computation Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/macrocore

package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/macrocore/internal/models"
	"github.com/tomtom215/macrocore/internal/validation"
)

// ListProducts handles GET /api/v1/products.
//
// Query parameters:
//   - page, limit: paging (catalog defaults apply when absent)
//   - category: exact match, case-insensitive
//   - min_calories, max_calories, min_protein, max_protein, min_carbs,
//     max_carbs, min_fat, max_fat, min_price, max_price: inclusive bounds
//   - exclude_allergens: comma-separated
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	page, verr := getIntParam(r, "page", 1)
	if verr != nil {
		respondServiceError(w, r, verr)
		return
	}
	limit, verr := getIntParam(r, "limit", 0)
	if verr != nil {
		respondServiceError(w, r, verr)
		return
	}
	filter, verr := parseProductFilter(r)
	if verr != nil {
		respondServiceError(w, r, verr)
		return
	}

	result, err := h.catalog.GetPage(r.Context(), page, limit, filter)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, result)
}

// parseProductFilter builds a ProductFilter from the query string.
func parseProductFilter(r *http.Request) (models.ProductFilter, *validation.Error) {
	filter := models.ProductFilter{
		Category:         strings.TrimSpace(r.URL.Query().Get("category")),
		ExcludeAllergens: parseCommaSeparated(r.URL.Query().Get("exclude_allergens")),
	}

	ranges := []struct {
		name string
		dst  *models.Range
	}{
		{"calories", &filter.Calories},
		{"protein", &filter.Protein},
		{"carbs", &filter.Carbs},
		{"fat", &filter.Fat},
		{"price", &filter.Price},
	}
	for _, rg := range ranges {
		lo, verr := getFloatParam(r, "min_"+rg.name)
		if verr != nil {
			return filter, verr
		}
		hi, verr := getFloatParam(r, "max_"+rg.name)
		if verr != nil {
			return filter, verr
		}
		rg.dst.Min, rg.dst.Max = lo, hi
	}
	return filter, nil
}

// SearchProducts handles GET /api/v1/products/search?q=.
func (h *Handler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	items, err := h.catalog.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, items)
}

// GetProduct handles GET /api/v1/products/{id}.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.catalog.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, p)
}

// GetProductByBarcode handles GET /api/v1/products/barcode/{code}.
func (h *Handler) GetProductByBarcode(w http.ResponseWriter, r *http.Request) {
	p, err := h.catalog.GetByBarcode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, p)
}

// CreateProduct handles POST /api/v1/products.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var p models.Product
	if !decodeJSON(w, r, &p) {
		return
	}

	created, err := h.catalog.Create(r.Context(), &p)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/v1/products/"+created.ID)
	respondData(w, r, http.StatusCreated, created)
}

// UpdateProduct handles PUT /api/v1/products/{id}.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var p models.Product
	if !decodeJSON(w, r, &p) {
		return
	}

	updated, err := h.catalog.Update(r.Context(), chi.URLParam(r, "id"), &p)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, updated)
}

// DeleteProduct handles DELETE /api/v1/products/{id}.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ProductPortion handles GET /api/v1/products/{id}/portion?grams=.
func (h *Handler) ProductPortion(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSpace(r.URL.Query().Get("grams"))
	if raw == "" {
		respondServiceError(w, r, validation.Required("grams"))
		return
	}
	grams, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		respondServiceError(w, r, validation.NotANumber("grams"))
		return
	}

	portion, err := h.catalog.GetNutritionForPortion(r.Context(), chi.URLParam(r, "id"), grams)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, portion)
}
