// Macrocore - Sports Nutrition Computation Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/macrocore

package catalog

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/tomtom215/macrocore/internal/cache"
	"github.com/tomtom215/macrocore/internal/logging"
	"github.com/tomtom215/macrocore/internal/metrics"
	"github.com/tomtom215/macrocore/internal/models"
	"github.com/tomtom215/macrocore/internal/validation"
)

// Paging defaults.
const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// DefaultTTL is how long a product stays cached.
const DefaultTTL = time.Hour

// MinQueryLength is the shortest accepted normalised search query.
const MinQueryLength = 2

// ProductRepository is the source of truth for products.
// Lookups of missing products return an error matching models.ErrNotFound.
type ProductRepository interface {
	FindByID(ctx context.Context, id string) (*models.Product, error)
	FindByBarcode(ctx context.Context, code string) (*models.Product, error)
	FindAll(ctx context.Context, page, limit int, filter models.ProductFilter) (models.ProductPage, error)
	Search(ctx context.Context, query string) ([]models.Product, error)
	Create(ctx context.Context, p *models.Product) error
	// Update and Delete return the product as it was before the write.
	Update(ctx context.Context, p *models.Product) (*models.Product, error)
	Delete(ctx context.Context, id string) (*models.Product, error)
}

// ChangePublisher broadcasts product writes to other instances.
type ChangePublisher interface {
	PublishProductChanged(ctx context.Context, change models.ProductChanged) error
}

// Catalog serves products from the cache, falling back to the repository.
type Catalog struct {
	repo      ProductRepository
	products  *cache.Store[models.Product]
	ttl       time.Duration
	publisher ChangePublisher
	now       func() time.Time
	logger    zerolog.Logger
}

// New creates a catalog. A ttl of zero uses DefaultTTL.
func New(repo ProductRepository, products *cache.Store[models.Product], ttl time.Duration) *Catalog {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Catalog{
		repo:     repo,
		products: products,
		ttl:      ttl,
		now:      time.Now,
		logger:   logging.WithComponent("catalog"),
	}
}

// SetPublisher attaches a publisher for cross-instance invalidation.
func (c *Catalog) SetPublisher(p ChangePublisher) {
	c.publisher = p
}

// ProductKey returns the cache key for a product id.
func ProductKey(id string) string {
	return "product:" + id
}

// BarcodeKey returns the cache key for a barcode lookup.
func BarcodeKey(code string) string {
	return "product-barcode:" + code
}

// GetByID returns a product, serving from the cache when possible.
func (c *Catalog) GetByID(ctx context.Context, id string) (*models.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, validation.Required("id")
	}

	p, err := c.products.GetOrLoad(ctx, ProductKey(id), c.ttl, func(ctx context.Context) (models.Product, error) {
		found, err := c.repo.FindByID(ctx, id)
		if err != nil {
			return models.Product{}, err
		}
		return *found, nil
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByBarcode resolves a barcode, serving from the cache when possible.
func (c *Catalog) GetByBarcode(ctx context.Context, code string) (*models.Product, error) {
	code = strings.TrimSpace(code)
	if verr := validation.ValidateVar("barcode", code, "required,max=32,alphanum"); verr != nil {
		return nil, verr
	}

	p, err := c.products.GetOrLoad(ctx, BarcodeKey(code), c.ttl, func(ctx context.Context) (models.Product, error) {
		found, err := c.repo.FindByBarcode(ctx, code)
		if err != nil {
			return models.Product{}, err
		}
		return *found, nil
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetPage returns one page of products matching filter.
// page <= 0 becomes 1, limit <= 0 becomes DefaultLimit and limit is capped at MaxLimit.
func (c *Catalog) GetPage(ctx context.Context, page, limit int, filter models.ProductFilter) (*models.ProductPage, error) {
	page, limit = normalizePaging(page, limit)

	if verr := validation.ValidateStruct(&filter); verr != nil {
		return nil, verr
	}

	result, err := c.repo.FindAll(ctx, page, limit, filter)
	if err != nil {
		return nil, err
	}

	if result.Items == nil {
		result.Items = []models.Product{}
	}
	result.Page = page
	result.Limit = limit
	result.Pages = pageCount(result.Total, limit)
	return &result, nil
}

// Search returns products matching query after trimming and lowercasing it.
// An empty result is not an error.
func (c *Catalog) Search(ctx context.Context, query string) ([]models.Product, error) {
	q := NormalizeQuery(query)
	if utf8.RuneCountInString(q) < MinQueryLength {
		return nil, validation.TooShort("query", 2)
	}

	items, err := c.repo.Search(ctx, q)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.Product{}
	}
	return items, nil
}

// Create stores a new product and invalidates anything cached under its keys.
func (c *Catalog) Create(ctx context.Context, p *models.Product) (*models.Product, error) {
	if verr := validation.ValidateStruct(p); verr != nil {
		return nil, verr
	}
	if err := c.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	c.afterWrite(ctx, models.ProductChanged{
		ProductID: p.ID,
		Barcode:   p.Barcode,
		Action:    models.ProductCreated,
	})
	return p, nil
}

// Update replaces the product with the given id. The cached copies under the
// id, the new barcode and the previous barcode are dropped before returning.
func (c *Catalog) Update(ctx context.Context, id string, p *models.Product) (*models.Product, error) {
	p.ID = strings.TrimSpace(id)
	if p.ID == "" {
		return nil, validation.Required("id")
	}
	if verr := validation.ValidateStruct(p); verr != nil {
		return nil, verr
	}

	prev, err := c.repo.Update(ctx, p)
	if err != nil {
		return nil, err
	}

	change := models.ProductChanged{
		ProductID: p.ID,
		Barcode:   p.Barcode,
		Action:    models.ProductUpdated,
	}
	if prev != nil && prev.Barcode != p.Barcode {
		change.OldBarcode = prev.Barcode
	}
	c.afterWrite(ctx, change)
	return p, nil
}

// Delete removes the product and drops its cached copies.
func (c *Catalog) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return validation.Required("id")
	}

	prev, err := c.repo.Delete(ctx, id)
	if err != nil {
		return err
	}

	change := models.ProductChanged{ProductID: id, Action: models.ProductDeleted}
	if prev != nil {
		change.Barcode = prev.Barcode
	}
	c.afterWrite(ctx, change)
	return nil
}

// GetNutritionForPortion scales the per-100 g nutrition of a product to grams.
func (c *Catalog) GetNutritionForPortion(ctx context.Context, id string, grams float64) (*models.PortionNutrition, error) {
	if verr := validation.ValidateVar("grams", grams, "gt=0,lte=5000"); verr != nil {
		return nil, verr
	}

	p, err := c.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	factor := grams / 100
	return &models.PortionNutrition{
		ProductID: p.ID,
		Name:      p.Name,
		Grams:     grams,
		Calories:  p.Calories * factor,
		Protein:   p.Protein * factor,
		Carbs:     p.Carbs * factor,
		Fat:       p.Fat * factor,
	}, nil
}

// InvalidateChange drops every cache key touched by a change received from
// another instance.
func (c *Catalog) InvalidateChange(ctx context.Context, change models.ProductChanged) {
	c.invalidate(ctx, "event", change)
}

func (c *Catalog) afterWrite(ctx context.Context, change models.ProductChanged) {
	change.OccurredAt = c.now().UTC()

	metrics.CatalogWrites.WithLabelValues(change.Action).Inc()
	c.invalidate(ctx, "local", change)

	if c.publisher == nil {
		return
	}
	if err := c.publisher.PublishProductChanged(ctx, change); err != nil {
		// Local invalidation already happened; peers converge on TTL expiry.
		c.logger.Warn().Err(err).
			Str("product_id", change.ProductID).
			Str("action", change.Action).
			Msg("Failed to publish product change")
	}
}

func (c *Catalog) invalidate(ctx context.Context, source string, change models.ProductChanged) {
	c.products.Delete(ctx, ProductKey(change.ProductID))
	for _, code := range []string{change.Barcode, change.OldBarcode} {
		if code != "" {
			c.products.Delete(ctx, BarcodeKey(code))
		}
	}
	metrics.CatalogInvalidations.WithLabelValues(source).Inc()

	c.logger.Debug().
		Str("product_id", change.ProductID).
		Str("action", change.Action).
		Str("source", source).
		Msg("Product cache invalidated")
}

// NormalizeQuery trims and lowercases a search query.
func NormalizeQuery(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

func normalizePaging(page, limit int) (int, int) {
	if page <= 0 {
		page = DefaultPage
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return page, limit
}

func pageCount(total, limit int) int {
	if total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}
