// Macrocore - Sports Nutrition Computation Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/macrocore

package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/macrocore/internal/models"
	"github.com/tomtom215/macrocore/internal/validation"
)

const (
	prefixProduct = "products/"
	prefixBarcode = "barcodes/"
)

// MaxSearchResults bounds the number of products returned by Search.
const MaxSearchResults = 100

// ProductStore persists catalog products and their barcode index.
type ProductStore struct {
	db  *DB
	now func() time.Time
}

// NewProductStore creates a product store on db.
func NewProductStore(db *DB) *ProductStore {
	return &ProductStore{db: db, now: time.Now}
}

func productKey(id string) []byte   { return []byte(prefixProduct + id) }
func barcodeKey(code string) []byte { return []byte(prefixBarcode + code) }

// FindByID returns the product with the given id, or a *models.NotFoundError.
func (s *ProductStore) FindByID(ctx context.Context, id string) (*models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var product *models.Product
	err := s.db.view(func(txn *badger.Txn) error {
		var err error
		product, err = readProduct(txn, id)
		return err
	})
	if err != nil {
		return nil, wrapNotFound(err, "product", id)
	}
	return product, nil
}

// FindByBarcode resolves a barcode through the index.
func (s *ProductStore) FindByBarcode(ctx context.Context, code string) (*models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var product *models.Product
	err := s.db.view(func(txn *badger.Txn) error {
		item, err := txn.Get(barcodeKey(code))
		if err != nil {
			return err
		}
		id, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		product, err = readProduct(txn, string(id))
		return err
	})
	if err != nil {
		return nil, wrapNotFound(err, "barcode", code)
	}
	return product, nil
}

// FindAll returns one page of products matching filter. Page and limit must
// already be normalised by the caller; Pages is left to the caller as well.
func (s *ProductStore) FindAll(ctx context.Context, page, limit int, filter models.ProductFilter) (models.ProductPage, error) {
	matched, err := s.scan(ctx, filter.Matches)
	if err != nil {
		return models.ProductPage{}, err
	}

	result := models.ProductPage{
		Items: []models.Product{},
		Total: len(matched),
		Page:  page,
		Limit: limit,
	}

	// Compare page numbers rather than offsets so a huge page cannot overflow.
	if limit <= 0 || page < 1 || page-1 >= (len(matched)+limit-1)/limit {
		return result, nil
	}
	offset := (page - 1) * limit
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	result.Items = matched[offset:end]
	return result, nil
}

// Search returns products whose name or category contains query, or whose
// barcode equals it. query is expected to be trimmed and lowercased.
func (s *ProductStore) Search(ctx context.Context, query string) ([]models.Product, error) {
	matched, err := s.scan(ctx, func(p *models.Product) bool {
		return strings.Contains(strings.ToLower(p.Name), query) ||
			strings.Contains(strings.ToLower(p.Category), query) ||
			strings.EqualFold(p.Barcode, query)
	})
	if err != nil {
		return nil, err
	}
	if len(matched) > MaxSearchResults {
		matched = matched[:MaxSearchResults]
	}
	return matched, nil
}

// Create stores a new product. An empty ID is replaced with a UUID.
// A barcode already used by another product is a validation error.
func (s *ProductStore) Create(ctx context.Context, p *models.Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	now := s.now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	return s.db.update(func(txn *badger.Txn) error {
		if _, err := txn.Get(productKey(p.ID)); err == nil {
			return validation.AlreadyInUse("id")
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check product %s: %w", p.ID, err)
		}
		if err := claimBarcode(txn, p.Barcode, p.ID); err != nil {
			return err
		}
		return writeProduct(txn, p)
	})
}

// Update replaces an existing product and returns the previous version so
// callers can invalidate anything keyed on the old barcode.
func (s *ProductStore) Update(ctx context.Context, p *models.Product) (*models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var prev *models.Product
	err := s.db.update(func(txn *badger.Txn) error {
		var err error
		prev, err = readProduct(txn, p.ID)
		if err != nil {
			return err
		}

		if prev.Barcode != p.Barcode {
			if err := claimBarcode(txn, p.Barcode, p.ID); err != nil {
				return err
			}
			if prev.Barcode != "" {
				if err := txn.Delete(barcodeKey(prev.Barcode)); err != nil {
					return fmt.Errorf("release barcode %s: %w", prev.Barcode, err)
				}
			}
		}

		p.CreatedAt = prev.CreatedAt
		p.UpdatedAt = s.now().UTC()
		return writeProduct(txn, p)
	})
	if err != nil {
		return nil, wrapNotFound(err, "product", p.ID)
	}
	return prev, nil
}

// Delete removes a product and its barcode index entry, returning the
// deleted product.
func (s *ProductStore) Delete(ctx context.Context, id string) (*models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var prev *models.Product
	err := s.db.update(func(txn *badger.Txn) error {
		var err error
		prev, err = readProduct(txn, id)
		if err != nil {
			return err
		}
		if prev.Barcode != "" {
			if err := txn.Delete(barcodeKey(prev.Barcode)); err != nil {
				return fmt.Errorf("release barcode %s: %w", prev.Barcode, err)
			}
		}
		return txn.Delete(productKey(id))
	})
	if err != nil {
		return nil, wrapNotFound(err, "product", id)
	}
	return prev, nil
}

// scan iterates every product in one read transaction and returns those
// accepted by keep, sorted by name then id.
func (s *ProductStore) scan(ctx context.Context, keep func(p *models.Product) bool) ([]models.Product, error) {
	var matched []models.Product

	err := s.db.view(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		opts.Prefix = []byte(prefixProduct)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			var p models.Product
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &p)
			}); err != nil {
				return fmt.Errorf("decode %s: %w", it.Item().Key(), err)
			}
			if keep(&p) {
				matched = append(matched, p)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan products: %w", err)
	}

	sort.Slice(matched, func(i, j int) bool {
		a, b := strings.ToLower(matched[i].Name), strings.ToLower(matched[j].Name)
		if a != b {
			return a < b
		}
		return matched[i].ID < matched[j].ID
	})
	if matched == nil {
		matched = []models.Product{}
	}
	return matched, nil
}

func readProduct(txn *badger.Txn, id string) (*models.Product, error) {
	item, err := txn.Get(productKey(id))
	if err != nil {
		return nil, err
	}
	var p models.Product
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &p)
	}); err != nil {
		return nil, fmt.Errorf("decode product %s: %w", id, err)
	}
	return &p, nil
}

func writeProduct(txn *badger.Txn, p *models.Product) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal product: %w", err)
	}
	return txn.Set(productKey(p.ID), data)
}

// claimBarcode points code at id, failing if another product owns it.
func claimBarcode(txn *badger.Txn, code, id string) error {
	if code == "" {
		return nil
	}
	item, err := txn.Get(barcodeKey(code))
	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
	case err != nil:
		return fmt.Errorf("check barcode %s: %w", code, err)
	default:
		owner, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		if string(owner) != id {
			return validation.AlreadyInUse("barcode")
		}
	}
	return txn.Set(barcodeKey(code), []byte(id))
}

func wrapNotFound(err error, resource, id string) error {
	if errors.Is(err, badger.ErrKeyNotFound) {
		return models.NewNotFoundError(resource, id, "")
	}
	var verr *validation.Error
	if errors.As(err, &verr) || errors.Is(err, ErrClosed) {
		return err
	}
	return fmt.Errorf("%s %s: %w", resource, id, err)
}
