// Macrocore - Sports Nutrition Computation Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/macrocore

package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/macrocore/internal/models"
)

const prefixProfile = "profiles/"

// ProfileStore persists health profiles keyed by user id.
type ProfileStore struct {
	db  *DB
	now func() time.Time
}

// NewProfileStore creates a profile store on db.
func NewProfileStore(db *DB) *ProfileStore {
	return &ProfileStore{db: db, now: time.Now}
}

// FindByID returns the profile for userID, or a *models.NotFoundError.
func (s *ProfileStore) FindByID(ctx context.Context, userID string) (*models.HealthProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var profile models.HealthProfile
	err := s.db.view(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(prefixProfile + userID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &profile)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, models.NewNotFoundError("profile", userID, "")
	}
	if err != nil {
		return nil, fmt.Errorf("get profile %s: %w", userID, err)
	}
	return &profile, nil
}

// Upsert stores p, replacing any previous profile for the same user.
// UpdatedAt is set to the current time.
func (s *ProfileStore) Upsert(ctx context.Context, p *models.HealthProfile) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.UpdatedAt = s.now().UTC()
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}

	err = s.db.update(func(txn *badger.Txn) error {
		return txn.Set([]byte(prefixProfile+p.UserID), data)
	})
	if err != nil {
		return fmt.Errorf("put profile %s: %w", p.UserID, err)
	}
	return nil
}

// Delete removes the profile for userID. Missing profiles are not an error.
func (s *ProfileStore) Delete(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(prefixProfile + userID))
	})
	if err != nil {
		return fmt.Errorf("delete profile %s: %w", userID, err)
	}
	return nil
}
