// Macrocore - Sports Nutrition Computation Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/macrocore

/*
Package storage is the source of truth for health profiles and catalog
products, persisted in BadgerDB.

# Key Layout

All values are JSON encoded with goccy/go-json:

	profiles/{userId}   -> models.HealthProfile
	products/{id}       -> models.Product
	barcodes/{code}     -> product id (secondary index)

The same *badger.DB can be shared with cache.BadgerBackend, which writes under
its own "cache:" prefix.

# Queries

The catalog is bounded, so FindAll and Search scan the products/ prefix inside
a single read transaction (snapshot isolation) and filter in memory. Results
are ordered by case-insensitive name, then id, so pagination is stable.

# Lifecycle

Open returns a *DB that must be closed at shutdown. Every operation after Close
returns ErrClosed. For on-disk databases GCService runs value log garbage
collection under the supervisor tree.

# Usage

	db, err := storage.Open(storage.Config{InMemory: true})
	if err != nil {
	    return err
	}
	defer db.Close()

	products := storage.NewProductStore(db)
	profiles := storage.NewProfileStore(db)
*/
package storage
