// Macrocore - Sports Nutrition Computation Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/macrocore

// Package services adapts blocking components to suture.Service.
//
// Components that already expose Serve(ctx) error, such as storage.GCService
// and events.InvalidationListener, are added to the tree directly. Only
// *http.Server needs an adapter, because ListenAndServe ignores contexts.
package services
