// Macrocore - Sports Nutrition Computation Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/macrocore

/*
Package catalog is the read-through cached view of the product repository.

Single products are cached under "product:{id}" and "product-barcode:{code}"
with a one hour TTL. Every write goes to the repository first and then deletes
the affected cache keys, so a read that follows a write never observes the
previous value. When a ChangePublisher is attached, writes are also broadcast
as models.ProductChanged so other instances can drop their copies through
InvalidateChange.

Pages and search results are not cached; they are served by the repository on
every call.
*/
package catalog
