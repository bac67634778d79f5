// Macrocore - Sports Nutrition Computation Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/macrocore

/*
Package events broadcasts product changes between instances so every local
product cache is invalidated after a write.

# Transports

Two Watermill transports are supported:

  - gochannel: in-process pub/sub. Single instance deployments and tests.
  - nats: core NATS subjects through watermill-nats. Every instance subscribes
    without a queue group, so each one receives every change (fan-out).
    JetStream is not used: invalidations are only useful while they are fresh
    and a missed one is bounded by the cache TTL.

When Embedded is set, an in-process nats-server is started and the bus
connects to it.

# Components

  - Bus: publishes models.ProductChanged (implements catalog.ChangePublisher)
    and hands out subscriptions.
  - InvalidationListener: a suture.Service that consumes the topic and calls
    InvalidateChange on the catalog. Instances also receive their own changes;
    invalidation is idempotent so this is harmless.

# Example

	bus, err := events.NewBus(events.DefaultConfig())
	if err != nil {
	    return err
	}
	defer bus.Close()

	cat.SetPublisher(bus)
	tree.AddMessagingService(events.NewInvalidationListener(bus, cat))
*/
package events
