// Macrocore - Sports Nutrition Computation Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/macrocore

package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/macrocore/internal/logging"
	"github.com/tomtom215/macrocore/internal/metrics"
	"github.com/tomtom215/macrocore/internal/models"
)

// errSubscriptionClosed makes suture restart the listener when the
// underlying subscription ends without the context being cancelled.
var errSubscriptionClosed = errors.New("subscription closed")

// Invalidator drops cached state for a changed product.
type Invalidator interface {
	InvalidateChange(ctx context.Context, change models.ProductChanged)
}

// InvalidationListener consumes product changes and invalidates the local
// cache. It implements suture.Service.
type InvalidationListener struct {
	bus    *Bus
	target Invalidator
	logger zerolog.Logger
}

// NewInvalidationListener creates a listener feeding target from bus.
func NewInvalidationListener(bus *Bus, target Invalidator) *InvalidationListener {
	return &InvalidationListener{
		bus:    bus,
		target: target,
		logger: logging.WithComponent("invalidation-listener"),
	}
}

// Serve subscribes and processes messages until ctx is cancelled.
func (l *InvalidationListener) Serve(ctx context.Context) error {
	messages, err := l.bus.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", l.bus.Topic(), err)
	}

	l.logger.Info().Str("topic", l.bus.Topic()).Msg("Invalidation listener started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return errSubscriptionClosed
			}
			l.handle(ctx, msg)
		}
	}
}

// handle always acks: a payload that cannot be decoded will never decode.
func (l *InvalidationListener) handle(ctx context.Context, msg *message.Message) {
	defer msg.Ack()

	var change models.ProductChanged
	if err := json.Unmarshal(msg.Payload, &change); err != nil || change.ProductID == "" {
		if err == nil {
			err = errors.New("missing product_id")
		}
		metrics.RecordEvent(metrics.EventsConsumed, l.bus.Topic(), err)
		l.logger.Warn().Err(err).
			Str("message_uuid", msg.UUID).
			Msg("Dropping malformed product change")
		return
	}

	if id := msg.Metadata.Get("correlation_id"); id != "" {
		ctx = logging.ContextWithCorrelationID(ctx, id)
	}
	l.target.InvalidateChange(ctx, change)
	metrics.RecordEvent(metrics.EventsConsumed, l.bus.Topic(), nil)
}

// String implements fmt.Stringer for suture logging.
func (l *InvalidationListener) String() string {
	return "invalidation-listener"
}
