// Macrocore - Sports Nutrition Computation Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/macrocore

package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	natsgo "github.com/nats-io/nats.go"

	"github.com/tomtom215/macrocore/internal/logging"
	"github.com/tomtom215/macrocore/internal/metrics"
	"github.com/tomtom215/macrocore/internal/models"
)

// ErrBusClosed is returned after Close.
var ErrBusClosed = errors.New("event bus closed")

// Bus publishes and subscribes to product change events.
type Bus struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	topic      string
	transport  string
	embedded   *EmbeddedServer
	logger     watermill.LoggerAdapter

	mu     sync.RWMutex
	closed bool
}

// NewBus creates a bus for the configured transport, starting an embedded
// NATS server first when requested.
func NewBus(cfg Config) (*Bus, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Topic == "" {
		cfg.Topic = DefaultTopic
	}

	logger := watermill.NewSlogLogger(logging.NewSlogLogger("events"))

	switch cfg.Transport {
	case TransportNATS:
		return newNATSBus(cfg, logger)
	default:
		return newGoChannelBus(cfg, logger), nil
	}
}

func newGoChannelBus(cfg Config, logger watermill.LoggerAdapter) *Bus {
	buffer := cfg.BufferSize
	if buffer <= 0 {
		buffer = 256
	}
	pubSub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: buffer,
	}, logger)

	return &Bus{
		publisher:  pubSub,
		subscriber: pubSub,
		topic:      cfg.Topic,
		transport:  TransportGoChannel,
		logger:     logger,
	}
}

func newNATSBus(cfg Config, logger watermill.LoggerAdapter) (*Bus, error) {
	url := cfg.URL
	var embedded *EmbeddedServer
	if cfg.Embedded {
		srv, err := NewEmbeddedServer(cfg.EmbeddedHost, cfg.EmbeddedPort)
		if err != nil {
			return nil, err
		}
		embedded = srv
		url = srv.ClientURL()
	}

	natsOpts := []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(cfg.MaxReconnects),
		natsgo.ReconnectWait(cfg.ReconnectWait),
		natsgo.DisconnectErrHandler(func(nc *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{
				"url": nc.ConnectedUrl(),
			})
		}),
	}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         url,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream:   wmNats.JetStreamConfig{Disabled: true},
	}, logger)
	if err != nil {
		shutdownEmbedded(embedded)
		return nil, fmt.Errorf("create watermill publisher: %w", err)
	}

	closeTimeout := cfg.CloseTimeout
	if closeTimeout <= 0 {
		closeTimeout = 10 * time.Second
	}

	// No queue group: every instance must see every change.
	sub, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
		URL:              url,
		SubscribersCount: 1,
		CloseTimeout:     closeTimeout,
		AckWaitTimeout:   30 * time.Second,
		SubscribeTimeout: 30 * time.Second,
		NatsOptions:      natsOpts,
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream:        wmNats.JetStreamConfig{Disabled: true},
	}, logger)
	if err != nil {
		_ = pub.Close()
		shutdownEmbedded(embedded)
		return nil, fmt.Errorf("create watermill subscriber: %w", err)
	}

	logging.Info().
		Str("url", url).
		Bool("embedded", embedded != nil).
		Str("topic", cfg.Topic).
		Msg("Event bus connected to NATS")

	return &Bus{
		publisher:  pub,
		subscriber: sub,
		topic:      cfg.Topic,
		transport:  TransportNATS,
		embedded:   embedded,
		logger:     logger,
	}, nil
}

// Topic returns the subject product changes are published on.
func (b *Bus) Topic() string {
	return b.topic
}

// Transport returns the active transport name.
func (b *Bus) Transport() string {
	return b.transport
}

// PublishProductChanged serializes and publishes a product change.
func (b *Bus) PublishProductChanged(ctx context.Context, change models.ProductChanged) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrBusClosed
	}

	data, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("marshal product change: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.SetContext(ctx)
	msg.Metadata.Set("action", change.Action)
	msg.Metadata.Set("product_id", change.ProductID)
	if id := logging.CorrelationIDFromContext(ctx); id != "" {
		msg.Metadata.Set("correlation_id", id)
	}

	err = b.publisher.Publish(b.topic, msg)
	metrics.RecordEvent(metrics.EventsPublished, b.topic, err)
	if err != nil {
		return fmt.Errorf("publish to %s: %w", b.topic, err)
	}
	return nil
}

// Subscribe returns a channel of raw messages on the change topic.
// The channel closes when ctx is cancelled or the bus is closed.
func (b *Bus) Subscribe(ctx context.Context) (<-chan *message.Message, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil, ErrBusClosed
	}
	return b.subscriber.Subscribe(ctx, b.topic)
}

// Close shuts down the publisher, the subscriber and any embedded server.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	var errs []error
	if err := b.publisher.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close publisher: %w", err))
	}
	if b.transport == TransportNATS {
		if err := b.subscriber.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close subscriber: %w", err))
		}
	}
	shutdownEmbedded(b.embedded)

	return errors.Join(errs...)
}

func shutdownEmbedded(s *EmbeddedServer) {
	if s == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		logging.Warn().Err(err).Msg("Embedded NATS server shutdown timed out")
	}
}
