// Macrocore - Sports Nutrition Computation Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/macrocore

package events

import (
	"fmt"
	"time"
)

// Transport names.
const (
	TransportGoChannel = "gochannel"
	TransportNATS      = "nats"
)

// DefaultTopic carries models.ProductChanged payloads.
const DefaultTopic = "catalog.product.changed"

// Config holds event bus configuration.
type Config struct {
	// Enabled turns change broadcasting on.
	Enabled bool

	// Transport is "gochannel" or "nats".
	Transport string

	// URL is the NATS server URL. Ignored when Embedded is set.
	URL string

	// Embedded starts an in-process NATS server.
	Embedded bool

	// EmbeddedHost and EmbeddedPort bind the embedded server.
	// A port of -1 picks a random free port.
	EmbeddedHost string
	EmbeddedPort int

	// Topic is the subject product changes are published to.
	Topic string

	// MaxReconnects and ReconnectWait tune the NATS client.
	MaxReconnects int
	ReconnectWait time.Duration

	// CloseTimeout bounds subscriber shutdown.
	CloseTimeout time.Duration

	// BufferSize is the gochannel output buffer per subscriber.
	BufferSize int64
}

// DefaultConfig returns an in-process configuration.
func DefaultConfig() Config {
	return Config{
		Enabled:       true,
		Transport:     TransportGoChannel,
		URL:           "nats://127.0.0.1:4222",
		EmbeddedHost:  "127.0.0.1",
		EmbeddedPort:  4222,
		Topic:         DefaultTopic,
		MaxReconnects: -1,
		ReconnectWait: 2 * time.Second,
		CloseTimeout:  10 * time.Second,
		BufferSize:    256,
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	switch c.Transport {
	case TransportGoChannel:
	case TransportNATS:
		if !c.Embedded && c.URL == "" {
			return fmt.Errorf("events: url is required for nats transport without embedded server")
		}
	default:
		return fmt.Errorf("events: unknown transport %q (want %s or %s)", c.Transport, TransportGoChannel, TransportNATS)
	}
	if c.Topic == "" {
		return fmt.Errorf("events: topic is required")
	}
	return nil
}
