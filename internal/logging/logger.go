// Macrocore - Sports Nutrition Computation Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/macrocore

// Package logging is the zerolog logger shared by every Macrocore component.
//
// The global logger is configured once at startup and stamps every line with
// the service name and build version, so lines from several instances behind
// one collector stay attributable. Components derive child loggers:
//
//	logger := logging.WithComponent("catalog")
//	logger.Info().Str("product_id", id).Msg("Product updated")
//
// Request-scoped lines pick up request and correlation IDs from the context
// populated by the HTTP middleware:
//
//	logging.Ctx(ctx).Warn().Err(err).Msg("Recommendation service unavailable")
package logging

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ServiceName is stamped on every line as the "service" field.
const ServiceName = "macrocore"

// Config holds logging configuration.
type Config struct {
	// Level is debug, info, warn, error or disabled. Unknown values mean info.
	Level string

	// Format is json or console.
	Format string

	// Caller adds file:line to each line.
	Caller bool

	// Version is stamped as the "version" field when set.
	Version string

	// Output defaults to os.Stderr.
	Output io.Writer
}

// DefaultConfig returns JSON at info level on stderr.
func DefaultConfig() Config {
	return Config{Level: "info", Format: "json", Output: os.Stderr}
}

var (
	mu     sync.RWMutex
	global zerolog.Logger
)

//nolint:gochecknoinits // components log before main calls Init
func init() {
	global = build(DefaultConfig())
}

// Init replaces the global logger.
func Init(cfg Config) {
	l := build(cfg)
	mu.Lock()
	global = l
	mu.Unlock()
}

var levels = map[string]zerolog.Level{
	"debug":    zerolog.DebugLevel,
	"info":     zerolog.InfoLevel,
	"warn":     zerolog.WarnLevel,
	"warning":  zerolog.WarnLevel,
	"error":    zerolog.ErrorLevel,
	"disabled": zerolog.Disabled,
}

func parseLevel(level string) zerolog.Level {
	if l, ok := levels[strings.ToLower(strings.TrimSpace(level))]; ok {
		return l
	}
	return zerolog.InfoLevel
}

func build(cfg Config) zerolog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}

	zerolog.SetGlobalLevel(parseLevel(cfg.Level))
	zerolog.TimeFieldFormat = time.RFC3339

	ctx := zerolog.New(out).With().Timestamp().Str("service", ServiceName)
	if cfg.Version != "" {
		ctx = ctx.Str("version", cfg.Version)
	}
	if cfg.Caller {
		ctx = ctx.Caller()
	}
	return ctx.Logger()
}

// Capture points the global logger at w with debug level enabled and returns
// a func restoring the previous logger and level. Tests use it to assert on
// log output.
func Capture(w io.Writer) (restore func()) {
	mu.Lock()
	prev, prevLevel := global, zerolog.GlobalLevel()
	global = zerolog.New(w).With().Timestamp().Str("service", ServiceName).Logger()
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	mu.Unlock()

	return func() {
		mu.Lock()
		global = prev
		zerolog.SetGlobalLevel(prevLevel)
		mu.Unlock()
	}
}

func current() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	l := global
	return &l
}

// With starts a child logger context from the global logger.
func With() zerolog.Context {
	return current().With()
}

// WithComponent returns a child logger with a "component" field.
func WithComponent(component string) zerolog.Logger {
	return With().Str("component", component).Logger()
}

// Debug starts a debug line.
func Debug() *zerolog.Event { return current().Debug() }

// Info starts an info line.
func Info() *zerolog.Event { return current().Info() }

// Warn starts a warn line.
func Warn() *zerolog.Event { return current().Warn() }

// Error starts an error line.
func Error() *zerolog.Event { return current().Error() }
