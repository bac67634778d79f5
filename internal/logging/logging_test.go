// Macrocore - Sports Nutrition Computation Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/macrocore

package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// captureGlobal routes the global logger to a buffer for the test.
func captureGlobal(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	t.Cleanup(Capture(&buf))
	return &buf
}

func decodeLine(t *testing.T, line string) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	if err := json.Unmarshal([]byte(line), &m); err != nil {
		t.Fatalf("invalid JSON log line %q: %v", line, err)
	}
	return m
}

// ===================================================================================================
// Logger Tests
// ===================================================================================================

func TestInit_StampsServiceAndVersion(t *testing.T) {
	var buf bytes.Buffer
	t.Cleanup(Capture(&bytes.Buffer{}))

	Init(Config{Level: "debug", Format: "json", Version: "1.4.0", Output: &buf})
	Debug().Str("product_id", "p1").Msg("Product cached")

	m := decodeLine(t, strings.TrimSpace(buf.String()))
	for field, want := range map[string]string{
		"service":    ServiceName,
		"version":    "1.4.0",
		"level":      "debug",
		"product_id": "p1",
		"message":    "Product cached",
	} {
		if m[field] != want {
			t.Errorf("%s = %v, want %q", field, m[field], want)
		}
	}
	if _, ok := m["time"]; !ok {
		t.Error("time field missing")
	}
}

func TestInit_OmitsEmptyVersionAndFiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	t.Cleanup(Capture(&bytes.Buffer{}))

	Init(Config{Level: "warn", Output: &buf})
	Info().Msg("dropped")
	Warn().Msg("kept")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("lines = %q, want only the warn line", lines)
	}
	m := decodeLine(t, lines[0])
	if _, ok := m["version"]; ok {
		t.Error("version should be absent when not configured")
	}
	if m["message"] != "kept" {
		t.Errorf("message = %v, want kept", m["message"])
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"DEBUG", zerolog.DebugLevel},
		{" info ", zerolog.InfoLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"disabled", zerolog.Disabled},
		{"trace", zerolog.InfoLevel},
		{"bogus", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestWithComponent(t *testing.T) {
	buf := captureGlobal(t)

	l := WithComponent("catalog")
	l.Error().Err(errors.New("repository down")).Msg("Lookup failed")

	m := decodeLine(t, strings.TrimSpace(buf.String()))
	if m["component"] != "catalog" || m["service"] != ServiceName {
		t.Errorf("component = %v, service = %v", m["component"], m["service"])
	}
	if m["error"] != "repository down" {
		t.Errorf("error = %v, want repository down", m["error"])
	}
}

func TestCapture_Restores(t *testing.T) {
	var first, second bytes.Buffer
	restore := Capture(&first)
	inner := Capture(&second)

	Info().Msg("inner")
	inner()
	Info().Msg("outer")
	restore()

	if !strings.Contains(second.String(), "inner") || strings.Contains(second.String(), "outer") {
		t.Errorf("second = %q", second.String())
	}
	if !strings.Contains(first.String(), "outer") || strings.Contains(first.String(), "inner") {
		t.Errorf("first = %q", first.String())
	}
}

// ===================================================================================================
// Context Tests
// ===================================================================================================

func TestCtx_AddsIDs(t *testing.T) {
	buf := captureGlobal(t)

	ctx := ContextWithRequestID(context.Background(), "req-123")
	ctx = ContextWithCorrelationID(ctx, "corr-456")
	Ctx(ctx).Info().Msg("handled")

	m := decodeLine(t, strings.TrimSpace(buf.String()))
	if m["request_id"] != "req-123" {
		t.Errorf("request_id = %v, want req-123", m["request_id"])
	}
	if m["correlation_id"] != "corr-456" {
		t.Errorf("correlation_id = %v, want corr-456", m["correlation_id"])
	}
}

func TestCtx_EmptyContext(t *testing.T) {
	buf := captureGlobal(t)

	Ctx(context.Background()).Info().Msg("plain")

	m := decodeLine(t, strings.TrimSpace(buf.String()))
	if _, ok := m["request_id"]; ok {
		t.Error("request_id should be absent without a request ID in context")
	}
}

func TestContextWithNewCorrelationID(t *testing.T) {
	ctx := ContextWithNewCorrelationID(context.Background())
	if got := CorrelationIDFromContext(ctx); len(got) != 8 {
		t.Errorf("CorrelationIDFromContext() = %q, want 8 characters", got)
	}
	if got := RequestIDFromContext(ctx); got != "" {
		t.Errorf("RequestIDFromContext() = %q, want empty", got)
	}
}

// ===================================================================================================
// slog Adapter Tests
// ===================================================================================================

func TestSlogHandler_Handle(t *testing.T) {
	var buf bytes.Buffer
	prevLevel := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	t.Cleanup(func() { zerolog.SetGlobalLevel(prevLevel) })

	logger := slog.New(NewSlogHandler(zerolog.New(&buf)))
	logger.WithGroup("svc").With("name", "http").Warn("restarting", "attempt", 2, "err", errors.New("bind"))

	m := decodeLine(t, strings.TrimSpace(buf.String()))
	if m["level"] != "warn" {
		t.Errorf("level = %v, want warn", m["level"])
	}
	if m["svc.name"] != "http" {
		t.Errorf("svc.name = %v, want http", m["svc.name"])
	}
	if m["svc.attempt"] != float64(2) {
		t.Errorf("svc.attempt = %v, want 2", m["svc.attempt"])
	}
	if m["svc.err"] != "bind" {
		t.Errorf("svc.err = %v, want bind", m["svc.err"])
	}
}

func TestSlogHandler_Enabled(t *testing.T) {
	h := NewSlogHandler(zerolog.New(&bytes.Buffer{}).Level(zerolog.WarnLevel))

	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("Enabled(Info) = true for a warn-level logger")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Error("Enabled(Error) = false for a warn-level logger")
	}
}

func TestSlogToZerologLevel(t *testing.T) {
	tests := []struct {
		in   slog.Level
		want zerolog.Level
	}{
		{slog.LevelDebug - 4, zerolog.TraceLevel},
		{slog.LevelDebug, zerolog.DebugLevel},
		{slog.LevelInfo, zerolog.InfoLevel},
		{slog.LevelWarn, zerolog.WarnLevel},
		{slog.LevelError, zerolog.ErrorLevel},
	}
	for _, tt := range tests {
		if got := slogToZerologLevel(tt.in); got != tt.want {
			t.Errorf("slogToZerologLevel(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
