// RecSim - Recommendation Agent Simulation and Offline Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsim

package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newBufferedSlog(t *testing.T, level zerolog.Level) (*slog.Logger, *bytes.Buffer) {
	t.Helper()
	prev := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })

	var buf bytes.Buffer
	return NewSlogLogger(zerolog.New(&buf).Level(level)), &buf
}

func TestSlogHandler_Enabled(t *testing.T) {
	h := NewSlogHandler(zerolog.New(&bytes.Buffer{}).Level(zerolog.WarnLevel))

	tests := []struct {
		level slog.Level
		want  bool
	}{
		{slog.LevelDebug, false},
		{slog.LevelInfo, false},
		{slog.LevelWarn, true},
		{slog.LevelError, true},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			if got := h.Enabled(context.Background(), tt.level); got != tt.want {
				t.Errorf("Enabled(%v) = %v, want %v", tt.level, got, tt.want)
			}
		})
	}
}

func TestSlogHandler_Levels(t *testing.T) {
	logger, buf := newBufferedSlog(t, zerolog.DebugLevel)

	tests := []struct {
		name string
		log  func()
		want string
	}{
		{"debug", func() { logger.Debug("d") }, `"level":"debug"`},
		{"info", func() { logger.Info("i") }, `"level":"info"`},
		{"warn", func() { logger.Warn("w") }, `"level":"warn"`},
		{"error", func() { logger.Error("e") }, `"level":"error"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.log()
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("output %s missing %s", buf.String(), tt.want)
			}
		})
	}
}

func TestSlogHandler_AttrTypes(t *testing.T) {
	logger, buf := newBufferedSlog(t, zerolog.DebugLevel)

	logger.Info("attrs",
		slog.String("service", "http-server"),
		slog.Int("restarts", 3),
		slog.Uint64("items", 7),
		slog.Float64("ratio", 0.5),
		slog.Bool("ok", true),
		slog.Duration("backoff", 2*time.Second),
		slog.Any("err", errors.New("boom")),
	)

	out := buf.String()
	for _, want := range []string{
		`"service":"http-server"`,
		`"restarts":3`,
		`"items":7`,
		`"ratio":0.5`,
		`"ok":true`,
		`"backoff":`,
		`"err":"boom"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output %s missing %s", out, want)
		}
	}
}

func TestSlogHandler_WithAttrsAndGroups(t *testing.T) {
	logger, buf := newBufferedSlog(t, zerolog.DebugLevel)

	logger.With("layer", "api").WithGroup("svc").WithGroup("http").Info("started", "port", 8080)

	out := buf.String()
	if !strings.Contains(out, `"svc.http.layer":"api"`) && !strings.Contains(out, `"layer":"api"`) {
		t.Errorf("missing pre-configured attr: %s", out)
	}
	if !strings.Contains(out, `"svc.http.port":8080`) {
		t.Errorf("group prefix not applied in order: %s", out)
	}
}

func TestSlogHandler_GroupAttr(t *testing.T) {
	logger, buf := newBufferedSlog(t, zerolog.DebugLevel)

	logger.Info("nested", slog.Group("breaker", slog.String("state", "open")))

	if !strings.Contains(buf.String(), `"breaker.state":"open"`) {
		t.Errorf("nested group not flattened: %s", buf.String())
	}
}

func TestSlogHandler_EmptyGroup(t *testing.T) {
	h := NewSlogHandler(zerolog.Nop())
	if h.WithGroup("") != h {
		t.Error("WithGroup(\"\") should return the same handler")
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
		{slog.LevelError + 4, zerolog.ErrorLevel},
	}

	for _, tt := range tests {
		if got := slogToZerologLevel(tt.in); got != tt.want {
			t.Errorf("slogToZerologLevel(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
