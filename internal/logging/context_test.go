// RecSim - Recommendation Agent Simulation and Offline Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsim

package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestRunIDContext(t *testing.T) {
	ctx := context.Background()
	if got := RunIDFromContext(ctx); got != "" {
		t.Errorf("RunIDFromContext(empty) = %q", got)
	}

	ctx = ContextWithRunID(ctx, "run-123")
	if got := RunIDFromContext(ctx); got != "run-123" {
		t.Errorf("RunIDFromContext() = %q, want run-123", got)
	}
}

func TestRequestIDContext(t *testing.T) {
	id := GenerateRequestID()
	if len(id) != 36 {
		t.Errorf("GenerateRequestID() length = %d, want 36", len(id))
	}

	ctx := ContextWithRequestID(context.Background(), id)
	if got := RequestIDFromContext(ctx); got != id {
		t.Errorf("RequestIDFromContext() = %q, want %q", got, id)
	}
}

func TestLoggerFromContext(t *testing.T) {
	var buf bytes.Buffer
	custom := zerolog.New(&buf).With().Str("custom", "yes").Logger()

	ctx := ContextWithLogger(context.Background(), custom)
	l := LoggerFromContext(ctx)
	l.Info().Msg("hello")

	if !strings.Contains(buf.String(), `"custom":"yes"`) {
		t.Errorf("expected stored logger to be used, got: %s", buf.String())
	}
}

func TestCtx(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)

	ctx := ContextWithLogger(context.Background(), base)
	ctx = ContextWithRunID(ctx, "run-abc")
	ctx = ContextWithRequestID(ctx, "req-xyz")

	Ctx(ctx).Info().Msg("tagged")

	out := buf.String()
	if !strings.Contains(out, `"run_id":"run-abc"`) {
		t.Errorf("missing run_id: %s", out)
	}
	if !strings.Contains(out, `"request_id":"req-xyz"`) {
		t.Errorf("missing request_id: %s", out)
	}
}

func TestCtx_NoValues(t *testing.T) {
	var buf bytes.Buffer
	ctx := ContextWithLogger(context.Background(), zerolog.New(&buf))

	Ctx(ctx).Info().Msg("plain")

	out := buf.String()
	if strings.Contains(out, "run_id") || strings.Contains(out, "request_id") {
		t.Errorf("unexpected context fields: %s", out)
	}
}
