// RecSim - Recommendation Agent Simulation and Offline Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsim

package policy

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/recsim/internal/logging"
	"github.com/tomtom215/recsim/internal/metrics"
	"github.com/tomtom215/recsim/internal/simulator"
)

const remoteBreakerName = "remote-scorer"

// RemoteConfig configures a RemoteScorer.
type RemoteConfig struct {
	// URL receives POST {"observation": [...]} and answers {"scores": [...]}.
	URL string

	// Timeout bounds a single HTTP call.
	// Default: 5s
	Timeout time.Duration

	// RequestsPerSecond limits the outbound call rate. Zero disables limiting.
	RequestsPerSecond float64

	// Burst is the token bucket size.
	// Default: 1
	Burst int

	// NumItems, when positive, is the expected score vector length.
	NumItems int
}

type remoteRequest struct {
	Observation []float64 `json:"observation"`
}

type remoteResponse struct {
	Scores []float64 `json:"scores"`
}

// RemoteScorer delegates scoring to a model server over HTTP. Calls are rate
// limited and guarded by a circuit breaker. Safe for concurrent use.
type RemoteScorer struct {
	cfg     RemoteConfig
	client  *http.Client
	limiter *rate.Limiter
	cb      *gobreaker.CircuitBreaker[[]float64]
}

// NewRemoteScorer creates a scorer for cfg.URL.
func NewRemoteScorer(cfg RemoteConfig) (*RemoteScorer, error) {
	if cfg.URL == "" {
		return nil, errors.New("remote scorer URL is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst)
	}

	metrics.CircuitBreakerState.WithLabelValues(remoteBreakerName).Set(0)

	cb := gobreaker.NewCircuitBreaker[[]float64](gobreaker.Settings{
		Name:        remoteBreakerName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state transition")
			metrics.RecordCircuitBreakerTransition(name, from.String(), to.String())
		},
	})

	return &RemoteScorer{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: limiter,
		cb:      cb,
	}, nil
}

// Name implements Named.
func (r *RemoteScorer) Name() string { return "remote" }

// State returns the circuit breaker state.
func (r *RemoteScorer) State() gobreaker.State {
	return r.cb.State()
}

// Score implements Scorer.
func (r *RemoteScorer) Score(ctx context.Context, obs simulator.Observation) ([]float64, error) {
	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	scores, err := r.cb.Execute(func() ([]float64, error) {
		return r.call(ctx, obs)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.RecordCircuitBreakerResult(remoteBreakerName, "rejected")
		} else {
			metrics.RecordCircuitBreakerResult(remoteBreakerName, "failure")
		}
		return nil, err
	}
	metrics.RecordCircuitBreakerResult(remoteBreakerName, "success")
	return scores, nil
}

func (r *RemoteScorer) call(ctx context.Context, obs simulator.Observation) ([]float64, error) {
	body, err := json.Marshal(remoteRequest{Observation: obs})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512)) //nolint:errcheck // best effort error detail
		return nil, fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(snippet))
	}

	var out remoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if r.cfg.NumItems > 0 && len(out.Scores) != r.cfg.NumItems {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrScoreLength, len(out.Scores), r.cfg.NumItems)
	}
	return out.Scores, nil
}
