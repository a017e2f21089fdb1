// RecSim - Recommendation Agent Simulation and Offline Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsim

package api

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/tomtom215/recsim/internal/evaluation"
)

// EvaluationRunner executes one evaluation. *evaluation.Runner implements it.
type EvaluationRunner interface {
	Run(ctx context.Context, req evaluation.Request) (*evaluation.Run, error)
}

// RunReader reads persisted runs. *runstore.Store implements it.
type RunReader interface {
	Get(ctx context.Context, id string) (*evaluation.Run, error)
	List(ctx context.Context, limit int) ([]*evaluation.Run, error)
	Count(ctx context.Context) (int, error)
}

// HandlerConfig tunes the handlers.
type HandlerConfig struct {
	Version string

	// MaxConcurrentEvaluations bounds simultaneous POST /evaluations.
	// Requests beyond it get 429.
	// Default: 1
	MaxConcurrentEvaluations int64
}

// Handler serves the RecSim API.
type Handler struct {
	runner    EvaluationRunner
	runs      RunReader
	version   string
	startTime time.Time

	evalSlots *semaphore.Weighted
	active    atomic.Int64
}

// NewHandler creates the API handlers.
func NewHandler(runner EvaluationRunner, runs RunReader, cfg HandlerConfig) (*Handler, error) {
	if runner == nil {
		return nil, errors.New("evaluation runner is required")
	}
	if runs == nil {
		return nil, errors.New("run reader is required")
	}
	if cfg.MaxConcurrentEvaluations <= 0 {
		cfg.MaxConcurrentEvaluations = 1
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	return &Handler{
		runner:    runner,
		runs:      runs,
		version:   cfg.Version,
		startTime: time.Now(),
		evalSlots: semaphore.NewWeighted(cfg.MaxConcurrentEvaluations),
	}, nil
}
