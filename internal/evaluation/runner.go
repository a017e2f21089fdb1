// RecSim - Recommendation Agent Simulation and Offline Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsim

package evaluation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/recsim/internal/logging"
	"github.com/tomtom215/recsim/internal/metrics"
	"github.com/tomtom215/recsim/internal/policy"
)

// Run statuses.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Params records the settings a run was executed with.
type Params struct {
	Episodes           int     `json:"episodes"`
	KValues            []int   `json:"k_values"`
	Seed               int64   `json:"seed"`
	Workers            int     `json:"workers"`
	ExploreProbability float64 `json:"explore_probability"`
	HistoryLength      int     `json:"history_length"`
	EpisodeLength      int     `json:"episode_length"`
	Scorer             string  `json:"scorer"`
}

// Run is a persisted evaluation.
type Run struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Status      string    `json:"status"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
	Params      Params    `json:"params"`
	Result      *Result   `json:"result,omitempty"`
	Error       string    `json:"error,omitempty"`
}

// Request asks the Runner for one evaluation. Zero fields use the
// evaluator's configuration.
type Request struct {
	Name     string
	Episodes int
	KValues  []int
	Seed     int64
}

// RunSaver persists runs.
type RunSaver interface {
	Save(ctx context.Context, run *Run) error
}

// RunPublisher announces finished runs.
type RunPublisher interface {
	PublishRun(ctx context.Context, run *Run) error
}

// Runner executes evaluations and takes care of metrics, persistence and
// notification. Store and publisher are optional.
type Runner struct {
	evaluator    *Evaluator
	store        RunSaver
	publisher    RunPublisher
	keepEpisodes bool
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithStore persists every run.
func WithStore(s RunSaver) RunnerOption {
	return func(r *Runner) { r.store = s }
}

// WithPublisher publishes every run.
func WithPublisher(p RunPublisher) RunnerOption {
	return func(r *Runner) { r.publisher = p }
}

// WithEpisodeResults keeps per-episode results on the stored run.
func WithEpisodeResults(keep bool) RunnerOption {
	return func(r *Runner) { r.keepEpisodes = keep }
}

// NewRunner creates a runner around evaluator.
func NewRunner(evaluator *Evaluator, opts ...RunnerOption) (*Runner, error) {
	if evaluator == nil {
		return nil, errors.New("evaluator is required")
	}
	r := &Runner{evaluator: evaluator}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Evaluator returns the wrapped evaluator.
func (r *Runner) Evaluator() *Evaluator {
	return r.evaluator
}

// Run evaluates, records metrics, then saves and publishes the run. A failed
// evaluation is still saved with StatusFailed and returned together with the
// error. Publish failures are logged and do not fail the run.
func (r *Runner) Run(ctx context.Context, req Request) (*Run, error) {
	ev := r.evaluator
	if req.Seed != 0 {
		ev = ev.WithSeed(req.Seed)
	}
	cfg := ev.Config()
	envCfg := ev.EnvironmentConfig()

	episodes := req.Episodes
	if episodes <= 0 {
		episodes = cfg.Episodes
	}
	kValues := req.KValues
	if len(kValues) == 0 {
		kValues = cfg.KValues
	}

	run := &Run{
		ID:        uuid.New().String(),
		Name:      req.Name,
		StartedAt: time.Now().UTC(),
		Params: Params{
			Episodes:           episodes,
			KValues:            kValues,
			Seed:               cfg.Seed,
			Workers:            cfg.Workers,
			ExploreProbability: ev.Selector().ExploreProbability(),
			HistoryLength:      envCfg.HistoryLength,
			EpisodeLength:      envCfg.EpisodeLength,
			Scorer:             policy.ScorerName(ev.Selector().Scorer()),
		},
	}
	if run.Name == "" {
		run.Name = "evaluation-" + run.StartedAt.Format("20060102-150405")
	}

	ctx = logging.ContextWithRunID(ctx, run.ID)
	logging.Ctx(ctx).Info().
		Str("name", run.Name).
		Int("episodes", episodes).
		Ints("k_values", kValues).
		Int64("seed", cfg.Seed).
		Msg("Evaluation started")

	result, evalErr := ev.Evaluate(ctx, episodes, kValues)
	run.CompletedAt = time.Now().UTC()
	run.Result = result
	if result != nil {
		run.Params.KValues = result.KValues
		if !r.keepEpisodes {
			result.EpisodeResults = nil
		}
	}

	if evalErr != nil {
		run.Status = StatusFailed
		run.Error = evalErr.Error()
		metrics.RecordEvaluation(nil, nil, 0, run.CompletedAt.Sub(run.StartedAt), evalErr)
	} else {
		run.Status = StatusCompleted
		metrics.RecordEvaluation(result.Precision, result.Recall, result.AvgReward, result.Duration, nil)
	}

	if r.store != nil {
		if err := r.store.Save(ctx, run); err != nil {
			return run, errors.Join(evalErr, fmt.Errorf("save run: %w", err))
		}
	}

	if r.publisher != nil {
		if err := r.publisher.PublishRun(ctx, run); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("Failed to publish evaluation event")
		}
	}

	if evalErr != nil {
		return run, evalErr
	}

	logging.Ctx(ctx).Info().
		Str("status", run.Status).
		Int("failed_episodes", result.FailedEpisodes).
		Msg("Evaluation completed")
	return run, nil
}
