// RecSim - Recommendation Agent Simulation and Offline Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsim

package evaluation

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"runtime"
	"slices"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/recsim/internal/logging"
	"github.com/tomtom215/recsim/internal/metrics"
	"github.com/tomtom215/recsim/internal/policy"
	"github.com/tomtom215/recsim/internal/simulator"
)

// ErrAllEpisodesFailed is returned when no episode completed.
var ErrAllEpisodesFailed = errors.New("all episodes failed")

// Config controls an evaluation pass.
type Config struct {
	// Episodes is the default number of simulated sessions.
	// Default: 250
	Episodes int `koanf:"episodes"`

	// KValues are the cutoffs for Precision@K and Recall@K.
	// Default: [5, 10]
	KValues []int `koanf:"k_values"`

	// Workers bounds concurrent episodes.
	// Default: runtime.NumCPU()
	Workers int `koanf:"workers"`

	// EpisodeTimeout is an optional per-episode deadline. Zero disables it.
	EpisodeTimeout time.Duration `koanf:"episode_timeout"`

	// Seed is the base seed. Episode i draws from Seed+i.
	// Default: 42
	Seed int64 `koanf:"seed"`
}

// DefaultConfig returns the reference evaluation settings.
func DefaultConfig() Config {
	return Config{
		Episodes: 250,
		KValues:  []int{5, 10},
		Workers:  runtime.NumCPU(),
		Seed:     42,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Episodes <= 0 {
		return fmt.Errorf("episodes must be positive, got %d", c.Episodes)
	}
	if len(c.KValues) == 0 {
		return errors.New("at least one k value is required")
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if c.EpisodeTimeout < 0 {
		return fmt.Errorf("episode timeout must not be negative, got %s", c.EpisodeTimeout)
	}
	return nil
}

// EpisodeResult is the outcome of one simulated session.
type EpisodeResult struct {
	Index       int             `json:"index"`
	User        int             `json:"user"`
	Recommended []int           `json:"recommended"`
	Relevant    int             `json:"relevant"`
	Explored    int             `json:"explored"`
	TotalReward float64         `json:"total_reward"`
	Precision   map[int]float64 `json:"precision,omitempty"`
	Recall      map[int]float64 `json:"recall,omitempty"`
	Duration    time.Duration   `json:"duration"`
	Error       string          `json:"error,omitempty"`

	err error
}

// Failed reports whether the episode aborted.
func (r *EpisodeResult) Failed() bool {
	return r.err != nil || r.Error != ""
}

// Result aggregates an evaluation pass. Averages cover completed episodes only.
type Result struct {
	Episodes       int             `json:"episodes"`
	FailedEpisodes int             `json:"failed_episodes"`
	KValues        []int           `json:"k_values"`
	Precision      map[int]float64 `json:"precision"`
	Recall         map[int]float64 `json:"recall"`
	AvgReward      float64         `json:"avg_reward"`
	Duration       time.Duration   `json:"duration"`
	EpisodeResults []EpisodeResult `json:"episode_results,omitempty"`
}

// Evaluator drives repeated episodes of an environment against a policy.
// It is safe for concurrent use; every episode builds its own Environment
// and random source.
type Evaluator struct {
	source   simulator.RatingSource
	envCfg   simulator.Config
	selector *policy.ActionSelector
	cfg      Config
	logger   zerolog.Logger
}

// NewEvaluator wires an evaluator. The selector's own random source is never
// used; each episode derives one from cfg.Seed.
func NewEvaluator(source simulator.RatingSource, envCfg simulator.Config, selector *policy.ActionSelector, cfg Config) (*Evaluator, error) {
	if source == nil {
		return nil, errors.New("rating source is required")
	}
	if selector == nil {
		return nil, errors.New("action selector is required")
	}
	if err := envCfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid environment config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid evaluation config: %w", err)
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}

	return &Evaluator{
		source:   source,
		envCfg:   envCfg,
		selector: selector,
		cfg:      cfg,
		logger:   logging.WithComponent("evaluator"),
	}, nil
}

// Config returns the evaluation configuration.
func (e *Evaluator) Config() Config {
	return e.cfg
}

// EnvironmentConfig returns the environment configuration.
func (e *Evaluator) EnvironmentConfig() simulator.Config {
	return e.envCfg
}

// Selector returns the action selector.
func (e *Evaluator) Selector() *policy.ActionSelector {
	return e.selector
}

// WithSeed returns a copy of the evaluator using seed as its base seed.
func (e *Evaluator) WithSeed(seed int64) *Evaluator {
	cp := *e
	cp.cfg.Seed = seed
	cp.cfg.KValues = slices.Clone(e.cfg.KValues)
	return &cp
}

// Evaluate runs numEpisodes episodes and averages Precision@K, Recall@K and
// total reward over the completed ones. Zero or empty arguments fall back to
// the configured defaults.
//
// A failed episode is logged and counted but does not affect the others.
// Evaluate itself fails only if ctx is canceled or every episode fails.
func (e *Evaluator) Evaluate(ctx context.Context, numEpisodes int, kValues []int) (*Result, error) {
	if numEpisodes <= 0 {
		numEpisodes = e.cfg.Episodes
	}
	if len(kValues) == 0 {
		kValues = e.cfg.KValues
	}
	kValues = slices.Clone(kValues)
	slices.Sort(kValues)
	kValues = slices.Compact(kValues)

	start := time.Now()
	results := make([]EpisodeResult, numEpisodes)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Workers)
	for i := 0; i < numEpisodes; i++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			results[i] = e.runEpisode(gctx, i, kValues)
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // episodes report failures through their results

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("evaluation canceled: %w", err)
	}

	res := reduce(results, kValues)
	res.Duration = time.Since(start)

	if res.FailedEpisodes == numEpisodes {
		return res, fmt.Errorf("%w: first error: %s", ErrAllEpisodesFailed, results[0].Error)
	}

	e.logger.Info().
		Int("episodes", numEpisodes).
		Int("failed", res.FailedEpisodes).
		Float64("avg_reward", res.AvgReward).
		Dur("duration", res.Duration).
		Msg("Evaluation finished")

	return res, nil
}

func (e *Evaluator) runEpisode(ctx context.Context, index int, kValues []int) EpisodeResult {
	start := time.Now()
	if e.cfg.EpisodeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.EpisodeTimeout)
		defer cancel()
	}

	res, err := e.playEpisode(ctx, index, kValues)
	res.Index = index
	res.Duration = time.Since(start)
	if err != nil {
		res.err = err
		res.Error = err.Error()
		e.logger.Warn().Err(err).Int("episode", index).Int("user", res.User).Msg("Episode failed")
	}
	metrics.RecordEpisode(len(res.Recommended), res.TotalReward, res.Duration, err)
	return res
}

func (e *Evaluator) playEpisode(ctx context.Context, index int, kValues []int) (EpisodeResult, error) {
	var res EpisodeResult

	rng := rand.New(rand.NewSource(e.cfg.Seed + int64(index))) //nolint:gosec // simulation randomness, not security
	env, err := simulator.New(e.source, e.envCfg, rng)
	if err != nil {
		return res, err
	}
	selector := e.selector.WithRand(rng)

	obs, err := env.Reset()
	if err != nil {
		return res, fmt.Errorf("reset environment: %w", err)
	}
	res.User, _ = env.CurrentUser()
	relevant := env.RelevantItemsForCurrentUser()
	res.Relevant = relevant.Len()
	res.Recommended = make([]int, 0, e.envCfg.EpisodeLength)

	for !env.Done() {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		sel, err := selector.SelectAction(ctx, obs, relevant)
		if err != nil {
			return res, fmt.Errorf("step %d: %w", env.Steps(), err)
		}
		step, err := env.Step(sel.Item)
		if err != nil {
			return res, fmt.Errorf("step %d: %w", env.Steps(), err)
		}
		res.Recommended = append(res.Recommended, sel.Item)
		res.TotalReward += step.Reward
		if sel.Explored {
			res.Explored++
		}
		obs = step.Observation
	}

	res.Precision = make(map[int]float64, len(kValues))
	res.Recall = make(map[int]float64, len(kValues))
	for _, k := range kValues {
		res.Precision[k] = PrecisionAtK(res.Recommended, relevant, k)
		res.Recall[k] = RecallAtK(res.Recommended, relevant, k)
	}
	return res, nil
}

// reduce merges per-episode results. Failed episodes are counted and skipped.
func reduce(results []EpisodeResult, kValues []int) *Result {
	out := &Result{
		Episodes:       len(results),
		KValues:        kValues,
		Precision:      make(map[int]float64, len(kValues)),
		Recall:         make(map[int]float64, len(kValues)),
		EpisodeResults: results,
	}

	completed := 0
	var rewardSum float64
	for i := range results {
		r := &results[i]
		if r.Failed() {
			out.FailedEpisodes++
			continue
		}
		completed++
		rewardSum += r.TotalReward
		for _, k := range kValues {
			out.Precision[k] += r.Precision[k]
			out.Recall[k] += r.Recall[k]
		}
	}

	for _, k := range kValues {
		if completed == 0 {
			out.Precision[k] = 0
			out.Recall[k] = 0
			continue
		}
		out.Precision[k] /= float64(completed)
		out.Recall[k] /= float64(completed)
	}
	if completed > 0 {
		out.AvgReward = rewardSum / float64(completed)
	}
	return out
}
