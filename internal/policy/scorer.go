// RecSim - Recommendation Agent Simulation and Offline Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsim

package policy

import (
	"context"
	"errors"
	"math"

	"github.com/tomtom215/recsim/internal/simulator"
)

var (
	// ErrNoScores is returned when a scorer produced an empty vector or
	// every entry was NaN.
	ErrNoScores = errors.New("scorer returned no usable scores")

	// ErrScoreLength is returned when a score vector does not cover every item.
	ErrScoreLength = errors.New("score vector length mismatch")
)

// Scorer maps an observation to one preference score per dense item id.
// Higher is better. Implementations must be safe for concurrent use since
// the evaluator shares one scorer across episode workers.
type Scorer interface {
	Score(ctx context.Context, obs simulator.Observation) ([]float64, error)
}

// ScorerFunc adapts a function to the Scorer interface.
type ScorerFunc func(ctx context.Context, obs simulator.Observation) ([]float64, error)

// Score calls f(ctx, obs).
func (f ScorerFunc) Score(ctx context.Context, obs simulator.Observation) ([]float64, error) {
	return f(ctx, obs)
}

// Named is implemented by scorers that report a stable name for metrics
// and logs.
type Named interface {
	Name() string
}

// ScorerName returns s.Name() when available and "custom" otherwise.
func ScorerName(s Scorer) string {
	if n, ok := s.(Named); ok {
		return n.Name()
	}
	return "custom"
}

// argmax returns the index of the largest score. Ties resolve to the lowest
// index and NaN entries are skipped.
func argmax(scores []float64) (int, error) {
	best := -1
	bestScore := math.Inf(-1)
	for i, s := range scores {
		if math.IsNaN(s) {
			continue
		}
		if best == -1 || s > bestScore {
			best = i
			bestScore = s
		}
	}
	if best == -1 {
		return 0, ErrNoScores
	}
	return best, nil
}
