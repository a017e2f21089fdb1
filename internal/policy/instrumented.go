// RecSim - Recommendation Agent Simulation and Offline Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsim

package policy

import (
	"context"
	"time"

	"github.com/tomtom215/recsim/internal/metrics"
	"github.com/tomtom215/recsim/internal/simulator"
)

// InstrumentedScorer records call latency and errors for the wrapped scorer.
type InstrumentedScorer struct {
	next Scorer
	name string
}

// Instrument wraps s. The metric label is ScorerName(s).
func Instrument(s Scorer) *InstrumentedScorer {
	return &InstrumentedScorer{next: s, name: ScorerName(s)}
}

// Name implements Named.
func (i *InstrumentedScorer) Name() string { return i.name }

// Score implements Scorer.
func (i *InstrumentedScorer) Score(ctx context.Context, obs simulator.Observation) ([]float64, error) {
	start := time.Now()
	scores, err := i.next.Score(ctx, obs)
	metrics.RecordScorerCall(i.name, time.Since(start), err)
	return scores, err
}
