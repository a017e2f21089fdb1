// RecSim - Recommendation Agent Simulation and Offline Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsim

package policy

import (
	"context"

	"github.com/tomtom215/recsim/internal/simulator"
)

// PopularityScorer is a non-personalized baseline. The most popular item
// scores numItems, the next numItems-1 and so on. Items absent from the
// ranking score 0.
type PopularityScorer struct {
	scores []float64
}

// NewPopularityScorer builds scores from a ranking of dense item ids, most
// popular first. Ids outside [0, numItems) are ignored.
func NewPopularityScorer(ranking []int, numItems int) *PopularityScorer {
	scores := make([]float64, numItems)
	for rank, item := range ranking {
		if item < 0 || item >= numItems {
			continue
		}
		scores[item] = float64(numItems - rank)
	}
	return &PopularityScorer{scores: scores}
}

// Name implements Named.
func (p *PopularityScorer) Name() string { return "popularity" }

// Score implements Scorer. The observation is ignored.
func (p *PopularityScorer) Score(_ context.Context, _ simulator.Observation) ([]float64, error) {
	out := make([]float64, len(p.scores))
	copy(out, p.scores)
	return out, nil
}
