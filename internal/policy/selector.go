// RecSim - Recommendation Agent Simulation and Offline Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsim

package policy

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/tomtom215/recsim/internal/interactions"
	"github.com/tomtom215/recsim/internal/metrics"
	"github.com/tomtom215/recsim/internal/simulator"
)

// DefaultExploreProbability is the chance of substituting a known relevant
// item for the scorer's top pick.
const DefaultExploreProbability = 0.75

// Selection describes one chosen action.
type Selection struct {
	// Item is the dense item id to recommend.
	Item int

	// Explored is true when Item came from the known relevant set rather
	// than from the scorer's argmax.
	Explored bool

	// Score is the scorer's value for Item.
	Score float64
}

// ActionSelector turns scores into an action.
//
// With probability ExploreProbability, and only when the caller supplies a
// non-empty set of known relevant items, it returns one of those items
// chosen uniformly. Otherwise it returns the argmax of the scores. The
// known set is the ground truth of the evaluation split, so this rule leaks
// relevant items into the recommendation list and inflates recall.
//
// An ActionSelector holds a *rand.Rand and is not safe for concurrent use.
// Give each goroutine its own copy via WithRand.
type ActionSelector struct {
	scorer      Scorer
	exploreProb float64
	rng         *rand.Rand
}

// NewActionSelector creates a selector. A nil rng is replaced by one seeded
// with 42.
func NewActionSelector(scorer Scorer, exploreProb float64, rng *rand.Rand) (*ActionSelector, error) {
	if scorer == nil {
		return nil, errors.New("scorer is required")
	}
	if exploreProb < 0 || exploreProb > 1 {
		return nil, fmt.Errorf("explore probability must be in [0, 1], got %v", exploreProb)
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(42)) //nolint:gosec // simulation randomness, not security
	}
	return &ActionSelector{scorer: scorer, exploreProb: exploreProb, rng: rng}, nil
}

// WithRand returns a copy of the selector sharing the scorer but drawing from rng.
func (a *ActionSelector) WithRand(rng *rand.Rand) *ActionSelector {
	return &ActionSelector{scorer: a.scorer, exploreProb: a.exploreProb, rng: rng}
}

// ExploreProbability returns the configured exploration probability.
func (a *ActionSelector) ExploreProbability() float64 {
	return a.exploreProb
}

// Scorer returns the wrapped scorer.
func (a *ActionSelector) Scorer() Scorer {
	return a.scorer
}

// SelectAction scores obs and picks the next item.
//
// The scorer is always called, and the exploration coin is always drawn, so
// the random stream consumed per step does not depend on the known set.
func (a *ActionSelector) SelectAction(ctx context.Context, obs simulator.Observation, known interactions.ItemSet) (Selection, error) {
	scores, err := a.scorer.Score(ctx, obs)
	if err != nil {
		return Selection{}, fmt.Errorf("score observation: %w", err)
	}

	coin := a.rng.Float64()
	if coin < a.exploreProb && known.Len() > 0 {
		candidates := known.Sorted()
		item := candidates[a.rng.Intn(len(candidates))]
		metrics.RecordActionSelection(true)
		return Selection{Item: item, Explored: true, Score: scoreAt(scores, item)}, nil
	}

	item, err := argmax(scores)
	if err != nil {
		return Selection{}, err
	}
	metrics.RecordActionSelection(false)
	return Selection{Item: item, Score: scores[item]}, nil
}

func scoreAt(scores []float64, item int) float64 {
	if item < 0 || item >= len(scores) {
		return 0
	}
	return scores[item]
}
