// RecSim - Recommendation Agent Simulation and Offline Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsim

package policy

import (
	"context"
	"fmt"

	"github.com/tomtom215/recsim/internal/interactions"
	"github.com/tomtom215/recsim/internal/simulator"
)

const (
	// maxCoVisitItemsPerUser caps the pairs generated by one heavy user.
	maxCoVisitItemsPerUser = 200

	// coVisitPriorWeight scales the popularity prior far below any
	// co-visitation similarity.
	coVisitPriorWeight = 1e-9
)

// CoVisitScorer scores items by how often they were rated by the same users
// as the items in the observation's history. Every user's train ratings
// form one session; the similarity of two items is the Jaccard coefficient
//
//	co(a, b) / (n(a) + n(b) - co(a, b))
//
// Pairs seen fewer than minCount times are dropped. A tiny popularity prior
// orders items without co-visitation evidence, so an empty history scores
// like the popularity baseline.
//
// History slots with a zero reward are padding and are ignored.
type CoVisitScorer struct {
	similarity []map[int]float64
	prior      []float64
}

// NewCoVisitScorer builds the co-visitation matrix over dense train rows.
// Items outside [0, numItems) are ignored. minCount below 1 means 1.
func NewCoVisitScorer(train []interactions.Interaction, numItems, minCount int) *CoVisitScorer {
	if minCount < 1 {
		minCount = 1
	}

	sessions := make(map[int][]int)
	seen := make(map[int]interactions.ItemSet)
	counts := make([]int, numItems)
	for _, row := range train {
		if row.ItemID < 0 || row.ItemID >= numItems {
			continue
		}
		set := seen[row.UserID]
		if set == nil {
			set = make(interactions.ItemSet)
			seen[row.UserID] = set
		}
		if set.Contains(row.ItemID) || len(set) >= maxCoVisitItemsPerUser {
			continue
		}
		set[row.ItemID] = struct{}{}
		sessions[row.UserID] = append(sessions[row.UserID], row.ItemID)
		counts[row.ItemID]++
	}

	type pair struct{ a, b int }
	co := make(map[pair]int)
	for _, items := range sessions {
		for i := 0; i < len(items); i++ {
			for j := i + 1; j < len(items); j++ {
				a, b := items[i], items[j]
				if a > b {
					a, b = b, a
				}
				co[pair{a, b}]++
			}
		}
	}

	similarity := make([]map[int]float64, numItems)
	for p, n := range co {
		if n < minCount {
			continue
		}
		union := counts[p.a] + counts[p.b] - n
		if union <= 0 {
			continue
		}
		sim := float64(n) / float64(union)
		if similarity[p.a] == nil {
			similarity[p.a] = make(map[int]float64)
		}
		if similarity[p.b] == nil {
			similarity[p.b] = make(map[int]float64)
		}
		similarity[p.a][p.b] = sim
		similarity[p.b][p.a] = sim
	}

	maxCount := 1
	for _, c := range counts {
		maxCount = max(maxCount, c)
	}
	prior := make([]float64, numItems)
	for item, c := range counts {
		prior[item] = coVisitPriorWeight * float64(c) / float64(maxCount)
	}

	return &CoVisitScorer{similarity: similarity, prior: prior}
}

// Name implements Named.
func (c *CoVisitScorer) Name() string { return "covisit" }

// NumItems returns the number of scored items.
func (c *CoVisitScorer) NumItems() int { return len(c.prior) }

// Score implements Scorer.
func (c *CoVisitScorer) Score(ctx context.Context, obs simulator.Observation) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(obs) == 0 || len(obs)%2 == 0 {
		return nil, fmt.Errorf("malformed observation of length %d", len(obs))
	}

	scores := make([]float64, len(c.prior))
	copy(scores, c.prior)

	items := obs.Items()
	rewards := obs.Rewards()
	for i, item := range items {
		if rewards[i] == 0 || item < 0 || item >= len(c.similarity) {
			continue
		}
		for neighbor, sim := range c.similarity[item] {
			scores[neighbor] += sim
		}
	}
	return scores, nil
}
