// RecSim - Recommendation Agent Simulation and Offline Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsim

package policy

import (
	"context"
	"time"

	"github.com/tomtom215/recsim/internal/cache"
	"github.com/tomtom215/recsim/internal/metrics"
	"github.com/tomtom215/recsim/internal/simulator"
)

// CachedScorer memoizes score vectors by observation. Only use it in front
// of deterministic scorers.
type CachedScorer struct {
	next  Scorer
	cache *cache.LRU[[]float64]
}

// NewCachedScorer wraps next with an LRU of the given capacity and TTL.
func NewCachedScorer(next Scorer, capacity int, ttl time.Duration) *CachedScorer {
	return &CachedScorer{next: next, cache: cache.NewLRU[[]float64](capacity, ttl)}
}

// Name implements Named.
func (c *CachedScorer) Name() string { return ScorerName(c.next) }

// Score implements Scorer. Callers receive their own copy of the vector.
func (c *CachedScorer) Score(ctx context.Context, obs simulator.Observation) ([]float64, error) {
	key := obs.Key()
	if cached, ok := c.cache.Get(key); ok {
		metrics.RecordScoreCacheLookup(true)
		return cloneScores(cached), nil
	}
	metrics.RecordScoreCacheLookup(false)

	scores, err := c.next.Score(ctx, obs)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, cloneScores(scores))
	return scores, nil
}

// Stats exposes the underlying cache counters.
func (c *CachedScorer) Stats() cache.Stats {
	return c.cache.Stats()
}

func cloneScores(s []float64) []float64 {
	out := make([]float64, len(s))
	copy(out, s)
	return out
}
