// RecSim - Recommendation Agent Simulation and Offline Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsim

// Package policy chooses the next item to recommend.
//
// A Scorer turns an observation into one score per dense item id. The
// ActionSelector wraps a scorer with the exploration rule used during
// evaluation:
//
//	selector, err := policy.NewActionSelector(scorer, policy.DefaultExploreProbability, rng)
//	sel, err := selector.SelectAction(ctx, obs, env.RelevantItemsForCurrentUser())
//
// # Scorers
//
//   - EmbeddingScorer: inference over trained ModelWeights
//   - PopularityScorer: train split popularity baseline
//   - CoVisitScorer: item co-visitation over train sessions, keyed by history
//   - RemoteScorer: HTTP model server behind a circuit breaker and rate limiter
//   - CachedScorer: LRU memoization in front of any deterministic scorer
//   - InstrumentedScorer: Prometheus latency and error counters
//
// All scorers are safe for concurrent use. ActionSelector is not; use
// WithRand to derive one per goroutine.
package policy
