// RecSim - Recommendation Agent Simulation and Offline Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsim

/*
Package cache provides a generic, thread-safe LRU cache with TTL expiration.

The evaluator scores the same observation many times when episodes share a
user and history prefix (every episode starts from the all-zero history), so
score vectors from slow or remote scorers are memoized here.

# Usage Example

	scores := cache.NewLRU[[]float64](4096, 10*time.Minute)
	scores.Set(obs.Key(), vec)
	if v, ok := scores.Get(obs.Key()); ok {
	    // use v
	}

Entries expire lazily on Get; CleanupExpired sweeps them eagerly.
*/
package cache
