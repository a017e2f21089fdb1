// RecSim - Recommendation Agent Simulation and Offline Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsim

package evaluation

import "github.com/tomtom215/recsim/internal/interactions"

// PrecisionAtK returns |recommended[:k] ∩ relevant| / k, or 0 when k <= 0.
// A list shorter than k is used whole but the denominator stays k.
func PrecisionAtK(recommended []int, relevant interactions.ItemSet, k int) float64 {
	if k <= 0 {
		return 0
	}
	hits := relevant.CountIn(topK(recommended, k))
	return float64(hits) / float64(k)
}

// RecallAtK returns |recommended[:k] ∩ relevant| / min(|relevant|, k).
//
// The denominator is capped at k, unlike textbook recall. It returns 0 when
// k <= 0 or relevant is empty.
func RecallAtK(recommended []int, relevant interactions.ItemSet, k int) float64 {
	if k <= 0 {
		return 0
	}
	denom := min(relevant.Len(), k)
	if denom == 0 {
		return 0
	}
	hits := relevant.CountIn(topK(recommended, k))
	return float64(hits) / float64(denom)
}

func topK(items []int, k int) []int {
	if k > len(items) {
		return items
	}
	return items[:k]
}
