// RecSim - Recommendation Agent Simulation and Offline Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsim

package simulator

import (
	"strconv"
	"strings"
)

// Observation is the fixed-length state vector handed to the policy:
//
//	[user] ++ [last N item ids] ++ [last N rewards]
//
// Both history blocks are left zero padded, so the most recent transition
// always sits in the last slot of each block.
type Observation []float64

// NewObservation encodes user and the trailing history window. items and
// rewards must have equal length and at most n entries.
func NewObservation(user int, items []int, rewards []float64, n int) Observation {
	obs := make(Observation, 1+2*n)
	obs[0] = float64(user)

	pad := n - len(items)
	for i, item := range items {
		obs[1+pad+i] = float64(item)
	}
	for i, r := range rewards {
		obs[1+n+pad+i] = r
	}
	return obs
}

// HistoryLength returns N, the number of item and reward slots.
func (o Observation) HistoryLength() int {
	if len(o) < 1 {
		return 0
	}
	return (len(o) - 1) / 2
}

// User returns the encoded user id.
func (o Observation) User() int {
	if len(o) == 0 {
		return 0
	}
	return int(o[0])
}

// Items returns the N item slots, padding included.
func (o Observation) Items() []int {
	n := o.HistoryLength()
	out := make([]int, n)
	for i := 0; i < n; i++ {
		out[i] = int(o[1+i])
	}
	return out
}

// Rewards returns the N reward slots, padding included.
func (o Observation) Rewards() []float64 {
	n := o.HistoryLength()
	out := make([]float64, n)
	copy(out, o[1+n:1+2*n])
	return out
}

// Key returns a compact string form usable as a cache key.
func (o Observation) Key() string {
	var b strings.Builder
	b.Grow(len(o) * 6)
	for i, v := range o {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	}
	return b.String()
}
