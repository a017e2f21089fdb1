// RecSim - Recommendation Agent Simulation and Offline Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsim

package simulator

// Transition is one (item, reward) pair recorded during an episode.
type Transition struct {
	Item   int     `json:"item"`
	Reward float64 `json:"reward"`
}

// history is a bounded, append-only sequence of transitions.
// Invariant: len(items) <= capacity. The backing array is reused across
// episodes.
type history struct {
	items    []Transition
	capacity int
}

func newHistory(capacity int) *history {
	return &history{
		items:    make([]Transition, 0, capacity),
		capacity: capacity,
	}
}

func (h *history) reset() {
	h.items = h.items[:0]
}

func (h *history) len() int {
	return len(h.items)
}

func (h *history) full() bool {
	return len(h.items) >= h.capacity
}

// push appends t. It reports false when the sequence is at capacity.
func (h *history) push(t Transition) bool {
	if h.full() {
		return false
	}
	h.items = append(h.items, t)
	return true
}

// window returns the item ids and rewards of the most recent
// min(n, len) transitions, oldest first.
func (h *history) window(n int) ([]int, []float64) {
	if n > len(h.items) {
		n = len(h.items)
	}
	tail := h.items[len(h.items)-n:]
	items := make([]int, n)
	rewards := make([]float64, n)
	for i, t := range tail {
		items[i] = t.Item
		rewards[i] = t.Reward
	}
	return items, rewards
}

func (h *history) snapshot() []Transition {
	out := make([]Transition, len(h.items))
	copy(out, h.items)
	return out
}
