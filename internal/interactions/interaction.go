// RecSim - Recommendation Agent Simulation and Offline Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsim

package interactions

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Split labels which partition of the interaction table a row belongs to.
type Split string

const (
	// SplitTrain rows feed the popularity baseline only.
	SplitTrain Split = "train"

	// SplitTest rows drive the simulator and provide ground truth.
	SplitTest Split = "test"
)

// ErrUnknownSplit is returned when a split label is neither train nor test.
var ErrUnknownSplit = errors.New("unknown split label")

// ParseSplit normalizes a split label. Matching is case-insensitive and
// ignores surrounding whitespace.
func ParseSplit(label string) (Split, error) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case string(SplitTrain):
		return SplitTrain, nil
	case string(SplitTest):
		return SplitTest, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSplit, label)
	}
}

// Interaction is a single observed (user, item, rating) triple.
type Interaction struct {
	UserID int     `json:"user_id"`
	ItemID int     `json:"item_id"`
	Rating float64 `json:"rating"`
	Split  Split   `json:"split"`
}

// ItemSet is an unordered set of dense item ids.
type ItemSet map[int]struct{}

// NewItemSet builds a set from the given items.
func NewItemSet(items ...int) ItemSet {
	s := make(ItemSet, len(items))
	for _, item := range items {
		s[item] = struct{}{}
	}
	return s
}

// Contains reports whether item is in the set.
func (s ItemSet) Contains(item int) bool {
	_, ok := s[item]
	return ok
}

// Len returns the number of items in the set.
func (s ItemSet) Len() int {
	return len(s)
}

// Sorted returns the members in ascending order.
// Random draws over a set go through this slice so a seeded source
// produces the same item on every run.
func (s ItemSet) Sorted() []int {
	out := make([]int, 0, len(s))
	for item := range s {
		out = append(out, item)
	}
	sort.Ints(out)
	return out
}

// CountIn returns how many distinct entries of items are members of the set.
func (s ItemSet) CountIn(items []int) int {
	if len(s) == 0 || len(items) == 0 {
		return 0
	}
	seen := make(map[int]struct{}, len(items))
	hits := 0
	for _, item := range items {
		if _, dup := seen[item]; dup {
			continue
		}
		seen[item] = struct{}{}
		if s.Contains(item) {
			hits++
		}
	}
	return hits
}
