// RecSim - Recommendation Agent Simulation and Offline Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsim

package interactions

import (
	"errors"
	"fmt"
	"sort"
)

// ErrNegativeID is returned when a row carries a negative user or item id.
var ErrNegativeID = errors.New("negative id")

type ratingKey struct {
	user int
	item int
}

// Store is the read-only lookup structure over remapped interactions.
// The test split provides relevance and ratings; the train split only
// contributes to the popularity ranking.
//
// A Store is immutable after NewStore returns and is safe for concurrent
// readers. Returned sets and slices are copies.
type Store struct {
	relevant   map[int]ItemSet
	ratings    map[ratingKey]float64
	users      []int
	popularity []int
	numItems   int
	numUsers   int
}

// NewStore builds a Store from rows whose item ids are already dense.
// When a (user, item) pair appears more than once in the test split the
// last rating wins.
func NewStore(train, test []Interaction) (*Store, error) {
	s := &Store{
		relevant: make(map[int]ItemSet),
		ratings:  make(map[ratingKey]float64, len(test)),
	}

	counts := make(map[int]int)
	for i, row := range train {
		if err := s.observeIDs(row); err != nil {
			return nil, fmt.Errorf("train row %d: %w", i, err)
		}
		counts[row.ItemID]++
	}

	for i, row := range test {
		if err := s.observeIDs(row); err != nil {
			return nil, fmt.Errorf("test row %d: %w", i, err)
		}
		set, ok := s.relevant[row.UserID]
		if !ok {
			set = make(ItemSet)
			s.relevant[row.UserID] = set
		}
		set[row.ItemID] = struct{}{}
		s.ratings[ratingKey{user: row.UserID, item: row.ItemID}] = row.Rating
	}

	s.users = make([]int, 0, len(s.relevant))
	for user := range s.relevant {
		s.users = append(s.users, user)
	}
	sort.Ints(s.users)

	s.popularity = rankByCount(counts)
	return s, nil
}

func (s *Store) observeIDs(row Interaction) error {
	if row.UserID < 0 || row.ItemID < 0 {
		return fmt.Errorf("%w: user=%d item=%d", ErrNegativeID, row.UserID, row.ItemID)
	}
	if row.UserID >= s.numUsers {
		s.numUsers = row.UserID + 1
	}
	if row.ItemID >= s.numItems {
		s.numItems = row.ItemID + 1
	}
	return nil
}

// rankByCount orders items by descending count, ties by lowest id.
func rankByCount(counts map[int]int) []int {
	ranked := make([]int, 0, len(counts))
	for item := range counts {
		ranked = append(ranked, item)
	}
	sort.Slice(ranked, func(i, j int) bool {
		ci, cj := counts[ranked[i]], counts[ranked[j]]
		if ci != cj {
			return ci > cj
		}
		return ranked[i] < ranked[j]
	})
	return ranked
}

// RelevantItems returns the items user interacted with in the test split.
// Unknown users get an empty set.
func (s *Store) RelevantItems(user int) ItemSet {
	set := s.relevant[user]
	out := make(ItemSet, len(set))
	for item := range set {
		out[item] = struct{}{}
	}
	return out
}

// Rating returns the observed test rating for (user, item).
func (s *Store) Rating(user, item int) (float64, bool) {
	r, ok := s.ratings[ratingKey{user: user, item: item}]
	return r, ok
}

// PopularityRanking returns training items by descending interaction count.
// Items never seen in training are not ranked.
func (s *Store) PopularityRanking() []int {
	out := make([]int, len(s.popularity))
	copy(out, s.popularity)
	return out
}

// Users returns the users present in the test split in ascending order.
func (s *Store) Users() []int {
	out := make([]int, len(s.users))
	copy(out, s.users)
	return out
}

// NumItems returns the size of the dense item id space.
func (s *Store) NumItems() int {
	return s.numItems
}

// NumUsers returns one past the largest user id seen in either split.
func (s *Store) NumUsers() int {
	return s.numUsers
}

// Stats summarizes the store for logging and run metadata.
type Stats struct {
	Users       int `json:"users"`
	TestUsers   int `json:"test_users"`
	Items       int `json:"items"`
	TestRatings int `json:"test_ratings"`
	RankedItems int `json:"ranked_items"`
}

// Stats returns size counters for the store.
func (s *Store) Stats() Stats {
	return Stats{
		Users:       s.numUsers,
		TestUsers:   len(s.users),
		Items:       s.numItems,
		TestRatings: len(s.ratings),
		RankedItems: len(s.popularity),
	}
}
