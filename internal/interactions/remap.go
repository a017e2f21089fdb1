// RecSim - Recommendation Agent Simulation and Offline Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsim

package interactions

import (
	"errors"
	"fmt"
)

// ErrUnmappedItem is returned when a raw item id has no dense id.
var ErrUnmappedItem = errors.New("item id not present in remapper")

// ItemRemapper is a bijection between raw (sparse) item ids and dense ids in
// [0, Len()). Dense ids are assigned in first-seen order over the train rows
// followed by the test rows, so both splits share one id space.
type ItemRemapper struct {
	toDense map[int]int
	toRaw   []int
}

// NewItemRemapper builds the mapping from both splits. Row order matters:
// the first raw id encountered gets dense id 0.
func NewItemRemapper(train, test []Interaction) *ItemRemapper {
	r := &ItemRemapper{
		toDense: make(map[int]int),
		toRaw:   make([]int, 0),
	}
	for _, rows := range [][]Interaction{train, test} {
		for i := range rows {
			r.add(rows[i].ItemID)
		}
	}
	return r
}

func (r *ItemRemapper) add(raw int) {
	if _, ok := r.toDense[raw]; ok {
		return
	}
	r.toDense[raw] = len(r.toRaw)
	r.toRaw = append(r.toRaw, raw)
}

// Len returns the number of distinct items.
func (r *ItemRemapper) Len() int {
	return len(r.toRaw)
}

// Dense returns the dense id for a raw item id.
func (r *ItemRemapper) Dense(raw int) (int, bool) {
	id, ok := r.toDense[raw]
	return id, ok
}

// Raw returns the original id for a dense item id.
func (r *ItemRemapper) Raw(dense int) (int, bool) {
	if dense < 0 || dense >= len(r.toRaw) {
		return 0, false
	}
	return r.toRaw[dense], true
}

// Apply returns a copy of rows with item ids rewritten to dense ids.
func (r *ItemRemapper) Apply(rows []Interaction) ([]Interaction, error) {
	out := make([]Interaction, len(rows))
	for i, row := range rows {
		dense, ok := r.toDense[row.ItemID]
		if !ok {
			return nil, fmt.Errorf("row %d: %w: %d", i, ErrUnmappedItem, row.ItemID)
		}
		row.ItemID = dense
		out[i] = row
	}
	return out, nil
}
