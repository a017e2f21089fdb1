// RecSim - Recommendation Agent Simulation and Offline Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsim

package interactions

import (
	"errors"
	"math/rand"
	"testing"
)

func TestItemRemapper_FirstSeenOrder(t *testing.T) {
	train := []Interaction{
		{ItemID: 1034}, {ItemID: 7}, {ItemID: 1034}, {ItemID: 55},
	}
	test := []Interaction{
		{ItemID: 9000}, {ItemID: 7}, {ItemID: 3},
	}

	r := NewItemRemapper(train, test)

	want := map[int]int{1034: 0, 7: 1, 55: 2, 9000: 3, 3: 4}
	if r.Len() != len(want) {
		t.Fatalf("Len() = %d, want %d", r.Len(), len(want))
	}
	for raw, dense := range want {
		got, ok := r.Dense(raw)
		if !ok || got != dense {
			t.Errorf("Dense(%d) = %d, %v; want %d", raw, got, ok, dense)
		}
		back, ok := r.Raw(dense)
		if !ok || back != raw {
			t.Errorf("Raw(%d) = %d, %v; want %d", dense, back, ok, raw)
		}
	}

	if _, ok := r.Raw(-1); ok {
		t.Error("Raw(-1) should not resolve")
	}
	if _, ok := r.Raw(r.Len()); ok {
		t.Error("Raw(Len()) should not resolve")
	}
}

func TestItemRemapper_Bijection(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	var train, test []Interaction
	raws := make(map[int]struct{})
	for i := 0; i < 500; i++ {
		raw := rng.Intn(100000)
		raws[raw] = struct{}{}
		row := Interaction{UserID: i % 17, ItemID: raw}
		if i%3 == 0 {
			test = append(test, row)
		} else {
			train = append(train, row)
		}
	}

	r := NewItemRemapper(train, test)
	if r.Len() != len(raws) {
		t.Fatalf("Len() = %d, want %d distinct raw ids", r.Len(), len(raws))
	}

	seen := make(map[int]int)
	for raw := range raws {
		dense, ok := r.Dense(raw)
		if !ok {
			t.Fatalf("raw id %d not mapped", raw)
		}
		if dense < 0 || dense >= r.Len() {
			t.Fatalf("dense id %d out of range [0, %d)", dense, r.Len())
		}
		if prev, dup := seen[dense]; dup {
			t.Fatalf("raw ids %d and %d collide on dense id %d", prev, raw, dense)
		}
		seen[dense] = raw
	}
}

func TestItemRemapper_Apply(t *testing.T) {
	train := []Interaction{{UserID: 1, ItemID: 500, Rating: 4}}
	test := []Interaction{{UserID: 2, ItemID: 300, Rating: 2}}
	r := NewItemRemapper(train, test)

	got, err := r.Apply(test)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if got[0].ItemID != 1 || got[0].UserID != 2 || got[0].Rating != 2 {
		t.Errorf("Apply() = %+v", got[0])
	}
	if test[0].ItemID != 300 {
		t.Error("Apply() mutated its input")
	}

	_, err = r.Apply([]Interaction{{ItemID: 12345}})
	if !errors.Is(err, ErrUnmappedItem) {
		t.Errorf("Apply() error = %v, want ErrUnmappedItem", err)
	}
}
