// RecSim - Recommendation Agent Simulation and Offline Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsim

package simulator

import (
	"reflect"
	"testing"
)

func TestNewObservation(t *testing.T) {
	tests := []struct {
		name    string
		user    int
		items   []int
		rewards []float64
		n       int
		want    Observation
	}{
		{
			name: "empty history",
			user: 7,
			n:    3,
			want: Observation{7, 0, 0, 0, 0, 0, 0},
		},
		{
			name:    "partial history is left padded",
			user:    2,
			items:   []int{11, 12},
			rewards: []float64{4, -0.1},
			n:       3,
			want:    Observation{2, 0, 11, 12, 0, 4, -0.1},
		},
		{
			name:    "full window",
			user:    0,
			items:   []int{1, 2, 3},
			rewards: []float64{5, 4, 3},
			n:       3,
			want:    Observation{0, 1, 2, 3, 5, 4, 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewObservation(tt.user, tt.items, tt.rewards, tt.n)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NewObservation() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestObservation_Accessors(t *testing.T) {
	obs := Observation{9, 0, 4, 5, 0, 3.5, -0.1}

	if obs.HistoryLength() != 3 {
		t.Errorf("HistoryLength() = %d, want 3", obs.HistoryLength())
	}
	if obs.User() != 9 {
		t.Errorf("User() = %d, want 9", obs.User())
	}
	if got := obs.Items(); !reflect.DeepEqual(got, []int{0, 4, 5}) {
		t.Errorf("Items() = %v", got)
	}
	if got := obs.Rewards(); !reflect.DeepEqual(got, []float64{0, 3.5, -0.1}) {
		t.Errorf("Rewards() = %v", got)
	}
	if got := obs.Key(); got != "9,0,4,5,0,3.5,-0.1" {
		t.Errorf("Key() = %q", got)
	}

	var empty Observation
	if empty.HistoryLength() != 0 || empty.User() != 0 || len(empty.Items()) != 0 {
		t.Error("empty observation accessors should return zero values")
	}
}

func TestConfig_Validate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() error = %v", err)
	}
	if DefaultConfig().ObservationSize() != 11 {
		t.Errorf("ObservationSize() = %d, want 11", DefaultConfig().ObservationSize())
	}

	cfg := DefaultConfig()
	cfg.HistoryLength = -1
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for negative history length")
	}
}
