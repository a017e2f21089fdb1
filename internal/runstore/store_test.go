// RecSim - Recommendation Agent Simulation and Offline Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsim

package runstore

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/tomtom215/recsim/internal/evaluation"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(Config{InMemory: true})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testRun(id string, started time.Time) *evaluation.Run {
	return &evaluation.Run{
		ID:          id,
		Name:        "run-" + id,
		Status:      evaluation.StatusCompleted,
		StartedAt:   started,
		CompletedAt: started.Add(time.Second),
		Params:      evaluation.Params{Episodes: 250, KValues: []int{5, 10}, Seed: 42},
		Result: &evaluation.Result{
			Episodes:  250,
			KValues:   []int{5, 10},
			Precision: map[int]float64{5: 0.31, 10: 0.2},
			Recall:    map[int]float64{5: 0.88, 10: 0.99},
			AvgReward: 21.5,
		},
	}
}

func TestOpen_RequiresPath(t *testing.T) {
	if _, err := Open(Config{}); err == nil {
		t.Error("expected error without path or in_memory")
	}
}

func TestOpen_OnDisk(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := Open(Config{Path: dir})
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Save(ctx, testRun("a", time.Now())); err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := Open(Config{Path: dir})
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	if _, err := reopened.Get(ctx, "a"); err != nil {
		t.Errorf("run not persisted: %v", err)
	}
}

func TestStore_SaveAndGet(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if err := store.Save(ctx, testRun("r1", started)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Get(ctx, "r1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Name != "run-r1" || !got.StartedAt.Equal(started) {
		t.Errorf("Get() = %+v", got)
	}
	if got.Result == nil || got.Result.Recall[10] != 0.99 || got.Result.Precision[5] != 0.31 {
		t.Errorf("result did not round trip: %+v", got.Result)
	}
}

func TestStore_GetNotFound(t *testing.T) {
	store := setupTestStore(t)
	if _, err := store.Get(context.Background(), "missing"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("Get() error = %v, want ErrRunNotFound", err)
	}
}

func TestStore_SaveValidation(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, nil); err == nil {
		t.Error("expected error for nil run")
	}
	if err := store.Save(ctx, &evaluation.Run{}); err == nil {
		t.Error("expected error for run without ID")
	}
}

func TestStore_ListNewestFirst(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		if err := store.Save(ctx, testRun(fmt.Sprintf("r%d", i), base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name  string
		limit int
		want  []string
	}{
		{"all", 0, []string{"r4", "r3", "r2", "r1", "r0"}},
		{"limited", 2, []string{"r4", "r3"}},
		{"over limit", 10, []string{"r4", "r3", "r2", "r1", "r0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runs, err := store.List(ctx, tt.limit)
			if err != nil {
				t.Fatal(err)
			}
			if len(runs) != len(tt.want) {
				t.Fatalf("List() returned %d runs, want %d", len(runs), len(tt.want))
			}
			for i, run := range runs {
				if run.ID != tt.want[i] {
					t.Errorf("runs[%d] = %s, want %s", i, run.ID, tt.want[i])
				}
			}
		})
	}
}

func TestStore_SaveReplacesIndex(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	run := testRun("r1", base)
	if err := store.Save(ctx, run); err != nil {
		t.Fatal(err)
	}
	run.StartedAt = base.Add(time.Hour)
	run.Status = evaluation.StatusFailed
	if err := store.Save(ctx, run); err != nil {
		t.Fatal(err)
	}

	runs, err := store.List(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].Status != evaluation.StatusFailed {
		t.Errorf("List() after resave = %+v", runs)
	}
	if n, _ := store.Count(ctx); n != 1 {
		t.Errorf("Count() = %d, want 1", n)
	}
}

func TestStore_Delete(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, testRun("gone", time.Now())); err != nil {
		t.Fatal(err)
	}
	if err := store.Delete(ctx, "gone"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Get(ctx, "gone"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("Get() after delete error = %v", err)
	}
	runs, err := store.List(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Errorf("List() after delete = %d runs", len(runs))
	}
	if err := store.Delete(ctx, "gone"); err != nil {
		t.Errorf("deleting unknown run should succeed: %v", err)
	}
}

func TestStore_RunGC(t *testing.T) {
	t.Run("in memory is a no-op", func(t *testing.T) {
		store := setupTestStore(t)
		if err := store.RunGC(0.5); err != nil {
			t.Errorf("RunGC() error = %v", err)
		}
	})

	t.Run("on disk with nothing to rewrite", func(t *testing.T) {
		store, err := Open(Config{Path: t.TempDir()})
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer store.Close()

		if err := store.Save(context.Background(), testRun("a", time.Now())); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		if err := store.RunGC(0.5); err != nil {
			t.Errorf("RunGC() error = %v", err)
		}
	})
}
