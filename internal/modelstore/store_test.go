// RecSim - Recommendation Agent Simulation and Offline Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsim

package modelstore

import (
	"context"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tomtom215/recsim/internal/policy"
	"github.com/tomtom215/recsim/internal/simulator"
)

func testWeights(seed int64) *policy.ModelWeights {
	return policy.RandomWeights(rand.New(rand.NewSource(seed)), 5, 8, 4, 6, 5)
}

func TestNewStore(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) string
	}{
		{"creates directory if not exists", func(t *testing.T) string { return filepath.Join(t.TempDir(), "models") }},
		{"uses existing directory", func(t *testing.T) string { return t.TempDir() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := NewStore(tt.setup(t))
			if err != nil {
				t.Fatalf("NewStore() error = %v", err)
			}
			if store == nil {
				t.Fatal("NewStore() returned nil store")
			}
		})
	}
}

func TestStore_SaveAndLoad(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	w := testWeights(1)
	trained := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	meta, err := store.Save(ctx, "agent", w, trained)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if meta.Version != 1 || meta.Items != 8 || meta.Users != 5 || meta.EmbeddingDim != 4 || meta.HiddenSize != 6 {
		t.Errorf("metadata = %+v", meta)
	}
	if meta.Checksum == "" || meta.SizeBytes == 0 {
		t.Error("checksum and size should be set")
	}

	loaded, loadedMeta, err := store.Load(ctx, "agent", 0)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !loadedMeta.TrainedAt.Equal(trained) {
		t.Errorf("TrainedAt = %v, want %v", loadedMeta.TrainedAt, trained)
	}
	if loaded.ItemEmbeddings[3][2] != w.ItemEmbeddings[3][2] || loaded.HiddenWeights[5][7] != w.HiddenWeights[5][7] {
		t.Error("loaded weights differ from saved weights")
	}
}

func TestStore_Versions(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		meta, err := store.Save(ctx, "agent", testWeights(i), time.Now())
		if err != nil {
			t.Fatal(err)
		}
		if meta.Version != int(i) {
			t.Errorf("version = %d, want %d", meta.Version, i)
		}
	}

	if v, ok := store.LatestVersion("agent"); !ok || v != 3 {
		t.Errorf("LatestVersion() = %d, %v", v, ok)
	}
	if _, ok := store.LatestVersion("missing"); ok {
		t.Error("LatestVersion(missing) should report false")
	}

	first, _, err := store.Load(ctx, "agent", 1)
	if err != nil {
		t.Fatal(err)
	}
	if first.UserEmbeddings[0][0] != testWeights(1).UserEmbeddings[0][0] {
		t.Error("version 1 did not round trip")
	}
}

func TestStore_ReopenScansExisting(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		if _, err := store.Save(ctx, "agent", testWeights(int64(i)), time.Now()); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	reopened, err := NewStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	if v, ok := reopened.LatestVersion("agent"); !ok || v != 2 {
		t.Errorf("LatestVersion() after reopen = %d, %v", v, ok)
	}
	meta, err := reopened.Save(ctx, "agent", testWeights(9), time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if meta.Version != 3 {
		t.Errorf("next version = %d, want 3", meta.Version)
	}
}

func TestStore_LoadErrors(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if _, _, err := store.Load(ctx, "missing", 0); !errors.Is(err, ErrModelNotFound) {
		t.Errorf("Load(missing) error = %v, want ErrModelNotFound", err)
	}
	if _, _, err := store.Load(ctx, "missing", 4); !errors.Is(err, ErrModelNotFound) {
		t.Errorf("Load(missing v4) error = %v, want ErrModelNotFound", err)
	}
	if _, _, err := store.Load(ctx, "../escape", 0); !errors.Is(err, ErrInvalidName) {
		t.Errorf("Load(../escape) error = %v, want ErrInvalidName", err)
	}
}

func TestStore_SaveRejectsInvalid(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if _, err := store.Save(ctx, "agent", nil, time.Now()); err == nil {
		t.Error("expected error for nil weights")
	}
	bad := testWeights(1)
	bad.OutputBias = nil
	if _, err := store.Save(ctx, "agent", bad, time.Now()); err == nil {
		t.Error("expected error for invalid weights")
	}
	if _, err := store.Save(ctx, "a/b", testWeights(1), time.Now()); !errors.Is(err, ErrInvalidName) {
		t.Errorf("expected ErrInvalidName, got %v", err)
	}
}

func TestStore_ListDeletePrune(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		if _, err := store.Save(ctx, "agent", testWeights(int64(i)), time.Now()); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := store.Save(ctx, "baseline", testWeights(7), time.Now()); err != nil {
		t.Fatal(err)
	}

	models, err := store.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(models) != 2 || models[0].Name != "agent" || models[0].Version != 4 || models[1].Name != "baseline" {
		t.Errorf("List() = %+v", models)
	}

	removed, err := store.Prune(ctx, "agent", 2)
	if err != nil {
		t.Fatal(err)
	}
	if removed != 2 {
		t.Errorf("Prune removed %d, want 2", removed)
	}
	if _, _, err := store.Load(ctx, "agent", 1); !errors.Is(err, ErrModelNotFound) {
		t.Errorf("pruned version still loadable: %v", err)
	}
	if _, _, err := store.Load(ctx, "agent", 3); err != nil {
		t.Errorf("kept version not loadable: %v", err)
	}

	if err := store.Delete(ctx, "agent", 4); err != nil {
		t.Fatal(err)
	}
	if v, _ := store.LatestVersion("agent"); v != 3 {
		t.Errorf("LatestVersion after delete = %d, want 3", v)
	}
	if err := store.Delete(ctx, "agent", 4); !errors.Is(err, ErrModelNotFound) {
		t.Errorf("second delete error = %v, want ErrModelNotFound", err)
	}
}

func TestStore_ChecksumMismatch(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if _, err := store.Save(ctx, "agent", testWeights(1), time.Now()); err != nil {
		t.Fatal(err)
	}

	// Rewrite the file with the checksum of different weights.
	sf, err := store.readFile("agent", 1)
	if err != nil {
		t.Fatal(err)
	}
	sf.Metadata.Checksum = "deadbeef"
	if err := store.writeFile("agent", 1, *sf); err != nil {
		t.Fatal(err)
	}

	if _, _, err := store.Load(ctx, "agent", 1); !errors.Is(err, ErrChecksumMismatch) {
		t.Errorf("expected ErrChecksumMismatch, got %v", err)
	}
}

func TestStore_LoadScorer(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if _, err := store.Save(ctx, "agent", testWeights(3), time.Now()); err != nil {
		t.Fatal(err)
	}

	scorer, meta, err := store.LoadScorer(ctx, "agent", 0)
	if err != nil {
		t.Fatal(err)
	}
	if meta.Version != 1 {
		t.Errorf("Version = %d", meta.Version)
	}
	scores, err := scorer.Score(ctx, simulator.NewObservation(1, []int{2}, []float64{4}, 5))
	if err != nil {
		t.Fatal(err)
	}
	if len(scores) != 8 {
		t.Errorf("len(scores) = %d, want 8", len(scores))
	}
}

func TestParseFilename(t *testing.T) {
	tests := []struct {
		in      string
		name    string
		version int
		ok      bool
	}{
		{"agent_v1.gob.gz", "agent", 1, true},
		{"my_agent_v12.gob.gz", "my_agent", 12, true},
		{"agent_v0.gob.gz", "", 0, false},
		{"agent.gob.gz", "", 0, false},
		{"agent_vx.gob.gz", "", 0, false},
		{"agent_v1.gob", "", 0, false},
		{"_v1.gob.gz", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			name, version, ok := parseFilename(tt.in)
			if name != tt.name || version != tt.version || ok != tt.ok {
				t.Errorf("parseFilename(%q) = %q, %d, %v", tt.in, name, version, ok)
			}
		})
	}
}
