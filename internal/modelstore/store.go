// RecSim - Recommendation Agent Simulation and Offline Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsim

// Package modelstore persists trained agent weights on disk.
//
// Each save produces a new version file named {name}_v{version}.gob.gz
// holding gob-encoded metadata and the gzip-compressed gob of the weights.
// A SHA-256 checksum of the uncompressed weights is verified on load.
package modelstore

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/tomtom215/recsim/internal/policy"
)

const fileSuffix = ".gob.gz"

var (
	// ErrModelNotFound is returned when no file exists for a name and version.
	ErrModelNotFound = errors.New("model not found")

	// ErrChecksumMismatch is returned when stored weights fail verification.
	ErrChecksumMismatch = errors.New("model checksum mismatch")

	// ErrInvalidName is returned for names that cannot form a safe filename.
	ErrInvalidName = errors.New("invalid model name")
)

// Metadata describes one stored model version.
type Metadata struct {
	Name          string    `json:"name"`
	Version       int       `json:"version"`
	TrainedAt     time.Time `json:"trained_at"`
	SavedAt       time.Time `json:"saved_at"`
	Users         int       `json:"users"`
	Items         int       `json:"items"`
	EmbeddingDim  int       `json:"embedding_dim"`
	HiddenSize    int       `json:"hidden_size"`
	HistoryLength int       `json:"history_length"`
	Checksum      string    `json:"checksum"`
	SizeBytes     int64     `json:"size_bytes"`
}

type storedFile struct {
	Metadata       Metadata
	CompressedData []byte
}

// Store manages versioned model files in one directory. Safe for
// concurrent use within a process.
type Store struct {
	baseDir string

	mu       sync.RWMutex
	versions map[string][]int // ascending
}

// NewStore opens or creates a store rooted at baseDir.
func NewStore(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o750); err != nil {
		return nil, fmt.Errorf("create model directory: %w", err)
	}

	s := &Store{baseDir: baseDir, versions: make(map[string][]int)}
	if err := s.scan(); err != nil {
		return nil, fmt.Errorf("scan existing models: %w", err)
	}
	return s, nil
}

func (s *Store) scan() error {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name, version, ok := parseFilename(entry.Name())
		if !ok {
			continue
		}
		s.versions[name] = append(s.versions[name], version)
	}
	for name := range s.versions {
		sort.Ints(s.versions[name])
	}
	return nil
}

// parseFilename splits "embedding_v3.gob.gz" into ("embedding", 3).
func parseFilename(filename string) (string, int, bool) {
	base, ok := strings.CutSuffix(filename, fileSuffix)
	if !ok {
		return "", 0, false
	}
	idx := strings.LastIndex(base, "_v")
	if idx <= 0 {
		return "", 0, false
	}
	version, err := strconv.Atoi(base[idx+2:])
	if err != nil || version <= 0 {
		return "", 0, false
	}
	return base[:idx], version, true
}

func validName(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// Save writes w as the next version of name and returns its metadata.
func (s *Store) Save(ctx context.Context, name string, w *policy.ModelWeights, trainedAt time.Time) (Metadata, error) {
	if err := validName(name); err != nil {
		return Metadata{}, err
	}
	if w == nil {
		return Metadata{}, errors.New("model weights are required")
	}
	if err := w.Validate(); err != nil {
		return Metadata{}, fmt.Errorf("refusing to save invalid weights: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return Metadata{}, err
	}

	var raw bytes.Buffer
	if err := gob.NewEncoder(&raw).Encode(w); err != nil {
		return Metadata{}, fmt.Errorf("encode model: %w", err)
	}
	sum := sha256.Sum256(raw.Bytes())

	var compressed bytes.Buffer
	gzw := gzip.NewWriter(&compressed)
	if _, err := gzw.Write(raw.Bytes()); err != nil {
		return Metadata{}, fmt.Errorf("compress model: %w", err)
	}
	if err := gzw.Close(); err != nil {
		return Metadata{}, fmt.Errorf("finalize compression: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	version := 1
	if vs := s.versions[name]; len(vs) > 0 {
		version = vs[len(vs)-1] + 1
	}

	meta := Metadata{
		Name:          name,
		Version:       version,
		TrainedAt:     trainedAt,
		SavedAt:       time.Now().UTC(),
		Users:         len(w.UserEmbeddings),
		Items:         len(w.ItemEmbeddings),
		EmbeddingDim:  w.EmbeddingDim(),
		HiddenSize:    len(w.HiddenWeights),
		HistoryLength: w.HistoryLength,
		Checksum:      hex.EncodeToString(sum[:]),
		SizeBytes:     int64(compressed.Len()),
	}

	if err := s.writeFile(name, version, storedFile{Metadata: meta, CompressedData: compressed.Bytes()}); err != nil {
		return Metadata{}, err
	}
	s.versions[name] = append(s.versions[name], version)
	return meta, nil
}

// writeFile writes through a temp file and renames it into place.
func (s *Store) writeFile(name string, version int, sf storedFile) error {
	tmp, err := os.CreateTemp(s.baseDir, ".tmp-"+name+"-*")
	if err != nil {
		return fmt.Errorf("create model file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }() //nolint:errcheck // no-op after a successful rename

	if err := gob.NewEncoder(tmp).Encode(sf); err != nil {
		_ = tmp.Close() //nolint:errcheck // already failing
		return fmt.Errorf("write model file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close model file: %w", err)
	}
	if err := os.Rename(tmpName, s.modelPath(name, version)); err != nil {
		return fmt.Errorf("commit model file: %w", err)
	}
	return nil
}

// Load reads version of name. Version 0 loads the latest.
func (s *Store) Load(ctx context.Context, name string, version int) (*policy.ModelWeights, *Metadata, error) {
	if err := validName(name); err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if version == 0 {
		vs := s.versions[name]
		if len(vs) == 0 {
			return nil, nil, fmt.Errorf("%w: %s", ErrModelNotFound, name)
		}
		version = vs[len(vs)-1]
	}

	sf, err := s.readFile(name, version)
	if err != nil {
		return nil, nil, err
	}

	gzr, err := gzip.NewReader(bytes.NewReader(sf.CompressedData))
	if err != nil {
		return nil, nil, fmt.Errorf("decompress model: %w", err)
	}
	defer func() { _ = gzr.Close() }() //nolint:errcheck // read-only

	raw, err := io.ReadAll(gzr)
	if err != nil {
		return nil, nil, fmt.Errorf("read decompressed data: %w", err)
	}

	sum := sha256.Sum256(raw)
	if got := hex.EncodeToString(sum[:]); got != sf.Metadata.Checksum {
		return nil, nil, fmt.Errorf("%w: expected %s, got %s", ErrChecksumMismatch, sf.Metadata.Checksum, got)
	}

	var w policy.ModelWeights
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&w); err != nil {
		return nil, nil, fmt.Errorf("decode model: %w", err)
	}
	return &w, &sf.Metadata, nil
}

// LoadScorer loads a model and wraps it in an EmbeddingScorer.
func (s *Store) LoadScorer(ctx context.Context, name string, version int) (*policy.EmbeddingScorer, *Metadata, error) {
	w, meta, err := s.Load(ctx, name, version)
	if err != nil {
		return nil, nil, err
	}
	scorer, err := policy.NewEmbeddingScorer(w)
	if err != nil {
		return nil, nil, fmt.Errorf("model %s v%d: %w", name, meta.Version, err)
	}
	return scorer, meta, nil
}

func (s *Store) readFile(name string, version int) (*storedFile, error) {
	f, err := os.Open(s.modelPath(name, version)) //nolint:gosec // path built from validated name
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s v%d", ErrModelNotFound, name, version)
		}
		return nil, fmt.Errorf("open model file: %w", err)
	}
	defer func() { _ = f.Close() }() //nolint:errcheck // read-only

	var sf storedFile
	if err := gob.NewDecoder(f).Decode(&sf); err != nil {
		return nil, fmt.Errorf("read model file: %w", err)
	}
	return &sf, nil
}

// LatestVersion returns the newest version of name.
func (s *Store) LatestVersion(name string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	vs := s.versions[name]
	if len(vs) == 0 {
		return 0, false
	}
	return vs[len(vs)-1], true
}

// List returns the latest version metadata of every model, by name.
func (s *Store) List(ctx context.Context) ([]Metadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.versions))
	for name := range s.versions {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]Metadata, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vs := s.versions[name]
		sf, err := s.readFile(name, vs[len(vs)-1])
		if err != nil {
			continue
		}
		out = append(out, sf.Metadata)
	}
	return out, nil
}

// Delete removes one version.
func (s *Store) Delete(_ context.Context, name string, version int) error {
	if err := validName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.modelPath(name, version)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s v%d", ErrModelNotFound, name, version)
		}
		return fmt.Errorf("delete model: %w", err)
	}
	s.forget(name, version)
	return nil
}

// Prune keeps the newest keep versions of name and deletes the rest.
// It returns the number of files removed.
func (s *Store) Prune(_ context.Context, name string, keep int) (int, error) {
	if keep < 1 {
		keep = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	vs := s.versions[name]
	if len(vs) <= keep {
		return 0, nil
	}

	stale := append([]int(nil), vs[:len(vs)-keep]...)
	removed := 0
	var errs []error
	for _, v := range stale {
		if err := os.Remove(s.modelPath(name, v)); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
			continue
		}
		s.forget(name, v)
		removed++
	}
	return removed, errors.Join(errs...)
}

// forget must be called with mu held.
func (s *Store) forget(name string, version int) {
	vs := s.versions[name]
	for i, v := range vs {
		if v == version {
			vs = append(vs[:i], vs[i+1:]...)
			break
		}
	}
	if len(vs) == 0 {
		delete(s.versions, name)
		return
	}
	s.versions[name] = vs
}

func (s *Store) modelPath(name string, version int) string {
	return filepath.Join(s.baseDir, fmt.Sprintf("%s_v%d%s", name, version, fileSuffix))
}
