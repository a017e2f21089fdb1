// RecSim - Recommendation Agent Simulation and Offline Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsim

// Package runstore keeps evaluation runs in BadgerDB.
//
// Runs are stored as JSON under "run:{id}". A second key
// "run_by_time:{inverted start time}:{id}" orders runs newest first for
// forward prefix iteration.
package runstore

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/recsim/internal/evaluation"
	"github.com/tomtom215/recsim/internal/logging"
)

const (
	runKeyPrefix  = "run:"
	timeKeyPrefix = "run_by_time:"

	// DefaultListLimit caps List when no limit is given.
	DefaultListLimit = 50
)

// ErrRunNotFound is returned by Get for unknown IDs.
var ErrRunNotFound = errors.New("run not found")

// Config selects where runs are stored.
type Config struct {
	// Path is the BadgerDB directory. Ignored when InMemory is set.
	Path string `koanf:"path"`

	// InMemory keeps runs in memory only.
	InMemory bool `koanf:"in_memory"`

	// SyncWrites fsyncs every write.
	SyncWrites bool `koanf:"sync_writes"`
}

// Store persists evaluation runs. Safe for concurrent use.
type Store struct {
	db *badger.DB
}

// Open opens or creates the run database.
func Open(cfg Config) (*Store, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("run store path is required unless in_memory is set")
	}

	opts := badger.DefaultOptions(cfg.Path)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.SyncWrites = cfg.SyncWrites
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	logging.Info().
		Str("path", cfg.Path).
		Bool("in_memory", cfg.InMemory).
		Msg("Run store opened")
	return &Store{db: db}, nil
}

// New wraps an already open database.
func New(db *badger.DB) *Store {
	return &Store{db: db}
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func runKey(id string) []byte {
	return []byte(runKeyPrefix + id)
}

func timeKey(run *evaluation.Run) []byte {
	inverted := math.MaxInt64 - run.StartedAt.UnixNano()
	return []byte(fmt.Sprintf("%s%019d:%s", timeKeyPrefix, inverted, run.ID))
}

// Save inserts or replaces run.
func (s *Store) Save(ctx context.Context, run *evaluation.Run) error {
	if run == nil || run.ID == "" {
		return errors.New("run with an ID is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("marshal run: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		// Drop the old time index entry if StartedAt changed.
		item, err := txn.Get(runKey(run.ID))
		switch {
		case err == nil:
			var prev evaluation.Run
			if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &prev) }); err != nil {
				return fmt.Errorf("read existing run: %w", err)
			}
			if !prev.StartedAt.Equal(run.StartedAt) {
				if err := txn.Delete(timeKey(&prev)); err != nil {
					return fmt.Errorf("delete time index: %w", err)
				}
			}
		case !errors.Is(err, badger.ErrKeyNotFound):
			return fmt.Errorf("get run: %w", err)
		}

		if err := txn.Set(runKey(run.ID), data); err != nil {
			return fmt.Errorf("set run: %w", err)
		}
		if err := txn.Set(timeKey(run), []byte(run.ID)); err != nil {
			return fmt.Errorf("set time index: %w", err)
		}
		return nil
	})
}

// Get returns the run with id.
func (s *Store) Get(ctx context.Context, id string) (*evaluation.Run, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var run evaluation.Run
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(runKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrRunNotFound
		}
		if err != nil {
			return fmt.Errorf("get run: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &run)
		})
	})
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// List returns up to limit runs, newest first. A non-positive limit uses
// DefaultListLimit.
func (s *Store) List(ctx context.Context, limit int) ([]*evaluation.Run, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	runs := make([]*evaluation.Run, 0, limit)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(timeKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix) && len(runs) < limit; it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var id string
			if err := it.Item().Value(func(val []byte) error {
				id = string(val)
				return nil
			}); err != nil {
				return err
			}

			item, err := txn.Get(runKey(id))
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return fmt.Errorf("get run %s: %w", id, err)
			}

			var run evaluation.Run
			if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &run) }); err != nil {
				return fmt.Errorf("decode run %s: %w", id, err)
			}
			runs = append(runs, &run)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// Delete removes a run. Deleting an unknown ID is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(runKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("get run: %w", err)
		}

		var run evaluation.Run
		if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &run) }); err != nil {
			return fmt.Errorf("decode run: %w", err)
		}
		if err := txn.Delete(timeKey(&run)); err != nil {
			return fmt.Errorf("delete time index: %w", err)
		}
		if err := txn.Delete(runKey(id)); err != nil {
			return fmt.Errorf("delete run: %w", err)
		}
		return nil
	})
}

// Count returns the number of stored runs.
func (s *Store) Count(_ context.Context) (int, error) {
	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(runKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}

// RunGC reclaims value log space until nothing is left to rewrite. It is a
// no-op for in-memory stores.
func (s *Store) RunGC(discardRatio float64) error {
	for {
		err := s.db.RunValueLogGC(discardRatio)
		switch {
		case errors.Is(err, badger.ErrNoRewrite), errors.Is(err, badger.ErrGCInMemoryMode):
			return nil
		case err != nil:
			return fmt.Errorf("run value log GC: %w", err)
		}
	}
}
