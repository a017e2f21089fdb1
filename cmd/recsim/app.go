// RecSim - Recommendation Agent Simulation and Offline Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsim

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomtom215/recsim/internal/config"
	"github.com/tomtom215/recsim/internal/evaluation"
	"github.com/tomtom215/recsim/internal/interactions"
	"github.com/tomtom215/recsim/internal/logging"
	"github.com/tomtom215/recsim/internal/modelstore"
	"github.com/tomtom215/recsim/internal/policy"
)

// app holds the components shared by evaluate and serve.
type app struct {
	cfg       *config.Config
	store     *interactions.Store
	scorer    policy.Scorer
	evaluator *evaluation.Evaluator
}

// loadConfig reads configuration and initializes logging from it.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	logging.Init(cfg.LoggingOptions())
	return cfg, nil
}

// loadStore reads the interaction table named by cfg and builds its store.
func loadStore(ctx context.Context, cfg *config.Config) (*interactions.Table, *interactions.Store, error) {
	table, err := interactions.LoadTable(ctx, cfg.Data.Path, cfg.Data.Columns)
	if err != nil {
		return nil, nil, fmt.Errorf("load interactions: %w", err)
	}
	store, err := table.Store()
	if err != nil {
		return nil, nil, fmt.Errorf("build interaction store: %w", err)
	}

	stats := store.Stats()
	logging.Info().
		Str("path", cfg.Data.Path).
		Int("users", stats.Users).
		Int("test_users", stats.TestUsers).
		Int("items", stats.Items).
		Int("test_ratings", stats.TestRatings).
		Msg("Interaction table loaded")
	return table, store, nil
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	table, store, err := loadStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	scorer, err := buildScorer(ctx, cfg, table, store)
	if err != nil {
		return nil, err
	}

	selector, err := policy.NewActionSelector(scorer, cfg.Policy.ExploreProbability, nil)
	if err != nil {
		return nil, fmt.Errorf("create action selector: %w", err)
	}

	ev, err := evaluation.NewEvaluator(store, cfg.Environment, selector, cfg.Evaluation)
	if err != nil {
		return nil, fmt.Errorf("create evaluator: %w", err)
	}

	return &app{cfg: cfg, store: store, scorer: scorer, evaluator: ev}, nil
}

// buildScorer creates the configured scorer, optionally cached, and
// instruments it.
func buildScorer(ctx context.Context, cfg *config.Config, table *interactions.Table, store *interactions.Store) (policy.Scorer, error) {
	var scorer policy.Scorer

	switch cfg.Policy.Scorer {
	case config.ScorerPopularity:
		scorer = policy.NewPopularityScorer(store.PopularityRanking(), store.NumItems())

	case config.ScorerCoVisit:
		scorer = policy.NewCoVisitScorer(table.Train, store.NumItems(), cfg.Policy.CoVisitMinCount)

	case config.ScorerRemote:
		remote, err := policy.NewRemoteScorer(cfg.RemoteScorerConfig(store.NumItems()))
		if err != nil {
			return nil, fmt.Errorf("create remote scorer: %w", err)
		}
		scorer = remote

	default:
		models, err := modelstore.NewStore(cfg.Policy.ModelDir)
		if err != nil {
			return nil, fmt.Errorf("open model store: %w", err)
		}
		embedding, meta, err := models.LoadScorer(ctx, cfg.Policy.ModelName, cfg.Policy.ModelVersion)
		if err != nil {
			return nil, fmt.Errorf("load model %s: %w", cfg.Policy.ModelName, err)
		}
		if err := checkModelShape(meta, store, cfg.Environment.HistoryLength); err != nil {
			return nil, err
		}
		logging.Info().
			Str("model", meta.Name).
			Int("version", meta.Version).
			Int("embedding_dim", meta.EmbeddingDim).
			Msg("Embedding model loaded")
		scorer = embedding
	}

	if cfg.Policy.CacheCapacity > 0 {
		scorer = policy.NewCachedScorer(scorer, cfg.Policy.CacheCapacity, cfg.Policy.CacheTTL)
	}
	return policy.Instrument(scorer), nil
}

// checkModelShape rejects models trained against a different catalog or
// observation width.
func checkModelShape(meta *modelstore.Metadata, store *interactions.Store, historyLength int) error {
	if meta.Items != store.NumItems() {
		return fmt.Errorf("model %s v%d scores %d items, interaction table has %d",
			meta.Name, meta.Version, meta.Items, store.NumItems())
	}
	if meta.Users < store.NumUsers() {
		return fmt.Errorf("model %s v%d knows %d users, interaction table needs %d",
			meta.Name, meta.Version, meta.Users, store.NumUsers())
	}
	if meta.HistoryLength != historyLength {
		return fmt.Errorf("model %s v%d expects history length %d, environment uses %d",
			meta.Name, meta.Version, meta.HistoryLength, historyLength)
	}
	return nil
}
