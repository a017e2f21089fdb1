// RecSim - Recommendation Agent Simulation and Offline Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsim

package main

import (
	"fmt"
	"math/rand"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/recsim/internal/config"
	"github.com/tomtom215/recsim/internal/logging"
	"github.com/tomtom215/recsim/internal/modelstore"
	"github.com/tomtom215/recsim/internal/policy"
)

func modelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "model",
		Short: "Manage stored embedding models",
	}
	cmd.AddCommand(modelInitCmd(), modelListCmd(), modelPruneCmd())
	return cmd
}

func openModelStore(cmd *cobra.Command) (*config.Config, *modelstore.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	models, err := modelstore.NewStore(cfg.Policy.ModelDir)
	if err != nil {
		return nil, nil, fmt.Errorf("open model store: %w", err)
	}
	return cfg, models, nil
}

func modelInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Store randomly initialized weights sized to the interaction table",
		Long: `Create a new model version with small random weights whose user and item
counts match the configured interaction table. Useful as an untrained
baseline for the embedding scorer.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, models, err := openModelStore(cmd)
			if err != nil {
				return err
			}
			_, store, err := loadStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			name, _ := cmd.Flags().GetString("name")
			if name == "" {
				name = cfg.Policy.ModelName
			}
			dim, _ := cmd.Flags().GetInt("dim")
			hidden, _ := cmd.Flags().GetInt("hidden")
			seed, _ := cmd.Flags().GetInt64("seed")
			if dim < 1 || hidden < 1 {
				return fmt.Errorf("dim and hidden must be positive, got %d and %d", dim, hidden)
			}

			w := policy.RandomWeights(rand.New(rand.NewSource(seed)), //nolint:gosec // weight init, not crypto
				store.NumUsers(), store.NumItems(), dim, hidden, cfg.Environment.HistoryLength)
			meta, err := models.Save(cmd.Context(), name, w, time.Now().UTC())
			if err != nil {
				return fmt.Errorf("save model: %w", err)
			}

			logging.Info().
				Str("model", meta.Name).
				Int("version", meta.Version).
				Int64("size_bytes", meta.SizeBytes).
				Msg("Model saved")
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "saved %s v%d (%d users, %d items)\n",
				meta.Name, meta.Version, meta.Users, meta.Items)
			return err
		},
	}
	cmd.Flags().String("name", "", "model name (default from config)")
	cmd.Flags().Int("dim", 32, "embedding dimension")
	cmd.Flags().Int("hidden", 64, "hidden layer size")
	cmd.Flags().Int64("seed", 42, "random seed for the weights")
	return cmd
}

func modelListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the latest version of every stored model",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, models, err := openModelStore(cmd)
			if err != nil {
				return err
			}
			metas, err := models.List(cmd.Context())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tVERSION\tUSERS\tITEMS\tDIM\tHISTORY\tSAVED")
			for _, m := range metas {
				fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\t%s\n",
					m.Name, m.Version, m.Users, m.Items, m.EmbeddingDim, m.HistoryLength,
					m.SavedAt.Format(time.RFC3339))
			}
			return tw.Flush()
		},
	}
}

func modelPruneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete all but the newest versions of a model",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, models, err := openModelStore(cmd)
			if err != nil {
				return err
			}
			name, _ := cmd.Flags().GetString("name")
			if name == "" {
				name = cfg.Policy.ModelName
			}
			keep, _ := cmd.Flags().GetInt("keep")

			removed, err := models.Prune(cmd.Context(), name, keep)
			if err != nil {
				return fmt.Errorf("prune %s: %w", name, err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "removed %d old versions of %s\n", removed, name)
			return err
		},
	}
	cmd.Flags().String("name", "", "model name (default from config)")
	cmd.Flags().Int("keep", 3, "versions to keep")
	return cmd
}
