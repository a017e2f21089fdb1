// RecSim - Recommendation Agent Simulation and Offline Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsim

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomtom215/recsim/internal/config"
	"github.com/tomtom215/recsim/internal/evaluation"
	"github.com/tomtom215/recsim/internal/events"
	"github.com/tomtom215/recsim/internal/logging"
	"github.com/tomtom215/recsim/internal/runstore"
)

func evaluateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Run evaluation episodes and print the report",
		Long: `Load the interaction table, build the configured scoring policy and run
the requested number of simulated episodes over randomly drawn test users.

Output (text):
  Precision@5: 0.3120
  Recall@5: 0.8840
  Precision@10: 0.2016
  Recall@10: 0.9911
  Average Total Reward: 21.4

Flags override the configuration for this run only.`,
		RunE: runEvaluate,
	}

	cmd.Flags().Int("episodes", 0, "number of episodes (default from config)")
	cmd.Flags().Int64("seed", 0, "base random seed (default from config)")
	cmd.Flags().Int("workers", 0, "concurrent episode workers (default from config)")
	cmd.Flags().IntSlice("k", nil, "cutoffs for Precision@K and Recall@K (default from config)")
	cmd.Flags().String("scorer", "", "scorer: embedding, popularity, covisit or remote (default from config)")
	cmd.Flags().String("name", "", "run name")
	cmd.Flags().Bool("save", false, "persist the run in the run store")
	cmd.Flags().Bool("publish", false, "publish an evaluation event")
	cmd.Flags().String("format", "text", "output format (text, json)")

	return cmd
}

func runEvaluate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyEvaluateFlags(cmd, cfg); err != nil {
		return err
	}
	format, _ := cmd.Flags().GetString("format")
	if format != "text" && format != "json" {
		return fmt.Errorf("unknown output format %q", format)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}

	var opts []evaluation.RunnerOption
	if save, _ := cmd.Flags().GetBool("save"); save {
		runs, err := runstore.Open(cfg.Storage)
		if err != nil {
			return fmt.Errorf("open run store: %w", err)
		}
		defer closeLogged("run store", runs.Close)
		opts = append(opts, evaluation.WithStore(runs))
	}
	if publish, _ := cmd.Flags().GetBool("publish"); publish {
		pub, err := events.NewPublisher(cfg.Events, logging.NewSlogLogger(logging.WithComponent("events")))
		if err != nil {
			return fmt.Errorf("create event publisher: %w", err)
		}
		defer closeLogged("event publisher", pub.Close)
		opts = append(opts, evaluation.WithPublisher(pub))
	}

	runner, err := evaluation.NewRunner(a.evaluator, opts...)
	if err != nil {
		return err
	}

	name, _ := cmd.Flags().GetString("name")
	run, err := runner.Run(ctx, evaluation.Request{Name: name})
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if format == "json" {
		data, err := json.MarshalIndent(run, "", "  ")
		if err != nil {
			return fmt.Errorf("encode run: %w", err)
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	}
	return evaluation.WriteReport(out, run.Result)
}

// applyEvaluateFlags copies explicitly set flags over the loaded config and
// re-validates it.
func applyEvaluateFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("episodes") {
		cfg.Evaluation.Episodes, _ = flags.GetInt("episodes")
	}
	if flags.Changed("seed") {
		cfg.Evaluation.Seed, _ = flags.GetInt64("seed")
	}
	if flags.Changed("workers") {
		cfg.Evaluation.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("k") {
		cfg.Evaluation.KValues, _ = flags.GetIntSlice("k")
	}
	if flags.Changed("scorer") {
		cfg.Policy.Scorer, _ = flags.GetString("scorer")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	return nil
}

func closeLogged(what string, closeFn func() error) {
	if err := closeFn(); err != nil {
		logging.Error().Err(err).Str("component", what).Msg("Close failed")
	}
}
