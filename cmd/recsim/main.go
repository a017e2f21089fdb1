// RecSim - Recommendation Agent Simulation and Offline Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsim

// Command recsim evaluates a recommendation policy offline against a
// simulated user environment built from an interaction table.
//
// # Commands
//
//	recsim evaluate   run episodes and print Precision/Recall@K and reward
//	recsim serve      start the evaluation HTTP API under a supervisor tree
//	recsim model      manage stored embedding models (init, list, prune)
//	recsim version    print build information
//
// # Configuration
//
// Settings are loaded with koanf from defaults, an optional YAML file
// (--config, CONFIG_PATH or ./config.yaml) and RECSIM_* environment
// variables, in that order.
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the running evaluation or stop the server. An
// interrupted evaluation exits non-zero without printing a partial report.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tomtom215/recsim/internal/logging"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logging.Error().Err(err).Msg("recsim failed")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "recsim",
		Short: "RecSim - offline evaluation of recommendation agents",
		Long: `RecSim replays held-out ratings as a simulated user environment and
measures how well a scoring policy recommends items: Precision@K,
Recall@K and average total reward per episode.

Run 'recsim evaluate' for a one-shot report.
Run 'recsim serve' to expose evaluations over HTTP.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringP("config", "c", "", "config file path")

	rootCmd.AddCommand(
		evaluateCmd(),
		serveCmd(),
		modelCmd(),
		versionCmd(),
	)
	return rootCmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "recsim %s\n", version)
			fmt.Fprintf(out, "  commit: %s\n", commit)
			fmt.Fprintf(out, "  built:  %s\n", date)
		},
	}
}
