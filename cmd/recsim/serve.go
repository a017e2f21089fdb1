// RecSim - Recommendation Agent Simulation and Offline Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsim

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/recsim/internal/api"
	"github.com/tomtom215/recsim/internal/config"
	"github.com/tomtom215/recsim/internal/evaluation"
	"github.com/tomtom215/recsim/internal/events"
	"github.com/tomtom215/recsim/internal/logging"
	"github.com/tomtom215/recsim/internal/metrics"
	"github.com/tomtom215/recsim/internal/runstore"
	"github.com/tomtom215/recsim/internal/supervisor"
	"github.com/tomtom215/recsim/internal/supervisor/services"
)

// runStoreGCInterval is how often the run store's value log is compacted.
const runStoreGCInterval = 10 * time.Minute

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the evaluation HTTP API",
		Long: `Start the HTTP API under a supervisor tree:
- api-layer: HTTP server (evaluations, health, /metrics)
- data-layer: run store value log GC
- messaging-layer: evaluation event log (memory event backend)

The interaction table and scoring policy are loaded once at startup.`,
		RunE: runServe,
	}
	cmd.Flags().String("addr", "", "listen address (default from config)")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("addr") {
		cfg.Server.Addr, _ = cmd.Flags().GetString("addr")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logging.Info().Str("version", version).Msg("Starting recsim server")
	metrics.SetAppInfo(version)

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}

	runs, err := runstore.Open(cfg.Storage)
	if err != nil {
		return fmt.Errorf("open run store: %w", err)
	}
	defer closeLogged("run store", runs.Close)

	pub, err := events.NewPublisher(cfg.Events, logging.NewSlogLogger(logging.WithComponent("events")))
	if err != nil {
		return fmt.Errorf("create event publisher: %w", err)
	}
	defer closeLogged("event publisher", pub.Close)

	runner, err := evaluation.NewRunner(a.evaluator,
		evaluation.WithStore(runs),
		evaluation.WithPublisher(pub),
	)
	if err != nil {
		return err
	}

	server, err := newHTTPServer(cfg, runner, runs)
	if err != nil {
		return err
	}

	tree, err := supervisor.NewTree(
		logging.NewSlogLogger(logging.WithComponent("supervisor")),
		supervisor.TreeConfig{ShutdownTimeout: cfg.Server.ShutdownTimeout},
	)
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}
	if !cfg.Storage.InMemory {
		tree.AddDataService(services.NewRunStoreGCService(runs, runStoreGCInterval, 0.5))
	}
	if sub := pub.Subscriber(); sub != nil {
		tree.AddMessagingService(services.NewEventLogService(sub))
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	logging.Info().
		Str("addr", cfg.Server.Addr).
		Str("scorer", cfg.Policy.Scorer).
		Bool("events", pub.Enabled()).
		Msg("Supervisor tree starting")

	err = tree.Serve(ctx)

	if report, reportErr := tree.UnstoppedServiceReport(); reportErr == nil && len(report) > 0 {
		for _, svc := range report {
			logging.Warn().Str("service", svc.Name).Msg("Service did not stop in time")
		}
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor tree: %w", err)
	}
	logging.Info().Msg("Server stopped")
	return nil
}

func newHTTPServer(cfg *config.Config, runner api.EvaluationRunner, runs api.RunReader) (*http.Server, error) {
	handler, err := api.NewHandler(runner, runs, api.HandlerConfig{
		Version:                  version,
		MaxConcurrentEvaluations: int64(cfg.Server.MaxConcurrentEvaluations),
	})
	if err != nil {
		return nil, fmt.Errorf("create API handler: %w", err)
	}

	mwCfg := api.DefaultChiMiddlewareConfig()
	mwCfg.CORSAllowedOrigins = cfg.Server.CORSOrigins
	mwCfg.RateLimitRequests = cfg.Server.RateLimitReqs
	mwCfg.RateLimitWindow = cfg.Server.RateLimitWindow
	mwCfg.RateLimitDisabled = cfg.Server.RateLimitDisabled

	router := api.NewRouter(handler, api.NewChiMiddleware(mwCfg))
	return &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router.Setup(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}, nil
}
