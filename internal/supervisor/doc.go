// RecSim - Recommendation Agent Simulation and Offline Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsim

/*
Package supervisor runs the long-lived parts of "recsim serve" under a
suture v4 supervisor tree.

	recsim
	├── data-layer
	│   └── RunStoreGCService
	├── messaging-layer
	│   └── EventLogService (memory event backend only)
	└── api-layer
	    └── HTTPServerService

Each layer restarts its own services with suture's backoff, so a failing
event consumer does not restart the HTTP server. Supervisor events are
logged through sutureslog into the process slog logger, which is bridged to
zerolog by the logging package.

Usage:

	tree, err := supervisor.NewTree(logging.NewSlogLogger(logging.WithComponent("supervisor")),
	    supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddDataService(services.NewRunStoreGCService(store, 10*time.Minute, 0.5))
	tree.AddAPIService(services.NewHTTPServerService(srv, cfg.Server.ShutdownTimeout))
	return tree.Serve(ctx)
*/
package supervisor
