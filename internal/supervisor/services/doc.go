// RecSim - Recommendation Agent Simulation and Offline Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsim

/*
Package services adapts recsim components to suture.Service.

  - HTTPServerService runs the evaluation API (api-layer).
  - RunStoreGCService reclaims BadgerDB value log space (data-layer).
  - EventLogService logs EvaluationCompleted events from the in-process bus
    (messaging-layer).

Every service blocks in Serve until its context is canceled and implements
fmt.Stringer so suture can name it in log events.
*/
package services
