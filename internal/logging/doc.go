// RecSim - Recommendation Agent Simulation and Offline Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsim

// Package logging provides the process-wide zerolog logger.
//
// # Quick Start
//
//	logging.Init(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//
//	logging.Info().Int("episodes", 250).Msg("Evaluation started")
//	logging.Ctx(ctx).Warn().Err(err).Msg("Episode failed")
//
// Always terminate log chains with .Msg() or .Send().
//
// # Context
//
// ContextWithRunID and ContextWithRequestID attach identifiers that Ctx adds
// as run_id and request_id fields.
//
// # slog
//
// NewSlogLogger adapts a zerolog logger to *slog.Logger for the supervisor
// tree (sutureslog) and the watermill event publisher.
package logging
