// RecSim - Recommendation Agent Simulation and Offline Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsim

// Package evaluation measures a recommendation policy offline.
//
// The Evaluator plays repeated episodes of a simulator.Environment against
// a policy.ActionSelector and reports Precision@K, Recall@K and the average
// total reward per episode. Episodes run concurrently on an errgroup; each
// gets its own environment and a random source seeded with Seed+index, so a
// given seed produces the same numbers for any worker count.
//
// Recall@K divides by min(|relevant|, K), not |relevant|.
//
// The Runner wraps an Evaluator with Prometheus metrics, optional persistence
// (RunSaver) and optional event publication (RunPublisher). It is shared by
// the CLI and the HTTP API.
package evaluation
