// RecSim - Recommendation Agent Simulation and Offline Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsim

// Package events announces finished evaluation runs.
//
// Each run produces one EvaluationCompleted JSON message on
// TopicEvaluationCompleted. The memory backend uses a watermill GoChannel and
// exposes its subscriber for in-process consumers; the nats backend
// publishes through watermill-nats. Both go through a circuit breaker.
package events
