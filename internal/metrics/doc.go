// RecSim - Recommendation Agent Simulation and Offline Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsim

/*
Package metrics provides Prometheus metrics for the simulator, scorers,
evaluation runs and the HTTP API.

Collectors are registered on the default registry through promauto and are
exposed by the API server at /metrics.

# Available Metrics

Episode Metrics:
  - recsim_episodes_total{status}
  - recsim_episode_steps_total
  - recsim_episode_reward (histogram)
  - recsim_episode_duration_seconds (histogram)
  - recsim_action_selections_total{mode}: explore vs exploit decisions

Scorer Metrics:
  - recsim_scorer_duration_seconds{scorer}
  - recsim_scorer_errors_total{scorer}
  - recsim_score_cache_hits_total, recsim_score_cache_misses_total
  - circuit_breaker_state{name}, circuit_breaker_requests_total{name,result}

Evaluation Metrics:
  - recsim_evaluation_runs_total{status}
  - recsim_evaluation_precision{k}, recsim_evaluation_recall{k}
  - recsim_evaluation_average_reward

Use the Record* helpers rather than touching collectors directly.
*/
package metrics
