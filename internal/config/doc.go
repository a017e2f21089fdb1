// RecSim - Recommendation Agent Simulation and Offline Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsim

/*
Package config loads RecSim configuration with koanf.

Sources are layered, later ones winning:

 1. Built-in defaults (the reference evaluation: N=5, M=10, p=0.75,
    250 episodes, K in {5, 10}, seed 42)
 2. An optional YAML file: the path given to Load, else CONFIG_PATH,
    else config.yaml or /etc/recsim/config.yaml
 3. Environment variables

# Environment Variables

Only the variables listed below are read; everything else is ignored.

Data:
  - RECSIM_DATA_PATH: interaction file (csv, parquet or json)
  - RECSIM_USER_COLUMN, RECSIM_ITEM_COLUMN, RECSIM_RATING_COLUMN, RECSIM_SPLIT_COLUMN

Environment:
  - RECSIM_HISTORY_LENGTH, RECSIM_EPISODE_LENGTH, RECSIM_MISSING_RATING_PENALTY

Policy:
  - RECSIM_SCORER: embedding, popularity, covisit or remote
  - RECSIM_EXPLORE_PROBABILITY
  - RECSIM_MODEL_DIR, RECSIM_MODEL_NAME, RECSIM_MODEL_VERSION
  - RECSIM_REMOTE_URL, RECSIM_REMOTE_TIMEOUT, RECSIM_REMOTE_RPS, RECSIM_REMOTE_BURST
  - RECSIM_COVISIT_MIN_COUNT
  - RECSIM_SCORE_CACHE_SIZE, RECSIM_SCORE_CACHE_TTL

Evaluation:
  - RECSIM_EPISODES, RECSIM_K_VALUES (comma-separated), RECSIM_WORKERS,
    RECSIM_EPISODE_TIMEOUT, RECSIM_SEED

Storage and events:
  - RECSIM_RUNSTORE_PATH, RECSIM_RUNSTORE_IN_MEMORY, RECSIM_RUNSTORE_SYNC_WRITES
  - RECSIM_EVENTS_ENABLED, RECSIM_EVENTS_BACKEND, NATS_URL, NATS_JETSTREAM

Server and logging:
  - HTTP_ADDR, HTTP_READ_TIMEOUT, HTTP_WRITE_TIMEOUT, SHUTDOWN_TIMEOUT
  - CORS_ORIGINS (comma-separated), RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT,
    MAX_CONCURRENT_EVALUATIONS
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER

# Usage

	cfg, err := config.Load(flagConfigPath)
	if err != nil {
	    return err
	}
	logging.Init(cfg.LoggingOptions())
*/
package config
