// RecSim - Recommendation Agent Simulation and Offline Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsim

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/recsim/internal/evaluation"
	"github.com/tomtom215/recsim/internal/events"
	"github.com/tomtom215/recsim/internal/interactions"
	"github.com/tomtom215/recsim/internal/policy"
	"github.com/tomtom215/recsim/internal/runstore"
	"github.com/tomtom215/recsim/internal/simulator"
)

// DefaultConfigPaths lists the config file locations searched in order.
// The first file found is used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/recsim/config.yaml",
	"/etc/recsim/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			Path:    "data/interactions.csv",
			Columns: interactions.DefaultColumns(),
		},
		Environment: simulator.DefaultConfig(),
		Policy: PolicyConfig{
			Scorer:             ScorerEmbedding,
			ExploreProbability: policy.DefaultExploreProbability,
			ModelDir:           "data/models",
			ModelName:          "recommender",
			ModelVersion:       0,
			Remote: RemoteConfig{
				Timeout: 5 * time.Second,
				Burst:   1,
			},
			CoVisitMinCount: 1,
			CacheCapacity:   0,
			CacheTTL:        10 * time.Minute,
		},
		Evaluation: evaluation.DefaultConfig(),
		Storage: runstore.Config{
			Path:       "data/runs",
			InMemory:   false,
			SyncWrites: false,
		},
		Events: events.DefaultConfig(),
		Server: ServerConfig{
			Addr:                     "0.0.0.0:8090",
			ReadTimeout:              30 * time.Second,
			WriteTimeout:             5 * time.Minute,
			IdleTimeout:              2 * time.Minute,
			ShutdownTimeout:          10 * time.Second,
			CORSOrigins:              []string{"*"},
			RateLimitReqs:            60,
			RateLimitWindow:          time.Minute,
			RateLimitDisabled:        false,
			MaxConcurrentEvaluations: 1,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load reads configuration from defaults, a YAML file and the environment,
// then validates it. A non-empty path must exist; an empty path falls back to
// CONFIG_PATH and DefaultConfigPaths.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: config file (optional)
	configPath := path
	if configPath == "" {
		configPath = findConfigFile()
	} else if _, err := os.Stat(configPath); err != nil {
		return nil, fmt.Errorf("config file %s: %w", configPath, err)
	}
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: environment variables
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// findConfigFile returns the first existing config file, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths are parsed from comma-separated env values.
var sliceConfigPaths = []string{
	"evaluation.k_values",
	"server.cors_origins",
}

// processSliceFields splits comma-separated strings for known slice fields.
// Values that are already slices (from YAML or defaults) are left alone.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) == 0 {
			continue
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps lower-cased environment variable names to koanf paths.
// Unlisted variables are ignored.
var envMappings = map[string]string{
	// Data
	"recsim_data_path":     "data.path",
	"recsim_user_column":   "data.columns.user",
	"recsim_item_column":   "data.columns.item",
	"recsim_rating_column": "data.columns.rating",
	"recsim_split_column":  "data.columns.split",

	// Environment
	"recsim_history_length":         "environment.history_length",
	"recsim_episode_length":         "environment.episode_length",
	"recsim_missing_rating_penalty": "environment.missing_rating_penalty",

	// Policy
	"recsim_scorer":              "policy.scorer",
	"recsim_explore_probability": "policy.explore_probability",
	"recsim_model_dir":           "policy.model_dir",
	"recsim_model_name":          "policy.model_name",
	"recsim_model_version":       "policy.model_version",
	"recsim_remote_url":          "policy.remote.url",
	"recsim_remote_timeout":      "policy.remote.timeout",
	"recsim_remote_rps":          "policy.remote.requests_per_second",
	"recsim_remote_burst":        "policy.remote.burst",
	"recsim_covisit_min_count":   "policy.covisit_min_count",
	"recsim_score_cache_size":    "policy.cache_capacity",
	"recsim_score_cache_ttl":     "policy.cache_ttl",

	// Evaluation
	"recsim_episodes":        "evaluation.episodes",
	"recsim_k_values":        "evaluation.k_values",
	"recsim_workers":         "evaluation.workers",
	"recsim_episode_timeout": "evaluation.episode_timeout",
	"recsim_seed":            "evaluation.seed",

	// Run storage
	"recsim_runstore_path":        "storage.path",
	"recsim_runstore_in_memory":   "storage.in_memory",
	"recsim_runstore_sync_writes": "storage.sync_writes",

	// Events
	"recsim_events_enabled": "events.enabled",
	"recsim_events_backend": "events.backend",
	"nats_url":              "events.nats.url",
	"nats_jetstream":        "events.nats.jetstream",
	"nats_auto_provision":   "events.nats.auto_provision",

	// Server
	"http_addr":                  "server.addr",
	"http_read_timeout":          "server.read_timeout",
	"http_write_timeout":         "server.write_timeout",
	"http_idle_timeout":          "server.idle_timeout",
	"shutdown_timeout":           "server.shutdown_timeout",
	"cors_origins":               "server.cors_origins",
	"rate_limit_requests":        "server.rate_limit_reqs",
	"rate_limit_window":          "server.rate_limit_window",
	"disable_rate_limit":         "server.rate_limit_disabled",
	"max_concurrent_evaluations": "server.max_concurrent_evaluations",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps an environment variable name to its koanf path.
//
// Examples:
//   - RECSIM_EPISODES -> evaluation.episodes
//   - RECSIM_K_VALUES -> evaluation.k_values
//   - NATS_URL -> events.nats.url
//   - LOG_LEVEL -> logging.level
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
