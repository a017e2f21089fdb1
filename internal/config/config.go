// RecSim - Recommendation Agent Simulation and Offline Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsim

package config

import (
	"time"

	"github.com/tomtom215/recsim/internal/evaluation"
	"github.com/tomtom215/recsim/internal/events"
	"github.com/tomtom215/recsim/internal/interactions"
	"github.com/tomtom215/recsim/internal/logging"
	"github.com/tomtom215/recsim/internal/policy"
	"github.com/tomtom215/recsim/internal/runstore"
	"github.com/tomtom215/recsim/internal/simulator"
)

// Scorer types.
const (
	ScorerEmbedding  = "embedding"
	ScorerPopularity = "popularity"
	ScorerRemote     = "remote"
	ScorerCoVisit    = "covisit"
)

// Config holds all application configuration.
//
// Loading order (later wins):
//  1. Defaults from defaultConfig
//  2. Optional YAML file (CONFIG_PATH or DefaultConfigPaths)
//  3. Environment variables listed in envMappings
type Config struct {
	Data        DataConfig        `koanf:"data"`
	Environment simulator.Config  `koanf:"environment"`
	Policy      PolicyConfig      `koanf:"policy"`
	Evaluation  evaluation.Config `koanf:"evaluation"`
	Storage     runstore.Config   `koanf:"storage"`
	Events      events.Config     `koanf:"events"`
	Server      ServerConfig      `koanf:"server"`
	Logging     LoggingConfig     `koanf:"logging"`
}

// DataConfig locates the interaction table.
type DataConfig struct {
	// Path is a CSV, Parquet or JSON file.
	Path    string               `koanf:"path"`
	Columns interactions.Columns `koanf:"columns"`
}

// PolicyConfig selects and tunes the scoring policy.
type PolicyConfig struct {
	// Scorer is embedding, popularity, covisit or remote.
	Scorer             string  `koanf:"scorer"`
	ExploreProbability float64 `koanf:"explore_probability"`

	// Embedding model location. ModelVersion 0 loads the latest version.
	ModelDir     string `koanf:"model_dir"`
	ModelName    string `koanf:"model_name"`
	ModelVersion int    `koanf:"model_version"`

	Remote RemoteConfig `koanf:"remote"`

	// CoVisitMinCount drops item pairs rated together by fewer users.
	CoVisitMinCount int `koanf:"covisit_min_count"`

	// Score cache. CacheCapacity 0 disables caching.
	CacheCapacity int           `koanf:"cache_capacity"`
	CacheTTL      time.Duration `koanf:"cache_ttl"`
}

// RemoteConfig configures the HTTP model server scorer.
type RemoteConfig struct {
	URL               string        `koanf:"url"`
	Timeout           time.Duration `koanf:"timeout"`
	RequestsPerSecond float64       `koanf:"requests_per_second"`
	Burst             int           `koanf:"burst"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr              string        `koanf:"addr"`
	ReadTimeout       time.Duration `koanf:"read_timeout"`
	WriteTimeout      time.Duration `koanf:"write_timeout"`
	IdleTimeout       time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`

	// MaxConcurrentEvaluations bounds evaluations running through the API.
	MaxConcurrentEvaluations int `koanf:"max_concurrent_evaluations"`
}

// LoggingConfig configures zerolog.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// LoggingOptions converts the section to logging.Config.
func (c *Config) LoggingOptions() logging.Config {
	lc := logging.DefaultConfig()
	lc.Level = c.Logging.Level
	lc.Format = c.Logging.Format
	lc.Caller = c.Logging.Caller
	return lc
}

// RemoteScorerConfig converts the remote section for policy.NewRemoteScorer.
func (c *Config) RemoteScorerConfig(numItems int) policy.RemoteConfig {
	return policy.RemoteConfig{
		URL:               c.Policy.Remote.URL,
		Timeout:           c.Policy.Remote.Timeout,
		RequestsPerSecond: c.Policy.Remote.RequestsPerSecond,
		Burst:             c.Policy.Remote.Burst,
		NumItems:          numItems,
	}
}
