// RecSim - Recommendation Agent Simulation and Offline Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsim

package config

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/tomtom215/recsim/internal/logging"
)

// Validate checks the configuration and returns the first violation.
func (c *Config) Validate() error {
	if err := c.validateData(); err != nil {
		return err
	}
	if err := c.Environment.Validate(); err != nil {
		return fmt.Errorf("environment: %w", err)
	}
	if err := c.validatePolicy(); err != nil {
		return err
	}
	if err := c.Evaluation.Validate(); err != nil {
		return fmt.Errorf("evaluation: %w", err)
	}
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.Events.Validate(); err != nil {
		return fmt.Errorf("events: %w", err)
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateData() error {
	if c.Data.Path == "" {
		return errors.New("data.path is required")
	}
	return nil
}

func (c *Config) validatePolicy() error {
	p := c.Policy
	if p.ExploreProbability < 0 || p.ExploreProbability > 1 {
		return fmt.Errorf("policy.explore_probability must be in [0, 1], got %v", p.ExploreProbability)
	}
	if p.CacheCapacity < 0 {
		return fmt.Errorf("policy.cache_capacity must not be negative, got %d", p.CacheCapacity)
	}

	switch p.Scorer {
	case ScorerEmbedding:
		if p.ModelDir == "" || p.ModelName == "" {
			return errors.New("policy.model_dir and policy.model_name are required for the embedding scorer")
		}
		if p.ModelVersion < 0 {
			return fmt.Errorf("policy.model_version must not be negative, got %d", p.ModelVersion)
		}
	case ScorerPopularity:
	case ScorerCoVisit:
		if p.CoVisitMinCount < 1 {
			return fmt.Errorf("policy.covisit_min_count must be at least 1, got %d", p.CoVisitMinCount)
		}
	case ScorerRemote:
		if p.Remote.URL == "" {
			return errors.New("policy.remote.url is required for the remote scorer")
		}
		u, err := url.Parse(p.Remote.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("policy.remote.url must be an http(s) URL, got %q", p.Remote.URL)
		}
		if p.Remote.RequestsPerSecond < 0 {
			return errors.New("policy.remote.requests_per_second must not be negative")
		}
	default:
		return fmt.Errorf("policy.scorer must be one of embedding, popularity, covisit, remote; got %q", p.Scorer)
	}
	return nil
}

func (c *Config) validateStorage() error {
	if !c.Storage.InMemory && c.Storage.Path == "" {
		return errors.New("storage.path is required unless storage.in_memory is set")
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Addr == "" {
		return errors.New("server.addr is required")
	}
	if c.Server.MaxConcurrentEvaluations < 1 {
		return fmt.Errorf("server.max_concurrent_evaluations must be at least 1, got %d", c.Server.MaxConcurrentEvaluations)
	}
	if !c.Server.RateLimitDisabled {
		if c.Server.RateLimitReqs <= 0 {
			return fmt.Errorf("server.rate_limit_reqs must be positive, got %d", c.Server.RateLimitReqs)
		}
		if c.Server.RateLimitWindow <= 0 {
			return fmt.Errorf("server.rate_limit_window must be positive, got %s", c.Server.RateLimitWindow)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("logging.level %q is not a valid level", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
		return nil
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
}
