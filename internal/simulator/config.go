// RecSim - Recommendation Agent Simulation and Offline Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsim

package simulator

import (
	"errors"
	"fmt"
	"math"
)

const (
	// DefaultHistoryLength is N, the number of transitions in an observation.
	DefaultHistoryLength = 5

	// DefaultEpisodeLength is M, the number of steps per episode.
	DefaultEpisodeLength = 10

	// DefaultMissingRatingPenalty is the reward for recommending an item the
	// user never rated. It sits below every valid rating.
	DefaultMissingRatingPenalty = -0.1
)

// Config holds environment configuration.
type Config struct {
	// HistoryLength is N, the number of (item, reward) slots in an observation.
	// Default: 5
	HistoryLength int `koanf:"history_length"`

	// EpisodeLength is M, the number of steps before an episode is done.
	// Default: 10
	EpisodeLength int `koanf:"episode_length"`

	// MissingRatingPenalty is the reward for an unrated recommendation.
	// Default: -0.1
	MissingRatingPenalty float64 `koanf:"missing_rating_penalty"`
}

// DefaultConfig returns the reference environment configuration.
func DefaultConfig() Config {
	return Config{
		HistoryLength:        DefaultHistoryLength,
		EpisodeLength:        DefaultEpisodeLength,
		MissingRatingPenalty: DefaultMissingRatingPenalty,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.HistoryLength < 1 {
		return fmt.Errorf("history_length must be at least 1, got %d", c.HistoryLength)
	}
	if c.EpisodeLength < 1 {
		return fmt.Errorf("episode_length must be at least 1, got %d", c.EpisodeLength)
	}
	if math.IsNaN(c.MissingRatingPenalty) || math.IsInf(c.MissingRatingPenalty, 0) {
		return errors.New("missing_rating_penalty must be finite")
	}
	return nil
}

// ObservationSize returns the length of every observation, 1 + 2N.
func (c Config) ObservationSize() int {
	return 1 + 2*c.HistoryLength
}
