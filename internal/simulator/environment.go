// RecSim - Recommendation Agent Simulation and Offline Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsim

package simulator

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/tomtom215/recsim/internal/interactions"
)

var (
	// ErrEpisodeNotStarted is returned by Step before the first Reset.
	ErrEpisodeNotStarted = errors.New("episode not started: call Reset first")

	// ErrInvalidAction is returned when the action is outside [0, NumItems).
	ErrInvalidAction = errors.New("invalid action")

	// ErrEpisodeDone is returned by Step once the episode reached its length.
	ErrEpisodeDone = errors.New("episode already done")

	// ErrNoUsers is returned by Reset when there is no user to sample.
	ErrNoUsers = errors.New("no users available to sample")
)

// RatingSource is the read-only data the environment simulates against.
// *interactions.Store satisfies it.
type RatingSource interface {
	Rating(user, item int) (float64, bool)
	RelevantItems(user int) interactions.ItemSet
	Users() []int
	NumItems() int
}

// StepResult is the outcome of a single Step.
type StepResult struct {
	Observation Observation
	Reward      float64
	Done        bool
}

// Environment simulates one user session at a time. Reset samples a user,
// Step feeds a recommended item and returns the rating-derived reward.
//
// An Environment is not safe for concurrent use; run one per goroutine.
type Environment struct {
	source   RatingSource
	cfg      Config
	rng      *rand.Rand
	users    []int
	numItems int

	started  bool
	user     int
	relevant interactions.ItemSet
	history  *history
}

// New creates an environment. rng drives user sampling; pass a seeded
// source for reproducible episodes.
func New(source RatingSource, cfg Config, rng *rand.Rand) (*Environment, error) {
	if source == nil {
		return nil, errors.New("rating source is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid environment config: %w", err)
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(42)) //nolint:gosec // simulation sampling, not security
	}

	return &Environment{
		source:   source,
		cfg:      cfg,
		rng:      rng,
		users:    source.Users(),
		numItems: source.NumItems(),
		history:  newHistory(cfg.EpisodeLength),
	}, nil
}

// Config returns the environment configuration.
func (e *Environment) Config() Config {
	return e.cfg
}

// NumItems returns the size of the action space.
func (e *Environment) NumItems() int {
	return e.numItems
}

// Reset samples a new user uniformly and clears the history. The returned
// observation carries the user id and 2N zeros.
func (e *Environment) Reset() (Observation, error) {
	if len(e.users) == 0 {
		return nil, ErrNoUsers
	}

	e.user = e.users[e.rng.Intn(len(e.users))]
	e.relevant = e.source.RelevantItems(e.user)
	e.history.reset()
	e.started = true

	return NewObservation(e.user, nil, nil, e.cfg.HistoryLength), nil
}

// Step recommends action to the current user.
func (e *Environment) Step(action int) (StepResult, error) {
	if !e.started {
		return StepResult{}, ErrEpisodeNotStarted
	}
	if action < 0 || action >= e.numItems {
		return StepResult{}, fmt.Errorf("%w: %d not in [0, %d)", ErrInvalidAction, action, e.numItems)
	}
	if e.history.full() {
		return StepResult{}, fmt.Errorf("%w after %d steps", ErrEpisodeDone, e.history.len())
	}

	reward, ok := e.source.Rating(e.user, action)
	if !ok {
		reward = e.cfg.MissingRatingPenalty
	}
	e.history.push(Transition{Item: action, Reward: reward})

	items, rewards := e.history.window(e.cfg.HistoryLength)
	return StepResult{
		Observation: NewObservation(e.user, items, rewards, e.cfg.HistoryLength),
		Reward:      reward,
		Done:        e.history.len() == e.cfg.EpisodeLength,
	}, nil
}

// CurrentUser returns the sampled user. ok is false before the first Reset.
func (e *Environment) CurrentUser() (user int, ok bool) {
	return e.user, e.started
}

// RelevantItemsForCurrentUser returns the current user's test-split items.
// The set is empty before the first Reset. Callers must not modify it.
func (e *Environment) RelevantItemsForCurrentUser() interactions.ItemSet {
	if !e.started {
		return interactions.ItemSet{}
	}
	return e.relevant
}

// Steps returns the number of steps taken in the current episode.
func (e *Environment) Steps() int {
	return e.history.len()
}

// Done reports whether the current episode reached its length.
func (e *Environment) Done() bool {
	return e.started && e.history.full()
}

// History returns a copy of the current episode's transitions.
func (e *Environment) History() []Transition {
	return e.history.snapshot()
}
