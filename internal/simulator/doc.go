// RecSim - Recommendation Agent Simulation and Offline Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsim

// Package simulator implements the episodic recommendation environment.
//
// Each episode samples one test-split user and runs exactly EpisodeLength
// steps. A step takes a dense item id, looks up the user's observed rating
// for it and returns that rating as the reward, or MissingRatingPenalty when
// the user never rated the item.
//
//	env, _ := simulator.New(store, simulator.DefaultConfig(), rand.New(rand.NewSource(seed)))
//	obs, _ := env.Reset()
//	for {
//	    res, err := env.Step(pick(obs))
//	    if err != nil || res.Done {
//	        break
//	    }
//	    obs = res.Observation
//	}
//
// Observations have length 1 + 2N: the user id, the last N item ids and the
// last N rewards, with the history blocks left zero padded.
package simulator
