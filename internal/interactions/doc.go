// RecSim - Recommendation Agent Simulation and Offline Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsim

// Package interactions holds the historical user-item interaction data the
// simulator and evaluator read from.
//
// Raw item ids are sparse and are remapped once, over the union of the train
// and test splits, into a dense range [0, NumItems). Every other package in
// the module works exclusively with dense ids.
//
// # Loading
//
//	table, err := interactions.LoadTable(ctx, "ratings.parquet", interactions.Columns{})
//	if err != nil {
//	    return err
//	}
//	store, err := table.Store()
//
// LoadTable reads CSV, Parquet or JSON through an in-process DuckDB
// connection and expects user, item, rating and split columns. The split
// column must hold "train" or "test".
//
// # Store
//
// Store answers three questions: which items a user is relevant to in the
// test split, what rating a (user, item) pair received, and how items rank by
// training popularity. Lookups for unknown users return empty results rather
// than errors.
package interactions
