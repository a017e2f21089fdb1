// RecSim - Recommendation Agent Simulation and Offline Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsim

package services

import (
	"context"
	"time"

	"github.com/tomtom215/recsim/internal/logging"
)

// ValueLogCollector is satisfied by *runstore.Store.
type ValueLogCollector interface {
	RunGC(discardRatio float64) error
}

// RunStoreGCService periodically reclaims BadgerDB value log space in the
// run store. GC failures are logged and retried on the next tick.
type RunStoreGCService struct {
	store        ValueLogCollector
	interval     time.Duration
	discardRatio float64
	name         string
}

// NewRunStoreGCService creates the service. Non-positive interval means 10m;
// a ratio outside (0, 1) means 0.5.
func NewRunStoreGCService(store ValueLogCollector, interval time.Duration, discardRatio float64) *RunStoreGCService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	if discardRatio <= 0 || discardRatio >= 1 {
		discardRatio = 0.5
	}
	return &RunStoreGCService{
		store:        store,
		interval:     interval,
		discardRatio: discardRatio,
		name:         "runstore-gc",
	}
}

// Serve implements suture.Service.
func (s *RunStoreGCService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			start := time.Now()
			if err := s.store.RunGC(s.discardRatio); err != nil {
				logging.Warn().Err(err).Msg("Run store GC failed")
				continue
			}
			logging.Debug().
				Dur("duration", time.Since(start)).
				Msg("Run store GC finished")
		}
	}
}

// String implements fmt.Stringer.
func (s *RunStoreGCService) String() string {
	return s.name
}
