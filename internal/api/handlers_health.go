// RecSim - Recommendation Agent Simulation and Offline Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsim

package api

import (
	"context"
	"net/http"
	"time"
)

// HealthStatus is the body of GET /api/v1/health.
type HealthStatus struct {
	Status            string  `json:"status"`
	Version           string  `json:"version"`
	RunStoreConnected bool    `json:"run_store_connected"`
	StoredRuns        int     `json:"stored_runs"`
	ActiveEvaluations int64   `json:"active_evaluations"`
	Uptime            float64 `json:"uptime"`
}

func (h *Handler) pingStore(ctx context.Context) (int, bool) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	n, err := h.runs.Count(ctx)
	return n, err == nil
}

// Health reports overall status. It always answers 200; a broken run store
// shows as "degraded".
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	count, connected := h.pingStore(r.Context())

	status := "healthy"
	if !connected {
		status = "degraded"
	}

	respondSuccess(w, r, http.StatusOK, HealthStatus{
		Status:            status,
		Version:           h.version,
		RunStoreConnected: connected,
		StoredRuns:        count,
		ActiveEvaluations: h.active.Load(),
		Uptime:            time.Since(h.startTime).Seconds(),
	}, start)
}

// HealthLive answers 200 while the process is up.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, http.StatusOK, map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	}, time.Now())
}

// HealthReady answers 200 when the run store is reachable, 503 otherwise.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	_, connected := h.pingStore(r.Context())

	statusCode := http.StatusOK
	status := "ready"
	if !connected {
		statusCode = http.StatusServiceUnavailable
		status = "not_ready"
	}

	respondJSON(w, statusCode, &APIResponse{
		Status: status,
		Data: map[string]interface{}{
			"run_store_connected": connected,
			"ready_to_serve":      connected,
		},
		Metadata: Metadata{Timestamp: time.Now().UTC()},
	})
}
