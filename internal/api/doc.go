// RecSim - Recommendation Agent Simulation and Offline Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsim

/*
Package api serves evaluation runs over HTTP with the chi router.

# Endpoints

	GET  /api/v1/health            overall status (always 200)
	GET  /api/v1/health/live       liveness probe
	GET  /api/v1/health/ready      readiness probe (503 when the run store is down)
	POST /api/v1/evaluations       run an evaluation synchronously, 201 + run
	GET  /api/v1/evaluations       list runs newest first (?limit=1..500, default 50)
	GET  /api/v1/evaluations/{id}  one run
	GET  /metrics                  Prometheus exposition

# Response Format

Every JSON response uses the same envelope:

	{
	  "status": "success" | "error",
	  "data": ...,
	  "metadata": {"timestamp": "...", "request_id": "...", "query_time_ms": 12},
	  "error": {"code": "VALIDATION_ERROR", "message": "..."}
	}

# Middleware

Request IDs, real IP extraction, panic recovery and CORS apply globally.
Evaluation routes are rate limited per client IP with httprate and
instrumented with Prometheus; health routes get a permissive limit.
Concurrent POST /evaluations beyond HandlerConfig.MaxConcurrentEvaluations
are rejected with 429 EVALUATION_BUSY.
*/
package api
