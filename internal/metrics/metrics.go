// RecSim - Recommendation Agent Simulation and Offline Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsim

package metrics

import (
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for:
// - episode rollouts and action selection
// - scorer latency, caching and circuit breaking
// - evaluation run results
// - event publishing and the HTTP API

var (
	// Episode Metrics
	EpisodesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recsim_episodes_total",
			Help: "Total number of simulated episodes by outcome",
		},
		[]string{"status"}, // "completed", "failed"
	)

	EpisodeSteps = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recsim_episode_steps_total",
			Help: "Total number of environment steps taken",
		},
	)

	EpisodeReward = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recsim_episode_reward",
			Help:    "Total reward collected per completed episode",
			Buckets: []float64{-1, 0, 2.5, 5, 10, 15, 20, 30, 40, 50},
		},
	)

	EpisodeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recsim_episode_duration_seconds",
			Help:    "Wall time per episode in seconds",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1, 5},
		},
	)

	ActionSelections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recsim_action_selections_total",
			Help: "Total number of actions selected by mode",
		},
		[]string{"mode"}, // "explore", "exploit"
	)

	// Scorer Metrics
	ScorerDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recsim_scorer_duration_seconds",
			Help:    "Duration of scorer calls in seconds",
			Buckets: []float64{.00001, .0001, .001, .005, .01, .05, .1, .5, 1},
		},
		[]string{"scorer"},
	)

	ScorerErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recsim_scorer_errors_total",
			Help: "Total number of failed scorer calls",
		},
		[]string{"scorer"},
	)

	ScoreCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recsim_score_cache_hits_total",
			Help: "Total number of score vector cache hits",
		},
	)

	ScoreCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recsim_score_cache_misses_total",
			Help: "Total number of score vector cache misses",
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Evaluation Metrics
	EvaluationRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recsim_evaluation_runs_total",
			Help: "Total number of evaluation runs by outcome",
		},
		[]string{"status"},
	)

	EvaluationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recsim_evaluation_duration_seconds",
			Help:    "Duration of evaluation runs in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	EvaluationPrecision = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "recsim_evaluation_precision",
			Help: "Mean Precision@K of the most recent evaluation run",
		},
		[]string{"k"},
	)

	EvaluationRecall = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "recsim_evaluation_recall",
			Help: "Mean Recall@K of the most recent evaluation run",
		},
		[]string{"k"},
	)

	EvaluationAvgReward = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recsim_evaluation_average_reward",
			Help: "Average total episode reward of the most recent evaluation run",
		},
	)

	// Event Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recsim_events_published_total",
			Help: "Total number of published events by topic and result",
		},
		[]string{"topic", "result"},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10},
		},
		[]string{"method", "route"},
	)

	// Application Info
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)
)

// RecordEpisode records a finished episode. Reward is only observed for
// completed episodes.
func RecordEpisode(steps int, reward float64, duration time.Duration, err error) {
	EpisodeSteps.Add(float64(steps))
	EpisodeDuration.Observe(duration.Seconds())
	if err != nil {
		EpisodesTotal.WithLabelValues("failed").Inc()
		return
	}
	EpisodesTotal.WithLabelValues("completed").Inc()
	EpisodeReward.Observe(reward)
}

// RecordActionSelection counts an explore or exploit decision.
func RecordActionSelection(explored bool) {
	if explored {
		ActionSelections.WithLabelValues("explore").Inc()
		return
	}
	ActionSelections.WithLabelValues("exploit").Inc()
}

// RecordScorerCall records latency and failures for a scorer call.
func RecordScorerCall(scorer string, duration time.Duration, err error) {
	ScorerDuration.WithLabelValues(scorer).Observe(duration.Seconds())
	if err != nil {
		ScorerErrors.WithLabelValues(scorer).Inc()
	}
}

// RecordScoreCacheLookup counts a score cache hit or miss.
func RecordScoreCacheLookup(hit bool) {
	if hit {
		ScoreCacheHits.Inc()
		return
	}
	ScoreCacheMisses.Inc()
}

// RecordCircuitBreakerResult counts a request outcome for a named breaker.
func RecordCircuitBreakerResult(name, result string) {
	CircuitBreakerRequests.WithLabelValues(name, result).Inc()
}

// RecordCircuitBreakerTransition updates state metrics after a transition.
// States are the gobreaker string forms: "closed", "half-open", "open".
func RecordCircuitBreakerTransition(name, from, to string) {
	CircuitBreakerState.WithLabelValues(name).Set(circuitStateValue(to))
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
}

func circuitStateValue(state string) float64 {
	switch state {
	case "half-open":
		return 1
	case "open":
		return 2
	default:
		return 0
	}
}

// RecordEvaluation records an evaluation run. Result gauges are only
// updated for successful runs.
func RecordEvaluation(precision, recall map[int]float64, avgReward float64, duration time.Duration, err error) {
	EvaluationDuration.Observe(duration.Seconds())
	if err != nil {
		EvaluationRuns.WithLabelValues("failed").Inc()
		return
	}
	EvaluationRuns.WithLabelValues("completed").Inc()
	for k, v := range precision {
		EvaluationPrecision.WithLabelValues(strconv.Itoa(k)).Set(v)
	}
	for k, v := range recall {
		EvaluationRecall.WithLabelValues(strconv.Itoa(k)).Set(v)
	}
	EvaluationAvgReward.Set(avgReward)
}

// RecordEventPublish counts a publish attempt.
func RecordEventPublish(topic string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	EventsPublished.WithLabelValues(topic, result).Inc()
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, route, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// SetAppInfo publishes the build version.
func SetAppInfo(version string) {
	AppInfo.WithLabelValues(version, runtime.Version()).Set(1)
}
