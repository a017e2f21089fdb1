// RecSim - Recommendation Agent Simulation and Offline Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsim

package metrics

import (
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestRecordEpisode(t *testing.T) {
	completedBefore := testutil.ToFloat64(EpisodesTotal.WithLabelValues("completed"))
	failedBefore := testutil.ToFloat64(EpisodesTotal.WithLabelValues("failed"))
	stepsBefore := testutil.ToFloat64(EpisodeSteps)

	RecordEpisode(10, 12.5, 3*time.Millisecond, nil)
	RecordEpisode(4, 0, time.Millisecond, errors.New("scorer down"))

	if got := testutil.ToFloat64(EpisodesTotal.WithLabelValues("completed")) - completedBefore; got != 1 {
		t.Errorf("completed delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(EpisodesTotal.WithLabelValues("failed")) - failedBefore; got != 1 {
		t.Errorf("failed delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(EpisodeSteps) - stepsBefore; got != 14 {
		t.Errorf("steps delta = %v, want 14", got)
	}
}

func TestRecordActionSelection(t *testing.T) {
	tests := []struct {
		name     string
		explored bool
		label    string
	}{
		{name: "explore", explored: true, label: "explore"},
		{name: "exploit", explored: false, label: "exploit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(ActionSelections.WithLabelValues(tt.label))
			RecordActionSelection(tt.explored)
			after := testutil.ToFloat64(ActionSelections.WithLabelValues(tt.label))
			if after-before != 1 {
				t.Errorf("%s delta = %v, want 1", tt.label, after-before)
			}
		})
	}
}

func TestRecordScorerCall(t *testing.T) {
	before := testutil.ToFloat64(ScorerErrors.WithLabelValues("test-scorer"))

	RecordScorerCall("test-scorer", time.Millisecond, nil)
	RecordScorerCall("test-scorer", time.Millisecond, errors.New("boom"))

	if got := testutil.ToFloat64(ScorerErrors.WithLabelValues("test-scorer")) - before; got != 1 {
		t.Errorf("error delta = %v, want 1", got)
	}
	if n := testutil.CollectAndCount(ScorerDuration); n == 0 {
		t.Error("expected scorer duration series")
	}
}

func TestRecordScoreCacheLookup(t *testing.T) {
	hits := testutil.ToFloat64(ScoreCacheHits)
	misses := testutil.ToFloat64(ScoreCacheMisses)

	RecordScoreCacheLookup(true)
	RecordScoreCacheLookup(true)
	RecordScoreCacheLookup(false)

	if got := testutil.ToFloat64(ScoreCacheHits) - hits; got != 2 {
		t.Errorf("hits delta = %v, want 2", got)
	}
	if got := testutil.ToFloat64(ScoreCacheMisses) - misses; got != 1 {
		t.Errorf("misses delta = %v, want 1", got)
	}
}

func TestRecordCircuitBreakerTransition(t *testing.T) {
	tests := []struct {
		to   string
		want float64
	}{
		{"open", 2},
		{"half-open", 1},
		{"closed", 0},
	}

	for _, tt := range tests {
		t.Run(tt.to, func(t *testing.T) {
			RecordCircuitBreakerTransition("test-breaker", "closed", tt.to)
			if got := testutil.ToFloat64(CircuitBreakerState.WithLabelValues("test-breaker")); got != tt.want {
				t.Errorf("state = %v, want %v", got, tt.want)
			}
		})
	}

	RecordCircuitBreakerResult("test-breaker", "rejected")
	if got := testutil.ToFloat64(CircuitBreakerRequests.WithLabelValues("test-breaker", "rejected")); got < 1 {
		t.Errorf("rejected count = %v, want >= 1", got)
	}
}

func TestRecordEvaluation(t *testing.T) {
	RecordEvaluation(
		map[int]float64{5: 0.6, 10: 0.55},
		map[int]float64{5: 0.9, 10: 0.95},
		17.3,
		2*time.Second,
		nil,
	)

	if got := testutil.ToFloat64(EvaluationPrecision.WithLabelValues("5")); got != 0.6 {
		t.Errorf("precision@5 = %v, want 0.6", got)
	}
	if got := testutil.ToFloat64(EvaluationRecall.WithLabelValues("10")); got != 0.95 {
		t.Errorf("recall@10 = %v, want 0.95", got)
	}
	if got := testutil.ToFloat64(EvaluationAvgReward); got != 17.3 {
		t.Errorf("avg reward = %v, want 17.3", got)
	}

	// failed run keeps previous gauges
	failedBefore := testutil.ToFloat64(EvaluationRuns.WithLabelValues("failed"))
	RecordEvaluation(nil, nil, 0, time.Second, errors.New("no episodes"))
	if got := testutil.ToFloat64(EvaluationAvgReward); got != 17.3 {
		t.Errorf("avg reward overwritten by failed run: %v", got)
	}
	if got := testutil.ToFloat64(EvaluationRuns.WithLabelValues("failed")) - failedBefore; got != 1 {
		t.Errorf("failed runs delta = %v, want 1", got)
	}
}

func TestRecordEventPublish(t *testing.T) {
	ok := testutil.ToFloat64(EventsPublished.WithLabelValues("test.topic", "success"))
	bad := testutil.ToFloat64(EventsPublished.WithLabelValues("test.topic", "failure"))

	RecordEventPublish("test.topic", nil)
	RecordEventPublish("test.topic", errors.New("nats down"))

	if got := testutil.ToFloat64(EventsPublished.WithLabelValues("test.topic", "success")) - ok; got != 1 {
		t.Errorf("success delta = %v", got)
	}
	if got := testutil.ToFloat64(EventsPublished.WithLabelValues("test.topic", "failure")) - bad; got != 1 {
		t.Errorf("failure delta = %v", got)
	}
}

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/health", "200"))
	RecordAPIRequest("GET", "/api/v1/health", "200", 5*time.Millisecond)
	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/health", "200"))
	if after-before != 1 {
		t.Errorf("request delta = %v, want 1", after-before)
	}
}

func TestSetAppInfo(t *testing.T) {
	SetAppInfo("v0.0.0-test")

	gauge := AppInfo.WithLabelValues("v0.0.0-test", runtime.Version())
	var m dto.Metric
	if err := gauge.Write(&m); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if m.GetGauge().GetValue() != 1 {
		t.Errorf("app_info = %v, want 1", m.GetGauge().GetValue())
	}
}
