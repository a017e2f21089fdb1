// RecSim - Recommendation Agent Simulation and Offline Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsim

package events

import (
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/recsim/internal/evaluation"
)

// TopicEvaluationCompleted carries one EvaluationCompleted per finished run.
const TopicEvaluationCompleted = "recsim.evaluation.completed"

// EvaluationCompleted summarizes a finished evaluation run.
type EvaluationCompleted struct {
	EventID        string          `json:"event_id"`
	RunID          string          `json:"run_id"`
	Name           string          `json:"name"`
	Status         string          `json:"status"`
	OccurredAt     time.Time       `json:"occurred_at"`
	Scorer         string          `json:"scorer"`
	Episodes       int             `json:"episodes"`
	FailedEpisodes int             `json:"failed_episodes"`
	Precision      map[int]float64 `json:"precision,omitempty"`
	Recall         map[int]float64 `json:"recall,omitempty"`
	AvgReward      float64         `json:"avg_reward"`
	Error          string          `json:"error,omitempty"`
}

// NewEvaluationCompleted builds the event for run.
func NewEvaluationCompleted(run *evaluation.Run) *EvaluationCompleted {
	ev := &EvaluationCompleted{
		EventID:    uuid.New().String(),
		RunID:      run.ID,
		Name:       run.Name,
		Status:     run.Status,
		OccurredAt: run.CompletedAt,
		Scorer:     run.Params.Scorer,
		Episodes:   run.Params.Episodes,
		Error:      run.Error,
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	if r := run.Result; r != nil {
		ev.Episodes = r.Episodes
		ev.FailedEpisodes = r.FailedEpisodes
		ev.Precision = r.Precision
		ev.Recall = r.Recall
		ev.AvgReward = r.AvgReward
	}
	return ev
}

// Validate checks required fields.
func (e *EvaluationCompleted) Validate() error {
	if e.EventID == "" {
		return errors.New("event_id is required")
	}
	if e.RunID == "" {
		return errors.New("run_id is required")
	}
	return nil
}

// Marshal encodes the event as JSON.
func (e *EvaluationCompleted) Marshal() ([]byte, error) {
	if err := e.Validate(); err != nil {
		return nil, fmt.Errorf("invalid event: %w", err)
	}
	return json.Marshal(e)
}

// UnmarshalEvaluationCompleted decodes and validates an event payload.
func UnmarshalEvaluationCompleted(data []byte) (*EvaluationCompleted, error) {
	var e EvaluationCompleted
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	if err := e.Validate(); err != nil {
		return nil, fmt.Errorf("invalid event: %w", err)
	}
	return &e, nil
}
