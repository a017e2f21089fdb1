// RecSim - Recommendation Agent Simulation and Offline Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsim

package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/tomtom215/recsim/internal/evaluation"
	"github.com/tomtom215/recsim/internal/events"
	"github.com/tomtom215/recsim/internal/logging"
)

// EventLogService consumes EvaluationCompleted events from the in-process
// bus and writes one structured log line per run.
type EventLogService struct {
	subscriber message.Subscriber
	name       string
	handled    atomic.Int64
}

// NewEventLogService creates the consumer.
func NewEventLogService(subscriber message.Subscriber) *EventLogService {
	return &EventLogService{
		subscriber: subscriber,
		name:       "event-log",
	}
}

// Serve implements suture.Service. A closed subscription while ctx is live
// is returned as an error so the supervisor resubscribes.
func (s *EventLogService) Serve(ctx context.Context) error {
	msgs, err := s.subscriber.Subscribe(ctx, events.TopicEvaluationCompleted)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", events.TopicEvaluationCompleted, err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return errors.New("event subscription closed")
			}
			s.handle(msg)
		}
	}
}

func (s *EventLogService) handle(msg *message.Message) {
	// Undecodable messages are acked so they are not redelivered forever.
	defer msg.Ack()

	event, err := events.UnmarshalEvaluationCompleted(msg.Payload)
	if err != nil {
		logging.Warn().Err(err).Str("message_id", msg.UUID).Msg("Dropping malformed evaluation event")
		return
	}
	s.handled.Add(1)

	logEvent := logging.Info()
	if event.Status != evaluation.StatusCompleted {
		logEvent = logging.Warn().Str("error", event.Error)
	}
	logEvent.
		Str("run_id", event.RunID).
		Str("name", event.Name).
		Str("status", event.Status).
		Str("scorer", event.Scorer).
		Int("episodes", event.Episodes).
		Int("failed_episodes", event.FailedEpisodes).
		Float64("avg_reward", event.AvgReward).
		Msg("Evaluation completed")
}

// Handled returns how many events were decoded and logged.
func (s *EventLogService) Handled() int64 {
	return s.handled.Load()
}

// String implements fmt.Stringer.
func (s *EventLogService) String() string {
	return s.name
}
