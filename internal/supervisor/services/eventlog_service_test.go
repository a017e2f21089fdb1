// RecSim - Recommendation Agent Simulation and Offline Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsim

package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/tomtom215/recsim/internal/evaluation"
	"github.com/tomtom215/recsim/internal/events"
)

type closedSubscriber struct{ err error }

func (s closedSubscriber) Subscribe(context.Context, string) (<-chan *message.Message, error) {
	if s.err != nil {
		return nil, s.err
	}
	ch := make(chan *message.Message)
	close(ch)
	return ch, nil
}

func (closedSubscriber) Close() error { return nil }

func TestEventLogService_ConsumesPublishedRuns(t *testing.T) {
	pub, err := events.NewPublisher(events.DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("NewPublisher() error = %v", err)
	}
	defer pub.Close()

	svc := NewEventLogService(pub.Subscriber())
	if svc.String() != "event-log" {
		t.Errorf("String() = %q", svc.String())
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	run := &evaluation.Run{
		ID:     "run-1",
		Name:   "nightly",
		Status: evaluation.StatusCompleted,
		Result: &evaluation.Result{Episodes: 10, AvgReward: 12.5},
	}

	// The in-process bus drops messages published before Subscribe, so keep
	// publishing until one is consumed.
	deadline := time.Now().Add(2 * time.Second)
	for svc.Handled() == 0 && time.Now().Before(deadline) {
		if err := pub.PublishRun(context.Background(), run); err != nil {
			t.Fatalf("PublishRun() error = %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}
	if svc.Handled() == 0 {
		t.Fatal("no event consumed")
	}

	cancel()
	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return")
	}
}

func TestEventLogService_SubscriptionErrors(t *testing.T) {
	t.Run("subscribe fails", func(t *testing.T) {
		boom := errors.New("no bus")
		err := NewEventLogService(closedSubscriber{err: boom}).Serve(context.Background())
		if !errors.Is(err, boom) {
			t.Errorf("Serve() error = %v, want %v", err, boom)
		}
	})

	t.Run("closed channel asks for restart", func(t *testing.T) {
		err := NewEventLogService(closedSubscriber{}).Serve(context.Background())
		if err == nil || errors.Is(err, context.Canceled) {
			t.Errorf("Serve() error = %v, want subscription closed", err)
		}
	})
}

func TestEventLogService_MalformedMessage(t *testing.T) {
	svc := NewEventLogService(closedSubscriber{})
	msg := message.NewMessage("m-1", []byte("{not json"))
	svc.handle(msg)

	if svc.Handled() != 0 {
		t.Errorf("Handled() = %d, want 0", svc.Handled())
	}
	select {
	case <-msg.Acked():
	default:
		t.Error("malformed message was not acked")
	}
}
