// RecSim - Recommendation Agent Simulation and Offline Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsim

package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	natsgo "github.com/nats-io/nats.go"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/recsim/internal/evaluation"
	"github.com/tomtom215/recsim/internal/logging"
	"github.com/tomtom215/recsim/internal/metrics"
)

const publishBreakerName = "event-publisher"

// ErrPublisherClosed is returned by Publish after Close.
var ErrPublisherClosed = errors.New("publisher is closed")

// Publisher sends events through a watermill publisher guarded by a circuit
// breaker. It satisfies evaluation.RunPublisher.
type Publisher struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	cb         *gobreaker.CircuitBreaker[struct{}]

	mu     sync.RWMutex
	closed bool
}

// NewPublisher builds the backend selected by cfg. A disabled config yields
// a publisher that drops every event.
func NewPublisher(cfg Config, logger *slog.Logger) (*Publisher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid events config: %w", err)
	}
	if logger == nil {
		logger = logging.NewSlogLogger(logging.WithComponent("events"))
	}
	wmLogger := watermill.NewSlogLogger(logger)

	if !cfg.Enabled {
		return &Publisher{cb: newBreaker()}, nil
	}

	switch cfg.Backend {
	case BackendNATS:
		pub, err := newNATSPublisher(cfg.NATS, wmLogger)
		if err != nil {
			return nil, err
		}
		return newPublisher(pub, nil), nil
	default:
		ch := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, wmLogger)
		return newPublisher(ch, ch), nil
	}
}

// NewPublisherFrom wraps an existing watermill publisher.
func NewPublisherFrom(pub message.Publisher) *Publisher {
	return newPublisher(pub, nil)
}

func newPublisher(pub message.Publisher, sub message.Subscriber) *Publisher {
	return &Publisher{publisher: pub, subscriber: sub, cb: newBreaker()}
}

func newBreaker() *gobreaker.CircuitBreaker[struct{}] {
	metrics.CircuitBreakerState.WithLabelValues(publishBreakerName).Set(0)
	return gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        publishBreakerName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state transition")
			metrics.RecordCircuitBreakerTransition(name, from.String(), to.String())
		},
	})
}

func newNATSPublisher(cfg NATSConfig, logger watermill.LoggerAdapter) (message.Publisher, error) {
	natsOpts := []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(cfg.MaxReconnects),
		natsgo.ReconnectWait(cfg.ReconnectWait),
		natsgo.ReconnectBufSize(cfg.ReconnectBuffer),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{"url": nc.ConnectedUrl()})
		}),
	}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         cfg.URL,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			Disabled:      !cfg.JetStream,
			AutoProvision: cfg.AutoProvision,
			TrackMsgId:    cfg.TrackMsgID,
			PublishOptions: []natsgo.PubOpt{
				natsgo.RetryAttempts(3),
				natsgo.RetryWait(100 * time.Millisecond),
			},
		},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill publisher: %w", err)
	}
	return pub, nil
}

// Enabled reports whether events are delivered anywhere.
func (p *Publisher) Enabled() bool {
	return p.publisher != nil
}

// Subscriber returns the in-process subscriber for the memory backend, or
// nil for other backends.
func (p *Publisher) Subscriber() message.Subscriber {
	return p.subscriber
}

// Publish sends msg to topic.
func (p *Publisher) Publish(ctx context.Context, topic string, msg *message.Message) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}
	if p.publisher == nil {
		return nil
	}

	if msg.Metadata.Get(natsgo.MsgIdHdr) == "" {
		msg.Metadata.Set(natsgo.MsgIdHdr, msg.UUID)
	}
	msg.SetContext(ctx)

	_, err := p.cb.Execute(func() (struct{}, error) {
		return struct{}{}, p.publisher.Publish(topic, msg)
	})
	switch {
	case err == nil:
		metrics.RecordCircuitBreakerResult(publishBreakerName, "success")
	case errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.RecordCircuitBreakerResult(publishBreakerName, "rejected")
	default:
		metrics.RecordCircuitBreakerResult(publishBreakerName, "failure")
	}
	metrics.RecordEventPublish(topic, err)
	return err
}

// PublishRun publishes an EvaluationCompleted event for run.
func (p *Publisher) PublishRun(ctx context.Context, run *evaluation.Run) error {
	event := NewEvaluationCompleted(run)
	data, err := event.Marshal()
	if err != nil {
		return err
	}

	msg := message.NewMessage(event.EventID, data)
	msg.Metadata.Set("run_id", run.ID)
	msg.Metadata.Set("status", run.Status)

	if err := p.Publish(ctx, TopicEvaluationCompleted, msg); err != nil {
		return fmt.Errorf("publish %s: %w", TopicEvaluationCompleted, err)
	}
	return nil
}

// Close shuts down the underlying publisher. Safe to call more than once.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	if p.publisher == nil {
		return nil
	}
	return p.publisher.Close()
}
