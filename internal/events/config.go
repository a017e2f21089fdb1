// RecSim - Recommendation Agent Simulation and Offline Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsim

package events

import (
	"errors"
	"fmt"
	"time"
)

// Backends.
const (
	BackendMemory = "memory"
	BackendNATS   = "nats"
)

// Config selects and tunes the event backend.
type Config struct {
	// Enabled turns publishing on. A disabled publisher drops events.
	Enabled bool `koanf:"enabled"`

	// Backend is "memory" (in-process watermill GoChannel) or "nats".
	Backend string `koanf:"backend"`

	NATS NATSConfig `koanf:"nats"`
}

// NATSConfig configures the NATS publisher.
type NATSConfig struct {
	URL             string        `koanf:"url"`
	MaxReconnects   int           `koanf:"max_reconnects"`
	ReconnectWait   time.Duration `koanf:"reconnect_wait"`
	ReconnectBuffer int           `koanf:"reconnect_buffer"`
	JetStream       bool          `koanf:"jetstream"`

	// AutoProvision creates the stream on first publish. JetStream stream
	// names may not contain dots, so leave this off and pre-create a stream
	// that captures the topic subject.
	AutoProvision bool `koanf:"auto_provision"`

	TrackMsgID bool `koanf:"track_msg_id"`
}

// DefaultConfig publishes to an in-process channel.
func DefaultConfig() Config {
	return Config{
		Enabled: true,
		Backend: BackendMemory,
		NATS: NATSConfig{
			URL:             "nats://127.0.0.1:4222",
			MaxReconnects:   -1,
			ReconnectWait:   2 * time.Second,
			ReconnectBuffer: 8 * 1024 * 1024,
			JetStream:       false,
			AutoProvision:   false,
			TrackMsgID:      true,
		},
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	switch c.Backend {
	case BackendMemory:
		return nil
	case BackendNATS:
		if c.NATS.URL == "" {
			return errors.New("events.nats.url is required for the nats backend")
		}
		return nil
	default:
		return fmt.Errorf("unknown events backend %q", c.Backend)
	}
}
