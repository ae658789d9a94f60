// Clubzones - Cannabis Club Eligible Zone Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clubzones

package events

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"

	"github.com/tomtom215/clubzones/internal/logging"
	"github.com/tomtom215/clubzones/internal/metrics"
)

// TopicDatasetReplaced is published after the location set was replaced.
const TopicDatasetReplaced = "clubzones.dataset.replaced"

// ErrBusClosed is returned by Publish and Subscribe after Close.
var ErrBusClosed = errors.New("event bus closed")

// DatasetReplaced describes a completed ingestion.
type DatasetReplaced struct {
	Source    string    `json:"source"` // "snapshot" or "osm"
	Locator   string    `json:"locator,omitempty"`
	Locations int64     `json:"locations"`
	At        time.Time `json:"at"`
}

// Bus is an in-process publisher/subscriber for dataset events.
type Bus struct {
	pubsub *gochannel.GoChannel
	closed atomic.Bool
}

// NewBus creates a bus. Subscribers that fall more than the buffer behind
// block the publisher, so subscribers must drain promptly.
func NewBus() *Bus {
	logger := watermill.NewSlogLogger(logging.NewComponentSlogLogger("events"))
	return &Bus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: 16,
		}, logger),
	}
}

// PublishDatasetReplaced announces ev to every subscriber.
func (b *Bus) PublishDatasetReplaced(ctx context.Context, ev DatasetReplaced) error {
	if b.closed.Load() {
		return ErrBusClosed
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	if id := logging.CorrelationIDFromContext(ctx); id != "" {
		msg.Metadata.Set("correlation_id", id)
	}

	if err := b.pubsub.Publish(TopicDatasetReplaced, msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", TopicDatasetReplaced, err)
	}
	metrics.EventsPublished.WithLabelValues(TopicDatasetReplaced).Inc()
	return nil
}

// SubscribeDatasetReplaced returns decoded events until ctx is done or the
// bus is closed. Malformed payloads are logged and dropped.
func (b *Bus) SubscribeDatasetReplaced(ctx context.Context) (<-chan DatasetReplaced, error) {
	if b.closed.Load() {
		return nil, ErrBusClosed
	}
	messages, err := b.pubsub.Subscribe(ctx, TopicDatasetReplaced)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", TopicDatasetReplaced, err)
	}

	out := make(chan DatasetReplaced)
	go func() {
		defer close(out)
		for msg := range messages {
			var ev DatasetReplaced
			if err := json.Unmarshal(msg.Payload, &ev); err != nil {
				logging.Warn().Err(err).Str("message_id", msg.UUID).Msg("Dropping malformed dataset event")
				msg.Ack()
				continue
			}
			select {
			case out <- ev:
				msg.Ack()
			case <-ctx.Done():
				msg.Nack()
				return
			}
		}
	}()
	return out, nil
}

// Close stops the bus and closes all subscription channels.
func (b *Bus) Close() error {
	if b.closed.Swap(true) {
		return nil
	}
	return b.pubsub.Close()
}
