// Package eventbus wraps Watermill's in-process GoChannel pub/sub behind
// the small interface the application services publish through. The system
// is single-process by design, so no broker is involved; subscribers see
// events on Go channels within the same process.
package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/wingshot-club/wingshot-bot/internal/observability"
)

// EventBus is the publish/subscribe surface handed to services.
type EventBus interface {
	Publish(ctx context.Context, topic string, payload any) error
	Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error)
	Close() error
}

type eventBus struct {
	pubsub  *gochannel.GoChannel
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates an EventBus backed by a GoChannel pub/sub.
func New(logger *slog.Logger, metrics *observability.Metrics) EventBus {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NewNoop()
	}

	pubsub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		watermill.NewSlogLogger(logger),
	)
	return &eventBus{pubsub: pubsub, logger: logger, metrics: metrics}
}

// Publish marshals payload as JSON and publishes it on topic. Publish
// failures are surfaced to the caller but callers treat them as non-fatal:
// the store write has already committed by the time an event goes out.
func (b *eventBus) Publish(ctx context.Context, topic string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload for %s: %w", topic, err)
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.SetContext(ctx)
	if err := b.pubsub.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", topic, err)
	}

	b.metrics.EventsPublished.WithLabelValues(topic).Inc()
	return nil
}

// Subscribe returns the message channel for topic.
func (b *eventBus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	ch, err := b.pubsub.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}
	return ch, nil
}

// Close shuts the pub/sub down; pending subscribers see closed channels.
func (b *eventBus) Close() error {
	return b.pubsub.Close()
}
