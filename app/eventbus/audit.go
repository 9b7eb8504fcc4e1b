package eventbus

import (
	"context"
	"log/slog"

	"github.com/wingshot-club/wingshot-bot/app/events"
)

// StartAudit attaches a subscriber to every domain topic and logs each
// event as it flows through. It returns after all subscriptions are
// established; the consuming goroutines exit when ctx is canceled or the
// bus closes.
func StartAudit(ctx context.Context, bus EventBus, logger *slog.Logger) error {
	for _, topic := range events.Topics {
		ch, err := bus.Subscribe(ctx, topic)
		if err != nil {
			return err
		}

		go func(topic string) {
			for msg := range ch {
				logger.InfoContext(msg.Context(), "Domain event",
					slog.String("topic", topic),
					slog.String("message_id", msg.UUID),
					slog.String("payload", string(msg.Payload)),
				)
				msg.Ack()
			}
		}(topic)
	}
	return nil
}
