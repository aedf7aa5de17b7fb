package audit

import (
	"context"
	"log/slog"

	"campus/internal/shared/events"
)

// Topic carries every audit envelope the contexts publish.
const Topic = "campus.audit"

// Subscriber is the bus side the consumer needs.
type Subscriber interface {
	Subscribe(ctx context.Context, topic string, consumerGroup string, handler func(context.Context, events.Envelope) error) error
}

// Consumer writes one structured audit line per envelope.
type Consumer struct {
	Bus           Subscriber
	ConsumerGroup string
	Logger        *slog.Logger
}

func (c Consumer) Start(ctx context.Context) error {
	return c.Bus.Subscribe(ctx, Topic, c.ConsumerGroup, c.handle)
}

func (c Consumer) handle(_ context.Context, event events.Envelope) error {
	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("audit event",
		"event", "audit_event_recorded",
		"module", "internal/app/audit",
		"layer", "application",
		"event_id", event.EventID,
		"event_type", event.EventType,
		"source_service", event.SourceService,
		"entity_type", event.EntityType,
		"entity_id", event.EntityID,
		"occurred_at_utc", event.OccurredAtUTC,
	)
	return nil
}
