package messaging

import (
	"context"

	"github.com/google/uuid"

	"campus/internal/shared/events"
)

// TopicPublisher binds a bus to one topic and stamps event ids on the way
// out. It satisfies the EventPublisher port of each context.
type TopicPublisher struct {
	Bus   *Bus
	Topic string
}

func (p TopicPublisher) Publish(ctx context.Context, event events.Envelope) error {
	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}
	return p.Bus.Publish(ctx, p.Topic, event)
}
