// Package events carries domain events from the service layer to
// live listeners: websocket dashboards and, optionally, RabbitMQ.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event is one state change. Type is one of the enum.Event* constants.
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data"`
}

func New(typ string, data any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       typ,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
}

// Publisher delivers events. Publish never fails the caller; delivery
// problems are logged by the implementation.
type Publisher interface {
	Publish(ctx context.Context, e Event)
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ctx context.Context, e Event)

func (f PublisherFunc) Publish(ctx context.Context, e Event) { f(ctx, e) }

// Fanout publishes every event to each publisher in turn.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, e Event) {
	for _, p := range f {
		if p != nil {
			p.Publish(ctx, e)
		}
	}
}

type Noop struct{}

func (Noop) Publish(context.Context, Event) {}
