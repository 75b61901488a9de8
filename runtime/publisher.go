package runtime

import (
	"context"
	"log/slog"

	"studychat/contract"
	"studychat/domain/event"
)

var _ contract.EventPublisher = (*ChannelPublisher)(nil)

// ChannelPublisher hands stored events to the fan-out worker over a
// buffered channel. Publishing is fire-and-forget from the producer's
// point of view: it never waits for any subscriber acknowledgment, only
// for buffer space. Per-producer emission order is preserved because a
// producer's sends on the channel are sequential.
type ChannelPublisher struct {
	events chan event.Event
	log    *slog.Logger
}

func NewChannelPublisher(bufferSize int, log *slog.Logger) *ChannelPublisher {
	return &ChannelPublisher{
		events: make(chan event.Event, bufferSize),
		log:    log,
	}
}

func (p *ChannelPublisher) Publish(ctx context.Context, e event.Event) error {
	select {
	case p.events <- e:
		p.log.Debug("event published", "kind", e.Kind(), "uuid", e.Head().UUID)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Events exposes the feed the fan-out worker drains.
func (p *ChannelPublisher) Events() <-chan event.Event {
	return p.events
}
