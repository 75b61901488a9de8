package workers

import (
	"context"
	"log/slog"
	"time"

	"studychat/contract"
	"studychat/domain/event"
)

var _ contract.Worker = (*EventFanout)(nil)

// EventFanout drains the publish channel and delivers each event to the
// permanent sinks (snapshot store, server-side projection) plus every
// live session sink from the registry.
//
// Delivery is at-least-once per sink and preserves the producer's
// emission order; a slow sink is cut off by the per-sink timeout so it
// cannot stall the stream for everyone else. A failing sink is logged
// and skipped, never retried here.
type EventFanout struct {
	log         *slog.Logger
	events      <-chan event.Event
	permanent   []contract.EventSink
	registry    contract.IRegistry
	sinkTimeout time.Duration
}

func NewEventFanout(log *slog.Logger, events <-chan event.Event,
	permanent []contract.EventSink, registry contract.IRegistry,
	sinkTimeout time.Duration) *EventFanout {
	return &EventFanout{
		log:         log,
		events:      events,
		permanent:   permanent,
		registry:    registry,
		sinkTimeout: sinkTimeout,
	}
}

func (w *EventFanout) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping fanout")
			return nil
		case evt, ok := <-w.events:
			if !ok {
				w.log.Debug("Event channel closed")
				return nil
			}
			w.Fanout(ctx, evt)
		}
	}
}

// Fanout delivers one event to every sink.
func (w *EventFanout) Fanout(ctx context.Context, evt event.Event) {
	sinks := append([]contract.EventSink{}, w.permanent...)
	if w.registry != nil {
		sinks = append(sinks, w.registry.Sinks()...)
	}

	for _, sink := range sinks {
		sinkCtx, cancel := context.WithTimeout(ctx, w.sinkTimeout)
		if err := sink.Consume(sinkCtx, evt); err != nil {
			w.log.Warn("sink failed to consume event",
				"kind", evt.Kind(), "uuid", evt.Head().UUID, "error", err)
		}
		cancel()
	}
}
