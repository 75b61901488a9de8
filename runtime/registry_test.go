package runtime

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"studychat/domain/event"
)

type namedSink struct {
	name string
}

func (s namedSink) Consume(ctx context.Context, e event.Event) error {
	return nil
}

func TestRegistry_Subscribe_One_Participant(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	sink := namedSink{name: "alice"}

	// Given no user is connected
	req.Empty(registry.Sinks())

	// When a participant subscribes
	registry.Subscribe("alice", sink)

	// Then
	req.Len(registry.Sinks(), 1)
	req.Contains(registry.Sinks(), sink)
}

func TestRegistry_Subscribe_Replaces_Previous_Session(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	oldSession := namedSink{name: "alice-1"}
	newSession := namedSink{name: "alice-2"}

	// Given a connected participant
	registry.Subscribe("alice", oldSession)

	// When the same participant reconnects
	registry.Subscribe("alice", newSession)

	// Then only the fresh session receives events
	sinks := registry.Sinks()
	req.Len(sinks, 1)
	req.Contains(sinks, newSession)
	req.NotContains(sinks, oldSession)
}

func TestRegistry_Unsubscribe(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	registry.Subscribe("alice", namedSink{name: "alice"})
	registry.Subscribe("bob", namedSink{name: "bob"})

	// When a participant unsubscribes
	registry.Unsubscribe("alice")

	// Then only the other one is left
	sinks := registry.Sinks()
	req.Len(sinks, 1)
	req.Contains(sinks, namedSink{name: "bob"})
}
