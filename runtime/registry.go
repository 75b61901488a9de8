package runtime

import (
	"sync"

	"studychat/contract"
)

// Registry tracks live viewer sessions. Every sink receives every
// published event; a sink filters what concerns it (its own mentions,
// for instance) on its side.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]contract.EventSink
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]contract.EventSink)}
}

// Sinks returns the active session sinks. The slice is a copy; callers
// may iterate it without holding the registry lock.
func (r *Registry) Sinks() []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sinks := make([]contract.EventSink, 0, len(r.sessions))
	for _, sink := range r.sessions {
		sinks = append(sinks, sink)
	}
	return sinks
}

// Subscribe registers a user's live connection. A user reconnecting
// replaces their previous sink; the dropped one stops receiving events.
func (r *Registry) Subscribe(userID string, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[userID] = sink
}

// Unsubscribe removes a user's session.
func (r *Registry) Unsubscribe(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, userID)
}
