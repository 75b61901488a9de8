// Package projection builds local timelines by replaying observed
// events. A timeline is a pure function of the event stream prefix it
// has consumed plus the snapshot it was seeded with; it can always be
// rebuilt from scratch.
package projection

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"studychat/contract"
	"studychat/domain"
	"studychat/domain/event"
)

var _ contract.EventSink = (*Timeline)(nil)

// Timeline holds one viewer's chronological message list with live
// repeat counters. Rows are indexed by the uuid of the posting event so
// repeat events merge by key lookup; a separate slice keeps insertion
// order for rendering.
type Timeline struct {
	mu       sync.RWMutex
	owner    string
	log      *slog.Logger
	rows     map[uuid.UUID]*domain.Message
	order    []uuid.UUID
	lastSeen *uuid.UUID
	onNotify func(event.Mention)
}

func NewTimeline(owner string, log *slog.Logger) *Timeline {
	return &Timeline{
		owner: owner,
		log:   log,
		rows:  make(map[uuid.UUID]*domain.Message),
	}
}

// OnMention installs the hook invoked when a mention addressed to the
// timeline owner is consumed. Mentions for other users are ignored.
func (t *Timeline) OnMention(fn func(event.Mention)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onNotify = fn
}

// LoadInitial seeds the timeline from a snapshot before any live event
// is applied. Previous state is discarded.
func (t *Timeline) LoadInitial(messages []domain.Message) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.rows = make(map[uuid.UUID]*domain.Message, len(messages))
	t.order = t.order[:0]
	for _, message := range messages {
		if _, ok := t.rows[message.EventUUID]; ok {
			continue
		}
		row := message
		t.rows[message.EventUUID] = &row
		t.order = append(t.order, message.EventUUID)
	}
}

// Consume applies one event. It is idempotent for every kind: replayed
// postings do not duplicate rows, replayed repeats rewrite the same
// counter value. A repeat whose referent is unknown, evicted or not yet
// delivered, is a no-op rather than an error.
func (t *Timeline) Consume(_ context.Context, e event.Event) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch evt := e.(type) {
	case event.MessagePosted:
		if _, ok := t.rows[evt.UUID]; ok {
			t.log.Debug("replayed posting ignored", "uuid", evt.UUID)
			break
		}
		row := &domain.Message{
			EventUUID:    evt.UUID,
			CmdUUID:      evt.CmdUUID,
			SenderUserID: evt.UserID,
			Content:      evt.Content,
			CreatedAt:    time.Now().UTC(),
			EntityID:     evt.EntityID,
			OccurCount:   1,
		}
		t.rows[evt.UUID] = row
		t.order = append(t.order, evt.UUID)
	case event.Mention:
		if t.onNotify != nil && evt.MentionedUser == t.owner {
			t.onNotify(evt)
		}
	case event.MessageRepeated:
		row, ok := t.rows[evt.OriginalMessageUUID]
		if !ok {
			t.log.Debug("repeat for unknown message", "uuid", evt.OriginalMessageUUID)
			break
		}
		if evt.OccurCount > 0 {
			row.OccurCount = evt.OccurCount
		}
	default:
		// Never crash the consumer on an event it cannot dispatch.
		t.log.Warn("unrecognized event kind skipped", "kind", e.Kind())
		return nil
	}

	seen := e.Head().UUID
	t.lastSeen = &seen
	return nil
}

// Messages returns the rows in insertion order.
func (t *Timeline) Messages() []domain.Message {
	t.mu.RLock()
	defer t.mu.RUnlock()

	messages := make([]domain.Message, 0, len(t.order))
	for _, id := range t.order {
		messages = append(messages, *t.rows[id])
	}
	return messages
}

// LastSeen reports the uuid of the most recently consumed event, used
// as the incremental-fetch cursor. Nil until the first event arrives.
func (t *Timeline) LastSeen() *uuid.UUID {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.lastSeen == nil {
		return nil
	}
	seen := *t.lastSeen
	return &seen
}
