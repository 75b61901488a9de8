// Package event defines the immutable facts derived from chat commands
// and the wire codec used to persist and publish them.
package event

import (
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	MessagePostedKind   Kind = "MESSAGE_POSTED"
	MentionKind         Kind = "MENTION"
	MessageRepeatedKind Kind = "MESSAGE_REPEATED"
)

// Header carries the fields shared by every event variant.
// EntityID stays nil until the event has been durably stored; subscribers
// therefore only ever observe events that already have one.
type Header struct {
	UUID          uuid.UUID  `json:"uuid"`
	CausationUUID *uuid.UUID `json:"causationUuid,omitempty"`
	CmdUUID       uuid.UUID  `json:"cmdUuid"`
	EntityID      *uint64    `json:"entityId,omitempty"`
	UserID        string     `json:"userId"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// Event is the tagged union of every fact this system can record.
type Event interface {
	Kind() Kind
	Head() Header
	// WithEntityID returns a copy carrying the surrogate id assigned by
	// the store. Events are values; the original is never mutated.
	WithEntityID(id uint64) Event
}

// MessagePosted records that a user published a message.
type MessagePosted struct {
	Header
	Content string `json:"content"`
	Lang    string `json:"lang,omitempty"`
}

func (e MessagePosted) Kind() Kind   { return MessagePostedKind }
func (e MessagePosted) Head() Header { return e.Header }
func (e MessagePosted) WithEntityID(id uint64) Event {
	e.EntityID = &id
	return e
}

// Mention records that a message referenced a user by handle. Its
// causation link always points at the MessagePosted it was derived from.
type Mention struct {
	Header
	MentionedUser string `json:"mentionedUser"`
}

func (e Mention) Kind() Kind   { return MentionKind }
func (e Mention) Head() Header { return e.Header }
func (e Mention) WithEntityID(id uint64) Event {
	e.EntityID = &id
	return e
}

// MessageRepeated records that freshly posted content matched content
// already on record. OriginalMessageUUID references the posting that
// subscribers saw published, so read models can merge the repeat into
// the existing row. OccurCount is the absolute occurrence total, which
// keeps counter updates idempotent under redelivery.
type MessageRepeated struct {
	Header
	Content             string    `json:"content"`
	OriginalMessageUUID uuid.UUID `json:"originalMessageUuid"`
	OccurCount          int       `json:"occurCount"`
}

func (e MessageRepeated) Kind() Kind   { return MessageRepeatedKind }
func (e MessageRepeated) Head() Header { return e.Header }
func (e MessageRepeated) WithEntityID(id uint64) Event {
	e.EntityID = &id
	return e
}
