// Package domain contains core concepts of the chat system.
// This file defines the Message read model row and related rules.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message is a projection row: one visible line in a chat timeline.
// It is created when a MessagePosted event is applied and mutated only
// through OccurCount when a matching MessageRepeated arrives.
type Message struct {
	EventUUID    uuid.UUID
	CmdUUID      uuid.UUID
	SenderUserID string
	Content      string
	CreatedAt    time.Time
	EntityID     *uint64
	OccurCount   int
}
