package domain

import (
	"github.com/google/uuid"
)

// PostMessageCommand is the inbound intent to publish a chat message.
// Commands are input-only and never persisted; only the events derived
// from them are.
type PostMessageCommand struct {
	UUID    uuid.UUID `json:"uuid"`
	UserID  string    `json:"userId" validate:"required,max=64"`
	Content string    `json:"content" validate:"required,max=2048"`
}

type GetMessagesCommand struct {
	Cursor *string
}

type FetchEventsCommand struct {
	UserID   string
	LastUUID *uuid.UUID
}
