package internal

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"studychat/domain/event"
	"studychat/eventstore"
)

func Test_DefaultMapper_Decodes_Stored_Record(t *testing.T) {
	req := require.New(t)

	// Given a record exactly as the store persists it
	posted := event.MessagePosted{
		Header: event.Header{
			UUID:      uuid.New(),
			CmdUUID:   uuid.New(),
			UserID:    "alice",
			CreatedAt: time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
		},
		Content: "hello world",
	}
	payload, err := event.Encode(posted)
	req.NoError(err)
	raw, err := json.Marshal(eventstore.Record{ID: 1, Kind: posted.Kind(), Payload: payload})
	req.NoError(err)

	// When
	row := DefaultMapper("event:0000000000000000001", raw)

	// Then
	req.Equal("event:0000000000000000001", row.Key)
	req.Equal("MESSAGE_POSTED", row.Kind)
	req.Equal("09:26:53", row.Timestamp)
	req.Equal(posted.UUID.String()[:8], row.EventUUID)
	req.Equal("alice", row.UserID)
	req.Equal("hello world", row.Detail)
}

func Test_DefaultMapper_Keeps_Size_Detail_Without_Content(t *testing.T) {
	req := require.New(t)

	mention := event.Mention{
		Header: event.Header{
			UUID:      uuid.New(),
			CmdUUID:   uuid.New(),
			UserID:    "alice",
			CreatedAt: time.Date(2026, 3, 14, 9, 27, 0, 0, time.UTC),
		},
		MentionedUser: "bob",
	}
	payload, err := event.Encode(mention)
	req.NoError(err)
	raw, err := json.Marshal(eventstore.Record{ID: 2, Kind: mention.Kind(), Payload: payload})
	req.NoError(err)

	row := DefaultMapper("event:0000000000000000002", raw)

	req.Equal("MENTION", row.Kind)
	req.Equal("alice", row.UserID)
	req.Contains(row.Detail, "bytes")
}

func Test_DefaultMapper_Falls_Back_On_Garbage(t *testing.T) {
	req := require.New(t)

	row := DefaultMapper("event:junk", []byte("not json"))

	req.Equal("RAW", row.Kind)
	req.Equal("--:--:--", row.Timestamp)
	req.Equal("-", row.UserID)
	req.Equal("Size: 8 bytes", row.Detail)
}
