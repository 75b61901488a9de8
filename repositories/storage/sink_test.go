package storage

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"studychat/domain/event"
	"studychat/mocks"
	"studychat/repositories"
)

func Test_DiskSink_Persists_Postings(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	repository := mocks.NewMockIMessageRepository(ctrl)
	sink := NewDiskSink(repository, logs.GetLoggerFromLevel(slog.LevelDebug))

	posted := event.MessagePosted{
		Header: event.Header{
			UUID:      uuid.New(),
			CmdUUID:   uuid.New(),
			UserID:    "alice",
			CreatedAt: time.Now().UTC(),
		},
		Content: "hello world",
	}

	repository.EXPECT().StoreMessage(gomock.Any()).DoAndReturn(
		func(message repositories.DiskMessage) error {
			req.Equal(posted.UUID, message.EventUUID)
			req.Equal("alice", message.Sender)
			req.Equal("hello world", message.Content)
			req.Equal(1, message.OccurCount)
			return nil
		})

	req.NoError(sink.Consume(context.Background(), posted))
}

func Test_DiskSink_Applies_Repeats(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	repository := mocks.NewMockIMessageRepository(ctrl)
	sink := NewDiskSink(repository, logs.GetLoggerFromLevel(slog.LevelDebug))

	original := uuid.New()
	repeat := event.MessageRepeated{
		Header:              event.Header{UUID: uuid.New(), CmdUUID: uuid.New(), UserID: "bob", CreatedAt: time.Now().UTC()},
		Content:             "hello world",
		OriginalMessageUUID: original,
		OccurCount:          2,
	}

	repository.EXPECT().UpdateOccurCount(original, 2).Return(nil)
	req.NoError(sink.Consume(context.Background(), repeat))
}

func Test_DiskSink_Ignores_Mentions(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	repository := mocks.NewMockIMessageRepository(ctrl)
	sink := NewDiskSink(repository, logs.GetLoggerFromLevel(slog.LevelDebug))

	mention := event.Mention{
		Header:        event.Header{UUID: uuid.New(), CmdUUID: uuid.New(), UserID: "alice", CreatedAt: time.Now().UTC()},
		MentionedUser: "bob",
	}
	// No repository expectation: mentions are transient.
	req.NoError(sink.Consume(context.Background(), mention))
}
