package processor

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"studychat/domain"
	"studychat/domain/event"
	"studychat/errors"
	"studychat/eventstore"
	"studychat/mocks"
)

func newProcessorUnderTest(t *testing.T) (*MessageProcessor, *mocks.MockEventStore, *[]event.Event) {
	t.Helper()
	ctrl := gomock.NewController(t)
	store := mocks.NewMockEventStore(ctrl)
	publisher := mocks.NewMockEventPublisher(ctrl)

	published := &[]event.Event{}
	publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, e event.Event) error {
			*published = append(*published, e)
			return nil
		}).AnyTimes()

	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	return New(store, publisher, nil, log), store, published
}

func storeAppendSequence(store *mocks.MockEventStore) *uint64 {
	next := new(uint64)
	store.EXPECT().Append(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, kind event.Kind, payload []byte) (eventstore.Record, error) {
			*next++
			return eventstore.Record{ID: *next, Kind: kind, Payload: payload}, nil
		}).AnyTimes()
	return next
}

func Test_Process_First_Post_Is_Published(t *testing.T) {
	req := require.New(t)
	proc, store, published := newProcessorUnderTest(t)
	storeAppendSequence(store)

	store.EXPECT().FindLatestByKindContaining(gomock.Any(), event.MessagePostedKind, "a brand new idea").
		Return(eventstore.Record{}, false, nil)

	cmd := domain.PostMessageCommand{UUID: uuid.New(), UserID: "alice", Content: "a brand new idea"}
	err := proc.Process(context.Background(), cmd)
	req.NoError(err)

	req.Len(*published, 1)
	posted, ok := (*published)[0].(event.MessagePosted)
	req.True(ok)
	req.Equal("a brand new idea", posted.Content)
	req.Equal(cmd.UUID, posted.CmdUUID)
	req.Equal("alice", posted.UserID)
	req.NotNil(posted.EntityID, "published events carry the surrogate id")
	req.Nil(posted.CausationUUID)
}

func Test_Process_Mentions_Published_Before_Posting_Outcome(t *testing.T) {
	req := require.New(t)
	proc, store, published := newProcessorUnderTest(t)
	storeAppendSequence(store)

	store.EXPECT().FindLatestByKindContaining(gomock.Any(), event.MessagePostedKind, gomock.Any()).
		Return(eventstore.Record{}, false, nil)

	cmd := domain.PostMessageCommand{UUID: uuid.New(), UserID: "u1", Content: "hi @u2"}
	err := proc.Process(context.Background(), cmd)
	req.NoError(err)

	req.Len(*published, 2)
	mention, ok := (*published)[0].(event.Mention)
	req.True(ok, "mention goes out first")
	req.Equal("u2", mention.MentionedUser)

	posted, ok := (*published)[1].(event.MessagePosted)
	req.True(ok)
	req.Equal("hi @u2", posted.Content)

	// The mention is causally linked to the posting it came from.
	req.NotNil(mention.CausationUUID)
	req.Equal(posted.UUID, *mention.CausationUUID)
}

func Test_Process_One_Mention_Event_Per_Occurrence(t *testing.T) {
	req := require.New(t)
	proc, store, published := newProcessorUnderTest(t)
	storeAppendSequence(store)

	store.EXPECT().FindLatestByKindContaining(gomock.Any(), event.MessagePostedKind, gomock.Any()).
		Return(eventstore.Record{}, false, nil)

	cmd := domain.PostMessageCommand{UUID: uuid.New(), UserID: "u1", Content: "hey @bob and again @bob"}
	err := proc.Process(context.Background(), cmd)
	req.NoError(err)

	req.Len(*published, 3)
	for _, e := range (*published)[:2] {
		mention, ok := e.(event.Mention)
		req.True(ok)
		req.Equal("bob", mention.MentionedUser)
	}
}

func Test_Process_Repeat_Withholds_Posting_And_Publishes_Repeat(t *testing.T) {
	req := require.New(t)
	proc, store, published := newProcessorUnderTest(t)
	storeAppendSequence(store)

	original := event.MessagePosted{
		Header: event.Header{
			UUID:      uuid.New(),
			CmdUUID:   uuid.New(),
			UserID:    "alice",
			CreatedAt: time.Now().UTC(),
		},
		Content: "same words",
	}
	originalPayload, err := event.Encode(original)
	req.NoError(err)

	store.EXPECT().FindLatestByKindContaining(gomock.Any(), event.MessagePostedKind, "same words").
		Return(eventstore.Record{ID: 1, Kind: event.MessagePostedKind, Payload: originalPayload}, true, nil)
	store.EXPECT().FindFirstByKindContaining(gomock.Any(), event.MessagePostedKind, "same words").
		Return(eventstore.Record{ID: 1, Kind: event.MessagePostedKind, Payload: originalPayload}, true, nil)
	store.EXPECT().CountByKindContaining(gomock.Any(), event.MessagePostedKind, "same words").
		Return(2, nil)

	cmd := domain.PostMessageCommand{UUID: uuid.New(), UserID: "bob", Content: "same words"}
	err = proc.Process(context.Background(), cmd)
	req.NoError(err)

	// The fresh posting is stored but never published; subscribers only
	// see the repeat fact.
	req.Len(*published, 1)
	repeat, ok := (*published)[0].(event.MessageRepeated)
	req.True(ok)
	req.Equal("same words", repeat.Content)
	req.Equal(original.UUID, repeat.OriginalMessageUUID)
	req.Equal(2, repeat.OccurCount)
	req.Equal("bob", repeat.UserID)
	req.NotNil(repeat.CausationUUID)
}

func Test_Process_Containment_Counts_As_Repeat(t *testing.T) {
	req := require.New(t)
	proc, store, published := newProcessorUnderTest(t)
	storeAppendSequence(store)

	original := event.MessagePosted{
		Header:  event.Header{UUID: uuid.New(), CmdUUID: uuid.New(), UserID: "alice", CreatedAt: time.Now().UTC()},
		Content: "hello world",
	}
	originalPayload, err := event.Encode(original)
	req.NoError(err)

	// "hello" is contained in the stored "hello world"; the store
	// reports a match even though the contents differ.
	store.EXPECT().FindLatestByKindContaining(gomock.Any(), event.MessagePostedKind, "hello").
		Return(eventstore.Record{ID: 1, Payload: originalPayload}, true, nil)
	store.EXPECT().FindFirstByKindContaining(gomock.Any(), event.MessagePostedKind, "hello").
		Return(eventstore.Record{ID: 1, Payload: originalPayload}, true, nil)
	store.EXPECT().CountByKindContaining(gomock.Any(), event.MessagePostedKind, "hello").
		Return(1, nil)

	cmd := domain.PostMessageCommand{UUID: uuid.New(), UserID: "bob", Content: "hello"}
	err = proc.Process(context.Background(), cmd)
	req.NoError(err)

	req.Len(*published, 1)
	repeat, ok := (*published)[0].(event.MessageRepeated)
	req.True(ok)
	req.Equal(original.UUID, repeat.OriginalMessageUUID)
}

func Test_Process_Rejects_Invalid_Command(t *testing.T) {
	req := require.New(t)
	proc, _, published := newProcessorUnderTest(t)

	tests := []struct {
		name string
		cmd  domain.PostMessageCommand
	}{
		{"empty content", domain.PostMessageCommand{UUID: uuid.New(), UserID: "alice"}},
		{"empty user", domain.PostMessageCommand{UUID: uuid.New(), Content: "hello"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := proc.Process(context.Background(), tt.cmd)
			require.ErrorIs(t, err, errors.ErrInvalidCommand)
		})
	}
	req.Empty(*published, "nothing is stored or published for a rejected command")
}

func Test_Process_Storage_Failure_Aborts_Command(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	store := mocks.NewMockEventStore(ctrl)
	publisher := mocks.NewMockEventPublisher(ctrl)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	proc := New(store, publisher, nil, log)

	store.EXPECT().FindLatestByKindContaining(gomock.Any(), event.MessagePostedKind, gomock.Any()).
		Return(eventstore.Record{}, false, nil)
	store.EXPECT().Append(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(eventstore.Record{}, errors.ErrStorage)
	// No Publish expectation: a failed append must never reach subscribers.

	cmd := domain.PostMessageCommand{UUID: uuid.New(), UserID: "alice", Content: "doomed"}
	err := proc.Process(context.Background(), cmd)
	req.ErrorIs(err, errors.ErrStorage)
}
