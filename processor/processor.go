//go:generate go run go.uber.org/mock/mockgen -source=processor.go -destination=../mocks/mock_processor.go -package=mocks

// Package processor derives events from post-message commands: one
// MessagePosted, one Mention per handle found in the content, and a
// MessageRepeated when the content matches something already on record.
// Every event is durably stored before it is published.
package processor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/abadojack/whatlanggo"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"studychat/contract"
	"studychat/domain"
	"studychat/domain/event"
	"studychat/errors"
	"studychat/eventstore"
	"studychat/moderation"
)

// EventStore is the slice of the store the processor needs.
type EventStore interface {
	Append(ctx context.Context, kind event.Kind, payload []byte) (eventstore.Record, error)
	FindLatestByKindContaining(ctx context.Context, kind event.Kind, substring string) (eventstore.Record, bool, error)
	FindFirstByKindContaining(ctx context.Context, kind event.Kind, substring string) (eventstore.Record, bool, error)
	CountByKindContaining(ctx context.Context, kind event.Kind, substring string) (int, error)
}

type MessageProcessor struct {
	store     EventStore
	publisher contract.EventPublisher
	moderator *moderation.Moderator
	validate  *validator.Validate
	log       *slog.Logger
}

// New builds a processor. The moderator is optional; without one the
// content passes through unmasked.
func New(store EventStore, publisher contract.EventPublisher,
	moderator *moderation.Moderator, log *slog.Logger) *MessageProcessor {
	return &MessageProcessor{
		store:     store,
		publisher: publisher,
		moderator: moderator,
		validate:  validator.New(),
		log:       log,
	}
}

// Process turns a command into stored and published events. A failure
// aborts the command; events already stored by earlier steps of the same
// command stay stored, each individual append is all-or-nothing.
//
// The duplicate check is read-then-decide without serialization: two
// identical commands racing each other can both be recorded as fresh
// posts. Accepted; the store's ids stay monotonic regardless.
func (p *MessageProcessor) Process(ctx context.Context, cmd domain.PostMessageCommand) error {
	if err := p.validate.Struct(cmd); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidCommand, err)
	}
	p.log.Info("processing command", "cmdUuid", cmd.UUID, "user", cmd.UserID)

	content := cmd.Content
	if p.moderator != nil {
		censored, foundWords := p.moderator.Censor(content)
		if len(foundWords) > 0 {
			p.log.Debug("content censored", "words", len(foundWords))
		}
		content = censored
	}

	info := whatlanggo.Detect(content)
	posted := event.MessagePosted{
		Header: event.Header{
			UUID:      uuid.New(),
			CmdUUID:   cmd.UUID,
			UserID:    cmd.UserID,
			CreatedAt: time.Now().UTC(),
		},
		Content: content,
		Lang:    info.Lang.Iso6391(),
	}

	// Mentions are unconditional side effects of posting; they go out
	// before the repeat status of the content is known.
	for _, handle := range domain.ExtractMentions(content) {
		p.log.Debug("found mention", "mentionedUser", handle)
		mention := event.Mention{
			Header: event.Header{
				UUID:          uuid.New(),
				CausationUUID: lo.ToPtr(posted.UUID),
				CmdUUID:       cmd.UUID,
				UserID:        cmd.UserID,
				CreatedAt:     time.Now().UTC(),
			},
			MentionedUser: handle,
		}
		if _, err := p.saveAndPublish(ctx, mention); err != nil {
			return err
		}
	}

	_, dup, err := p.store.FindLatestByKindContaining(ctx, event.MessagePostedKind, content)
	if err != nil {
		return err
	}
	if !dup {
		_, err := p.saveAndPublish(ctx, posted)
		return err
	}
	return p.recordRepeat(ctx, cmd, posted)
}

func (p *MessageProcessor) recordRepeat(ctx context.Context, cmd domain.PostMessageCommand, posted event.MessagePosted) error {
	// The fresh posting is recorded for bookkeeping but withheld from
	// the publish channel; subscribers only see the repeat fact.
	if _, err := p.save(ctx, posted); err != nil {
		return err
	}

	original, err := p.originalPosting(ctx, posted)
	if err != nil {
		return err
	}
	count, err := p.store.CountByKindContaining(ctx, event.MessagePostedKind, posted.Content)
	if err != nil {
		return err
	}

	repeat := event.MessageRepeated{
		Header: event.Header{
			UUID:          uuid.New(),
			CausationUUID: lo.ToPtr(posted.UUID),
			CmdUUID:       cmd.UUID,
			UserID:        cmd.UserID,
			CreatedAt:     time.Now().UTC(),
		},
		Content:             posted.Content,
		OriginalMessageUUID: original,
		OccurCount:          count,
	}
	_, err = p.saveAndPublish(ctx, repeat)
	return err
}

// originalPosting resolves the uuid of the posting subscribers actually
// saw published. The earliest stored posting containing the content is
// always that one: a posting is only withheld when an even earlier match
// existed, which would contradict this one being earliest.
func (p *MessageProcessor) originalPosting(ctx context.Context, posted event.MessagePosted) (uuid.UUID, error) {
	record, ok, err := p.store.FindFirstByKindContaining(ctx, event.MessagePostedKind, posted.Content)
	if err != nil {
		return uuid.Nil, err
	}
	if !ok {
		return posted.UUID, nil
	}
	evt, err := event.Decode(record.Payload)
	if err != nil {
		return uuid.Nil, err
	}
	return evt.Head().UUID, nil
}

// save persists the event and returns a copy stamped with the surrogate
// id the store assigned.
func (p *MessageProcessor) save(ctx context.Context, e event.Event) (event.Event, error) {
	payload, err := event.Encode(e)
	if err != nil {
		return nil, err
	}
	record, err := p.store.Append(ctx, e.Kind(), payload)
	if err != nil {
		return nil, err
	}
	p.log.Debug("event stored", "kind", e.Kind(), "entityId", record.ID)
	return e.WithEntityID(record.ID), nil
}

// saveAndPublish enforces store-then-publish ordering: a subscriber must
// never observe an event that is not yet durably recorded.
func (p *MessageProcessor) saveAndPublish(ctx context.Context, e event.Event) (event.Event, error) {
	stored, err := p.save(ctx, e)
	if err != nil {
		return nil, err
	}
	if err := p.publisher.Publish(ctx, stored); err != nil {
		return nil, err
	}
	return stored, nil
}
