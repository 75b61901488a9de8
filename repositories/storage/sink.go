// Package storage bridges the live event stream and the snapshot
// repository: it is the sink that keeps the durable read model current.
package storage

import (
	"context"
	"fmt"
	"log/slog"

	"studychat/contract"
	"studychat/domain/event"
	"studychat/repositories"
)

var _ contract.EventSink = DiskSink{}

type DiskSink struct {
	repository repositories.IMessageRepository
	log        *slog.Logger
}

func NewDiskSink(repository repositories.IMessageRepository, log *slog.Logger) DiskSink {
	return DiskSink{repository: repository, log: log}
}

func (d DiskSink) Consume(_ context.Context, e event.Event) error {
	switch evt := e.(type) {
	case event.MessagePosted:
		return d.repository.StoreMessage(toDiskMessage(evt))
	case event.MessageRepeated:
		return d.repository.UpdateOccurCount(evt.OriginalMessageUUID, evt.OccurCount)
	default:
		d.log.Debug(fmt.Sprintf("Not persisted event : %v", e.Kind()))
		return nil
	}
}

func toDiskMessage(evt event.MessagePosted) repositories.DiskMessage {
	return repositories.DiskMessage{
		EventUUID:  evt.UUID,
		CmdUUID:    evt.CmdUUID,
		Sender:     evt.UserID,
		Content:    evt.Content,
		EntityID:   evt.EntityID,
		At:         evt.CreatedAt,
		OccurCount: 1,
	}
}
