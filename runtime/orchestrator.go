package runtime

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"

	"studychat/contract"
	"studychat/domain"
	"studychat/domain/event"
	"studychat/eventstore"
	"studychat/moderation"
	"studychat/processor"
	"studychat/projection"
	"studychat/repositories"
	"studychat/repositories/storage"
	"studychat/runtime/workers"
)

//go:embed censored/*
var censoredFolder embed.FS

type Orchestrator struct {
	mu              sync.Mutex
	log             *slog.Logger
	supervisor      contract.ISupervisor
	registry        contract.IRegistry
	store           *eventstore.Store
	repository      repositories.IMessageRepository
	processor       *processor.MessageProcessor
	timeline        *projection.Timeline
	permanentSinks  []contract.EventSink
	bufferSize      int
	sinkTimeout     time.Duration
	metricInterval  time.Duration
	charReplacement rune
}

func NewOrchestrator(log *slog.Logger, supervisor *workers.Supervisor,
	registry *Registry, store *eventstore.Store,
	repository repositories.IMessageRepository,
	bufferSize int, sinkTimeout, metricInterval time.Duration,
	charReplacement rune) *Orchestrator {
	return &Orchestrator{
		log:             log,
		supervisor:      supervisor,
		registry:        registry,
		store:           store,
		repository:      repository,
		bufferSize:      bufferSize,
		sinkTimeout:     sinkTimeout,
		metricInterval:  metricInterval,
		charReplacement: charReplacement,
	}
}

// Add registers extra permanent sinks before Start. Permanent sinks
// receive every published event for the lifetime of the process.
func (o *Orchestrator) Add(sinks ...contract.EventSink) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.permanentSinks = append(o.permanentSinks, sinks...)
}

// PostMessage runs the command in the caller's goroutine so derivation
// and storage failures surface synchronously. Commands from concurrent
// callers proceed independently; nothing serializes them.
func (o *Orchestrator) PostMessage(ctx context.Context, cmd domain.PostMessageCommand) error {
	return o.processor.Process(ctx, cmd)
}

// GetMessages serves a page of the snapshot read model, newest first.
func (o *Orchestrator) GetMessages(cmd domain.GetMessagesCommand) ([]domain.Message, *string, error) {
	messages, cursor, err := o.repository.GetMessages(cmd.Cursor)
	return fromDiskMessages(messages), cursor, err
}

// AllMessages returns the full snapshot oldest first, the seed for a
// cold-starting projection.
func (o *Orchestrator) AllMessages() ([]domain.Message, error) {
	messages, err := o.repository.GetAllMessages()
	return fromDiskMessages(messages), err
}

// EventsSince replays stored events for incremental catch-up.
func (o *Orchestrator) EventsSince(ctx context.Context, cmd domain.FetchEventsCommand) ([]event.Event, error) {
	return o.store.EventsSince(ctx, cmd.UserID, cmd.LastUUID)
}

func fromDiskMessages(messages []repositories.DiskMessage) []domain.Message {
	return lo.Map(messages, func(item repositories.DiskMessage, _ int) domain.Message {
		return domain.Message{
			EventUUID:    item.EventUUID,
			CmdUUID:      item.CmdUUID,
			SenderUserID: item.Sender,
			Content:      item.Content,
			CreatedAt:    item.At,
			EntityID:     item.EntityID,
			OccurCount:   item.OccurCount,
		}
	})
}

// RegisterParticipant connects a viewer's live sink.
func (o *Orchestrator) RegisterParticipant(userID string, sink contract.EventSink) {
	o.registry.Subscribe(userID, sink)
}

// UnregisterParticipant disconnects a viewer.
func (o *Orchestrator) UnregisterParticipant(userID string) {
	o.registry.Unsubscribe(userID)
}

// Start prepares moderation, the processor pipeline and the supervised
// workers, then launches supervision in the background. Heavy work
// (dictionary load, automaton build) happens before the short critical
// section that mutates orchestrator state.
func (o *Orchestrator) Start(ctx context.Context) error {
	moderator, err := o.prepareModeration("censored", o.charReplacement)
	if err != nil {
		return err
	}

	publisher := NewChannelPublisher(o.bufferSize, o.log)
	fanoutWorker, newSinks := o.preparePipeline(publisher)
	telemetryWorker := workers.NewTelemetryWorker(o.log, o.metricInterval)

	o.mu.Lock()
	o.processor = processor.New(o.store, publisher, moderator, o.log)
	o.permanentSinks = append(o.permanentSinks, newSinks...)
	o.supervisor.Add(fanoutWorker)
	o.supervisor.Add(telemetryWorker)
	o.mu.Unlock()

	o.log.Info("Starting orchestrator and all supervised workers")
	go o.supervisor.Run(ctx)
	return nil
}

// prepareModeration loads the embedded dictionaries and builds the
// Aho-Corasick automaton.
func (o *Orchestrator) prepareModeration(path string, charReplacement rune) (*moderation.Moderator, error) {
	data, err := LoadCensoredWords(censoredFolder, path)
	if err != nil {
		return nil, err
	}

	o.log.Info(fmt.Sprintf("%d censored files loaded [%s]",
		len(data.Languages), strings.Join(data.Languages, ",")))
	o.log.Info(fmt.Sprintf("%d unique censored words loaded", len(data.Words)))

	return moderation.NewModerator(data.Words, charReplacement)
}

// preparePipeline builds the permanent sinks and the fan-out worker
// draining the publish channel into them.
func (o *Orchestrator) preparePipeline(publisher *ChannelPublisher) (contract.Worker, []contract.EventSink) {
	o.timeline = projection.NewTimeline("", o.log)
	newSinks := []contract.EventSink{
		o.timeline,
		storage.NewDiskSink(o.repository, o.log),
	}

	allSinks := append(o.permanentSinks, newSinks...)
	fanoutWorker := workers.NewEventFanout(
		o.log, publisher.Events(), allSinks, o.registry, o.sinkTimeout)

	return fanoutWorker, newSinks
}

// Stats feeds the debug inspector with live process-level counters.
func (o *Orchestrator) Stats() map[string]any {
	stats := map[string]any{
		"LiveSessions": len(o.registry.Sinks()),
	}
	if o.timeline != nil {
		stats["TimelineRows"] = len(o.timeline.Messages())
		if last := o.timeline.LastSeen(); last != nil {
			stats["LastEventUUID"] = last.String()
		}
	}
	return stats
}

// Stop cancels supervision; workers drain and exit.
func (o *Orchestrator) Stop() {
	o.log.Info("Requesting orchestrator shutdown")
	o.supervisor.Stop()
}
