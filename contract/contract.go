//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"studychat/domain/event"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker
// lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink consumes published events and builds its own view of them.
// A sink must tolerate redelivery and out-of-order arrival; it can rely
// on per-producer order but nothing more.
type EventSink interface {
	Consume(ctx context.Context, e event.Event) error
}

// EventPublisher hands a durably stored event over for delivery to every
// subscribed sink. At-least-once, per-producer order preserved.
type EventPublisher interface {
	Publish(ctx context.Context, e event.Event) error
}

// IRegistry tracks per-user live subscriptions.
type IRegistry interface {
	Sinks() []EventSink
	Subscribe(userID string, sink EventSink)
	Unsubscribe(userID string)
}
