//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"conference-lab/domain"
	"conference-lab/domain/event"
	"context"
	"reflect"
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
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
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

// EventSink receives every committed registry change. Implementations must be
// comparable, the fanout tracks slow sinks by value.
type EventSink interface {
	Consume(ctx context.Context, c event.Committed) error
}

// IRegistry tracks the sinks subscribed to registry changes.
type IRegistry interface {
	Subscribe(subscriberID string, sink EventSink)
	Unsubscribe(subscriberID string)
	Sinks() []EventSink
}

// IJournal is the session-scoped log of committed events.
type IJournal interface {
	Append(ctx context.Context, rec event.Record) error
	ListEvents(ctx context.Context, afterSeq uint64, limit int) ([]event.Record, error)
	Close() error
}

// SnapshotSource exposes the latest committed registry.
type SnapshotSource interface {
	Snapshot() domain.Registry
}

// IDispatcher is the single entry point for registry events.
type IDispatcher interface {
	SnapshotSource
	Submit(e event.Event) (uint64, error)
	Await(ctx context.Context, seq uint64) error
	Sync(ctx context.Context) error
}
