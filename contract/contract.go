//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
	Wait()
}

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

// ConnSink is the delivery end of one attached connection. Send is
// fire-and-forget: a sink that cannot keep up drops frames, and a sink
// whose connection is gone is simply unsubscribed by the transport.
type ConnSink interface {
	ID() string
	Send(payload []byte)
}

// IRegistry is the set of connections currently attached to one room.
type IRegistry interface {
	Subscribe(sink ConnSink)
	Unsubscribe(connID string)
	Sinks() []ConnSink
	Size() int
}

// Broadcaster fans an event out to every attached connection except
// those listed in exclude. Delivery is per-connection fire-and-forget.
type Broadcaster interface {
	Emit(event any, exclude ...string)
	EmitRaw(payload []byte, exclude ...string)
}
