// Package event distributes graph changes to asynchronous consumers.
//
// A Store notifies its subscribers synchronously on the mutating goroutine.
// Consumers that may be slow, such as streaming HTTP clients, attach through
// a Bus instead: Bridge turns every committed Change into an Event and
// publishes it, and each Bus subscription drains its own buffered channel on
// its own goroutine.
//
//	bus := event.NewBus(event.BusConfig{NonBlocking: true})
//	defer bus.Close()
//	stop := event.Bridge(store, bus)
//	defer stop()
//
//	sub := bus.SubscribeAll(event.HandlerFunc(func(ctx context.Context, evt event.Event) error {
//	    fmt.Println(evt.Type())
//	    return nil
//	}))
//	defer sub.Unsubscribe()
package event

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event is an immutable notification delivered through a Bus.
type Event interface {
	ID() string     // Unique event identifier
	Type() string   // Event type (e.g., "graph.node_added")
	Source() string // Component that emitted the event

	Timestamp() time.Time // When the event was created
	Version() int         // Schema version for evolution

	Data() any         // Payload
	DataBytes() []byte // Serialized payload for transport
}

// Metadata contains common event metadata fields.
type Metadata struct {
	EventID       string    `json:"id"`
	EventType     string    `json:"type"`
	EventSource   string    `json:"source"`
	Timestamp     time.Time `json:"timestamp"`
	SchemaVersion int       `json:"schema_version"`
}

// BaseEvent provides a generic event implementation.
// T is the payload type for type-safe access.
type BaseEvent[T any] struct {
	Meta    Metadata `json:"metadata"`
	Payload T        `json:"payload"`

	cachedBytes []byte
}

// ID returns the unique event identifier.
func (e *BaseEvent[T]) ID() string {
	return e.Meta.EventID
}

// Type returns the event type.
func (e *BaseEvent[T]) Type() string {
	return e.Meta.EventType
}

// Source returns the event source.
func (e *BaseEvent[T]) Source() string {
	return e.Meta.EventSource
}

// Timestamp returns when the event was created.
func (e *BaseEvent[T]) Timestamp() time.Time {
	return e.Meta.Timestamp
}

// Version returns the schema version.
func (e *BaseEvent[T]) Version() int {
	return e.Meta.SchemaVersion
}

// Data returns the event payload.
func (e *BaseEvent[T]) Data() any {
	return e.Payload
}

// TypedData returns the strongly-typed payload.
func (e *BaseEvent[T]) TypedData() T {
	return e.Payload
}

// DataBytes returns the JSON-encoded payload, computed once.
// Events are shared between subscriptions; call DataBytes before publishing
// if several goroutines will read it.
func (e *BaseEvent[T]) DataBytes() []byte {
	if e.cachedBytes == nil {
		e.cachedBytes, _ = json.Marshal(e.Payload)
	}
	return e.cachedBytes
}

// EventOption configures event creation.
type EventOption func(*Metadata)

// WithVersion sets the schema version.
func WithVersion(v int) EventOption {
	return func(m *Metadata) {
		m.SchemaVersion = v
	}
}

// WithTimestamp overrides the creation time.
func WithTimestamp(t time.Time) EventOption {
	return func(m *Metadata) {
		m.Timestamp = t
	}
}

// New creates an event with a fresh ID and the current time.
func New[T any](eventType, source string, payload T, opts ...EventOption) *BaseEvent[T] {
	meta := Metadata{
		EventID:       uuid.New().String(),
		EventType:     eventType,
		EventSource:   source,
		Timestamp:     time.Now().UTC(),
		SchemaVersion: 1,
	}
	for _, opt := range opts {
		opt(&meta)
	}
	return &BaseEvent[T]{Meta: meta, Payload: payload}
}

// Handler processes events delivered by a Bus.
type Handler interface {
	Handle(ctx context.Context, evt Event) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, evt Event) error

// Handle implements Handler.
func (f HandlerFunc) Handle(ctx context.Context, evt Event) error {
	return f(ctx, evt)
}
