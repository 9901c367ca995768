package event

import (
	"context"

	"github.com/randalmurphal/flowcanvas/pkg/flowcanvas"
)

// SourceStore is the Source of events produced from store changes.
const SourceStore = "store"

// Graph event types, one per flowcanvas.ChangeKind.
const (
	TypeNodeAdded       = "graph.node_added"
	TypeNodeRemoved     = "graph.node_removed"
	TypeNodeMoved       = "graph.node_moved"
	TypeNodeDataChanged = "graph.node_data_changed"
	TypePortsChanged    = "graph.ports_changed"
	TypeEdgeAdded       = "graph.edge_added"
	TypeEdgeRemoved     = "graph.edge_removed"
)

// GraphEvent is an event carrying a committed store change.
type GraphEvent = BaseEvent[flowcanvas.Change]

// TypeOf returns the event type for a change kind.
func TypeOf(kind flowcanvas.ChangeKind) string {
	return "graph." + string(kind)
}

// FromChange wraps a store change in an event.
func FromChange(c flowcanvas.Change) *GraphEvent {
	return New(TypeOf(c.Kind), SourceStore, c)
}

// Publisher is the subset of Bus that Bridge needs.
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}

// Bridge publishes every change committed to store until the returned
// function is called. Publishing runs on the mutating goroutine, so a
// blocking bus stalls writers while a subscriber's buffer is full; pair
// Bridge with a NonBlocking bus when subscribers may be slow.
//
// Publish errors (a closed bus) are ignored.
func Bridge(store *flowcanvas.Store, bus Publisher) (stop func()) {
	return store.Subscribe(func(c flowcanvas.Change) {
		evt := FromChange(c)
		// Encode before fan-out so subscribers only read the cached bytes.
		evt.DataBytes()
		_ = bus.Publish(context.Background(), evt)
	})
}
