package flowcanvas

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

// testNode builds a node with the given input and output port ids.
func testNode(id string, ins []string, outs []string) Node {
	n := Node{ID: id, Type: "test", Data: map[string]any{}}
	for i, p := range ins {
		n.Ports = append(n.Ports, Port{ID: p, Direction: DirectionIn, Label: p, Order: i})
	}
	for i, p := range outs {
		n.Ports = append(n.Ports, Port{ID: p, Direction: DirectionOut, Label: p, Order: i})
	}
	return n
}

// sequentialEdgeIDs returns an edge id allocator yielding edge-1, edge-2, ...
func sequentialEdgeIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("edge-%d", n)
	}
}

// newTestStore returns a store with deterministic edge ids and the given nodes.
func newTestStore(t *testing.T, nodes ...Node) *Store {
	t.Helper()
	s := NewStore(WithEdgeIDFunc(sequentialEdgeIDs()))
	for _, n := range nodes {
		require.NoError(t, s.AddNode(n))
	}
	return s
}

// recordChanges subscribes to s and returns a pointer to the collected changes.
func recordChanges(s *Store) *[]Change {
	var changes []Change
	s.Subscribe(func(c Change) { changes = append(changes, c) })
	return &changes
}
