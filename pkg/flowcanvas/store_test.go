package flowcanvas

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewStore verifies an empty store.
func TestNewStore(t *testing.T) {
	s := NewStore()
	assert.Empty(t, s.Nodes())
	assert.Empty(t, s.Edges())
	assert.Equal(t, uint64(0), s.Version())
}

// TestStore_GenerateID verifies per-prefix counters.
func TestStore_GenerateID(t *testing.T) {
	s := NewStore()
	assert.Equal(t, "input-1", s.GenerateID("input"))
	assert.Equal(t, "input-2", s.GenerateID("input"))
	assert.Equal(t, "llm-1", s.GenerateID("llm"))
	assert.Equal(t, "input-3", s.GenerateID("input"))
}

// TestStore_GenerateID_UniqueAcrossDeletes verifies ids are never reused after deletion.
func TestStore_GenerateID_UniqueAcrossDeletes(t *testing.T) {
	s := NewStore()
	seen := make(map[string]bool)

	for i := 0; i < 50; i++ {
		id := s.GenerateID("input")
		require.False(t, seen[id], "id %s returned twice", id)
		seen[id] = true

		require.NoError(t, s.AddNode(testNode(id, nil, []string{"value"})))
		if i%3 == 0 {
			_, err := s.RemoveNode(id)
			require.NoError(t, err)
		}
	}
	assert.Len(t, seen, 50)
}

// TestStore_GenerateID_SkipsExplicitIDs verifies generated ids avoid nodes added by hand.
func TestStore_GenerateID_SkipsExplicitIDs(t *testing.T) {
	s := newTestStore(t, testNode("text-1", nil, nil), testNode("text-2", nil, nil))
	assert.Equal(t, "text-3", s.GenerateID("text"))
}

// TestStore_GenerateID_SkipsDeletedExplicitIDs verifies an id held by a deleted node is not handed out.
func TestStore_GenerateID_SkipsDeletedExplicitIDs(t *testing.T) {
	s := newTestStore(t, testNode("text-1", nil, nil), testNode("text-3", nil, nil))
	_, err := s.RemoveNode("text-1")
	require.NoError(t, err)
	_, err = s.RemoveNode("text-3")
	require.NoError(t, err)

	assert.Equal(t, "text-2", s.GenerateID("text"))
	assert.Equal(t, "text-4", s.GenerateID("text"))
}

// TestStore_GenerateID_Concurrent verifies uniqueness under concurrent callers.
func TestStore_GenerateID_Concurrent(t *testing.T) {
	s := NewStore()
	const workers, per = 8, 100

	var mu sync.Mutex
	seen := make(map[string]bool)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < per; i++ {
				id := s.GenerateID("llm")
				mu.Lock()
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Len(t, seen, workers*per)
}

// TestStore_AddNode verifies insertion and defensive copying.
func TestStore_AddNode(t *testing.T) {
	s := NewStore()
	n := testNode("a", []string{"in"}, []string{"out"})
	n.Data = map[string]any{"text": "hi"}

	require.NoError(t, s.AddNode(n))
	n.Data["text"] = "mutated"
	n.Ports[0].Label = "mutated"

	got, ok := s.Node("a")
	require.True(t, ok)
	assert.Equal(t, "hi", got.Data["text"])
	assert.Equal(t, "in", got.Ports[0].Label)
	assert.Equal(t, uint64(1), s.Version())
}

// TestStore_AddNode_NilData verifies a nil data map is replaced with an empty one.
func TestStore_AddNode_NilData(t *testing.T) {
	s := newTestStore(t, Node{ID: "a", Type: "test"})
	got, _ := s.Node("a")
	assert.NotNil(t, got.Data)
}

// TestStore_AddNode_Errors verifies rejected nodes leave the store unchanged.
func TestStore_AddNode_Errors(t *testing.T) {
	tests := []struct {
		name string
		node Node
		want error
	}{
		{"empty id", Node{Type: "test"}, ErrInvalidNode},
		{"empty type", Node{ID: "x"}, ErrInvalidNode},
		{"existing id", testNode("a", nil, nil), ErrDuplicateID},
		{"duplicate port", testNode("b", []string{"p"}, []string{"p"}), ErrDuplicateID},
		{"empty port id", testNode("c", []string{""}, nil), ErrInvalidNode},
		{"bad direction", Node{ID: "d", Type: "test", Ports: []Port{{ID: "p", Direction: "sideways"}}}, ErrInvalidNode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t, testNode("a", nil, nil))
			before := s.Snapshot()

			err := s.AddNode(tt.node)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, before, s.Snapshot())
		})
	}
}

// TestStore_Connect verifies edge creation between an output and an input port.
func TestStore_Connect(t *testing.T) {
	s := newTestStore(t,
		testNode("a", nil, []string{"out"}),
		testNode("b", []string{"in"}, nil),
	)

	edge, err := s.Connect("a", "out", "b", "in")
	require.NoError(t, err)
	assert.Equal(t, "edge-1", edge.ID)
	assert.Equal(t, Edge{ID: "edge-1", Source: "a", SourcePort: "out", Target: "b", TargetPort: "in"}, edge)
	assert.Equal(t, []Edge{edge}, s.Edges())
}

// TestStore_Connect_DefaultEdgeID verifies the default allocator.
func TestStore_Connect_DefaultEdgeID(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.AddNode(testNode("a", nil, []string{"out"})))
	require.NoError(t, s.AddNode(testNode("b", []string{"in"}, nil)))

	e1, err := s.Connect("a", "out", "b", "in")
	require.NoError(t, err)
	assert.Regexp(t, `^edge-[0-9a-f-]{36}$`, e1.ID)
}

// TestStore_Connect_InvalidEndpoint verifies stale endpoints are rejected without side effects.
func TestStore_Connect_InvalidEndpoint(t *testing.T) {
	tests := []struct {
		name                                   string
		source, sourcePort, target, targetPort string
	}{
		{"missing target port", "a", "out", "b", "nonexistent-port"},
		{"missing source port", "a", "nope", "b", "in"},
		{"missing source node", "ghost", "out", "b", "in"},
		{"missing target node", "a", "out", "ghost", "in"},
		{"input as source", "b", "in", "a", "out"},
		{"output as target", "a", "out", "a", "out"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t,
				testNode("a", nil, []string{"out"}),
				testNode("b", []string{"in"}, nil),
			)
			_, err := s.Connect("a", "out", "b", "in")
			require.NoError(t, err)
			before := s.Edges()

			_, err = s.Connect(tt.source, tt.sourcePort, tt.target, tt.targetPort)
			assert.ErrorIs(t, err, ErrInvalidEndpoint)
			assert.Equal(t, before, s.Edges())

			var edgeErr *EdgeError
			require.True(t, errors.As(err, &edgeErr))
			assert.Equal(t, tt.targetPort, edgeErr.TargetPort)
			assert.Equal(t, "connect", edgeErr.Op)
		})
	}
}

// TestStore_Connect_Duplicate verifies identical connections are rejected.
func TestStore_Connect_Duplicate(t *testing.T) {
	s := newTestStore(t,
		testNode("a", nil, []string{"out"}),
		testNode("b", []string{"in", "in2"}, nil),
	)

	_, err := s.Connect("a", "out", "b", "in")
	require.NoError(t, err)

	_, err = s.Connect("a", "out", "b", "in")
	assert.ErrorIs(t, err, ErrDuplicateEdge)

	// Same nodes, different target port is a distinct edge.
	_, err = s.Connect("a", "out", "b", "in2")
	assert.NoError(t, err)
	assert.Len(t, s.Edges(), 2)
}

// TestStore_Connect_SelfLoop verifies a node may connect to itself.
func TestStore_Connect_SelfLoop(t *testing.T) {
	s := newTestStore(t, testNode("a", []string{"in"}, []string{"out"}))
	_, err := s.Connect("a", "out", "a", "in")
	assert.NoError(t, err)
}

// TestStore_Connect_IDCollision verifies a reused edge id is rejected.
func TestStore_Connect_IDCollision(t *testing.T) {
	s := NewStore(WithEdgeIDFunc(func() string { return "same" }))
	require.NoError(t, s.AddNode(testNode("a", nil, []string{"o1", "o2"})))
	require.NoError(t, s.AddNode(testNode("b", []string{"in"}, nil)))

	_, err := s.Connect("a", "o1", "b", "in")
	require.NoError(t, err)
	_, err = s.Connect("a", "o2", "b", "in")
	assert.ErrorIs(t, err, ErrDuplicateID)
	assert.Len(t, s.Edges(), 1)
}

// TestStore_ConnectWithData verifies edge metadata is copied.
func TestStore_ConnectWithData(t *testing.T) {
	s := newTestStore(t,
		testNode("a", nil, []string{"out"}),
		testNode("b", []string{"in"}, nil),
	)
	data := map[string]any{"animated": true}

	edge, err := s.ConnectWithData("a", "out", "b", "in", data)
	require.NoError(t, err)
	data["animated"] = false

	got, ok := s.Edge(edge.ID)
	require.True(t, ok)
	assert.Equal(t, true, got.Data["animated"])
}

// TestStore_RemoveNode_Cascade verifies every edge touching the node goes with it.
func TestStore_RemoveNode_Cascade(t *testing.T) {
	s := newTestStore(t,
		testNode("a", nil, []string{"out"}),
		testNode("b", []string{"in"}, []string{"out"}),
		testNode("c", []string{"in"}, nil),
	)
	e1, err := s.Connect("a", "out", "b", "in")
	require.NoError(t, err)
	e2, err := s.Connect("b", "out", "c", "in")
	require.NoError(t, err)

	removed, err := s.RemoveNode("a")
	require.NoError(t, err)
	assert.Equal(t, []Edge{e1}, removed)

	_, ok := s.Node("a")
	assert.False(t, ok)
	_, ok = s.Node("b")
	assert.True(t, ok)
	assert.Equal(t, []Edge{e2}, s.Edges())
	assert.Len(t, s.Nodes(), 2)
}

// TestStore_RemoveNode_SelfLoop verifies a self-loop is pruned once.
func TestStore_RemoveNode_SelfLoop(t *testing.T) {
	s := newTestStore(t, testNode("a", []string{"in"}, []string{"out"}))
	_, err := s.Connect("a", "out", "a", "in")
	require.NoError(t, err)

	removed, err := s.RemoveNode("a")
	require.NoError(t, err)
	assert.Len(t, removed, 1)
	assert.Empty(t, s.Edges())
}

// TestStore_RemoveNode_NotFound verifies removal of an absent node.
func TestStore_RemoveNode_NotFound(t *testing.T) {
	s := NewStore()
	_, err := s.RemoveNode("ghost")
	assert.ErrorIs(t, err, ErrNotFound)

	var nodeErr *NodeError
	require.ErrorAs(t, err, &nodeErr)
	assert.Equal(t, "ghost", nodeErr.NodeID)
	assert.Equal(t, uint64(0), s.Version())
}

// TestStore_RemoveEdge verifies removal of exactly one edge.
func TestStore_RemoveEdge(t *testing.T) {
	s := newTestStore(t,
		testNode("a", nil, []string{"out"}),
		testNode("b", []string{"in", "in2"}, nil),
	)
	e1, _ := s.Connect("a", "out", "b", "in")
	e2, _ := s.Connect("a", "out", "b", "in2")

	require.NoError(t, s.RemoveEdge(e1.ID))
	assert.Equal(t, []Edge{e2}, s.Edges())

	assert.ErrorIs(t, s.RemoveEdge(e1.ID), ErrNotFound)
}

// TestStore_SetNodePorts verifies port replacement and pruning of retired ports.
func TestStore_SetNodePorts(t *testing.T) {
	s := newTestStore(t,
		testNode("src", nil, []string{"value"}),
		testNode("tpl", []string{"var-a", "var-b"}, []string{"output"}),
		testNode("sink", []string{"value"}, nil),
	)
	ea, _ := s.Connect("src", "value", "tpl", "var-a")
	eb, _ := s.Connect("src", "value", "tpl", "var-b")
	eo, _ := s.Connect("tpl", "output", "sink", "value")

	removed, err := s.SetNodePorts("tpl", DirectionIn, []Port{
		{ID: "var-b", Label: "b", Order: 0},
		{ID: "var-c", Label: "c", Order: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, []Edge{ea}, removed)
	assert.Equal(t, []Edge{eb, eo}, s.Edges())

	tpl, _ := s.Node("tpl")
	assert.Equal(t, []Port{
		{ID: "var-b", Direction: DirectionIn, Label: "b", Order: 0},
		{ID: "var-c", Direction: DirectionIn, Label: "c", Order: 1},
	}, tpl.InputPorts())
	assert.Equal(t, []Port{{ID: "output", Direction: DirectionOut, Label: "output", Order: 0}}, tpl.OutputPorts())
}

// TestStore_SetNodePorts_Empty verifies clearing all inputs keeps the node and its outputs.
func TestStore_SetNodePorts_Empty(t *testing.T) {
	s := newTestStore(t,
		testNode("src", nil, []string{"value"}),
		testNode("tpl", []string{"var-name"}, []string{"output"}),
	)
	_, err := s.Connect("src", "value", "tpl", "var-name")
	require.NoError(t, err)

	removed, err := s.SetNodePorts("tpl", DirectionIn, nil)
	require.NoError(t, err)
	assert.Len(t, removed, 1)
	assert.Empty(t, s.Edges())

	tpl, ok := s.Node("tpl")
	require.True(t, ok)
	assert.Empty(t, tpl.InputPorts())
	assert.Len(t, tpl.OutputPorts(), 1)
}

// TestStore_SetNodePorts_Outputs verifies pruning on the source side.
func TestStore_SetNodePorts_Outputs(t *testing.T) {
	s := newTestStore(t,
		testNode("a", []string{"in"}, []string{"x", "y"}),
		testNode("b", []string{"in"}, nil),
	)
	ex, _ := s.Connect("a", "x", "b", "in")
	_, _ = s.Connect("a", "y", "b", "in")

	removed, err := s.SetNodePorts("a", DirectionOut, []Port{{ID: "x"}})
	require.NoError(t, err)
	assert.Len(t, removed, 1)
	assert.Equal(t, []Edge{ex}, s.Edges())
}

// TestStore_SetNodePorts_Unchanged verifies an identical port list is a silent no-op.
func TestStore_SetNodePorts_Unchanged(t *testing.T) {
	s := newTestStore(t, testNode("tpl", []string{"var-x"}, []string{"output"}))
	tpl, _ := s.Node("tpl")
	changes := recordChanges(s)
	version := s.Version()

	removed, err := s.SetNodePorts("tpl", DirectionIn, tpl.InputPorts())
	require.NoError(t, err)
	assert.Empty(t, removed)
	assert.Empty(t, *changes)
	assert.Equal(t, version, s.Version())
}

// TestStore_SetNodePorts_Errors verifies invalid replacements leave the node untouched.
func TestStore_SetNodePorts_Errors(t *testing.T) {
	tests := []struct {
		name   string
		nodeID string
		dir    Direction
		ports  []Port
		want   error
	}{
		{"missing node", "ghost", DirectionIn, nil, ErrNotFound},
		{"bad direction", "tpl", "up", nil, ErrInvalidNode},
		{"empty id", "tpl", DirectionIn, []Port{{ID: ""}}, ErrInvalidNode},
		{"repeated id", "tpl", DirectionIn, []Port{{ID: "var-a"}, {ID: "var-a"}}, ErrDuplicateID},
		{"collides with output", "tpl", DirectionIn, []Port{{ID: "output"}}, ErrDuplicateID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t,
				testNode("src", nil, []string{"value"}),
				testNode("tpl", []string{"var-x"}, []string{"output"}),
			)
			_, err := s.Connect("src", "value", "tpl", "var-x")
			require.NoError(t, err)
			before := s.Snapshot()

			_, err = s.SetNodePorts(tt.nodeID, tt.dir, tt.ports)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, before, s.Snapshot())
		})
	}
}

// TestStore_MoveNode verifies position updates.
func TestStore_MoveNode(t *testing.T) {
	s := newTestStore(t, testNode("a", nil, nil))
	changes := recordChanges(s)

	require.NoError(t, s.MoveNode("a", Position{X: 10, Y: 20}))
	got, _ := s.Node("a")
	assert.Equal(t, Position{X: 10, Y: 20}, got.Position)

	// Same position is not a change.
	require.NoError(t, s.MoveNode("a", Position{X: 10, Y: 20}))
	assert.Len(t, *changes, 1)

	assert.ErrorIs(t, s.MoveNode("ghost", Position{}), ErrNotFound)
}

// TestStore_UpdateNodeData verifies shallow merging.
func TestStore_UpdateNodeData(t *testing.T) {
	n := testNode("a", nil, nil)
	n.Data = map[string]any{"text": "{{input}}", "keep": 1}
	s := newTestStore(t, n)

	require.NoError(t, s.UpdateNodeData("a", map[string]any{"text": "{{name}}"}))
	got, _ := s.Node("a")
	assert.Equal(t, map[string]any{"text": "{{name}}", "keep": 1}, got.Data)

	assert.ErrorIs(t, s.UpdateNodeData("ghost", map[string]any{"x": 1}), ErrNotFound)
}

// TestStore_Snapshot verifies snapshots are detached from the store.
func TestStore_Snapshot(t *testing.T) {
	n := testNode("a", nil, []string{"out"})
	n.Data = map[string]any{"nested": map[string]any{"k": "v"}}
	s := newTestStore(t, n, testNode("b", []string{"in"}, nil))
	_, err := s.Connect("a", "out", "b", "in")
	require.NoError(t, err)

	snap := s.Snapshot()
	assert.Equal(t, s.Version(), snap.Version)
	assert.Len(t, snap.Nodes, 2)
	assert.Len(t, snap.Edges, 1)

	snap.Nodes[0].Data["nested"].(map[string]any)["k"] = "changed"
	got, _ := s.Node("a")
	assert.Equal(t, "v", got.Data["nested"].(map[string]any)["k"])
}

// TestStore_EdgesOf verifies filtering by node.
func TestStore_EdgesOf(t *testing.T) {
	s := newTestStore(t,
		testNode("a", nil, []string{"out"}),
		testNode("b", []string{"in"}, []string{"out"}),
		testNode("c", []string{"in"}, nil),
	)
	e1, _ := s.Connect("a", "out", "b", "in")
	e2, _ := s.Connect("b", "out", "c", "in")

	assert.Equal(t, []Edge{e1, e2}, s.EdgesOf("b"))
	assert.Equal(t, []Edge{e2}, s.EdgesOf("c"))
	assert.Empty(t, s.EdgesOf("ghost"))
}

// TestStore_Subscribe verifies changes arrive in commit order with cascade fallout.
func TestStore_Subscribe(t *testing.T) {
	s := newTestStore(t)
	changes := recordChanges(s)

	require.NoError(t, s.AddNode(testNode("a", nil, []string{"out"})))
	require.NoError(t, s.AddNode(testNode("b", []string{"in"}, nil)))
	edge, err := s.Connect("a", "out", "b", "in")
	require.NoError(t, err)
	_, err = s.RemoveNode("b")
	require.NoError(t, err)

	require.Len(t, *changes, 4)
	kinds := make([]ChangeKind, 0, 4)
	for i, c := range *changes {
		kinds = append(kinds, c.Kind)
		assert.Equal(t, uint64(i+1), c.Version)
	}
	assert.Equal(t, []ChangeKind{ChangeNodeAdded, ChangeNodeAdded, ChangeEdgeAdded, ChangeNodeRemoved}, kinds)
	assert.Equal(t, []Edge{edge}, (*changes)[3].Removed)
}

// TestStore_Subscribe_AfterCommit verifies subscribers observe the committed state.
func TestStore_Subscribe_AfterCommit(t *testing.T) {
	s := newTestStore(t)
	var seen []int
	s.Subscribe(func(c Change) {
		seen = append(seen, len(s.Nodes()))
	})

	require.NoError(t, s.AddNode(testNode("a", nil, nil)))
	require.NoError(t, s.AddNode(testNode("b", nil, nil)))
	assert.Equal(t, []int{1, 2}, seen)
}

// TestStore_Subscribe_ReadDuringConcurrentWrite verifies a subscriber that reads
// the store does not stall writers committing on other goroutines.
func TestStore_Subscribe_ReadDuringConcurrentWrite(t *testing.T) {
	s := NewStore()
	entered := make(chan struct{})
	var once sync.Once

	var mu sync.Mutex
	var versions []uint64
	var sizes []int
	s.Subscribe(func(c Change) {
		once.Do(func() {
			close(entered)
			time.Sleep(50 * time.Millisecond)
		})
		snap := s.Snapshot()
		mu.Lock()
		versions = append(versions, c.Version)
		sizes = append(sizes, len(snap.Nodes))
		mu.Unlock()
	})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		assert.NoError(t, s.AddNode(testNode("a", nil, nil)))
	}()
	go func() {
		defer wg.Done()
		<-entered
		assert.NoError(t, s.AddNode(testNode("b", nil, nil)))
	}()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("writers did not finish while a subscriber was reading")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []uint64{1, 2}, versions)
	assert.Equal(t, []int{2, 2}, sizes)
}

// TestStore_Subscribe_ConcurrentOrder verifies delivery follows version order
// under concurrent writers.
func TestStore_Subscribe_ConcurrentOrder(t *testing.T) {
	s := NewStore()
	var mu sync.Mutex
	var versions []uint64
	s.Subscribe(func(c Change) {
		_ = s.Version()
		mu.Lock()
		versions = append(versions, c.Version)
		mu.Unlock()
	})

	const writers = 32
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, s.AddNode(testNode(fmt.Sprintf("n-%d", i), nil, nil)))
		}(i)
	}
	wg.Wait()

	require.Len(t, versions, writers)
	for i, v := range versions {
		assert.Equal(t, uint64(i+1), v)
	}
}

// TestStore_Subscribe_RejectedMutation verifies failed mutations notify nobody.
func TestStore_Subscribe_RejectedMutation(t *testing.T) {
	s := newTestStore(t, testNode("a", nil, nil))
	changes := recordChanges(s)

	assert.Error(t, s.AddNode(testNode("a", nil, nil)))
	_, err := s.Connect("a", "x", "a", "y")
	assert.Error(t, err)
	assert.Empty(t, *changes)
}

// TestStore_Unsubscribe verifies unsubscribing stops delivery and is idempotent.
func TestStore_Unsubscribe(t *testing.T) {
	s := NewStore()
	count := 0
	unsubscribe := s.Subscribe(func(Change) { count++ })

	require.NoError(t, s.AddNode(testNode("a", nil, nil)))
	unsubscribe()
	unsubscribe()
	require.NoError(t, s.AddNode(testNode("b", nil, nil)))

	assert.Equal(t, 1, count)
}

// TestStore_Subscribe_Nil verifies a nil callback is ignored.
func TestStore_Subscribe_Nil(t *testing.T) {
	s := NewStore()
	unsubscribe := s.Subscribe(nil)
	assert.NotPanics(t, func() {
		require.NoError(t, s.AddNode(testNode("a", nil, nil)))
		unsubscribe()
	})
}

// TestStore_ConcurrentMutations verifies the invariants survive concurrent writers.
func TestStore_ConcurrentMutations(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.AddNode(testNode("hub", []string{"in"}, []string{"out"})))

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				id := fmt.Sprintf("n-%d-%d", w, i)
				if err := s.AddNode(testNode(id, []string{"in"}, []string{"out"})); err != nil {
					t.Error(err)
					return
				}
				_, _ = s.Connect("hub", "out", id, "in")
				_, _ = s.Connect(id, "out", "hub", "in")
				if i%2 == 0 {
					_, _ = s.RemoveNode(id)
				}
			}
		}(w)
	}
	wg.Wait()

	snap := s.Snapshot()
	live := make(map[string]Node, len(snap.Nodes))
	for _, n := range snap.Nodes {
		live[n.ID] = n
	}
	for _, e := range snap.Edges {
		src, ok := live[e.Source]
		require.True(t, ok, "edge %s has dangling source", e.ID)
		_, ok = src.Port(e.SourcePort)
		assert.True(t, ok)
		dst, ok := live[e.Target]
		require.True(t, ok, "edge %s has dangling target", e.ID)
		_, ok = dst.Port(e.TargetPort)
		assert.True(t, ok)
	}
	assert.Len(t, snap.Nodes, 1+8*12)
}
