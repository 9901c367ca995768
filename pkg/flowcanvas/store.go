package flowcanvas

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/randalmurphal/flowcanvas/pkg/flowcanvas/observability"
)

// Store is the single source of truth for the editor graph.
// Create with NewStore.
//
// All methods are safe for concurrent use. One RWMutex guards nodes and
// edges together, so a node or port removal and the edges it strands are
// deleted in one step; no reader ever sees a dangling edge.
//
// Every mutation either commits completely or returns an error and leaves
// the store unchanged.
type Store struct {
	mu        sync.RWMutex
	nodes     map[string]*Node
	nodeOrder []string
	edges     map[string]*Edge
	edgeOrder []string
	counters  map[string]int

	// everUsed holds every node id the store has held, so GenerateID
	// never hands out an id that belonged to a deleted node.
	everUsed map[string]struct{}
	version  uint64

	// notifyMu and turn deliver changes in version order without holding
	// mu, so subscribers can read the store while other writers commit.
	notifyMu  sync.Mutex
	turn      *sync.Cond
	delivered uint64
	subsMu    sync.RWMutex
	subs      []subscriber
	nextSubID uint64

	logger    *slog.Logger
	metrics   observability.MetricsRecorder
	newEdgeID func() string
}

// NewStore creates an empty store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		nodes:     make(map[string]*Node),
		edges:     make(map[string]*Edge),
		counters:  make(map[string]int),
		everUsed:  make(map[string]struct{}),
		metrics:   observability.NoopMetrics{},
		newEdgeID: func() string { return "edge-" + uuid.New().String() },
	}
	s.turn = sync.NewCond(&s.notifyMu)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GenerateID returns a fresh node id of the form "<prefix>-<n>".
// The counter for each prefix only moves forward, so an id is never handed
// out twice. Ids that any node has ever held, including nodes added with
// explicit ids and later deleted, are skipped.
func (s *Store) GenerateID(prefix string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	for {
		s.counters[prefix]++
		id := fmt.Sprintf("%s-%d", prefix, s.counters[prefix])
		if _, used := s.everUsed[id]; !used {
			return id
		}
	}
}

// AddNode inserts a node with its full port list.
//
// Returns ErrInvalidNode if the id or type is empty or a port is malformed,
// and ErrDuplicateID if the node id exists or two ports share an id.
func (s *Store) AddNode(n Node) error {
	s.mu.Lock()

	if err := s.validateNewNode(n); err != nil {
		s.mu.Unlock()
		return s.reject("add_node", err)
	}

	stored := n.Clone()
	if stored.Data == nil {
		stored.Data = make(map[string]any)
	}
	s.nodes[stored.ID] = &stored
	s.nodeOrder = append(s.nodeOrder, stored.ID)
	s.everUsed[stored.ID] = struct{}{}

	observability.LogNodeAdded(s.logger, stored.ID, stored.Type, len(stored.Ports))
	s.commit("add_node", Change{Kind: ChangeNodeAdded, NodeID: stored.ID})
	return nil
}

func (s *Store) validateNewNode(n Node) error {
	if n.ID == "" || n.Type == "" {
		return &NodeError{NodeID: n.ID, Op: "add_node", Err: fmt.Errorf("%w: id and type are required", ErrInvalidNode)}
	}
	if _, exists := s.nodes[n.ID]; exists {
		return &NodeError{NodeID: n.ID, Op: "add_node", Err: ErrDuplicateID}
	}

	seen := make(map[string]bool, len(n.Ports))
	for _, p := range n.Ports {
		if p.ID == "" || !p.Direction.Valid() {
			return &PortError{NodeID: n.ID, PortID: p.ID, Op: "add_node", Err: ErrInvalidNode}
		}
		if seen[p.ID] {
			return &PortError{NodeID: n.ID, PortID: p.ID, Op: "add_node", Err: ErrDuplicateID}
		}
		seen[p.ID] = true
	}
	return nil
}

// RemoveNode deletes a node and every edge whose source or target is that
// node, as one atomic step. The removed edges are returned.
//
// Returns ErrNotFound if the node does not exist; callers may treat that as
// already satisfied.
func (s *Store) RemoveNode(nodeID string) ([]Edge, error) {
	s.mu.Lock()

	if _, exists := s.nodes[nodeID]; !exists {
		s.mu.Unlock()
		return nil, s.reject("remove_node", &NodeError{NodeID: nodeID, Op: "remove_node", Err: ErrNotFound})
	}

	removed := s.pruneEdges(func(e *Edge) bool { return e.Touches(nodeID) })
	delete(s.nodes, nodeID)
	s.nodeOrder = deleteID(s.nodeOrder, nodeID)

	observability.LogNodeRemoved(s.logger, nodeID, len(removed))
	s.metrics.RecordEdgesPruned(context.Background(), "remove_node", len(removed))
	s.commit("remove_node", Change{Kind: ChangeNodeRemoved, NodeID: nodeID, Removed: removed})
	return removed, nil
}

// MoveNode updates a node's canvas position.
func (s *Store) MoveNode(nodeID string, pos Position) error {
	s.mu.Lock()

	n, exists := s.nodes[nodeID]
	if !exists {
		s.mu.Unlock()
		return s.reject("move_node", &NodeError{NodeID: nodeID, Op: "move_node", Err: ErrNotFound})
	}
	if n.Position == pos {
		s.mu.Unlock()
		return nil
	}
	n.Position = pos

	s.commit("move_node", Change{Kind: ChangeNodeMoved, NodeID: nodeID})
	return nil
}

// UpdateNodeData merges patch into the node's data map.
// Keys in patch overwrite existing keys; other keys are kept.
// An empty patch is a no-op.
func (s *Store) UpdateNodeData(nodeID string, patch map[string]any) error {
	s.mu.Lock()

	n, exists := s.nodes[nodeID]
	if !exists {
		s.mu.Unlock()
		return s.reject("update_node_data", &NodeError{NodeID: nodeID, Op: "update_node_data", Err: ErrNotFound})
	}
	if len(patch) == 0 {
		s.mu.Unlock()
		return nil
	}
	for k, v := range patch {
		n.Data[k] = cloneValue(v)
	}

	s.commit("update_node_data", Change{Kind: ChangeNodeDataChanged, NodeID: nodeID})
	return nil
}

// Connect creates an edge from an output port to an input port.
// See ConnectWithData.
func (s *Store) Connect(source, sourcePort, target, targetPort string) (Edge, error) {
	return s.ConnectWithData(source, sourcePort, target, targetPort, nil)
}

// ConnectWithData creates an edge carrying optional metadata.
//
// Both endpoints must exist: sourcePort must be an output port of source and
// targetPort an input port of target, otherwise ErrInvalidEndpoint is
// returned. An edge identical in all four endpoint fields to an existing one
// is rejected with ErrDuplicateEdge. Self-connections are permitted; cycle
// detection belongs to the external validation service.
func (s *Store) ConnectWithData(source, sourcePort, target, targetPort string, data map[string]any) (Edge, error) {
	edge := Edge{
		Source:     source,
		SourcePort: sourcePort,
		Target:     target,
		TargetPort: targetPort,
		Data:       cloneData(data),
	}
	edgeErr := func(err error) error {
		return &EdgeError{
			Source: source, SourcePort: sourcePort,
			Target: target, TargetPort: targetPort,
			Op: "connect", Err: err,
		}
	}

	s.mu.Lock()

	if !s.hasPort(source, sourcePort, DirectionOut) || !s.hasPort(target, targetPort, DirectionIn) {
		s.mu.Unlock()
		return Edge{}, s.reject("connect", edgeErr(ErrInvalidEndpoint))
	}
	for _, id := range s.edgeOrder {
		if s.edges[id].sameEndpoints(edge) {
			s.mu.Unlock()
			return Edge{}, s.reject("connect", edgeErr(ErrDuplicateEdge))
		}
	}

	edge.ID = s.newEdgeID()
	if _, exists := s.edges[edge.ID]; exists || edge.ID == "" {
		s.mu.Unlock()
		return Edge{}, s.reject("connect", &EdgeError{EdgeID: edge.ID, Op: "connect", Err: ErrDuplicateID})
	}
	stored := edge.Clone()
	s.edges[edge.ID] = &stored
	s.edgeOrder = append(s.edgeOrder, edge.ID)

	observability.LogEdgeAdded(s.logger, edge.ID, source, sourcePort, target, targetPort)
	s.commit("connect", Change{Kind: ChangeEdgeAdded, EdgeID: edge.ID, NodeID: target})
	return edge, nil
}

// hasPort reports whether nodeID has a port portID facing dir. Caller holds mu.
func (s *Store) hasPort(nodeID, portID string, dir Direction) bool {
	n, exists := s.nodes[nodeID]
	if !exists {
		return false
	}
	p, ok := n.Port(portID)
	return ok && p.Direction == dir
}

// RemoveEdge deletes exactly one edge.
// Returns ErrNotFound if it does not exist.
func (s *Store) RemoveEdge(edgeID string) error {
	s.mu.Lock()

	e, exists := s.edges[edgeID]
	if !exists {
		s.mu.Unlock()
		return s.reject("remove_edge", &EdgeError{EdgeID: edgeID, Op: "remove_edge", Err: ErrNotFound})
	}
	removed := e.Clone()
	delete(s.edges, edgeID)
	s.edgeOrder = deleteID(s.edgeOrder, edgeID)

	s.commit("remove_edge", Change{Kind: ChangeEdgeRemoved, EdgeID: edgeID, Removed: []Edge{removed}})
	return nil
}

// SetNodePorts replaces the node's ports of one direction with ports and, in
// the same step, removes every edge whose endpoint on this node names a port
// that is no longer present. The removed edges are returned.
//
// Each port's Direction is forced to dir. Ports with empty ids are rejected
// with ErrInvalidNode; ids repeated within ports or already used by the
// node's other direction are rejected with ErrDuplicateID.
//
// Replacing a port list with an identical one changes nothing and notifies
// no subscribers.
func (s *Store) SetNodePorts(nodeID string, dir Direction, ports []Port) ([]Edge, error) {
	s.mu.Lock()

	n, exists := s.nodes[nodeID]
	if !exists {
		s.mu.Unlock()
		return nil, s.reject("set_node_ports", &NodeError{NodeID: nodeID, Op: "set_node_ports", Err: ErrNotFound})
	}
	if !dir.Valid() {
		s.mu.Unlock()
		return nil, s.reject("set_node_ports", &NodeError{
			NodeID: nodeID, Op: "set_node_ports",
			Err: fmt.Errorf("%w: direction %q", ErrInvalidNode, dir),
		})
	}

	next, err := normalizePorts(n, dir, ports)
	if err != nil {
		s.mu.Unlock()
		return nil, s.reject("set_node_ports", err)
	}

	var kept []Port
	var current []Port
	for _, p := range n.Ports {
		if p.Direction == dir {
			current = append(current, p)
		} else {
			kept = append(kept, p)
		}
	}
	if slices.Equal(current, next) {
		s.mu.Unlock()
		return nil, nil
	}

	live := make(map[string]bool, len(next))
	for _, p := range next {
		live[p.ID] = true
	}
	removed := s.pruneEdges(func(e *Edge) bool {
		if dir == DirectionOut && e.Source == nodeID && !live[e.SourcePort] {
			return true
		}
		return dir == DirectionIn && e.Target == nodeID && !live[e.TargetPort]
	})
	n.Ports = append(kept, next...)

	observability.LogPortsReplaced(s.logger, nodeID, string(dir), len(next), len(removed))
	s.metrics.RecordEdgesPruned(context.Background(), "set_ports", len(removed))
	s.commit("set_node_ports", Change{Kind: ChangePortsChanged, NodeID: nodeID, Direction: dir, Removed: removed})
	return removed, nil
}

// normalizePorts validates a replacement port list for node n.
func normalizePorts(n *Node, dir Direction, ports []Port) ([]Port, error) {
	taken := make(map[string]bool, len(n.Ports))
	for _, p := range n.Ports {
		if p.Direction != dir {
			taken[p.ID] = true
		}
	}

	next := make([]Port, 0, len(ports))
	seen := make(map[string]bool, len(ports))
	for _, p := range ports {
		if p.ID == "" {
			return nil, &PortError{NodeID: n.ID, Op: "set_node_ports", Err: ErrInvalidNode}
		}
		if seen[p.ID] || taken[p.ID] {
			return nil, &PortError{NodeID: n.ID, PortID: p.ID, Op: "set_node_ports", Err: ErrDuplicateID}
		}
		seen[p.ID] = true
		p.Direction = dir
		next = append(next, p)
	}
	return next, nil
}

// pruneEdges removes every edge matching drop and returns copies of them in
// insertion order. Caller holds mu.
func (s *Store) pruneEdges(drop func(*Edge) bool) []Edge {
	var removed []Edge
	kept := s.edgeOrder[:0]
	for _, id := range s.edgeOrder {
		e := s.edges[id]
		if drop(e) {
			removed = append(removed, e.Clone())
			delete(s.edges, id)
			continue
		}
		kept = append(kept, id)
	}
	s.edgeOrder = kept
	return removed
}

// commit bumps the version, releases mu and notifies subscribers.
// Caller holds mu; commit returns with mu released.
//
// Delivery for version n waits until version n-1 has been delivered, so
// subscribers see changes in commit order while mu stays free for readers.
func (s *Store) commit(op string, c Change) {
	s.version++
	c.Version = s.version
	s.mu.Unlock()

	s.metrics.RecordMutation(context.Background(), op, nil)

	s.notifyMu.Lock()
	for s.delivered != c.Version-1 {
		s.turn.Wait()
	}
	s.notifyMu.Unlock()

	defer func() {
		s.notifyMu.Lock()
		s.delivered = c.Version
		s.notifyMu.Unlock()
		s.turn.Broadcast()
	}()
	s.publish(c)
}

// reject records a refused mutation and returns err unchanged.
func (s *Store) reject(op string, err error) error {
	s.metrics.RecordMutation(context.Background(), op, err)
	observability.LogMutationRejected(s.logger, op, err)
	return err
}

// Node returns a copy of the node with the given id.
func (s *Store) Node(nodeID string) (Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.nodes[nodeID]
	if !ok {
		return Node{}, false
	}
	return n.Clone(), true
}

// Edge returns a copy of the edge with the given id.
func (s *Store) Edge(edgeID string) (Edge, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.edges[edgeID]
	if !ok {
		return Edge{}, false
	}
	return e.Clone(), true
}

// Nodes returns copies of all nodes in insertion order.
func (s *Store) Nodes() []Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nodesLocked()
}

// Edges returns copies of all edges in insertion order.
func (s *Store) Edges() []Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.edgesLocked(nil)
}

// EdgesOf returns copies of the edges touching nodeID.
func (s *Store) EdgesOf(nodeID string) []Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.edgesLocked(func(e *Edge) bool { return e.Touches(nodeID) })
}

// Snapshot returns a consistent copy of all nodes and edges.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Version: s.version,
		Nodes:   s.nodesLocked(),
		Edges:   s.edgesLocked(nil),
	}
}

// Version returns the number of committed mutations.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

func (s *Store) nodesLocked() []Node {
	out := make([]Node, 0, len(s.nodeOrder))
	for _, id := range s.nodeOrder {
		out = append(out, s.nodes[id].Clone())
	}
	return out
}

func (s *Store) edgesLocked(keep func(*Edge) bool) []Edge {
	out := make([]Edge, 0, len(s.edgeOrder))
	for _, id := range s.edgeOrder {
		e := s.edges[id]
		if keep == nil || keep(e) {
			out = append(out, e.Clone())
		}
	}
	return out
}

func deleteID(ids []string, id string) []string {
	if i := slices.Index(ids, id); i >= 0 {
		return slices.Delete(ids, i, i+1)
	}
	return ids
}
