// Package portsync keeps template node input ports in step with their text.
//
// Each Sync call arms a per-node timer. Another call for the same node
// before the quiet period ends replaces the pending text and restarts the
// timer, so a burst of edits costs one recomputation against the last text.
// When the timer fires the text is parsed and the node's "var-<name>" input
// ports are rewritten through the store, which drops edges on retired ports
// in the same step.
package portsync

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/randalmurphal/flowcanvas/pkg/flowcanvas"
	"github.com/randalmurphal/flowcanvas/pkg/flowcanvas/nodes"
	"github.com/randalmurphal/flowcanvas/pkg/flowcanvas/observability"
	"github.com/randalmurphal/flowcanvas/pkg/flowcanvas/template"
)

// DefaultQuietPeriod is how long a node's text must stay unchanged before
// its ports are recomputed.
const DefaultQuietPeriod = 180 * time.Millisecond

// Ports is the store surface the synchronizer writes through.
// *flowcanvas.Store implements it.
type Ports interface {
	SetNodePorts(nodeID string, dir flowcanvas.Direction, ports []flowcanvas.Port) ([]flowcanvas.Edge, error)
	UpdateNodeData(nodeID string, patch map[string]any) error
	Subscribe(fn func(flowcanvas.Change)) (unsubscribe func())
}

// Stats counts synchronizer activity since creation.
type Stats struct {
	// Scheduled is the number of Sync calls accepted.
	Scheduled int `json:"scheduled"`
	// Coalesced is the number of pending recomputations replaced by a newer Sync.
	Coalesced int `json:"coalesced"`
	// Recomputed is the number of times text was parsed and applied.
	Recomputed int `json:"recomputed"`
	// PortWrites is the number of SetNodePorts calls that were issued.
	PortWrites int `json:"port_writes"`
	// EdgesPruned is the number of edges removed by those writes.
	EdgesPruned int `json:"edges_pruned"`
}

// pending is a scheduled recomputation.
type pending struct {
	timer *time.Timer
	text  string
	gen   uint64
}

// applied is the last state written for a node.
type applied struct {
	gen    uint64
	text   string
	ports  []flowcanvas.Port
	result template.Result
}

// Synchronizer debounces template text edits into port updates.
// Create with New. Safe for concurrent use.
type Synchronizer struct {
	store   Ports
	quiet   time.Duration
	logger  *slog.Logger
	metrics observability.MetricsRecorder
	spans   observability.SpanManager

	mu      sync.Mutex
	pending map[string]*pending
	applied map[string]applied
	gen     uint64
	stats   Stats
	closed  bool

	// applyMu serializes recomputations so store writes happen one at a time.
	applyMu sync.Mutex

	unsubscribe func()
}

// New creates a synchronizer writing to store.
// It subscribes to store so removed nodes lose their pending work.
func New(store Ports, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		store:   store,
		quiet:   DefaultQuietPeriod,
		metrics: observability.NoopMetrics{},
		spans:   observability.NoopSpanManager{},
		pending: make(map[string]*pending),
		applied: make(map[string]applied),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.unsubscribe = store.Subscribe(s.onChange)
	return s
}

// Sync schedules a recomputation of nodeID's ports from text.
// A pending recomputation for the same node is canceled and replaced.
// Calls after Close are ignored.
func (s *Synchronizer) Sync(nodeID, text string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}

	s.stats.Scheduled++
	prev, replaced := s.pending[nodeID]
	if replaced {
		prev.timer.Stop()
		s.stats.Coalesced++
	}

	s.gen++
	gen := s.gen
	p := &pending{text: text, gen: gen}
	p.timer = time.AfterFunc(s.quiet, func() { s.fire(nodeID, gen) })
	s.pending[nodeID] = p
	s.mu.Unlock()

	observability.LogSyncScheduled(s.logger, nodeID, s.quiet, replaced)
}

// fire runs when a timer expires. A timer whose generation was superseded
// does nothing, since Stop cannot recall a callback already started.
func (s *Synchronizer) fire(nodeID string, gen uint64) {
	s.mu.Lock()
	p, ok := s.pending[nodeID]
	if !ok || p.gen != gen {
		s.mu.Unlock()
		return
	}
	delete(s.pending, nodeID)
	s.mu.Unlock()

	s.apply(nodeID, p.text, p.gen)
}

// Flush runs nodeID's pending recomputation now.
// Returns false if nothing was pending.
func (s *Synchronizer) Flush(nodeID string) bool {
	s.mu.Lock()
	p, ok := s.pending[nodeID]
	if ok {
		p.timer.Stop()
		delete(s.pending, nodeID)
	}
	s.mu.Unlock()

	if !ok {
		return false
	}
	s.apply(nodeID, p.text, p.gen)
	return true
}

// FlushAll runs every pending recomputation now, in node id order.
func (s *Synchronizer) FlushAll() {
	s.mu.Lock()
	ids := slices.Sorted(maps.Keys(s.pending))
	batch := make([]*pending, 0, len(ids))
	for _, id := range ids {
		p := s.pending[id]
		p.timer.Stop()
		batch = append(batch, p)
		delete(s.pending, id)
	}
	s.mu.Unlock()

	for i, p := range batch {
		s.apply(ids[i], p.text, p.gen)
	}
}

// Pending reports whether nodeID has a recomputation waiting on its timer.
func (s *Synchronizer) Pending(nodeID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pending[nodeID]
	return ok
}

// Diagnostics returns the last parse result applied for nodeID, including
// invalid placeholders for editors to show as warnings.
func (s *Synchronizer) Diagnostics(nodeID string) (template.Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.applied[nodeID]
	if !ok {
		return template.Result{}, false
	}
	return template.Result{
		Variables: slices.Clone(a.result.Variables),
		Invalid:   slices.Clone(a.result.Invalid),
	}, true
}

// Stats returns a copy of the activity counters.
func (s *Synchronizer) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Close stops all timers and detaches from the store.
// Pending recomputations are dropped. Close is idempotent.
func (s *Synchronizer) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	for id, p := range s.pending {
		p.timer.Stop()
		delete(s.pending, id)
	}
	s.mu.Unlock()

	s.unsubscribe()
}

// apply parses text and writes the derived ports and data for nodeID.
func (s *Synchronizer) apply(nodeID, text string, gen uint64) {
	s.applyMu.Lock()
	defer s.applyMu.Unlock()

	s.mu.Lock()
	prev, had := s.applied[nodeID]
	if had && prev.gen > gen {
		// A newer text was already applied through Flush.
		s.mu.Unlock()
		return
	}
	s.stats.Recomputed++
	s.mu.Unlock()

	ctx, span := s.spans.StartSyncSpan(context.Background(), nodeID)

	res := template.Parse(text)
	ports := nodes.VariablePorts(res.Variables)
	portsChanged := !had || !slices.Equal(prev.ports, ports)

	var pruned int
	if portsChanged {
		removed, err := s.store.SetNodePorts(nodeID, flowcanvas.DirectionIn, ports)
		if err != nil {
			s.fail(nodeID, span, err)
			return
		}
		pruned = len(removed)
	}

	if !had || prev.text != text {
		err := s.store.UpdateNodeData(nodeID, map[string]any{
			"text":      text,
			"variables": slices.Clone(res.Variables),
		})
		if err != nil {
			s.fail(nodeID, span, err)
			return
		}
	}

	s.mu.Lock()
	if portsChanged {
		s.stats.PortWrites++
		s.stats.EdgesPruned += pruned
	}
	if !s.closed {
		s.applied[nodeID] = applied{gen: gen, text: text, ports: ports, result: res}
	}
	s.mu.Unlock()

	s.metrics.RecordPortSync(ctx, nodeID, len(ports), portsChanged)
	observability.LogSyncApplied(s.logger, nodeID, res.Variables, res.Invalid, portsChanged)
	s.spans.EndSpanWithError(span, nil)
}

// fail records a recomputation the store refused. The node keeps its
// previous ports; a removed node is simply forgotten.
func (s *Synchronizer) fail(nodeID string, span trace.Span, err error) {
	observability.LogSyncError(s.logger, nodeID, err)
	s.spans.EndSpanWithError(span, err)
}

// onChange drops pending and cached state for removed nodes.
func (s *Synchronizer) onChange(c flowcanvas.Change) {
	if c.Kind != flowcanvas.ChangeNodeRemoved {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.pending[c.NodeID]; ok {
		p.timer.Stop()
		delete(s.pending, c.NodeID)
	}
	delete(s.applied, c.NodeID)
}
