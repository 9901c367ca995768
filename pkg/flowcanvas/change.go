package flowcanvas

// ChangeKind identifies the mutation a Change describes.
type ChangeKind string

// Change kinds published by Store.
const (
	ChangeNodeAdded       ChangeKind = "node_added"
	ChangeNodeRemoved     ChangeKind = "node_removed"
	ChangeNodeMoved       ChangeKind = "node_moved"
	ChangeNodeDataChanged ChangeKind = "node_data_changed"
	ChangePortsChanged    ChangeKind = "ports_changed"
	ChangeEdgeAdded       ChangeKind = "edge_added"
	ChangeEdgeRemoved     ChangeKind = "edge_removed"
)

// Change describes one committed mutation.
// Removed lists edges deleted by the mutation, including cascade fallout.
// Subscribers share the same Change value and must treat it as read-only.
type Change struct {
	Kind      ChangeKind `json:"kind"`
	Version   uint64     `json:"version"`
	NodeID    string     `json:"node_id,omitempty"`
	EdgeID    string     `json:"edge_id,omitempty"`
	Direction Direction  `json:"direction,omitempty"`
	Removed   []Edge     `json:"removed,omitempty"`
}

// subscriber is a registered change callback.
type subscriber struct {
	id uint64
	fn func(Change)
}

// Subscribe registers fn to be called after every committed mutation.
// Calls happen synchronously on the mutating goroutine, after the store lock
// is released, in commit order. fn may read the store, which can already
// reflect later commits from other goroutines, but must not mutate it.
//
// The returned function unsubscribes; calling it more than once is safe.
func (s *Store) Subscribe(fn func(Change)) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}

	s.subsMu.Lock()
	s.nextSubID++
	id := s.nextSubID
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	s.subsMu.Unlock()

	return func() {
		s.subsMu.Lock()
		defer s.subsMu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// publish delivers a change to a snapshot of the current subscribers.
func (s *Store) publish(c Change) {
	s.subsMu.RLock()
	subs := make([]subscriber, len(s.subs))
	copy(subs, s.subs)
	s.subsMu.RUnlock()

	for _, sub := range subs {
		sub.fn(c)
	}
}
