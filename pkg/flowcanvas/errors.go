package flowcanvas

import (
	"errors"
	"fmt"
)

// Sentinel errors for store mutations. A mutation that returns one of these
// has left the store unchanged.
var (
	// ErrDuplicateID indicates a node id, or a port id within a node, already exists.
	ErrDuplicateID = errors.New("duplicate id")

	// ErrDuplicateEdge indicates an edge with the same four endpoint fields already exists.
	ErrDuplicateEdge = errors.New("duplicate edge")

	// ErrNotFound indicates the node or edge is absent. Callers may treat this as already satisfied.
	ErrNotFound = errors.New("not found")

	// ErrInvalidEndpoint indicates a connection names a node or port that does not exist,
	// or joins ports in the wrong direction.
	ErrInvalidEndpoint = errors.New("invalid endpoint")

	// ErrInvalidNode indicates a node definition is missing its id or type, or carries a bad port.
	ErrInvalidNode = errors.New("invalid node")
)

// NodeError wraps an error with node context.
type NodeError struct {
	// NodeID is the node the operation targeted.
	NodeID string
	// Op is the operation that failed (e.g., "add_node").
	Op string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *NodeError) Error() string {
	return fmt.Sprintf("node %s: %s: %v", e.NodeID, e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *NodeError) Unwrap() error {
	return e.Err
}

// PortError wraps an error with port context.
type PortError struct {
	NodeID string
	PortID string
	Op     string
	Err    error
}

// Error implements the error interface.
func (e *PortError) Error() string {
	return fmt.Sprintf("node %s port %q: %s: %v", e.NodeID, e.PortID, e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *PortError) Unwrap() error {
	return e.Err
}

// EdgeError wraps an error with the endpoints of the edge involved.
type EdgeError struct {
	EdgeID     string
	Source     string
	SourcePort string
	Target     string
	TargetPort string
	Op         string
	Err        error
}

// Error implements the error interface.
func (e *EdgeError) Error() string {
	if e.EdgeID != "" && e.Source == "" {
		return fmt.Sprintf("edge %s: %s: %v", e.EdgeID, e.Op, e.Err)
	}
	return fmt.Sprintf("edge %s.%s -> %s.%s: %s: %v",
		e.Source, e.SourcePort, e.Target, e.TargetPort, e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *EdgeError) Unwrap() error {
	return e.Err
}
