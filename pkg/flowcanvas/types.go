package flowcanvas

import "slices"

// Node type constants for the built-in node kinds.
const (
	NodeTypeInput    = "input"
	NodeTypeOutput   = "output"
	NodeTypeLLM      = "llm"
	NodeTypeTemplate = "template"
)

// Direction is the side of a node a port sits on.
type Direction string

// Port directions.
const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// Valid reports whether d is one of the two port directions.
func (d Direction) Valid() bool {
	return d == DirectionIn || d == DirectionOut
}

// Position is a node's canvas location.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Port is a named connection point on a node.
// IDs are unique within the owning node, across both directions.
type Port struct {
	ID        string    `json:"id"`
	Direction Direction `json:"direction"`
	Label     string    `json:"label"`
	Order     int       `json:"order"`
}

// Node is a typed unit in the pipeline graph.
type Node struct {
	ID       string         `json:"id"`
	Type     string         `json:"type"`
	Position Position       `json:"position"`
	Data     map[string]any `json:"data"`
	Ports    []Port         `json:"ports"`
}

// Port returns the port with the given id.
func (n Node) Port(id string) (Port, bool) {
	for _, p := range n.Ports {
		if p.ID == id {
			return p, true
		}
	}
	return Port{}, false
}

// InputPorts returns the node's input ports in order.
func (n Node) InputPorts() []Port {
	return n.portsOf(DirectionIn)
}

// OutputPorts returns the node's output ports in order.
func (n Node) OutputPorts() []Port {
	return n.portsOf(DirectionOut)
}

func (n Node) portsOf(dir Direction) []Port {
	out := make([]Port, 0, len(n.Ports))
	for _, p := range n.Ports {
		if p.Direction == dir {
			out = append(out, p)
		}
	}
	slices.SortStableFunc(out, func(a, b Port) int { return a.Order - b.Order })
	return out
}

// Clone returns a deep copy of the node.
func (n Node) Clone() Node {
	n.Ports = slices.Clone(n.Ports)
	n.Data = cloneData(n.Data)
	return n
}

// Edge is a directed connection from an output port to an input port.
type Edge struct {
	ID         string         `json:"id"`
	Source     string         `json:"source"`
	SourcePort string         `json:"sourcePort"`
	Target     string         `json:"target"`
	TargetPort string         `json:"targetPort"`
	Data       map[string]any `json:"data,omitempty"`
}

// Touches reports whether either endpoint of the edge is on nodeID.
func (e Edge) Touches(nodeID string) bool {
	return e.Source == nodeID || e.Target == nodeID
}

// sameEndpoints reports whether two edges connect the same four fields.
func (e Edge) sameEndpoints(o Edge) bool {
	return e.Source == o.Source && e.SourcePort == o.SourcePort &&
		e.Target == o.Target && e.TargetPort == o.TargetPort
}

// Clone returns a deep copy of the edge.
func (e Edge) Clone() Edge {
	e.Data = cloneData(e.Data)
	return e
}

// Snapshot is a consistent, detached copy of the whole graph.
type Snapshot struct {
	Version uint64 `json:"version"`
	Nodes   []Node `json:"nodes"`
	Edges   []Edge `json:"edges"`
}

// cloneData copies nested maps and slices so callers cannot alias store state.
func cloneData(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return cloneData(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		return slices.Clone(val)
	default:
		return v
	}
}
