// Package submit sends an editor graph to the external pipeline parser
// service and reads back its summary.
//
// BuildPayload converts a store snapshot into the wire shape the service
// expects. Client posts it once; failures come back as errors and never
// touch the store.
package submit

import (
	"fmt"

	"github.com/randalmurphal/flowcanvas/pkg/flowcanvas"
	"github.com/randalmurphal/flowcanvas/pkg/flowcanvas/nodes"
)

// DefaultEndpoint is the parser service address used when none is configured.
const DefaultEndpoint = "http://127.0.0.1:8000/pipelines/parse"

// Payload is the request body posted to the parser service.
type Payload struct {
	Nodes []PayloadNode `json:"nodes"`
	Edges []PayloadEdge `json:"edges"`
}

// PayloadNode is one node on the wire.
type PayloadNode struct {
	ID       string              `json:"id"`
	Type     string              `json:"type"`
	Data     map[string]any      `json:"data"`
	Position flowcanvas.Position `json:"position"`
}

// PayloadEdge is one edge on the wire. A nil handle is sent as JSON null
// and means the port is unspecified.
type PayloadEdge struct {
	ID           string         `json:"id"`
	Source       string         `json:"source"`
	Target       string         `json:"target"`
	SourceHandle *string        `json:"sourceHandle"`
	TargetHandle *string        `json:"targetHandle"`
	Data         map[string]any `json:"data,omitempty"`
}

// BuildPayload converts a snapshot into a Payload.
//
// Handles are "<nodeID>-<portID>". Nodes without data send {}.
func BuildPayload(snap flowcanvas.Snapshot) Payload {
	p := Payload{
		Nodes: make([]PayloadNode, 0, len(snap.Nodes)),
		Edges: make([]PayloadEdge, 0, len(snap.Edges)),
	}

	for _, n := range snap.Nodes {
		data := n.Data
		if data == nil {
			data = map[string]any{}
		}
		p.Nodes = append(p.Nodes, PayloadNode{
			ID:       n.ID,
			Type:     n.Type,
			Data:     data,
			Position: n.Position,
		})
	}

	for i, e := range snap.Edges {
		id := e.ID
		if id == "" {
			id = fmt.Sprintf("e-%d-%s-%s", i, e.Source, e.Target)
		}
		p.Edges = append(p.Edges, PayloadEdge{
			ID:           id,
			Source:       e.Source,
			Target:       e.Target,
			SourceHandle: handle(e.Source, e.SourcePort),
			TargetHandle: handle(e.Target, e.TargetPort),
			Data:         e.Data,
		})
	}
	return p
}

func handle(nodeID, portID string) *string {
	if portID == "" {
		return nil
	}
	h := nodes.HandleID(nodeID, portID)
	return &h
}

// Result is the parser service's summary of a submitted graph.
type Result struct {
	NumNodes int  `json:"num_nodes"`
	NumEdges int  `json:"num_edges"`
	IsDAG    bool `json:"is_dag"`
}

// Summary formats the result for display.
func (r Result) Summary() string {
	return fmt.Sprintf("Pipeline summary:\nNodes: %d\nEdges: %d\nIs DAG: %t", r.NumNodes, r.NumEdges, r.IsDAG)
}
