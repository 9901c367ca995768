package nodes

import (
	"fmt"

	"github.com/randalmurphal/flowcanvas/pkg/flowcanvas"
)

// DemoTemplateText is the text of the demo pipeline's template node.
const DemoTemplateText = "Hello {{name}}"

// Pipeline lists the nodes and edges added by AddDemoPipeline.
type Pipeline struct {
	Nodes []flowcanvas.Node `json:"nodes"`
	Edges []flowcanvas.Edge `json:"edges"`
}

// AddDemoPipeline adds an Input -> Template -> LLM chain to store:
// the input's value feeds the template's {{name}} variable, and the
// template's output feeds the LLM prompt.
//
// If any step fails the nodes already added are removed again.
func (c *Catalog) AddDemoPipeline(store *flowcanvas.Store) (Pipeline, error) {
	var p Pipeline

	steps := []struct {
		nodeType string
		pos      flowcanvas.Position
		data     map[string]any
	}{
		{flowcanvas.NodeTypeInput, flowcanvas.Position{X: 40, Y: 40}, map[string]any{"inputName": "name", "inputType": "Text"}},
		{flowcanvas.NodeTypeTemplate, flowcanvas.Position{X: 360, Y: 40}, map[string]any{"text": DemoTemplateText}},
		{flowcanvas.NodeTypeLLM, flowcanvas.Position{X: 680, Y: 40}, nil},
	}

	for _, step := range steps {
		n, err := c.NewNode(store, step.nodeType, step.pos, step.data)
		if err == nil {
			err = store.AddNode(n)
		}
		if err != nil {
			p.rollback(store)
			return Pipeline{}, fmt.Errorf("demo pipeline: %w", err)
		}
		p.Nodes = append(p.Nodes, n)
	}

	input, text, llm := p.Nodes[0].ID, p.Nodes[1].ID, p.Nodes[2].ID
	links := [][4]string{
		{input, "value", text, VariablePortID("name")},
		{text, "output", llm, "prompt"},
	}
	for _, l := range links {
		e, err := store.Connect(l[0], l[1], l[2], l[3])
		if err != nil {
			p.rollback(store)
			return Pipeline{}, fmt.Errorf("demo pipeline: %w", err)
		}
		p.Edges = append(p.Edges, e)
	}

	return p, nil
}

// rollback removes the pipeline's nodes; their edges go with them.
func (p Pipeline) rollback(store *flowcanvas.Store) {
	for _, n := range p.Nodes {
		_, _ = store.RemoveNode(n.ID)
	}
}
