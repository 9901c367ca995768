package nodes

import "github.com/randalmurphal/flowcanvas/pkg/flowcanvas"

// DefaultTemplateText is the text a new template node starts with.
const DefaultTemplateText = "{{input}}"

// Built-in kinds.
var (
	InputKind = Kind{
		Type:        flowcanvas.NodeTypeInput,
		Title:       "Input",
		Outputs:     []PortSpec{{ID: "value", Label: "value"}},
		DefaultData: map[string]any{"inputType": "Text"},
	}

	OutputKind = Kind{
		Type:        flowcanvas.NodeTypeOutput,
		Title:       "Output",
		Inputs:      []PortSpec{{ID: "value", Label: "value"}},
		DefaultData: map[string]any{"type": "Text"},
	}

	LLMKind = Kind{
		Type:  flowcanvas.NodeTypeLLM,
		Title: "LLM",
		Inputs: []PortSpec{
			{ID: "system", Label: "system"},
			{ID: "prompt", Label: "prompt"},
		},
		Outputs: []PortSpec{{ID: "response", Label: "response"}},
	}

	TemplateKind = Kind{
		Type:        flowcanvas.NodeTypeTemplate,
		Title:       "Text",
		Outputs:     []PortSpec{{ID: "output", Label: "output"}},
		Dynamic:     true,
		DefaultData: map[string]any{"text": DefaultTemplateText},
	}
)

// DefaultCatalog returns a catalog holding the input, output, llm and
// template kinds.
func DefaultCatalog() *Catalog {
	c := NewCatalog()
	for _, k := range []Kind{InputKind, OutputKind, LLMKind, TemplateKind} {
		// Built-in kinds are distinct and well formed.
		_ = c.Register(k)
	}
	return c
}
