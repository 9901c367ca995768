package nodes

import (
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/randalmurphal/flowcanvas/pkg/flowcanvas"
)

// InputData is the data carried by an input node.
type InputData struct {
	InputName string `mapstructure:"inputName" json:"inputName"`
	InputType string `mapstructure:"inputType" json:"inputType"`
}

// OutputData is the data carried by an output node.
type OutputData struct {
	Name string `mapstructure:"name" json:"name"`
	Type string `mapstructure:"type" json:"type"`
}

// TemplateData is the data carried by a template node.
type TemplateData struct {
	Text      string   `mapstructure:"text" json:"text"`
	Variables []string `mapstructure:"variables" json:"variables,omitempty"`
}

// DecodeInput reads input node data.
func DecodeInput(data map[string]any) (InputData, error) {
	var out InputData
	return out, decode(data, &out)
}

// DecodeOutput reads output node data.
func DecodeOutput(data map[string]any) (OutputData, error) {
	var out OutputData
	return out, decode(data, &out)
}

// DecodeTemplate reads template node data.
func DecodeTemplate(data map[string]any) (TemplateData, error) {
	var out TemplateData
	return out, decode(data, &out)
}

// validateData checks that data has the field types nodeType expects.
// Kinds without typed data accept anything.
func validateData(nodeType string, data map[string]any) error {
	var err error
	switch nodeType {
	case flowcanvas.NodeTypeInput:
		_, err = DecodeInput(data)
	case flowcanvas.NodeTypeOutput:
		_, err = DecodeOutput(data)
	case flowcanvas.NodeTypeTemplate:
		_, err = DecodeTemplate(data)
	}
	return err
}

// decode maps node data onto out, ignoring unknown keys.
// Field types must match; a number is not accepted where text is expected.
func decode(data map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result: out,
	})
	if err != nil {
		return fmt.Errorf("create decoder: %w", err)
	}
	if err := dec.Decode(data); err != nil {
		return fmt.Errorf("decode node data: %w", err)
	}
	return nil
}
