package nodes

import (
	"strings"

	"github.com/randalmurphal/flowcanvas/pkg/flowcanvas"
)

// VariablePortPrefix prefixes the input port id derived from a template variable.
const VariablePortPrefix = "var-"

// VariablePortID returns the input port id for a template variable.
// The id depends only on the name, so a variable that disappears and comes
// back gets the same port id.
func VariablePortID(name string) string {
	return VariablePortPrefix + name
}

// VariableName returns the variable behind a variable port id.
func VariableName(portID string) (string, bool) {
	return strings.CutPrefix(portID, VariablePortPrefix)
}

// VariablePorts builds the input ports for variables, keeping their order.
func VariablePorts(variables []string) []flowcanvas.Port {
	ports := make([]flowcanvas.Port, len(variables))
	for i, name := range variables {
		ports[i] = flowcanvas.Port{
			ID:        VariablePortID(name),
			Direction: flowcanvas.DirectionIn,
			Label:     name,
			Order:     i,
		}
	}
	return ports
}

// HandleID returns the editor-facing handle id for a port on a node.
func HandleID(nodeID, portID string) string {
	return nodeID + "-" + portID
}
