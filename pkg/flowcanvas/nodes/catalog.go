// Package nodes defines the node kinds an editor can place and builds
// fully-formed nodes for them.
//
// A Kind fixes a node type's static ports and default data. Dynamic kinds
// (template nodes) derive their input ports from their text instead.
package nodes

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/randalmurphal/flowcanvas/pkg/flowcanvas"
	"github.com/randalmurphal/flowcanvas/pkg/flowcanvas/template"
)

// ErrUnknownKind is returned for a node type with no registered Kind.
var ErrUnknownKind = errors.New("unknown node kind")

// PortSpec describes one static port of a Kind.
type PortSpec struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Kind describes a node type.
type Kind struct {
	Type    string     `json:"type"`
	Title   string     `json:"title"`
	Inputs  []PortSpec `json:"inputs"`
	Outputs []PortSpec `json:"outputs"`

	// Dynamic marks kinds whose input ports come from their text.
	Dynamic bool `json:"dynamic"`

	// DefaultData is copied into each new node before caller data is applied.
	DefaultData map[string]any `json:"default_data,omitempty"`
}

// IDGenerator allocates node ids. *flowcanvas.Store implements it.
type IDGenerator interface {
	GenerateID(prefix string) string
}

// Catalog is a thread-safe set of node kinds keyed by type.
type Catalog struct {
	mu    sync.RWMutex
	kinds map[string]Kind
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{kinds: make(map[string]Kind)}
}

// Register adds a kind. Registering a type twice returns flowcanvas.ErrDuplicateID.
func (c *Catalog) Register(k Kind) error {
	if k.Type == "" {
		return fmt.Errorf("register kind: %w: empty type", flowcanvas.ErrInvalidNode)
	}
	if err := checkPortSpecs(k); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.kinds[k.Type]; exists {
		return fmt.Errorf("register kind %s: %w", k.Type, flowcanvas.ErrDuplicateID)
	}
	c.kinds[k.Type] = k
	return nil
}

func checkPortSpecs(k Kind) error {
	seen := make(map[string]bool)
	for _, p := range slices.Concat(k.Inputs, k.Outputs) {
		if p.ID == "" {
			return fmt.Errorf("register kind %s: %w: empty port id", k.Type, flowcanvas.ErrInvalidNode)
		}
		if seen[p.ID] {
			return fmt.Errorf("register kind %s: port %s: %w", k.Type, p.ID, flowcanvas.ErrDuplicateID)
		}
		seen[p.ID] = true
	}
	return nil
}

// Kind returns the kind registered for nodeType.
func (c *Catalog) Kind(nodeType string) (Kind, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	k, ok := c.kinds[nodeType]
	return k, ok
}

// Kinds returns all kinds sorted by type.
func (c *Catalog) Kinds() []Kind {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Kind, 0, len(c.kinds))
	for _, k := range c.kinds {
		out = append(out, k)
	}
	slices.SortFunc(out, func(a, b Kind) int { return cmp.Compare(a.Type, b.Type) })
	return out
}

// Types returns the registered node types in sorted order.
func (c *Catalog) Types() []string {
	kinds := c.Kinds()
	types := make([]string, len(kinds))
	for i, k := range kinds {
		types[i] = k.Type
	}
	return types
}

// IsDynamic reports whether nodeType derives its inputs from text.
func (c *Catalog) IsDynamic(nodeType string) bool {
	k, ok := c.Kind(nodeType)
	return ok && k.Dynamic
}

// NewNode builds a node of the given type with a fresh id from ids.
//
// Data is the kind's DefaultData overlaid with data. A known field of the
// wrong type, such as a template "text" that is not a string, returns
// ErrInvalidNode without allocating an id. Static kinds get their declared
// ports. Dynamic kinds get their declared outputs plus one input per
// variable in their "text" field.
func (c *Catalog) NewNode(ids IDGenerator, nodeType string, pos flowcanvas.Position, data map[string]any) (flowcanvas.Node, error) {
	k, ok := c.Kind(nodeType)
	if !ok {
		return flowcanvas.Node{}, fmt.Errorf("new node %q: %w", nodeType, ErrUnknownKind)
	}

	merged := make(map[string]any, len(k.DefaultData)+len(data))
	for key, v := range k.DefaultData {
		merged[key] = v
	}
	for key, v := range data {
		merged[key] = v
	}
	if err := validateData(nodeType, merged); err != nil {
		return flowcanvas.Node{}, fmt.Errorf("new node %q: %w: %w", nodeType, flowcanvas.ErrInvalidNode, err)
	}

	n := flowcanvas.Node{
		ID:       ids.GenerateID(nodeType),
		Type:     nodeType,
		Position: pos,
		Data:     merged,
	}
	applyNameDefaults(&n)

	if k.Dynamic {
		text, _ := n.Data["text"].(string)
		vars := template.Parse(text).Variables
		n.Data["variables"] = vars
		n.Ports = VariablePorts(vars)
	} else {
		n.Ports = specPorts(k.Inputs, flowcanvas.DirectionIn)
	}
	n.Ports = append(n.Ports, specPorts(k.Outputs, flowcanvas.DirectionOut)...)
	return n, nil
}

func specPorts(specs []PortSpec, dir flowcanvas.Direction) []flowcanvas.Port {
	ports := make([]flowcanvas.Port, len(specs))
	for i, s := range specs {
		label := s.Label
		if label == "" {
			label = s.ID
		}
		ports[i] = flowcanvas.Port{ID: s.ID, Direction: dir, Label: label, Order: i}
	}
	return ports
}

// applyNameDefaults names input and output nodes after their id when unnamed.
func applyNameDefaults(n *flowcanvas.Node) {
	var key string
	switch n.Type {
	case flowcanvas.NodeTypeInput:
		key = "inputName"
	case flowcanvas.NodeTypeOutput:
		key = "name"
	default:
		return
	}
	if name, _ := n.Data[key].(string); name == "" {
		n.Data[key] = n.ID
	}
}
