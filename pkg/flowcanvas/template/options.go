package template

import (
	"fmt"
	"strings"
)

// MissingAction specifies how to handle missing variables.
type MissingAction int

const (
	// MissingKeep keeps the token as-is when the variable is not found.
	// This is the default behavior.
	MissingKeep MissingAction = iota

	// MissingEmpty replaces the token with an empty string when
	// the variable is not found.
	MissingEmpty

	// MissingError returns an error when a variable is not found.
	MissingError
)

// String returns the action name.
func (a MissingAction) String() string {
	switch a {
	case MissingEmpty:
		return "empty"
	case MissingError:
		return "error"
	default:
		return "keep"
	}
}

// ParseMissingAction maps "keep", "empty" or "error" to a MissingAction.
// An empty name is MissingKeep.
func ParseMissingAction(name string) (MissingAction, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "keep":
		return MissingKeep, nil
	case "empty":
		return MissingEmpty, nil
	case "error":
		return MissingError, nil
	default:
		return MissingKeep, fmt.Errorf("unknown missing action %q (want keep, empty or error)", name)
	}
}

// Option configures an Expander.
type Option func(*Expander)

// WithMissingAction sets how missing variables are handled.
//
// Default: MissingKeep (keep token as-is)
//
// Example:
//
//	exp := NewExpander(WithMissingAction(MissingError))
//	_, err := exp.Expand("{{missing}}", nil)
//	// err: "undefined variable: missing"
func WithMissingAction(action MissingAction) Option {
	return func(e *Expander) {
		e.missingAction = action
	}
}
