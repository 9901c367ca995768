package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestExpand tests token substitution.
func TestExpand(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		vars     map[string]any
		expected string
	}{
		{
			name:     "simple variable",
			input:    "Hello {{name}}",
			vars:     map[string]any{"name": "World"},
			expected: "Hello World",
		},
		{
			name:     "whitespace in token",
			input:    "Hello {{ name }}!",
			vars:     map[string]any{"name": "World"},
			expected: "Hello World!",
		},
		{
			name:     "repeated variable",
			input:    "{{a}}-{{a}}",
			vars:     map[string]any{"a": "x"},
			expected: "x-x",
		},
		{
			name:     "numeric value",
			input:    "port: {{port}}",
			vars:     map[string]any{"port": 8080},
			expected: "port: 8080",
		},
		{
			name:     "invalid placeholder untouched",
			input:    "{{1bad}} {{ok}}",
			vars:     map[string]any{"ok": "yes", "1bad": "no"},
			expected: "{{1bad}} yes",
		},
		{
			name:     "missing kept",
			input:    "Hello {{missing}}",
			vars:     nil,
			expected: "Hello {{missing}}",
		},
		{
			name:     "empty input",
			input:    "",
			vars:     map[string]any{"a": 1},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Expand(tt.input, tt.vars))
		})
	}
}

// TestExpander_MissingAction tests each missing-variable policy.
func TestExpander_MissingAction(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		exp := NewExpander(WithMissingAction(MissingEmpty))
		result, err := exp.Expand("Hello {{name}}!", nil)
		require.NoError(t, err)
		assert.Equal(t, "Hello !", result)
	})

	t.Run("error single", func(t *testing.T) {
		exp := NewExpander(WithMissingAction(MissingError))
		_, err := exp.Expand("Hello {{name}} {{name}}", nil)
		require.Error(t, err)
		assert.EqualError(t, err, "undefined variable: name")
	})

	t.Run("error multiple", func(t *testing.T) {
		exp := NewExpander(WithMissingAction(MissingError))
		result, err := exp.Expand("{{a}} {{b}} {{c}}", map[string]any{"b": 2})

		var undefined *UndefinedVariableError
		require.ErrorAs(t, err, &undefined)
		assert.Equal(t, []string{"a", "c"}, undefined.Names)
		assert.Equal(t, "undefined variables: a, c", err.Error())
		assert.Equal(t, "{{a}} 2 {{c}}", result)
	})
}

// TestParseMissingAction tests name mapping round trips through String.
func TestParseMissingAction(t *testing.T) {
	for _, a := range []MissingAction{MissingKeep, MissingEmpty, MissingError} {
		got, err := ParseMissingAction(a.String())
		require.NoError(t, err)
		assert.Equal(t, a, got)
	}

	got, err := ParseMissingAction(" Error ")
	require.NoError(t, err)
	assert.Equal(t, MissingError, got)

	got, err = ParseMissingAction("")
	require.NoError(t, err)
	assert.Equal(t, MissingKeep, got)

	_, err = ParseMissingAction("bogus")
	assert.ErrorContains(t, err, `unknown missing action "bogus"`)
}
