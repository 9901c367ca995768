/*
Package template parses and renders "{{variable}}" tokens in template node
text.

# Overview

A template node declares one input port per distinct variable named in its
text. Parse extracts those names and flags placeholders that are not valid
identifiers so editors can warn about them:

	res := template.Parse("Hello {{name}}, you are {{ age }} ({{2x}}) {{name}}")
	// res.Variables: ["name", "age"]
	// res.Invalid:   ["2x"]

# Grammar

A variable token is "{{", optional whitespace, an identifier, optional
whitespace, "}}". An identifier starts with a letter, underscore or dollar
sign, followed by letters, digits, underscores or dollar signs.

Every "{{...}}" span is also read raw. A raw span whose trimmed content is
not a variable is reported in Invalid. Empty spans such as "{{}}" and
"{{  }}" are ignored.

Parse is total: any input yields a Result, never an error.

# Rendering

Expand substitutes values for variable tokens:

	out := template.Expand("Hello {{name}}", map[string]any{"name": "Ada"})
	// out: "Hello Ada"

Missing variables are kept by default. Configure with an Expander:

	exp := template.NewExpander(template.WithMissingAction(template.MissingError))
	_, err := exp.Expand("Hello {{name}}", nil)
	// err: "undefined variable: name"

# Thread Safety

Parse is a pure function. Expander is safe for concurrent use after
construction.
*/
package template
