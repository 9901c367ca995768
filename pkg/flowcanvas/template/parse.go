package template

import (
	"regexp"
	"slices"
	"strings"
)

var (
	// variablePattern matches {{ name }} where name is an identifier.
	variablePattern = regexp.MustCompile(`\{\{\s*([A-Za-z_$][A-Za-z0-9_$]*)\s*\}\}`)

	// placeholderPattern matches any {{ ... }} span without a closing brace inside.
	placeholderPattern = regexp.MustCompile(`\{\{\s*([^}]*)\s*\}\}`)
)

// Result is the outcome of parsing template text.
type Result struct {
	// Variables holds each variable name once, in first-occurrence order.
	Variables []string `json:"variables"`

	// Invalid holds each non-empty placeholder that is not a variable,
	// trimmed, once, in first-occurrence order.
	Invalid []string `json:"invalid"`
}

// Has reports whether name is one of the parsed variables.
func (r Result) Has(name string) bool {
	return slices.Contains(r.Variables, name)
}

// Empty reports whether the text declared no variables and no invalid placeholders.
func (r Result) Empty() bool {
	return len(r.Variables) == 0 && len(r.Invalid) == 0
}

// Parse extracts variable names and invalid placeholders from text.
//
// Example:
//
//	res := Parse("{{b}} x {{a}} {{b}}")
//	// res.Variables: ["b", "a"]
func Parse(text string) Result {
	res := Result{
		Variables: []string{},
		Invalid:   []string{},
	}

	valid := make(map[string]bool)
	for _, m := range variablePattern.FindAllStringSubmatch(text, -1) {
		if name := m[1]; !valid[name] {
			valid[name] = true
			res.Variables = append(res.Variables, name)
		}
	}

	seen := make(map[string]bool)
	for _, m := range placeholderPattern.FindAllStringSubmatch(text, -1) {
		raw := strings.TrimSpace(m[1])
		if raw == "" || valid[raw] || seen[raw] {
			continue
		}
		seen[raw] = true
		res.Invalid = append(res.Invalid, raw)
	}

	return res
}

// IsIdentifier reports whether name is a valid variable name.
func IsIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_' || r == '$':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
