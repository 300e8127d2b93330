package item

import (
	"fmt"
	"sort"
	"strings"
)

// Template maps field names to their declared kinds. A nil Template accepts
// every item.
type Template map[string]Kind

// ParseTemplate builds a template from configuration values such as
// {"task": "string"}. It returns nil for an empty mapping.
func ParseTemplate(fields map[string]string) Template {
	if len(fields) == 0 {
		return nil
	}
	tmpl := make(Template, len(fields))
	for name, kind := range fields {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		tmpl[name] = ParseKind(kind)
	}
	if len(tmpl) == 0 {
		return nil
	}
	return tmpl
}

// InferTemplate derives a template from the runtime kinds of a sample item.
// Null fields are skipped since their kind cannot be known. It returns nil
// when nothing could be inferred.
func InferTemplate(sample Item) Template {
	tmpl := make(Template, sample.Len())
	for _, key := range sample.keys {
		if kind, ok := KindOf(sample.values[key]); ok {
			tmpl[key] = kind
		}
	}
	if len(tmpl) == 0 {
		return nil
	}
	return tmpl
}

// Fields returns the declared field names in sorted order.
func (t Template) Fields() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns an independent copy of t.
func (t Template) Clone() Template {
	if t == nil {
		return nil
	}
	out := make(Template, len(t))
	for name, kind := range t {
		out[name] = kind
	}
	return out
}

// FieldProblem describes one declared field an item failed to satisfy.
type FieldProblem struct {
	Field    string
	Expected Kind
	Missing  bool
}

func (p FieldProblem) String() string {
	if p.Missing {
		return fmt.Sprintf("%s: missing (want %s)", p.Field, p.Expected)
	}
	return fmt.Sprintf("%s: want %s", p.Field, p.Expected)
}

// Check lists every declared field the item fails to satisfy, in field
// name order. Extra fields on the item are not inspected.
func Check(it Item, tmpl Template) []FieldProblem {
	if tmpl == nil {
		return nil
	}
	var problems []FieldProblem
	for _, field := range tmpl.Fields() {
		expected := tmpl[field]
		value, ok := it.Get(field)
		if !ok {
			problems = append(problems, FieldProblem{Field: field, Expected: expected, Missing: true})
			continue
		}
		if !expected.Matches(value) {
			problems = append(problems, FieldProblem{Field: field, Expected: expected})
		}
	}
	return problems
}

// Validate reports whether it satisfies tmpl.
func Validate(it Item, tmpl Template) bool {
	return len(Check(it, tmpl)) == 0
}
