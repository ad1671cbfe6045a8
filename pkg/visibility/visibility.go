// Package visibility compiles and evaluates the small condition language used
// by `visibleIf` on fields and table columns.
//
// Supported forms:
//   - truthiness: `spouseName` (non-blank, non-zero, not "no"/"false")
//   - equality: `realEstateYN == "yes"`, `objective != 3`
//   - ordering: `desiredIncome > 0`, `homeValue <= 250000`
//   - composition: `a && !b`, `(a || b) && c`
//
// Identifiers name fields of the same form. Values are read as the strings a
// user typed; numeric comparisons parse them and treat unparseable text as 0.
package visibility

import (
	"strings"
)

// Source resolves a field name to its current raw value.
type Source interface {
	Lookup(name string) (string, bool)
}

// SourceFunc adapts a function into a Source.
type SourceFunc func(name string) (string, bool)

// Lookup delegates to the underlying function.
func (fn SourceFunc) Lookup(name string) (string, bool) {
	return fn(name)
}

// MapSource serves values from a plain map.
type MapSource map[string]string

// Lookup implements Source.
func (m MapSource) Lookup(name string) (string, bool) {
	v, ok := m[name]
	return v, ok
}

// Rule is a compiled condition. The zero value and a nil Rule are always true.
type Rule struct {
	raw   string
	root  node
	names []string
}

// Compile parses rule. A blank rule compiles to an always-true Rule.
func Compile(rule string) (*Rule, error) {
	trimmed := strings.TrimSpace(rule)
	if trimmed == "" {
		return &Rule{}, nil
	}

	tokens, err := lex(trimmed)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	root, err := p.parse()
	if err != nil {
		return nil, err
	}
	return &Rule{raw: trimmed, root: root, names: p.names}, nil
}

// MustCompile is Compile for rules known to be valid; it panics otherwise.
func MustCompile(rule string) *Rule {
	r, err := Compile(rule)
	if err != nil {
		panic(err)
	}
	return r
}

// String returns the source text.
func (r *Rule) String() string {
	if r == nil {
		return ""
	}
	return r.raw
}

// Identifiers lists the field names referenced by the rule, in order of first
// appearance.
func (r *Rule) Identifiers() []string {
	if r == nil {
		return nil
	}
	return append([]string(nil), r.names...)
}

// Eval evaluates the rule against src.
func (r *Rule) Eval(src Source) bool {
	if r == nil || r.root == nil {
		return true
	}
	return r.root.eval(src)
}
