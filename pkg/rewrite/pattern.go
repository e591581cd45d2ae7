package rewrite

import (
	"fmt"

	"github.com/leapstack-labs/mlabgo/pkg/ast"
	"github.com/leapstack-labs/mlabgo/pkg/token"
)

// Binding is a value captured by a pattern together with the kind of field
// it came from.
type Binding struct {
	Kind  ast.FieldKind
	Value ast.Value
}

// Bindings maps capture names to captured values.
type Bindings map[string]Binding

// Has reports whether name was captured.
func (b Bindings) Has(name string) bool {
	_, ok := b[name]
	return ok
}

// Node returns a captured node, or nil.
func (b Bindings) Node(name string) ast.Node { return b[name].Value.Node }

// List returns a captured node list, or nil.
func (b Bindings) List(name string) []ast.Node { return b[name].Value.List }

// String returns a captured string field.
func (b Bindings) String(name string) string { return b[name].Value.Str }

// Number returns a captured numeric field.
func (b Bindings) Number(name string) float64 { return b[name].Value.Num }

// Op returns a captured operator field.
func (b Bindings) Op(name string) token.TokenType { return b[name].Value.Op }

// bind records a capture. A name that is already bound only accepts an
// equal value.
func (b Bindings) bind(name string, kind ast.FieldKind, v ast.Value) bool {
	if name == "" {
		return true
	}
	if prev, ok := b[name]; ok {
		return prev.Kind == kind && ast.EqualValue(kind, prev.Value, v)
	}
	b[name] = Binding{Kind: kind, Value: v}
	return true
}

// Matcher tests a single field value.
type Matcher interface {
	match(kind ast.FieldKind, v ast.Value, b Bindings) bool
	validate() error
}

// Field pairs a schema field name with the matcher applied to it.
type Field struct {
	Name    string
	Matcher Matcher
}

// F builds a Field.
func F(name string, m Matcher) Field { return Field{Name: name, Matcher: m} }

// Pattern matches nodes of one kind whose named fields satisfy their
// matchers.
type Pattern struct {
	kind   ast.Kind
	fields []Field
}

// Match builds a pattern for nodes of the given kind.
func Match(kind ast.Kind, fields ...Field) *Pattern {
	return &Pattern{kind: kind, fields: fields}
}

// Kind returns the node kind the pattern accepts.
func (p *Pattern) Kind() ast.Kind { return p.kind }

// Match tests n and returns the captured bindings on success.
func (p *Pattern) Match(n ast.Node) (Bindings, bool) {
	b := Bindings{}
	if !p.matchNode(n, b) {
		return nil, false
	}
	return b, true
}

func (p *Pattern) matchNode(n ast.Node, b Bindings) bool {
	if n == nil || n.Kind() != p.kind {
		return false
	}
	schema := ast.Schema(p.kind)
	vals := n.Values()
	for _, f := range p.fields {
		i := ast.FieldIndex(p.kind, f.Name)
		if i < 0 {
			return false
		}
		if !f.Matcher.match(schema[i].Kind, vals[i], b) {
			return false
		}
	}
	return true
}

func (p *Pattern) match(kind ast.FieldKind, v ast.Value, b Bindings) bool {
	return kind == ast.FieldNode && p.matchNode(v.Node, b)
}

func (p *Pattern) validate() error {
	if ast.Schema(p.kind) == nil && p.kind != ast.KindColon && p.kind != ast.KindBreak && p.kind != ast.KindContinue {
		return fmt.Errorf("pattern: unknown node kind %s", p.kind)
	}
	for _, f := range p.fields {
		if ast.FieldIndex(p.kind, f.Name) < 0 {
			return fmt.Errorf("pattern: %s has no field %q", p.kind, f.Name)
		}
		if f.Matcher == nil {
			return fmt.Errorf("pattern: field %s.%s has no matcher", p.kind, f.Name)
		}
		if err := f.Matcher.validate(); err != nil {
			return err
		}
	}
	return nil
}

// ---------- Field matchers ----------

type anyMatcher struct{}

func (anyMatcher) match(ast.FieldKind, ast.Value, Bindings) bool { return true }
func (anyMatcher) validate() error                              { return nil }

// Any matches every value.
func Any() Matcher { return anyMatcher{} }

type nilMatcher struct{}

func (nilMatcher) match(kind ast.FieldKind, v ast.Value, _ Bindings) bool {
	switch kind {
	case ast.FieldNode:
		return v.Node == nil
	case ast.FieldList:
		return len(v.List) == 0
	}
	return false
}
func (nilMatcher) validate() error { return nil }

// Nil matches an absent child or an empty list.
func Nil() Matcher { return nilMatcher{} }

type eqMatcher struct {
	want []any
}

// Eq matches a field equal to v. Node and list fields compare structurally;
// string, number, bool and operator fields compare by value.
func Eq(v any) Matcher { return eqMatcher{want: []any{v}} }

// In matches a field equal to any of vs.
func In(vs ...any) Matcher { return eqMatcher{want: vs} }

func (m eqMatcher) match(kind ast.FieldKind, v ast.Value, _ Bindings) bool {
	for _, w := range m.want {
		lit, ok := literal(kind, w)
		if ok && ast.EqualValue(kind, lit, v) {
			return true
		}
	}
	return false
}

func (m eqMatcher) validate() error {
	if len(m.want) == 0 {
		return fmt.Errorf("pattern: In needs at least one value")
	}
	return nil
}

type kindMatcher struct {
	kinds []ast.Kind
}

// OfKind matches a present child node of one of the given kinds.
func OfKind(kinds ...ast.Kind) Matcher { return kindMatcher{kinds: kinds} }

func (m kindMatcher) match(kind ast.FieldKind, v ast.Value, _ Bindings) bool {
	if kind != ast.FieldNode || v.Node == nil {
		return false
	}
	for _, k := range m.kinds {
		if v.Node.Kind() == k {
			return true
		}
	}
	return false
}
func (m kindMatcher) validate() error { return nil }

type bindMatcher struct {
	name string
	m    Matcher
}

// Capture matches any value and binds it to name.
func Capture(name string) Matcher { return bindMatcher{name: name, m: anyMatcher{}} }

// Bind binds the value to name when m matches it.
func Bind(name string, m Matcher) Matcher { return bindMatcher{name: name, m: m} }

func (m bindMatcher) match(kind ast.FieldKind, v ast.Value, b Bindings) bool {
	return m.m.match(kind, v, b) && b.bind(m.name, kind, v)
}

func (m bindMatcher) validate() error {
	if m.name == "" {
		return fmt.Errorf("pattern: capture needs a name")
	}
	if m.m == nil {
		return fmt.Errorf("pattern: capture %q has no matcher", m.name)
	}
	return m.m.validate()
}

type restMatcher struct {
	name string
}

// Rest, as the last element of a List matcher, matches the remaining
// elements and binds them as a list. An empty name discards them.
func Rest(name string) Matcher { return restMatcher{name: name} }

func (restMatcher) match(ast.FieldKind, ast.Value, Bindings) bool { return false }
func (restMatcher) validate() error                              { return fmt.Errorf("pattern: Rest is only valid at the end of List") }

type listMatcher struct {
	elems []Matcher
	rest  *restMatcher
}

// List matches a list field element by element. Without a trailing Rest the
// lengths must be equal.
func List(elems ...Matcher) Matcher {
	m := listMatcher{elems: elems}
	if n := len(elems); n > 0 {
		if r, ok := elems[n-1].(restMatcher); ok {
			m.elems = elems[:n-1]
			m.rest = &r
		}
	}
	return m
}

func (m listMatcher) match(kind ast.FieldKind, v ast.Value, b Bindings) bool {
	if kind != ast.FieldList {
		return false
	}
	if len(v.List) < len(m.elems) || (m.rest == nil && len(v.List) != len(m.elems)) {
		return false
	}
	for i, em := range m.elems {
		if !em.match(ast.FieldNode, ast.NodeValue(v.List[i]), b) {
			return false
		}
	}
	if m.rest != nil {
		rest := v.List[len(m.elems):]
		if len(rest) == 0 {
			rest = nil
		}
		return b.bind(m.rest.name, ast.FieldList, ast.ListValue(rest))
	}
	return true
}

func (m listMatcher) validate() error {
	for _, em := range m.elems {
		if em == nil {
			return fmt.Errorf("pattern: nil list element matcher")
		}
		if err := em.validate(); err != nil {
			return err
		}
	}
	return nil
}

// literal converts a Go value into a field value of the given kind.
func literal(kind ast.FieldKind, v any) (ast.Value, bool) {
	switch kind {
	case ast.FieldNode:
		if v == nil {
			return ast.NodeValue(nil), true
		}
		n, ok := v.(ast.Node)
		return ast.NodeValue(n), ok
	case ast.FieldList:
		ns, ok := v.([]ast.Node)
		return ast.ListValue(ns), ok
	case ast.FieldString:
		switch s := v.(type) {
		case string:
			return ast.StringValue(s), true
		case ast.ListForm:
			return ast.StringValue(string(s)), true
		}
	case ast.FieldNumber:
		switch f := v.(type) {
		case float64:
			return ast.NumberValue(f), true
		case int:
			return ast.NumberValue(float64(f)), true
		}
	case ast.FieldBool:
		bv, ok := v.(bool)
		return ast.BoolValue(bv), ok
	case ast.FieldOp:
		op, ok := v.(token.TokenType)
		return ast.OpValue(op), ok
	}
	return ast.Value{}, false
}
