package rewrite

import (
	"fmt"

	"github.com/leapstack-labs/mlabgo/pkg/ast"
	"github.com/leapstack-labs/mlabgo/pkg/token"
)

// Producer yields a field value for a template.
type Producer interface {
	produce(kind ast.FieldKind, b Bindings, pos token.Position) (ast.Value, error)
}

// Setter assigns a producer to a named template field.
type Setter struct {
	Name  string
	Value Producer
}

// Set builds a Setter.
func Set(name string, p Producer) Setter { return Setter{Name: name, Value: p} }

// Template builds a replacement node. Fields that are not set take their
// zero value. Every node the template creates takes the position of the
// node being replaced; captured subtrees are deep-copied and keep their own
// positions.
type Template struct {
	kind   ast.Kind
	fields []Setter
}

// T builds a template for a node of the given kind.
func T(kind ast.Kind, fields ...Setter) *Template {
	return &Template{kind: kind, fields: fields}
}

// Build instantiates the template.
func (t *Template) Build(b Bindings, pos token.Position) (ast.Node, error) {
	schema := ast.Schema(t.kind)
	vals := make([]ast.Value, len(schema))
	for _, f := range t.fields {
		i := ast.FieldIndex(t.kind, f.Name)
		if i < 0 {
			return nil, fmt.Errorf("template: %s has no field %q", t.kind, f.Name)
		}
		v, err := f.Value.produce(schema[i].Kind, b, pos)
		if err != nil {
			return nil, fmt.Errorf("template: %s.%s: %w", t.kind, f.Name, err)
		}
		vals[i] = v
	}
	return ast.Build(t.kind, pos, vals)
}

func (t *Template) produce(kind ast.FieldKind, b Bindings, pos token.Position) (ast.Value, error) {
	if kind != ast.FieldNode {
		return ast.Value{}, fmt.Errorf("node template used for a %s field", kind)
	}
	n, err := t.Build(b, pos)
	if err != nil {
		return ast.Value{}, err
	}
	return ast.NodeValue(n), nil
}

type refProducer struct {
	name string
}

// Ref produces a deep copy of a captured value.
func Ref(name string) Producer { return refProducer{name: name} }

func (r refProducer) produce(kind ast.FieldKind, b Bindings, _ token.Position) (ast.Value, error) {
	bound, ok := b[r.name]
	if !ok {
		return ast.Value{}, fmt.Errorf("capture %q is not bound", r.name)
	}
	if bound.Kind != kind {
		return ast.Value{}, fmt.Errorf("capture %q holds a %s, want %s", r.name, bound.Kind, kind)
	}
	v := bound.Value
	switch kind {
	case ast.FieldNode:
		v.Node = ast.Clone(v.Node)
	case ast.FieldList:
		v.List = ast.CloneList(v.List)
	}
	return v, nil
}

type litProducer struct {
	v any
}

// Lit produces a fixed value. Node values are deep-copied on every use.
func Lit(v any) Producer { return litProducer{v: v} }

func (l litProducer) produce(kind ast.FieldKind, _ Bindings, _ token.Position) (ast.Value, error) {
	v, ok := literal(kind, l.v)
	if !ok {
		return ast.Value{}, fmt.Errorf("literal %v does not fit a %s field", l.v, kind)
	}
	switch kind {
	case ast.FieldNode:
		v.Node = ast.Clone(v.Node)
	case ast.FieldList:
		v.List = ast.CloneList(v.List)
	}
	return v, nil
}

type itemsProducer struct {
	elems []Producer
}

// Items produces a list. A Ref element bound to a list is spliced in.
func Items(elems ...Producer) Producer { return itemsProducer{elems: elems} }

func (p itemsProducer) produce(kind ast.FieldKind, b Bindings, pos token.Position) (ast.Value, error) {
	if kind != ast.FieldList {
		return ast.Value{}, fmt.Errorf("items used for a %s field", kind)
	}
	var out []ast.Node
	for _, e := range p.elems {
		if r, ok := e.(refProducer); ok && b[r.name].Kind == ast.FieldList && b.Has(r.name) {
			out = append(out, ast.CloneList(b.List(r.name))...)
			continue
		}
		v, err := e.produce(ast.FieldNode, b, pos)
		if err != nil {
			return ast.Value{}, err
		}
		out = append(out, v.Node)
	}
	return ast.ListValue(out), nil
}
