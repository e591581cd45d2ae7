package format

import "github.com/leapstack-labs/mlabgo/pkg/ast"

// Tree converts n into nested maps and slices for structured encoders.
// Every node map carries "kind", "line" and "column" plus one entry per
// non-empty schema field. A nil node yields nil.
func Tree(n ast.Node) map[string]any {
	if n == nil {
		return nil
	}
	m := map[string]any{"kind": n.Kind().String()}
	if pos := n.Pos(); pos.IsValid() {
		m["line"] = pos.Line
		m["column"] = pos.Column
	}
	vals := n.Values()
	for i, f := range ast.Schema(n.Kind()) {
		v := vals[i]
		switch f.Kind {
		case ast.FieldNode:
			if v.Node != nil {
				m[f.Name] = Tree(v.Node)
			}
		case ast.FieldList:
			if len(v.List) > 0 {
				m[f.Name] = TreeList(v.List)
			}
		case ast.FieldString:
			if v.Str != "" || n.Kind() == ast.KindString {
				m[f.Name] = v.Str
			}
		case ast.FieldNumber:
			m[f.Name] = v.Num
		case ast.FieldBool:
			if v.Bool {
				m[f.Name] = true
			}
		case ast.FieldOp:
			m[f.Name] = v.Op.String()
		}
	}
	return m
}

// TreeList converts each node of ns with Tree.
func TreeList(ns []ast.Node) []any {
	out := make([]any, len(ns))
	for i, n := range ns {
		out[i] = Tree(n)
	}
	return out
}
