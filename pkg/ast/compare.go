package ast

import "math"

// Equal reports whether two trees are structurally equal. Source positions
// are ignored.
func Equal(a, b Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	av, bv := a.Values(), b.Values()
	for i, f := range Schema(a.Kind()) {
		if !EqualValue(f.Kind, av[i], bv[i]) {
			return false
		}
	}
	return true
}

// EqualValue compares two field values of the given kind.
func EqualValue(k FieldKind, a, b Value) bool {
	switch k {
	case FieldNode:
		return Equal(a.Node, b.Node)
	case FieldList:
		return EqualList(a.List, b.List)
	case FieldString:
		return a.Str == b.Str
	case FieldNumber:
		return a.Num == b.Num || (math.IsNaN(a.Num) && math.IsNaN(b.Num))
	case FieldBool:
		return a.Bool == b.Bool
	case FieldOp:
		return a.Op == b.Op
	}
	return false
}

// EqualList compares two node lists element by element.
func EqualList(a, b []Node) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of n. Positions are preserved.
func Clone(n Node) Node {
	if n == nil {
		return nil
	}
	vals := n.Values()
	for i, f := range Schema(n.Kind()) {
		switch f.Kind {
		case FieldNode:
			vals[i].Node = Clone(vals[i].Node)
		case FieldList:
			vals[i].List = CloneList(vals[i].List)
		}
	}
	out, err := Build(n.Kind(), n.Pos(), vals)
	if err != nil {
		// Values always matches the schema of its own kind.
		panic(err)
	}
	return out
}

// CloneList deep-copies a node list. A nil list stays nil.
func CloneList(ns []Node) []Node {
	if ns == nil {
		return nil
	}
	out := make([]Node, len(ns))
	for i, n := range ns {
		out[i] = Clone(n)
	}
	return out
}

// Children returns the direct child nodes of n in schema order, skipping
// nil children.
func Children(n Node) []Node {
	var out []Node
	vals := n.Values()
	for i, f := range Schema(n.Kind()) {
		switch f.Kind {
		case FieldNode:
			if vals[i].Node != nil {
				out = append(out, vals[i].Node)
			}
		case FieldList:
			for _, c := range vals[i].List {
				if c != nil {
					out = append(out, c)
				}
			}
		}
	}
	return out
}

// Inspect traverses the tree rooted at n in pre-order, calling f for each
// node. Children are skipped when f returns false.
func Inspect(n Node, f func(Node) bool) {
	if n == nil || !f(n) {
		return
	}
	for _, c := range Children(n) {
		Inspect(c, f)
	}
}
