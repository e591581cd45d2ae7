package ast

import (
	"fmt"

	"github.com/leapstack-labs/mlabgo/pkg/token"
)

// FieldKind describes what a node field holds.
type FieldKind int

// Field kinds.
const (
	FieldNode   FieldKind = iota // single child, may be nil
	FieldList                    // ordered children
	FieldString                  // name or literal text
	FieldNumber                  // float64
	FieldBool                    // flag
	FieldOp                      // token.TokenType operator
)

func (k FieldKind) String() string {
	switch k {
	case FieldNode:
		return "node"
	case FieldList:
		return "list"
	case FieldString:
		return "string"
	case FieldNumber:
		return "number"
	case FieldBool:
		return "bool"
	case FieldOp:
		return "op"
	default:
		return fmt.Sprintf("FieldKind(%d)", int(k))
	}
}

// FieldSpec names one field of a node variant.
type FieldSpec struct {
	Name string
	Kind FieldKind
}

// Value holds one field value. Which member is meaningful is given by the
// FieldKind of the matching FieldSpec.
type Value struct {
	Node Node
	List []Node
	Str  string
	Num  float64
	Bool bool
	Op   token.TokenType
}

// NodeValue wraps a child node.
func NodeValue(n Node) Value { return Value{Node: n} }

// ListValue wraps a child list.
func ListValue(ns []Node) Value { return Value{List: ns} }

// StringValue wraps a string field.
func StringValue(s string) Value { return Value{Str: s} }

// NumberValue wraps a numeric field.
func NumberValue(f float64) Value { return Value{Num: f} }

// BoolValue wraps a flag field.
func BoolValue(b bool) Value { return Value{Bool: b} }

// OpValue wraps an operator field.
func OpValue(op token.TokenType) Value { return Value{Op: op} }

var (
	binaryFields = []FieldSpec{{"x", FieldNode}, {"op", FieldOp}, {"y", FieldNode}}
	bodyOnly     = []FieldSpec{{"body", FieldList}}
)

var schemas = [kindCount][]FieldSpec{
	KindNumber:    {{"value", FieldNumber}},
	KindString:    {{"value", FieldString}},
	KindIdent:     {{"name", FieldString}},
	KindColon:     nil,
	KindRange:     {{"lo", FieldNode}, {"step", FieldNode}, {"hi", FieldNode}},
	KindUnary:     {{"op", FieldOp}, {"x", FieldNode}},
	KindBinary:    binaryFields,
	KindCompare:   binaryFields,
	KindLogical:   binaryFields,
	KindAssign:    {{"target", FieldNode}, {"value", FieldNode}},
	KindAugAssign: {{"target", FieldNode}, {"op", FieldOp}, {"value", FieldNode}},
	KindCall:      {{"fun", FieldNode}, {"args", FieldList}},
	KindSubscript: {{"x", FieldNode}, {"index", FieldList}, {"cell", FieldBool}},
	KindField:     {{"x", FieldNode}, {"name", FieldString}},
	KindList:      {{"form", FieldString}, {"elems", FieldList}},
	KindLambda:    {{"params", FieldList}, {"body", FieldNode}},
	KindFuncDef: {
		{"name", FieldString},
		{"params", FieldList},
		{"varargin", FieldBool},
		{"nargin", FieldBool},
		{"output", FieldNode},
		{"body", FieldList},
	},
	KindReturn:   {{"value", FieldNode}},
	KindBreak:    nil,
	KindContinue: nil,
	KindGlobal:   {{"names", FieldList}},
	KindIf:       {{"cond", FieldNode}, {"body", FieldList}, {"else", FieldList}},
	KindWhile:    {{"cond", FieldNode}, {"body", FieldList}},
	KindFor:      {{"var", FieldNode}, {"iter", FieldNode}, {"body", FieldList}},
	KindTryCatch: {{"body", FieldList}, {"errname", FieldString}, {"handler", FieldList}},
	KindUnwind:   {{"body", FieldList}, {"cleanup", FieldList}},
	KindBlock:    {{"stmts", FieldList}},
	KindExprStmt: {{"x", FieldNode}},
	KindAssert:   {{"cond", FieldNode}, {"msg", FieldNode}},
}

// Schema returns the ordered field list of a node kind. The returned slice
// must not be modified.
func Schema(k Kind) []FieldSpec {
	if k <= KindInvalid || k >= kindCount {
		return nil
	}
	return schemas[k]
}

// FieldIndex returns the position of the named field in the kind's schema,
// or -1.
func FieldIndex(k Kind, name string) int {
	for i, f := range Schema(k) {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// ---------- Kind / Values ----------

func (*Number) Kind() Kind    { return KindNumber }
func (*String) Kind() Kind    { return KindString }
func (*Ident) Kind() Kind     { return KindIdent }
func (*Colon) Kind() Kind     { return KindColon }
func (*Range) Kind() Kind     { return KindRange }
func (*Unary) Kind() Kind     { return KindUnary }
func (*Binary) Kind() Kind    { return KindBinary }
func (*Compare) Kind() Kind   { return KindCompare }
func (*Logical) Kind() Kind   { return KindLogical }
func (*Assign) Kind() Kind    { return KindAssign }
func (*AugAssign) Kind() Kind { return KindAugAssign }
func (*Call) Kind() Kind      { return KindCall }
func (*Subscript) Kind() Kind { return KindSubscript }
func (*Field) Kind() Kind     { return KindField }
func (*List) Kind() Kind      { return KindList }
func (*Lambda) Kind() Kind    { return KindLambda }
func (*FuncDef) Kind() Kind   { return KindFuncDef }
func (*Return) Kind() Kind    { return KindReturn }
func (*Break) Kind() Kind     { return KindBreak }
func (*Continue) Kind() Kind  { return KindContinue }
func (*Global) Kind() Kind    { return KindGlobal }
func (*If) Kind() Kind        { return KindIf }
func (*While) Kind() Kind     { return KindWhile }
func (*For) Kind() Kind       { return KindFor }
func (*TryCatch) Kind() Kind  { return KindTryCatch }
func (*Unwind) Kind() Kind    { return KindUnwind }
func (*Block) Kind() Kind     { return KindBlock }
func (*ExprStmt) Kind() Kind  { return KindExprStmt }
func (*Assert) Kind() Kind    { return KindAssert }

func (n *Number) Values() []Value { return []Value{NumberValue(n.Value)} }
func (n *String) Values() []Value { return []Value{StringValue(n.Value)} }
func (n *Ident) Values() []Value  { return []Value{StringValue(n.Name)} }
func (n *Colon) Values() []Value  { return nil }

func (n *Range) Values() []Value {
	return []Value{NodeValue(n.Lo), NodeValue(n.Step), NodeValue(n.Hi)}
}

func (n *Unary) Values() []Value { return []Value{OpValue(n.Op), NodeValue(n.X)} }

func (n *Binary) Values() []Value {
	return []Value{NodeValue(n.X), OpValue(n.Op), NodeValue(n.Y)}
}

func (n *Compare) Values() []Value {
	return []Value{NodeValue(n.X), OpValue(n.Op), NodeValue(n.Y)}
}

func (n *Logical) Values() []Value {
	return []Value{NodeValue(n.X), OpValue(n.Op), NodeValue(n.Y)}
}

func (n *Assign) Values() []Value {
	return []Value{NodeValue(n.Target), NodeValue(n.Value)}
}

func (n *AugAssign) Values() []Value {
	return []Value{NodeValue(n.Target), OpValue(n.Op), NodeValue(n.Value)}
}

func (n *Call) Values() []Value { return []Value{NodeValue(n.Fun), ListValue(n.Args)} }

func (n *Subscript) Values() []Value {
	return []Value{NodeValue(n.X), ListValue(n.Index), BoolValue(n.Cell)}
}

func (n *Field) Values() []Value { return []Value{NodeValue(n.X), StringValue(n.Name)} }

func (n *List) Values() []Value {
	return []Value{StringValue(string(n.Form)), ListValue(n.Elems)}
}

func (n *Lambda) Values() []Value { return []Value{ListValue(n.Params), NodeValue(n.Body)} }

func (n *FuncDef) Values() []Value {
	return []Value{
		StringValue(n.Name),
		ListValue(n.Params),
		BoolValue(n.Varargin),
		BoolValue(n.Nargin),
		NodeValue(n.Output),
		ListValue(n.Body),
	}
}

func (n *Return) Values() []Value   { return []Value{NodeValue(n.Value)} }
func (n *Break) Values() []Value    { return nil }
func (n *Continue) Values() []Value { return nil }
func (n *Global) Values() []Value   { return []Value{ListValue(n.Names)} }

func (n *If) Values() []Value {
	return []Value{NodeValue(n.Cond), ListValue(n.Body), ListValue(n.Else)}
}

func (n *While) Values() []Value { return []Value{NodeValue(n.Cond), ListValue(n.Body)} }

func (n *For) Values() []Value {
	return []Value{NodeValue(n.Var), NodeValue(n.Iter), ListValue(n.Body)}
}

func (n *TryCatch) Values() []Value {
	return []Value{ListValue(n.Body), StringValue(n.ErrName), ListValue(n.Handler)}
}

func (n *Unwind) Values() []Value   { return []Value{ListValue(n.Body), ListValue(n.Cleanup)} }
func (n *Block) Values() []Value    { return []Value{ListValue(n.Stmts)} }
func (n *ExprStmt) Values() []Value { return []Value{NodeValue(n.X)} }
func (n *Assert) Values() []Value   { return []Value{NodeValue(n.Cond), NodeValue(n.Msg)} }

// ---------- Build ----------

// Build creates a node of the given kind from values in schema order.
func Build(k Kind, pos token.Position, v []Value) (Node, error) {
	schema := Schema(k)
	if schema == nil && k != KindColon && k != KindBreak && k != KindContinue {
		return nil, fmt.Errorf("ast: cannot build node of kind %s", k)
	}
	if len(v) != len(schema) {
		return nil, fmt.Errorf("ast: %s takes %d values, got %d", k, len(schema), len(v))
	}
	info := NodeInfo{At: pos}

	switch k {
	case KindNumber:
		return &Number{NodeInfo: info, Value: v[0].Num}, nil
	case KindString:
		return &String{NodeInfo: info, Value: v[0].Str}, nil
	case KindIdent:
		return &Ident{NodeInfo: info, Name: v[0].Str}, nil
	case KindColon:
		return &Colon{NodeInfo: info}, nil
	case KindRange:
		return &Range{NodeInfo: info, Lo: v[0].Node, Step: v[1].Node, Hi: v[2].Node}, nil
	case KindUnary:
		return &Unary{NodeInfo: info, Op: v[0].Op, X: v[1].Node}, nil
	case KindBinary:
		return &Binary{NodeInfo: info, X: v[0].Node, Op: v[1].Op, Y: v[2].Node}, nil
	case KindCompare:
		return &Compare{NodeInfo: info, X: v[0].Node, Op: v[1].Op, Y: v[2].Node}, nil
	case KindLogical:
		return &Logical{NodeInfo: info, X: v[0].Node, Op: v[1].Op, Y: v[2].Node}, nil
	case KindAssign:
		return &Assign{NodeInfo: info, Target: v[0].Node, Value: v[1].Node}, nil
	case KindAugAssign:
		return &AugAssign{NodeInfo: info, Target: v[0].Node, Op: v[1].Op, Value: v[2].Node}, nil
	case KindCall:
		return &Call{NodeInfo: info, Fun: v[0].Node, Args: v[1].List}, nil
	case KindSubscript:
		return &Subscript{NodeInfo: info, X: v[0].Node, Index: v[1].List, Cell: v[2].Bool}, nil
	case KindField:
		return &Field{NodeInfo: info, X: v[0].Node, Name: v[1].Str}, nil
	case KindList:
		return &List{NodeInfo: info, Form: ListForm(v[0].Str), Elems: v[1].List}, nil
	case KindLambda:
		return &Lambda{NodeInfo: info, Params: v[0].List, Body: v[1].Node}, nil
	case KindFuncDef:
		return &FuncDef{
			NodeInfo: info,
			Name:     v[0].Str,
			Params:   v[1].List,
			Varargin: v[2].Bool,
			Nargin:   v[3].Bool,
			Output:   v[4].Node,
			Body:     v[5].List,
		}, nil
	case KindReturn:
		return &Return{NodeInfo: info, Value: v[0].Node}, nil
	case KindBreak:
		return &Break{NodeInfo: info}, nil
	case KindContinue:
		return &Continue{NodeInfo: info}, nil
	case KindGlobal:
		return &Global{NodeInfo: info, Names: v[0].List}, nil
	case KindIf:
		return &If{NodeInfo: info, Cond: v[0].Node, Body: v[1].List, Else: v[2].List}, nil
	case KindWhile:
		return &While{NodeInfo: info, Cond: v[0].Node, Body: v[1].List}, nil
	case KindFor:
		return &For{NodeInfo: info, Var: v[0].Node, Iter: v[1].Node, Body: v[2].List}, nil
	case KindTryCatch:
		return &TryCatch{NodeInfo: info, Body: v[0].List, ErrName: v[1].Str, Handler: v[2].List}, nil
	case KindUnwind:
		return &Unwind{NodeInfo: info, Body: v[0].List, Cleanup: v[1].List}, nil
	case KindBlock:
		return &Block{NodeInfo: info, Stmts: v[0].List}, nil
	case KindExprStmt:
		return &ExprStmt{NodeInfo: info, X: v[0].Node}, nil
	case KindAssert:
		return &Assert{NodeInfo: info, Cond: v[0].Node, Msg: v[1].Node}, nil
	}
	return nil, fmt.Errorf("ast: cannot build node of kind %s", k)
}
