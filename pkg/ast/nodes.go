package ast

import "github.com/leapstack-labs/mlabgo/pkg/token"

// ---------- Expressions ----------

// Number is a numeric literal.
type Number struct {
	NodeInfo
	Value float64
}

// String is a string literal.
type String struct {
	NodeInfo
	Value string
}

// Ident is a name reference. Inside an index expression the name "end"
// refers to the runtime end sentinel.
type Ident struct {
	NodeInfo
	Name string
}

// Colon is a bare ":" index selecting a whole dimension.
type Colon struct {
	NodeInfo
}

// Range is lo:hi or lo:step:hi. Bounds are inclusive. Step may be nil.
type Range struct {
	NodeInfo
	Lo   Node
	Step Node
	Hi   Node
}

// Unary is a prefix operator or a transpose applied to X.
type Unary struct {
	NodeInfo
	Op token.TokenType // MINUS, PLUS, NEG; postfix TRANSPOSE, DOTTRANSPOSE
	X  Node
}

// Binary is an arithmetic or elementwise operator.
type Binary struct {
	NodeInfo
	X  Node
	Op token.TokenType
	Y  Node
}

// Compare is a comparison operator.
type Compare struct {
	NodeInfo
	X  Node
	Op token.TokenType
	Y  Node
}

// Logical is a short-circuit logical operator. Elementwise & and | are
// Binary.
type Logical struct {
	NodeInfo
	X  Node
	Op token.TokenType // ANDAND, OROR
	Y  Node
}

// Call is a parenthesized call or a read of an indexed value; the two are
// indistinguishable without knowing what the callee is.
type Call struct {
	NodeInfo
	Fun  Node
	Args []Node
}

// Subscript is an index into X. Index bounds are already 0-based.
// Cell is set for brace indexing.
type Subscript struct {
	NodeInfo
	X     Node
	Index []Node
	Cell  bool
}

// Field is a struct field access X.Name.
type Field struct {
	NodeInfo
	X    Node
	Name string
}

// ListForm distinguishes list constructors.
type ListForm string

// List constructor forms.
const (
	ListVector ListForm = "vector" // [a b c]
	ListMatrix ListForm = "matrix" // [a b; c d], Elems are ListRow lists
	ListRow    ListForm = "row"    // one row of a matrix or cell literal
	ListCell   ListForm = "cell"   // {a, b}
)

// List is a bracket or brace constructor.
type List struct {
	NodeInfo
	Form  ListForm
	Elems []Node
}

// Lambda is an anonymous function @(params) body.
type Lambda struct {
	NodeInfo
	Params []Node
	Body   Node
}

// ---------- Statements ----------

// Assign stores Value into Target.
type Assign struct {
	NodeInfo
	Target Node
	Value  Node
}

// AugAssign is Target op= Value, also produced by ++ and --.
type AugAssign struct {
	NodeInfo
	Target Node
	Op     token.TokenType // PLUS, MINUS, MUL, DIV, EXP
	Value  Node
}

// FuncDef is a function declaration. Output is nil, an Ident, or a
// ListVector of identifiers.
type FuncDef struct {
	NodeInfo
	Name     string
	Params   []Node
	Varargin bool
	Nargin   bool
	Output   Node
	Body     []Node
}

// Return leaves the enclosing function. Value may be nil.
type Return struct {
	NodeInfo
	Value Node
}

// Break exits the innermost loop.
type Break struct {
	NodeInfo
}

// Continue skips to the next loop iteration.
type Continue struct {
	NodeInfo
}

// Global declares names as global variables.
type Global struct {
	NodeInfo
	Names []Node
}

// If is a conditional. A switch statement produces a chain of Ifs whose
// Else holds a single nested If.
type If struct {
	NodeInfo
	Cond Node
	Body []Node
	Else []Node
}

// While loops while Cond holds.
type While struct {
	NodeInfo
	Cond Node
	Body []Node
}

// For iterates Var over Iter.
type For struct {
	NodeInfo
	Var  Node
	Iter Node
	Body []Node
}

// TryCatch runs Handler with the error bound to ErrName when Body fails.
type TryCatch struct {
	NodeInfo
	Body    []Node
	ErrName string
	Handler []Node
}

// Unwind runs Cleanup after Body regardless of how Body exits.
type Unwind struct {
	NodeInfo
	Body    []Node
	Cleanup []Node
}

// Block groups statements that came from a single source statement.
type Block struct {
	NodeInfo
	Stmts []Node
}

// ExprStmt evaluates X for its side effects.
type ExprStmt struct {
	NodeInfo
	X Node
}

// Assert fails with Msg when Cond is false. Msg may be nil.
type Assert struct {
	NodeInfo
	Cond Node
	Msg  Node
}
