package rewrite

import (
	"fmt"

	"github.com/leapstack-labs/mlabgo/pkg/ast"
	"github.com/leapstack-labs/mlabgo/pkg/parser"
	"github.com/leapstack-labs/mlabgo/pkg/token"
)

// AssertName is the builtin that is lowered to an ast.Assert statement.
const AssertName = "assert"

// Default returns the rules the compiler runs unless configured otherwise.
func Default() []*Rule {
	return append(Builtins(), Folding()...)
}

// Builtins lowers calls to builtin functions into native statements.
func Builtins() []*Rule {
	assertCall := func(args Matcher) *Pattern {
		return Match(ast.KindExprStmt,
			F("x", Match(ast.KindCall,
				F("fun", Match(ast.KindIdent, F("name", Eq(AssertName)))),
				F("args", args),
			)),
		)
	}
	return []*Rule{
		MustRule(Def{
			Name:        "assert-message",
			Group:       "builtins",
			Description: "assert(cond, msg, ...) becomes an assert statement with a message",
			Pattern:     assertCall(List(Capture("cond"), Capture("msg"), Rest(""))),
			Template: T(ast.KindAssert,
				Set("cond", Ref("cond")),
				Set("msg", Ref("msg")),
			),
		}),
		MustRule(Def{
			Name:        "assert",
			Group:       "builtins",
			Description: "assert(cond) becomes an assert statement",
			Pattern:     assertCall(List(Capture("cond"))),
			Template:    T(ast.KindAssert, Set("cond", Ref("cond"))),
		}),
	}
}

// foldableOps are the binary operators constant folding evaluates.
var foldableOps = []any{token.PLUS, token.MINUS, token.MUL, token.DIV, token.DOTMUL, token.DOTDIV}

// Folding evaluates arithmetic on literal operands.
func Folding() []*Rule {
	literalOperand := OfKind(ast.KindNumber, ast.KindString)
	return []*Rule{
		MustRule(Def{
			Name:        "fold-arith",
			Group:       "folding",
			Description: "evaluates + - * / .* ./ on two numeric literals",
			Pattern: Match(ast.KindBinary,
				F("x", Bind("x", literalOperand)),
				F("op", Bind("op", In(foldableOps...))),
				F("y", Bind("y", literalOperand)),
			),
			Eval: foldArith,
		}),
		MustRule(Def{
			Name:        "fold-negate",
			Group:       "folding",
			Description: "evaluates unary minus on a numeric literal",
			Pattern: Match(ast.KindUnary,
				F("op", Eq(token.MINUS)),
				F("x", Match(ast.KindNumber, F("value", Capture("v")))),
			),
			Eval: func(b Bindings, _ ast.Node) (ast.Node, error) {
				return &ast.Number{Value: -b.Number("v")}, nil
			},
		}),
	}
}

func foldArith(b Bindings, _ ast.Node) (ast.Node, error) {
	op := b.Op("op")
	x, xok := b.Node("x").(*ast.Number)
	y, yok := b.Node("y").(*ast.Number)
	if !xok || !yok {
		return nil, fmt.Errorf("cannot fold %s with a non-numeric operand", op)
	}
	var v float64
	switch op {
	case token.PLUS:
		v = x.Value + y.Value
	case token.MINUS:
		v = x.Value - y.Value
	case token.MUL, token.DOTMUL:
		v = x.Value * y.Value
	case token.DIV, token.DOTDIV:
		v = x.Value / y.Value
	default:
		return nil, fmt.Errorf("cannot fold operator %s", op)
	}
	return &ast.Number{Value: v}, nil
}

// Rebase converts 1-based subscript bounds to 0-based ones. It is the rule
// form of the parser's inline rebasing and must only run on trees parsed
// with parser.WithInlineRebase(false).
func Rebase() []*Rule {
	return []*Rule{
		MustRule(Def{
			Name:        "rebase-index",
			Group:       "rebase",
			Description: "subtracts one from every subscript bound",
			Pattern:     Match(ast.KindSubscript, F("index", Capture("index"))),
			Eval: func(b Bindings, n ast.Node) (ast.Node, error) {
				s := n.(*ast.Subscript)
				index := make([]ast.Node, len(b.List("index")))
				for i, e := range b.List("index") {
					index[i] = parser.RebaseBound(ast.Clone(e))
				}
				return &ast.Subscript{X: s.X, Index: index, Cell: s.Cell}, nil
			},
		}),
	}
}
