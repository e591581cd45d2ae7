package format

import (
	"strings"

	"github.com/leapstack-labs/mlabgo/pkg/ast"
	"github.com/leapstack-labs/mlabgo/pkg/token"
)

// Operator binding strength, loosest first. Only the relative order
// matters: it decides where parentheses are needed.
const (
	precLowest = iota
	precRange
	precOr
	precAnd
	precCompare
	precElementwise
	precAdditive
	precMultiply
	precUnary
	precExponent
	precPostfix
)

func binaryPrec(op token.TokenType) int {
	switch op {
	case token.OROR:
		return precOr
	case token.ANDAND:
		return precAnd
	case token.EQEQ, token.NE, token.LT, token.GT, token.LE, token.GE:
		return precCompare
	case token.AND, token.OR:
		return precElementwise
	case token.PLUS, token.MINUS:
		return precAdditive
	case token.EXP, token.DOTEXP:
		return precExponent
	}
	return precMultiply
}

// exprPrec returns how tightly n binds as an operand.
func exprPrec(n ast.Node) int {
	switch e := n.(type) {
	case *ast.Range:
		return precRange
	case *ast.Binary:
		return binaryPrec(e.Op)
	case *ast.Compare:
		return binaryPrec(e.Op)
	case *ast.Logical:
		return binaryPrec(e.Op)
	case *ast.Unary:
		if e.Op == token.TRANSPOSE || e.Op == token.DOTTRANSPOSE {
			return precPostfix
		}
		return precUnary
	case *ast.Lambda, *ast.Assign:
		return precLowest
	}
	return precPostfix
}

// operand prints n, parenthesized when it binds looser than min.
func (p *Printer) operand(n ast.Node, min int) {
	if n != nil && exprPrec(n) < min {
		p.write("(")
		p.formatExpr(n)
		p.write(")")
		return
	}
	p.formatExpr(n)
}

func (p *Printer) formatExpr(n ast.Node) {
	switch e := n.(type) {
	case nil:
		p.write("[]")
	case *ast.Number:
		p.write(formatNumber(e.Value))
	case *ast.String:
		p.write("'" + strings.ReplaceAll(e.Value, "'", "''") + "'")
	case *ast.Ident:
		p.write(e.Name)
	case *ast.Colon:
		p.write(":")
	case *ast.Range:
		p.operand(e.Lo, precRange+1)
		if e.Step != nil {
			p.write(":")
			p.operand(e.Step, precRange+1)
		}
		p.write(":")
		p.operand(e.Hi, precRange+1)
	case *ast.Unary:
		p.formatUnary(e)
	case *ast.Binary:
		p.formatBinary(e.X, e.Op, e.Y)
	case *ast.Compare:
		p.formatBinary(e.X, e.Op, e.Y)
	case *ast.Logical:
		p.formatBinary(e.X, e.Op, e.Y)
	case *ast.Call:
		p.operand(e.Fun, precPostfix)
		p.write("(")
		p.formatExprList(e.Args)
		p.write(")")
	case *ast.Subscript:
		p.operand(e.X, precPostfix)
		open, closing := "(", ")"
		if e.Cell {
			open, closing = "{", "}"
		}
		p.write(open)
		p.formatExprList(e.Index)
		p.write(closing)
	case *ast.Field:
		p.operand(e.X, precPostfix)
		p.write("." + e.Name)
	case *ast.List:
		p.formatListLiteral(e)
	case *ast.Lambda:
		p.write("@(")
		p.formatExprList(e.Params)
		p.write(") ")
		p.formatExpr(e.Body)
	case *ast.Assign:
		p.formatExpr(e.Target)
		p.write(" = ")
		p.formatExpr(e.Value)
	default:
		p.write("<" + n.Kind().String() + ">")
	}
}

func (p *Printer) formatUnary(e *ast.Unary) {
	switch e.Op {
	case token.TRANSPOSE, token.DOTTRANSPOSE:
		p.operand(e.X, precPostfix)
		p.write(e.Op.String())
	default:
		p.write(e.Op.String())
		p.operand(e.X, precUnary)
	}
}

func (p *Printer) formatBinary(x ast.Node, op token.TokenType, y ast.Node) {
	prec := binaryPrec(op)
	left, right := prec, prec+1
	if prec == precExponent {
		// Right associative.
		left, right = prec+1, prec
	}
	p.operand(x, left)
	p.space()
	p.write(op.String())
	p.space()
	p.operand(y, right)
}

func (p *Printer) formatExprList(ns []ast.Node) {
	p.formatList(len(ns), func(i int) { p.formatExpr(ns[i]) }, ", ")
}

func (p *Printer) formatListLiteral(l *ast.List) {
	open, closing := "[", "]"
	if l.Form == ast.ListCell {
		open, closing = "{", "}"
	}
	p.write(open)
	if isRows(l.Elems) {
		p.formatList(len(l.Elems), func(i int) {
			p.formatExprList(l.Elems[i].(*ast.List).Elems)
		}, "; ")
	} else {
		p.formatExprList(l.Elems)
	}
	p.write(closing)
}

// isRows reports whether elems are the rows of a matrix or cell literal.
func isRows(elems []ast.Node) bool {
	for _, e := range elems {
		if row, ok := e.(*ast.List); !ok || row.Form != ast.ListRow {
			return false
		}
	}
	return len(elems) > 0
}
