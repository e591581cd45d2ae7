package format

import (
	"strings"

	"github.com/leapstack-labs/mlabgo/pkg/ast"
	"github.com/leapstack-labs/mlabgo/pkg/token"
)

func (p *Printer) formatBlock(stmts []ast.Node) {
	for _, s := range stmts {
		p.formatStmt(s)
	}
}

func (p *Printer) formatBody(stmts []ast.Node) {
	p.indent()
	p.formatBlock(stmts)
	p.dedent()
}

func (p *Printer) formatStmt(n ast.Node) {
	switch s := n.(type) {
	case nil:
		return
	case *ast.Block:
		p.formatBlock(s.Stmts)
		return
	case *ast.ExprStmt:
		p.formatExpr(s.X)
	case *ast.Assign:
		p.formatExpr(s.Target)
		p.write(" = ")
		p.formatExpr(s.Value)
	case *ast.AugAssign:
		p.formatExpr(s.Target)
		p.write(" " + augOp(s.Op) + " ")
		p.formatExpr(s.Value)
	case *ast.Assert:
		p.write("assert(")
		p.formatExpr(s.Cond)
		if s.Msg != nil {
			p.write(", ")
			p.formatExpr(s.Msg)
		}
		p.write(")")
	case *ast.Return:
		p.write("return")
		if s.Value != nil {
			p.space()
			p.formatExpr(s.Value)
		}
	case *ast.Break:
		p.write("break")
	case *ast.Continue:
		p.write("continue")
	case *ast.Global:
		p.write("global")
		for _, name := range s.Names {
			p.space()
			p.formatExpr(name)
		}
	case *ast.If:
		p.formatIf(s, "if")
		return
	case *ast.While:
		p.write("while ")
		p.formatExpr(s.Cond)
		p.writeln()
		p.formatBody(s.Body)
		p.write("end")
	case *ast.For:
		p.write("for ")
		p.formatExpr(s.Var)
		p.write(" = ")
		p.formatExpr(s.Iter)
		p.writeln()
		p.formatBody(s.Body)
		p.write("end")
	case *ast.TryCatch:
		p.write("try")
		p.writeln()
		p.formatBody(s.Body)
		p.write("catch")
		handler := s.Handler
		if name, ok := catchBinding(s); ok {
			p.write(" " + name)
			handler = handler[1:]
		}
		p.writeln()
		p.formatBody(handler)
		p.write("end")
	case *ast.Unwind:
		p.write("unwind_protect")
		p.writeln()
		p.formatBody(s.Body)
		p.write("unwind_protect_cleanup")
		p.writeln()
		p.formatBody(s.Cleanup)
		p.write("end_unwind_protect")
	case *ast.FuncDef:
		p.formatFunc(s)
	default:
		p.formatExpr(n)
	}
	p.writeln()
}

// formatIf prints an if statement, folding a lone nested If in the else
// branch into elseif.
// catchBinding reports the variable named after "catch", which the parser
// stores as a leading "x = lasterror" handler statement.
func catchBinding(s *ast.TryCatch) (string, bool) {
	if len(s.Handler) == 0 || s.ErrName == "" {
		return "", false
	}
	a, ok := s.Handler[0].(*ast.Assign)
	if !ok {
		return "", false
	}
	target, ok := a.Target.(*ast.Ident)
	if !ok {
		return "", false
	}
	if v, ok := a.Value.(*ast.Ident); !ok || v.Name != s.ErrName {
		return "", false
	}
	return target.Name, true
}

func (p *Printer) formatIf(s *ast.If, keyword string) {
	p.write(keyword + " ")
	p.formatExpr(s.Cond)
	p.writeln()
	p.formatBody(s.Body)
	if len(s.Else) == 1 {
		if next, ok := s.Else[0].(*ast.If); ok {
			p.formatIf(next, "elseif")
			return
		}
	}
	if len(s.Else) > 0 {
		p.write("else")
		p.writeln()
		p.formatBody(s.Else)
	}
	p.write("end")
	p.writeln()
}

func (p *Printer) formatFunc(f *ast.FuncDef) {
	p.write("function ")
	if f.Output != nil {
		p.formatExpr(f.Output)
		p.write(" = ")
	}
	params := make([]string, 0, len(f.Params)+2)
	for _, param := range f.Params {
		params = append(params, Expr(param))
	}
	if f.Varargin {
		params = append(params, "varargin")
	}
	if f.Nargin {
		params = append(params, "nargin")
	}
	p.write(f.Name + "(" + strings.Join(params, ", ") + ")")
	p.writeln()
	p.formatBody(f.Body)
	p.write("end")
}

// Expr renders a single expression.
func Expr(n ast.Node) string {
	p := newPrinter()
	p.formatExpr(n)
	return p.output.String()
}

func augOp(op token.TokenType) string {
	switch op {
	case token.PLUS:
		return token.PLUSEQ.String()
	case token.MINUS:
		return token.MINUSEQ.String()
	case token.MUL:
		return token.MULEQ.String()
	case token.DIV:
		return token.DIVEQ.String()
	case token.EXP:
		return token.EXPEQ.String()
	}
	return op.String() + "="
}
