package parser

import (
	"fmt"

	"github.com/leapstack-labs/mlabgo/pkg/ast"
	"github.com/leapstack-labs/mlabgo/pkg/token"
)

// Statement parsing: control flow, declarations and expression statements.
//
// Grammar:
//
//	if         → IF expr [sep] block {ELSEIF expr [sep] block} [ELSE block] END
//	while      → WHILE expr [sep] block END
//	for        → FOR (IDENT | '(' IDENT) '=' expr [')'] [sep] block END
//	switch     → SWITCH expr {sep} {CASE expr [sep] block} [OTHERWISE block] END
//	try        → TRY block [CATCH [IDENT] block] END
//	unwind     → UNWIND_PROTECT block UNWIND_PROTECT_CLEANUP block END_UNWIND_PROTECT
//	global     → GLOBAL IDENT {IDENT} ['=' expr]
//	sep        → ';' | ',' | newline
//
// A switch is desugared into a chain of If nodes comparing each case value
// with the subject. A function body without a trailing return gets one
// appended that returns the declared outputs.

// errName is the variable a catch block sees the caught error under.
const errName = "lasterror"

// blockEnds are the tokens that close a statement list.
var blockEnds = []token.TokenType{
	token.END_STMT, token.ELSE, token.ELSEIF, token.CASE, token.OTHERWISE,
	token.CATCH, token.UNWIND_PROTECT_CLEANUP, token.END_UNWIND_PROTECT,
	token.FUNCTION, token.EOF,
}

// parseStatement parses one statement.
func (p *Parser) parseStatement() ast.Node {
	switch p.token.Type {
	case token.IF:
		return p.parseIf()
	case token.WHILE:
		return p.parseWhile()
	case token.FOR:
		return p.parseFor()
	case token.SWITCH:
		return p.parseSwitch()
	case token.TRY:
		return p.parseTry()
	case token.UNWIND_PROTECT:
		return p.parseUnwind()
	case token.GLOBAL:
		return p.parseGlobal()
	case token.PERSISTENT:
		p.addUnsupported(p.token.Pos, "persistent variable")
		return nil
	case token.BREAK:
		n := &ast.Break{NodeInfo: info(p.token)}
		p.nextToken()
		p.endStatement()
		return n
	case token.CONTINUE:
		n := &ast.Continue{NodeInfo: info(p.token)}
		p.nextToken()
		p.endStatement()
		return n
	case token.RETURN:
		n := &ast.Return{NodeInfo: info(p.token)}
		if p.fn != nil {
			n.Value = ast.Clone(p.fn.output)
		}
		p.nextToken()
		p.endStatement()
		return n
	case token.IDENT:
		if p.checkPeek(token.STRING) {
			return p.parseCommand()
		}
	case token.EOF:
		p.addError("expected statement")
		return nil
	}

	if token.IsKeyword(p.token.Type) {
		p.addError(fmt.Sprintf(ErrUnexpectedStatement, p.token.Literal))
		return nil
	}
	return p.parseExprStatement()
}

// endStatement consumes the separator after a simple statement. The
// separator may be omitted before a block terminator.
func (p *Parser) endStatement() {
	if p.match(token.SEMI) || p.match(token.COMMA) {
		return
	}
	if p.checkAny(blockEnds...) {
		return
	}
	p.addError(fmt.Sprintf(ErrMissingSeparator, p.token.Type))
}

// parseBlock parses statements until one of the block terminators.
func (p *Parser) parseBlock() []ast.Node {
	var stmts []ast.Node
	for {
		p.skipSeparators()
		if p.checkAny(blockEnds...) {
			return stmts
		}
		if n := p.parseStatement(); n != nil {
			stmts = append(stmts, n)
		}
	}
}

// parseCondition parses the controlling expression of a compound statement
// and an optional separator after it.
func (p *Parser) parseCondition() ast.Node {
	cond := p.parseExpressionWithPrecedence(precHandle)
	if !p.match(token.SEMI) {
		p.match(token.COMMA)
	}
	return cond
}

func (p *Parser) parseExprStatement() ast.Node {
	start := p.token
	expr := p.parseExpression()
	if expr == nil {
		return nil
	}
	p.endStatement()
	switch expr.(type) {
	case *ast.Assign, *ast.AugAssign:
		return expr
	}
	return &ast.ExprStmt{NodeInfo: info(start), X: expr}
}

// parseCommand parses command syntax: name word word ...
func (p *Parser) parseCommand() ast.Node {
	start := p.token
	call := &ast.Call{NodeInfo: info(start), Fun: &ast.Ident{NodeInfo: info(start), Name: start.Literal}}
	p.nextToken()
	for p.check(token.STRING) {
		call.Args = append(call.Args, &ast.String{NodeInfo: info(p.token), Value: p.token.Literal})
		p.nextToken()
	}
	p.endStatement()
	return &ast.ExprStmt{NodeInfo: info(start), X: call}
}

func (p *Parser) parseIf() ast.Node {
	n := &ast.If{NodeInfo: info(p.token)}
	p.nextToken() // IF or ELSEIF
	n.Cond = p.parseCondition()
	n.Body = p.parseBlock()

	switch p.token.Type {
	case token.ELSEIF:
		// The nested If consumes the shared END.
		n.Else = []ast.Node{p.parseIf()}
		return n
	case token.ELSE:
		p.nextToken()
		n.Else = p.parseBlock()
	}
	p.expect(token.END_STMT)
	return n
}

func (p *Parser) parseWhile() ast.Node {
	n := &ast.While{NodeInfo: info(p.token)}
	p.nextToken()
	n.Cond = p.parseCondition()
	n.Body = p.parseBlock()
	p.expect(token.END_STMT)
	return n
}

func (p *Parser) parseFor() ast.Node {
	n := &ast.For{NodeInfo: info(p.token)}
	p.nextToken()

	paren := p.match(token.LPAREN)
	if p.check(token.LBRACKET) {
		p.addUnsupported(p.token.Pos, "matrix for-loop header")
		return nil
	}
	if !p.check(token.IDENT) {
		p.addError(fmt.Sprintf(ErrUnexpectedToken, p.token.Type, token.IDENT))
		return nil
	}
	n.Var = &ast.Ident{NodeInfo: info(p.token), Name: p.token.Literal}
	p.nextToken()
	p.expect(token.EQ)
	n.Iter = p.parseExpressionWithPrecedence(precHandle)
	if paren {
		p.expect(token.RPAREN)
	}
	if !p.match(token.SEMI) {
		p.match(token.COMMA)
	}
	n.Body = p.parseBlock()
	p.expect(token.END_STMT)
	return n
}

type switchCase struct {
	value ast.Node
	body  []ast.Node
	at    token.Token
}

// parseSwitch desugars a switch statement into an If chain. The subject is
// parsed once and a copy is compared with every case value.
func (p *Parser) parseSwitch() ast.Node {
	start := p.token
	p.nextToken()
	subject := p.parseExpressionWithPrecedence(precHandle)
	p.skipSeparators()

	var cases []switchCase
	var otherwise []ast.Node
	for p.check(token.CASE) {
		c := switchCase{at: p.token}
		p.nextToken()
		c.value = p.parseCondition()
		c.body = p.parseBlock()
		cases = append(cases, c)
	}
	if p.match(token.OTHERWISE) {
		otherwise = p.parseBlock()
	}
	p.expect(token.END_STMT)

	if len(cases) == 0 {
		return &ast.Block{NodeInfo: info(start), Stmts: otherwise}
	}
	chain := otherwise
	for i := len(cases) - 1; i >= 0; i-- {
		c := cases[i]
		chain = []ast.Node{&ast.If{
			NodeInfo: info(c.at),
			Cond:     &ast.Compare{NodeInfo: info(c.at), X: c.value, Op: token.EQEQ, Y: ast.Clone(subject)},
			Body:     c.body,
			Else:     chain,
		}}
	}
	return chain[0]
}

// parseTry parses try/catch. "catch name" on the catch line binds name to
// the caught error.
func (p *Parser) parseTry() ast.Node {
	n := &ast.TryCatch{NodeInfo: info(p.token), ErrName: errName}
	p.nextToken()
	n.Body = p.parseBlock()
	if p.check(token.CATCH) {
		catch := p.token
		p.nextToken()
		if p.check(token.IDENT) && p.token.Pos.Line == catch.Pos.Line &&
			(p.checkPeek(token.SEMI) || p.checkPeek(token.COMMA) || p.checkPeek(token.EOF)) {
			n.Handler = append(n.Handler, &ast.Assign{
				NodeInfo: info(p.token),
				Target:   &ast.Ident{NodeInfo: info(p.token), Name: p.token.Literal},
				Value:    &ast.Ident{NodeInfo: info(p.token), Name: errName},
			})
			p.nextToken()
		}
		n.Handler = append(n.Handler, p.parseBlock()...)
	}
	p.expect(token.END_STMT)
	return n
}

func (p *Parser) parseUnwind() ast.Node {
	n := &ast.Unwind{NodeInfo: info(p.token)}
	p.nextToken()
	n.Body = p.parseBlock()
	p.expect(token.UNWIND_PROTECT_CLEANUP)
	n.Cleanup = p.parseBlock()
	if !p.match(token.END_STMT) {
		p.expect(token.END_UNWIND_PROTECT)
	}
	return n
}

// parseGlobal parses "global a b". An initializer is kept as an
// assignment following the declaration.
func (p *Parser) parseGlobal() ast.Node {
	start := p.token
	g := &ast.Global{NodeInfo: info(start)}
	p.nextToken()
	for p.check(token.IDENT) {
		g.Names = append(g.Names, &ast.Ident{NodeInfo: info(p.token), Name: p.token.Literal})
		p.nextToken()
	}
	if len(g.Names) == 0 {
		p.addError(fmt.Sprintf(ErrUnexpectedToken, p.token.Type, token.IDENT))
		return nil
	}
	if len(g.Names) == 1 && p.check(token.EQ) {
		p.nextToken()
		value := p.parseExpressionWithPrecedence(precHandle)
		p.endStatement()
		return &ast.Block{NodeInfo: info(start), Stmts: []ast.Node{
			g,
			&ast.Assign{NodeInfo: info(start), Target: ast.Clone(g.Names[0]), Value: value},
		}}
	}
	p.endStatement()
	return g
}

// ---------- Functions ----------

// parseFunction parses a function declaration and its body. The body ends
// at a matching END, the next FUNCTION or the end of input.
func (p *Parser) parseFunction() ast.Node {
	fn := &ast.FuncDef{NodeInfo: info(p.token)}
	p.nextToken()

	fn.Output = p.parseFunctionOutput()
	if !p.check(token.IDENT) {
		p.addError(fmt.Sprintf(ErrUnexpectedToken, p.token.Type, "function name"))
		return nil
	}
	fn.Name = p.token.Literal
	p.nextToken()

	if p.check(token.LPAREN) {
		fn.Params, fn.Varargin, fn.Nargin = p.parseParams(true)
	}

	// A named output starts out as an empty struct.
	if out, ok := fn.Output.(*ast.Ident); ok {
		fn.Body = append(fn.Body, &ast.Assign{
			NodeInfo: fn.NodeInfo,
			Target:   ast.Clone(out),
			Value:    &ast.Call{NodeInfo: fn.NodeInfo, Fun: &ast.Ident{NodeInfo: fn.NodeInfo, Name: "struct"}},
		})
	}

	outer := p.fn
	p.fn = &funcState{output: fn.Output}
	fn.Body = append(fn.Body, p.parseBlock()...)
	p.fn = outer

	closing := p.token
	if !p.match(token.END_STMT) && !p.checkAny(token.FUNCTION, token.EOF) {
		p.addError(fmt.Sprintf(ErrUnexpectedStatement, p.token.Type))
		return nil
	}

	if len(fn.Body) == 0 || fn.Body[len(fn.Body)-1].Kind() != ast.KindReturn {
		fn.Body = append(fn.Body, &ast.Return{NodeInfo: info(closing), Value: ast.Clone(fn.Output)})
	}
	return fn
}

// parseFunctionOutput parses "out =" or "[a, b] =" if present.
func (p *Parser) parseFunctionOutput() ast.Node {
	switch {
	case p.check(token.IDENT) && p.checkPeek(token.EQ):
		out := &ast.Ident{NodeInfo: info(p.token), Name: p.token.Literal}
		p.nextToken()
		p.nextToken()
		return out
	case p.check(token.LBRACKET):
		list := &ast.List{NodeInfo: info(p.token), Form: ast.ListVector}
		p.nextToken()
		for !p.check(token.RBRACKET) {
			if p.match(token.COMMA) {
				continue
			}
			if !p.check(token.IDENT) {
				p.addError(fmt.Sprintf(ErrInvalidParam, p.token.Type))
				return nil
			}
			list.Elems = append(list.Elems, &ast.Ident{NodeInfo: info(p.token), Name: p.token.Literal})
			p.nextToken()
		}
		p.nextToken()
		p.expect(token.EQ)
		return list
	}
	return nil
}

// parseParams parses a parenthesized parameter list. When special is set,
// varargin and nargin become flags instead of positional parameters.
func (p *Parser) parseParams(special bool) (params []ast.Node, varargin, nargin bool) {
	p.expect(token.LPAREN)
	for !p.check(token.RPAREN) {
		switch {
		case p.check(token.IDENT):
			name := p.token.Literal
			switch {
			case special && name == "varargin":
				varargin = true
			case special && name == "nargin":
				nargin = true
			default:
				params = append(params, &ast.Ident{NodeInfo: info(p.token), Name: name})
			}
		case p.check(token.NEG):
			params = append(params, &ast.Ident{NodeInfo: info(p.token), Name: placeholder})
		default:
			p.addError(fmt.Sprintf(ErrInvalidParam, p.token.Type))
			return nil, false, false
		}
		p.nextToken()
		if !p.match(token.COMMA) {
			break
		}
	}
	p.expect(token.RPAREN)
	return params, varargin, nargin
}
