package parser

import (
	"fmt"
	"strconv"

	"github.com/leapstack-labs/mlabgo/pkg/ast"
	"github.com/leapstack-labs/mlabgo/pkg/token"
)

// Expression precedence parsing using a Pratt parser.
//
// Precedence levels, lowest first:
//
//	precAssign      = 1   (= += -= *= /= ^=, right associative)
//	precHandle      = 2   (@)
//	precComma       = 3   (, handled by the list and argument loops)
//	precRange       = 4   (:)
//	precLogical     = 5   (&& ||)
//	precCompare     = 6   (== ~= < <= > >=)
//	precElementwise = 7   (& |)
//	precAdditive    = 8   (+ -)
//	precMultiply    = 9   (* / .* ./ \ .\)
//	precUnary       = 10  (prefix - + ~)
//	precTranspose   = 11  (postfix ' .')
//	precExponent    = 12  (^ .^, right associative)
//	precPostfix     = 13  (( {, not chainable)
//	precField       = 14  (.name ++ --)
const (
	precNone = iota
	precAssign
	precHandle
	precComma // never returned by infixPrecedence; comma-separated loops stop here
	precRange
	precLogical
	precCompare
	precElementwise
	precAdditive
	precMultiply
	precUnary
	precTranspose
	precExponent
	precPostfix
	precField
)

// placeholder is the name given to an ignored "~" parameter or output.
const placeholder = "__"

// parseExpression parses an expression including assignments.
func (p *Parser) parseExpression() ast.Node {
	return p.parseExpressionWithPrecedence(precAssign)
}

// parseExpressionWithPrecedence implements Pratt parsing.
func (p *Parser) parseExpressionWithPrecedence(minPrecedence int) ast.Node {
	left := p.parsePrefixExpr()
	if left == nil {
		return nil
	}

	// Parse infix operators while their precedence is >= minPrecedence
	for {
		prec := infixPrecedence(p.token.Type)
		if prec == precNone || prec < minPrecedence {
			break
		}
		left = p.parseInfixExpr(left, prec)
		if left == nil {
			return nil
		}
	}
	return left
}

// infixPrecedence returns the precedence of t as an infix or postfix
// operator, or precNone.
func infixPrecedence(t token.TokenType) int {
	switch t {
	case token.EQ, token.PLUSEQ, token.MINUSEQ, token.MULEQ, token.DIVEQ, token.EXPEQ:
		return precAssign
	case token.COLON:
		return precRange
	case token.ANDAND, token.OROR:
		return precLogical
	case token.EQEQ, token.NE, token.LT, token.LE, token.GT, token.GE:
		return precCompare
	case token.AND, token.OR:
		return precElementwise
	case token.PLUS, token.MINUS:
		return precAdditive
	case token.MUL, token.DIV, token.DOTMUL, token.DOTDIV, token.BACKSLASH, token.DOTBACKSLASH:
		return precMultiply
	case token.TRANSPOSE, token.DOTTRANSPOSE:
		return precTranspose
	case token.EXP, token.DOTEXP:
		return precExponent
	case token.LPAREN, token.LBRACE:
		return precPostfix
	case token.FIELD, token.PLUSPLUS, token.MINUSMINUS:
		return precField
	}
	return precNone
}

// parsePrefixExpr parses prefix expressions (unary operators and primary expressions).
func (p *Parser) parsePrefixExpr() ast.Node {
	tok := p.token
	switch tok.Type {
	case token.MINUS, token.PLUS:
		p.nextToken()
		x := p.parseExpressionWithPrecedence(precUnary)
		if x == nil {
			return nil
		}
		return &ast.Unary{NodeInfo: info(tok), Op: tok.Type, X: x}

	case token.NEG:
		// A lone ~ in a list or argument position is an ignored output.
		if p.checkPeek(token.COMMA) || p.checkPeek(token.RBRACKET) || p.checkPeek(token.RPAREN) {
			p.nextToken()
			return &ast.Ident{NodeInfo: info(tok), Name: placeholder}
		}
		p.nextToken()
		x := p.parseExpressionWithPrecedence(precUnary)
		if x == nil {
			return nil
		}
		return &ast.Unary{NodeInfo: info(tok), Op: token.NEG, X: x}

	case token.PLUSPLUS, token.MINUSMINUS:
		p.nextToken()
		x := p.parseExpressionWithPrecedence(precField)
		if x == nil {
			return nil
		}
		return p.increment(tok, x)

	case token.HANDLE:
		return p.parseHandle()

	default:
		return p.parsePrimary()
	}
}

// parsePrimary parses literals, names, parenthesized expressions and
// list constructors.
func (p *Parser) parsePrimary() ast.Node {
	tok := p.token
	switch tok.Type {
	case token.IDENT:
		p.nextToken()
		return &ast.Ident{NodeInfo: info(tok), Name: tok.Literal}
	case token.END_EXPR:
		p.nextToken()
		return &ast.Ident{NodeInfo: info(tok), Name: "end"}
	case token.NUMBER:
		v, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			p.addError(fmt.Sprintf(ErrInvalidNumber, tok.Literal))
			return nil
		}
		p.nextToken()
		return &ast.Number{NodeInfo: info(tok), Value: v}
	case token.STRING:
		p.nextToken()
		return &ast.String{NodeInfo: info(tok), Value: tok.Literal}
	case token.COLON:
		p.nextToken()
		return &ast.Colon{NodeInfo: info(tok)}
	case token.LPAREN:
		p.nextToken()
		x := p.parseExpressionWithPrecedence(precHandle)
		if x == nil {
			return nil
		}
		if !p.expect(token.RPAREN) {
			return nil
		}
		return x
	case token.LBRACKET:
		return p.parseList(token.RBRACKET, false)
	case token.LBRACE:
		return p.parseList(token.RBRACE, true)
	case token.EOF:
		p.addError("expected expression")
		return nil
	}
	p.addError(fmt.Sprintf(ErrUnexpectedExpr, tok.Type))
	return nil
}

// parseHandle parses @name and @(params) body.
func (p *Parser) parseHandle() ast.Node {
	tok := p.token
	p.nextToken()
	if p.check(token.IDENT) {
		id := &ast.Ident{NodeInfo: info(p.token), Name: p.token.Literal}
		p.nextToken()
		return id
	}
	if !p.check(token.LPAREN) {
		p.addError(fmt.Sprintf(ErrUnexpectedToken, p.token.Type, "function name or parameter list"))
		return nil
	}
	params, _, _ := p.parseParams(false)
	body := p.parseExpressionWithPrecedence(precHandle + 1)
	if body == nil {
		return nil
	}
	return &ast.Lambda{NodeInfo: info(tok), Params: params, Body: body}
}

// parseList parses [ ... ] and { ... } literals. Commas (or blanks)
// separate elements; semicolons (or newlines) separate rows.
func (p *Parser) parseList(closer token.TokenType, cell bool) ast.Node {
	start := p.token
	p.nextToken()

	var rows [][]ast.Node
	var row []ast.Node
	for !p.check(closer) {
		switch p.token.Type {
		case token.SEMI:
			if len(row) > 0 {
				rows = append(rows, row)
				row = nil
			}
			p.nextToken()
			continue
		case token.COMMA:
			p.nextToken()
			continue
		case token.EOF:
			p.addError(fmt.Sprintf(ErrUnexpectedToken, token.EOF, closer))
			return nil
		}
		elem := p.parseExpressionWithPrecedence(precRange)
		if elem == nil {
			return nil
		}
		row = append(row, elem)
		if !p.checkAny(token.COMMA, token.SEMI, closer) {
			p.addError(fmt.Sprintf(ErrUnexpectedToken, p.token.Type, closer))
			return nil
		}
	}
	p.nextToken()
	if len(row) > 0 {
		rows = append(rows, row)
	}

	form := ast.ListVector
	if cell {
		form = ast.ListCell
	}
	list := &ast.List{NodeInfo: info(start), Form: form}
	switch len(rows) {
	case 0:
	case 1:
		list.Elems = rows[0]
	default:
		if !cell {
			list.Form = ast.ListMatrix
		}
		for _, r := range rows {
			list.Elems = append(list.Elems, &ast.List{NodeInfo: ast.NodeInfo{At: r[0].Pos()}, Form: ast.ListRow, Elems: r})
		}
	}
	return list
}

// parseInfixExpr parses an infix or postfix operator applied to left.
func (p *Parser) parseInfixExpr(left ast.Node, prec int) ast.Node {
	tok := p.token
	switch tok.Type {
	case token.EQ, token.PLUSEQ, token.MINUSEQ, token.MULEQ, token.DIVEQ, token.EXPEQ:
		p.nextToken()
		// Right associative
		value := p.parseExpressionWithPrecedence(precAssign)
		if value == nil {
			return nil
		}
		return p.assignment(tok, left, value)

	case token.COLON:
		p.nextToken()
		hi := p.parseExpressionWithPrecedence(prec + 1)
		if hi == nil {
			return nil
		}
		// lo:step:hi arrives as (lo:step):hi
		if r, ok := left.(*ast.Range); ok && r.Step == nil {
			return &ast.Range{NodeInfo: r.NodeInfo, Lo: r.Lo, Step: r.Hi, Hi: hi}
		}
		return &ast.Range{NodeInfo: ast.NodeInfo{At: left.Pos()}, Lo: left, Hi: hi}

	case token.TRANSPOSE, token.DOTTRANSPOSE:
		p.nextToken()
		return &ast.Unary{NodeInfo: info(tok), Op: tok.Type, X: left}

	case token.LPAREN, token.LBRACE:
		return p.parseIndex(left)

	case token.FIELD:
		p.nextToken()
		return &ast.Field{NodeInfo: info(tok), X: left, Name: tok.Literal}

	case token.PLUSPLUS, token.MINUSMINUS:
		p.nextToken()
		return p.increment(tok, left)
	}

	p.nextToken()
	next := prec + 1
	if tok.Type == token.EXP || tok.Type == token.DOTEXP {
		// Right associative
		next = prec
	}
	right := p.parseExpressionWithPrecedence(next)
	if right == nil {
		return nil
	}

	switch prec {
	case precCompare:
		return &ast.Compare{NodeInfo: info(tok), X: left, Op: tok.Type, Y: right}
	case precLogical:
		return &ast.Logical{NodeInfo: info(tok), X: left, Op: tok.Type, Y: right}
	}
	return &ast.Binary{NodeInfo: info(tok), X: left, Op: tok.Type, Y: right}
}

// parseIndex parses x(args) and x{args}. Parenthesized arguments build a
// Call unless the first argument is a bare colon; brace arguments always
// index. Indexing results cannot be indexed again directly.
func (p *Parser) parseIndex(left ast.Node) ast.Node {
	tok := p.token
	cell := tok.Type == token.LBRACE
	closer := token.RPAREN
	if cell {
		closer = token.RBRACE
	}
	p.nextToken()

	var args []ast.Node
	for !p.check(closer) {
		arg := p.parseArgument(closer)
		if arg == nil {
			return nil
		}
		args = append(args, arg)
		if !p.match(token.COMMA) {
			break
		}
	}
	if !p.expect(closer) {
		return nil
	}
	if p.check(token.LPAREN) || p.check(token.LBRACE) {
		p.addError(ErrChainedIndex)
		return nil
	}

	if cell || (len(args) > 0 && args[0].Kind() == ast.KindColon) {
		return &ast.Subscript{NodeInfo: info(tok), X: left, Index: p.rebaseIndex(args), Cell: cell}
	}
	return &ast.Call{NodeInfo: info(tok), Fun: left, Args: args}
}

// parseArgument parses one argument; a bare ':' selects a whole dimension.
func (p *Parser) parseArgument(closer token.TokenType) ast.Node {
	if p.check(token.COLON) && (p.checkPeek(token.COMMA) || p.checkPeek(closer)) {
		n := &ast.Colon{NodeInfo: info(p.token)}
		p.nextToken()
		return n
	}
	return p.parseExpressionWithPrecedence(precRange)
}

// increment builds the AugAssign for ++ and --.
func (p *Parser) increment(tok token.Token, target ast.Node) ast.Node {
	target = p.assignTarget(target)
	if target == nil {
		return nil
	}
	op := token.PLUS
	if tok.Type == token.MINUSMINUS {
		op = token.MINUS
	}
	return &ast.AugAssign{
		NodeInfo: info(tok),
		Target:   target,
		Op:       op,
		Value:    &ast.Number{NodeInfo: info(tok), Value: 1},
	}
}

var compoundOps = map[token.TokenType]token.TokenType{
	token.PLUSEQ:  token.PLUS,
	token.MINUSEQ: token.MINUS,
	token.MULEQ:   token.MUL,
	token.DIVEQ:   token.DIV,
	token.EXPEQ:   token.EXP,
}

// assignment builds Assign or AugAssign after converting the target.
func (p *Parser) assignment(tok token.Token, target, value ast.Node) ast.Node {
	if list, ok := target.(*ast.List); ok && list.Form == ast.ListVector {
		p.addUnsupported(list.Pos(), "multiple assignment")
		return nil
	}
	target = p.assignTarget(target)
	if target == nil {
		return nil
	}
	if op, ok := compoundOps[tok.Type]; ok {
		return &ast.AugAssign{NodeInfo: info(tok), Target: target, Op: op, Value: value}
	}
	return &ast.Assign{NodeInfo: info(tok), Target: target, Value: value}
}

// assignTarget validates an assignment target. A Call on the left of an
// assignment is an indexed store, so it becomes a Subscript with rebased
// arguments; this applies through field accesses as in s.a(2).b = v.
func (p *Parser) assignTarget(n ast.Node) ast.Node {
	switch t := n.(type) {
	case *ast.Ident:
		if t.Name == "end" {
			break
		}
		return t
	case *ast.Call:
		x := p.storeBase(t.Fun)
		if x == nil {
			return nil
		}
		return &ast.Subscript{NodeInfo: t.NodeInfo, X: x, Index: p.rebaseIndex(t.Args)}
	case *ast.Subscript:
		x := p.storeBase(t.X)
		if x == nil {
			return nil
		}
		return &ast.Subscript{NodeInfo: t.NodeInfo, X: x, Index: t.Index, Cell: t.Cell}
	case *ast.Field:
		x := p.storeBase(t.X)
		if x == nil {
			return nil
		}
		return &ast.Field{NodeInfo: t.NodeInfo, X: x, Name: t.Name}
	}
	p.addError(fmt.Sprintf(ErrInvalidTarget, n.Kind()))
	return nil
}

// storeBase converts the container part of an assignment target.
func (p *Parser) storeBase(n ast.Node) ast.Node {
	switch n.(type) {
	case *ast.Ident, *ast.Call, *ast.Subscript, *ast.Field:
		return p.assignTarget(n)
	}
	p.addError(fmt.Sprintf(ErrInvalidTarget, n.Kind()))
	return nil
}

// rebaseIndex converts 1-based index bounds to 0-based. Numeric literals
// are decremented, other bounds become expr - 1, range bounds are rebased
// separately and bare colons are left alone.
func (p *Parser) rebaseIndex(index []ast.Node) []ast.Node {
	if !p.rebase {
		return index
	}
	out := make([]ast.Node, len(index))
	for i, n := range index {
		out[i] = RebaseBound(n)
	}
	return out
}

// RebaseBound rebases a single index bound.
func RebaseBound(n ast.Node) ast.Node {
	switch b := n.(type) {
	case *ast.Colon:
		return b
	case *ast.Number:
		return &ast.Number{NodeInfo: b.NodeInfo, Value: b.Value - 1}
	case *ast.Range:
		return &ast.Range{NodeInfo: b.NodeInfo, Lo: RebaseBound(b.Lo), Step: b.Step, Hi: RebaseBound(b.Hi)}
	}
	return &ast.Binary{
		NodeInfo: ast.NodeInfo{At: n.Pos()},
		X:        n,
		Op:       token.MINUS,
		Y:        &ast.Number{NodeInfo: ast.NodeInfo{At: n.Pos()}, Value: 1},
	}
}
