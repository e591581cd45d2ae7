// Package parser turns source text into a syntax tree.
//
// # Usage
//
//	prog, err := parser.Parse(src)
//	if err != nil {
//	    // *LexError, *SyntaxError or *UnsupportedError
//	}
//
// # Grammar Overview
//
// The parser is a recursive descent parser with Pratt-style precedence
// climbing for expressions:
//
//	program    → { statement | function }
//	function   → FUNCTION [outputs '='] IDENT ['(' params ')'] body [END]
//	statement  → if | while | for | switch | try | unwind | global
//	           | BREAK | CONTINUE | RETURN | command | expr
//	command    → IDENT STRING {STRING}
//
// Index expressions are rebased from 1-based to 0-based while the tree is
// built. A Parser is single use: create one per source text.
package parser

import (
	"fmt"

	"github.com/leapstack-labs/mlabgo/pkg/ast"
	"github.com/leapstack-labs/mlabgo/pkg/token"
)

// Parser parses source text into an AST.
type Parser struct {
	lexer  *Lexer
	token  token.Token // current token
	peek   token.Token // lookahead token
	peek2  token.Token // second lookahead token
	errors []error
	halted bool

	rebase bool       // rebase index bounds while building
	fn     *funcState // innermost function being parsed
}

// funcState is the per-function state needed while its body is parsed.
type funcState struct {
	output ast.Node // returned expression, nil for no outputs
}

// Option configures a Parser.
type Option func(*Parser)

// WithInlineRebase controls whether index bounds are rebased to 0-based
// while parsing. It is on by default; turn it off only when a rewrite pass
// does the rebasing instead.
func WithInlineRebase(on bool) Option {
	return func(p *Parser) {
		p.rebase = on
	}
}

// NewParser creates a new parser for the given source.
func NewParser(src string, opts ...Option) *Parser {
	p := &Parser{
		lexer:  NewLexer(src),
		rebase: true,
	}
	for _, opt := range opts {
		opt(p)
	}
	// Read three tokens to initialize current, peek, and peek2
	p.nextToken()
	p.nextToken()
	p.nextToken()
	return p
}

// Parse parses a whole source file.
func Parse(src string) (*ast.Program, error) {
	return NewParser(src).ParseProgram()
}

// ParseWithOptions parses a whole source file with the given options.
func ParseWithOptions(src string, opts ...Option) (*ast.Program, error) {
	return NewParser(src, opts...).ParseProgram()
}

// ParseProgram parses statements and function declarations up to the end
// of input. Parsing stops at the first error.
func (p *Parser) ParseProgram() (*ast.Program, error) {
	prog := &ast.Program{}
	for {
		p.skipSeparators()
		if p.check(token.EOF) {
			break
		}
		if n := p.parseTopLevel(); n != nil {
			prog.Body = append(prog.Body, n)
		}
	}
	if len(p.errors) > 0 {
		return nil, p.errors[0]
	}
	return prog, nil
}

// ParseStatement parses a single statement or function declaration. It
// returns nil at the end of input.
func (p *Parser) ParseStatement() (ast.Node, error) {
	p.skipSeparators()
	if p.check(token.EOF) {
		return nil, p.firstError()
	}
	n := p.parseTopLevel()
	if err := p.firstError(); err != nil {
		return nil, err
	}
	return n, nil
}

func (p *Parser) parseTopLevel() ast.Node {
	switch p.token.Type {
	case token.FUNCTION:
		return p.parseFunction()
	case token.END_STMT:
		p.addError(fmt.Sprintf(ErrUnexpectedStatement, "end"))
		return nil
	default:
		return p.parseStatement()
	}
}

func (p *Parser) firstError() error {
	if len(p.errors) > 0 {
		return p.errors[0]
	}
	return nil
}

// ---------- Token Helpers ----------

// nextToken advances to the next token. Once an error is recorded every
// token reads as EOF so that all loops unwind.
func (p *Parser) nextToken() {
	if p.halted {
		return
	}
	p.token = p.peek
	p.peek = p.peek2
	p.peek2 = p.lexer.NextToken()
	if p.token.Type == token.ILLEGAL {
		p.errors = append(p.errors, p.lexer.Err())
		p.halt()
	}
}

func (p *Parser) halt() {
	p.halted = true
	eof := token.Token{Type: token.EOF, Pos: p.token.Pos}
	p.token, p.peek, p.peek2 = eof, eof, eof
}

// check returns true if the current token is of the given type.
func (p *Parser) check(t token.TokenType) bool {
	return p.token.Type == t
}

// checkPeek returns true if the peek token is of the given type.
func (p *Parser) checkPeek(t token.TokenType) bool {
	return p.peek.Type == t
}

// checkAny returns true if the current token is any of the given types.
func (p *Parser) checkAny(types ...token.TokenType) bool {
	for _, t := range types {
		if p.check(t) {
			return true
		}
	}
	return false
}

// match consumes the current token if it matches and returns true.
func (p *Parser) match(t token.TokenType) bool {
	if p.check(t) {
		p.nextToken()
		return true
	}
	return false
}

// expect consumes the current token if it matches, otherwise adds an error.
func (p *Parser) expect(t token.TokenType) bool {
	if p.check(t) {
		p.nextToken()
		return true
	}
	p.addError(fmt.Sprintf(ErrUnexpectedToken, p.token.Type, t))
	return false
}

// addError records a syntax error at the current token and halts parsing.
// An error at the end of input has no token, marking it incomplete.
func (p *Parser) addError(msg string) {
	if p.halted {
		return
	}
	err := &SyntaxError{Message: msg}
	if !p.check(token.EOF) {
		tok := p.token
		err.Token = &tok
	}
	p.errors = append(p.errors, err)
	p.halt()
}

// addUnsupported records a fatal unsupported-construct error.
func (p *Parser) addUnsupported(pos token.Position, construct string) {
	if p.halted {
		return
	}
	p.errors = append(p.errors, &UnsupportedError{Pos: pos, Construct: construct})
	p.halt()
}

// skipSeparators consumes any run of ; , and newlines.
func (p *Parser) skipSeparators() {
	for p.check(token.SEMI) || p.check(token.COMMA) {
		p.nextToken()
	}
}

// info returns the position info for a node starting at tok.
func info(tok token.Token) ast.NodeInfo {
	return ast.NodeInfo{At: tok.Pos}
}
