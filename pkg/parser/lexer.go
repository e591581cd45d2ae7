package parser

import (
	"strings"

	"github.com/leapstack-labs/mlabgo/pkg/token"
)

// Lexer tokenizes source text. Lexing is context sensitive: the meaning of
// quotes, whitespace, newlines and "end" depends on the previous token and
// on bracket nesting, so a Lexer must be used for exactly one input.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      byte // current char under examination
	line    int  // current line number (1-based)
	col     int  // current column number (1-based)

	brackets []byte          // open ( [ { in nesting order
	prev     token.TokenType // type of the last emitted token
	hasPrev  bool
	command  bool // reading command-syntax words
	err      *LexError
}

// NewLexer creates a new Lexer for the given input.
func NewLexer(input string) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
		col:   0,
	}
	l.readChar()
	return l
}

// Tokenize lexes the whole input. The EOF token is included.
func Tokenize(input string) ([]token.Token, error) {
	l := NewLexer(input)
	var toks []token.Token
	for {
		tok := l.NextToken()
		if tok.Type == token.ILLEGAL {
			return toks, l.Err()
		}
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			return toks, nil
		}
	}
}

// Err returns the error that produced an ILLEGAL token, if any.
func (l *Lexer) Err() error {
	if l.err == nil {
		return nil
	}
	return l.err
}

// readChar advances to the next character.
func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.col = 0
	}
	if l.readPos >= len(l.input) {
		l.ch = 0 // ASCII NUL = EOF
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++
	l.col++
}

// peekChar returns the next character without advancing.
func (l *Lexer) peekChar() byte {
	return l.charAt(l.readPos)
}

func (l *Lexer) charAt(i int) byte {
	if i >= len(l.input) {
		return 0
	}
	return l.input[i]
}

// currentPos returns the current position.
func (l *Lexer) currentPos() token.Position {
	return token.Position{
		Line:   l.line,
		Column: l.col,
		Offset: l.pos,
	}
}

func (l *Lexer) atEOF() bool {
	return l.pos >= len(l.input)
}

// NextToken returns the next token. After an ILLEGAL token every further
// call returns EOF.
func (l *Lexer) NextToken() token.Token {
	if l.err != nil {
		return token.Token{Type: token.EOF, Pos: l.currentPos()}
	}
	if l.command {
		if tok, ok := l.readCommandWord(); ok {
			return l.emit(tok)
		}
	}

	spaced := l.skipBlank()
	if l.err != nil {
		return l.illegal()
	}
	pos := l.currentPos()

	// Whitespace between two elements of a [] or {} literal separates them.
	if spaced && l.inList() && l.prevEndsValue() && l.startsValue() {
		return l.emit(token.Token{Type: token.COMMA, Literal: " ", Pos: pos})
	}

	if l.atEOF() {
		return l.emit(token.Token{Type: token.EOF, Pos: pos})
	}

	var tok token.Token
	tok.Pos = pos

	switch ch := l.ch; ch {
	case '\n':
		tok = l.newToken(token.SEMI, "\n")
	case ';':
		tok = l.newToken(token.SEMI, ";")
	case ',':
		tok = l.newToken(token.COMMA, ",")
	case '(', '[', '{':
		l.brackets = append(l.brackets, ch)
		tok = l.newToken(openers[ch], string(ch))
	case ')', ']', '}':
		if n := len(l.brackets); n > 0 {
			l.brackets = l.brackets[:n-1]
		}
		tok = l.newToken(closers[ch], string(ch))
	case ':':
		tok = l.newToken(token.COLON, ":")
	case '@':
		tok = l.newToken(token.HANDLE, "@")
	case '+':
		tok = l.readOperator(token.PLUS, map[byte]token.TokenType{'+': token.PLUSPLUS, '=': token.PLUSEQ})
	case '-':
		tok = l.readOperator(token.MINUS, map[byte]token.TokenType{'-': token.MINUSMINUS, '=': token.MINUSEQ})
	case '*':
		tok = l.readOperator(token.MUL, map[byte]token.TokenType{'*': token.EXP, '=': token.MULEQ})
	case '/':
		tok = l.readOperator(token.DIV, map[byte]token.TokenType{'=': token.DIVEQ})
	case '\\':
		tok = l.newToken(token.BACKSLASH, "\\")
	case '^':
		tok = l.readOperator(token.EXP, map[byte]token.TokenType{'=': token.EXPEQ})
	case '=':
		tok = l.readOperator(token.EQ, map[byte]token.TokenType{'=': token.EQEQ})
	case '~', '!':
		tok = l.readOperator(token.NEG, map[byte]token.TokenType{'=': token.NE})
	case '<':
		tok = l.readOperator(token.LT, map[byte]token.TokenType{'=': token.LE})
	case '>':
		tok = l.readOperator(token.GT, map[byte]token.TokenType{'=': token.GE})
	case '&':
		tok = l.readOperator(token.AND, map[byte]token.TokenType{'&': token.ANDAND})
	case '|':
		tok = l.readOperator(token.OR, map[byte]token.TokenType{'|': token.OROR})
	case '.':
		return l.readDot(pos)
	case '\'':
		if l.prevEndsValue() && !(spaced && l.inList()) {
			tok = l.newToken(token.TRANSPOSE, "'")
		} else {
			return l.readString(pos, '\'')
		}
	case '"':
		return l.readString(pos, '"')
	default:
		switch {
		case isLetter(ch):
			return l.readIdentifier(pos)
		case isDigit(ch):
			return l.readNumber(pos)
		default:
			return l.fail(pos, "unexpected character %q", ch)
		}
	}

	l.readChar()
	return l.emit(tok)
}

var openers = map[byte]token.TokenType{'(': token.LPAREN, '[': token.LBRACKET, '{': token.LBRACE}

var closers = map[byte]token.TokenType{')': token.RPAREN, ']': token.RBRACKET, '}': token.RBRACE}

// newToken creates a token at the current position.
func (l *Lexer) newToken(t token.TokenType, literal string) token.Token {
	return token.Token{Type: t, Literal: literal, Pos: l.currentPos()}
}

// emit records tok as the previous token and returns it.
func (l *Lexer) emit(tok token.Token) token.Token {
	l.prev = tok.Type
	l.hasPrev = true
	return tok
}

func (l *Lexer) fail(pos token.Position, format string, args ...any) token.Token {
	l.err = newLexError(pos, format, args...)
	return l.illegal()
}

func (l *Lexer) illegal() token.Token {
	return token.Token{Type: token.ILLEGAL, Literal: l.err.Message, Pos: l.err.Pos}
}

// readOperator reads a one- or two-character operator. The current char
// selects single; the following char selects an entry of doubled.
func (l *Lexer) readOperator(single token.TokenType, doubled map[byte]token.TokenType) token.Token {
	pos := l.currentPos()
	if t, ok := doubled[l.peekChar()]; ok {
		lit := l.input[l.pos : l.pos+2]
		l.readChar()
		return token.Token{Type: t, Literal: lit, Pos: pos}
	}
	return token.Token{Type: single, Literal: string(l.ch), Pos: pos}
}

// ---------- Blanks, comments, continuations ----------

// skipBlank skips spaces, comments and line continuations. Newlines are
// skipped only inside parentheses. It reports whether anything was skipped.
func (l *Lexer) skipBlank() bool {
	skipped := false
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\r':
			l.readChar()
		case l.ch == '\n' && l.inParens():
			l.readChar()
		case l.ch == '.' && l.peekChar() == '.' && l.charAt(l.readPos+1) == '.':
			l.skipLine()
			if l.ch == '\n' {
				l.readChar()
			}
		case (l.ch == '%' || l.ch == '#') && l.peekChar() == '{' && l.restOfLineBlank(l.readPos+1):
			if !l.skipBlockComment() {
				return skipped
			}
		case l.ch == '%' || l.ch == '#':
			l.skipLine()
		default:
			return skipped
		}
		skipped = true
	}
}

// skipLine advances to the next newline without consuming it.
func (l *Lexer) skipLine() {
	for l.ch != '\n' && !l.atEOF() {
		l.readChar()
	}
}

func (l *Lexer) restOfLineBlank(from int) bool {
	for i := from; i < len(l.input); i++ {
		switch l.input[i] {
		case ' ', '\t', '\r':
		case '\n':
			return true
		default:
			return false
		}
	}
	return true
}

// skipBlockComment skips a %{ ... %} block. The closing marker must stand
// alone on its line.
func (l *Lexer) skipBlockComment() bool {
	pos := l.currentPos()
	l.skipLine()
	for !l.atEOF() {
		l.readChar() // newline
		start := l.pos
		l.skipLine()
		line := strings.TrimSpace(l.input[start:l.pos])
		if line == "%}" || line == "#}" {
			return true
		}
	}
	l.err = newLexError(pos, ErrUnterminatedComment)
	return false
}

// ---------- Context ----------

func (l *Lexer) top() byte {
	if n := len(l.brackets); n > 0 {
		return l.brackets[n-1]
	}
	return 0
}

func (l *Lexer) inParens() bool { return l.top() == '(' }

func (l *Lexer) inList() bool {
	t := l.top()
	return t == '[' || t == '{'
}

// prevEndsValue reports whether the previous token can end an operand.
func (l *Lexer) prevEndsValue() bool {
	if !l.hasPrev {
		return false
	}
	switch l.prev {
	case token.IDENT, token.NUMBER, token.STRING, token.FIELD, token.END_EXPR,
		token.RPAREN, token.RBRACKET, token.RBRACE,
		token.TRANSPOSE, token.DOTTRANSPOSE:
		return true
	}
	return false
}

// startsValue reports whether the current char begins a new list element.
// A sign starts an element only when glued to its operand, as in [1 -2].
func (l *Lexer) startsValue() bool {
	next := l.peekChar()
	switch c := l.ch; {
	case isLetter(c), isDigit(c):
		return true
	case c == '\'' || c == '"' || c == '(' || c == '[' || c == '{' || c == '@':
		return true
	case c == '.':
		return isDigit(next)
	case c == '+' || c == '-':
		return next != ' ' && next != '\t' && next != '=' && next != c && next != '\n'
	case c == '~' || c == '!':
		return next != '='
	}
	return false
}

// atStatementStart reports whether the next token begins a statement.
func (l *Lexer) atStatementStart() bool {
	if !l.hasPrev {
		return true
	}
	switch l.prev {
	case token.SEMI, token.COMMA:
		return len(l.brackets) == 0
	case token.ELSE, token.TRY, token.OTHERWISE, token.END_STMT,
		token.UNWIND_PROTECT, token.UNWIND_PROTECT_CLEANUP, token.END_UNWIND_PROTECT:
		return true
	}
	return false
}

// ---------- Literals ----------

func (l *Lexer) readIdentifier(pos token.Position) token.Token {
	stmtStart := l.atStatementStart()
	start := l.pos
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	lit := l.input[start:l.pos]
	typ := token.LookupIdent(lit)
	if typ == token.END_STMT && lit == "end" && len(l.brackets) > 0 {
		typ = token.END_EXPR
	}
	if typ == token.IDENT && stmtStart && len(l.brackets) == 0 && l.commandFollows() {
		l.command = true
	}
	return l.emit(token.Token{Type: typ, Literal: lit, Pos: pos})
}

// commandFollows reports whether the text after an identifier at statement
// start is a command-syntax word: blank-separated and not an operator, an
// assignment or a parenthesized argument list.
func (l *Lexer) commandFollows() bool {
	i := l.pos
	for l.charAt(i) == ' ' || l.charAt(i) == '\t' {
		i++
	}
	if i == l.pos {
		return false
	}
	c, next := l.charAt(i), l.charAt(i+1)
	switch {
	case c == '\'':
		return true
	case c == '-' && isLetter(next):
		return true
	case isDigit(c):
		return true
	case isLetter(c):
		j := i
		for isLetter(l.charAt(j)) || isDigit(l.charAt(j)) {
			j++
		}
		if token.IsKeyword(token.LookupIdent(l.input[i:j])) {
			return false
		}
		k := j
		for l.charAt(k) == ' ' || l.charAt(k) == '\t' {
			k++
		}
		// "a b = 1" and "a b(1)" are not commands.
		return l.charAt(k) != '=' && l.charAt(k) != '('
	}
	return false
}

// readCommandWord reads one command-syntax argument. It returns false and
// leaves command mode at the end of the command.
func (l *Lexer) readCommandWord() (token.Token, bool) {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' {
		l.readChar()
	}
	switch l.ch {
	case ';', ',', '\n', '%', '#', 0:
		l.command = false
		return token.Token{}, false
	}
	pos := l.currentPos()
	if l.ch == '\'' {
		tok := l.readString(pos, '\'')
		if tok.Type == token.ILLEGAL {
			l.command = false
		}
		return tok, true
	}
	start := l.pos
	for !isCommandEnd(l.ch) {
		l.readChar()
	}
	return token.Token{Type: token.STRING, Literal: l.input[start:l.pos], Pos: pos}, true
}

func isCommandEnd(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', ';', ',', '%', '#', 0:
		return true
	}
	return false
}

func (l *Lexer) readNumber(pos token.Position) token.Token {
	start := l.pos
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && !isElementwiseOpChar(l.peekChar()) && l.peekChar() != '.' {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	return l.finishNumber(pos, start)
}

func (l *Lexer) finishNumber(pos token.Position, start int) token.Token {
	if l.ch == 'e' || l.ch == 'E' {
		next := l.peekChar()
		if isDigit(next) || ((next == '+' || next == '-') && isDigit(l.charAt(l.readPos+1))) {
			l.readChar()
			if l.ch == '+' || l.ch == '-' {
				l.readChar()
			}
			for isDigit(l.ch) {
				l.readChar()
			}
		}
	}
	switch l.ch {
	case 'i', 'j', 'I', 'J':
		if n := l.peekChar(); !isLetter(n) && !isDigit(n) {
			return l.fail(pos, ErrImaginaryNumber)
		}
	}
	return l.emit(token.Token{Type: token.NUMBER, Literal: l.input[start:l.pos], Pos: pos})
}

// readDot handles everything starting with '.': fractions, elementwise
// operators, transposes and field names.
func (l *Lexer) readDot(pos token.Position) token.Token {
	next := l.peekChar()
	switch {
	case isDigit(next):
		start := l.pos
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
		return l.finishNumber(pos, start)
	case next == '*':
		return l.readDotOp(token.DOTMUL)
	case next == '/':
		return l.readDotOp(token.DOTDIV)
	case next == '\\':
		return l.readDotOp(token.DOTBACKSLASH)
	case next == '^':
		return l.readDotOp(token.DOTEXP)
	case next == '\'':
		return l.readDotOp(token.DOTTRANSPOSE)
	case isLetter(next) && l.prevEndsValue():
		l.readChar()
		start := l.pos
		for isLetter(l.ch) || isDigit(l.ch) {
			l.readChar()
		}
		return l.emit(token.Token{Type: token.FIELD, Literal: l.input[start:l.pos], Pos: pos})
	case next == '(':
		return l.fail(pos, ErrDynamicField)
	}
	return l.fail(pos, "unexpected character %q", l.ch)
}

func (l *Lexer) readDotOp(t token.TokenType) token.Token {
	pos := l.currentPos()
	lit := l.input[l.pos : l.pos+2]
	l.readChar()
	l.readChar()
	return l.emit(token.Token{Type: t, Literal: lit, Pos: pos})
}

// readString reads a quoted string. A doubled quote stands for itself;
// double-quoted strings also accept backslash escapes.
func (l *Lexer) readString(pos token.Position, quote byte) token.Token {
	var sb strings.Builder
	l.readChar() // opening quote
	for {
		switch {
		case l.atEOF() || l.ch == '\n':
			return l.fail(pos, ErrUnterminatedString)
		case l.ch == quote && l.peekChar() == quote:
			sb.WriteByte(quote)
			l.readChar()
		case l.ch == quote:
			l.readChar()
			return l.emit(token.Token{Type: token.STRING, Literal: sb.String(), Pos: pos})
		case l.ch == '\\' && quote == '"':
			l.readChar()
			sb.WriteByte(unescape(l.ch))
		default:
			sb.WriteByte(l.ch)
		}
		l.readChar()
	}
}

func unescape(c byte) byte {
	switch c {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	case '0':
		return 0
	}
	return c
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isElementwiseOpChar(ch byte) bool {
	return ch == '*' || ch == '/' || ch == '\\' || ch == '^' || ch == '\''
}
