package parser

import (
	"errors"
	"fmt"

	"github.com/leapstack-labs/mlabgo/pkg/token"
)

// LexError represents a lexical analysis error.
type LexError struct {
	Pos     token.Position
	Message string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lexer error at line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

func newLexError(pos token.Position, format string, args ...any) *LexError {
	return &LexError{Pos: pos, Message: fmt.Sprintf(format, args...)}
}

// SyntaxError is raised when no production applies. Token is the offending
// token; a nil Token means the input ended early and more input could
// complete it.
type SyntaxError struct {
	Token   *token.Token
	Message string
}

func (e *SyntaxError) Error() string {
	if e.Token == nil {
		return fmt.Sprintf("parse error: incomplete input: %s", e.Message)
	}
	return fmt.Sprintf("parse error at line %d, column %d: %s", e.Token.Pos.Line, e.Token.Pos.Column, e.Message)
}

// UnsupportedError reports a construct that is recognized but not
// implemented. It is never retryable.
type UnsupportedError struct {
	Pos       token.Position
	Construct string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("unsupported error at line %d, column %d: %s is not supported", e.Pos.Line, e.Pos.Column, e.Construct)
}

// IsIncomplete reports whether err means the input ended before a
// statement was complete. Interactive callers use it to ask for another line.
func IsIncomplete(err error) bool {
	var se *SyntaxError
	return errors.As(err, &se) && se.Token == nil
}

// Common error messages
const (
	ErrUnexpectedToken     = "unexpected token %s, expected %s"
	ErrUnexpectedStatement = "unexpected %s at start of statement"
	ErrUnexpectedExpr      = "unexpected %s in expression"
	ErrMissingSeparator    = "expected ';', ',' or newline after statement, got %s"
	ErrInvalidTarget       = "cannot assign to %s"
	ErrChainedIndex        = "chained indexing is not allowed"
	ErrUnterminatedString  = "unterminated string literal"
	ErrUnterminatedComment = "unterminated block comment"
	ErrImaginaryNumber     = "imaginary number literals are not supported"
	ErrDynamicField        = "dynamic field names are not supported"
	ErrInvalidNumber       = "invalid number literal %q"
	ErrInvalidParam        = "expected parameter name, got %s"
)
