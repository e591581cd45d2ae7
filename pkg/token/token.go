// Package token defines the lexical tokens of the MATLAB-like source language.
//
// Keywords and operators are plain constants so the lexer and parser can
// switch on them directly.
package token

import "fmt"

// TokenType represents the type of a lexical token.
//
//nolint:revive // Accept stutter as token.TokenType is clear and widely used
type TokenType int32

//nolint:revive // ALL_CAPS names follow the grammar's terminal names
const (
	// Special tokens
	EOF TokenType = iota
	ILLEGAL

	// Literals
	IDENT  // identifier
	NUMBER // 42, 3.14, 1e-3
	STRING // 'text' or "text"; command-syntax words
	FIELD  // .name (literal holds name)

	// Separators
	SEMI     // ; or newline
	COMMA    // ,
	LPAREN   // (
	RPAREN   // )
	LBRACKET // [
	RBRACKET // ]
	LBRACE   // {
	RBRACE   // }
	COLON    // :
	HANDLE   // @

	// Arithmetic operators
	PLUS         // +
	MINUS        // -
	MUL          // *
	DIV          // /
	BACKSLASH    // \
	EXP          // ^ or **
	DOTMUL       // .*
	DOTDIV       // ./
	DOTBACKSLASH // .\
	DOTEXP       // .^
	TRANSPOSE    // '
	DOTTRANSPOSE // .'

	// Comparison and logical operators
	EQEQ   // ==
	NE     // ~= or !=
	LT     // <
	GT     // >
	LE     // <=
	GE     // >=
	AND    // &
	OR     // |
	ANDAND // &&
	OROR   // ||
	NEG    // ~ or !

	// Assignment operators
	EQ         // =
	PLUSEQ     // +=
	MINUSEQ    // -=
	MULEQ      // *=
	DIVEQ      // /=
	EXPEQ      // ^=
	PLUSPLUS   // ++
	MINUSMINUS // --

	// Keywords
	BREAK
	CASE
	CATCH
	CONTINUE
	ELSE
	ELSEIF
	END_EXPR // end inside an index expression
	END_STMT // end closing a block
	FOR
	FUNCTION
	GLOBAL
	IF
	OTHERWISE
	PERSISTENT
	RETURN
	SWITCH
	TRY
	WHILE
	UNWIND_PROTECT
	UNWIND_PROTECT_CLEANUP
	END_UNWIND_PROTECT
)

// String returns a human-readable representation of the token type.
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TOKEN(%d)", t)
}

// tokenNames maps token types to their string representations.
var tokenNames = map[TokenType]string{
	EOF:     "EOF",
	ILLEGAL: "ILLEGAL",

	IDENT:  "IDENT",
	NUMBER: "NUMBER",
	STRING: "STRING",
	FIELD:  "FIELD",

	SEMI:     ";",
	COMMA:    ",",
	LPAREN:   "(",
	RPAREN:   ")",
	LBRACKET: "[",
	RBRACKET: "]",
	LBRACE:   "{",
	RBRACE:   "}",
	COLON:    ":",
	HANDLE:   "@",

	PLUS:         "+",
	MINUS:        "-",
	MUL:          "*",
	DIV:          "/",
	BACKSLASH:    "\\",
	EXP:          "^",
	DOTMUL:       ".*",
	DOTDIV:       "./",
	DOTBACKSLASH: ".\\",
	DOTEXP:       ".^",
	TRANSPOSE:    "'",
	DOTTRANSPOSE: ".'",

	EQEQ:   "==",
	NE:     "~=",
	LT:     "<",
	GT:     ">",
	LE:     "<=",
	GE:     ">=",
	AND:    "&",
	OR:     "|",
	ANDAND: "&&",
	OROR:   "||",
	NEG:    "~",

	EQ:         "=",
	PLUSEQ:     "+=",
	MINUSEQ:    "-=",
	MULEQ:      "*=",
	DIVEQ:      "/=",
	EXPEQ:      "^=",
	PLUSPLUS:   "++",
	MINUSMINUS: "--",

	BREAK:                  "BREAK",
	CASE:                   "CASE",
	CATCH:                  "CATCH",
	CONTINUE:               "CONTINUE",
	ELSE:                   "ELSE",
	ELSEIF:                 "ELSEIF",
	END_EXPR:               "END_EXPR",
	END_STMT:               "END_STMT",
	FOR:                    "FOR",
	FUNCTION:               "FUNCTION",
	GLOBAL:                 "GLOBAL",
	IF:                     "IF",
	OTHERWISE:              "OTHERWISE",
	PERSISTENT:             "PERSISTENT",
	RETURN:                 "RETURN",
	SWITCH:                 "SWITCH",
	TRY:                    "TRY",
	WHILE:                  "WHILE",
	UNWIND_PROTECT:         "UNWIND_PROTECT",
	UNWIND_PROTECT_CLEANUP: "UNWIND_PROTECT_CLEANUP",
	END_UNWIND_PROTECT:     "END_UNWIND_PROTECT",
}

// keywords maps keyword spellings to their token types. Every block
// terminator spelling maps to END_STMT; the lexer decides whether a bare
// "end" is END_STMT or END_EXPR.
var keywords = map[string]TokenType{
	"break":                  BREAK,
	"case":                   CASE,
	"catch":                  CATCH,
	"continue":               CONTINUE,
	"else":                   ELSE,
	"elseif":                 ELSEIF,
	"end":                    END_STMT,
	"endfunction":            END_STMT,
	"endif":                  END_STMT,
	"endwhile":               END_STMT,
	"endfor":                 END_STMT,
	"endswitch":              END_STMT,
	"end_try_catch":          END_STMT,
	"for":                    FOR,
	"function":               FUNCTION,
	"global":                 GLOBAL,
	"if":                     IF,
	"otherwise":              OTHERWISE,
	"persistent":             PERSISTENT,
	"return":                 RETURN,
	"switch":                 SWITCH,
	"try":                    TRY,
	"while":                  WHILE,
	"unwind_protect":         UNWIND_PROTECT,
	"unwind_protect_cleanup": UNWIND_PROTECT_CLEANUP,
	"end_unwind_protect":     END_UNWIND_PROTECT,
}

// LookupIdent returns the token type for the given identifier.
// If the identifier is a keyword, the keyword token type is returned.
// Otherwise, IDENT is returned.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// IsKeyword returns true if the token type is a keyword.
func IsKeyword(t TokenType) bool {
	return t >= BREAK && t <= END_UNWIND_PROTECT
}

// IsOperator returns true if the token type is an operator.
func IsOperator(t TokenType) bool {
	return t >= PLUS && t <= MINUSMINUS
}

// IsAssignOp returns true for = and the compound assignment operators.
func IsAssignOp(t TokenType) bool {
	return t >= EQ && t <= EXPEQ
}

// Token represents a lexical token with position information.
type Token struct {
	Type    TokenType
	Literal string
	Pos     Position
}

// String renders the token for diagnostics.
func (t Token) String() string {
	switch t.Type {
	case IDENT, NUMBER, FIELD:
		return fmt.Sprintf("%s(%s)", t.Type, t.Literal)
	case STRING:
		return fmt.Sprintf("%s(%q)", t.Type, t.Literal)
	default:
		return t.Type.String()
	}
}
