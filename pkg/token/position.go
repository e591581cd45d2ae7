package token

import "fmt"

// Position locates a token in a source file. The zero value means unknown.
type Position struct {
	Line   int // from 1
	Column int // from 1, in bytes
	Offset int // from 0
}

// IsValid reports whether the position was set by the lexer.
func (p Position) IsValid() bool { return p.Line > 0 }

func (p Position) String() string {
	if !p.IsValid() {
		return "-"
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}
