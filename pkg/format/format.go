package format

import (
	"io"

	"github.com/leapstack-labs/mlabgo/pkg/ast"
)

// Dump writes an indented tree of n to w. Each line shows a node's kind,
// its source position and its non-empty scalar fields; child nodes follow
// one level deeper, labelled with their field name.
func Dump(w io.Writer, n ast.Node) error {
	p := newPrinter()
	p.dumpNode("", n)
	_, err := io.WriteString(w, p.String())
	return err
}

// DumpProgram writes every top-level statement of prog under a Program
// header.
func DumpProgram(w io.Writer, prog *ast.Program) error {
	p := newPrinter()
	p.write("Program")
	p.writeln()
	p.indent()
	for _, n := range prog.Body {
		p.dumpNode("", n)
	}
	_, err := io.WriteString(w, p.String())
	return err
}

// Source renders n as source text. Statements are printed one per line
// without terminators.
func Source(n ast.Node) string {
	p := newPrinter()
	p.formatStmt(n)
	return p.String()
}

// ProgramSource renders every top-level statement of prog.
func ProgramSource(prog *ast.Program) string {
	p := newPrinter()
	p.formatBlock(prog.Body)
	return p.String()
}
