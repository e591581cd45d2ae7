package format

import (
	"strconv"

	"github.com/leapstack-labs/mlabgo/pkg/ast"
)

func (p *Printer) dumpNode(label string, n ast.Node) {
	if label != "" {
		p.write(label + ": ")
	}
	if n == nil {
		p.write("<nil>")
		p.writeln()
		return
	}
	p.write(n.Kind().String())
	if pos := n.Pos(); pos.IsValid() {
		p.write(" @" + pos.String())
	}

	schema := ast.Schema(n.Kind())
	vals := n.Values()
	for i, f := range schema {
		v := vals[i]
		switch f.Kind {
		case ast.FieldString:
			if v.Str == "" {
				continue
			}
			s := v.Str
			if n.Kind() == ast.KindString {
				s = strconv.Quote(s)
			}
			p.write(" " + f.Name + "=" + s)
		case ast.FieldNumber:
			p.write(" " + f.Name + "=" + formatNumber(v.Num))
		case ast.FieldBool:
			if v.Bool {
				p.write(" " + f.Name)
			}
		case ast.FieldOp:
			p.write(" " + f.Name + "=" + v.Op.String())
		}
	}
	p.writeln()

	p.indent()
	for i, f := range schema {
		v := vals[i]
		switch f.Kind {
		case ast.FieldNode:
			if v.Node != nil {
				p.dumpNode(f.Name, v.Node)
			}
		case ast.FieldList:
			if len(v.List) == 0 {
				continue
			}
			p.write(f.Name + ":")
			p.writeln()
			p.indent()
			for _, c := range v.List {
				p.dumpNode("", c)
			}
			p.dedent()
		}
	}
	p.dedent()
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
