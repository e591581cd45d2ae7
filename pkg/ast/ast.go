// Package ast defines the syntax tree produced by the parser.
//
// Every node variant is a concrete struct implementing Node. Variants
// describe their fields through a static schema (see Schema) and expose
// their field values in schema order, which lets generic consumers such as
// the rewrite engine and the tree dumper walk and rebuild nodes without
// reflection.
package ast

import (
	"fmt"

	"github.com/leapstack-labs/mlabgo/pkg/token"
)

// Kind identifies a node variant.
type Kind int

// Node variants.
const (
	KindInvalid Kind = iota
	KindNumber
	KindString
	KindIdent
	KindColon
	KindRange
	KindUnary
	KindBinary
	KindCompare
	KindLogical
	KindAssign
	KindAugAssign
	KindCall
	KindSubscript
	KindField
	KindList
	KindLambda
	KindFuncDef
	KindReturn
	KindBreak
	KindContinue
	KindGlobal
	KindIf
	KindWhile
	KindFor
	KindTryCatch
	KindUnwind
	KindBlock
	KindExprStmt
	KindAssert

	kindCount
)

var kindNames = [kindCount]string{
	KindInvalid:   "Invalid",
	KindNumber:    "Number",
	KindString:    "String",
	KindIdent:     "Ident",
	KindColon:     "Colon",
	KindRange:     "Range",
	KindUnary:     "Unary",
	KindBinary:    "Binary",
	KindCompare:   "Compare",
	KindLogical:   "Logical",
	KindAssign:    "Assign",
	KindAugAssign: "AugAssign",
	KindCall:      "Call",
	KindSubscript: "Subscript",
	KindField:     "Field",
	KindList:      "List",
	KindLambda:    "Lambda",
	KindFuncDef:   "FuncDef",
	KindReturn:    "Return",
	KindBreak:     "Break",
	KindContinue:  "Continue",
	KindGlobal:    "Global",
	KindIf:        "If",
	KindWhile:     "While",
	KindFor:       "For",
	KindTryCatch:  "TryCatch",
	KindUnwind:    "Unwind",
	KindBlock:     "Block",
	KindExprStmt:  "ExprStmt",
	KindAssert:    "Assert",
}

func (k Kind) String() string {
	if k >= 0 && k < kindCount {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Kinds returns every valid node kind in declaration order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, kindCount-1)
	for k := KindNumber; k < kindCount; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// Node is implemented by every syntax tree variant.
type Node interface {
	Kind() Kind
	Pos() token.Position
	// Values returns the node's fields in Schema(Kind()) order.
	Values() []Value
}

// NodeInfo carries the source position shared by all nodes.
type NodeInfo struct {
	At token.Position
}

// Pos returns the node's source position.
func (n NodeInfo) Pos() token.Position {
	return n.At
}

// Program is the result of parsing a whole source file.
type Program struct {
	Body []Node
}

// Functions returns the top-level function definitions in source order.
func (p *Program) Functions() []*FuncDef {
	var fns []*FuncDef
	for _, n := range p.Body {
		if fn, ok := n.(*FuncDef); ok {
			fns = append(fns, fn)
		}
	}
	return fns
}
