// Package rewrite applies pattern-based transformations to syntax trees.
//
// A Rule pairs a Pattern with either a Template or an Evaluator. The Engine
// walks a tree in pre-order and, at each node, replaces it with the result
// of the first rule whose pattern matches. A node is replaced at most once
// per pass; the walk then continues into the children of the replacement.
//
// Patterns address node fields by their schema names (see ast.Schema).
// Fields a pattern does not mention match anything:
//
//	rewrite.Match(ast.KindCall,
//		rewrite.F("fun", rewrite.Match(ast.KindIdent, rewrite.F("name", rewrite.Eq("assert")))),
//		rewrite.F("args", rewrite.List(rewrite.Capture("cond"), rewrite.Rest(""))),
//	)
//
// A name captured twice in one pattern must bind structurally equal values.
package rewrite
