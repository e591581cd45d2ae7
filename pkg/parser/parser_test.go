package parser_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/mlabgo/pkg/ast"
	"github.com/leapstack-labs/mlabgo/pkg/parser"
	"github.com/leapstack-labs/mlabgo/pkg/token"
)

func ident(name string) *ast.Ident { return &ast.Ident{Name: name} }
func num(v float64) *ast.Number    { return &ast.Number{Value: v} }
func str(s string) *ast.String     { return &ast.String{Value: s} }

func parseOne(t *testing.T, src string) ast.Node {
	t.Helper()
	prog, err := parser.Parse(src)
	require.NoError(t, err)
	require.Len(t, prog.Body, 1)
	return prog.Body[0]
}

func assertTree(t *testing.T, want, got ast.Node) {
	t.Helper()
	assert.True(t, ast.Equal(want, got), "trees differ\nwant: %#v\n got: %#v", want, got)
}

// ---------- Expressions ----------

func TestParsePrecedence(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want ast.Node
	}{
		{
			name: "multiply binds tighter than add",
			src:  "1 + 2 * 3",
			want: &ast.Binary{X: num(1), Op: token.PLUS, Y: &ast.Binary{X: num(2), Op: token.MUL, Y: num(3)}},
		},
		{
			name: "subtraction is left associative",
			src:  "a - b - c",
			want: &ast.Binary{X: &ast.Binary{X: ident("a"), Op: token.MINUS, Y: ident("b")}, Op: token.MINUS, Y: ident("c")},
		},
		{
			name: "exponent is right associative",
			src:  "a ^ b ^ c",
			want: &ast.Binary{X: ident("a"), Op: token.EXP, Y: &ast.Binary{X: ident("b"), Op: token.EXP, Y: ident("c")}},
		},
		{
			name: "unary minus is weaker than exponent",
			src:  "-2 ^ 2",
			want: &ast.Unary{Op: token.MINUS, X: &ast.Binary{X: num(2), Op: token.EXP, Y: num(2)}},
		},
		{
			name: "unary minus is stronger than multiply",
			src:  "-a * b",
			want: &ast.Binary{X: &ast.Unary{Op: token.MINUS, X: ident("a")}, Op: token.MUL, Y: ident("b")},
		},
		{
			name: "transpose binds tighter than unary",
			src:  "-a'",
			want: &ast.Unary{Op: token.MINUS, X: &ast.Unary{Op: token.TRANSPOSE, X: ident("a")}},
		},
		{
			name: "comparison above logical",
			src:  "a < b && c == d",
			want: &ast.Logical{
				X:  &ast.Compare{X: ident("a"), Op: token.LT, Y: ident("b")},
				Op: token.ANDAND,
				Y:  &ast.Compare{X: ident("c"), Op: token.EQEQ, Y: ident("d")},
			},
		},
		{
			name: "elementwise and above comparison",
			src:  "a == b & c",
			want: &ast.Compare{X: ident("a"), Op: token.EQEQ, Y: &ast.Binary{X: ident("b"), Op: token.AND, Y: ident("c")}},
		},
		{
			name: "range is below arithmetic",
			src:  "1:n+1",
			want: &ast.Range{Lo: num(1), Hi: &ast.Binary{X: ident("n"), Op: token.PLUS, Y: num(1)}},
		},
		{
			name: "stepped range",
			src:  "10:-2:0",
			want: &ast.Range{Lo: num(10), Step: &ast.Unary{Op: token.MINUS, X: num(2)}, Hi: num(0)},
		},
		{
			name: "field access binds tightest",
			src:  "-s.a",
			want: &ast.Unary{Op: token.MINUS, X: &ast.Field{X: ident("s"), Name: "a"}},
		},
		{
			name: "call on field",
			src:  "s.f(1)",
			want: &ast.Call{Fun: &ast.Field{X: ident("s"), Name: "f"}, Args: []ast.Node{num(1)}},
		},
		{
			name: "parentheses group",
			src:  "(1 + 2) * 3",
			want: &ast.Binary{X: &ast.Binary{X: num(1), Op: token.PLUS, Y: num(2)}, Op: token.MUL, Y: num(3)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt, ok := parseOne(t, tt.src).(*ast.ExprStmt)
			require.True(t, ok)
			assertTree(t, tt.want, stmt.X)
		})
	}
}

func TestParseLists(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want ast.Node
	}{
		{
			name: "empty",
			src:  "[]",
			want: &ast.List{Form: ast.ListVector},
		},
		{
			name: "row vector",
			src:  "[1 2 3]",
			want: &ast.List{Form: ast.ListVector, Elems: []ast.Node{num(1), num(2), num(3)}},
		},
		{
			name: "signed elements",
			src:  "[1 -2]",
			want: &ast.List{Form: ast.ListVector, Elems: []ast.Node{num(1), &ast.Unary{Op: token.MINUS, X: num(2)}}},
		},
		{
			name: "matrix",
			src:  "[1, 2; 3, 4]",
			want: &ast.List{Form: ast.ListMatrix, Elems: []ast.Node{
				&ast.List{Form: ast.ListRow, Elems: []ast.Node{num(1), num(2)}},
				&ast.List{Form: ast.ListRow, Elems: []ast.Node{num(3), num(4)}},
			}},
		},
		{
			name: "trailing row separator",
			src:  "[1 2;]",
			want: &ast.List{Form: ast.ListVector, Elems: []ast.Node{num(1), num(2)}},
		},
		{
			name: "cell",
			src:  "{1, 'a'}",
			want: &ast.List{Form: ast.ListCell, Elems: []ast.Node{num(1), str("a")}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt, ok := parseOne(t, tt.src).(*ast.ExprStmt)
			require.True(t, ok)
			assertTree(t, tt.want, stmt.X)
		})
	}
}

func TestParseLambdaAndHandle(t *testing.T) {
	n := parseOne(t, "f = @(x, y) x + y;")
	assertTree(t, &ast.Assign{
		Target: ident("f"),
		Value: &ast.Lambda{
			Params: []ast.Node{ident("x"), ident("y")},
			Body:   &ast.Binary{X: ident("x"), Op: token.PLUS, Y: ident("y")},
		},
	}, n)

	n = parseOne(t, "g = @sin;")
	assertTree(t, &ast.Assign{Target: ident("g"), Value: ident("sin")}, n)
}

// ---------- Indexing ----------

func TestParseIndexRebasing(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want ast.Node
	}{
		{
			name: "literal index is decremented",
			src:  "x(1) = 5;",
			want: &ast.Assign{Target: &ast.Subscript{X: ident("x"), Index: []ast.Node{num(0)}}, Value: num(5)},
		},
		{
			name: "symbolic index becomes k - 1",
			src:  "x(k) = 5;",
			want: &ast.Assign{
				Target: &ast.Subscript{X: ident("x"), Index: []ast.Node{&ast.Binary{X: ident("k"), Op: token.MINUS, Y: num(1)}}},
				Value:  num(5),
			},
		},
		{
			name: "each dimension rebases independently",
			src:  "m(2, j) = 0;",
			want: &ast.Assign{
				Target: &ast.Subscript{X: ident("m"), Index: []ast.Node{
					num(1),
					&ast.Binary{X: ident("j"), Op: token.MINUS, Y: num(1)},
				}},
				Value: num(0),
			},
		},
		{
			name: "range bounds rebase separately",
			src:  "x(2:n) = 0;",
			want: &ast.Assign{
				Target: &ast.Subscript{X: ident("x"), Index: []ast.Node{
					&ast.Range{Lo: num(1), Hi: &ast.Binary{X: ident("n"), Op: token.MINUS, Y: num(1)}},
				}},
				Value: num(0),
			},
		},
		{
			name: "colon is untouched",
			src:  "m(:, 1) = v;",
			want: &ast.Assign{
				Target: &ast.Subscript{X: ident("m"), Index: []ast.Node{&ast.Colon{}, num(0)}},
				Value:  ident("v"),
			},
		},
		{
			name: "end plus one appends",
			src:  "x(end+1) = v;",
			want: &ast.Assign{
				Target: &ast.Subscript{X: ident("x"), Index: []ast.Node{
					&ast.Binary{X: &ast.Binary{X: ident("end"), Op: token.PLUS, Y: num(1)}, Op: token.MINUS, Y: num(1)},
				}},
				Value: ident("v"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertTree(t, tt.want, parseOne(t, tt.src))
		})
	}
}

func TestParseCallStaysCallOnRead(t *testing.T) {
	n := parseOne(t, "y = f(1, k);")
	assertTree(t, &ast.Assign{
		Target: ident("y"),
		Value:  &ast.Call{Fun: ident("f"), Args: []ast.Node{num(1), ident("k")}},
	}, n)
}

func TestParseColonFirstCallIsSubscript(t *testing.T) {
	n := parseOne(t, "y = m(:, 2);")
	assertTree(t, &ast.Assign{
		Target: ident("y"),
		Value:  &ast.Subscript{X: ident("m"), Index: []ast.Node{&ast.Colon{}, num(1)}},
	}, n)
}

func TestParseCellIndexing(t *testing.T) {
	n := parseOne(t, "y = c{2};")
	assertTree(t, &ast.Assign{
		Target: ident("y"),
		Value:  &ast.Subscript{X: ident("c"), Index: []ast.Node{num(1)}, Cell: true},
	}, n)

	// A brace target is already a subscript and is not rebased again.
	n = parseOne(t, "c{3} = 1;")
	assertTree(t, &ast.Assign{
		Target: &ast.Subscript{X: ident("c"), Index: []ast.Node{num(2)}, Cell: true},
		Value:  num(1),
	}, n)
}

func TestParseFieldStoreThroughIndex(t *testing.T) {
	n := parseOne(t, "s(2).name = 'x';")
	assertTree(t, &ast.Assign{
		Target: &ast.Field{X: &ast.Subscript{X: ident("s"), Index: []ast.Node{num(1)}}, Name: "name"},
		Value:  str("x"),
	}, n)
}

func TestParseWithoutInlineRebase(t *testing.T) {
	prog, err := parser.ParseWithOptions("x(1) = 5;", parser.WithInlineRebase(false))
	require.NoError(t, err)
	assertTree(t, &ast.Assign{Target: &ast.Subscript{X: ident("x"), Index: []ast.Node{num(1)}}, Value: num(5)}, prog.Body[0])
}

func TestParseChainedIndexRejected(t *testing.T) {
	_, err := parser.Parse("y = a(1)(2);")
	require.Error(t, err)
	var se *parser.SyntaxError
	require.True(t, errors.As(err, &se))
	assert.Contains(t, se.Message, "chained")
}

// ---------- Assignments ----------

func TestParseAugmentedAssignments(t *testing.T) {
	tests := []struct {
		src  string
		want ast.Node
	}{
		{"x += 2;", &ast.AugAssign{Target: ident("x"), Op: token.PLUS, Value: num(2)}},
		{"x -= 2;", &ast.AugAssign{Target: ident("x"), Op: token.MINUS, Value: num(2)}},
		{"x *= 2;", &ast.AugAssign{Target: ident("x"), Op: token.MUL, Value: num(2)}},
		{"x /= 2;", &ast.AugAssign{Target: ident("x"), Op: token.DIV, Value: num(2)}},
		{"x ^= 2;", &ast.AugAssign{Target: ident("x"), Op: token.EXP, Value: num(2)}},
		{"x++;", &ast.AugAssign{Target: ident("x"), Op: token.PLUS, Value: num(1)}},
		{"x--;", &ast.AugAssign{Target: ident("x"), Op: token.MINUS, Value: num(1)}},
		{"++x;", &ast.AugAssign{Target: ident("x"), Op: token.PLUS, Value: num(1)}},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			assertTree(t, tt.want, parseOne(t, tt.src))
		})
	}
}

func TestParseInvalidTarget(t *testing.T) {
	_, err := parser.Parse("1 = x;")
	require.Error(t, err)
	var se *parser.SyntaxError
	require.True(t, errors.As(err, &se))
	require.NotNil(t, se.Token)
}

// ---------- Statements ----------

func TestParseIfChain(t *testing.T) {
	n := parseOne(t, "if a\n x = 1;\nelseif b\n x = 2;\nelse\n x = 3;\nend")
	assertTree(t, &ast.If{
		Cond: ident("a"),
		Body: []ast.Node{&ast.Assign{Target: ident("x"), Value: num(1)}},
		Else: []ast.Node{&ast.If{
			Cond: ident("b"),
			Body: []ast.Node{&ast.Assign{Target: ident("x"), Value: num(2)}},
			Else: []ast.Node{&ast.Assign{Target: ident("x"), Value: num(3)}},
		}},
	}, n)
}

func TestParseLoops(t *testing.T) {
	n := parseOne(t, "for i = 1:3\n s += i;\nend")
	assertTree(t, &ast.For{
		Var:  ident("i"),
		Iter: &ast.Range{Lo: num(1), Hi: num(3)},
		Body: []ast.Node{&ast.AugAssign{Target: ident("s"), Op: token.PLUS, Value: ident("i")}},
	}, n)

	n = parseOne(t, "for (i = v) disp(i); end")
	require.IsType(t, &ast.For{}, n)

	n = parseOne(t, "while k > 0, k--; if k == 2, break; end, continue; end")
	w, ok := n.(*ast.While)
	require.True(t, ok)
	require.Len(t, w.Body, 3)
	assert.IsType(t, &ast.Continue{}, w.Body[2])
}

func TestParseSwitchDesugaring(t *testing.T) {
	n := parseOne(t, "switch v case 1 a=1; case 2 a=2; otherwise a=0; end")
	want := &ast.If{
		Cond: &ast.Compare{X: num(1), Op: token.EQEQ, Y: ident("v")},
		Body: []ast.Node{&ast.Assign{Target: ident("a"), Value: num(1)}},
		Else: []ast.Node{&ast.If{
			Cond: &ast.Compare{X: num(2), Op: token.EQEQ, Y: ident("v")},
			Body: []ast.Node{&ast.Assign{Target: ident("a"), Value: num(2)}},
			Else: []ast.Node{&ast.Assign{Target: ident("a"), Value: num(0)}},
		}},
	}
	assertTree(t, want, n)
}

func TestParseSwitchWithoutOtherwise(t *testing.T) {
	n := parseOne(t, "switch s\n case 'a'\n x = 1;\nend")
	assertTree(t, &ast.If{
		Cond: &ast.Compare{X: str("a"), Op: token.EQEQ, Y: ident("s")},
		Body: []ast.Node{&ast.Assign{Target: ident("x"), Value: num(1)}},
	}, n)
}

func TestParseTryCatch(t *testing.T) {
	n := parseOne(t, "try\n f();\ncatch\n g();\nend")
	assertTree(t, &ast.TryCatch{
		Body:    []ast.Node{&ast.ExprStmt{X: &ast.Call{Fun: ident("f")}}},
		ErrName: "lasterror",
		Handler: []ast.Node{&ast.ExprStmt{X: &ast.Call{Fun: ident("g")}}},
	}, n)

	n = parseOne(t, "try\n f();\ncatch err\n disp(err);\nend")
	tc, ok := n.(*ast.TryCatch)
	require.True(t, ok)
	require.Len(t, tc.Handler, 2)
	assertTree(t, &ast.Assign{Target: ident("err"), Value: ident("lasterror")}, tc.Handler[0])

	n = parseOne(t, "try\n f();\nend")
	tc, ok = n.(*ast.TryCatch)
	require.True(t, ok)
	assert.Empty(t, tc.Handler)
}

func TestParseUnwindProtect(t *testing.T) {
	n := parseOne(t, "unwind_protect\n f();\nunwind_protect_cleanup\n g();\nend_unwind_protect")
	assertTree(t, &ast.Unwind{
		Body:    []ast.Node{&ast.ExprStmt{X: &ast.Call{Fun: ident("f")}}},
		Cleanup: []ast.Node{&ast.ExprStmt{X: &ast.Call{Fun: ident("g")}}},
	}, n)
}

func TestParseGlobal(t *testing.T) {
	assertTree(t, &ast.Global{Names: []ast.Node{ident("a"), ident("b")}}, parseOne(t, "global a b"))

	n := parseOne(t, "global g = 3;")
	assertTree(t, &ast.Block{Stmts: []ast.Node{
		&ast.Global{Names: []ast.Node{ident("g")}},
		&ast.Assign{Target: ident("g"), Value: num(3)},
	}}, n)
}

func TestParseCommandSyntaxMatchesCall(t *testing.T) {
	cmd := parseOne(t, "disp hello;")
	call := parseOne(t, "disp('hello');")
	want := &ast.ExprStmt{X: &ast.Call{Fun: ident("disp"), Args: []ast.Node{str("hello")}}}
	assertTree(t, want, cmd)
	assertTree(t, want, call)
}

func TestParseCommandWithSeveralWords(t *testing.T) {
	n := parseOne(t, "format long g")
	assertTree(t, &ast.ExprStmt{X: &ast.Call{Fun: ident("format"), Args: []ast.Node{str("long"), str("g")}}}, n)
}

func TestParseStatementSeparators(t *testing.T) {
	prog, err := parser.Parse("a = 1, b = 2; c = 3\nd = 4")
	require.NoError(t, err)
	assert.Len(t, prog.Body, 4)

	_, err = parser.Parse("a = 1 b = 2")
	require.Error(t, err)
}

// ---------- Functions ----------

func TestParseReturnInjection(t *testing.T) {
	n := parseOne(t, "function y = f(x) y = x; end")
	fn, ok := n.(*ast.FuncDef)
	require.True(t, ok)
	assert.Equal(t, "f", fn.Name)
	assertTree(t, ident("y"), fn.Output)
	require.Len(t, fn.Body, 3)
	assertTree(t, &ast.Assign{Target: ident("y"), Value: &ast.Call{Fun: ident("struct")}}, fn.Body[0])
	assertTree(t, &ast.Assign{Target: ident("y"), Value: ident("x")}, fn.Body[1])
	assertTree(t, &ast.Return{Value: ident("y")}, fn.Body[2])
}

func TestParseExplicitReturnNotDuplicated(t *testing.T) {
	n := parseOne(t, "function y = f(x)\n y = x;\n return;\nend")
	fn, ok := n.(*ast.FuncDef)
	require.True(t, ok)
	returns := 0
	for _, s := range fn.Body {
		if s.Kind() == ast.KindReturn {
			returns++
		}
	}
	assert.Equal(t, 1, returns)
	assertTree(t, &ast.Return{Value: ident("y")}, fn.Body[len(fn.Body)-1])
}

func TestParseFunctionWithoutOutputs(t *testing.T) {
	n := parseOne(t, "function greet(name)\n disp(name);\n")
	fn, ok := n.(*ast.FuncDef)
	require.True(t, ok)
	assert.Nil(t, fn.Output)
	require.Len(t, fn.Body, 2)
	assertTree(t, &ast.Return{}, fn.Body[1])
}

func TestParseFunctionMultipleOutputs(t *testing.T) {
	n := parseOne(t, "function [a, b] = swap(x, y)\n a = y; b = x;\nend")
	fn, ok := n.(*ast.FuncDef)
	require.True(t, ok)
	out := &ast.List{Form: ast.ListVector, Elems: []ast.Node{ident("a"), ident("b")}}
	assertTree(t, out, fn.Output)
	// No struct default for a list of outputs.
	require.Len(t, fn.Body, 3)
	assertTree(t, &ast.Return{Value: out}, fn.Body[2])
}

func TestParseFunctionSpecialParams(t *testing.T) {
	n := parseOne(t, "function r = f(a, varargin)\n r = a;\nend")
	fn, ok := n.(*ast.FuncDef)
	require.True(t, ok)
	assert.True(t, fn.Varargin)
	assert.False(t, fn.Nargin)
	require.Len(t, fn.Params, 1)
	assertTree(t, ident("a"), fn.Params[0])

	n = parseOne(t, "function f(~, nargin)\nend")
	fn, ok = n.(*ast.FuncDef)
	require.True(t, ok)
	assert.True(t, fn.Nargin)
	assertTree(t, ident("__"), fn.Params[0])
}

func TestParseScriptWithFunctions(t *testing.T) {
	src := "x = 1;\nfunction a()\n disp(1);\nfunction b()\n disp(2);\n"
	prog, err := parser.Parse(src)
	require.NoError(t, err)
	require.Len(t, prog.Body, 3)
	fns := prog.Functions()
	require.Len(t, fns, 2)
	assert.Equal(t, "a", fns[0].Name)
	assert.Equal(t, "b", fns[1].Name)
	for _, fn := range fns {
		assert.Equal(t, ast.KindReturn, fn.Body[len(fn.Body)-1].Kind())
	}
}

func TestParseReturnUsesFunctionOutput(t *testing.T) {
	n := parseOne(t, "function r = f(x)\n if x\n  r = 1;\n  return\n end\n r = 2;\nend")
	fn, ok := n.(*ast.FuncDef)
	require.True(t, ok)
	branch, ok := fn.Body[1].(*ast.If)
	require.True(t, ok)
	assertTree(t, &ast.Return{Value: ident("r")}, branch.Body[1])
}

// ---------- Errors ----------

func TestParseIncompleteInput(t *testing.T) {
	for _, src := range []string{"if x", "x = (1 + ", "function f()\n if a", "y = [1 2"} {
		t.Run(src, func(t *testing.T) {
			_, err := parser.Parse(src)
			require.Error(t, err)
			assert.True(t, parser.IsIncomplete(err), "want incomplete, got %v", err)
		})
	}
}

func TestParseSyntaxErrorCarriesToken(t *testing.T) {
	_, err := parser.Parse("x = 1 +* 2;")
	require.Error(t, err)
	assert.False(t, parser.IsIncomplete(err))
	var se *parser.SyntaxError
	require.True(t, errors.As(err, &se))
	require.NotNil(t, se.Token)
	assert.Equal(t, token.MUL, se.Token.Type)
}

func TestParseUnsupportedConstructs(t *testing.T) {
	for _, src := range []string{
		"for [a b] = m\nend",
		"persistent n",
		"persistent n = 0;",
		"[a, b] = f(1);",
	} {
		t.Run(src, func(t *testing.T) {
			_, err := parser.Parse(src)
			require.Error(t, err)
			var ue *parser.UnsupportedError
			assert.True(t, errors.As(err, &ue), "want *UnsupportedError, got %T: %v", err, err)
		})
	}
}

func TestParseLexErrorPropagates(t *testing.T) {
	_, err := parser.Parse("x = 'oops")
	var le *parser.LexError
	require.True(t, errors.As(err, &le))
}

func TestParseStatementEntry(t *testing.T) {
	p := parser.NewParser("a = 1; b = 2;")
	n, err := p.ParseStatement()
	require.NoError(t, err)
	assertTree(t, &ast.Assign{Target: ident("a"), Value: num(1)}, n)

	n, err = p.ParseStatement()
	require.NoError(t, err)
	assertTree(t, &ast.Assign{Target: ident("b"), Value: num(2)}, n)

	n, err = p.ParseStatement()
	require.NoError(t, err)
	assert.Nil(t, n)
}
