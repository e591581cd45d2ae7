package format_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/mlabgo/pkg/ast"
	"github.com/leapstack-labs/mlabgo/pkg/format"
	"github.com/leapstack-labs/mlabgo/pkg/parser"
)

func parseOne(t *testing.T, src string) ast.Node {
	t.Helper()
	prog, err := parser.Parse(src)
	require.NoError(t, err)
	require.Len(t, prog.Body, 1)
	return prog.Body[0]
}

func TestDump(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, format.Dump(&buf, parseOne(t, "x = 1 + 2;")))

	expected := `Assign @1:3
  target: Ident @1:1 name=x
  value: Binary @1:7 op=+
    x: Number @1:5 value=1
    y: Number @1:9 value=2
`
	assert.Equal(t, expected, buf.String())
}

func TestDumpLists(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, format.Dump(&buf, parseOne(t, "s = {'a'};")))

	expected := `Assign @1:3
  target: Ident @1:1 name=s
  value: List @1:5 form=cell
    elems:
      String @1:6 value="a"
`
	assert.Equal(t, expected, buf.String())

	buf.Reset()
	require.NoError(t, format.Dump(&buf, parseOne(t, "c{1} = 2;")))
	assert.Contains(t, buf.String(), "target: Subscript")
	assert.Contains(t, buf.String(), " cell\n")
	assert.Contains(t, buf.String(), "Number @1:3 value=0", "stored index is rebased")
}

func TestDumpProgram(t *testing.T) {
	prog, err := parser.Parse("a = 1;\nb")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, format.DumpProgram(&buf, prog))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "Program\n  Assign @1:3\n"), out)
	assert.Contains(t, out, "  ExprStmt @2:1\n    x: Ident @2:1 name=b\n")
}

func TestSourceExpressions(t *testing.T) {
	tests := []struct {
		src      string
		expected string
	}{
		{"x = 1 + 2 * 3;", "x = 1 + 2 * 3\n"},
		{"y = (a + b) * c;", "y = (a + b) * c\n"},
		{"z = a - (b - c);", "z = a - (b - c)\n"},
		{"z = a - b - c;", "z = a - b - c\n"},
		{"p = a ^ b ^ c;", "p = a ^ b ^ c\n"},
		{"p = (a ^ b) ^ c;", "p = (a ^ b) ^ c\n"},
		{"m = [1, 2; 3, 4];", "m = [1, 2; 3, 4]\n"},
		{"v = [1 2 3];", "v = [1, 2, 3]\n"},
		{"c = {1, 'it''s'};", "c = {1, 'it''s'}\n"},
		{"f = @(x) x .^ 2;", "f = @(x) x .^ 2\n"},
		{"r = 1:2:n;", "r = 1:2:n\n"},
		{"t = -a';", "t = -a'\n"},
		{"x(2) = 1;", "x(1) = 1\n"},
		{"s.a{3} = 'v';", "s.a{2} = 'v'\n"},
		{"k += 1;", "k += 1\n"},
		{"disp hello", "disp('hello')\n"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			assert.Equal(t, tt.expected, format.Source(parseOne(t, tt.src)))
		})
	}
}

func TestSourceStatements(t *testing.T) {
	src := "if a\n b = 1;\nelseif c\n b = 2;\nelse\n b = 3;\nend"
	expected := `if a
  b = 1
elseif c
  b = 2
else
  b = 3
end
`
	assert.Equal(t, expected, format.Source(parseOne(t, src)))

	src = "function y = sq(x)\n y = x ^ 2;\nend"
	expected = `function y = sq(x)
  y = struct()
  y = x ^ 2
  return y
end
`
	assert.Equal(t, expected, format.Source(parseOne(t, src)))

	src = "try\n f();\ncatch err\n g(err);\nend"
	expected = `try
  f()
catch err
  g(err)
end
`
	assert.Equal(t, expected, format.Source(parseOne(t, src)))
}

func TestSourceReparses(t *testing.T) {
	sources := []string{
		"y = -a' + b.c(1, :);",
		"v = ~done && x >= 0 || y;",
		"w = (a | b) & c;",
		"m = [a', b'; 1, -2];",
		"g = @(p, q) p * q + 1;",
		"while k > 0\n k -= 1;\n if k == 2\n break;\n end\nend",
		"for i = 1:10\n s(i) = i;\nend",
		"try\n f();\ncatch err\n g(err);\nend",
		"try\n f();\ncatch\n g();\nend",
	}
	for _, src := range sources {
		t.Run(src, func(t *testing.T) {
			orig := parseOne(t, src)
			// Stored indices are already rebased, so reparse without
			// rebasing again.
			reparsed, err := parser.ParseWithOptions(format.Source(orig), parser.WithInlineRebase(false))
			require.NoError(t, err)
			require.Len(t, reparsed.Body, 1)
			assert.True(t, ast.Equal(orig, reparsed.Body[0]), "source:\n%s", format.Source(orig))
		})
	}
}

func TestSourceTryCatchIsStable(t *testing.T) {
	reparse := func(src string) []ast.Node {
		t.Helper()
		prog, err := parser.ParseWithOptions(src, parser.WithInlineRebase(false))
		require.NoError(t, err)
		return prog.Body
	}

	first := reparse("try\n f();\ncatch err\n g(err);\nend")
	require.Len(t, first, 1)
	assert.Len(t, first[0].(*ast.TryCatch).Handler, 2, "catch variable is bound by the first handler statement")

	printed := format.ProgramSource(&ast.Program{Body: first})
	assert.Equal(t, "try\n  f()\ncatch err\n  g(err)\nend\n", printed)

	second := reparse(printed)
	assert.True(t, ast.EqualList(first, second))
	assert.Equal(t, printed, format.ProgramSource(&ast.Program{Body: second}))
	assert.NotContains(t, printed, "lasterror")
}

func TestProgramSource(t *testing.T) {
	prog, err := parser.Parse("a = 1;\nglobal g h\nassert(a == 1)")
	require.NoError(t, err)
	assert.Equal(t, "a = 1\nglobal g h\nassert(a == 1)\n", format.ProgramSource(prog))
	assert.Equal(t, "", format.ProgramSource(&ast.Program{}))
}

func TestTree(t *testing.T) {
	tree := format.Tree(parseOne(t, "x = -y;"))

	assert.Equal(t, "Assign", tree["kind"])
	assert.Equal(t, 1, tree["line"])
	assert.Equal(t, 3, tree["column"])
	assert.Equal(t, map[string]any{"kind": "Ident", "line": 1, "column": 1, "name": "x"}, tree["target"])

	value := tree["value"].(map[string]any)
	assert.Equal(t, "Unary", value["kind"])
	assert.Equal(t, "-", value["op"])
	assert.Equal(t, "y", value["x"].(map[string]any)["name"])

	// Empty strings are kept for string literals only.
	str := format.Tree(parseOne(t, "''"))["x"].(map[string]any)
	assert.Equal(t, "", str["value"])

	list := format.TreeList(parseOne(t, "f(1, 2)").(*ast.ExprStmt).X.(*ast.Call).Args)
	require.Len(t, list, 2)
	assert.Equal(t, "Number", list[0].(map[string]any)["kind"])
	assert.Nil(t, format.Tree(nil))
}
