// Package main provides tests for the mlabgo command.
package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/mlabgo/internal/cli"
	"github.com/leapstack-labs/mlabgo/internal/config"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	t.Chdir(t.TempDir())
	config.ResetConfig()

	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "mlabgo v")
}

func TestHelpCommand(t *testing.T) {
	out, err := run(t, "--help")
	require.NoError(t, err)
	for _, expected := range []string{"parse", "tokens", "check", "rules", "repl", "version"} {
		assert.Contains(t, out, expected)
	}
}

func TestCheckProgram(t *testing.T) {
	dir := t.TempDir()
	src := `function r = clamp(x, lo, hi)
  r = x;
  if x < lo
    r = lo;
  elseif x > hi
    r = hi;
  end
end

v = [3 -1 7];
v(end+1) = clamp(v(end), 0, 5);
s.name = 'demo';
assert(numel(v) == 4, 'grew by one');
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "demo.m"), []byte(src), 0o644))
	t.Chdir(dir)
	config.ResetConfig()

	out, err := run(t, "check", "demo")
	require.NoError(t, err)
	assert.Contains(t, out, "ok")
	assert.Contains(t, out, "1 functions")

	out, err = run(t, "parse", "--source", "demo.m")
	require.NoError(t, err)
	assert.Contains(t, out, "assert(")
	assert.Contains(t, out, "function r = clamp(x, lo, hi)")
}
