package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/mlabgo/internal/config"
)

func runRoot(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	finishProfile()
	return out.String(), errOut.String(), err
}

func setupRootProject(t *testing.T, cfg string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.m"), []byte("x = v{2} + 1 * 2;\n"), 0o644))
	if cfg != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, config.ConfigFileName), []byte(cfg), 0o644))
	}
	t.Chdir(dir)
	config.ResetConfig()
	t.Cleanup(config.ResetConfig)
	return dir
}

func TestRootSubcommands(t *testing.T) {
	root := NewRootCmd()
	for _, name := range []string{"version", "parse", "tokens", "check", "rules", "repl", "completion"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
	for _, flag := range []string{"config", "verbose", "trace", "dump-tree", "autoload", "path", "rules", "rebase", "jobs", "output", "profile"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestRootConfigFileSelectsRules(t *testing.T) {
	setupRootProject(t, "rules: [builtins]\n")

	out, _, err := runRoot(t, "parse", "a.m")
	require.NoError(t, err)
	assert.Contains(t, out, "Binary", "folding is not selected")

	out, _, err = runRoot(t, "--rules", "folding", "parse", "a.m")
	require.NoError(t, err)
	assert.Contains(t, out, "value=2")
	assert.NotContains(t, out, "op=*")
}

func TestRootRebaseByRules(t *testing.T) {
	setupRootProject(t, "")

	parsed, _, err := runRoot(t, "parse", "a.m")
	require.NoError(t, err)
	ruled, _, err := runRoot(t, "--rebase", "rules", "parse", "a.m")
	require.NoError(t, err)
	assert.Equal(t, parsed, ruled)
	assert.Contains(t, parsed, "Number @1:7 value=1", "index 2 is stored as 1")
}

func TestRootInvalidConfig(t *testing.T) {
	setupRootProject(t, "")

	_, _, err := runRoot(t, "--rebase", "sideways", "parse", "a.m")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid rebase")

	_, _, err = runRoot(t, "--rules", "nope", "check", "a.m")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown rule set")
}

func TestRootDumpTree(t *testing.T) {
	dir := setupRootProject(t, "dump_tree: true\n")

	_, _, err := runRoot(t, "check", "a.m")
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(dir, "a.m.ast"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Program\n")
}

func TestRootVerboseLogsToStderr(t *testing.T) {
	setupRootProject(t, "")

	_, errOut, err := runRoot(t, "-v", "--trace", "check", "a.m")
	require.NoError(t, err)
	assert.Contains(t, errOut, "rule=fold-arith")
	assert.Contains(t, errOut, "msg=compiled")
}

func TestRootProfile(t *testing.T) {
	setupRootProject(t, "")
	profDir := t.TempDir()

	_, _, err := runRoot(t, "--profile", profDir, "version")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(profDir, "cpu.pprof"))
}

func TestCompletionCommand(t *testing.T) {
	setupRootProject(t, "")

	out, _, err := runRoot(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "mlabgo")

	_, _, err = runRoot(t, "completion", "tcsh")
	require.Error(t, err)
}
