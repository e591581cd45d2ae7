package config

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func testFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("config", "", "")
	fs.Bool("trace", false, "")
	fs.Bool("dump-tree", false, "")
	fs.Bool("verbose", false, "")
	fs.StringSlice("autoload", nil, "")
	fs.StringSlice("path", nil, "")
	fs.String("output", "auto", "")
	fs.String("profile", "", "")
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	ResetConfig()

	cfg, err := Load("", nil)
	require.NoError(t, err)

	cwd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, []string{"mlabgo/runtime"}, cfg.Autoload)
	assert.Equal(t, []string{cwd}, cfg.Path)
	assert.Equal(t, []string{DefaultRuleSet}, cfg.Rules)
	assert.Equal(t, RebaseParser, cfg.Rebase)
	assert.Equal(t, 0, cfg.Jobs)
	assert.Equal(t, DefaultOutput, cfg.Output)
	assert.False(t, cfg.Trace)
	assert.Equal(t, cwd, cfg.ProjectRoot)
	assert.Empty(t, GetConfigFileUsed())
	assert.Same(t, cfg, GetCurrentConfig())
}

func TestLoadConfigFileFoundUpward(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, `
autoload:
  - pkg/one
path:
  - lib
  - /abs/mods
rules: [builtins]
jobs: 2
dump_tree: true
`)
	sub := filepath.Join(root, "src", "deep")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	t.Chdir(sub)

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, root, cfg.ProjectRoot)
	assert.Equal(t, filepath.Join(root, ConfigFileName), GetConfigFileUsed())
	assert.Equal(t, []string{"pkg/one"}, cfg.Autoload)
	assert.Equal(t, []string{filepath.Join(root, "lib"), "/abs/mods"}, cfg.Path)
	assert.Equal(t, []string{"builtins"}, cfg.Rules)
	assert.Equal(t, 2, cfg.Jobs)
	assert.True(t, cfg.DumpTree)
}

func TestLoadExplicitConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yml")
	require.NoError(t, os.WriteFile(path, []byte("rebase: rules\n"), 0o644))
	t.Chdir(t.TempDir())

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, RebaseRules, cfg.Rebase)
	assert.Equal(t, dir, cfg.ProjectRoot)
}

func TestLoadMissingExplicitConfigFile(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := Load("does-not-exist.yaml", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestLoadEnvironment(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "autoload: [pkg/one]\n")
	t.Chdir(dir)
	t.Setenv("MLABGO_JOBS", "4")
	t.Setenv("MLABGO_TRACE", "true")
	t.Setenv("MLABGO_PATH", "lib,vendor")
	t.Setenv("MLABGO_AUTOLOAD", "a, b,pkg/one")

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Jobs)
	assert.True(t, cfg.Trace)
	assert.Equal(t, []string{filepath.Join(dir, "lib"), filepath.Join(dir, "vendor")}, cfg.Path)
	// Environment entries extend the configured list.
	assert.Equal(t, []string{"pkg/one", "a", "b"}, cfg.Autoload)
}

func TestLoadFlagsOverrideEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("MLABGO_DUMP_TREE", "false")

	flags := testFlags(t, "--dump-tree", "--autoload=x,y", "--output=yaml", "--profile=/tmp/p")
	cfg, err := Load("", flags)
	require.NoError(t, err)

	assert.True(t, cfg.DumpTree)
	assert.Equal(t, []string{"x", "y"}, cfg.Autoload)
	assert.Equal(t, "yaml", cfg.Output)
	// Unchanged flags leave lower layers alone.
	assert.False(t, cfg.Verbose)
	assert.Equal(t, []string{DefaultRuleSet}, cfg.Rules)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return *Default()
	}

	tests := []struct {
		name      string
		mutate    func(*Config)
		errSubstr string
	}{
		{"valid", func(*Config) {}, ""},
		{"rules rebase", func(c *Config) { c.Rebase = RebaseRules }, ""},
		{"no rules", func(c *Config) { c.Rules = nil }, ""},
		{"bad rebase", func(c *Config) { c.Rebase = "lexer" }, "invalid rebase"},
		{"bad output", func(c *Config) { c.Output = "xml" }, "invalid output"},
		{"negative jobs", func(c *Config) { c.Jobs = -1 }, "must not be negative"},
		{"unknown rule set", func(c *Config) { c.Rules = []string{"nope"} }, "unknown rule set"},
		{"rebase rule set", func(c *Config) { c.Rules = []string{"rebase"} }, "rebase: rules"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.errSubstr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "rebase: sideways\n")
	t.Chdir(dir)

	_, err := Load("", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sideways")
}

func TestCompilerOptions(t *testing.T) {
	cfg := Config{
		Autoload: []string{"m"},
		Rules:    []string{"builtins"},
		Rebase:   RebaseRules,
		Trace:    true,
		DumpTree: true,
	}
	opts, err := cfg.CompilerOptions()
	require.NoError(t, err)

	assert.Equal(t, []string{"m"}, opts.Autoload)
	assert.True(t, opts.RuleRebase)
	assert.True(t, opts.Trace)
	assert.True(t, opts.DumpTree)
	require.Len(t, opts.Rules, 2)
	assert.Equal(t, "assert-message", opts.Rules[0].Name())

	// The options own their autoload slice.
	opts.Autoload[0] = "changed"
	assert.Equal(t, "m", cfg.Autoload[0])

	cfg.Rules = []string{}
	opts, err = cfg.CompilerOptions()
	require.NoError(t, err)
	assert.NotNil(t, opts.Rules)
	assert.Empty(t, opts.Rules)
}

func TestLogger(t *testing.T) {
	assert.NotNil(t, GetLogger(context.Background()))

	var buf bytes.Buffer
	logger := NewLogger(&buf, false)
	ctx := WithLogger(context.Background(), logger)
	assert.Same(t, logger, GetLogger(ctx))

	GetLogger(ctx).Debug("hidden")
	GetLogger(ctx).Info("shown", "k", "v")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "k=v")

	buf.Reset()
	NewLogger(&buf, true).Debug("visible")
	assert.Contains(t, buf.String(), "visible")
}
