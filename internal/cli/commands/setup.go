// Package commands implements the mlabgo subcommands.
package commands

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/mlabgo/internal/cli/output"
	"github.com/leapstack-labs/mlabgo/internal/config"
	"github.com/leapstack-labs/mlabgo/pkg/compiler"
	"github.com/leapstack-labs/mlabgo/pkg/loader"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext builds a CommandContext from the loaded configuration.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(cmd.Context()),
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.Output)),
	}
}

// CompilerOptions returns compiler options for the configuration with the
// command logger attached.
func (c *CommandContext) CompilerOptions() (compiler.Options, error) {
	opts, err := c.Cfg.CompilerOptions()
	if err != nil {
		return compiler.Options{}, err
	}
	opts.Logger = c.Logger
	return opts, nil
}

// Finder returns a module finder over the configured search path.
func (c *CommandContext) Finder() (*loader.Finder, error) {
	opts, err := c.CompilerOptions()
	if err != nil {
		return nil, err
	}
	return loader.NewOSFinder(c.Cfg.Path, opts)
}

// getConfig returns the loaded configuration, or the defaults when the
// command runs outside the root command.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return config.Default()
}
