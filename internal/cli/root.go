// Package cli provides the command-line interface for mlabgo.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/mlabgo/internal/cli/commands"
	"github.com/leapstack-labs/mlabgo/internal/config"
	"github.com/leapstack-labs/mlabgo/pkg/rewrite"
)

var (
	cfgFile     string
	profileDir  string
	stopProfile func()
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "mlabgo",
		Short: "mlabgo - MATLAB-like front-end compiler",
		Long: `mlabgo compiles a MATLAB-like scripting language into a syntax tree for a
host runtime.

Sources are tokenized, parsed with 1-based indices rebased to 0-based, and
normalized by pattern rewrite rules. Configuration is read from mlabgo.yaml,
MLABGO_* environment variables and flags, in increasing precedence.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			logger := config.NewLogger(cmd.ErrOrStderr(), cfg.Verbose)
			cmd.SetContext(config.WithLogger(cmd.Context(), logger))

			if cfg.Verbose {
				if configFile := config.GetConfigFileUsed(); configFile != "" {
					logger.Debug("using config file", "path", configFile)
				}
			}

			if profileDir != "" {
				p := profile.Start(profile.CPUProfile, profile.ProfilePath(profileDir), profile.Quiet, profile.NoShutdownHook)
				stopProfile = p.Stop
				logger.Debug("cpu profiling", "dir", profileDir)
			}
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			finishProfile()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
`)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: mlabgo.yaml in this or a parent directory)")
	flags.BoolP("verbose", "v", false, "Verbose output")
	flags.Bool("trace", false, "Log every rule application")
	flags.Bool("dump-tree", false, "Write the compiled tree next to each source as <file>.ast")
	flags.StringSlice("autoload", nil, "Modules imported before a program runs")
	flags.StringSlice("path", nil, "Module search path")
	flags.StringSlice("rules", nil, "Rewrite rule sets to apply, in order")
	flags.String("rebase", "", "Where indices are rebased (parser|rules)")
	flags.IntP("jobs", "j", 0, "Concurrent compilations (0 uses one per CPU)")
	flags.StringP("output", "o", "", "Output format (auto|text|json|yaml)")
	flags.StringVar(&profileDir, "profile", "", "Write a CPU profile to this directory")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return config.OutputFormats, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("rebase", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{config.RebaseParser, config.RebaseRules}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("rules", func(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		var out []string
		for _, name := range rewrite.SetNames() {
			if strings.HasPrefix(name, toComplete) {
				out = append(out, name)
			}
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(commands.NewVersionCommand(Version, GitCommit))
	rootCmd.AddCommand(commands.NewParseCommand())
	rootCmd.AddCommand(commands.NewTokensCommand())
	rootCmd.AddCommand(commands.NewCheckCommand())
	rootCmd.AddCommand(commands.NewRulesCommand())
	rootCmd.AddCommand(commands.NewREPLCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

func finishProfile() {
	if stopProfile != nil {
		stopProfile()
		stopProfile = nil
	}
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	err := rootCmd.Execute()
	// PersistentPostRun is skipped when a command fails.
	finishProfile()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for mlabgo.

To load completions:

Bash:
  $ source <(mlabgo completion bash)

Zsh:
  $ mlabgo completion zsh > "${fpath[1]}/_mlabgo"

Fish:
  $ mlabgo completion fish | source

PowerShell:
  PS> mlabgo completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
	return cmd
}
