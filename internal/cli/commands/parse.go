package commands

import (
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/mlabgo/pkg/compiler"
	"github.com/leapstack-labs/mlabgo/pkg/format"
	"github.com/leapstack-labs/mlabgo/pkg/rewrite"
)

// ParseOptions holds options for the parse command.
type ParseOptions struct {
	Raw    bool // skip rewrite rules
	Source bool // print normalized source instead of the tree
}

// NewParseCommand creates the parse command.
func NewParseCommand() *cobra.Command {
	opts := &ParseOptions{}
	cmd := &cobra.Command{
		Use:   "parse <file|module>",
		Short: "Print the syntax tree of a source file",
		Long: `Parse a source file, apply the configured rewrite rules and print the
resulting tree.

The argument is a file path or a module name looked up on the search path.
With --output json or yaml the tree is printed as structured data.`,
		Example: `  # Dump the tree of a file
  mlabgo parse script.m

  # Show the tree before any rewrite rule runs
  mlabgo parse --raw script.m

  # Print the normalized source
  mlabgo parse --source script.m

  # Export the tree as YAML
  mlabgo parse -o yaml script.m`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Raw, "raw", false, "Do not apply rewrite rules")
	cmd.Flags().BoolVar(&opts.Source, "source", false, "Print normalized source instead of the tree")

	return cmd
}

func runParse(cmd *cobra.Command, arg string, opts *ParseOptions) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	path, src, err := cmdCtx.readSource(arg)
	if err != nil {
		return err
	}
	copts, err := cmdCtx.CompilerOptions()
	if err != nil {
		return err
	}
	copts.Name = path
	if opts.Raw {
		copts.Rules = []*rewrite.Rule{}
		copts.RuleRebase = false
	}

	prog, err := compiler.Compile(cmd.Context(), src, copts)
	if err != nil {
		return err
	}
	tree := prog.Tree()

	if ok, err := r.Structured(map[string]any{
		"name":     prog.Name,
		"autoload": prog.Autoload,
		"body":     format.TreeList(prog.Body),
	}); ok {
		return err
	}

	if opts.Source {
		r.Println(format.ProgramSource(tree))
		return nil
	}
	return format.DumpProgram(r.Writer(), tree)
}
