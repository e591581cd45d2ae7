package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/mlabgo/internal/cli/output"
	"github.com/leapstack-labs/mlabgo/pkg/compiler"
	"github.com/leapstack-labs/mlabgo/pkg/format"
	"github.com/leapstack-labs/mlabgo/pkg/parser"
)

const (
	replPrompt     = ">> "
	replContPrompt = ".. "
	replName       = "<repl>"
)

// NewREPLCommand creates the repl command.
func NewREPLCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Compile statements interactively",
		Long: `Start an interactive console. Each complete statement is compiled with
the configured rules and echoed back as normalized source. A statement that
is not finished yet, such as an open if block, continues on the next line.

Console commands:
  :echo [on|off]  Print normalized source (default on)
  :dump [on|off]  Print the syntax tree (default off)
  :help           Show this help
  :quit           Exit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runREPL(cmd)
		},
	}
}

func runREPL(cmd *cobra.Command) error {
	cmdCtx := NewCommandContext(cmd)
	opts, err := cmdCtx.CompilerOptions()
	if err != nil {
		return err
	}
	// The console prints trees itself; never write side files.
	opts.DumpTree = false
	opts.Name = replName

	s := newREPLSession(cmd.Context(), cmdCtx.Renderer, cmd.ErrOrStderr(), opts)
	if in, ok := cmd.InOrStdin().(*os.File); ok && output.IsTerminal(in) {
		var modules []string
		if finder, err := cmdCtx.Finder(); err == nil {
			modules = finder.Modules()
		}
		return s.runInteractive(modules)
	}
	return s.runLines(cmd.InOrStdin())
}

// replSession accumulates input lines until they form complete statements.
type replSession struct {
	ctx    context.Context
	r      *output.Renderer
	errOut io.Writer
	opts   compiler.Options
	echo   bool
	dump   bool
	buf    strings.Builder
}

func newREPLSession(ctx context.Context, r *output.Renderer, errOut io.Writer, opts compiler.Options) *replSession {
	return &replSession{ctx: ctx, r: r, errOut: errOut, opts: opts, echo: true}
}

// prompt returns the prompt for the next line.
func (s *replSession) prompt() string {
	if s.buf.Len() > 0 {
		return replContPrompt
	}
	return replPrompt
}

// reset drops buffered input.
func (s *replSession) reset() {
	s.buf.Reset()
}

// feed processes one input line and reports whether the session should end.
func (s *replSession) feed(line string) (quit bool) {
	trimmed := strings.TrimSpace(line)
	if s.buf.Len() == 0 {
		if trimmed == "" {
			return false
		}
		if strings.HasPrefix(trimmed, ":") {
			return s.command(trimmed)
		}
	}

	s.buf.WriteString(line)
	s.buf.WriteString("\n")
	prog, err := compiler.Compile(s.ctx, s.buf.String(), s.opts)
	if parser.IsIncomplete(err) {
		return false
	}
	s.buf.Reset()
	if err != nil {
		_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
		return false
	}
	s.show(prog)
	return false
}

func (s *replSession) show(prog *compiler.Program) {
	if len(prog.Body) == 0 {
		return
	}
	tree := prog.Tree()
	if s.echo {
		s.r.Println(format.ProgramSource(tree))
	}
	if s.dump {
		_ = format.DumpProgram(s.r.Writer(), tree)
	}
}

func (s *replSession) command(line string) (quit bool) {
	parts := strings.Fields(line)
	switch strings.ToLower(parts[0]) {
	case ":quit", ":exit", ":q":
		return true
	case ":help":
		printREPLHelp(s.r.Writer())
	case ":echo":
		s.echo = toggle(s.echo, parts[1:])
		s.r.Printf("echo %s\n", onOff(s.echo))
	case ":dump":
		s.dump = toggle(s.dump, parts[1:])
		s.r.Printf("dump %s\n", onOff(s.dump))
	default:
		_, _ = fmt.Fprintf(s.errOut, "Unknown command: %s (type :help for commands)\n", parts[0])
	}
	return false
}

// toggle flips v, or sets it from an explicit on/off argument.
func toggle(v bool, args []string) bool {
	if len(args) == 0 {
		return !v
	}
	switch strings.ToLower(args[0]) {
	case "on", "true", "1":
		return true
	case "off", "false", "0":
		return false
	}
	return v
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  :echo [on|off]  Print normalized source of each statement
  :dump [on|off]  Print the syntax tree of each statement
  :help           Show this help message
  :quit / :exit   Exit the console

Tips:
  - Unfinished blocks continue on the next line
  - Ctrl+C discards the current input
  - Use arrow keys to navigate history
`
	_, _ = fmt.Fprintln(w, help)
}

// runLines reads statements from a non-interactive input such as a pipe.
func (s *replSession) runLines(in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if s.feed(scanner.Text()) {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	if s.buf.Len() > 0 {
		_, _ = fmt.Fprintln(s.errOut, "Error: input ended inside an unfinished statement")
	}
	return nil
}

func (s *replSession) runInteractive(modules []string) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replPrompt,
		HistoryFile:     historyFile(),
		AutoComplete:    newREPLCompleter(modules),
		InterruptPrompt: "^C",
		EOFPrompt:       ":quit",
		Stdout:          s.r.Writer(),
		Stderr:          s.errOut,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize console: %w", err)
	}
	defer func() { _ = rl.Close() }()

	s.r.Println("mlabgo console. Type :help for commands, :quit to exit")
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			s.reset()
			rl.SetPrompt(s.prompt())
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if s.feed(line) {
			return nil
		}
		rl.SetPrompt(s.prompt())
	}
}

// historyFile returns the console history path in the user cache
// directory, or "" to disable history.
func historyFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	dir = filepath.Join(dir, "mlabgo")
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return ""
	}
	return filepath.Join(dir, "history")
}

// newREPLCompleter completes console commands and module names.
func newREPLCompleter(modules []string) *readline.PrefixCompleter {
	items := []readline.PrefixCompleterInterface{
		readline.PcItem(":echo", readline.PcItem("on"), readline.PcItem("off")),
		readline.PcItem(":dump", readline.PcItem("on"), readline.PcItem("off")),
		readline.PcItem(":help"),
		readline.PcItem(":quit"),
		readline.PcItem(":exit"),
	}
	for _, m := range modules {
		items = append(items, readline.PcItem(m))
	}
	return readline.NewPrefixCompleter(items...)
}
