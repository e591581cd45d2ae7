// Package compiler runs the front-end pipeline: parse, rewrite and
// optionally dump the resulting tree.
package compiler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/leapstack-labs/mlabgo/pkg/ast"
	"github.com/leapstack-labs/mlabgo/pkg/format"
	"github.com/leapstack-labs/mlabgo/pkg/parser"
	"github.com/leapstack-labs/mlabgo/pkg/rewrite"
)

// DefaultAutoload is the module list a compiled program imports when
// Options.Autoload is nil.
var DefaultAutoload = []string{"mlabgo/runtime"}

// ErrDoubleRebase is returned when rebase rules are configured while the
// parser also rebases indices inline.
var ErrDoubleRebase = errors.New("compiler: index rebasing configured in both parser and rules")

// Options controls a compilation.
type Options struct {
	// Name identifies the source, usually its file path. With DumpTree the
	// dump is written to Name + ".ast".
	Name string

	// Autoload lists the modules the host imports before running the body.
	// Nil selects DefaultAutoload; an empty slice imports nothing.
	Autoload []string

	// Rules run after parsing. Nil selects rewrite.Default().
	Rules []*rewrite.Rule

	// RuleRebase parses without inline index rebasing and runs
	// rewrite.Rebase() before Rules instead.
	RuleRebase bool

	DumpTree bool

	// CreateDump opens the dump destination. Defaults to os.Create.
	CreateDump func(path string) (io.WriteCloser, error)

	Logger *slog.Logger
	Trace  bool
}

// Program is a compiled unit ready for a host.
type Program struct {
	Name     string
	Autoload []string
	Body     []ast.Node
}

// Tree returns the body as a syntax tree program.
func (p *Program) Tree() *ast.Program {
	return &ast.Program{Body: p.Body}
}

// Functions returns the function definitions at the top level of the body.
func (p *Program) Functions() []*ast.FuncDef {
	return p.Tree().Functions()
}

// Compile parses src and applies the configured rules.
func Compile(ctx context.Context, src string, opts Options) (*Program, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	rules := opts.Rules
	if rules == nil {
		rules = rewrite.Default()
	}
	for _, r := range rules {
		if r.Group() == "rebase" && !opts.RuleRebase {
			return nil, fmt.Errorf("%w: rule %s", ErrDoubleRebase, r.Name())
		}
	}
	if opts.RuleRebase {
		rules = append(rewrite.Rebase(), rules...)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	tree, err := parser.ParseWithOptions(src, parser.WithInlineRebase(!opts.RuleRebase))
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	engine := rewrite.New(rules, rewrite.WithLogger(logger), rewrite.WithTrace(opts.Trace))
	tree, err = engine.ApplyProgram(tree)
	if err != nil {
		return nil, err
	}

	autoload := opts.Autoload
	if autoload == nil {
		autoload = DefaultAutoload
	}
	prog := &Program{
		Name:     opts.Name,
		Autoload: append([]string(nil), autoload...),
		Body:     tree.Body,
	}

	if opts.DumpTree {
		if err := dump(prog, opts); err != nil {
			return nil, err
		}
	}

	logger.Debug("compiled",
		slog.String("name", opts.Name),
		slog.Int("statements", len(prog.Body)),
		slog.Duration("elapsed", time.Since(start)))
	return prog, nil
}

// CompileFile reads path and compiles it with Name set to path.
func CompileFile(ctx context.Context, path string, opts Options) (*Program, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	opts.Name = path
	prog, err := Compile(ctx, string(src), opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return prog, nil
}

func dump(prog *Program, opts Options) error {
	if opts.Name == "" {
		return errors.New("compiler: tree dump needs a source name")
	}
	create := opts.CreateDump
	if create == nil {
		create = func(path string) (io.WriteCloser, error) { return os.Create(path) }
	}
	w, err := create(opts.Name + ".ast")
	if err != nil {
		return fmt.Errorf("failed to create tree dump: %w", err)
	}
	if err := format.DumpProgram(w, prog.Tree()); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write tree dump: %w", err)
	}
	return w.Close()
}
