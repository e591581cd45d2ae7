package commands

import (
	"context"
	"fmt"
	"os/signal"
	"runtime"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/mlabgo/internal/cli/output"
	"github.com/leapstack-labs/mlabgo/pkg/compiler"
)

// CheckOptions holds options for the check command.
type CheckOptions struct {
	All   bool // check every module on the search path
	Watch bool // recheck files when they change
}

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	opts := &CheckOptions{}
	cmd := &cobra.Command{
		Use:   "check [file|module...]",
		Short: "Compile source files and report errors",
		Long: `Compile each argument with the configured rules and report whether it
succeeded. Files are compiled concurrently, bounded by the jobs option.

With --all every module on the search path is checked. With --watch the
command keeps running and rechecks a file whenever it is written.`,
		Example: `  # Check two files
  mlabgo check a.m b.m

  # Check every module on the search path with four workers
  mlabgo check --all -j 4

  # Recheck on save
  mlabgo check --watch script.m`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.All, "all", false, "Check every module on the search path")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Recheck files when they change")

	return cmd
}

// CheckResult is the outcome of compiling one file.
type CheckResult struct {
	File       string `json:"file" yaml:"file"`
	OK         bool   `json:"ok" yaml:"ok"`
	Statements int    `json:"statements,omitempty" yaml:"statements,omitempty"`
	Functions  int    `json:"functions,omitempty" yaml:"functions,omitempty"`
	Error      string `json:"error,omitempty" yaml:"error,omitempty"`
}

func runCheck(cmd *cobra.Command, args []string, opts *CheckOptions) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	if opts.All {
		finder, err := cmdCtx.Finder()
		if err != nil {
			return err
		}
		args = append(args, finder.Modules()...)
	}
	if len(args) == 0 {
		return fmt.Errorf("nothing to check: give files or modules, or use --all")
	}

	files := make([]string, 0, len(args))
	for _, arg := range args {
		path, err := cmdCtx.resolveSource(arg)
		if err != nil {
			return err
		}
		files = append(files, path)
	}

	copts, err := cmdCtx.CompilerOptions()
	if err != nil {
		return err
	}
	jobs := cmdCtx.Cfg.Jobs
	if jobs == 0 {
		jobs = runtime.NumCPU()
	}

	ctx := cmd.Context()
	results, err := checkFiles(ctx, files, copts, jobs)
	if err != nil {
		return err
	}
	if ok, err := r.Structured(results); ok {
		if err != nil {
			return err
		}
	} else {
		for _, res := range results {
			printCheckResult(r, res)
		}
	}

	if opts.Watch {
		return watchAndCheck(cmd, r, files, copts)
	}

	failed := 0
	for _, res := range results {
		if !res.OK {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed to compile", failed, len(results))
	}
	return nil
}

// checkFiles compiles files with at most jobs running at once. Results are
// in input order. Compile failures are reported in the results; only a
// canceled context fails the whole run.
func checkFiles(ctx context.Context, files []string, opts compiler.Options, jobs int) ([]CheckResult, error) {
	results := make([]CheckResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, file := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = checkFile(gctx, file, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func checkFile(ctx context.Context, file string, opts compiler.Options) CheckResult {
	prog, err := compiler.CompileFile(ctx, file, opts)
	if err != nil {
		return CheckResult{File: file, Error: err.Error()}
	}
	return CheckResult{
		File:       file,
		OK:         true,
		Statements: len(prog.Body),
		Functions:  len(prog.Functions()),
	}
}

func printCheckResult(r *output.Renderer, res CheckResult) {
	styles := r.Styles()
	if !res.OK {
		r.Printf("%s %s\n", styles.Error.Render("FAIL"), res.Error)
		return
	}
	r.Printf("%s   %s %s\n", styles.Success.Render("ok"), res.File,
		styles.Muted.Render(fmt.Sprintf("(%d statements, %d functions)", res.Statements, res.Functions)))
}

func watchAndCheck(cmd *cobra.Command, r *output.Renderer, files []string, opts compiler.Options) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w, err := newFileWatcher(files)
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	r.Println(r.Styles().Muted.Render(fmt.Sprintf("Watching %d files, press Ctrl+C to stop", len(files))))
	var mu sync.Mutex
	w.run(ctx, 100*time.Millisecond, func(file string) {
		res := checkFile(ctx, file, opts)
		mu.Lock()
		defer mu.Unlock()
		if ok, err := r.Structured(res); ok {
			if err != nil {
				r.Errorf("Error: %v", err)
			}
			return
		}
		printCheckResult(r, res)
	})
	return nil
}
