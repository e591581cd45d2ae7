// Package loader locates source modules on a search path and compiles
// them into units a host can run.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/leapstack-labs/mlabgo/pkg/compiler"
)

// Ext is the source file extension.
const Ext = ".m"

const maxSuggestions = 3

// ErrNotFound is matched by every NotFoundError.
var ErrNotFound = errors.New("module not found")

// NotFoundError reports a module missing from every search directory.
type NotFoundError struct {
	Module      string
	Searched    []string
	Suggestions []string
}

func (e *NotFoundError) Error() string {
	msg := fmt.Sprintf("module %q not found in %s", e.Module, strings.Join(e.Searched, ", "))
	if len(e.Suggestions) > 0 {
		msg += "; did you mean " + strings.Join(e.Suggestions, ", ") + "?"
	}
	return msg
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// Finder resolves module names to files inside FS.
type Finder struct {
	FS fs.FS

	// Paths are the directories searched in order, as slash-separated
	// paths relative to the root of FS.
	Paths []string

	// Options are used when compiling loaded modules. Name is set per
	// module.
	Options compiler.Options
}

// NewOSFinder builds a finder over the host file system that searches the
// working directory first and then paths.
func NewOSFinder(paths []string, opts compiler.Options) (*Finder, error) {
	dirs := append([]string{"."}, paths...)
	f := &Finder{FS: os.DirFS("/"), Options: opts}
	for _, d := range dirs {
		abs, err := filepath.Abs(d)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve search path %s: %w", d, err)
		}
		rel := strings.TrimPrefix(filepath.ToSlash(abs), "/")
		if rel == "" {
			rel = "."
		}
		f.Paths = append(f.Paths, rel)
	}
	return f, nil
}

// Leaf returns the last component of a dotted or slashed module name.
func Leaf(module string) string {
	if i := strings.LastIndexAny(module, "./"); i >= 0 {
		return module[i+1:]
	}
	return module
}

// Find returns the FS path of the module's source file.
func (f *Finder) Find(module string) (string, error) {
	leaf := Leaf(module)
	if leaf == "" {
		return "", fmt.Errorf("invalid module name %q", module)
	}
	for _, dir := range f.Paths {
		p := path.Join(dir, leaf+Ext)
		info, err := fs.Stat(f.FS, p)
		if err == nil && !info.IsDir() {
			return p, nil
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("failed to stat %s: %w", p, err)
		}
	}
	return "", &NotFoundError{
		Module:      module,
		Searched:    append([]string(nil), f.Paths...),
		Suggestions: f.suggest(leaf),
	}
}

// Unit is a compiled module.
type Unit struct {
	Module string
	Path   string
	*compiler.Program
}

// Load finds and compiles a module.
func (f *Finder) Load(ctx context.Context, module string) (*Unit, error) {
	p, err := f.Find(module)
	if err != nil {
		return nil, err
	}
	src, err := fs.ReadFile(f.FS, p)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", p, err)
	}
	opts := f.Options
	opts.Name = p
	prog, err := compiler.Compile(ctx, string(src), opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	return &Unit{Module: module, Path: p, Program: prog}, nil
}

// Modules lists the module names available on the search path. A name
// found in several directories is listed once.
func (f *Finder) Modules() []string {
	seen := map[string]bool{}
	var out []string
	for _, dir := range f.Paths {
		entries, err := fs.ReadDir(f.FS, dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			name := e.Name()
			if e.IsDir() || !strings.HasSuffix(name, Ext) {
				continue
			}
			name = strings.TrimSuffix(name, Ext)
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	sort.Strings(out)
	return out
}

// suggest returns the closest available module names.
func (f *Finder) suggest(leaf string) []string {
	candidates := f.Modules()
	var out []string
	for _, m := range fuzzy.Find(leaf, candidates) {
		out = append(out, m.Str)
	}
	// A longer misspelling still matches a candidate it contains.
	for _, c := range candidates {
		if len(fuzzy.Find(c, []string{leaf})) > 0 && !slices.Contains(out, c) {
			out = append(out, c)
		}
	}
	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}
	return out
}

