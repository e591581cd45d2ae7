package loader_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/mlabgo/pkg/ast"
	"github.com/leapstack-labs/mlabgo/pkg/compiler"
	"github.com/leapstack-labs/mlabgo/pkg/loader"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"hello.m":         {Data: []byte("disp hello\n")},
		"lib/hello.m":     {Data: []byte("disp shadowed\n")},
		"lib/stats.m":     {Data: []byte("function m = avg(v)\n m = sum(v) / numel(v);\nend\n")},
		"lib/broken.m":    {Data: []byte("x = (1 +\n")},
		"lib/notes.txt":   {Data: []byte("not a module")},
		"lib/sub/inner.m": {Data: []byte("x = 1;\n")},
	}
}

func TestLeaf(t *testing.T) {
	assert.Equal(t, "stats", loader.Leaf("pkg.tools.stats"))
	assert.Equal(t, "stats", loader.Leaf("pkg/stats"))
	assert.Equal(t, "stats", loader.Leaf("stats"))
}

func TestFindSearchesInOrder(t *testing.T) {
	f := &loader.Finder{FS: testFS(), Paths: []string{".", "lib"}}

	p, err := f.Find("hello")
	require.NoError(t, err)
	assert.Equal(t, "hello.m", p, "current directory comes first")

	p, err = f.Find("project.stats")
	require.NoError(t, err)
	assert.Equal(t, "lib/stats.m", p)

	// Subdirectories are not searched.
	_, err = f.Find("inner")
	assert.ErrorIs(t, err, loader.ErrNotFound)
}

func TestFindSuggestsNames(t *testing.T) {
	f := &loader.Finder{FS: testFS(), Paths: []string{".", "lib"}}

	_, err := f.Find("stat")
	require.Error(t, err)
	var nf *loader.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "stat", nf.Module)
	assert.Equal(t, []string{".", "lib"}, nf.Searched)
	assert.Contains(t, nf.Suggestions, "stats")
	assert.Contains(t, err.Error(), "did you mean")

	_, err = f.Find("statsx")
	require.True(t, errors.As(err, &nf))
	assert.Contains(t, nf.Suggestions, "stats")

	_, err = f.Find("zzz")
	require.True(t, errors.As(err, &nf))
	assert.Empty(t, nf.Suggestions)
	assert.NotContains(t, err.Error(), "did you mean")
}

func TestModules(t *testing.T) {
	f := &loader.Finder{FS: testFS(), Paths: []string{".", "lib"}}
	assert.Equal(t, []string{"broken", "hello", "stats"}, f.Modules())
}

func TestLoad(t *testing.T) {
	f := &loader.Finder{
		FS:      testFS(),
		Paths:   []string{"lib"},
		Options: compiler.Options{Autoload: []string{"mlabgo/runtime", "extra"}},
	}

	u, err := f.Load(context.Background(), "stats")
	require.NoError(t, err)
	assert.Equal(t, "stats", u.Module)
	assert.Equal(t, "lib/stats.m", u.Path)
	assert.Equal(t, "lib/stats.m", u.Name)
	assert.Equal(t, []string{"mlabgo/runtime", "extra"}, u.Autoload)
	require.Len(t, u.Functions(), 1)
	fn := u.Functions()[0]
	assert.Equal(t, "avg", fn.Name)
	_, ok := fn.Body[len(fn.Body)-1].(*ast.Return)
	assert.True(t, ok)

	_, err = f.Load(context.Background(), "broken")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lib/broken.m")

	_, err = f.Load(context.Background(), "missing")
	assert.ErrorIs(t, err, loader.ErrNotFound)
}

func TestNewOSFinder(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tool.m"), []byte("x = 1;\n"), 0o644))

	f, err := loader.NewOSFinder([]string{dir}, compiler.Options{})
	require.NoError(t, err)
	require.Len(t, f.Paths, 2)

	u, err := f.Load(context.Background(), "tool")
	require.NoError(t, err)
	assert.Len(t, u.Body, 1)
}
