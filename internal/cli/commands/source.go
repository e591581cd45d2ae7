package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// resolveSource maps a command argument to a file on disk. An existing
// file is used as is; anything else is looked up as a module name on the
// search path.
func (c *CommandContext) resolveSource(arg string) (string, error) {
	info, err := os.Stat(arg)
	switch {
	case err == nil && !info.IsDir():
		return arg, nil
	case err == nil:
		return "", fmt.Errorf("%s is a directory", arg)
	case !errors.Is(err, fs.ErrNotExist):
		return "", err
	}

	finder, err := c.Finder()
	if err != nil {
		return "", err
	}
	p, err := finder.Find(arg)
	if err != nil {
		return "", err
	}
	// The finder is rooted at the file system root.
	return filepath.FromSlash("/" + p), nil
}

// readSource resolves arg and returns its path and contents.
func (c *CommandContext) readSource(arg string) (string, string, error) {
	path, err := c.resolveSource(arg)
	if err != nil {
		return "", "", err
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return path, string(src), nil
}
