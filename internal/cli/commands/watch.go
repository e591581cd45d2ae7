package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// fileWatcher reports writes to a fixed set of files. It watches their
// directories because editors often replace a file instead of writing it
// in place.
type fileWatcher struct {
	watcher *fsnotify.Watcher
	files   map[string]string // cleaned absolute path -> path as given
}

func newFileWatcher(files []string) (*fileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	fw := &fileWatcher{watcher: watcher, files: map[string]string{}}
	dirs := map[string]bool{}
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			_ = watcher.Close()
			return nil, err
		}
		fw.files[abs] = f
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		dirs[dir] = true
		if err := watcher.Add(dir); err != nil {
			_ = watcher.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}
	return fw, nil
}

// run calls onChange for each changed file once events for it have been
// quiet for debounce. It returns when ctx is done or the watcher closes.
func (fw *fileWatcher) run(ctx context.Context, debounce time.Duration, onChange func(file string)) {
	var mu sync.Mutex
	timers := map[string]*time.Timer{}
	defer func() {
		mu.Lock()
		for _, t := range timers {
			t.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			file, ok := fw.files[filepath.Clean(event.Name)]
			if !ok {
				continue
			}
			mu.Lock()
			if t, ok := timers[file]; ok {
				t.Stop()
			}
			timers[file] = time.AfterFunc(debounce, func() { onChange(file) })
			mu.Unlock()
		case _, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

func (fw *fileWatcher) Close() error {
	return fw.watcher.Close()
}
