package discovery

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"latte/pkg/logging"
)

// DefaultDebounce is how long the watcher waits for more changes before
// reporting a batch.
const DefaultDebounce = 300 * time.Millisecond

// Watcher reports batches of changed files below a root directory.
// Directories created while watching are added automatically.
type Watcher struct {
	mu sync.Mutex

	root     string
	opts     Options
	debounce time.Duration
	watcher  *fsnotify.Watcher

	// pending holds changed paths relative to root until the debounce fires
	pending map[string]struct{}
	closed  bool
}

// NewWatcher watches every non-skipped directory below root. Changes to
// excluded paths are ignored.
func NewWatcher(root string, opts Options, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		root:     root,
		opts:     opts,
		debounce: debounce,
		watcher:  fw,
		pending:  map[string]struct{}{},
	}
	if err := w.addTree(root); err != nil {
		fw.Close()
		return nil, err
	}
	logging.Info("Watch", "Started watching %s for changes", root)
	return w, nil
}

func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && slices.Contains(SkipDirs, d.Name()) {
			return filepath.SkipDir
		}
		if rel, err := filepath.Rel(w.root, path); err == nil && rel != "." && w.opts.Excluded(rel+"/") {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return err
		}
		logging.Debug("Watch", "Watching directory: %s", path)
		return nil
	})
}

// Run delivers change batches to onChange until ctx is done. onChange is
// never called concurrently with itself.
func (w *Watcher) Run(ctx context.Context, onChange func(paths []string)) error {
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if w.handle(event) {
				timer.Reset(w.debounce)
			}

		case <-timer.C:
			if paths := w.flush(); len(paths) > 0 {
				logging.Debug("Watch", "%d files changed", len(paths))
				onChange(paths)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			logging.Error("Watch", err, "Filesystem watcher error")
		}
	}
}

// handle records a relevant event and reports whether it was recorded.
func (w *Watcher) handle(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	rel, err := filepath.Rel(w.root, event.Name)
	if err != nil || !filepath.IsLocal(rel) {
		return false
	}
	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				logging.Warn("Watch", "Failed to watch new directory %s: %v", event.Name, err)
			}
			return false
		}
	}
	if w.opts.Excluded(rel) {
		return false
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending[filepath.ToSlash(rel)] = struct{}{}
	return true
}

func (w *Watcher) flush() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	w.pending = map[string]struct{}{}
	slices.Sort(paths)
	return paths
}

// Close stops watching. It is safe to call more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	logging.Info("Watch", "Stopped watching %s", w.root)
	return w.watcher.Close()
}

// Watch watches root until ctx is done, calling onChange with each
// debounced batch of changed paths.
func Watch(ctx context.Context, root string, opts Options, onChange func(paths []string)) error {
	w, err := NewWatcher(root, opts, DefaultDebounce)
	if err != nil {
		return err
	}
	defer w.Close()
	return w.Run(ctx, onChange)
}
