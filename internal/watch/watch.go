// Package watch reports changed documents under a set of directories.
// Bursts of events for one file are debounced into a single notification.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period used when Config.Debounce is zero.
const DefaultDebounce = 200 * time.Millisecond

// Config controls a Watcher.
type Config struct {
	// Paths are files or directories. Directories are watched recursively.
	Paths []string

	// Match selects the files to report. Nil matches every file.
	Match func(path string) bool

	// Debounce is the quiet period after the last event for a file.
	Debounce time.Duration
}

// Extensions returns a matcher accepting names that end in one of exts.
// Compound extensions such as ".oct.md" match by suffix.
func Extensions(exts ...string) func(string) bool {
	return func(path string) bool {
		base := strings.ToLower(filepath.Base(path))
		for _, ext := range exts {
			ext = strings.ToLower(ext)
			if len(base) > len(ext) && strings.HasSuffix(base, ext) {
				return true
			}
		}
		return false
	}
}

// Watcher delivers debounced change notifications.
type Watcher struct {
	fs     *fsnotify.Watcher
	logger *slog.Logger
	cfg    Config

	mu      sync.Mutex
	pending map[string]*time.Timer
	fired   chan string
	done    chan struct{}
	once    sync.Once
}

// New creates a watcher over cfg.Paths.
func New(cfg Config, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.Match == nil {
		cfg.Match = func(string) bool { return true }
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	w := &Watcher{
		fs:      fsw,
		logger:  logger,
		cfg:     cfg,
		pending: make(map[string]*time.Timer),
		fired:   make(chan string, 16),
		done:    make(chan struct{}),
	}
	for _, p := range cfg.Paths {
		if err := w.addPath(p); err != nil {
			fsw.Close()
			return nil, err
		}
	}
	return w, nil
}

// Run blocks until ctx is cancelled, calling onChange from the Run
// goroutine once per debounced change. Removed files are reported too;
// onChange decides what a missing file means. Changes still pending when
// Run returns are dropped; a Watcher runs once.
func (w *Watcher) Run(ctx context.Context, onChange func(path string)) error {
	defer w.stop()

	w.logger.Info("watching for changes",
		"paths", w.cfg.Paths,
		"debounce_ms", w.cfg.Debounce.Milliseconds())

	for {
		select {
		case <-ctx.Done():
			return nil

		case path := <-w.fired:
			onChange(path)

		case event, ok := <-w.fs.Events:
			if !ok {
				return errors.New("watcher events channel closed")
			}
			w.handle(event)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return errors.New("watcher errors channel closed")
			}
			w.logger.Error("file watcher error", "error", err)
		}
	}
}

// Close releases the underlying watcher.
func (w *Watcher) Close() error {
	w.stop()
	return w.fs.Close()
}

// stop releases timer callbacks waiting to deliver and cancels the rest.
func (w *Watcher) stop() {
	w.once.Do(func() { close(w.done) })
	w.stopTimers()
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addPath(event.Name); err != nil {
				w.logger.Error("failed to watch new directory", "path", event.Name, "error", err)
			}
			return
		}
	}
	if event.Op == fsnotify.Chmod || !w.cfg.Match(event.Name) || isHidden(event.Name) {
		return
	}
	w.logger.Debug("file event", "path", event.Name, "op", event.Op.String())
	w.schedule(event.Name)
}

// schedule restarts the quiet period for path.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[path]; ok {
		t.Stop()
	}
	w.pending[path] = time.AfterFunc(w.cfg.Debounce, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()
		select {
		case w.fired <- path:
		case <-w.done:
		}
	})
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
}

// addPath watches a file, or a directory and its subdirectories.
func (w *Watcher) addPath(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("failed to watch path: %w", err)
	}
	if !info.IsDir() {
		return w.fs.Add(root)
	}
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && isHidden(path) {
			return filepath.SkipDir
		}
		if err := w.fs.Add(path); err != nil {
			return fmt.Errorf("failed to watch directory %q: %w", path, err)
		}
		return nil
	})
}

func isHidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".") && base != "." && base != ".."
}
