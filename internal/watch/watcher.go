package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"tagres/internal/logging"
)

// ChangeFunc handles one settled batch of changed paths. Calls never overlap.
type ChangeFunc func(ctx context.Context, changed []string) error

// Options configures a Watcher.
type Options struct {
	// Roots are watched recursively.
	Roots []string
	// Ignore lists files and directories whose changes are dropped, typically
	// the output directory and its lock when they live inside a root.
	Ignore   []string
	Debounce time.Duration
	Logger   *slog.Logger
}

// Watcher re-runs a callback when files below its roots change.
type Watcher struct {
	fsw       *fsnotify.Watcher
	debouncer *Debouncer
	ignore    []string
	logger    *slog.Logger
}

// New creates a watcher and registers every directory below the roots.
func New(opts Options) (*Watcher, error) {
	if len(opts.Roots) == 0 {
		return nil, errors.New("watch requires at least one root directory")
	}
	if opts.Debounce <= 0 {
		opts.Debounce = 200 * time.Millisecond
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}

	w := &Watcher{
		fsw:       fsw,
		debouncer: NewDebouncer(opts.Debounce),
		logger:    logging.NewComponentLogger(opts.Logger, "watch"),
	}
	for _, dir := range opts.Ignore {
		if abs, err := filepath.Abs(dir); err == nil {
			w.ignore = append(w.ignore, abs)
		}
	}
	for _, root := range opts.Roots {
		if err := w.addTree(root); err != nil {
			_ = fsw.Close()
			return nil, err
		}
	}
	return w, nil
}

// WatchList returns the directories currently registered.
func (w *Watcher) WatchList() []string {
	return w.fsw.WatchList()
}

// Run delivers settled change batches to fn until ctx is canceled. Errors
// from fn are logged and watching continues.
func (w *Watcher) Run(ctx context.Context, fn ChangeFunc) error {
	defer w.close()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			logging.WarnWithContext(w.logger, "file watcher error", "watch_error",
				logging.Error(err),
				logging.String(logging.FieldImpact, "some changes may be missed until the next event"),
			)
		case <-w.debouncer.Ready():
			changed := w.debouncer.Drain()
			if len(changed) == 0 {
				continue
			}
			w.logger.Info("resources changed", logging.Int("paths", len(changed)))
			if err := fn(ctx, changed); err != nil {
				logging.ErrorWithContext(w.logger, "re-run after change failed", "watch_run_failed",
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "fix the reported problem; the next change triggers another run"),
				)
			}
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Name == "" || w.ignored(event.Name) {
		return
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}
	if event.Has(fsnotify.Create) {
		if err := w.addTree(event.Name); err != nil {
			w.logger.Debug("watch new directory failed", logging.String("path", event.Name), logging.Error(err))
		}
	}
	w.logger.Debug("change detected", logging.String("path", event.Name), logging.String("op", event.Op.String()))
	w.debouncer.Add(event.Name)
}

// addTree registers root and its subdirectories. A root that is a plain file
// is ignored.
func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return fmt.Errorf("watch %s: %w", root, err)
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if w.ignored(path) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch directory %s: %w", path, err)
		}
		return nil
	})
}

func (w *Watcher) ignored(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	for _, dir := range w.ignore {
		if abs == dir || strings.HasPrefix(abs, dir+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func (w *Watcher) close() {
	w.debouncer.Stop()
	_ = w.fsw.Close()
}
