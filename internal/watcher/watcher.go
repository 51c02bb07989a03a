// Package watcher reloads the served index when its on-disk artifacts change.
package watcher

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/lioncity/rentqa/internal/vector"
)

const defaultDebounce = 400 * time.Millisecond

// Watcher watches the index directory and swaps the handle's index when the
// persisted artifacts are rewritten. Rapid event bursts (save writes both
// artifacts back to back) collapse into one reload through a debounce timer.
type Watcher struct {
	store    *vector.Store
	handle   *vector.Handle
	debounce time.Duration
	logger   *zap.Logger

	mu       sync.Mutex
	fsw      *fsnotify.Watcher
	timer    *time.Timer
	started  bool
	done     chan struct{}
	stopOnce sync.Once
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce overrides the reload debounce interval.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// NewWatcher creates a watcher that reloads from store into handle.
func NewWatcher(store *vector.Store, handle *vector.Handle, logger *zap.Logger, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		store:    store,
		handle:   handle,
		debounce: defaultDebounce,
		logger:   logger,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins watching the index directory. It runs until ctx is cancelled
// or Stop is called. The directory must exist before Start.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return nil
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return err
	}
	dir := filepath.Dir(w.store.VectorPath())
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		w.mu.Unlock()
		return err
	}
	w.fsw = fsw
	w.started = true
	w.mu.Unlock()
	w.logger.Debug("index watcher started", zap.String("dir", dir))
	go w.run(ctx)
	return nil
}

func (w *Watcher) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			if err != nil {
				w.logger.Debug("index watcher error", zap.Error(err))
			}
		}
	}
}

// handleEvent schedules a reload when either artifact is created, written, or
// renamed into place. Temporary files from an in-progress save are ignored.
func (w *Watcher) handleEvent(ev fsnotify.Event) {
	if !w.isArtifact(ev.Name) {
		return
	}
	if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
		return
	}
	w.logger.Debug("index artifact changed",
		zap.String("op", ev.Op.String()), zap.String("path", ev.Name))
	w.scheduleReload()
}

func (w *Watcher) isArtifact(path string) bool {
	clean := filepath.Clean(path)
	return clean == filepath.Clean(w.store.VectorPath()) ||
		clean == filepath.Clean(w.store.SidecarPath())
}

func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

// reload loads the artifacts and swaps the handle. A load failure (for
// example after the artifacts were deleted) marks the index absent rather
// than keeping a stale one.
func (w *Watcher) reload() {
	idx, ok := w.store.Load()
	if !ok {
		w.logger.Warn("index reload found no valid index, marking absent")
		w.handle.Replace(nil)
		return
	}
	w.handle.Replace(idx)
	w.logger.Info("index reloaded", zap.Int("chunks", idx.Size()))
}

// Stop stops watching. Safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		close(w.done)
		if w.timer != nil {
			w.timer.Stop()
		}
		if w.fsw != nil {
			_ = w.fsw.Close()
		}
		w.started = false
	})
}
