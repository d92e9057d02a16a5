package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// #region watcher
// Watcher caches a YAML config file, reloads it when the file changes and
// overlays the environment on every Current call. A reload that fails to parse
// keeps the last good file contents.
type Watcher struct {
	path     string
	lookup   LookupFunc
	logger   *zap.Logger
	debounce time.Duration

	fsw       *fsnotify.Watcher
	closeOnce sync.Once

	mu      sync.RWMutex
	file    Config
	reloads int
	pending time.Time
}

// NewWatcher loads path and starts watching its directory. Watching the
// directory catches editors that save by renaming a temp file over path.
func NewWatcher(path string, lookup LookupFunc, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	path = filepath.Clean(path)

	file, err := Load(path)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config: watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("config: watch %s: %w", filepath.Dir(path), err)
	}

	return &Watcher{
		path:     path,
		lookup:   lookup,
		logger:   logger,
		debounce: 50 * time.Millisecond,
		fsw:      fsw,
		file:     file,
	}, nil
}

// Current returns the cached file config with the environment applied.
func (w *Watcher) Current() Config {
	w.mu.RLock()
	cfg := w.file
	w.mu.RUnlock()
	ApplyEnv(&cfg, w.lookup)
	Sanitize(&cfg)
	return cfg
}

// Reloads counts successful reloads since construction.
func (w *Watcher) Reloads() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.reloads
}

// Reload re-reads the file now.
func (w *Watcher) Reload() error {
	file, err := Load(w.path)
	if err != nil {
		return err
	}
	w.mu.Lock()
	w.file = file
	w.reloads++
	w.mu.Unlock()
	return nil
}

// #endregion watcher

// #region run
// Run processes file events until ctx is done, then releases the watch.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.Close()

	tick := time.NewTicker(w.debounce / 2)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("config watcher error", zap.Error(err))

		case <-tick.C:
			w.flush()
		}
	}
}

// Close stops watching. Safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() { err = w.fsw.Close() })
	return err
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}
	w.mu.Lock()
	w.pending = time.Now()
	w.mu.Unlock()
}

// flush reloads once the debounce window has passed since the last event.
func (w *Watcher) flush() {
	w.mu.Lock()
	due := !w.pending.IsZero() && time.Since(w.pending) >= w.debounce
	if due {
		w.pending = time.Time{}
	}
	w.mu.Unlock()
	if !due {
		return
	}

	if err := w.Reload(); err != nil {
		w.logger.Warn("config reload failed; keeping previous", zap.String("path", w.path), zap.Error(err))
		return
	}
	w.logger.Info("config reloaded", zap.String("path", w.path))
}

// #endregion run
