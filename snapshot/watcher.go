package snapshot

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/fluxgate/fluxgate/observability"
)

// ReloadCallback is called after a snapshot was reloaded into the registry.
type ReloadCallback func(snapshots []any)

// ErrorCallback is called when a reload attempt fails.
type ErrorCallback func(error)

// Watcher watches a snapshot file for changes and reloads it into a
// registry. Reloads are debounced so editors and atomic-rename writers do
// not trigger repeated loads.
type Watcher struct {
	path          string
	target        Stater
	watcher       *fsnotify.Watcher
	callback      ReloadCallback
	errorCallback ErrorCallback
	logger        observability.Logger
	debounceDelay time.Duration

	mu        sync.Mutex
	running   bool
	stopCh    chan struct{}
	stoppedCh chan struct{}
}

// WatcherOption is a functional option for configuring the watcher.
type WatcherOption func(*Watcher)

// WithDebounceDelay sets the debounce delay for file changes.
func WithDebounceDelay(delay time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.debounceDelay = delay
	}
}

// WithLogger sets the logger for the watcher.
func WithLogger(logger observability.Logger) WatcherOption {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// WithReloadCallback sets a callback invoked after each successful reload.
func WithReloadCallback(callback ReloadCallback) WatcherOption {
	return func(w *Watcher) {
		w.callback = callback
	}
}

// WithErrorCallback sets the error callback for the watcher.
func WithErrorCallback(callback ErrorCallback) WatcherOption {
	return func(w *Watcher) {
		w.errorCallback = callback
	}
}

// NewWatcher creates a watcher that reloads the snapshot at path into target
// whenever the file changes.
func NewWatcher(path string, target Stater, opts ...WatcherOption) (*Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		path:          absPath,
		target:        target,
		watcher:       fsWatcher,
		debounceDelay: 100 * time.Millisecond,
		logger:        observability.NopLogger(),
		stopCh:        make(chan struct{}),
		stoppedCh:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w, nil
}

// Start loads the snapshot once, then begins watching the file. Watching
// covers the containing directory so atomic renames are observed.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := Restore(w.target, w.path); err != nil {
		w.setStopped()
		return err
	}

	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		w.setStopped()
		return err
	}

	w.logger.Info("started watching snapshot file",
		observability.String("path", w.path),
	)

	go w.watch(ctx)

	return nil
}

// setStopped marks the watcher as not running after a failed Start.
func (w *Watcher) setStopped() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.running = false
}

// Stop stops watching the snapshot file.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.stoppedCh

	return w.watcher.Close()
}

// watch is the main watch loop.
func (w *Watcher) watch(ctx context.Context) {
	defer close(w.stoppedCh)

	var debounceTimer *time.Timer
	var debounceCh <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("snapshot watcher stopped due to context cancellation")
			return

		case <-w.stopCh:
			w.logger.Info("snapshot watcher stopped")
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			debounceTimer, debounceCh = w.handleFileEvent(event, debounceTimer, debounceCh)

		case <-debounceCh:
			debounceCh = nil
			w.reload()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.handleWatchError(err)
		}
	}
}

// handleFileEvent processes a file system event and returns the updated
// debounce timer.
func (w *Watcher) handleFileEvent(
	event fsnotify.Event,
	debounceTimer *time.Timer,
	debounceCh <-chan time.Time,
) (timer *time.Timer, ch <-chan time.Time) {
	if filepath.Clean(event.Name) != w.path {
		return debounceTimer, debounceCh
	}

	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return debounceTimer, debounceCh
	}

	w.logger.Debug("snapshot file changed",
		observability.String("path", event.Name),
		observability.String("op", event.Op.String()),
	)

	if debounceTimer != nil {
		debounceTimer.Stop()
	}
	debounceTimer = time.NewTimer(w.debounceDelay)
	return debounceTimer, debounceTimer.C
}

// reload loads the snapshot file into the registry.
func (w *Watcher) reload() {
	snapshots, err := Load(w.path)
	if err != nil {
		w.handleWatchError(err)
		return
	}

	if err := w.target.LoadState(snapshots); err != nil {
		w.handleWatchError(err)
		return
	}

	w.logger.Info("snapshot reloaded",
		observability.String("path", w.path),
		observability.Int("stores", len(snapshots)),
	)

	if w.callback != nil {
		w.callback(snapshots)
	}
}

// handleWatchError handles watcher and reload errors.
func (w *Watcher) handleWatchError(err error) {
	w.logger.Error("snapshot watcher error",
		observability.Error(err),
	)
	if w.errorCallback != nil {
		w.errorCallback(err)
	}
}
