package workspace

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/gnana997/m2ls/pkg/extractor"
	"github.com/gnana997/m2ls/pkg/metrics"
)

// fileIndexer is what the watcher drives on disk changes.
type fileIndexer interface {
	IndexFile(path string) (bool, error)
	RemoveFile(path string)
}

// Watcher re-extracts registration.php and requirejs-config.js files when
// they change on disk. Only directories handed to Watch are observed.
//
// Usage:
//
//	w, err := NewWatcher(scheduler, 200*time.Millisecond, logger)
//	if err != nil {
//	    return err
//	}
//	w.Watch("/var/www/magento/app/code/Acme/Module")
//	defer w.Stop()
type Watcher struct {
	watcher  *fsnotify.Watcher
	target   fileIndexer
	debounce time.Duration
	logger   *slog.Logger

	dirs   map[string]bool
	dirsMu sync.Mutex

	debounceTimers map[string]*time.Timer
	debounceMu     sync.Mutex

	stopChan chan struct{}
	done     chan struct{}
	stopped  bool
	mu       sync.Mutex
}

// NewWatcher creates a watcher and starts its event loop.
func NewWatcher(target fileIndexer, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	w := &Watcher{
		watcher:        fw,
		target:         target,
		debounce:       debounce,
		logger:         logger,
		dirs:           make(map[string]bool),
		debounceTimers: make(map[string]*time.Timer),
		stopChan:       make(chan struct{}),
		done:           make(chan struct{}),
	}
	go w.eventLoop()
	return w, nil
}

// Watch adds dir to the watch list. Repeated calls are no-ops.
func (w *Watcher) Watch(dir string) {
	w.dirsMu.Lock()
	defer w.dirsMu.Unlock()

	if w.dirs[dir] {
		return
	}
	if err := w.watcher.Add(dir); err != nil {
		w.logger.Warn("failed to watch directory", "path", dir, "error", err)
		return
	}
	w.dirs[dir] = true
}

// Stop ends the event loop and cancels pending re-extractions. Idempotent.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil
	}
	w.stopped = true
	close(w.stopChan)

	w.debounceMu.Lock()
	for _, timer := range w.debounceTimers {
		timer.Stop()
	}
	w.debounceTimers = make(map[string]*time.Timer)
	w.debounceMu.Unlock()

	err := w.watcher.Close()
	<-w.done
	return err
}

func (w *Watcher) eventLoop() {
	defer close(w.done)

	for {
		select {
		case <-w.stopChan:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("file watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name
	if !extractor.IsIndexable(path) {
		return
	}

	w.logger.Debug("file event", "op", event.Op.String(), "path", path)

	switch {
	case event.Has(fsnotify.Write), event.Has(fsnotify.Create):
		w.debounceReindex(path)
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		w.cancelReindex(path)
		w.target.RemoveFile(path)
	}
}

// debounceReindex schedules a re-extraction; a newer event for the same file
// restarts the delay.
func (w *Watcher) debounceReindex(path string) {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if timer, exists := w.debounceTimers[path]; exists {
		timer.Stop()
	}

	w.debounceTimers[path] = time.AfterFunc(w.debounce, func() {
		w.debounceMu.Lock()
		delete(w.debounceTimers, path)
		w.debounceMu.Unlock()

		w.reindex(path)
	})
}

func (w *Watcher) cancelReindex(path string) {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if timer, exists := w.debounceTimers[path]; exists {
		timer.Stop()
		delete(w.debounceTimers, path)
	}
}

func (w *Watcher) reindex(path string) {
	indexed, err := w.target.IndexFile(path)
	switch {
	case err != nil:
		metrics.RecordFile(JobWatch, metrics.StatusFailed)
		w.logger.Warn("failed to re-index file", "path", path, "error", err)
	case indexed:
		metrics.RecordFile(JobWatch, metrics.StatusIndexed)
		w.logger.Debug("file re-indexed", "path", path)
	default:
		metrics.RecordFile(JobWatch, metrics.StatusSkipped)
	}
}

// GetStats returns watcher statistics.
func (w *Watcher) GetStats() WatcherStats {
	w.debounceMu.Lock()
	pending := len(w.debounceTimers)
	w.debounceMu.Unlock()

	w.dirsMu.Lock()
	dirs := len(w.dirs)
	w.dirsMu.Unlock()

	w.mu.Lock()
	running := !w.stopped
	w.mu.Unlock()

	return WatcherStats{PendingReindexes: pending, WatchedDirs: dirs, IsRunning: running}
}

// WatcherStats contains watcher statistics.
type WatcherStats struct {
	PendingReindexes int
	WatchedDirs      int
	IsRunning        bool
}
