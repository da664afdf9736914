package mock

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/giantswarm/sleuth/pkg/logging"
)

// DefaultDebounceInterval is the time to wait after the last change to the
// config file before reloading.
const DefaultDebounceInterval = 300 * time.Millisecond

// Watcher reloads a Server whenever its config file changes.
type Watcher struct {
	mu sync.Mutex

	server    *Server
	debounce  time.Duration
	fsWatcher *fsnotify.Watcher
	stopCh    chan struct{}
	running   bool

	// OnReload, if set, is called after every reload attempt.
	OnReload func(err error)

	debounceTimer *time.Timer
	debounceMu    sync.Mutex
}

// NewWatcher creates a watcher for a server loaded with NewServerFromFile.
func NewWatcher(s *Server, debounce time.Duration) (*Watcher, error) {
	if s.path == "" {
		return nil, fmt.Errorf("mock provider %s has no backing file to watch", s.name)
	}
	if debounce <= 0 {
		debounce = DefaultDebounceInterval
	}
	return &Watcher{server: s, debounce: debounce}, nil
}

// Start begins watching. The directory is watched rather than the file so
// editors that replace the file on save are handled.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	dir := filepath.Dir(w.server.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	w.fsWatcher = watcher
	w.stopCh = make(chan struct{})
	w.running = true

	go w.processEvents(watcher.Events, watcher.Errors, w.stopCh)

	logging.Info("MockWatcher", "Watching %s for changes", w.server.path)
	return nil
}

func (w *Watcher) processEvents(eventsCh <-chan fsnotify.Event, errorsCh <-chan error, stopCh <-chan struct{}) {
	target := filepath.Clean(w.server.path)
	for {
		select {
		case <-stopCh:
			return

		case event, ok := <-eventsCh:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			logging.Debug("MockWatcher", "Config file changed: %s (%s)", event.Name, event.Op)
			w.reloadDebounced()

		case err, ok := <-errorsCh:
			if !ok {
				return
			}
			logging.Error("MockWatcher", err, "fsnotify error")
		}
	}
}

func (w *Watcher) reloadDebounced() {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}

	w.debounceTimer = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		running := w.running
		w.mu.Unlock()
		if !running {
			return
		}

		err := w.server.Reload()
		if err != nil {
			logging.Warn("MockWatcher", "Reload failed, keeping previous definitions: %v", err)
		}
		if w.OnReload != nil {
			w.OnReload(err)
		}
	})
}

// Stop stops watching. Stopping twice is a no-op.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}

	w.running = false
	close(w.stopCh)

	w.debounceMu.Lock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
		w.debounceTimer = nil
	}
	w.debounceMu.Unlock()

	err := w.fsWatcher.Close()
	w.fsWatcher = nil
	return err
}
