package main

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watcher re-runs an action whenever one document changes
type watcher struct {
	watcher  *fsnotify.Watcher
	path     string
	debounce time.Duration
	log      *logger
	onChange func()

	mu     sync.Mutex
	timer  *time.Timer
	closed bool
	runMu  sync.Mutex // serializes onChange
}

// newWatcher watches the directory containing path, since editors often
// replace a file rather than write it in place
func newWatcher(path string, debounce time.Duration, log *logger, onChange func()) (*watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		fsWatcher.Close()
		return nil, err
	}

	dir := filepath.Dir(absPath)
	if err := fsWatcher.Add(dir); err != nil {
		fsWatcher.Close()
		return nil, err
	}
	log.logInfo("watching %s", absPath)

	return &watcher{
		watcher:  fsWatcher,
		path:     absPath,
		debounce: debounce,
		log:      log,
		onChange: onChange,
	}, nil
}

// Run processes events until ctx is cancelled
func (w *watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.log.logDebug("event: %s", event)
			w.schedule()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.logError("watcher error: %v", err)
		}
	}
}

// relevant reports whether event touches the watched document
func (w *watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	name, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	return name == w.path
}

// schedule runs onChange once the document has been quiet for the debounce
// period. Each new event restarts the wait.
func (w *watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		w.runMu.Lock()
		defer w.runMu.Unlock()
		if w.isClosed() {
			return
		}
		w.log.logInfo("changed: %s", w.path)
		w.onChange()
	})
}

func (w *watcher) isClosed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

// Close stops watching and cancels any pending run. A run already in
// progress finishes before Close returns; none starts afterwards.
func (w *watcher) Close() error {
	w.mu.Lock()
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	w.runMu.Lock()
	w.runMu.Unlock()
	return w.watcher.Close()
}
