// Package watch runs the rule engine continuously: it monitors target
// directories with fsnotify and evaluates newly created files against the
// configured rules.
package watch

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"cleanfiles/internal/engine"
	"cleanfiles/internal/log"
	"cleanfiles/pkg/types"

	"github.com/fsnotify/fsnotify"
)

// settleDelay is how long the watcher waits after a create event before
// evaluating the file, so writers can finish producing it.
const settleDelay = 500 * time.Millisecond

// Watcher monitors directories for new files and feeds them to the engine.
type Watcher struct {
	engine      *engine.Engine
	fsWatcher   *fsnotify.Watcher
	directories []string

	resultChan chan types.CleanResult
	stopChan   chan struct{}

	mutex   sync.RWMutex
	running bool
	closed  bool
}

// New creates a watcher driving the given engine.
func New(eng *engine.Engine) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		engine:     eng,
		fsWatcher:  fsWatcher,
		resultChan: make(chan types.CleanResult, 10),
		stopChan:   make(chan struct{}),
	}, nil
}

// AddDirectory adds a directory to watch.
func (w *Watcher) AddDirectory(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("error accessing directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	if err := w.fsWatcher.Add(dir); err != nil {
		return fmt.Errorf("failed to add directory %s to watcher: %w", dir, err)
	}

	w.mutex.Lock()
	found := false
	for _, existing := range w.directories {
		if existing == dir {
			found = true
			break
		}
	}
	if !found {
		w.directories = append(w.directories, dir)
	}
	w.mutex.Unlock()

	log.LogWithFields(log.F("directory", dir)).Info("Watching directory")
	return nil
}

// Directories returns the list of watched directories.
func (w *Watcher) Directories() []string {
	w.mutex.RLock()
	defer w.mutex.RUnlock()
	dirs := make([]string, len(w.directories))
	copy(dirs, w.directories)
	return dirs
}

// Results returns the channel delivering the outcome of each evaluated file.
func (w *Watcher) Results() <-chan types.CleanResult {
	return w.resultChan
}

// Running reports whether the event loop is active.
func (w *Watcher) Running() bool {
	w.mutex.RLock()
	defer w.mutex.RUnlock()
	return w.running
}

// Start begins the file watching loop. A stopped watcher cannot be
// restarted; its fsnotify watcher is released on Stop.
func (w *Watcher) Start() error {
	w.mutex.Lock()
	if w.closed {
		w.mutex.Unlock()
		return fmt.Errorf("watcher already stopped")
	}
	if w.running {
		w.mutex.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	w.stopChan = make(chan struct{})
	w.mutex.Unlock()

	go w.loop()
	return nil
}

func (w *Watcher) loop() {
	log.Debug("watcher event loop started")

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.handleEvent(event.Name)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.Error("watcher error: %v", err)

		case <-w.stopChan:
			log.Debug("watcher event loop stopped")
			return
		}
	}
}

// handleEvent evaluates a newly appeared file after the settle delay.
func (w *Watcher) handleEvent(path string) {
	time.Sleep(settleDelay)

	info, err := os.Stat(path)
	if err != nil {
		// The file may have vanished again; nothing to clean up.
		log.Debug("ignoring %s: %v", path, err)
		return
	}
	if info.IsDir() {
		return
	}

	result, err := w.engine.CleanFile(path)
	if err != nil {
		log.Error("failed to evaluate %s: %v", path, err)
		return
	}

	if result.Action != "" {
		log.LogWithFields(
			log.F("file", filepath.Base(path)),
			log.F("rule", result.RuleName),
			log.F("action", result.Action),
		).Info("Evaluated new file")
	}

	select {
	case w.resultChan <- result:
	default:
		// Drop results nobody is reading so the loop never blocks.
	}
}

// Stop halts the watching loop and releases the fsnotify watcher.
func (w *Watcher) Stop() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	if w.running {
		w.running = false
		close(w.stopChan)
	}
	return w.fsWatcher.Close()
}
