// Package watch provides an fsnotify-based implementation of the
// document watcher port.
package watch

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/papyr/internal/core/ports/driven"
	"github.com/custodia-labs/papyr/internal/logger"
)

// debounceWindow coalesces bursts of filesystem events into a single
// change notification. Editors commonly write a file several times in
// quick succession when saving.
const debounceWindow = 250 * time.Millisecond

// Ensure Watcher implements the interface.
var _ driven.DocumentWatcher = (*Watcher)(nil)

// Watcher observes document files for external changes using fsnotify.
type Watcher struct{}

// NewWatcher creates a document watcher.
func NewWatcher() *Watcher {
	return &Watcher{}
}

// Watch invokes onChange whenever the file at path is written, created
// or renamed. The parent directory is watched rather than the file
// itself so replace-by-rename saves are seen. The returned cancel stops
// watching and releases the underlying notifier.
func (w *Watcher) Watch(path string, onChange func()) (func(), error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving watch path: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}

	done := make(chan struct{})
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			fw.Close()
		})
	}

	go w.run(fw, abs, onChange, done)
	return cancel, nil
}

func (w *Watcher) run(fw *fsnotify.Watcher, path string, onChange func(), done <-chan struct{}) {
	var mu sync.Mutex
	var pending *time.Timer

	fire := func() {
		mu.Lock()
		if pending != nil {
			pending.Stop()
		}
		pending = time.AfterFunc(debounceWindow, func() {
			select {
			case <-done:
			default:
				onChange()
			}
		})
		mu.Unlock()
	}

	for {
		select {
		case <-done:
			mu.Lock()
			if pending != nil {
				pending.Stop()
			}
			mu.Unlock()
			return
		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			if event.Name != path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				fire()
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			logger.Warn("watching %s: %v", path, err)
		}
	}
}
