// Package watch implements a recursive filesystem watcher feeding the
// engine's dependency tracker in watch mode. It coalesces bursts of events
// within a short window, built on fsnotify's single cross-platform event
// stream rather than per-OS backends.
package watch

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
)

const (
	// coalescingWindow is the time window for event coalescing.
	coalescingWindow = 10 * time.Millisecond
	// coalescingMaximumPendingPaths is the maximum number of paths allowed
	// in a single coalesced batch before it is flushed early.
	coalescingMaximumPendingPaths = 10 * 1024
)

// ErrWatchTerminated indicates that a watcher has been terminated.
var ErrWatchTerminated = errors.New("watch terminated")

// Watcher recursively watches a root directory, delivering coalesced
// batches of changed paths. It is not safe for concurrent use besides
// draining Events/Errors and calling Terminate.
type Watcher struct {
	watcher *fsnotify.Watcher
	events  chan []string
	errors  chan error

	terminateOnce sync.Once
	done          chan struct{}
}

// New starts watching root (and every directory beneath it at the time of
// the call, plus any directory later created under it) for changes.
func New(root string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "create fsnotify watcher")
	}
	if err := addRecursive(fsw, root); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{
		watcher: fsw,
		events:  make(chan []string),
		errors:  make(chan error, 1),
		done:    make(chan struct{}),
	}
	go w.run()
	return w, nil
}

func addRecursive(fsw *fsnotify.Watcher, root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if err := fsw.Add(path); err != nil {
				return errors.Wrapf(err, "watch %s", path)
			}
		}
		return nil
	})
}

// Events returns a channel delivering coalesced batches of changed paths.
func (w *Watcher) Events() <-chan []string {
	return w.events
}

// Errors returns a channel populated if a watch error occurs. Once
// populated, the watcher should be terminated; if Terminate is called
// before any other error occurs, it is populated with ErrWatchTerminated.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Terminate stops watching and releases the underlying fsnotify resources.
func (w *Watcher) Terminate() error {
	var err error
	w.terminateOnce.Do(func() {
		close(w.done)
		err = w.watcher.Close()
	})
	return err
}

func (w *Watcher) run() {
	pending := make(map[string]bool)
	var timer *time.Timer
	var timerC <-chan time.Time

	flush := func() {
		if len(pending) == 0 {
			return
		}
		batch := make([]string, 0, len(pending))
		for path := range pending {
			batch = append(batch, path)
		}
		pending = make(map[string]bool)
		select {
		case w.events <- batch:
		case <-w.done:
		}
	}

	for {
		select {
		case <-w.done:
			w.errors <- ErrWatchTerminated
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					w.watcher.Add(ev.Name)
				}
			}
			pending[ev.Name] = true
			if len(pending) >= coalescingMaximumPendingPaths {
				if timer != nil {
					timer.Stop()
					timerC = nil
				}
				flush()
				continue
			}
			if timer == nil {
				timer = time.NewTimer(coalescingWindow)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					<-timer.C
				}
				timer.Reset(coalescingWindow)
			}
		case <-timerC:
			timer = nil
			timerC = nil
			flush()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.errors <- err
			return
		}
	}
}
