// Package watcher wakes the Tick Engine's reload cadence early when the
// hooks file changes, cutting worst-case hook-to-UI latency from one reload
// period to near-zero. It is an optimization only: the reload cadence's own
// poll of the hooks file remains the correctness fallback if the watch
// cannot be established (missing inotify support, file not yet created).
package watcher

import (
	"time"

	"github.com/fsnotify/fsnotify"
)

// HooksWatcher wraps an fsnotify watcher on one directory, debounced so a
// burst of rapid writes collapses into a single wakeup. Events are not
// filtered by file name: a write to or creation of any file in that
// directory counts.
type HooksWatcher struct {
	watcher  *fsnotify.Watcher
	wake     chan struct{}
	debounce time.Duration
}

// NewHooksWatcher starts watching dir, the hooks file's parent directory
// (fsnotify cannot watch a not-yet-existing file directly); the returned
// watcher's Wake channel receives a value shortly after any file in dir is
// written to or created.
func NewHooksWatcher(dir string, debounce time.Duration) (*HooksWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, err
	}
	if debounce <= 0 {
		debounce = 50 * time.Millisecond
	}

	hw := &HooksWatcher{watcher: w, wake: make(chan struct{}, 1), debounce: debounce}
	go hw.run()
	return hw, nil
}

func (hw *HooksWatcher) run() {
	var timer *time.Timer
	for {
		select {
		case ev, ok := <-hw.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(hw.debounce, hw.signal)
		case _, ok := <-hw.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

func (hw *HooksWatcher) signal() {
	select {
	case hw.wake <- struct{}{}:
	default:
	}
}

// Wake fires, debounced, whenever a file in the watched directory was
// written to or created.
func (hw *HooksWatcher) Wake() <-chan struct{} {
	return hw.wake
}

// Close stops the underlying fsnotify watcher.
func (hw *HooksWatcher) Close() error {
	return hw.watcher.Close()
}
