package watch

import (
	"sync"
	"time"
)

// debouncer collapses a burst of triggers into one fire after a quiet window.
// Every trigger restarts the window.
type debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	fire  func()
	timer *time.Timer
}

func newDebouncer(delay time.Duration, fire func()) *debouncer {
	return &debouncer{delay: delay, fire: fire}
}

func (d *debouncer) trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fire)
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// enqueue requests a restage without blocking. While one request is already
// queued, further requests coalesce into it.
func enqueue(requests chan<- struct{}) {
	select {
	case requests <- struct{}{}:
	default:
	}
}
