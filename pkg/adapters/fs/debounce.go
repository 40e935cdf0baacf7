package fs

import (
	"sync"
	"time"
)

// debouncer coalesces bursts of calls per key into one call after delay.
type debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	timers  map[string]*time.Timer
	stopped bool
	wg      sync.WaitGroup
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{delay: delay, timers: make(map[string]*time.Timer)}
}

// add schedules fn for key, replacing any call still pending for it.
func (d *debouncer) add(key string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if t, ok := d.timers[key]; ok && t.Stop() {
		d.wg.Done()
	}

	d.wg.Add(1)
	var t *time.Timer
	t = time.AfterFunc(d.delay, func() {
		defer d.wg.Done()
		d.mu.Lock()
		if d.timers[key] == t {
			delete(d.timers, key)
		}
		stopped := d.stopped
		d.mu.Unlock()
		if !stopped {
			fn()
		}
	})
	d.timers[key] = t
}

// stopAndWait drops pending calls and waits for running ones, up to timeout.
// It reports whether everything finished in time.
func (d *debouncer) stopAndWait(timeout time.Duration) bool {
	d.mu.Lock()
	d.stopped = true
	for key, t := range d.timers {
		if t.Stop() {
			d.wg.Done()
		}
		delete(d.timers, key)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}
