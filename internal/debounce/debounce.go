// Package debounce provides an explicit, delay-parameterized debouncer
// decoupled from any render or request cycle.
package debounce

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of Trigger calls into a single invocation
// of fn, fired after the configured quiet period. Safe for concurrent
// use.
type Debouncer struct {
	delay time.Duration
	fn    func()

	mu    sync.Mutex
	timer *time.Timer
}

func New(delay time.Duration, fn func()) *Debouncer {
	return &Debouncer{delay: delay, fn: fn}
}

// Trigger schedules fn after the quiet period, replacing any pending
// schedule. fn runs on a timer goroutine.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fn)
}

// Stop cancels any pending invocation.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
