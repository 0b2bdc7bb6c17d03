// Package search coalesces rapid query edits into one backend call and
// guarantees that only the newest call's result is delivered.
package search

import (
	"sync"
	"time"
)

// DefaultDelay is the pause after the last edit before a search fires.
const DefaultDelay = 300 * time.Millisecond

// Timer is the part of *time.Timer the debouncer uses.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d. time.AfterFunc satisfies it once adapted.
type AfterFunc func(d time.Duration, f func()) Timer

func systemAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Debouncer runs the most recently triggered function once no new trigger
// arrived for the delay. It is trailing-edge only: the first trigger of a
// burst never fires immediately.
type Debouncer struct {
	mu        sync.Mutex
	delay     time.Duration
	afterFunc AfterFunc
	timer     Timer
	stopped   bool
}

// NewDebouncer returns a Debouncer; a non-positive delay uses DefaultDelay.
func NewDebouncer(delay time.Duration) *Debouncer {
	return NewDebouncerWithClock(delay, systemAfterFunc)
}

// NewDebouncerWithClock lets tests drive time.
func NewDebouncerWithClock(delay time.Duration, after AfterFunc) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	if after == nil {
		after = systemAfterFunc
	}
	return &Debouncer{delay: delay, afterFunc: after}
}

// Trigger (re)starts the countdown for fn, discarding any pending function.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	var timer Timer
	timer = d.afterFunc(d.delay, func() {
		d.mu.Lock()
		current := d.timer == timer && !d.stopped
		if current {
			d.timer = nil
		}
		d.mu.Unlock()
		if current {
			fn()
		}
	})
	d.timer = timer
}

// Flush cancels the countdown and reports whether something was pending.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer == nil {
		return false
	}
	d.timer.Stop()
	d.timer = nil
	return true
}

// Stop cancels any pending function and ignores later triggers.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Delay is the configured quiet period.
func (d *Debouncer) Delay() time.Duration {
	return d.delay
}
