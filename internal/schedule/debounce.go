package schedule

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of calls into one trailing-edge call.
// At most one timer is outstanding; every Trigger cancels it and
// starts a new wait.
type Debouncer struct {
	mu      sync.Mutex
	sched   Scheduler
	wait    time.Duration
	timer   Timer
	gen     uint64
	pending func()
}

// NewDebouncer returns a Debouncer that runs the latest triggered
// function once wait has passed without another Trigger.
func NewDebouncer(sched Scheduler, wait time.Duration) *Debouncer {
	if sched == nil {
		sched = Real{}
	}
	return &Debouncer{sched: sched, wait: wait}
}

// Trigger replaces the pending function with f and restarts the wait.
func (d *Debouncer) Trigger(f func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()
	gen := d.gen
	d.pending = f
	d.timer = d.sched.AfterFunc(d.wait, func() { d.fire(gen) })
}

// Flush runs the pending function now, on the caller's goroutine.
// It reports whether anything was pending.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	f := d.pending
	d.stopLocked()
	d.mu.Unlock()

	if f == nil {
		return false
	}
	f()
	return true
}

// Cancel drops the pending function without running it.
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	had := d.pending != nil
	d.stopLocked()
	return had
}

// Pending reports whether a call is waiting to run.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

// fire runs the pending function if gen is still current. A timer that
// fired after being superseded finds a newer generation and does nothing.
func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || d.pending == nil {
		d.mu.Unlock()
		return
	}
	f := d.pending
	d.pending = nil
	d.timer = nil
	d.mu.Unlock()

	f()
}

// stopLocked must be called with d.mu held.
func (d *Debouncer) stopLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = nil
	d.gen++
}
