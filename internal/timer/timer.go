// Package timer holds the quiet-period timers that coordinate tile loading,
// click detection and scroll settling. Timers are polled from the UI loop
// against an injected Clock instead of firing callbacks on other goroutines.
package timer

import (
	"sync"
	"time"
)

// Clock reports the current time.
type Clock interface {
	Now() time.Time
}

// System is the wall clock.
type System struct{}

// Now returns time.Now.
func (System) Now() time.Time { return time.Now() }

// Fake is a manually advanced clock for tests and replays.
type Fake struct {
	mu  sync.Mutex
	now time.Time
}

// NewFake returns a Fake clock starting at start.
func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

// Now returns the fake time.
func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Advance moves the clock forward by d.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

// Debouncer fires once after a quiet period. Every Reset pushes the deadline
// out again; there is never more than one pending deadline.
type Debouncer struct {
	delay    time.Duration
	deadline time.Time
	armed    bool
}

// NewDebouncer creates a Debouncer with the given quiet period.
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Delay returns the configured quiet period.
func (d *Debouncer) Delay() time.Duration { return d.delay }

// Reset (re)starts the quiet period at now.
func (d *Debouncer) Reset(now time.Time) {
	d.deadline = now.Add(d.delay)
	d.armed = true
}

// Stop cancels a pending deadline.
func (d *Debouncer) Stop() {
	d.armed = false
}

// Pending reports whether a deadline is armed.
func (d *Debouncer) Pending() bool { return d.armed }

// Fire reports true exactly once when the deadline has been reached.
func (d *Debouncer) Fire(now time.Time) bool {
	if !d.armed || now.Before(d.deadline) {
		return false
	}
	d.armed = false
	return true
}
