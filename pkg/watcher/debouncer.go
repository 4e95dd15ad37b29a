package watcher

import (
	"sync"
	"time"
)

// DefaultDebounceDuration is the quiet period used when none is configured.
// Editors often save in several writes; one reload per burst is enough.
const DefaultDebounceDuration = 200 * time.Millisecond

// Debouncer coalesces bursts of triggers into a single call that runs once
// the triggers have been quiet for the configured duration.
type Debouncer struct {
	duration time.Duration

	mu    sync.Mutex
	timer *time.Timer
	gen   uint64
}

// NewDebouncer creates a debouncer. A non-positive duration selects
// DefaultDebounceDuration.
func NewDebouncer(d time.Duration) *Debouncer {
	if d <= 0 {
		d = DefaultDebounceDuration
	}
	return &Debouncer{duration: d}
}

// Trigger schedules fn, replacing any call still waiting.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(d.duration, func() {
		d.mu.Lock()
		current := gen == d.gen
		if current {
			d.timer = nil
		}
		d.mu.Unlock()
		if current {
			fn()
		}
	})
}

// Cancel drops the pending call, if any.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
}

// Duration returns the quiet period.
func (d *Debouncer) Duration() time.Duration {
	return d.duration
}
