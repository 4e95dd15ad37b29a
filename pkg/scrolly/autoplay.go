package scrolly

import (
	"context"
	"sync"
	"time"

	"github.com/vanderheijden86/codewalk/pkg/debug"
)

// DefaultInterval is the default time between autoplay ticks.
const DefaultInterval = 3000 * time.Millisecond

// TickerFunc creates the tick source for an Autoplay. It returns the tick
// channel and a stop function.
type TickerFunc func(d time.Duration) (<-chan time.Time, func())

func timeTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

// AutoplayOption configures an Autoplay.
type AutoplayOption func(*Autoplay)

// WithTicker replaces the wall-clock ticker, mainly for tests.
func WithTicker(fn TickerFunc) AutoplayOption {
	return func(a *Autoplay) {
		a.newTicker = fn
	}
}

// Autoplay fires tick at a fixed interval until stopped.
//
// The tick carries no counter of its own. Callers pass a function that reads
// the authoritative state when it runs, typically DynamicController.Advance or
// a message send into the UI loop, so the timer cannot drift from the view.
type Autoplay struct {
	interval  time.Duration
	tick      func()
	newTicker TickerFunc

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

// NewAutoplay creates a stopped autoplay timer. A non-positive interval uses
// DefaultInterval.
func NewAutoplay(interval time.Duration, tick func(), opts ...AutoplayOption) *Autoplay {
	if interval <= 0 {
		interval = DefaultInterval
	}
	a := &Autoplay{
		interval:  interval,
		tick:      tick,
		newTicker: timeTicker,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Interval returns the tick interval.
func (a *Autoplay) Interval() time.Duration {
	return a.interval
}

// Running reports whether the timer is active.
func (a *Autoplay) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.running
}

// Start launches the timer. Only one timer runs per Autoplay: starting again
// while running returns ErrAlreadyStarted. Cancelling ctx stops the timer as
// Stop would.
func (a *Autoplay) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.running {
		return ErrAlreadyStarted
	}

	ctx, cancel := context.WithCancel(ctx)
	ticks, stopTicker := a.newTicker(a.interval)
	done := make(chan struct{})

	a.cancel = cancel
	a.done = done
	a.running = true

	go a.loop(ctx, ticks, stopTicker, done)
	debug.Log("autoplay: started (interval %v)", a.interval)
	return nil
}

func (a *Autoplay) loop(ctx context.Context, ticks <-chan time.Time, stopTicker func(), done chan struct{}) {
	defer close(done)
	defer stopTicker()
	defer a.release(done)

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-ticks:
			if !ok {
				return
			}
			// A tick and a cancel may be ready together; cancel wins.
			if ctx.Err() != nil {
				return
			}
			a.tick()
		}
	}
}

// release marks the timer stopped when the loop ends on its own, e.g. because
// the parent context was cancelled. Stop clears done first, so a loop ended by
// Stop leaves the state alone.
func (a *Autoplay) release(done chan struct{}) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.done == done {
		a.cancel()
		a.running = false
		a.cancel = nil
		a.done = nil
	}
}

// Stop cancels the timer and waits until its goroutine has exited, so no tick
// fires after Stop returns. Stopping a stopped timer is a no-op.
//
// Stop must not be called from inside the tick function.
func (a *Autoplay) Stop() {
	a.mu.Lock()
	if !a.running {
		a.mu.Unlock()
		return
	}
	cancel, done := a.cancel, a.done
	a.running = false
	a.cancel = nil
	a.done = nil
	a.mu.Unlock()

	cancel()
	<-done
	debug.Log("autoplay: stopped")
}

// Toggle starts a stopped timer or stops a running one and reports whether
// it is running afterwards.
func (a *Autoplay) Toggle(ctx context.Context) bool {
	if a.Running() {
		a.Stop()
		return false
	}
	return a.Start(ctx) == nil
}
