package scrolly

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/vanderheijden86/codewalk/pkg/step"
)

// manualTicker hands the test control over every tick.
type manualTicker struct {
	ch      chan time.Time
	created atomic.Int32
	stopped atomic.Int32
}

func newManualTicker() *manualTicker {
	return &manualTicker{ch: make(chan time.Time)}
}

func (m *manualTicker) factory(time.Duration) (<-chan time.Time, func()) {
	m.created.Add(1)
	return m.ch, func() { m.stopped.Add(1) }
}

// fire delivers one tick and waits until the tick function returned.
func (m *manualTicker) fire(t *testing.T, fired <-chan struct{}) {
	t.Helper()
	select {
	case m.ch <- time.Now():
	case <-time.After(time.Second):
		t.Fatal("autoplay did not accept tick")
	}
	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("tick function did not run")
	}
}

func fourSteps() []step.EditorStep {
	out := make([]step.EditorStep, 4)
	for i := range out {
		out[i] = step.New("", step.File{Name: "main.go", Code: string(rune('a' + i))})
	}
	return out
}

func newAutoplayHarness(t *testing.T, c *DynamicController) (*Autoplay, *manualTicker, chan struct{}) {
	t.Helper()
	ticker := newManualTicker()
	fired := make(chan struct{})
	a := NewAutoplay(time.Second, func() {
		c.Advance()
		fired <- struct{}{}
	}, WithTicker(ticker.factory))
	return a, ticker, fired
}

func TestAutoplayVisibleIndexFollowsTicks(t *testing.T) {
	c, _ := NewDynamicController(fourSteps())
	a, ticker, fired := newAutoplayHarness(t, c)

	if err := a.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer a.Stop()

	for k := 1; k <= 10; k++ {
		ticker.fire(t, fired)
		if got := c.State().StepIndex; got != k%4 {
			t.Fatalf("after %d ticks expected index %d, got %d", k, k%4, got)
		}
	}
}

func TestAutoplayNoTickAfterStop(t *testing.T) {
	c, _ := NewDynamicController(fourSteps())
	a, ticker, fired := newAutoplayHarness(t, c)

	_ = a.Start(context.Background())
	ticker.fire(t, fired)
	a.Stop()

	before := c.State()
	select {
	case ticker.ch <- time.Now():
		t.Fatal("tick accepted after Stop")
	case <-time.After(50 * time.Millisecond):
	}
	if after := c.State(); after.Seq != before.Seq {
		t.Errorf("state changed after Stop: %+v -> %+v", before, after)
	}
	if ticker.stopped.Load() != 1 {
		t.Errorf("expected underlying ticker stopped once, got %d", ticker.stopped.Load())
	}
}

func TestAutoplayDoubleStartAndStop(t *testing.T) {
	c, _ := NewDynamicController(fourSteps())
	a, ticker, _ := newAutoplayHarness(t, c)

	if err := a.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := a.Start(context.Background()); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("expected ErrAlreadyStarted, got %v", err)
	}
	if n := ticker.created.Load(); n != 1 {
		t.Errorf("expected one ticker, got %d", n)
	}

	a.Stop()
	a.Stop()
	if a.Running() {
		t.Error("expected stopped")
	}
}

func TestAutoplayRestart(t *testing.T) {
	c, _ := NewDynamicController(fourSteps())
	a, ticker, fired := newAutoplayHarness(t, c)

	_ = a.Start(context.Background())
	ticker.fire(t, fired)
	a.Stop()

	_ = c.OnStepChange(3)

	if err := a.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer a.Stop()
	ticker.fire(t, fired)
	if got := c.State().StepIndex; got != 0 {
		t.Errorf("expected autoplay to continue from the externally set index, got %d", got)
	}
}

func TestAutoplayParentContextCancel(t *testing.T) {
	c, _ := NewDynamicController(fourSteps())
	a, _, _ := newAutoplayHarness(t, c)

	ctx, cancel := context.WithCancel(context.Background())
	_ = a.Start(ctx)
	cancel()

	deadline := time.Now().Add(time.Second)
	for a.Running() {
		if time.Now().After(deadline) {
			t.Fatal("autoplay still running after context cancel")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if err := a.Start(context.Background()); err != nil {
		t.Errorf("expected restart after context cancel, got %v", err)
	}
	a.Stop()
}

func TestAutoplayToggle(t *testing.T) {
	c, _ := NewDynamicController(fourSteps())
	a, _, _ := newAutoplayHarness(t, c)

	if !a.Toggle(context.Background()) {
		t.Error("expected running after first toggle")
	}
	if a.Toggle(context.Background()) {
		t.Error("expected stopped after second toggle")
	}
}

func TestAutoplayDefaultInterval(t *testing.T) {
	a := NewAutoplay(0, func() {})
	if a.Interval() != DefaultInterval {
		t.Errorf("expected %v, got %v", DefaultInterval, a.Interval())
	}
}

func TestAutoplayIndexIsTicksModCount(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 8).Draw(rt, "steps")
		start := rapid.IntRange(0, n-1).Draw(rt, "start")
		k := rapid.IntRange(0, 30).Draw(rt, "ticks")

		steps := make([]step.EditorStep, n)
		for i := range steps {
			steps[i] = step.New("", step.File{Name: "f"})
		}
		c, err := NewDynamicController(steps, WithStart(start))
		if err != nil {
			rt.Fatal(err)
		}
		for i := 0; i < k; i++ {
			c.Advance()
		}
		if got, want := c.State().StepIndex, (start+k)%n; got != want {
			rt.Fatalf("expected %d, got %d", want, got)
		}
	})
}
