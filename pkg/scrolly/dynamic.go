package scrolly

import (
	"sync"

	"github.com/vanderheijden86/codewalk/pkg/debug"
	"github.com/vanderheijden86/codewalk/pkg/step"
)

// DynamicState is what the shared view shows right now.
//
// Step is always editorSteps[StepIndex], optionally with one focus override from
// a tab click or link activation applied on top. Seq increases by one with
// every applied transition.
type DynamicState struct {
	StepIndex int             `json:"step_index"`
	Step      step.EditorStep `json:"step"`
	Seq       uint64          `json:"seq"`
}

// DynamicOption configures a DynamicController.
type DynamicOption func(*DynamicController)

// WithStart sets the initial step index (default 0).
func WithStart(index int) DynamicOption {
	return func(c *DynamicController) {
		c.start = index
	}
}

// WithObserver registers a callback invoked with the new state after every
// transition. It runs while the controller is locked and must not call back
// into the controller.
func WithObserver(fn func(DynamicState)) DynamicOption {
	return func(c *DynamicController) {
		c.observers = append(c.observers, fn)
	}
}

// DynamicController is the single source of truth for the dynamic view. It is
// the only writer of its DynamicState; every entry point replaces the state in
// one critical section so no caller can observe half a transition.
type DynamicController struct {
	mu        sync.Mutex
	steps     []step.EditorStep
	state     DynamicState
	start     int
	observers []func(DynamicState)
}

// NewDynamicController creates the shared controller over the canonical
// editor steps. The steps are copied; the caller's slice is never touched.
func NewDynamicController(editorSteps []step.EditorStep, opts ...DynamicOption) (*DynamicController, error) {
	c := &DynamicController{}
	for _, opt := range opts {
		opt(c)
	}

	c.steps = copySteps(editorSteps)
	if err := checkIndex("start", c.start, len(c.steps)); err != nil {
		return nil, err
	}
	c.state = DynamicState{StepIndex: c.start, Step: c.steps[c.start].Clone()}
	return c, nil
}

// State returns a consistent snapshot of the current state.
func (c *DynamicController) State() DynamicState {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.state
	s.Step = s.Step.Clone()
	return s
}

// Len returns the number of editor steps.
func (c *DynamicController) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.steps)
}

// Steps returns a copy of the canonical editor steps.
func (c *DynamicController) Steps() []step.EditorStep {
	c.mu.Lock()
	defer c.mu.Unlock()
	return copySteps(c.steps)
}

// OnStepChange jumps to index and shows the canonical step there, dropping any
// tab or link override. Driven by step markers and scroll triggers.
func (c *DynamicController) OnStepChange(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := checkIndex("step change", index, len(c.steps)); err != nil {
		return err
	}
	c.set(index, c.steps[index].Clone())
	debug.Log("dynamic: step change -> %d", index)
	return nil
}

// OnTabClick switches the active file of the current step, clearing its focus
// so the newly shown file starts unhighlighted. The step index is unchanged.
func (c *DynamicController) OnTabClick(fileName string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := checkIndex("tab click", c.state.StepIndex, len(c.steps)); err != nil {
		return err
	}
	c.set(c.state.StepIndex, step.UpdateStep(c.state.Step, fileName, ""))
	debug.Log("dynamic: tab click %q at step %d", fileName, c.state.StepIndex)
	return nil
}

// OnLinkActivation jumps to index and applies the requested focus on the
// canonical step there, as one transition.
func (c *DynamicController) OnLinkActivation(index int, fileName, focus string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := checkIndex("link activation", index, len(c.steps)); err != nil {
		return err
	}
	c.set(index, step.UpdateStep(c.steps[index], fileName, focus))
	debug.Log("dynamic: link activation step=%d file=%q focus=%q", index, fileName, focus)
	return nil
}

// Activate is OnLinkActivation driven by a FocusRequest.
func (c *DynamicController) Activate(index int, req step.FocusRequest) error {
	return c.OnLinkActivation(index, req.FileName, req.Focus)
}

// Advance moves to the next step, wrapping after the last one. The next index
// is computed from the live state when the tick is applied, so autoplay
// continues from wherever the user last navigated to.
func (c *DynamicController) Advance() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.steps) == 0 {
		return c.state.StepIndex
	}
	next := (c.state.StepIndex + 1) % len(c.steps)
	c.set(next, c.steps[next].Clone())
	debug.Log("dynamic: autoplay -> %d", next)
	return next
}

// SetSteps replaces the canonical editor steps, e.g. after the walkthrough
// file was edited. The current index is kept when still valid, otherwise the
// view returns to the first step. Any override is dropped.
func (c *DynamicController) SetSteps(editorSteps []step.EditorStep) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(editorSteps) == 0 {
		return &ConfigError{Op: "set steps", Err: ErrNoSteps}
	}
	c.steps = copySteps(editorSteps)
	index := c.state.StepIndex
	if index >= len(c.steps) {
		index = 0
	}
	c.set(index, c.steps[index].Clone())
	debug.Log("dynamic: steps replaced (%d steps), index %d", len(c.steps), index)
	return nil
}

// set replaces the state. Callers hold c.mu.
func (c *DynamicController) set(index int, s step.EditorStep) {
	c.state = DynamicState{StepIndex: index, Step: s, Seq: c.state.Seq + 1}
	for _, fn := range c.observers {
		snapshot := c.state
		snapshot.Step = snapshot.Step.Clone()
		fn(snapshot)
	}
}

func copySteps(in []step.EditorStep) []step.EditorStep {
	out := make([]step.EditorStep, len(in))
	for i, s := range in {
		out[i] = s.Clone()
	}
	return out
}
