package scrolly

import (
	"errors"
	"testing"

	"github.com/vanderheijden86/codewalk/pkg/step"
)

func newStaticSteps() []*StaticController {
	steps := threeSteps()
	inputs := make([]StaticInput, len(steps))
	for i, s := range steps {
		inputs[i] = StaticInput{EditorStep: s, PreviewStep: "preview"}
	}
	return StaticSteps(inputs, nil, CodeConfig{LineNumbers: true})
}

func TestStaticActivateAndReset(t *testing.T) {
	steps := threeSteps()
	c := NewStaticController(steps[1], "preview-b", &PresetConfig{Template: "node"}, CodeConfig{})

	if id := c.State().SelectedID; id != "" {
		t.Fatalf("expected unfocused initial state, got %q", id)
	}

	if err := c.Activate(step.FocusRequest{FileName: "util.ts", Focus: "1", ID: "1-0"}); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	s := c.State()
	if s.SelectedID != "1-0" {
		t.Errorf("expected selected 1-0, got %q", s.SelectedID)
	}
	if s.EditorStep.Active != "util.ts" {
		t.Errorf("expected util.ts active, got %q", s.EditorStep.Active)
	}
	if s.PreviewStep != "preview-b" || s.PresetConfig == nil {
		t.Error("activation dropped preview or preset")
	}

	c.Reset()
	s = c.State()
	if s.SelectedID != "" {
		t.Errorf("expected selection cleared, got %q", s.SelectedID)
	}
	if !s.EditorStep.Equal(steps[1]) {
		t.Errorf("expected original step after reset, got %+v", s.EditorStep)
	}
}

func TestStaticActivationsAccumulateOnCurrentStep(t *testing.T) {
	steps := threeSteps()
	c := NewStaticController(steps[1], "", nil, CodeConfig{})

	c.Activate(step.FocusRequest{FileName: "util.ts", Focus: "1", ID: "a"})
	c.Activate(step.FocusRequest{FileName: "main.ts", Focus: "1:1", ID: "b"})

	s := c.State()
	if s.SelectedID != "b" {
		t.Errorf("expected b to own focus, got %q", s.SelectedID)
	}
	if focusOf(t, s.EditorStep, "util.ts") != "1" {
		t.Error("focus parked on util.ts by the earlier link was lost")
	}
}

func TestStaticResetIf(t *testing.T) {
	c := NewStaticController(threeSteps()[1], "", nil, CodeConfig{})

	c.Activate(step.FocusRequest{Focus: "1", ID: "a"})
	c.Activate(step.FocusRequest{Focus: "1", ID: "b"})

	if c.ResetIf("a") {
		t.Error("stale link reset the newer focus")
	}
	if !c.Selected("b") {
		t.Error("expected b still selected")
	}
	if !c.ResetIf("b") {
		t.Error("owner should be able to reset")
	}
	if c.Selected("b") {
		t.Error("expected no selection after reset")
	}
}

func TestStaticActivateRequiresID(t *testing.T) {
	steps := threeSteps()
	c := NewStaticController(steps[1], "", nil, CodeConfig{})

	err := c.Activate(step.FocusRequest{FileName: "util.ts", Focus: "1"})
	if !errors.Is(err, ErrMissingID) {
		t.Fatalf("expected ErrMissingID, got %v", err)
	}
	s := c.State()
	if s.SelectedID != "" || !s.EditorStep.Equal(steps[1]) {
		t.Errorf("rejected request changed the state: %+v", s)
	}
}

func TestStaticIndependence(t *testing.T) {
	controllers := newStaticSteps()
	before := make([]StaticStepState, len(controllers))
	for i, c := range controllers {
		before[i] = c.State()
	}

	controllers[2].Activate(step.FocusRequest{FileName: "main.ts", Focus: "10-12", ID: "2-0"})

	for i := 0; i < 2; i++ {
		s := controllers[i].State()
		if s.SelectedID != before[i].SelectedID {
			t.Errorf("step %d selection changed to %q", i, s.SelectedID)
		}
		if !s.EditorStep.Equal(before[i].EditorStep) {
			t.Errorf("step %d editor step changed", i)
		}
	}
	if controllers[2].State().SelectedID != "2-0" {
		t.Error("activated step lost its selection")
	}
}

func TestStaticStateIsACopy(t *testing.T) {
	c := NewStaticController(threeSteps()[0], "", nil, CodeConfig{})
	s := c.State()
	s.EditorStep.Files[0].Code = "mutated"
	if c.State().EditorStep.Files[0].Code == "mutated" {
		t.Error("State() exposes internal storage")
	}
}
