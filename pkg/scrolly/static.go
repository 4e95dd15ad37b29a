package scrolly

import (
	"github.com/vanderheijden86/codewalk/pkg/debug"
	"github.com/vanderheijden86/codewalk/pkg/step"
)

// PresetConfig describes a live preview fed with the current step's files.
// It is opaque to the controllers.
type PresetConfig struct {
	Template string            `json:"template,omitempty" yaml:"template,omitempty"`
	Options  map[string]string `json:"options,omitempty" yaml:"options,omitempty"`
}

// CodeConfig carries code panel settings through to the renderer.
type CodeConfig struct {
	LineNumbers    bool `json:"line_numbers,omitempty" yaml:"line_numbers,omitempty"`
	ShowCopyButton bool `json:"show_copy_button,omitempty" yaml:"show_copy_button,omitempty"`
	Rows           int  `json:"rows,omitempty" yaml:"rows,omitempty"`
}

// StaticStepState is the full state of one statically rendered step.
// SelectedID is empty while no link owns the focus.
type StaticStepState struct {
	EditorStep   step.EditorStep `json:"editor_step"`
	PreviewStep  string          `json:"preview_step,omitempty"`
	PresetConfig *PresetConfig   `json:"preset_config,omitempty"`
	CodeConfig   CodeConfig      `json:"code_config"`
	SelectedID   string          `json:"selected_id,omitempty"`
}

// StaticController owns the local state of a single step. Controllers of
// different steps share nothing, so activating a link in one step never
// changes what another step shows.
type StaticController struct {
	initial StaticStepState
	state   StaticStepState
}

// NewStaticController creates the controller for one step from its original
// editor step and preview descriptor.
func NewStaticController(editorStep step.EditorStep, previewStep string, preset *PresetConfig, code CodeConfig) *StaticController {
	initial := StaticStepState{
		EditorStep:   editorStep.Clone(),
		PreviewStep:  previewStep,
		PresetConfig: preset,
		CodeConfig:   code,
	}
	return &StaticController{initial: initial, state: initial}
}

// State returns a copy of the current state.
func (c *StaticController) State() StaticStepState {
	s := c.state
	s.EditorStep = s.EditorStep.Clone()
	return s
}

// Selected reports whether the link with the given id owns the focus.
func (c *StaticController) Selected(id string) bool {
	return id != "" && c.state.SelectedID == id
}

// Activate applies a focus request issued by a link inside this step. The
// request must carry the link's id, which later releases it through ResetIf;
// a request without one is rejected and the state is left as it was.
func (c *StaticController) Activate(req step.FocusRequest) error {
	if req.ID == "" {
		return ErrMissingID
	}
	next := c.state
	next.EditorStep = step.Apply(c.state.EditorStep, req)
	next.SelectedID = req.ID
	c.state = next
	debug.Log("static: activate id=%q file=%q focus=%q", req.ID, req.FileName, req.Focus)
	return nil
}

// Reset restores the step's original editor and preview steps.
func (c *StaticController) Reset() {
	c.state = StaticStepState{
		EditorStep:   c.initial.EditorStep,
		PreviewStep:  c.initial.PreviewStep,
		PresetConfig: c.initial.PresetConfig,
		CodeConfig:   c.initial.CodeConfig,
	}
	debug.Log("static: reset")
}

// ResetIf resets only when id owns the current focus. A link leaving its
// activation range after another link took over must not clear the newer focus.
func (c *StaticController) ResetIf(id string) bool {
	if !c.Selected(id) {
		return false
	}
	c.Reset()
	return true
}

// StaticInput is the per-step input for StaticSteps.
type StaticInput struct {
	EditorStep  step.EditorStep
	PreviewStep string
}

// StaticSteps creates one independent controller per step.
func StaticSteps(steps []StaticInput, preset *PresetConfig, code CodeConfig) []*StaticController {
	out := make([]*StaticController, len(steps))
	for i, s := range steps {
		out[i] = NewStaticController(s.EditorStep, s.PreviewStep, preset, code)
	}
	return out
}
