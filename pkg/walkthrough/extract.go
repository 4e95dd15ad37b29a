package walkthrough

import (
	"errors"
	"fmt"

	"github.com/vanderheijden86/codewalk/pkg/metrics"
	"github.com/vanderheijden86/codewalk/pkg/step"
)

// Extraction errors.
var (
	ErrPreviewCountMismatch = errors.New("preview count does not match step count")
	ErrMissingEditorStep    = errors.New("step has no editor step")
	ErrEditorStepSurplus    = errors.New("more editor steps than steps")
)

// ConfigError reports a walkthrough whose steps do not line up.
type ConfigError struct {
	Steps       int
	Previews    int
	EditorSteps int
	Index       int // offending step for ErrMissingEditorStep, -1 otherwise
	Err         error
}

func (e *ConfigError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("step %d of %d: %v", e.Index+1, e.Steps, e.Err)
	}
	if errors.Is(e.Err, ErrEditorStepSurplus) {
		return fmt.Sprintf("%d steps, %d editor steps: %v", e.Steps, e.EditorSteps, e.Err)
	}
	return fmt.Sprintf("%d steps, %d previews: %v", e.Steps, e.Previews, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Steps is the extractor output: narrative blocks paired by position with
// their editor steps and, when enabled, their preview descriptors.
type Steps struct {
	Children        []Block           `json:"children"`
	PreviewChildren []string          `json:"preview_children,omitempty"` // nil when previews are off
	EditorSteps     []step.EditorStep `json:"editor_steps"`
}

// Len returns the number of steps.
func (s Steps) Len() int {
	return len(s.Children)
}

// Preview returns the preview descriptor of step i, if any.
func (s Steps) Preview(i int) (string, bool) {
	if s.PreviewChildren == nil || i < 0 || i >= len(s.PreviewChildren) {
		return "", false
	}
	return s.PreviewChildren[i], true
}

// ExtractPreviewSteps splits blocks into step content and, when
// hasPreviewSteps is set, the parallel list of preview descriptors. It fails
// when the preview count differs from the step count, when a step has no
// editor step to show, or when editor steps are left over. The inputs are not
// modified.
func ExtractPreviewSteps(blocks []Block, hasPreviewSteps bool, editorSteps []step.EditorStep) (Steps, error) {
	defer metrics.Timer(metrics.Extract)()

	for i := range blocks {
		if i >= len(editorSteps) || editorSteps[i].IsZero() {
			return Steps{}, &ConfigError{Steps: len(blocks), Index: i, Err: ErrMissingEditorStep}
		}
	}
	if len(editorSteps) > len(blocks) {
		return Steps{}, &ConfigError{Steps: len(blocks), EditorSteps: len(editorSteps), Index: -1, Err: ErrEditorStepSurplus}
	}

	out := Steps{
		Children:    append([]Block(nil), blocks...),
		EditorSteps: append([]step.EditorStep(nil), editorSteps...),
	}
	if !hasPreviewSteps {
		return out, nil
	}

	previews := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if b.HasPreview {
			previews = append(previews, b.Preview)
		}
	}
	if len(previews) != len(blocks) {
		return Steps{}, &ConfigError{Steps: len(blocks), Previews: len(previews), Index: -1, Err: ErrPreviewCountMismatch}
	}
	out.PreviewChildren = previews
	return out, nil
}
