package walkthrough

import (
	"fmt"

	"github.com/vanderheijden86/codewalk/pkg/step"
)

// Problem is an authoring issue found by Lint.
type Problem struct {
	Step    int    `json:"step"` // 1-based, 0 for document-level problems
	Message string `json:"message"`
	Fatal   bool   `json:"fatal"` // the walkthrough cannot be played
}

func (p Problem) String() string {
	if p.Step == 0 {
		return p.Message
	}
	return fmt.Sprintf("step %d: %s", p.Step, p.Message)
}

// Lint checks a document for authoring mistakes. Fatal problems are the
// configuration errors the players refuse to start with; the rest degrade
// gracefully at runtime (a bad focus token just highlights nothing).
func (d *Document) Lint() []Problem {
	var problems []Problem

	if len(d.Blocks) == 0 {
		return append(problems, Problem{Message: "walkthrough has no steps", Fatal: true})
	}
	if _, err := d.Steps(); err != nil {
		problems = append(problems, Problem{Message: err.Error(), Fatal: true})
	}
	if start, ok := d.StartIndex(); ok && start >= len(d.Blocks) {
		problems = append(problems, Problem{
			Message: fmt.Sprintf("start %d is past the last step (%d steps)", start, len(d.Blocks)),
			Fatal:   true,
		})
	}

	editorSteps := d.EditorSteps()
	for i, b := range d.Blocks {
		for _, f := range b.Files {
			if !step.ValidFocus(f.Focus) {
				problems = append(problems, Problem{Step: i + 1, Message: fmt.Sprintf("file %s: unparseable focus %q", f.Name, f.Focus)})
			}
		}
		for _, l := range b.Links {
			if l.Request.FileName != "" {
				if _, ok := editorSteps[i].File(l.Request.FileName); !ok {
					problems = append(problems, Problem{Step: i + 1, Message: fmt.Sprintf("link %q points at unknown file %s", l.Text, l.Request.FileName)})
				}
			}
			if !step.ValidFocus(l.Request.Focus) {
				problems = append(problems, Problem{Step: i + 1, Message: fmt.Sprintf("link %q: unparseable focus %q", l.Text, l.Request.Focus)})
			}
		}
		if !d.Meta.Preview && b.HasPreview {
			problems = append(problems, Problem{Step: i + 1, Message: "preview block ignored because preview is not enabled in the frontmatter"})
		}
	}
	return problems
}

// HasFatal reports whether any problem prevents playing the walkthrough.
func HasFatal(problems []Problem) bool {
	for _, p := range problems {
		if p.Fatal {
			return true
		}
	}
	return false
}
