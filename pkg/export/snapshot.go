// Package export writes a machine-readable snapshot of a walkthrough: every
// step with its narrative, focus links, editor step and preview, as the
// static player shows it before any link is activated.
package export

import (
	"io"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/codewalk/pkg/scrolly"
	"github.com/vanderheijden86/codewalk/pkg/step"
	"github.com/vanderheijden86/codewalk/pkg/walkthrough"
)

// StepSnapshot is one step of a Snapshot.
type StepSnapshot struct {
	Index      int                   `json:"index"`
	Title      string                `json:"title,omitempty"`
	Markdown   string                `json:"markdown"`
	Links      []walkthrough.Link    `json:"links,omitempty"`
	EditorStep step.EditorStep       `json:"editor_step"`
	Preview    string                `json:"preview,omitempty"`
	Focus      map[string]step.Focus `json:"focus,omitempty"` // parsed focus per file
}

// Snapshot is the exported form of a walkthrough.
type Snapshot struct {
	Path     string                `json:"path,omitempty"`
	Title    string                `json:"title,omitempty"`
	Start    int                   `json:"start"`
	Preview  bool                  `json:"preview"`
	Preset   *scrolly.PresetConfig `json:"preset,omitempty"`
	Code     scrolly.CodeConfig    `json:"code"`
	Steps    []StepSnapshot        `json:"steps"`
	Problems []walkthrough.Problem `json:"problems,omitempty"`
}

// Build creates the snapshot of doc. It fails with the extractor's
// configuration error when the steps do not line up.
func Build(doc *walkthrough.Document) (Snapshot, error) {
	steps, err := doc.Steps()
	if err != nil {
		return Snapshot{}, err
	}

	start, _ := doc.StartIndex()
	snap := Snapshot{
		Path:     doc.Path,
		Title:    doc.Title(),
		Start:    start,
		Preview:  doc.Meta.Preview,
		Preset:   doc.Meta.Preset,
		Code:     doc.Meta.Code,
		Steps:    make([]StepSnapshot, steps.Len()),
		Problems: doc.Lint(),
	}
	for i, b := range steps.Children {
		preview, _ := steps.Preview(i)
		ss := StepSnapshot{
			Index:      i,
			Title:      b.Title,
			Markdown:   b.Markdown,
			Links:      b.Links,
			EditorStep: steps.EditorSteps[i],
			Preview:    preview,
		}
		for _, f := range ss.EditorStep.Files {
			if f.Focus == "" {
				continue
			}
			if ss.Focus == nil {
				ss.Focus = make(map[string]step.Focus)
			}
			ss.Focus[f.Name] = step.ParseFocus(f.Focus)
		}
		snap.Steps[i] = ss
	}
	return snap, nil
}

// Write encodes snap as indented JSON.
func Write(w io.Writer, snap Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}
