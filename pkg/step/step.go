// Package step models editor steps: the snapshot of files, active tab and focus
// highlight shown next to one narrative step of a walkthrough.
//
// EditorStep values are treated as immutable. Every operation in this package
// returns a fresh copy and leaves its input untouched, so a step can be shared
// freely between the static and dynamic controllers.
package step

import (
	"github.com/vanderheijden86/codewalk/pkg/metrics"
)

// File is one source file in an editor step.
type File struct {
	Name  string `json:"name" yaml:"name"`
	Lang  string `json:"lang,omitempty" yaml:"lang,omitempty"`
	Code  string `json:"code" yaml:"code"`
	Focus string `json:"focus,omitempty" yaml:"focus,omitempty"` // focus token parked on this file ("" = no highlight)
}

// EditorStep is an ordered set of files plus the file currently shown.
type EditorStep struct {
	Files  []File `json:"files" yaml:"files"`
	Active string `json:"active" yaml:"active"`
}

// FocusRequest asks for a file/focus combination to be shown.
// An empty FileName targets the active file; an empty Focus clears highlighting.
// ID identifies the link or trigger that issued the request.
type FocusRequest struct {
	FileName string `json:"file,omitempty"`
	Focus    string `json:"focus,omitempty"`
	ID       string `json:"id"`
}

// New builds an editor step from files. The last file becomes active unless
// active names another file in the list.
func New(active string, files ...File) EditorStep {
	s := EditorStep{Files: append([]File(nil), files...)}
	if s.index(active) >= 0 {
		s.Active = active
	} else if len(files) > 0 {
		s.Active = files[len(files)-1].Name
	}
	return s
}

// Clone returns a deep copy of the step.
func (s EditorStep) Clone() EditorStep {
	return EditorStep{
		Files:  append([]File(nil), s.Files...),
		Active: s.Active,
	}
}

// File returns the named file.
func (s EditorStep) File(name string) (File, bool) {
	if i := s.index(name); i >= 0 {
		return s.Files[i], true
	}
	return File{}, false
}

// ActiveFile returns the file currently shown.
func (s EditorStep) ActiveFile() (File, bool) {
	return s.File(s.Active)
}

// Names returns the file names in tab order.
func (s EditorStep) Names() []string {
	names := make([]string, len(s.Files))
	for i, f := range s.Files {
		names[i] = f.Name
	}
	return names
}

// Equal reports whether two steps hold the same files, order and active tab.
func (s EditorStep) Equal(o EditorStep) bool {
	if s.Active != o.Active || len(s.Files) != len(o.Files) {
		return false
	}
	for i := range s.Files {
		if s.Files[i] != o.Files[i] {
			return false
		}
	}
	return true
}

// IsZero reports whether the step has no files.
func (s EditorStep) IsZero() bool {
	return len(s.Files) == 0
}

func (s EditorStep) index(name string) int {
	for i := range s.Files {
		if s.Files[i].Name == name {
			return i
		}
	}
	return -1
}

// UpdateStep returns a copy of s with fileName made active and its focus token
// set to focus. An empty fileName targets the active file and an empty focus
// clears the highlight. Focus tokens parked on other files are kept as they are.
//
// Requests naming a file the step does not contain return an unchanged copy.
func UpdateStep(s EditorStep, fileName, focus string) EditorStep {
	defer metrics.Timer(metrics.Reduce)()

	name := fileName
	if name == "" {
		name = s.Active
	}

	next := s.Clone()
	i := next.index(name)
	if i < 0 {
		return next
	}
	next.Active = name
	next.Files[i].Focus = focus
	return next
}

// Apply is UpdateStep driven by a FocusRequest.
func Apply(s EditorStep, req FocusRequest) EditorStep {
	return UpdateStep(s, req.FileName, req.Focus)
}
