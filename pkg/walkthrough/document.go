// Package walkthrough loads walkthrough documents: Markdown files whose steps
// are separated by thematic breaks and whose named code blocks describe the
// files shown next to each step.
//
//	---
//	title: Building a server
//	preview: true
//	---
//
//	## Listen
//
//	We start in [main](focus:main.go#3:5).
//
//	```go main.go focus=3
//	package main
//	...
//	```
//
//	```preview
//	curl localhost:8080
//	```
//
//	---
//
//	## Handle
//	...
//
// Separators are CommonMark thematic breaks: "---" directly under a paragraph
// line is a setext heading, and a "---" line inside an indented code block or
// HTML block is content.
package walkthrough

import (
	"time"

	"github.com/vanderheijden86/codewalk/pkg/scrolly"
	"github.com/vanderheijden86/codewalk/pkg/step"
)

// Frontmatter is the YAML header of a walkthrough.
type Frontmatter struct {
	Title       string                `yaml:"title" json:"title,omitempty"`
	Start       *int                  `yaml:"start,omitempty" json:"start,omitempty"`
	Autoplay    *bool                 `yaml:"autoplay,omitempty" json:"autoplay,omitempty"`
	Interval    time.Duration         `yaml:"interval,omitempty" json:"interval,omitempty"`
	Preview     bool                  `yaml:"preview" json:"preview"` // steps carry their own ```preview blocks
	Preset      *scrolly.PresetConfig `yaml:"preset,omitempty" json:"preset,omitempty"`
	StaticQuery string                `yaml:"static_query,omitempty" json:"static_query,omitempty"`
	Theme       string                `yaml:"theme,omitempty" json:"theme,omitempty"`
	Code        scrolly.CodeConfig    `yaml:"code,omitempty" json:"code"`
}

// Link is an inline focus link inside a step's narrative.
type Link struct {
	ID      string            `json:"id"`
	Text    string            `json:"text"`
	Request step.FocusRequest `json:"request"`
}

// Block is the parsed content of one narrative step.
type Block struct {
	Index      int         `json:"index"`
	Title      string      `json:"title,omitempty"`
	Markdown   string      `json:"markdown"` // narrative with file and preview blocks removed
	Files      []step.File `json:"files,omitempty"`
	Active     string      `json:"active,omitempty"`
	Preview    string      `json:"preview,omitempty"`
	HasPreview bool        `json:"has_preview"`
	Links      []Link      `json:"links,omitempty"`
}

// Document is a parsed walkthrough.
type Document struct {
	Path   string      `json:"path,omitempty"`
	Meta   Frontmatter `json:"meta"`
	Blocks []Block     `json:"blocks"`
}

// Len returns the number of narrative steps.
func (d *Document) Len() int {
	return len(d.Blocks)
}

// Title returns the frontmatter title, falling back to the first step title.
func (d *Document) Title() string {
	if d.Meta.Title != "" {
		return d.Meta.Title
	}
	for _, b := range d.Blocks {
		if b.Title != "" {
			return b.Title
		}
	}
	return ""
}

// EditorSteps builds one editor step per narrative step. Files carry over
// from earlier steps until a step redefines them; carried files lose their
// focus. The last file declared in a step becomes active, otherwise the
// previous step's active file stays.
func (d *Document) EditorSteps() []step.EditorStep {
	out := make([]step.EditorStep, len(d.Blocks))
	var prev step.EditorStep

	for i, b := range d.Blocks {
		files := make([]step.File, len(prev.Files))
		for j, f := range prev.Files {
			f.Focus = ""
			files[j] = f
		}
		for _, f := range b.Files {
			replaced := false
			for j := range files {
				if files[j].Name == f.Name {
					files[j] = f
					replaced = true
					break
				}
			}
			if !replaced {
				files = append(files, f)
			}
		}

		active := prev.Active
		if b.Active != "" {
			active = b.Active
		}
		cur := step.New(active, files...)
		out[i] = cur
		prev = cur
	}
	return out
}

// Steps runs the step extractor over the document.
func (d *Document) Steps() (Steps, error) {
	return ExtractPreviewSteps(d.Blocks, d.Meta.Preview, d.EditorSteps())
}

// StartIndex returns the frontmatter start step and whether the author set
// one. An explicit "start: 0" counts as set.
func (d *Document) StartIndex() (int, bool) {
	if d.Meta.Start == nil {
		return 0, false
	}
	return *d.Meta.Start, true
}

// AutoplayEnabled reports the frontmatter autoplay setting, or def when unset.
func (d *Document) AutoplayEnabled(def bool) bool {
	if d.Meta.Autoplay == nil {
		return def
	}
	return *d.Meta.Autoplay
}
