package ui

import (
	"regexp"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"

	"github.com/vanderheijden86/codewalk/pkg/debug"
)

// focusLinkRe matches inline focus links; their targets mean nothing in a
// terminal, so only the text is kept and the link list below the narrative
// carries the action.
var focusLinkRe = regexp.MustCompile(`\[([^\]]*)\]\(focus:[^)]*\)`)

// MarkdownRenderer renders step narratives with glamour. Render may be
// called from several goroutines.
type MarkdownRenderer struct {
	mu       sync.Mutex
	style    string
	width    int
	renderer *glamour.TermRenderer
}

// NewMarkdownRenderer creates a renderer wrapping at width. style is a
// glamour standard style name, or "auto"/"" to follow the terminal.
func NewMarkdownRenderer(width int, style string) *MarkdownRenderer {
	r := &MarkdownRenderer{style: style}
	r.setWidth(width)
	return r
}

// SetWidth changes the wrap width, rebuilding the renderer when it differs.
func (r *MarkdownRenderer) SetWidth(width int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if width != r.width {
		r.setWidth(width)
	}
}

// Width returns the wrap width.
func (r *MarkdownRenderer) Width() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width
}

func (r *MarkdownRenderer) setWidth(width int) {
	if width < 20 {
		width = 20
	}
	r.width = width

	styleOpt := glamour.WithAutoStyle()
	if r.style != "" && r.style != "auto" {
		styleOpt = glamour.WithStandardStyle(r.style)
	}
	tr, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(width))
	if err != nil {
		debug.Log("markdown: renderer for style %q: %v", r.style, err)
		tr, _ = glamour.NewTermRenderer(glamour.WithStandardStyle("notty"), glamour.WithWordWrap(width))
	}
	r.renderer = tr
}

// Render renders markdown, falling back to the raw text when glamour fails.
func (r *MarkdownRenderer) Render(md string) string {
	md = focusLinkRe.ReplaceAllString(md, "*$1*")

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.renderer == nil {
		return md
	}
	out, err := r.renderer.Render(md)
	if err != nil {
		debug.Log("markdown: render: %v", err)
		return md
	}
	return strings.Trim(out, "\n")
}
