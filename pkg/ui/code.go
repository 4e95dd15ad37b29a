package ui

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/codewalk/pkg/scrolly"
	"github.com/vanderheijden86/codewalk/pkg/step"
)

// CodeView renders an editor step: the tab bar, the active file title and
// the highlighted code with the focus emphasized.
type CodeView struct {
	Theme  Theme
	Config scrolly.CodeConfig
	Style  string // chroma style name
	Width  int
	Height int // lines available for code, 0 = unlimited
}

// Render renders s.
func (v CodeView) Render(s step.EditorStep) string {
	if v.Width <= 0 {
		return ""
	}
	active, ok := s.ActiveFile()
	if !ok {
		return v.Theme.Status.Render("no files")
	}

	parts := []string{v.renderTabs(s), TabTitle(v.Theme, active.Name, v.Width), ""}
	parts = append(parts, v.renderFile(active)...)
	return v.Theme.Renderer.NewStyle().MaxWidth(v.Width).Render(strings.Join(parts, "\n"))
}

func (v CodeView) renderTabs(s step.EditorStep) string {
	tabs := make([]string, 0, len(s.Files))
	for _, f := range s.Files {
		_, base := SplitTitle(f.Name)
		if f.Name == s.Active {
			tabs = append(tabs, v.Theme.TabActive.Render(base))
		} else {
			tabs = append(tabs, v.Theme.Tab.Render(base))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)
}

// renderFile returns the visible code lines of f.
func (v CodeView) renderFile(f step.File) []string {
	plain := codeLines(f.Code)
	focus := step.ParseFocus(f.Focus)

	var colored []string
	if focus.Empty() || hasWholeLines(focus) {
		colored = Highlight(f.Code, f.Lang, f.Name, v.Style)
	}

	from, to := visibleWindow(len(plain), v.height(), focus.First())

	numWidth := len(fmt.Sprint(len(plain)))
	out := make([]string, 0, to-from)
	for i := from; i < to; i++ {
		n := i + 1
		var line string
		switch {
		case focus.Empty():
			line = pick(colored, plain, i)
		case !focus.Contains(n):
			line = v.Theme.Dimmed.Render(plain[i])
		case focus.ColumnsFor(n) == nil:
			line = pick(colored, plain, i)
		default:
			line = v.markColumns(plain[i], focus.ColumnsFor(n))
		}
		if v.Config.LineNumbers {
			line = v.Theme.LineNumber.Render(fmt.Sprintf("%*d ", numWidth, n)) + line
		}
		out = append(out, line)
	}
	return out
}

func (v CodeView) height() int {
	h := v.Height
	if v.Config.Rows > 0 && (h <= 0 || v.Config.Rows < h) {
		h = v.Config.Rows
	}
	return h
}

// markColumns emphasizes the focused columns of one line and dims the rest.
func (v CodeView) markColumns(line string, cols []step.ColumnRange) string {
	runes := []rune(line)
	marked := make([]bool, len(runes))
	for _, c := range cols {
		for i := c.Start - 1; i < c.End && i < len(runes); i++ {
			if i >= 0 {
				marked[i] = true
			}
		}
	}

	var sb strings.Builder
	for i := 0; i < len(runes); {
		j := i
		for j < len(runes) && marked[j] == marked[i] {
			j++
		}
		seg := string(runes[i:j])
		if marked[i] {
			sb.WriteString(v.Theme.Marked.Render(seg))
		} else {
			sb.WriteString(v.Theme.Dimmed.Render(seg))
		}
		i = j
	}
	return sb.String()
}

func hasWholeLines(f step.Focus) bool {
	return len(f.Lines) > 0
}

func pick(colored, plain []string, i int) string {
	if i < len(colored) {
		return colored[i]
	}
	return plain[i]
}

// visibleWindow returns the [from, to) line window of height lines that
// keeps the first focused line in the upper third.
func visibleWindow(total, height, first int) (int, int) {
	if height <= 0 || total <= height {
		return 0, total
	}
	from := 0
	if first > 0 {
		from = first - 1 - height/3
	}
	from = clamp(from, 0, total-height)
	return from, from + height
}

func codeLines(code string) []string {
	code = strings.TrimSuffix(code, "\n")
	if code == "" {
		return nil
	}
	return strings.Split(code, "\n")
}

// Highlight returns code split into syntax highlighted lines. The lexer is
// chosen by language, then by file name. Without color support the plain
// lines are returned.
func Highlight(code, lang, fileName, style string) []string {
	plain := codeLines(code)
	if TermProfile <= colorprofile.Ascii {
		return plain
	}

	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Match(fileName)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	it, err := lexer.Tokenise(nil, code)
	if err != nil {
		return plain
	}

	formatter := formatters.Get("terminal256")
	if TermProfile == colorprofile.TrueColor {
		formatter = formatters.Get("terminal16m")
	}
	chromaStyle := styles.Get(style)

	out := make([]string, 0, len(plain))
	for _, tokens := range chroma.SplitTokensIntoLines(it.Tokens()) {
		if len(out) == len(plain) {
			break
		}
		line := make([]chroma.Token, len(tokens))
		for i, tok := range tokens {
			tok.Value = strings.TrimSuffix(tok.Value, "\n")
			line[i] = tok
		}
		var buf bytes.Buffer
		if err := formatter.Format(&buf, chromaStyle, chroma.Literator(line...)); err != nil {
			return plain
		}
		out = append(out, buf.String())
	}
	for len(out) < len(plain) {
		out = append(out, plain[len(out)])
	}
	return out
}

// RenderPreview renders the preview panel of a step: the file list fed to a
// preset, or the step's own preview descriptor.
func RenderPreview(t Theme, state scrolly.StaticStepState, width int) string {
	if width <= 4 {
		return ""
	}
	var body string
	switch {
	case state.PresetConfig != nil:
		names := state.EditorStep.Names()
		sort.Strings(names)
		body = fmt.Sprintf("%s\nfiles: %s", presetLabel(state.PresetConfig), strings.Join(names, ", "))
	case state.PreviewStep != "":
		body = state.PreviewStep
	default:
		return ""
	}
	return t.Preview.Width(width - 2).Render(body)
}

func presetLabel(p *scrolly.PresetConfig) string {
	if p.Template == "" {
		return "preset"
	}
	return "preset " + p.Template
}
