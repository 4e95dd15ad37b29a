package ui

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/codewalk/pkg/debug"
	"github.com/vanderheijden86/codewalk/pkg/metrics"
	"github.com/vanderheijden86/codewalk/pkg/scrolly"
	"github.com/vanderheijden86/codewalk/pkg/walkthrough"
)

// StaticOptions configures static rendering.
type StaticOptions struct {
	Theme         Theme
	MarkdownStyle string
	Width         int
}

func (o StaticOptions) withDefaults() StaticOptions {
	if o.Theme.Renderer == nil {
		o.Theme = TestTheme()
	}
	if o.Width <= 0 {
		o.Width = 80
	}
	return o
}

// StaticControllers creates one independent controller per step of doc.
func StaticControllers(doc *walkthrough.Document) ([]*scrolly.StaticController, walkthrough.Steps, error) {
	steps, err := doc.Steps()
	if err != nil {
		return nil, steps, err
	}
	inputs := make([]scrolly.StaticInput, steps.Len())
	for i := range inputs {
		p, _ := steps.Preview(i)
		inputs[i] = scrolly.StaticInput{EditorStep: steps.EditorSteps[i], PreviewStep: p}
	}
	return scrolly.StaticSteps(inputs, doc.Meta.Preset, doc.Meta.Code), steps, nil
}

// RenderStatic renders every step of doc one after another, for print
// output. Steps are rendered concurrently and joined in order.
func RenderStatic(ctx context.Context, doc *walkthrough.Document, opts StaticOptions) (string, error) {
	defer metrics.Timer(metrics.Static)()

	opts = opts.withDefaults()
	ctrls, steps, err := StaticControllers(doc)
	if err != nil {
		return "", err
	}
	r := newSectionRenderer(opts)
	sections, err := r.renderAll(ctx, steps.Children, states(ctrls), "")
	if err != nil {
		return "", err
	}
	return strings.Join(sections, "\n\n"), nil
}

func states(ctrls []*scrolly.StaticController) []scrolly.StaticStepState {
	out := make([]scrolly.StaticStepState, len(ctrls))
	for i, c := range ctrls {
		out[i] = c.State()
	}
	return out
}

// sectionRenderer renders single steps of the static player.
type sectionRenderer struct {
	theme    Theme
	width    int
	markdown *MarkdownRenderer
}

func newSectionRenderer(opts StaticOptions) sectionRenderer {
	return sectionRenderer{
		theme:    opts.Theme,
		width:    opts.Width,
		markdown: NewMarkdownRenderer(opts.Width-2, opts.MarkdownStyle),
	}
}

func (r sectionRenderer) renderAll(ctx context.Context, blocks []walkthrough.Block, sts []scrolly.StaticStepState, cursorID string) ([]string, error) {
	out := make([]string, len(blocks))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for i := range blocks {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i] = r.render(i, len(blocks), blocks[i], sts[i], cursorID)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r sectionRenderer) render(i, total int, b walkthrough.Block, st scrolly.StaticStepState, cursorID string) string {
	t := r.theme

	title := fmt.Sprintf("Step %d/%d", i+1, total)
	if b.Title != "" {
		title += " · " + b.Title
	}
	parts := []string{
		t.Title.Render(truncateRunesHelper(title, r.width, "…")),
		RenderDivider(r.width),
		r.markdown.Render(b.Markdown),
	}

	if len(b.Links) > 0 {
		var links []string
		for _, l := range b.Links {
			links = append(links, renderLink(t, l, l.ID == cursorID, st.SelectedID == l.ID, r.width))
		}
		parts = append(parts, strings.Join(links, "\n"))
	}

	parts = append(parts, "", CodeView{
		Theme:  t,
		Config: st.CodeConfig,
		Style:  ChromaStyle(t.Renderer),
		Width:  r.width,
	}.Render(st.EditorStep))

	if preview := RenderPreview(t, st, r.width); preview != "" {
		parts = append(parts, preview)
	}
	return strings.Join(parts, "\n")
}

// linkRef locates a link in the document.
type linkRef struct {
	step int
	link walkthrough.Link
}

// StaticModel is the scrolling player: every step is on screen in order and
// each step owns its own StaticController. Moving the link cursor plays the
// role of scrolling a link into its activation range: the link's step is
// focused and the previous link's step is reset if that link still owns it.
type StaticModel struct {
	doc   *walkthrough.Document
	steps walkthrough.Steps
	ctrls []*scrolly.StaticController
	links []linkRef

	renderer sectionRenderer
	sections []string
	viewport viewport.Model
	keys     KeyMap
	help     help.Model
	copy     func(string) error

	cursor int // index into links, -1 when none
	status string
	width  int
	height int
}

// NewStaticModel creates the static player for doc.
func NewStaticModel(doc *walkthrough.Document, opts StaticOptions) (StaticModel, error) {
	opts = opts.withDefaults()
	ctrls, steps, err := StaticControllers(doc)
	if err != nil {
		return StaticModel{}, err
	}

	var links []linkRef
	for i, b := range steps.Children {
		for _, l := range b.Links {
			links = append(links, linkRef{step: i, link: l})
		}
	}

	m := StaticModel{
		doc:      doc,
		steps:    steps,
		ctrls:    ctrls,
		links:    links,
		renderer: newSectionRenderer(opts),
		viewport: viewport.New(opts.Width, 24),
		keys:     StaticKeyMap(),
		help:     help.New(),
		copy:     clipboard.WriteAll,
		cursor:   -1,
		width:    opts.Width,
		height:   24,
	}
	m.renderAll()
	return m, nil
}

// WithClipboard replaces the clipboard writer.
func (m StaticModel) WithClipboard(fn func(string) error) StaticModel {
	m.copy = fn
	return m
}

// Init implements tea.Model.
func (m StaticModel) Init() tea.Cmd {
	return nil
}

// Update handles keys and resizes; everything else goes to the viewport.
func (m StaticModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - 2
		m.help.Width = msg.Width
		m.renderer.width = msg.Width
		m.renderer.markdown.SetWidth(msg.Width - 2)
		m.renderAll()
		return m, nil

	case tea.KeyMsg:
		m.status = ""
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.NextLink):
			m.moveCursor(1)
			return m, nil
		case key.Matches(msg, m.keys.PrevLink):
			m.moveCursor(-1)
			return m, nil
		case key.Matches(msg, m.keys.Activate):
			if m.cursor >= 0 {
				m.scrollTo(m.links[m.cursor].step)
			}
			return m, nil
		case key.Matches(msg, m.keys.Clear):
			m.clearCursor()
			return m, nil
		case key.Matches(msg, m.keys.Copy):
			m.copyActive()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// moveCursor moves the link cursor by delta, wrapping around.
func (m *StaticModel) moveCursor(delta int) {
	if len(m.links) == 0 {
		return
	}
	next := 0
	if m.cursor >= 0 {
		next = (m.cursor + delta + len(m.links)) % len(m.links)
	} else if delta < 0 {
		next = len(m.links) - 1
	}
	m.Select(next)
	m.scrollTo(m.links[next].step)
}

// Select moves the link cursor to links[i] (document order). The new link
// is activated first and the previous one released afterwards, so within a
// single step the newer focus survives and builds on the current state.
func (m *StaticModel) Select(i int) {
	if i < 0 || i >= len(m.links) {
		return
	}
	ref := m.links[i]
	if err := m.ctrls[ref.step].Activate(ref.link.Request); err != nil {
		debug.Log("static model: link %d: %v", i, err)
		return
	}
	dirty := map[int]bool{ref.step: true}

	if m.cursor >= 0 && m.cursor != i {
		prev := m.links[m.cursor]
		if m.ctrls[prev.step].ResetIf(prev.link.ID) {
			debug.Log("static model: step %d released by %s", prev.step, prev.link.ID)
			dirty[prev.step] = true
		}
	}
	m.cursor = i
	m.renderSteps(dirty)
}

func (m *StaticModel) clearCursor() {
	if m.cursor < 0 {
		return
	}
	prev := m.links[m.cursor]
	m.ctrls[prev.step].ResetIf(prev.link.ID)
	m.cursor = -1
	m.renderSteps(map[int]bool{prev.step: true})
}

func (m *StaticModel) copyActive() {
	idx := m.currentStep()
	if idx < 0 {
		return
	}
	f, ok := m.ctrls[idx].State().EditorStep.ActiveFile()
	if !ok {
		return
	}
	if err := m.copy(f.Code); err != nil {
		m.status = fmt.Sprintf("copy failed: %v", err)
		return
	}
	m.status = fmt.Sprintf("copied %s", f.Name)
}

// currentStep is the step under the link cursor, or the first step visible
// in the viewport.
func (m StaticModel) currentStep() int {
	if m.cursor >= 0 {
		return m.links[m.cursor].step
	}
	if len(m.sections) == 0 {
		return -1
	}
	offset := 0
	for i, s := range m.sections {
		offset += lipgloss.Height(s) + 2
		if offset > m.viewport.YOffset {
			return i
		}
	}
	return len(m.sections) - 1
}

func (m *StaticModel) scrollTo(step int) {
	offset := 0
	for i := 0; i < step && i < len(m.sections); i++ {
		offset += lipgloss.Height(m.sections[i]) + 2
	}
	m.viewport.SetYOffset(offset)
}

func (m *StaticModel) cursorID() string {
	if m.cursor < 0 {
		return ""
	}
	return m.links[m.cursor].link.ID
}

func (m *StaticModel) renderAll() {
	sections, err := m.renderer.renderAll(context.Background(), m.steps.Children, states(m.ctrls), m.cursorID())
	if err != nil {
		debug.Log("static model: render: %v", err)
		return
	}
	m.sections = sections
	m.viewport.SetContent(strings.Join(m.sections, "\n\n"))
}

func (m *StaticModel) renderSteps(dirty map[int]bool) {
	if len(m.sections) != len(m.ctrls) {
		m.renderAll()
		return
	}
	id := m.cursorID()
	for i := range dirty {
		m.sections[i] = m.renderer.render(i, len(m.ctrls), m.steps.Children[i], m.ctrls[i].State(), id)
	}
	m.viewport.SetContent(strings.Join(m.sections, "\n\n"))
}

// StepState returns the state of step i.
func (m StaticModel) StepState(i int) scrolly.StaticStepState {
	return m.ctrls[i].State()
}

// Cursor returns the link cursor, -1 when no link is selected.
func (m StaticModel) Cursor() int {
	return m.cursor
}

// Status returns the transient status line.
func (m StaticModel) Status() string {
	return m.status
}

// View renders the player.
func (m StaticModel) View() string {
	defer metrics.Timer(metrics.Render)()

	footer := m.help.ShortHelpView(m.keys.StaticHelp())
	if m.status != "" {
		footer = m.renderer.theme.Status.Render(m.status)
	}
	header := m.renderer.theme.Header.Render(truncateRunesHelper(m.doc.Title(), m.width-2, "…"))
	return lipgloss.JoinVertical(lipgloss.Left, header, m.viewport.View(), footer)
}
