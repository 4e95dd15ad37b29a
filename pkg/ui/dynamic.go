package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/codewalk/pkg/debug"
	"github.com/vanderheijden86/codewalk/pkg/metrics"
	"github.com/vanderheijden86/codewalk/pkg/scrolly"
	"github.com/vanderheijden86/codewalk/pkg/walkthrough"
	"github.com/vanderheijden86/codewalk/pkg/watcher"
)

// autoplayTickMsg is sent into the program by the autoplay goroutine. gen
// identifies the autoplay run that produced it; ticks from a stopped run are
// dropped.
type autoplayTickMsg struct{ gen uint64 }

// ReloadMsg carries a re-parsed walkthrough after the file changed.
type ReloadMsg struct {
	Doc *walkthrough.Document
	Err error
}

// DynamicOption configures a DynamicModel.
type DynamicOption func(*DynamicModel)

// WithAutoplay enables autoplay at the given interval from the start.
func WithAutoplay(enabled bool, interval time.Duration) DynamicOption {
	return func(m *DynamicModel) {
		m.autoplayOn = enabled
		m.interval = interval
	}
}

// WithTicker replaces the autoplay clock, for tests.
func WithTicker(fn scrolly.TickerFunc) DynamicOption {
	return func(m *DynamicModel) {
		m.ticker = fn
	}
}

// WithWatcher reloads the walkthrough whenever w reports a change.
func WithWatcher(w *watcher.Watcher) DynamicOption {
	return func(m *DynamicModel) {
		m.watcher = w
	}
}

// WithClipboard replaces the clipboard writer.
func WithClipboard(fn func(string) error) DynamicOption {
	return func(m *DynamicModel) {
		m.copy = fn
	}
}

// WithTheme sets the theme and the glamour style used for narratives.
func WithTheme(t Theme, markdownStyle string) DynamicOption {
	return func(m *DynamicModel) {
		m.theme = t
		m.mdStyle = markdownStyle
	}
}

// DynamicModel is the interactive player: one narrative step at a time next
// to a code panel driven by a DynamicController.
type DynamicModel struct {
	ctx    context.Context
	cancel context.CancelFunc

	doc   *walkthrough.Document
	steps walkthrough.Steps
	ctrl  *scrolly.DynamicController

	autoplayOn bool
	interval   time.Duration
	ticker     scrolly.TickerFunc
	autoplay   *scrolly.Autoplay
	gen        uint64
	ticks      chan uint64

	watcher *watcher.Watcher
	copy    func(string) error

	theme    Theme
	mdStyle  string
	markdown *MarkdownRenderer
	cache    map[cacheKey]string
	keys     KeyMap
	help     help.Model

	linkCursor int // -1 when no link is selected
	selectedID string
	status     string
	err        error
	width      int
	height     int
}

type cacheKey struct {
	index int
	width int
}

// NewDynamicModel creates the player for doc. start is the initial step.
func NewDynamicModel(ctx context.Context, doc *walkthrough.Document, start int, opts ...DynamicOption) (DynamicModel, error) {
	steps, err := doc.Steps()
	if err != nil {
		return DynamicModel{}, err
	}
	ctrl, err := scrolly.NewDynamicController(steps.EditorSteps, scrolly.WithStart(start))
	if err != nil {
		return DynamicModel{}, err
	}

	ctx, cancel := context.WithCancel(ctx)
	m := DynamicModel{
		ctx:        ctx,
		cancel:     cancel,
		doc:        doc,
		steps:      steps,
		ctrl:       ctrl,
		interval:   scrolly.DefaultInterval,
		ticks:      make(chan uint64, 1),
		copy:       clipboard.WriteAll,
		theme:      TestTheme(),
		mdStyle:    "auto",
		cache:      make(map[cacheKey]string),
		keys:       DefaultKeyMap(),
		help:       help.New(),
		linkCursor: -1,
		width:      100,
		height:     30,
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.markdown = NewMarkdownRenderer(m.narrativeWidth()-4, m.mdStyle)
	if m.autoplayOn {
		m.newAutoplay()
	}
	return m, nil
}

// newAutoplay prepares a fresh autoplay run with its own generation.
func (m *DynamicModel) newAutoplay() {
	m.gen++
	gen, ticks := m.gen, m.ticks
	var opts []scrolly.AutoplayOption
	if m.ticker != nil {
		opts = append(opts, scrolly.WithTicker(m.ticker))
	}
	m.autoplay = scrolly.NewAutoplay(m.interval, func() {
		select {
		case ticks <- gen:
		default:
		}
	}, opts...)
}

// Init starts autoplay and the background listeners.
func (m DynamicModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.waitTick()}
	if m.autoplay != nil {
		if err := m.autoplay.Start(m.ctx); err != nil {
			debug.Log("dynamic model: autoplay start: %v", err)
		}
	}
	if m.watcher != nil {
		cmds = append(cmds, WaitForReload(m.ctx, m.watcher))
	}
	return tea.Batch(cmds...)
}

func (m DynamicModel) waitTick() tea.Cmd {
	ctx, ticks := m.ctx, m.ticks
	return func() tea.Msg {
		select {
		case gen := <-ticks:
			return autoplayTickMsg{gen: gen}
		case <-ctx.Done():
			return nil
		}
	}
}

// WaitForReload blocks until w reports a change, then reloads the
// walkthrough from disk.
func WaitForReload(ctx context.Context, w *watcher.Watcher) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-w.Changed():
			doc, err := walkthrough.Load(w.Path())
			return ReloadMsg{Doc: doc, Err: err}
		case <-ctx.Done():
			return nil
		}
	}
}

// Update handles keys, autoplay ticks and reloads.
func (m DynamicModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.markdown.SetWidth(m.narrativeWidth() - 4)
		m.help.Width = msg.Width
		return m, nil

	case autoplayTickMsg:
		if msg.gen == m.gen && m.autoplay != nil && m.autoplay.Running() {
			before := m.ctrl.State().StepIndex
			if m.ctrl.Advance() != before {
				m.resetLinks()
			}
		}
		return m, m.waitTick()

	case ReloadMsg:
		m = m.reload(msg)
		var cmd tea.Cmd
		if m.watcher != nil {
			cmd = WaitForReload(m.ctx, m.watcher)
		}
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m DynamicModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	state := m.ctrl.State()
	m.status = ""

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.Close()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Next):
		m.goTo(state.StepIndex + 1)

	case key.Matches(msg, m.keys.Prev):
		m.goTo(state.StepIndex - 1)

	case key.Matches(msg, m.keys.Jump):
		m.goTo(int(msg.String()[0]-'0') - 1)

	case key.Matches(msg, m.keys.NextTab), key.Matches(msg, m.keys.PrevTab):
		names := state.Step.Names()
		if len(names) < 2 {
			break
		}
		delta := 1
		if key.Matches(msg, m.keys.PrevTab) {
			delta = -1
		}
		cur := 0
		for i, n := range names {
			if n == state.Step.Active {
				cur = i
			}
		}
		next := names[(cur+delta+len(names))%len(names)]
		if err := m.ctrl.OnTabClick(next); err != nil {
			m.err = err
		}
		m.selectedID = ""

	case key.Matches(msg, m.keys.NextLink), key.Matches(msg, m.keys.PrevLink):
		links := m.links(state.StepIndex)
		if len(links) == 0 {
			break
		}
		if key.Matches(msg, m.keys.NextLink) {
			m.linkCursor = (m.linkCursor + 1) % len(links)
		} else if m.linkCursor <= 0 {
			m.linkCursor = len(links) - 1
		} else {
			m.linkCursor--
		}

	case key.Matches(msg, m.keys.Activate):
		links := m.links(state.StepIndex)
		if m.linkCursor < 0 || m.linkCursor >= len(links) {
			break
		}
		l := links[m.linkCursor]
		if err := m.ctrl.Activate(state.StepIndex, l.Request); err != nil {
			m.err = err
			break
		}
		m.selectedID = l.ID

	case key.Matches(msg, m.keys.Clear):
		if err := m.ctrl.OnStepChange(state.StepIndex); err != nil {
			m.err = err
		}
		m.resetLinks()

	case key.Matches(msg, m.keys.Autoplay):
		m.toggleAutoplay()

	case key.Matches(msg, m.keys.Copy):
		f, ok := state.Step.ActiveFile()
		if !ok {
			break
		}
		if err := m.copy(f.Code); err != nil {
			m.status = fmt.Sprintf("copy failed: %v", err)
		} else {
			m.status = fmt.Sprintf("copied %s", f.Name)
		}
	}
	return m, nil
}

func (m *DynamicModel) goTo(index int) {
	if index < 0 || index >= m.ctrl.Len() {
		return
	}
	if err := m.ctrl.OnStepChange(index); err != nil {
		m.err = err
		return
	}
	m.resetLinks()
}

func (m *DynamicModel) resetLinks() {
	m.linkCursor = -1
	m.selectedID = ""
}

func (m *DynamicModel) toggleAutoplay() {
	if m.autoplay != nil && m.autoplay.Running() {
		m.autoplay.Stop()
		m.status = "autoplay paused"
		return
	}
	m.newAutoplay()
	if err := m.autoplay.Start(m.ctx); err != nil {
		m.err = err
		return
	}
	m.status = "autoplay on"
}

func (m DynamicModel) reload(msg ReloadMsg) DynamicModel {
	if msg.Err != nil {
		m.err = msg.Err
		return m
	}
	steps, err := msg.Doc.Steps()
	if err != nil {
		m.err = err
		return m
	}
	if err := m.ctrl.SetSteps(steps.EditorSteps); err != nil {
		m.err = err
		return m
	}
	m.doc, m.steps, m.err = msg.Doc, steps, nil
	m.cache = make(map[cacheKey]string)
	m.resetLinks()
	m.status = "reloaded"
	return m
}

// Close stops autoplay and the background listeners.
func (m DynamicModel) Close() {
	if m.autoplay != nil {
		m.autoplay.Stop()
	}
	m.cancel()
}

// State returns the controller state.
func (m DynamicModel) State() scrolly.DynamicState {
	return m.ctrl.State()
}

// Autoplaying reports whether autoplay is running.
func (m DynamicModel) Autoplaying() bool {
	return m.autoplay != nil && m.autoplay.Running()
}

// LinkCursor returns the selected link index in the current step, or -1.
func (m DynamicModel) LinkCursor() int {
	return m.linkCursor
}

// Status returns the transient status line.
func (m DynamicModel) Status() string {
	return m.status
}

// Err returns the last error, such as a failed reload.
func (m DynamicModel) Err() error {
	return m.err
}

func (m DynamicModel) links(index int) []walkthrough.Link {
	if index < 0 || index >= len(m.steps.Children) {
		return nil
	}
	return m.steps.Children[index].Links
}

func (m DynamicModel) narrativeWidth() int {
	w := m.width * 2 / 5
	if w < 30 {
		w = 30
	}
	return w
}

// View renders the player.
func (m DynamicModel) View() string {
	defer metrics.Timer(metrics.Render)()

	state := m.ctrl.State()
	t := m.theme

	header := lipgloss.JoinHorizontal(lipgloss.Center,
		t.Header.Render(truncateRunesHelper(m.doc.Title(), m.width/2, "…")),
		" ",
		RenderProgressDots(state.StepIndex, m.ctrl.Len(), m.width/3),
		"  ",
		RenderAutoplayBadge(m.Autoplaying()),
	)

	bodyHeight := m.height - 4
	if bodyHeight < 5 {
		bodyHeight = 5
	}
	leftWidth := m.narrativeWidth()
	rightWidth := m.width - leftWidth - 1
	if rightWidth < 20 {
		rightWidth = 20
	}

	panel := t.Panel
	if m.linkCursor >= 0 {
		panel = FocusedPanelStyle
	}
	left := panel.
		Width(leftWidth - 2).
		Height(bodyHeight - 2).
		MaxHeight(bodyHeight).
		Render(m.renderNarrative(state.StepIndex, leftWidth-4))

	preview := ""
	if p, ok := m.steps.Preview(state.StepIndex); ok || m.doc.Meta.Preset != nil {
		preview = RenderPreview(t, scrolly.StaticStepState{
			EditorStep:   state.Step,
			PreviewStep:  p,
			PresetConfig: m.doc.Meta.Preset,
		}, rightWidth)
	}
	codeHeight := bodyHeight - 4 - lipgloss.Height(preview)
	if preview == "" {
		codeHeight = bodyHeight - 4
	}
	code := CodeView{
		Theme:  t,
		Config: m.doc.Meta.Code,
		Style:  ChromaStyle(t.Renderer),
		Width:  rightWidth,
		Height: codeHeight,
	}.Render(state.Step)
	right := code
	if preview != "" {
		right = lipgloss.JoinVertical(lipgloss.Left, code, preview)
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right)

	footer := m.help.ShortHelpView(m.keys.DynamicHelp())
	switch {
	case m.err != nil:
		footer = t.Error.Render(m.err.Error())
	case m.status != "":
		footer = t.Status.Render(m.status)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m DynamicModel) renderNarrative(index, width int) string {
	if index < 0 || index >= len(m.steps.Children) {
		return ""
	}
	ck := cacheKey{index: index, width: width}
	text, ok := m.cache[ck]
	if !ok {
		text = m.markdown.Render(m.steps.Children[index].Markdown)
		m.cache[ck] = text
	}

	links := m.steps.Children[index].Links
	if len(links) == 0 {
		return text
	}
	var sb strings.Builder
	sb.WriteString(text)
	sb.WriteString("\n\n")
	sb.WriteString(RenderDivider(width))
	for i, l := range links {
		sb.WriteByte('\n')
		sb.WriteString(renderLink(m.theme, l, i == m.linkCursor, l.ID == m.selectedID, width))
	}
	return sb.String()
}

func renderLink(t Theme, l walkthrough.Link, cursor, selected bool, width int) string {
	prefix := "  "
	if cursor {
		prefix = "› "
	}
	target := l.Request.FileName
	if l.Request.Focus != "" {
		target = strings.TrimSpace(target + " " + l.Request.Focus)
	}
	label := truncateRunesHelper(l.Text, width/2, "…")
	style := t.Link
	if selected {
		style = t.LinkActive
	}
	return prefix + style.Render(label) + " " + t.Status.Render(truncateRunesHelper(target, width/2-2, "…"))
}
