package ui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/codewalk/pkg/walkthrough"
)

func newStatic(t *testing.T) (StaticModel, *fakeClipboard) {
	t.Helper()
	m, err := NewStaticModel(parseDoc(t, demoTour), StaticOptions{Theme: TestTheme(), MarkdownStyle: "notty", Width: 80})
	if err != nil {
		t.Fatalf("NewStaticModel: %v", err)
	}
	clip := &fakeClipboard{}
	return m.WithClipboard(clip.write), clip
}

func sendStatic(t *testing.T, m StaticModel, msgs ...tea.Msg) StaticModel {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(StaticModel)
	}
	return m
}

func TestStaticSelectWithinStep(t *testing.T) {
	m, _ := newStatic(t)

	m.Select(0)
	st := m.StepState(0)
	if st.SelectedID != "0-0" || st.EditorStep.Active != "main.go" {
		t.Fatalf("expected link 0-0 on main.go, got %+v", st)
	}

	// The second link of the same step takes over; releasing the first one
	// must not undo it.
	m.Select(1)
	st = m.StepState(0)
	if st.SelectedID != "0-1" || st.EditorStep.Active != "util.go" {
		t.Fatalf("expected link 0-1 on util.go, got %+v", st)
	}
	if f, _ := st.EditorStep.File("util.go"); f.Focus != "1[1:7]" {
		t.Errorf("expected column focus, got %q", f.Focus)
	}
}

func TestStaticSelectAcrossSteps(t *testing.T) {
	m, _ := newStatic(t)
	initial := m.StepState(0)
	untouched := m.StepState(2)

	m.Select(1)
	m.Select(2)

	if got := m.StepState(0); got.SelectedID != "" || !got.EditorStep.Equal(initial.EditorStep) {
		t.Errorf("leaving step 1 should restore it, got %+v", got)
	}
	st := m.StepState(1)
	if st.SelectedID != "1-0" {
		t.Errorf("expected 1-0 selected, got %q", st.SelectedID)
	}
	if f, _ := st.EditorStep.File("main.go"); f.Focus != "1" {
		t.Errorf("expected focus 1 on main.go, got %q", f.Focus)
	}
	if !m.StepState(2).EditorStep.Equal(untouched.EditorStep) {
		t.Error("steps without links must never change")
	}
}

func TestStaticSelectOutOfRange(t *testing.T) {
	m, _ := newStatic(t)
	m.Select(-1)
	m.Select(99)
	if m.Cursor() != -1 {
		t.Errorf("cursor moved to %d", m.Cursor())
	}
}

func TestStaticKeys(t *testing.T) {
	m, clip := newStatic(t)

	m = sendStatic(t, m, keyOf(tea.KeyTab))
	if m.Cursor() != 0 {
		t.Fatalf("tab should select the first link, got %d", m.Cursor())
	}
	m = sendStatic(t, m, keyOf(tea.KeyShiftTab))
	if m.Cursor() != 2 {
		t.Fatalf("shift+tab from the first link should wrap, got %d", m.Cursor())
	}
	if m.StepState(1).SelectedID != "1-0" {
		t.Errorf("expected step 2 focused, got %q", m.StepState(1).SelectedID)
	}

	m = sendStatic(t, m, runes("y"))
	if len(clip.got) != 1 || !strings.Contains(clip.got[0], "run()") {
		t.Errorf("expected main.go of step 2 copied, got %q", clip.got)
	}
	if m.Status() != "copied main.go" {
		t.Errorf("unexpected status %q", m.Status())
	}

	m = sendStatic(t, m, keyOf(tea.KeyEsc))
	if m.Cursor() != -1 || m.StepState(1).SelectedID != "" {
		t.Errorf("esc should release the link, cursor %d state %+v", m.Cursor(), m.StepState(1))
	}
}

func TestStaticShiftTabFromNothing(t *testing.T) {
	m, _ := newStatic(t)
	m = sendStatic(t, m, keyOf(tea.KeyShiftTab))
	if m.Cursor() != 2 {
		t.Errorf("expected the last link, got %d", m.Cursor())
	}
}

func TestStaticViewListsEverySection(t *testing.T) {
	m, _ := newStatic(t)
	m = sendStatic(t, m, tea.WindowSizeMsg{Width: 80, Height: 400})

	view := m.View()
	for _, want := range []string{"Demo tour", "Step 1/3 · Setup", "Step 2/3 · Run", "Step 3/3 · End"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected %q in view:\n%s", want, view)
		}
	}
}

func TestRenderStaticOrder(t *testing.T) {
	out, err := RenderStatic(context.Background(), parseDoc(t, demoTour), StaticOptions{MarkdownStyle: "notty", Width: 70})
	if err != nil {
		t.Fatalf("RenderStatic: %v", err)
	}

	first := strings.Index(out, "Step 1/3 · Setup")
	second := strings.Index(out, "Step 2/3 · Run")
	third := strings.Index(out, "Step 3/3 · End")
	if first < 0 || second < first || third < second {
		t.Fatalf("sections out of order (%d, %d, %d):\n%s", first, second, third, out)
	}
	if !strings.Contains(out, "run()") {
		t.Errorf("expected step 2 code in output:\n%s", out)
	}
}

func TestRenderStaticCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := RenderStatic(ctx, parseDoc(t, demoTour), StaticOptions{MarkdownStyle: "notty"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestStaticControllersConfigError(t *testing.T) {
	doc := parseDoc(t, "---\npreview: true\n---\n\n## A\n\n'''go a.go\nx\n'''\n")
	_, _, err := StaticControllers(doc)
	if !errors.Is(err, walkthrough.ErrPreviewCountMismatch) {
		t.Fatalf("expected preview count mismatch, got %v", err)
	}
	if _, err := NewStaticModel(doc, StaticOptions{}); err == nil {
		t.Error("NewStaticModel should refuse a misconfigured walkthrough")
	}
}
