package ui

import (
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/codewalk/pkg/walkthrough"
)

func TestDefaultTheme(t *testing.T) {
	renderer := lipgloss.NewRenderer(nil)
	theme := DefaultTheme(renderer)

	if theme.Renderer != renderer {
		t.Error("DefaultTheme renderer mismatch")
	}
	if theme.Primary.Light == "" && theme.Primary.Dark == "" {
		t.Error("DefaultTheme Primary color is empty")
	}
}

func TestChromaStyle(t *testing.T) {
	if got := ChromaStyle(nil); got != "dracula" {
		t.Errorf("ChromaStyle(nil) = %q", got)
	}
}

func TestRenderProgressDots(t *testing.T) {
	out := RenderProgressDots(1, 3, 20)
	if strings.Count(out, "●") != 1 || strings.Count(out, "○") != 2 {
		t.Errorf("unexpected dots %q", out)
	}
	if out := RenderProgressDots(4, 30, 20); !strings.Contains(out, "5/30") {
		t.Errorf("expected badge fallback, got %q", out)
	}
	if RenderProgressDots(0, 0, 20) != "" {
		t.Error("no steps should render nothing")
	}
}

func TestRenderDivider(t *testing.T) {
	if RenderDivider(0) != "" {
		t.Error("zero width divider should be empty")
	}
	if got := lipgloss.Width(RenderDivider(12)); got != 12 {
		t.Errorf("divider width = %d", got)
	}
}

func TestRenderAutoplayBadge(t *testing.T) {
	if !strings.Contains(RenderAutoplayBadge(true), "autoplay") {
		t.Error("running badge")
	}
	if !strings.Contains(RenderAutoplayBadge(false), "paused") {
		t.Error("paused badge")
	}
}

func TestPickWalkthroughShortcuts(t *testing.T) {
	if _, err := PickWalkthrough(nil); !errors.Is(err, ErrNoWalkthroughs) {
		t.Errorf("expected ErrNoWalkthroughs, got %v", err)
	}
	path, err := PickWalkthrough([]walkthrough.Candidate{{Path: "/tmp/a.md", Title: "A", Steps: 2}})
	if err != nil || path != "/tmp/a.md" {
		t.Errorf("single candidate should be returned directly, got %q %v", path, err)
	}
}
