package ui

import (
	"strings"
	"sync"
	"testing"
)

func TestMarkdownRendererStripsFocusTargets(t *testing.T) {
	r := NewMarkdownRenderer(60, "notty")
	out := r.Render("Look at [the handler](focus:server.go#3:5) and [docs](https://example.com).")

	if strings.Contains(out, "focus:") {
		t.Errorf("focus target leaked into output:\n%s", out)
	}
	if !strings.Contains(out, "the handler") {
		t.Errorf("link text lost:\n%s", out)
	}
	if !strings.Contains(out, "example.com") {
		t.Errorf("regular links should be kept:\n%s", out)
	}
}

func TestMarkdownRendererWidth(t *testing.T) {
	r := NewMarkdownRenderer(5, "notty")
	if r.Width() != 20 {
		t.Errorf("expected minimum width 20, got %d", r.Width())
	}
	r.SetWidth(50)
	if r.Width() != 50 {
		t.Errorf("expected width 50, got %d", r.Width())
	}
}

func TestMarkdownRendererBadStyleFallsBack(t *testing.T) {
	r := NewMarkdownRenderer(40, "no-such-style")
	if out := r.Render("# Title"); !strings.Contains(out, "Title") {
		t.Errorf("expected fallback rendering, got %q", out)
	}
}

func TestMarkdownRendererConcurrent(t *testing.T) {
	r := NewMarkdownRenderer(40, "notty")
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if out := r.Render("some *text*"); !strings.Contains(out, "text") {
				t.Errorf("unexpected output %q", out)
			}
		}()
	}
	wg.Wait()
}
