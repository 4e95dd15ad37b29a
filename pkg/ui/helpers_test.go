package ui

import (
	"testing"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

func TestTruncateRunesHelper(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxWidth int
		want     string
	}{
		{name: "zero max", input: "hello", maxWidth: 0, want: ""},
		{name: "fits", input: "hello", maxWidth: 10, want: "hello"},
		{name: "ellipsis", input: "hello world", maxWidth: 6, want: "hello…"},
		{name: "wide runes", input: "日本語のテキスト", maxWidth: 7, want: "日本語…"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncateRunesHelper(tt.input, tt.maxWidth, "…")
			if got != tt.want {
				t.Fatalf("truncateRunesHelper(%q, %d) = %q; want %q", tt.input, tt.maxWidth, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Fatalf("output is not valid UTF-8: %q", got)
			}
			if w := runewidth.StringWidth(got); w > tt.maxWidth {
				t.Fatalf("output is %d cells wide; max %d", w, tt.maxWidth)
			}
		})
	}
}

func TestTruncateLeft(t *testing.T) {
	tests := []struct {
		input    string
		maxWidth int
		want     string
	}{
		{"pkg/server/", 20, "pkg/server/"},
		{"pkg/server/", 7, "…erver/"},
		{"pkg/server/", 2, "…/"},
		{"pkg/server/", 0, ""},
	}
	for _, tt := range tests {
		if got := truncateLeft(tt.input, tt.maxWidth); got != tt.want {
			t.Errorf("truncateLeft(%q, %d) = %q; want %q", tt.input, tt.maxWidth, got, tt.want)
		}
	}
}

func TestSplitTitle(t *testing.T) {
	folder, file := SplitTitle("pkg/server/handler.go")
	if folder != "pkg/server/" || file != "handler.go" {
		t.Errorf("got %q %q", folder, file)
	}
	folder, file = SplitTitle("main.go")
	if folder != "" || file != "main.go" {
		t.Errorf("got %q %q", folder, file)
	}
}

func TestTabTitle(t *testing.T) {
	theme := TestTheme()

	tests := []struct {
		title    string
		maxWidth int
		want     string
	}{
		{"pkg/server/handler.go", 40, "pkg/server/handler.go"},
		{"pkg/server/handler.go", 12, "…/handler.go"},
		{"pkg/server/handler.go", 10, "handler.go"},
		{"pkg/server/handler.go", 8, "handler…"},
		{"main.go", 3, "ma…"},
		{"", 10, ""},
	}
	for _, tt := range tests {
		if got := TabTitle(theme, tt.title, tt.maxWidth); got != tt.want {
			t.Errorf("TabTitle(%q, %d) = %q; want %q", tt.title, tt.maxWidth, got, tt.want)
		}
	}
}

func TestClamp(t *testing.T) {
	if clamp(-1, 0, 5) != 0 || clamp(9, 0, 5) != 5 || clamp(3, 0, 5) != 3 {
		t.Error("clamp out of bounds")
	}
}
