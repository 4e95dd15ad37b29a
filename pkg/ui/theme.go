package ui

import (
	"os"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"
)

// TermProfile holds the detected terminal color profile. Computed once at
// package init so every style helper can branch without re-detecting.
var TermProfile colorprofile.Profile

func init() {
	TermProfile = colorprofile.Detect(os.Stdout, os.Environ())
}

// ThemeFg returns the given hex color for ANSI256+ terminals and a safe
// ANSI white (color 7) for 16-color or lower terminals.
func ThemeFg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.ANSI256 {
		return lipgloss.ANSIColor(7)
	}
	return lipgloss.Color(hex)
}

// ChromaStyle returns the chroma style name matching the terminal background.
func ChromaStyle(r *lipgloss.Renderer) string {
	if r != nil && !r.HasDarkBackground() {
		return "github"
	}
	return "dracula"
}

// Theme holds the styles shared by the dynamic and static views.
type Theme struct {
	Renderer *lipgloss.Renderer

	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Subtext   lipgloss.AdaptiveColor
	Border    lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor
	Muted     lipgloss.AdaptiveColor

	Base   lipgloss.Style
	Header lipgloss.Style
	Title  lipgloss.Style
	Status lipgloss.Style
	Error  lipgloss.Style

	// Code panel
	Tab        lipgloss.Style
	TabActive  lipgloss.Style
	TabFolder  lipgloss.Style
	LineNumber lipgloss.Style
	Dimmed     lipgloss.Style // code outside the focus
	Marked     lipgloss.Style // focused columns

	// Narrative
	Link       lipgloss.Style
	LinkActive lipgloss.Style
	Preview    lipgloss.Style
	Panel      lipgloss.Style
}

// DefaultTheme returns the standard Dracula-inspired theme (adaptive).
func DefaultTheme(r *lipgloss.Renderer) Theme {
	t := Theme{
		Renderer: r,

		Primary:   ColorPrimary,
		Secondary: ColorSecondary,
		Subtext:   ColorSubtext,
		Border:    ColorBgHighlight,
		Highlight: ColorBgHighlight,
		Muted:     ColorMuted,
	}

	t.Base = r.NewStyle().Foreground(ColorText)

	t.Header = r.NewStyle().
		Background(t.Primary).
		Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#282A36"}).
		Bold(true).
		Padding(0, 1)

	t.Title = r.NewStyle().Foreground(t.Primary).Bold(true)
	t.Status = r.NewStyle().Foreground(t.Subtext)
	t.Error = r.NewStyle().Foreground(ColorDanger).Bold(true)

	t.Tab = r.NewStyle().Foreground(t.Muted).Padding(0, 1)
	t.TabActive = r.NewStyle().
		Foreground(ColorText).
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(t.Primary).
		Bold(true).
		Padding(0, 1)
	t.TabFolder = r.NewStyle().Foreground(t.Muted)
	t.LineNumber = r.NewStyle().Foreground(t.Muted)
	t.Dimmed = r.NewStyle().Foreground(t.Muted).Faint(true)
	t.Marked = r.NewStyle().Background(t.Highlight).Bold(true)

	t.Link = r.NewStyle().Foreground(ColorInfo).Underline(true)
	t.LinkActive = r.NewStyle().
		Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#282A36"}).
		Background(ColorInfo).
		Bold(true)
	t.Preview = r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorSuccess).
		Padding(0, 1)
	t.Panel = PanelStyle

	return t
}

// TestTheme returns a theme suitable for use in tests.
func TestTheme() Theme {
	return DefaultTheme(lipgloss.NewRenderer(os.Stdout))
}
