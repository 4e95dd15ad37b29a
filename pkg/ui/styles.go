package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ══════════════════════════════════════════════════════════════════════════════
// COLOR PALETTE - Adaptive colors for light and dark terminals
// Light mode colors tuned for WCAG AA compliance (contrast ratio >= 4.5:1)
// ══════════════════════════════════════════════════════════════════════════════

var (
	ColorBgSubtle    = lipgloss.AdaptiveColor{Light: "#E8E8E8", Dark: "#363949"}
	ColorBgHighlight = lipgloss.AdaptiveColor{Light: "#D0D0D0", Dark: "#44475A"}
	ColorText        = lipgloss.AdaptiveColor{Light: "#1A1A1A", Dark: "#F8F8F2"}
	ColorSubtext     = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#BFBFBF"}
	ColorMuted       = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#6272A4"}

	ColorPrimary   = lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"}
	ColorSecondary = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"}
	ColorInfo      = lipgloss.AdaptiveColor{Light: "#006080", Dark: "#8BE9FD"}
	ColorSuccess   = lipgloss.AdaptiveColor{Light: "#007700", Dark: "#50FA7B"}
	ColorWarning   = lipgloss.AdaptiveColor{Light: "#B06800", Dark: "#FFB86C"}
	ColorDanger    = lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"}
)

// ══════════════════════════════════════════════════════════════════════════════
// PANEL STYLES
// ══════════════════════════════════════════════════════════════════════════════

var (
	// PanelStyle frames the narrative and code panels.
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBgHighlight)

	// FocusedPanelStyle marks the panel that receives the link cursor.
	FocusedPanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorPrimary)
)

// RenderStepBadge renders "3/7" for the step indicator.
func RenderStepBadge(index, total int) string {
	return lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Background(ColorBgSubtle).
		Bold(true).
		Padding(0, 1).
		Render(fmt.Sprintf("%d/%d", index+1, total))
}

// RenderAutoplayBadge shows whether autoplay is running.
func RenderAutoplayBadge(running bool) string {
	if running {
		return lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true).Render("▶ autoplay")
	}
	return lipgloss.NewStyle().Foreground(ColorMuted).Render("⏸ paused")
}

// RenderProgressDots renders one dot per step with the current one filled.
func RenderProgressDots(index, total, maxWidth int) string {
	if total <= 0 || maxWidth <= 0 {
		return ""
	}
	if total*2 > maxWidth {
		return RenderStepBadge(index, total)
	}
	var sb strings.Builder
	for i := 0; i < total; i++ {
		if i == index {
			sb.WriteString(lipgloss.NewStyle().Foreground(ColorPrimary).Render("●"))
		} else {
			sb.WriteString(lipgloss.NewStyle().Foreground(ColorMuted).Render("○"))
		}
		if i < total-1 {
			sb.WriteByte(' ')
		}
	}
	return sb.String()
}

// RenderDivider renders a horizontal divider line
func RenderDivider(width int) string {
	if width <= 0 {
		return ""
	}
	return lipgloss.NewStyle().
		Foreground(ColorBgHighlight).
		Render(strings.Repeat("─", width))
}
