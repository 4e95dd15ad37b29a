package ui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// truncateRunesHelper truncates a string to max visual width (cells), adding suffix if needed.
// Uses go-runewidth to handle wide characters correctly.
func truncateRunesHelper(s string, maxWidth int, suffix string) string {
	if maxWidth <= 0 {
		return ""
	}

	width := runewidth.StringWidth(s)
	if width <= maxWidth {
		return s
	}

	suffixWidth := runewidth.StringWidth(suffix)
	if suffixWidth > maxWidth {
		// Even suffix is too wide, truncate suffix
		return runewidth.Truncate(suffix, maxWidth, "")
	}

	targetWidth := maxWidth - suffixWidth
	return runewidth.Truncate(s, targetWidth, "") + suffix
}

// truncateLeft keeps the end of s, prefixing "…" when cells were dropped.
func truncateLeft(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	runes := []rune(s)
	width := 1 // the ellipsis
	start := len(runes)
	for start > 0 {
		w := runewidth.RuneWidth(runes[start-1])
		if width+w > maxWidth {
			break
		}
		width += w
		start--
	}
	return "…" + string(runes[start:])
}

// SplitTitle splits a file name into its folder (with trailing slash) and
// base name.
func SplitTitle(title string) (folder, file string) {
	i := strings.LastIndex(title, "/") + 1
	return title[:i], title[i:]
}

// TabTitle renders the active file header: the folder dimmed, the file name
// in full. When the title does not fit, the folder is cut from the left first
// and the file name only as a last resort.
func TabTitle(t Theme, title string, maxWidth int) string {
	if title == "" || maxWidth <= 0 {
		return ""
	}
	folder, file := SplitTitle(title)

	fileWidth := runewidth.StringWidth(file)
	if fileWidth >= maxWidth {
		return t.Title.Render(truncateRunesHelper(file, maxWidth, "…"))
	}
	folder = truncateLeft(folder, maxWidth-fileWidth)
	if folder == "" {
		return t.Title.Render(file)
	}
	return t.TabFolder.Render(folder) + t.Title.Render(file)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
