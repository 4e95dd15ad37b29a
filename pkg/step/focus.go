package step

import (
	"sort"
	"strconv"
	"strings"
)

// LineRange is an inclusive, 1-based line interval.
type LineRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// ColumnRange is an inclusive, 1-based column interval on a single line.
type ColumnRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Focus is a parsed focus token.
//
// Supported forms, separated by commas:
//
//	3        a single line
//	3:5      lines 3 through 5 (3-5 is accepted too)
//	7[5:10]  columns 5 through 10 of line 7 (several ranges: 7[1:2,6:9])
type Focus struct {
	Lines   []LineRange           `json:"lines,omitempty"`
	Columns map[int][]ColumnRange `json:"columns,omitempty"`
}

// Empty reports whether nothing is highlighted.
func (f Focus) Empty() bool {
	return len(f.Lines) == 0 && len(f.Columns) == 0
}

// Contains reports whether line (1-based) is focused, either whole or partially.
func (f Focus) Contains(line int) bool {
	for _, r := range f.Lines {
		if line >= r.Start && line <= r.End {
			return true
		}
	}
	_, ok := f.Columns[line]
	return ok
}

// ColumnsFor returns the column ranges of a partially focused line.
// A nil result with Contains(line) true means the whole line is focused.
func (f Focus) ColumnsFor(line int) []ColumnRange {
	for _, r := range f.Lines {
		if line >= r.Start && line <= r.End {
			return nil
		}
	}
	return f.Columns[line]
}

// First returns the first focused line, or 0 when nothing is focused.
func (f Focus) First() int {
	first := 0
	for _, r := range f.Lines {
		if first == 0 || r.Start < first {
			first = r.Start
		}
	}
	for line := range f.Columns {
		if first == 0 || line < first {
			first = line
		}
	}
	return first
}

// ParseFocus parses a focus token. Tokens that cannot be parsed produce an
// empty Focus so a typo in authoring degrades to "no highlight".
func ParseFocus(token string) Focus {
	f, ok := parseFocus(token)
	if !ok {
		return Focus{}
	}
	return f
}

// ValidFocus reports whether token parses cleanly. The empty token is valid.
func ValidFocus(token string) bool {
	_, ok := parseFocus(token)
	return ok
}

func parseFocus(token string) (Focus, bool) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Focus{}, true
	}

	var f Focus
	for _, part := range splitTopLevel(token) {
		part = strings.TrimSpace(part)
		if part == "" {
			return Focus{}, false
		}

		if open := strings.IndexByte(part, '['); open >= 0 {
			if !strings.HasSuffix(part, "]") {
				return Focus{}, false
			}
			line, err := strconv.Atoi(part[:open])
			if err != nil || line < 1 {
				return Focus{}, false
			}
			cols, ok := parseColumns(part[open+1 : len(part)-1])
			if !ok {
				return Focus{}, false
			}
			if f.Columns == nil {
				f.Columns = make(map[int][]ColumnRange)
			}
			f.Columns[line] = append(f.Columns[line], cols...)
			continue
		}

		start, end, ok := parseRange(part)
		if !ok {
			return Focus{}, false
		}
		f.Lines = append(f.Lines, LineRange{Start: start, End: end})
	}

	sort.Slice(f.Lines, func(i, j int) bool { return f.Lines[i].Start < f.Lines[j].Start })
	return f, true
}

func parseColumns(s string) ([]ColumnRange, bool) {
	var cols []ColumnRange
	for _, c := range strings.Split(s, ",") {
		start, end, ok := parseRange(strings.TrimSpace(c))
		if !ok {
			return nil, false
		}
		cols = append(cols, ColumnRange{Start: start, End: end})
	}
	return cols, len(cols) > 0
}

// parseRange parses "n", "a:b" or "a-b".
func parseRange(s string) (int, int, bool) {
	sep := strings.IndexAny(s, ":-")
	if sep < 0 {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return 0, 0, false
		}
		return n, n, true
	}
	a, errA := strconv.Atoi(strings.TrimSpace(s[:sep]))
	b, errB := strconv.Atoi(strings.TrimSpace(s[sep+1:]))
	if errA != nil || errB != nil || a < 1 || b < a {
		return 0, 0, false
	}
	return a, b, true
}

// splitTopLevel splits on commas that are not inside brackets.
func splitTopLevel(s string) []string {
	var parts []string
	depth, last := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[last:i])
				last = i + 1
			}
		}
	}
	return append(parts, s[last:])
}
