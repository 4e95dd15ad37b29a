package ui

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// Mode selects the player.
type Mode int

const (
	ModeDynamic Mode = iota
	ModeStatic
)

func (m Mode) String() string {
	if m == ModeStatic {
		return "static"
	}
	return "dynamic"
}

// SwapQuery decides between the dynamic and the static player from the
// terminal width, the way a media query swaps layouts.
//
//	(max-width: 100)  static at 100 columns or fewer
//	(min-width: 160)  static at 160 columns or more
//	static, dynamic   always that player
type SwapQuery struct {
	raw    string
	forced *Mode
	max    int // static when width <= max
	min    int // static when width >= min
}

// ParseSwapQuery parses a query. The empty string means always dynamic.
func ParseSwapQuery(q string) (SwapQuery, error) {
	sq := SwapQuery{raw: q}
	s := strings.ToLower(strings.TrimSpace(q))

	switch s {
	case "", "dynamic":
		m := ModeDynamic
		sq.forced = &m
		return sq, nil
	case "static":
		m := ModeStatic
		sq.forced = &m
		return sq, nil
	}

	if !strings.HasPrefix(s, "(") || !strings.HasSuffix(s, ")") {
		return sq, fmt.Errorf("invalid swap query %q", q)
	}
	feature, value, ok := strings.Cut(strings.TrimSpace(s[1:len(s)-1]), ":")
	if !ok {
		return sq, fmt.Errorf("invalid swap query %q: missing ':'", q)
	}
	n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(value), "px"))
	if err != nil || n <= 0 {
		return sq, fmt.Errorf("invalid swap query %q: bad width", q)
	}

	switch strings.TrimSpace(feature) {
	case "max-width":
		sq.max = n
	case "min-width":
		sq.min = n
	default:
		return sq, fmt.Errorf("invalid swap query %q: unknown feature %q", q, feature)
	}
	return sq, nil
}

// String returns the query as written.
func (q SwapQuery) String() string {
	return q.raw
}

// Match reports whether the static player should be used at width.
func (q SwapQuery) Match(width int) bool {
	return q.Mode(width, true) == ModeStatic
}

// Mode picks the player for a terminal of the given width. A non-interactive
// output always gets the static player.
func (q SwapQuery) Mode(width int, interactive bool) Mode {
	if !interactive {
		return ModeStatic
	}
	if q.forced != nil {
		return *q.forced
	}
	switch {
	case q.max > 0 && width <= q.max:
		return ModeStatic
	case q.min > 0 && width >= q.min:
		return ModeStatic
	default:
		return ModeDynamic
	}
}

// TerminalSize reports the size of stdout and whether it is an interactive
// terminal. Defaults to 80x24 when the size cannot be read.
func TerminalSize() (width, height int, interactive bool) {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 80, 24, false
	}
	w, h, err := term.GetSize(fd)
	if err != nil || w <= 0 {
		return 80, 24, true
	}
	return w, h, true
}

// DetectMode applies q to the current terminal.
func DetectMode(q SwapQuery) (Mode, int) {
	w, _, interactive := TerminalSize()
	return q.Mode(w, interactive), w
}
