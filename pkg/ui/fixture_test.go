package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/codewalk/pkg/walkthrough"
)

const demoTour = `---
title: Demo tour
---

## Setup

Open [main](focus:main.go#2) then [util](focus:util.go#1[1:7]).

'''go main.go
package main
func main() {}
'''

'''go util.go focus=1
package util
'''

---

## Run

Back to [the top](focus:main.go#1).

'''go main.go focus=2
package main
func main() { run() }
'''

---

## End

Done.
`

func parseDoc(t *testing.T, src string) *walkthrough.Document {
	t.Helper()
	doc, err := walkthrough.Parse([]byte(strings.ReplaceAll(src, "'''", "```")))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return doc
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func keyOf(k tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: k}
}

// fakeClipboard records what the players copy.
type fakeClipboard struct {
	got []string
	err error
}

func (c *fakeClipboard) write(s string) error {
	if c.err != nil {
		return c.err
	}
	c.got = append(c.got, s)
	return nil
}
