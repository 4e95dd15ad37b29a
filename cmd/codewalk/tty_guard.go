package main

import (
	"os"
	"strings"
)

// init runs before lipgloss and glamour look at the terminal.
//
// Background color detection can write OSC/DSR queries to stdout. In a real
// terminal they are invisible, but they corrupt --json output piped into
// another program. Termenv skips the probing when CI is set.
func init() {
	if os.Getenv("CI") != "" {
		return
	}
	if !shouldSuppressTTYQueries(os.Args[1:], os.Getenv("CODEWALK_TEST_MODE") != "") {
		return
	}
	_ = os.Setenv("CI", "1")
}

func shouldSuppressTTYQueries(args []string, envTest bool) bool {
	if envTest {
		return true
	}
	for _, arg := range args {
		switch strings.TrimLeft(arg, "-") {
		case "json", "check", "version", "help", "h":
			if strings.HasPrefix(arg, "-") {
				return true
			}
		}
	}
	return false
}
