// Package debug provides conditional debug logging for codewalk.
//
// Debug logging is enabled by setting the CODEWALK_DEBUG environment variable:
//
//	CODEWALK_DEBUG=1 codewalk tour.md
//
// While the TUI owns the terminal, stderr output would tear the screen, so a
// value that is not a plain boolean is treated as a log file path:
//
//	CODEWALK_DEBUG=/tmp/codewalk.log codewalk tour.md
//
// When disabled (default), all debug functions are no-ops.
package debug

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"
)

const prefix = "[CW_DEBUG] "

var (
	mu      sync.Mutex
	enabled bool
	logger  *log.Logger
	closer  io.Closer
)

func init() {
	configure(os.Getenv("CODEWALK_DEBUG"))
}

func configure(v string) {
	v = strings.TrimSpace(v)
	switch strings.ToLower(v) {
	case "", "0", "false", "no", "off":
		return
	case "1", "true", "yes", "on":
		SetOutput(os.Stderr)
		return
	}
	f, err := os.OpenFile(v, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		SetOutput(os.Stderr)
		Log("cannot open debug log %s: %v", v, err)
		return
	}
	SetOutput(f)
	closer = f
}

// Enabled returns whether debug logging is enabled.
func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return enabled
}

// SetEnabled allows programmatic control of debug logging.
func SetEnabled(e bool) {
	mu.Lock()
	defer mu.Unlock()
	enabled = e
	if e && logger == nil {
		logger = log.New(os.Stderr, prefix, log.Ltime|log.Lmicroseconds)
	}
}

// SetOutput enables logging to w.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logger = log.New(w, prefix, log.Ltime|log.Lmicroseconds)
	enabled = true
}

// Close flushes and closes a log file opened from CODEWALK_DEBUG.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if closer == nil {
		return nil
	}
	err := closer.Close()
	closer = nil
	enabled = false
	return err
}

// Log writes a debug message if debug logging is enabled.
// Uses printf-style formatting.
func Log(format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if !enabled {
		return
	}
	logger.Printf(format, args...)
}

// LogTiming writes a timing message if debug logging is enabled.
func LogTiming(name string, d time.Duration) {
	Log("%s took %v", name, d)
}

// LogIf writes a debug message only if the condition is true.
func LogIf(cond bool, format string, args ...any) {
	if !cond {
		return
	}
	Log(format, args...)
}

// LogEnterExit logs function entry and exit with timing.
//
//	func load() {
//	    defer debug.LogEnterExit("load")()
//	}
func LogEnterExit(name string) func() {
	if !Enabled() {
		return func() {}
	}
	Log("-> %s", name)
	start := time.Now()
	return func() {
		Log("<- %s (%v)", name, time.Since(start))
	}
}

// Dump logs a value with its type for debugging complex structures.
func Dump(name string, v any) {
	if !Enabled() {
		return
	}
	Log("%s", fmt.Sprintf("%s: %T = %+v", name, v, v))
}
