// Package scrolly keeps the visible step of a walkthrough in sync with the
// things that move it: the autoplay timer, file tab clicks and inline focus
// links.
//
// Two owners implement the same focus-update contract. StaticController holds
// the local state of one step when every step is rendered side by side.
// DynamicController holds the single shared view when one editor morphs as the
// active step changes.
package scrolly

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrIndexOutOfRange = errors.New("step index out of range")
	ErrNoSteps         = errors.New("walkthrough has no editor steps")
	ErrAlreadyStarted  = errors.New("autoplay already started")
	ErrMissingID       = errors.New("focus request has no id")
)

// ConfigError reports malformed authoring input such as a step index outside
// the editor step list. It is returned to the caller, never corrected.
type ConfigError struct {
	Op    string // entry point that rejected the input
	Index int    // offending index
	Count int    // number of editor steps
	Err   error  // underlying sentinel
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: index %d with %d steps: %v", e.Op, e.Index, e.Count, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

func checkIndex(op string, index, count int) error {
	if count == 0 {
		return &ConfigError{Op: op, Index: index, Count: count, Err: ErrNoSteps}
	}
	if index < 0 || index >= count {
		return &ConfigError{Op: op, Index: index, Count: count, Err: ErrIndexOutOfRange}
	}
	return nil
}
