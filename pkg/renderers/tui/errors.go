package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrNoOptions reports a choice prompt with nothing to choose from.
	ErrNoOptions = errors.New("tui: no options to choose from")
)
