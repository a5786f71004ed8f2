package prompt

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("prompt: aborted")
	// ErrNoScreen is returned by Run without a screen.
	ErrNoScreen = errors.New("prompt: screen is required")
)
