package autotype

import (
	"errors"
	"fmt"
)

var (
	// ErrSyntax is wrapped by every *SyntaxError.
	ErrSyntax = errors.New("syntax error in auto-type sequence")

	// ErrInterrupted is wrapped by *InterruptedError.
	ErrInterrupted = errors.New("active window changed, interrupting auto-type")

	// ErrNoMatch is returned by a global auto-type that found no entry.
	ErrNoMatch = errors.New("couldn't find an entry that matches the window title")

	// ErrUnavailable means no usable platform is loaded; nothing was typed.
	ErrUnavailable = errors.New("auto-type is not available on this platform")

	// ErrBusy means another auto-type session is in flight; nothing was typed.
	ErrBusy = errors.New("auto-type already in progress")

	// ErrNoSelection is returned when confirming or cancelling a selection
	// that is not the one currently pending.
	ErrNoSelection = errors.New("no matching auto-type selection is pending")
)

// SyntaxError reports an unbalanced brace in a sequence.
type SyntaxError struct {
	Sequence string
	Offset   int // rune offset of the offending character
	Reason   string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s at offset %d: %s", ErrSyntax, e.Offset, e.Reason)
}

func (e *SyntaxError) Unwrap() error {
	return ErrSyntax
}

// InterruptedError reports a dispatch that stopped because focus moved away
// from the target window. Actions already executed are not undone.
type InterruptedError struct {
	Executed int
	Total    int
}

func (e *InterruptedError) Error() string {
	return fmt.Sprintf("%s after %d of %d actions", ErrInterrupted, e.Executed, e.Total)
}

func (e *InterruptedError) Unwrap() error {
	return ErrInterrupted
}
