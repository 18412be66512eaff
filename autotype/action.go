package autotype

import (
	"fmt"
	"time"

	"github.com/mobile-next/autotype/platform"
	"github.com/mobile-next/autotype/types"
)

// Action is one step of a compiled auto-type sequence. The set of actions is
// closed: CharAction, KeyAction, DelayAction and ClearFieldAction.
// Actions are plain values, so copying one duplicates it.
type Action interface {
	fmt.Stringer
	isAction()
}

// CharAction types a single character.
type CharAction struct {
	Char rune
}

// KeyAction presses a logical key.
type KeyAction struct {
	Key types.Key
}

// DelayAction pauses typing.
type DelayAction struct {
	Milliseconds int
}

// ClearFieldAction empties the focused input field.
type ClearFieldAction struct{}

func (CharAction) isAction()       {}
func (KeyAction) isAction()        {}
func (DelayAction) isAction()      {}
func (ClearFieldAction) isAction() {}

func (a CharAction) String() string       { return string(a.Char) }
func (a KeyAction) String() string        { return "{" + a.Key.String() + "}" }
func (a DelayAction) String() string      { return fmt.Sprintf("{DELAY %d}", a.Milliseconds) }
func (a ClearFieldAction) String() string { return "{CLEARFIELD}" }

// Duration returns the pause as a time.Duration.
func (a DelayAction) Duration() time.Duration {
	return time.Duration(a.Milliseconds) * time.Millisecond
}

// Sequence is an ordered list of actions produced by ParseSequence.
type Sequence []Action

// Text returns the characters typed by the sequence, ignoring keys, delays
// and field clears.
func (s Sequence) Text() string {
	var out []rune
	for _, a := range s {
		if c, ok := a.(CharAction); ok {
			out = append(out, c.Char)
		}
	}
	return string(out)
}

// String renders the sequence back in template notation.
func (s Sequence) String() string {
	var out string
	for _, a := range s {
		out += a.String()
	}
	return out
}

// execute runs a single action against an executor.
func execute(exec platform.Executor, a Action) error {
	switch a := a.(type) {
	case CharAction:
		return exec.Char(a.Char)
	case KeyAction:
		return exec.Key(a.Key)
	case DelayAction:
		return exec.Delay(a.Duration())
	case ClearFieldAction:
		return exec.ClearField()
	default:
		return fmt.Errorf("unsupported auto-type action %T", a)
	}
}
