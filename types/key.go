package types

import (
	"fmt"
	"strings"
)

// Key identifies a logical, non-character key an executor can press.
type Key uint16

const (
	// KeyNone represents no key.
	KeyNone Key = iota

	KeyTab
	KeyEnter
	KeySpace
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyInsert
	KeyDelete
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyBackspace
	KeyPause
	KeyCapsLock
	KeyEscape
	KeyHelp
	KeyNumLock
	KeyPrintScreen
	KeyScrollLock

	// Function keys
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
	KeyF13
	KeyF14
	KeyF15
	KeyF16
)

// MaxFunctionKey is the highest function key number a sequence may name.
const MaxFunctionKey = 16

var keyNames = map[Key]string{
	KeyNone:        "None",
	KeyTab:         "Tab",
	KeyEnter:       "Enter",
	KeySpace:       "Space",
	KeyUp:          "Up",
	KeyDown:        "Down",
	KeyLeft:        "Left",
	KeyRight:       "Right",
	KeyInsert:      "Insert",
	KeyDelete:      "Delete",
	KeyHome:        "Home",
	KeyEnd:         "End",
	KeyPageUp:      "PageUp",
	KeyPageDown:    "PageDown",
	KeyBackspace:   "Backspace",
	KeyPause:       "Pause",
	KeyCapsLock:    "CapsLock",
	KeyEscape:      "Escape",
	KeyHelp:        "Help",
	KeyNumLock:     "NumLock",
	KeyPrintScreen: "PrintScreen",
	KeyScrollLock:  "ScrollLock",
}

// String returns a human-readable name for the key.
func (k Key) String() string {
	if k.IsFunctionKey() {
		return fmt.Sprintf("F%d", k-KeyF1+1)
	}
	if name, ok := keyNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Key(%d)", uint16(k))
}

// IsFunctionKey reports whether k is one of F1-F16.
func (k Key) IsFunctionKey() bool {
	return k >= KeyF1 && k <= KeyF16
}

// FunctionKey returns the key for F<n>, or KeyNone when n is out of range.
func FunctionKey(n int) Key {
	if n < 1 || n > MaxFunctionKey {
		return KeyNone
	}
	return KeyF1 + Key(n-1)
}

// KeyFromName looks up a key by its String() name, case-insensitively.
func KeyFromName(name string) Key {
	lower := strings.ToLower(name)
	if len(lower) > 1 && lower[0] == 'f' {
		var n int
		if _, err := fmt.Sscanf(lower[1:], "%d", &n); err == nil && fmt.Sprintf("f%d", n) == lower {
			return FunctionKey(n)
		}
	}
	for k, n := range keyNames {
		if k != KeyNone && strings.ToLower(n) == lower {
			return k
		}
	}
	return KeyNone
}

// MarshalText implements encoding.TextMarshaler so keys serialize by name.
func (k Key) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}
