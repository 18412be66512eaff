package native

import (
	"runtime"
	"strings"
	"unicode"

	"github.com/mobile-next/autotype/types"
)

// key names understood by robotgo.KeyTap
var keyNames = map[types.Key]string{
	types.KeyTab:         "tab",
	types.KeyEnter:       "enter",
	types.KeySpace:       "space",
	types.KeyUp:          "up",
	types.KeyDown:        "down",
	types.KeyLeft:        "left",
	types.KeyRight:       "right",
	types.KeyInsert:      "insert",
	types.KeyDelete:      "delete",
	types.KeyHome:        "home",
	types.KeyEnd:         "end",
	types.KeyPageUp:      "pageup",
	types.KeyPageDown:    "pagedown",
	types.KeyBackspace:   "backspace",
	types.KeyPause:       "pause",
	types.KeyCapsLock:    "capslock",
	types.KeyEscape:      "esc",
	types.KeyHelp:        "help",
	types.KeyNumLock:     "num_lock",
	types.KeyPrintScreen: "printscreen",
	types.KeyScrollLock:  "scroll_lock",
}

// keyName returns the robotgo name for k, or "" when it has none.
func keyName(k types.Key) string {
	if k.IsFunctionKey() {
		return strings.ToLower(k.String())
	}
	return keyNames[k]
}

// selectAllModifier is the modifier that turns "a" into select-all.
func selectAllModifier() string {
	if runtime.GOOS == "darwin" {
		return "cmd"
	}
	return "ctrl"
}

// libuiohook modifier masks as reported in hook.Event.Mask
const (
	maskShiftL = 1 << 0
	maskCtrlL  = 1 << 1
	maskMetaL  = 1 << 2
	maskAltL   = 1 << 3
	maskShiftR = 1 << 4
	maskCtrlR  = 1 << 5
	maskMetaR  = 1 << 6
	maskAltR   = 1 << 7
)

// modifiersFromMask converts a hook event mask to a modifier set.
func modifiersFromMask(mask uint16) types.Modifier {
	var m types.Modifier
	if mask&(maskCtrlL|maskCtrlR) != 0 {
		m |= types.ModCtrl
	}
	if mask&(maskAltL|maskAltR) != 0 {
		m |= types.ModAlt
	}
	if mask&(maskShiftL|maskShiftR) != 0 {
		m |= types.ModShift
	}
	if mask&(maskMetaL|maskMetaR) != 0 {
		m |= types.ModMeta
	}
	return m
}

// shortcutMatches reports whether a key press named name, with the given
// modifier mask, triggers s. Modifiers must match exactly.
func shortcutMatches(s types.Shortcut, mask uint16, name string) bool {
	if s.IsZero() || modifiersFromMask(mask) != s.Modifiers {
		return false
	}

	if s.Key != types.KeyNone {
		return strings.EqualFold(name, keyName(s.Key)) || strings.EqualFold(name, s.Key.String())
	}

	runes := []rune(name)
	return len(runes) == 1 && unicode.ToLower(runes[0]) == s.Rune
}
