package autotype

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/mobile-next/autotype/types"
)

const (
	// MaxDelay bounds both {DELAY=N} and {DELAY N}, in milliseconds.
	MaxDelay = 10000
	// MaxRepeat bounds {NAME N} for everything except delay.
	MaxRepeat = 100
)

// PlaceholderResolver expands credential placeholders such as "{USERNAME}".
// Returning the placeholder unchanged means it is unknown.
type PlaceholderResolver interface {
	ResolvePlaceholder(placeholder string) string
}

var (
	delayRegexp    = regexp.MustCompile(`(?i)^delay=(\d+)$`)
	repeatRegexp   = regexp.MustCompile(`(?is)^(.+) (\d+)$`)
	functionRegexp = regexp.MustCompile(`(?i)^f(\d+)$`)
)

var namedKeys = map[string]types.Key{
	"tab":        types.KeyTab,
	"enter":      types.KeyEnter,
	"space":      types.KeySpace,
	"up":         types.KeyUp,
	"down":       types.KeyDown,
	"left":       types.KeyLeft,
	"right":      types.KeyRight,
	"insert":     types.KeyInsert,
	"ins":        types.KeyInsert,
	"delete":     types.KeyDelete,
	"del":        types.KeyDelete,
	"home":       types.KeyHome,
	"end":        types.KeyEnd,
	"pgup":       types.KeyPageUp,
	"pgdown":     types.KeyPageDown,
	"backspace":  types.KeyBackspace,
	"bs":         types.KeyBackspace,
	"bksp":       types.KeyBackspace,
	"break":      types.KeyPause,
	"capslock":   types.KeyCapsLock,
	"esc":        types.KeyEscape,
	"help":       types.KeyHelp,
	"numlock":    types.KeyNumLock,
	"ptrsc":      types.KeyPrintScreen,
	"scrolllock": types.KeyScrollLock,
}

// keypad names are typed as their plain characters
var namedChars = map[string]rune{
	"add":      '+',
	"+":        '+',
	"subtract": '-',
	"multiply": '*',
	"divide":   '/',
	"^":        '^',
	"%":        '%',
	"~":        '~',
	"(":        '(',
	")":        ')',
	"{":        '{',
	"}":        '}',
}

// templateResult is what a single {token} compiles to.
type templateResult struct {
	actions []Action
	// delay is the new pending delay when the token was {DELAY=N}.
	delay    int
	delaySet bool
}

// resolveTemplate compiles the inside of one {token}.
func resolveTemplate(token string, resolver PlaceholderResolver) templateResult {
	if m := delayRegexp.FindStringSubmatch(token); m != nil {
		return templateResult{delay: clamp(atoiSaturating(m[1]), 0, MaxDelay), delaySet: true}
	}

	name := token
	count := -1

	if m := repeatRegexp.FindStringSubmatch(token); m != nil {
		name = m[1]
		count = atoiSaturating(m[2])

		if count == 0 {
			return templateResult{}
		}
		// some safety checks
		if strings.EqualFold(name, "delay") {
			if count > MaxDelay {
				return templateResult{}
			}
		} else if count > MaxRepeat {
			return templateResult{}
		}
	}

	if action, ok := lookupAction(name); ok {
		actions := []Action{action}
		for i := 1; i < count; i++ {
			actions = append(actions, action)
		}
		return templateResult{actions: actions}
	}

	if strings.EqualFold(name, "delay") && count > 0 {
		return templateResult{actions: []Action{DelayAction{Milliseconds: count}}}
	}

	if strings.EqualFold(name, "clearfield") {
		return templateResult{actions: []Action{ClearFieldAction{}}}
	}

	return templateResult{actions: resolvePlaceholder(name, resolver)}
}

// lookupAction resolves the fixed key, keypad and function key tables.
func lookupAction(name string) (Action, bool) {
	lower := strings.ToLower(name)

	if key, ok := namedKeys[lower]; ok {
		return KeyAction{Key: key}, true
	}

	if ch, ok := namedChars[lower]; ok {
		return CharAction{Char: ch}, true
	}

	if m := functionRegexp.FindStringSubmatch(name); m != nil {
		if key := types.FunctionKey(atoiSaturating(m[1])); key != types.KeyNone {
			return KeyAction{Key: key}, true
		}
	}

	return nil, false
}

func resolvePlaceholder(name string, resolver PlaceholderResolver) []Action {
	if resolver == nil {
		return nil
	}

	placeholder := "{" + name + "}"
	resolved := resolver.ResolvePlaceholder(placeholder)
	if resolved == placeholder {
		return nil
	}

	actions := make([]Action, 0, len(resolved))
	for _, ch := range resolved {
		switch ch {
		case '\n':
			actions = append(actions, KeyAction{Key: types.KeyEnter})
		case '\t':
			actions = append(actions, KeyAction{Key: types.KeyTab})
		default:
			actions = append(actions, CharAction{Char: ch})
		}
	}
	return actions
}

// atoiSaturating parses a run of ASCII digits; values too large for an int
// saturate so the range checks above reject or clamp them.
func atoiSaturating(digits string) int {
	n, err := strconv.Atoi(digits)
	if err != nil {
		return int(^uint(0) >> 1)
	}
	return n
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
