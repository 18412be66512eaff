package types

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Modifier is a bit set of keyboard modifiers.
type Modifier uint8

const (
	ModNone  Modifier = 0
	ModCtrl  Modifier = 1 << 0
	ModAlt   Modifier = 1 << 1
	ModShift Modifier = 1 << 2
	ModMeta  Modifier = 1 << 3
)

// Has reports whether all modifiers in m2 are set in m.
func (m Modifier) Has(m2 Modifier) bool {
	return m&m2 == m2
}

// Names returns the lowercase names of the set modifiers in a stable order.
func (m Modifier) Names() []string {
	var names []string
	if m.Has(ModCtrl) {
		names = append(names, "ctrl")
	}
	if m.Has(ModAlt) {
		names = append(names, "alt")
	}
	if m.Has(ModShift) {
		names = append(names, "shift")
	}
	if m.Has(ModMeta) {
		names = append(names, "meta")
	}
	return names
}

func (m Modifier) String() string {
	if m == ModNone {
		return "None"
	}
	names := m.Names()
	for i, n := range names {
		names[i] = strings.ToUpper(n[:1]) + n[1:]
	}
	return strings.Join(names, "+")
}

// ModifierFromName returns the modifier for a name such as "ctrl" or "cmd".
func ModifierFromName(name string) Modifier {
	switch strings.ToLower(name) {
	case "ctrl", "control", "c":
		return ModCtrl
	case "alt", "option", "opt", "a":
		return ModAlt
	case "shift", "s":
		return ModShift
	case "meta", "cmd", "command", "super", "win", "m":
		return ModMeta
	}
	return ModNone
}

// Shortcut errors
var (
	ErrEmptyShortcut      = errors.New("empty shortcut")
	ErrInvalidShortcut    = errors.New("invalid shortcut")
	ErrShortcutNoModifier = errors.New("shortcut requires at least one modifier")
)

// Shortcut is a global hotkey: a key (logical key or rune) plus modifiers.
type Shortcut struct {
	Key       Key
	Rune      rune
	Modifiers Modifier
}

// IsZero reports whether no shortcut is set.
func (s Shortcut) IsZero() bool {
	return s.Key == KeyNone && s.Rune == 0
}

// KeyName returns the lowercase name of the non-modifier key.
func (s Shortcut) KeyName() string {
	if s.Key != KeyNone {
		return strings.ToLower(s.Key.String())
	}
	return string(s.Rune)
}

func (s Shortcut) String() string {
	if s.IsZero() {
		return ""
	}
	key := s.Key.String()
	if s.Key == KeyNone {
		key = strings.ToUpper(string(s.Rune))
	}
	if s.Modifiers == ModNone {
		return key
	}
	return s.Modifiers.String() + "+" + key
}

// ParseShortcut parses "Ctrl+Alt+A" style notation.
func ParseShortcut(spec string) (Shortcut, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return Shortcut{}, ErrEmptyShortcut
	}

	// "Ctrl++" binds the plus key itself
	var parts []string
	if mods, ok := strings.CutSuffix(spec, "++"); ok {
		parts = append(strings.Split(mods, "+"), "+")
	} else {
		parts = strings.Split(spec, "+")
	}
	var s Shortcut

	// all but the last part are modifiers
	for _, p := range parts[:len(parts)-1] {
		p = strings.TrimSpace(p)
		mod := ModifierFromName(p)
		if mod == ModNone {
			return Shortcut{}, fmt.Errorf("%w: unknown modifier %q", ErrInvalidShortcut, p)
		}
		s.Modifiers |= mod
	}

	keyPart := strings.TrimSpace(parts[len(parts)-1])
	if keyPart == "" {
		return Shortcut{}, fmt.Errorf("%w: missing key in %q", ErrInvalidShortcut, spec)
	}

	if k := KeyFromName(keyPart); k != KeyNone {
		s.Key = k
	} else if utf8.RuneCountInString(keyPart) == 1 {
		r, _ := utf8.DecodeRuneInString(keyPart)
		s.Rune = unicode.ToLower(r)
	} else {
		return Shortcut{}, fmt.Errorf("%w: unknown key %q", ErrInvalidShortcut, keyPart)
	}

	if s.Modifiers == ModNone {
		return Shortcut{}, ErrShortcutNoModifier
	}

	return s, nil
}
