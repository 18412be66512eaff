package autotype

import (
	"strings"

	"github.com/mobile-next/autotype/types"
)

// Association binds a window title pattern to an override sequence. An empty
// Sequence means the entry's default sequence is used.
type Association struct {
	Window   string `json:"window" yaml:"window"`
	Sequence string `json:"sequence,omitempty" yaml:"sequence,omitempty"`
}

// Entry is a credential as seen by auto-type.
type Entry interface {
	PlaceholderResolver

	Title() string
	Username() string
	Password() string

	AutoTypeEnabled() bool
	DefaultAutoTypeSequence() string
	// AutoTypeAssociations are checked in order; the first match wins.
	AutoTypeAssociations() []Association

	// Group returns nil for entries outside any group.
	Group() Group
}

// Group is a node in the tree entries live in.
type Group interface {
	AutoTypeEnabled() types.TriState
	DefaultAutoTypeSequence() string
	// ParentGroup returns nil for the root.
	ParentGroup() Group
}

// Source is a set of entries global auto-type searches, usually one open
// database.
type Source interface {
	Entries() []Entry
}

// Selector picks the sequence an entry types into a window.
type Selector struct {
	Matcher *Matcher
	// EntryTitleMatch lets an entry whose title appears in the window
	// title match even when none of its associations do.
	EntryTitleMatch bool
}

var defaultSelector = Selector{Matcher: defaultMatcher}

// SequenceFor selects with the shared matcher and no title fallback.
func SequenceFor(entry Entry, windowTitle string) string {
	return defaultSelector.Select(entry, windowTitle)
}

// Select returns the sequence template for entry, or "" when auto-type must
// not run. An empty windowTitle selects for a manual invocation where no
// window matching is done.
func (s Selector) Select(entry Entry, windowTitle string) string {
	if !entry.AutoTypeEnabled() {
		return ""
	}

	var sequence string
	if windowTitle == "" {
		sequence = entry.DefaultAutoTypeSequence()
	} else {
		var matched bool
		sequence, matched = s.matchWindow(entry, windowTitle)
		if !matched {
			return ""
		}
	}

	enableSet := false
	for group := entry.Group(); group != nil; group = group.ParentGroup() {
		if !enableSet {
			switch group.AutoTypeEnabled() {
			case types.Disable:
				return ""
			case types.Enable:
				enableSet = true
			}
		}

		if sequence == "" {
			sequence = group.DefaultAutoTypeSequence()
		}

		if enableSet && sequence != "" {
			break
		}
	}

	if sequence == "" {
		sequence = synthesizeSequence(entry.Username() != "", entry.Password() != "")
	}

	return sequence
}

func (s Selector) matchWindow(entry Entry, windowTitle string) (string, bool) {
	matcher := s.Matcher
	if matcher == nil {
		matcher = defaultMatcher
	}

	for _, assoc := range entry.AutoTypeAssociations() {
		if matcher.Matches(windowTitle, assoc.Window) {
			if assoc.Sequence != "" {
				return assoc.Sequence, true
			}
			return entry.DefaultAutoTypeSequence(), true
		}
	}

	title := entry.Title()
	if s.EntryTitleMatch && title != "" &&
		strings.Contains(strings.ToLower(windowTitle), strings.ToLower(title)) {
		return entry.DefaultAutoTypeSequence(), true
	}

	return "", false
}

func synthesizeSequence(hasUsername, hasPassword bool) string {
	switch {
	case hasUsername && hasPassword:
		return "{USERNAME}{TAB}{PASSWORD}{ENTER}"
	case hasUsername:
		return "{USERNAME}{ENTER}"
	case hasPassword:
		return "{PASSWORD}{ENTER}"
	default:
		return ""
	}
}
