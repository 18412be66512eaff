package database

import (
	"strings"
	"sync"

	"github.com/mobile-next/autotype/autotype"
	"github.com/mobile-next/autotype/types"
	"github.com/mobile-next/autotype/utils"
	"github.com/zalando/go-keyring"
)

const (
	// KeyringService is the service name passwords are stored under; the
	// keyring user is the entry path.
	KeyringService = "autotype"
	// KeyringMarker as a password value means "look it up in the keyring".
	KeyringMarker = "keyring"
)

// Group is a folder of entries.
type Group struct {
	name     string
	path     string
	parent   *Group
	children []*Group
	entries  []*Entry

	autoType types.TriState
	sequence string
}

func (g *Group) Name() string { return g.name }
func (g *Group) Path() string { return g.path }

func (g *Group) AutoTypeEnabled() types.TriState { return g.autoType }
func (g *Group) DefaultAutoTypeSequence() string { return g.sequence }

func (g *Group) ParentGroup() autotype.Group {
	if g.parent == nil {
		return nil
	}
	return g.parent
}

// Children returns the direct subgroups.
func (g *Group) Children() []*Group {
	return append([]*Group(nil), g.children...)
}

// Entry is a single credential.
type Entry struct {
	path     string
	title    string
	username string
	url      string
	notes    string

	passwordInKeyring bool

	passwordMu     sync.Mutex
	password       string
	passwordLoaded bool

	enabled      bool
	sequence     string
	associations []autotype.Association
	attributes   map[string]string

	group *Group
}

// Path is the entry's location, e.g. "Internet/Banking/MyBank".
func (e *Entry) Path() string { return e.path }

func (e *Entry) Title() string    { return e.title }
func (e *Entry) Username() string { return e.username }
func (e *Entry) URL() string      { return e.url }
func (e *Entry) Notes() string    { return e.notes }

// Password returns the password. When the file defers to the keyring the
// secret is read on use and kept once found; a failed lookup yields "" and
// is retried on the next call.
func (e *Entry) Password() string {
	e.passwordMu.Lock()
	defer e.passwordMu.Unlock()

	if !e.passwordInKeyring || e.passwordLoaded {
		return e.password
	}

	secret, err := keyring.Get(KeyringService, e.path)
	if err != nil {
		utils.Verbose("No keyring password for %s: %v", e.path, err)
		return ""
	}

	e.password = secret
	e.passwordLoaded = true
	return e.password
}

// PasswordInKeyring reports whether the password lives in the keyring.
func (e *Entry) PasswordInKeyring() bool { return e.passwordInKeyring }

func (e *Entry) AutoTypeEnabled() bool           { return e.enabled }
func (e *Entry) DefaultAutoTypeSequence() string { return e.sequence }

func (e *Entry) AutoTypeAssociations() []autotype.Association {
	return append([]autotype.Association(nil), e.associations...)
}

func (e *Entry) Group() autotype.Group {
	if e.group == nil {
		return nil
	}
	return e.group
}

// Attribute returns a custom attribute, matched case-insensitively.
func (e *Entry) Attribute(name string) (string, bool) {
	v, ok := e.attributes[strings.ToLower(name)]
	return v, ok
}

// ResolvePlaceholder expands {TITLE}, {USERNAME}, {PASSWORD}, {URL},
// {NOTES} and {S:<attribute>}. Anything else comes back unchanged.
func (e *Entry) ResolvePlaceholder(placeholder string) string {
	if len(placeholder) < 2 || placeholder[0] != '{' || placeholder[len(placeholder)-1] != '}' {
		return placeholder
	}

	name := placeholder[1 : len(placeholder)-1]
	switch strings.ToUpper(name) {
	case "TITLE":
		return e.title
	case "USERNAME":
		return e.username
	case "PASSWORD":
		return e.Password()
	case "URL":
		return e.url
	case "NOTES":
		return e.notes
	}

	if len(name) > 2 && strings.EqualFold(name[:2], "S:") {
		if v, ok := e.Attribute(name[2:]); ok {
			return v
		}
	}

	return placeholder
}

// SetPassword stores password for the entry at path in the keyring.
func SetPassword(path, password string) error {
	return keyring.Set(KeyringService, cleanPath(path), password)
}

// DeletePassword removes the keyring password for the entry at path.
func DeletePassword(path string) error {
	return keyring.Delete(KeyringService, cleanPath(path))
}
