// Package database loads the credential file auto-type types from.
//
// The file is INI. Each "[group <path>]" section configures a group and
// each "[entry <path>]" section defines an entry inside the group named by
// its parent path. Groups mentioned only as parents are created implicitly.
//
//	[group Internet/Banking]
//	autotype = enable
//	sequence = {USERNAME}{TAB}{PASSWORD}{ENTER}
//
//	[entry Internet/Banking/MyBank]
//	username = alice
//	password = keyring
//	association.1 = *MyBank*
//	association.1.sequence = {USERNAME}{ENTER}
//	attr.PIN = 1234
package database

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/mobile-next/autotype/autotype"
	"github.com/mobile-next/autotype/types"
	"github.com/mobile-next/autotype/utils"
	"gopkg.in/ini.v1"
)

const (
	groupSectionPrefix = "group "
	entrySectionPrefix = "entry "

	associationKeyPrefix = "association."
	attributeKeyPrefix   = "attr."
)

var loadOptions = ini.LoadOptions{
	// passwords and sequences may contain ';' and '#'
	IgnoreInlineComment: true,
	IgnoreContinuation:  true,
}

// Database is a loaded credential file.
type Database struct {
	path    string
	root    *Group
	groups  map[string]*Group
	entries []*Entry
}

// Load reads the database file at path.
func Load(path string) (*Database, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read database %s: %w", path, err)
	}

	db, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database %s: %w", path, err)
	}

	db.path = path
	return db, nil
}

// Parse builds a database from INI data.
func Parse(data []byte) (*Database, error) {
	file, err := ini.LoadSources(loadOptions, data)
	if err != nil {
		return nil, err
	}

	db := &Database{
		root:   &Group{name: "", path: ""},
		groups: make(map[string]*Group),
	}
	db.groups[""] = db.root

	for _, section := range file.Sections() {
		name := section.Name()
		switch {
		case strings.HasPrefix(name, groupSectionPrefix):
			group := db.ensureGroup(cleanPath(strings.TrimPrefix(name, groupSectionPrefix)))
			group.autoType = types.ParseTriState(strings.ToLower(section.Key("autotype").String()))
			group.sequence = section.Key("sequence").String()

		case strings.HasPrefix(name, entrySectionPrefix):
			entry, err := newEntry(cleanPath(strings.TrimPrefix(name, entrySectionPrefix)), section)
			if err != nil {
				return nil, err
			}
			entry.group = db.ensureGroup(parentPath(entry.path))
			entry.group.entries = append(entry.group.entries, entry)
			db.entries = append(db.entries, entry)

		case name == ini.DefaultSection:
			if len(section.Keys()) > 0 {
				utils.Verbose("Ignoring %d keys outside of any section", len(section.Keys()))
			}

		default:
			utils.Verbose("Ignoring unknown database section [%s]", name)
		}
	}

	return db, nil
}

// Path is the file the database was loaded from; empty for parsed data.
func (db *Database) Path() string {
	return db.path
}

// Root returns the root group.
func (db *Database) Root() *Group {
	return db.root
}

// Entries returns every entry in file order.
func (db *Database) Entries() []autotype.Entry {
	out := make([]autotype.Entry, len(db.entries))
	for i, e := range db.entries {
		out[i] = e
	}
	return out
}

// AllEntries is Entries with the concrete type.
func (db *Database) AllEntries() []*Entry {
	return append([]*Entry(nil), db.entries...)
}

// Group returns the group at path.
func (db *Database) Group(path string) (*Group, bool) {
	g, ok := db.groups[cleanPath(path)]
	return g, ok
}

// FindEntry looks an entry up by path, falling back to a unique
// case-insensitive title match.
func (db *Database) FindEntry(ref string) (*Entry, error) {
	path := cleanPath(ref)
	for _, e := range db.entries {
		if e.path == path {
			return e, nil
		}
	}

	var found *Entry
	for _, e := range db.entries {
		if strings.EqualFold(e.title, ref) {
			if found != nil {
				return nil, fmt.Errorf("entry title %q is ambiguous, use the entry path", ref)
			}
			found = e
		}
	}

	if found == nil {
		return nil, fmt.Errorf("entry not found: %s", ref)
	}
	return found, nil
}

func (db *Database) ensureGroup(path string) *Group {
	if g, ok := db.groups[path]; ok {
		return g
	}

	parent := db.ensureGroup(parentPath(path))
	g := &Group{
		name:   baseName(path),
		path:   path,
		parent: parent,
	}
	parent.children = append(parent.children, g)
	db.groups[path] = g
	return g
}

func newEntry(path string, section *ini.Section) (*Entry, error) {
	if path == "" {
		return nil, fmt.Errorf("entry section [%s] has no path", section.Name())
	}

	e := &Entry{
		path:       path,
		title:      baseName(path),
		username:   section.Key("username").String(),
		url:        section.Key("url").String(),
		notes:      section.Key("notes").String(),
		sequence:   section.Key("sequence").String(),
		enabled:    section.Key("autotype").MustBool(true),
		attributes: make(map[string]string),
	}

	if section.HasKey("title") {
		e.title = section.Key("title").String()
	}

	password := section.Key("password").String()
	if password == KeyringMarker {
		e.passwordInKeyring = true
	} else {
		e.password = password
	}

	associations := make(map[int]*autotype.Association)
	for _, key := range section.Keys() {
		name := key.Name()

		if strings.HasPrefix(name, attributeKeyPrefix) {
			attr := strings.TrimPrefix(name, attributeKeyPrefix)
			e.attributes[strings.ToLower(attr)] = key.String()
			continue
		}

		if !strings.HasPrefix(name, associationKeyPrefix) {
			continue
		}

		rest := strings.TrimPrefix(name, associationKeyPrefix)
		indexPart, field, _ := strings.Cut(rest, ".")
		index, err := strconv.Atoi(indexPart)
		if err != nil {
			return nil, fmt.Errorf("entry %s: invalid association key %q", path, name)
		}

		assoc, ok := associations[index]
		if !ok {
			assoc = &autotype.Association{}
			associations[index] = assoc
		}

		switch field {
		case "":
			assoc.Window = key.String()
		case "sequence":
			assoc.Sequence = key.String()
		default:
			return nil, fmt.Errorf("entry %s: unknown association field %q", path, name)
		}
	}

	indices := make([]int, 0, len(associations))
	for index := range associations {
		indices = append(indices, index)
	}
	sort.Ints(indices)

	for _, index := range indices {
		assoc := associations[index]
		if assoc.Window == "" {
			utils.Verbose("Entry %s: association %d has no window pattern, skipping", path, index)
			continue
		}
		e.associations = append(e.associations, *assoc)
	}

	return e, nil
}

func cleanPath(path string) string {
	parts := strings.Split(path, "/")
	kept := parts[:0]
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "/")
}

func parentPath(path string) string {
	i := strings.LastIndex(path, "/")
	if i < 0 {
		return ""
	}
	return path[:i]
}

func baseName(path string) string {
	return path[strings.LastIndex(path, "/")+1:]
}
