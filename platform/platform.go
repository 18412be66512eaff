package platform

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/mobile-next/autotype/types"
)

// Executor synthesizes input into whatever window currently has focus.
type Executor interface {
	Char(ch rune) error
	Key(key types.Key) error
	Delay(d time.Duration) error
	ClearField() error
}

// Platform is the OS-specific side of auto-type: window queries, window
// activation, global shortcuts and the factory for an Executor.
type Platform interface {
	Name() string
	IsAvailable() bool
	CreateExecutor() Executor

	// InitialTimeout is how long to wait before typing so focus changes
	// caused by hiding our own window can settle.
	InitialTimeout() time.Duration

	ActiveWindow() types.WindowID
	ActiveWindowTitle() string
	WindowTitles() []string

	RaiseWindow(window types.WindowID) bool
	// HideWindow gets the invoking window out of the way, either by
	// minimizing it or by raising whatever was active before it.
	HideWindow(window types.WindowID)

	RegisterGlobalShortcut(shortcut types.Shortcut, handler func()) bool
	UnregisterGlobalShortcut(shortcut types.Shortcut)

	// PlatformEventFilter inspects a native event. Negative means not handled.
	PlatformEventFilter(event interface{}) int

	// ProcessEvents gives the host event loop up to maxWait to run.
	ProcessEvents(maxWait time.Duration)

	Unload()
}

// Factory builds a Platform.
type Factory func() Platform

var (
	factoriesMu sync.RWMutex
	factories   = make(map[string]Factory)
)

// Register makes a platform available by name. Backends call this from init
// or the program root calls it explicitly.
func Register(name string, factory Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[name] = factory
}

// New creates the platform registered under name.
func New(name string) (Platform, error) {
	factoriesMu.RLock()
	factory, exists := factories[name]
	factoriesMu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("unknown auto-type platform: %s (available: %v)", name, Names())
	}

	return factory(), nil
}

// Names lists registered platform names, sorted.
func Names() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
