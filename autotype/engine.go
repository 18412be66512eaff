package autotype

import (
	"fmt"
	"sync"
	"time"

	"github.com/mobile-next/autotype/platform"
	"github.com/mobile-next/autotype/types"
	"github.com/mobile-next/autotype/utils"
)

// DefaultYieldTimeout is how long the host event loop may run between two
// actions.
const DefaultYieldTimeout = 10 * time.Millisecond

// Config holds the user settings auto-type consults.
type Config struct {
	// AskBeforeTyping shows the selection even for a single global match.
	AskBeforeTyping bool
	// EntryTitleMatch lets global auto-type fall back to matching the
	// entry title inside the window title.
	EntryTitleMatch bool
	// InitialDelay overrides the platform settle delay when positive.
	InitialDelay time.Duration
	// YieldTimeout bounds each yield to the host between actions.
	YieldTimeout time.Duration
	// PatternCacheSize bounds the compiled window pattern cache.
	PatternCacheSize int
}

// State is where the engine is in an auto-type session.
type State int

const (
	StateIdle State = iota
	// StateMatching is a global auto-type scanning entries.
	StateMatching
	// StateAwaitingSelection waits for the user to pick one of several
	// global matches.
	StateAwaitingSelection
	// StateDispatching is typing.
	StateDispatching
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateMatching:
		return "matching"
	case StateAwaitingSelection:
		return "awaiting_selection"
	case StateDispatching:
		return "dispatching"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Engine runs auto-type against one platform. Only one session runs at a
// time; a session spans a pending selection.
type Engine struct {
	platform platform.Platform
	executor platform.Executor
	cfg      Config
	selector Selector

	mu       sync.Mutex
	state    State
	pending  *pendingSelection
	chooser  Chooser
	notifier Notifier

	shortcutMu      sync.Mutex
	shortcut        types.Shortcut
	shortcutHandler func()
}

// New creates an engine. A nil or unavailable platform leaves the engine
// without one: every operation then does nothing.
func New(p platform.Platform, cfg Config) *Engine {
	if cfg.YieldTimeout <= 0 {
		cfg.YieldTimeout = DefaultYieldTimeout
	}

	matcher := NewMatcher(cfg.PatternCacheSize)
	e := &Engine{
		cfg:      cfg,
		selector: Selector{Matcher: matcher, EntryTitleMatch: cfg.EntryTitleMatch},
		notifier: logNotifier{},
	}

	if p == nil {
		utils.Warn("No auto-type platform loaded, auto-type is disabled")
		return e
	}

	if !p.IsAvailable() {
		utils.Warn("Auto-type platform %s is not available, auto-type is disabled", p.Name())
		p.Unload()
		return e
	}

	executor := p.CreateExecutor()
	if executor == nil {
		utils.Warn("Auto-type platform %s has no executor, auto-type is disabled", p.Name())
		p.Unload()
		return e
	}

	utils.Verbose("Loaded auto-type platform %s", p.Name())
	e.platform = p
	e.executor = executor
	return e
}

// Available reports whether a usable platform is loaded.
func (e *Engine) Available() bool {
	return e.platform != nil
}

// PlatformName returns the loaded platform name or "".
func (e *Engine) PlatformName() string {
	if e.platform == nil {
		return ""
	}
	return e.platform.Name()
}

func (e *Engine) Config() Config {
	return e.cfg
}

// Selector returns the selector the engine matches entries with.
func (e *Engine) Selector() Selector {
	return e.selector
}

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// SetChooser installs the surface that lets the user pick between several
// global matches. Without one, such a session is cancelled at once.
func (e *Engine) SetChooser(c Chooser) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.chooser = c
}

// SetNotifier installs where user-visible notices go. Nil restores logging.
func (e *Engine) SetNotifier(n Notifier) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if n == nil {
		n = logNotifier{}
	}
	e.notifier = n
}

// ActiveWindowTitle returns the title of the focused window, or "".
func (e *Engine) ActiveWindowTitle() string {
	if e.platform == nil {
		return ""
	}
	return e.platform.ActiveWindowTitle()
}

// WindowTitles lists top-level window titles.
func (e *Engine) WindowTitles() []string {
	if e.platform == nil {
		return []string{}
	}
	return e.platform.WindowTitles()
}

// CallEventFilter hands a native event to the platform. Negative means it
// was not handled.
func (e *Engine) CallEventFilter(event interface{}) int {
	if e.platform == nil {
		return -1
	}
	return e.platform.PlatformEventFilter(event)
}

// RegisterGlobalShortcut binds shortcut to handler, replacing any previous
// binding. Registering the bound shortcut again only swaps the handler.
func (e *Engine) RegisterGlobalShortcut(shortcut types.Shortcut, handler func()) bool {
	if e.platform == nil {
		return false
	}
	if shortcut.Modifiers == types.ModNone {
		utils.Warn("Refusing to register global shortcut %s without modifiers", shortcut)
		return false
	}

	e.shortcutMu.Lock()
	defer e.shortcutMu.Unlock()

	if !e.shortcut.IsZero() && e.shortcut == shortcut {
		e.shortcutHandler = handler
		return true
	}

	if !e.shortcut.IsZero() {
		e.platform.UnregisterGlobalShortcut(e.shortcut)
		e.shortcut = types.Shortcut{}
		e.shortcutHandler = nil
	}

	if !e.platform.RegisterGlobalShortcut(shortcut, e.fireShortcut) {
		utils.Warn("Failed to register global shortcut %s", shortcut)
		return false
	}

	utils.Verbose("Registered global shortcut %s", shortcut)
	e.shortcut = shortcut
	e.shortcutHandler = handler
	return true
}

// UnregisterGlobalShortcut drops the current binding, if any.
func (e *Engine) UnregisterGlobalShortcut() {
	if e.platform == nil {
		return
	}

	e.shortcutMu.Lock()
	defer e.shortcutMu.Unlock()

	if e.shortcut.IsZero() {
		return
	}
	e.platform.UnregisterGlobalShortcut(e.shortcut)
	e.shortcut = types.Shortcut{}
	e.shortcutHandler = nil
}

// GlobalShortcut returns the bound shortcut; zero when none.
func (e *Engine) GlobalShortcut() types.Shortcut {
	e.shortcutMu.Lock()
	defer e.shortcutMu.Unlock()
	return e.shortcut
}

func (e *Engine) fireShortcut() {
	e.shortcutMu.Lock()
	handler := e.shortcutHandler
	e.shortcutMu.Unlock()

	if handler != nil {
		handler()
	}
}

// Close releases the shortcut and unloads the platform. A pending selection
// is dropped.
func (e *Engine) Close() error {
	e.UnregisterGlobalShortcut()

	e.mu.Lock()
	if e.state == StateAwaitingSelection {
		e.state = StateIdle
		e.pending = nil
	}
	e.mu.Unlock()

	if e.platform != nil {
		e.platform.Unload()
	}
	return nil
}

// begin moves from Idle to next. It fails with ErrBusy when a session is
// already running.
func (e *Engine) begin(next State) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StateIdle {
		return ErrBusy
	}
	e.state = next
	return nil
}

func (e *Engine) finish() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = StateIdle
	e.pending = nil
}

func (e *Engine) initialDelay() time.Duration {
	if e.cfg.InitialDelay > 0 {
		return e.cfg.InitialDelay
	}
	return e.platform.InitialTimeout()
}

// logNotifier is the Notifier used when nothing else was installed.
type logNotifier struct{}

func (logNotifier) Notify(title, message string) {
	utils.Info("%s: %s", title, message)
}
