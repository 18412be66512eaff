// Package testplatform is an in-memory auto-type platform. It records what
// would have been typed and lets callers script window focus, so the engine
// can run without a display.
package testplatform

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mobile-next/autotype/platform"
	"github.com/mobile-next/autotype/types"
)

const Name = "test"

func init() {
	platform.Register(Name, func() platform.Platform { return New() })
}

// Window is a fake top-level window.
type Window struct {
	ID    types.WindowID
	Title string
}

// Platform implements platform.Platform in memory.
type Platform struct {
	mu sync.Mutex

	available      bool
	initialTimeout time.Duration
	windows        []Window
	active         types.WindowID

	actions []string
	chars   strings.Builder

	raised     []types.WindowID
	hidden     []types.WindowID
	shortcuts  map[types.Shortcut]func()
	registerOK bool
	unloaded   bool

	// AfterAction runs after every executed action with the number of
	// actions executed so far. It runs without the platform lock held.
	AfterAction func(executed int)
}

// New creates an available test platform with no windows and no settle delay.
func New() *Platform {
	return &Platform{
		available:  true,
		shortcuts:  make(map[types.Shortcut]func()),
		registerOK: true,
	}
}

func (p *Platform) Name() string { return Name }

func (p *Platform) SetAvailable(available bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.available = available
}

func (p *Platform) IsAvailable() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.available
}

func (p *Platform) CreateExecutor() platform.Executor {
	return &executor{p: p}
}

func (p *Platform) SetInitialTimeout(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.initialTimeout = d
}

func (p *Platform) InitialTimeout() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.initialTimeout
}

// AddWindow adds a window and returns its id. The first window added becomes
// active.
func (p *Platform) AddWindow(title string) types.WindowID {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := types.WindowID(len(p.windows) + 1)
	p.windows = append(p.windows, Window{ID: id, Title: title})
	if p.active == 0 {
		p.active = id
	}
	return id
}

// SetActiveWindow focuses a window by id. Zero means nothing has focus.
func (p *Platform) SetActiveWindow(id types.WindowID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.active = id
}

// SetActiveWindowTitle retitles the active window, creating one if needed.
func (p *Platform) SetActiveWindowTitle(title string) {
	p.mu.Lock()
	if p.active != 0 {
		for i := range p.windows {
			if p.windows[i].ID == p.active {
				p.windows[i].Title = title
				p.mu.Unlock()
				return
			}
		}
	}
	p.mu.Unlock()
	p.SetActiveWindow(p.AddWindow(title))
}

func (p *Platform) ActiveWindow() types.WindowID {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

func (p *Platform) ActiveWindowTitle() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, w := range p.windows {
		if w.ID == p.active {
			return w.Title
		}
	}
	return ""
}

func (p *Platform) WindowTitles() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	titles := make([]string, 0, len(p.windows))
	for _, w := range p.windows {
		if w.Title != "" {
			titles = append(titles, w.Title)
		}
	}
	return titles
}

func (p *Platform) RaiseWindow(window types.WindowID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.raised = append(p.raised, window)
	for _, w := range p.windows {
		if w.ID == window {
			p.active = window
			return true
		}
	}
	return false
}

func (p *Platform) HideWindow(window types.WindowID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.hidden = append(p.hidden, window)
}

// Raised returns the windows RaiseWindow was called with.
func (p *Platform) Raised() []types.WindowID {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]types.WindowID(nil), p.raised...)
}

// Hidden returns the windows HideWindow was called with.
func (p *Platform) Hidden() []types.WindowID {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]types.WindowID(nil), p.hidden...)
}

// FailRegistration makes subsequent shortcut registrations fail.
func (p *Platform) FailRegistration(fail bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.registerOK = !fail
}

func (p *Platform) RegisterGlobalShortcut(shortcut types.Shortcut, handler func()) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.registerOK {
		return false
	}
	p.shortcuts[shortcut] = handler
	return true
}

func (p *Platform) UnregisterGlobalShortcut(shortcut types.Shortcut) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.shortcuts, shortcut)
}

// Shortcuts returns the currently registered shortcuts.
func (p *Platform) Shortcuts() []types.Shortcut {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]types.Shortcut, 0, len(p.shortcuts))
	for s := range p.shortcuts {
		out = append(out, s)
	}
	return out
}

// TriggerShortcut simulates the user pressing a registered shortcut.
func (p *Platform) TriggerShortcut(shortcut types.Shortcut) bool {
	p.mu.Lock()
	handler, ok := p.shortcuts[shortcut]
	p.mu.Unlock()
	if !ok || handler == nil {
		return false
	}
	handler()
	return true
}

// PlatformEventFilter handles string events equal to "autotype" and ignores
// everything else.
func (p *Platform) PlatformEventFilter(event interface{}) int {
	if s, ok := event.(string); ok && s == "autotype" {
		return 1
	}
	return -1
}

func (p *Platform) ProcessEvents(maxWait time.Duration) {}

func (p *Platform) Unload() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.unloaded = true
	p.shortcuts = make(map[types.Shortcut]func())
}

// Unloaded reports whether Unload was called.
func (p *Platform) Unloaded() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.unloaded
}

// Actions returns a readable log of executed actions, e.g. "a", "[Tab]",
// "[Delay 50]" or "[ClearField]".
func (p *Platform) Actions() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.actions...)
}

// ActionCount is the number of actions executed.
func (p *Platform) ActionCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.actions)
}

// ActionChars is everything typed as characters, keys rendered as [Name].
func (p *Platform) ActionChars() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.chars.String()
}

// ClearActions forgets everything recorded so far.
func (p *Platform) ClearActions() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.actions = nil
	p.chars.Reset()
}

func (p *Platform) record(action, chars string) {
	p.mu.Lock()
	p.actions = append(p.actions, action)
	p.chars.WriteString(chars)
	n := len(p.actions)
	after := p.AfterAction
	p.mu.Unlock()

	if after != nil {
		after(n)
	}
}

type executor struct {
	p *Platform
}

func (e *executor) Char(ch rune) error {
	e.p.record(string(ch), string(ch))
	return nil
}

func (e *executor) Key(key types.Key) error {
	name := "[" + key.String() + "]"
	e.p.record(name, name)
	return nil
}

func (e *executor) Delay(d time.Duration) error {
	e.p.record(fmt.Sprintf("[Delay %d]", d.Milliseconds()), "")
	return nil
}

func (e *executor) ClearField() error {
	e.p.record("[ClearField]", "")
	return nil
}
