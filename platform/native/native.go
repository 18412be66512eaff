// Package native is the desktop auto-type backend. Keystrokes and window
// control go through robotgo; the global shortcut listens on a gohook
// event loop.
package native

import (
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/go-vgo/robotgo"
	"github.com/mobile-next/autotype/platform"
	"github.com/mobile-next/autotype/types"
	"github.com/mobile-next/autotype/utils"
	hook "github.com/robotn/gohook"
)

const (
	Name = "robotgo"

	// focus changes from hiding our own window need time to land
	initialTimeout = 500 * time.Millisecond
)

func init() {
	platform.Register(Name, func() platform.Platform { return New() })
}

// Platform implements platform.Platform on top of robotgo and gohook.
type Platform struct {
	windows windowSystem

	mu       sync.Mutex
	shortcut types.Shortcut
	handler  func()
	done     chan struct{}
}

func New() *Platform {
	return &Platform{windows: robotgoWindows{}}
}

func (p *Platform) Name() string { return Name }

// IsAvailable reports whether a display robotgo can drive is present.
// Wayland sessions without XWayland are not.
func (p *Platform) IsAvailable() bool {
	if runtime.GOOS != "linux" {
		return true
	}
	return os.Getenv("DISPLAY") != ""
}

func (p *Platform) CreateExecutor() platform.Executor {
	return executor{}
}

func (p *Platform) InitialTimeout() time.Duration {
	return initialTimeout
}

// ActiveWindow returns the native handle (X11 window id, HWND, or the
// macOS window reference) of the focused window, so two windows of one
// process are told apart.
func (p *Platform) ActiveWindow() types.WindowID {
	h := p.windows.ActiveHandle()
	if h <= 0 {
		return 0
	}
	return types.WindowID(h)
}

func (p *Platform) ActiveWindowTitle() string {
	h := p.windows.ActiveHandle()
	if h <= 0 {
		return ""
	}
	return p.windows.Title(h)
}

func (p *Platform) WindowTitles() []string {
	pids, err := robotgo.Pids()
	if err != nil {
		utils.Verbose("Failed to list processes: %v", err)
		return []string{}
	}

	seen := make(map[string]bool)
	titles := []string{}
	for _, pid := range pids {
		title := robotgo.GetTitle(pid)
		if title == "" || seen[title] {
			continue
		}
		seen[title] = true
		titles = append(titles, title)
	}
	return titles
}

func (p *Platform) RaiseWindow(window types.WindowID) bool {
	if window == 0 {
		return false
	}
	if err := p.windows.Activate(int(window)); err != nil {
		utils.Verbose("Failed to raise window %d: %v", window, err)
		return false
	}
	return true
}

func (p *Platform) HideWindow(window types.WindowID) {
	if window == 0 {
		return
	}
	p.windows.Minimize(int(window))
}

// RegisterGlobalShortcut starts the hook loop on first use. Later calls only
// swap the shortcut the loop matches against.
func (p *Platform) RegisterGlobalShortcut(shortcut types.Shortcut, handler func()) bool {
	if shortcut.IsZero() || handler == nil {
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.shortcut = shortcut
	p.handler = handler

	if p.done == nil {
		p.done = make(chan struct{})
		go p.listen(hook.Start(), p.done)
		utils.Verbose("Started global shortcut listener")
	}

	return true
}

func (p *Platform) UnregisterGlobalShortcut(shortcut types.Shortcut) {
	p.mu.Lock()
	if p.shortcut != shortcut {
		p.mu.Unlock()
		return
	}
	p.shortcut = types.Shortcut{}
	p.handler = nil
	p.mu.Unlock()

	p.stopListener()
}

func (p *Platform) stopListener() {
	p.mu.Lock()
	done := p.done
	p.done = nil
	p.mu.Unlock()

	if done == nil {
		return
	}

	hook.End()
	<-done
	utils.Verbose("Stopped global shortcut listener")
}

func (p *Platform) listen(events chan hook.Event, done chan struct{}) {
	defer close(done)
	for ev := range events {
		p.PlatformEventFilter(ev)
	}
}

// PlatformEventFilter fires the shortcut handler for a matching key press
// and returns 1; any other event returns -1.
func (p *Platform) PlatformEventFilter(event interface{}) int {
	ev, ok := event.(hook.Event)
	if !ok || ev.Kind != hook.KeyDown {
		return -1
	}

	name := hook.RawcodetoKeychar(ev.Rawcode)
	if name == "" && ev.Keychar != hook.CharUndefined {
		name = string(ev.Keychar)
	}

	p.mu.Lock()
	shortcut, handler := p.shortcut, p.handler
	p.mu.Unlock()

	if handler == nil || !shortcutMatches(shortcut, ev.Mask, name) {
		return -1
	}

	// the handler types keystrokes, which must not block the hook thread
	go handler()
	return 1
}

// ProcessEvents has no host event loop to pump; it waits so the target
// application can consume what was typed.
func (p *Platform) ProcessEvents(maxWait time.Duration) {
	if maxWait > 0 {
		robotgo.MilliSleep(int(maxWait.Milliseconds()))
	}
}

func (p *Platform) Unload() {
	p.mu.Lock()
	p.shortcut = types.Shortcut{}
	p.handler = nil
	p.mu.Unlock()

	p.stopListener()
}

type executor struct{}

func (executor) Char(ch rune) error {
	robotgo.TypeStr(string(ch))
	return nil
}

func (executor) Key(key types.Key) error {
	name := keyName(key)
	if name == "" {
		return fmt.Errorf("key %s has no keystroke on this platform", key)
	}
	return robotgo.KeyTap(name)
}

func (executor) Delay(d time.Duration) error {
	robotgo.MilliSleep(int(d.Milliseconds()))
	return nil
}

func (executor) ClearField() error {
	if err := robotgo.KeyTap("a", selectAllModifier()); err != nil {
		return fmt.Errorf("failed to select field: %w", err)
	}
	return robotgo.KeyTap("backspace")
}
