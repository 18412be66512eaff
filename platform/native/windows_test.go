package native

import (
	"errors"
	"testing"

	"github.com/mobile-next/autotype/types"
	"github.com/stretchr/testify/assert"
)

// fakeWindows models top-level windows by handle; pid is tracked only to
// show that windows of one process stay distinct.
type fakeWindows struct {
	active    int
	titles    map[int]string
	pids      map[int]int
	activated []int
	minimized []int
}

func (f *fakeWindows) ActiveHandle() int       { return f.active }
func (f *fakeWindows) Title(handle int) string { return f.titles[handle] }

func (f *fakeWindows) Activate(handle int) error {
	if _, ok := f.titles[handle]; !ok {
		return errors.New("no such window")
	}
	f.activated = append(f.activated, handle)
	f.active = handle
	return nil
}

func (f *fakeWindows) Minimize(handle int) {
	f.minimized = append(f.minimized, handle)
}

func newBrowserWindows() *fakeWindows {
	return &fakeWindows{
		active: 0x3a00001,
		titles: map[int]string{
			0x3a00001: "MyBank Login - Browser",
			0x3a00007: "Forum - Browser",
		},
		pids: map[int]int{
			0x3a00001: 4242,
			0x3a00007: 4242,
		},
	}
}

func TestActiveWindow_DistinguishesWindowsOfOneProcess(t *testing.T) {
	windows := newBrowserWindows()
	p := &Platform{windows: windows}

	target := p.ActiveWindow()
	assert.Equal(t, types.WindowID(0x3a00001), target)
	assert.Equal(t, "MyBank Login - Browser", p.ActiveWindowTitle())

	// focus moves to another window of the same browser process
	windows.active = 0x3a00007
	assert.Equal(t, windows.pids[0x3a00001], windows.pids[0x3a00007])
	assert.NotEqual(t, target, p.ActiveWindow())
	assert.Equal(t, "Forum - Browser", p.ActiveWindowTitle())
}

func TestActiveWindow_NoFocus(t *testing.T) {
	p := &Platform{windows: &fakeWindows{}}

	assert.Equal(t, types.WindowID(0), p.ActiveWindow())
	assert.Equal(t, "", p.ActiveWindowTitle())
}

func TestRaiseAndHideWindow_UseHandles(t *testing.T) {
	windows := newBrowserWindows()
	p := &Platform{windows: windows}

	assert.True(t, p.RaiseWindow(types.WindowID(0x3a00007)))
	assert.Equal(t, []int{0x3a00007}, windows.activated)
	assert.Equal(t, types.WindowID(0x3a00007), p.ActiveWindow())

	assert.False(t, p.RaiseWindow(types.WindowID(0x999)))
	assert.False(t, p.RaiseWindow(0))

	p.HideWindow(types.WindowID(0x3a00001))
	p.HideWindow(0)
	assert.Equal(t, []int{0x3a00001}, windows.minimized)
}
