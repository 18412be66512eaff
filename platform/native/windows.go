package native

import "github.com/go-vgo/robotgo"

// robotgo treats a trailing argument to its window calls as "the first
// argument is a window handle, not a pid"
const handleMode = 1

// windowSystem is the slice of the desktop window API the platform needs.
// Windows are addressed by native handle.
type windowSystem interface {
	ActiveHandle() int
	Title(handle int) string
	Activate(handle int) error
	Minimize(handle int)
}

type robotgoWindows struct{}

func (robotgoWindows) ActiveHandle() int {
	return robotgo.GetHandle()
}

func (robotgoWindows) Title(handle int) string {
	return robotgo.GetTitle(handle, handleMode)
}

func (robotgoWindows) Activate(handle int) error {
	return robotgo.ActivePid(handle, handleMode)
}

func (robotgoWindows) Minimize(handle int) {
	robotgo.MinWindow(handle, true, true)
}
