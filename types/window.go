package types

// WindowID is an opaque platform window handle. Zero means "no window".
type WindowID uint64

// TriState is a group-level setting that may defer to its parent.
type TriState int

const (
	Inherit TriState = iota
	Enable
	Disable
)

func (t TriState) String() string {
	switch t {
	case Enable:
		return "enable"
	case Disable:
		return "disable"
	default:
		return "inherit"
	}
}

// ParseTriState accepts inherit/enable/disable and the usual boolean spellings.
// Anything unrecognized is Inherit.
func ParseTriState(s string) TriState {
	switch s {
	case "enable", "enabled", "true", "yes", "on", "1":
		return Enable
	case "disable", "disabled", "false", "no", "off", "0":
		return Disable
	default:
		return Inherit
	}
}
