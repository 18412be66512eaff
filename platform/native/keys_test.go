package native

import (
	"testing"

	"github.com/mobile-next/autotype/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyName(t *testing.T) {
	assert.Equal(t, "tab", keyName(types.KeyTab))
	assert.Equal(t, "esc", keyName(types.KeyEscape))
	assert.Equal(t, "f12", keyName(types.KeyF12))
	assert.Equal(t, "", keyName(types.KeyNone))
}

func TestModifiersFromMask(t *testing.T) {
	assert.Equal(t, types.ModNone, modifiersFromMask(0))
	assert.Equal(t, types.ModCtrl|types.ModAlt, modifiersFromMask(maskCtrlL|maskAltR))
	assert.Equal(t, types.ModShift|types.ModMeta, modifiersFromMask(maskShiftR|maskMetaL))
}

func TestShortcutMatches(t *testing.T) {
	ctrlAltA, err := types.ParseShortcut("Ctrl+Alt+A")
	require.NoError(t, err)
	ctrlF5, err := types.ParseShortcut("Ctrl+F5")
	require.NoError(t, err)

	tests := []struct {
		name     string
		shortcut types.Shortcut
		mask     uint16
		key      string
		want     bool
	}{
		{"exact", ctrlAltA, maskCtrlL | maskAltL, "a", true},
		{"uppercase key", ctrlAltA, maskCtrlR | maskAltL, "A", true},
		{"missing modifier", ctrlAltA, maskCtrlL, "a", false},
		{"extra modifier", ctrlAltA, maskCtrlL | maskAltL | maskShiftL, "a", false},
		{"other key", ctrlAltA, maskCtrlL | maskAltL, "b", false},
		{"named key", ctrlF5, maskCtrlL, "f5", true},
		{"zero shortcut", types.Shortcut{}, 0, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, shortcutMatches(tt.shortcut, tt.mask, tt.key))
		})
	}
}
