package platform_test

import (
	"testing"

	"github.com/mobile-next/autotype/platform"
	"github.com/mobile-next/autotype/platform/testplatform"
	"github.com/mobile-next/autotype/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_KnownPlatform(t *testing.T) {
	p, err := platform.New(testplatform.Name)
	require.NoError(t, err)
	assert.Equal(t, "test", p.Name())
	assert.True(t, p.IsAvailable())
	assert.Contains(t, platform.Names(), "test")
}

func TestNew_UnknownPlatform(t *testing.T) {
	_, err := platform.New("amiga")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown auto-type platform: amiga")
}

func TestTestPlatform_RecordsActions(t *testing.T) {
	p := testplatform.New()
	exec := p.CreateExecutor()

	require.NoError(t, exec.Char('x'))
	require.NoError(t, exec.Key(types.KeyTab))
	require.NoError(t, exec.ClearField())

	assert.Equal(t, []string{"x", "[Tab]", "[ClearField]"}, p.Actions())
	assert.Equal(t, "x[Tab]", p.ActionChars())
	assert.Equal(t, 3, p.ActionCount())

	p.ClearActions()
	assert.Equal(t, 0, p.ActionCount())
}

func TestTestPlatform_Windows(t *testing.T) {
	p := testplatform.New()
	assert.Equal(t, types.WindowID(0), p.ActiveWindow())
	assert.Equal(t, "", p.ActiveWindowTitle())

	first := p.AddWindow("Editor")
	second := p.AddWindow("Browser")
	assert.Equal(t, first, p.ActiveWindow())
	assert.Equal(t, []string{"Editor", "Browser"}, p.WindowTitles())

	assert.True(t, p.RaiseWindow(second))
	assert.Equal(t, "Browser", p.ActiveWindowTitle())
	assert.False(t, p.RaiseWindow(types.WindowID(42)))

	p.SetActiveWindowTitle("Browser - Login")
	assert.Equal(t, second, p.ActiveWindow())
	assert.Equal(t, "Browser - Login", p.ActiveWindowTitle())
}

func TestTestPlatform_Shortcuts(t *testing.T) {
	p := testplatform.New()
	s := types.Shortcut{Rune: 'a', Modifiers: types.ModCtrl | types.ModAlt}

	fired := 0
	require.True(t, p.RegisterGlobalShortcut(s, func() { fired++ }))
	assert.True(t, p.TriggerShortcut(s))
	assert.Equal(t, 1, fired)

	p.UnregisterGlobalShortcut(s)
	assert.False(t, p.TriggerShortcut(s))

	p.FailRegistration(true)
	assert.False(t, p.RegisterGlobalShortcut(s, func() {}))
}
