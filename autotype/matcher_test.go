package autotype

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWindowMatches(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		pattern string
		want    bool
	}{
		{"wildcard both sides", "Mozilla Firefox", "*Firefox*", true},
		{"wildcard suffix", "Mozilla Firefox", "Mozilla*", true},
		{"wildcard case insensitive", "Mozilla Firefox", "*FIREFOX", true},
		{"wildcard must cover whole title", "Mozilla Firefox", "Firefox", false},
		{"exact without wildcard", "Mozilla Firefox", "mozilla firefox", true},
		{"wildcard middle", "Bank of Nowhere - Login", "Bank*Login", true},
		{"wildcard ordered parts", "Login - Bank", "Bank*Login", false},
		{"wildcard metacharacters are literal", "a.b (c)", "a.b (c)", true},
		{"wildcard dot is not any char", "axb", "a.b", false},
		{"regex anchored", "Mozilla Firefox", "//^Moz.*fox$//", true},
		{"regex case insensitive", "Mozilla Firefox", "//^moz.*FOX$//", true},
		{"regex anywhere", "Mozilla Firefox", "//zilla F//", true},
		{"regex no match", "Mozilla Firefox", "//^Firefox//", false},
		{"malformed regex", "Mozilla Firefox", "//(unclosed//", false},
		{"too short for regex is wildcard", "///", "///", true},
		{"empty regex body is wildcard", "Mozilla", "////", false},
		{"empty pattern", "Mozilla", "", false},
		{"empty pattern empty title", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WindowMatches(tt.title, tt.pattern))
		})
	}
}

func TestMatcher_CachesPatterns(t *testing.T) {
	m := NewMatcher(2)

	assert.True(t, m.Matches("Mozilla Firefox", "*Firefox*"))
	assert.False(t, m.Matches("Chromium", "*Firefox*"))
	assert.Equal(t, 1, m.Len())

	// invalid patterns are cached too and keep failing quietly
	assert.False(t, m.Matches("x", "//[//"))
	assert.False(t, m.Matches("x", "//[//"))
	assert.Equal(t, 2, m.Len())

	// the cache is bounded
	m.Matches("x", "*x*")
	assert.Equal(t, 2, m.Len())
}

func TestNewMatcher_DefaultSize(t *testing.T) {
	m := NewMatcher(0)
	assert.True(t, m.Matches("abc", "a*"))
}
