package autotype

import (
	"regexp"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/mobile-next/autotype/utils"
)

// DefaultPatternCacheSize bounds the number of compiled window patterns kept.
const DefaultPatternCacheSize = 256

const regexDelimiter = "//"

// Matcher decides whether window titles match association patterns.
// Compiled patterns are cached; a pattern that fails to compile is cached as
// nil and never matches.
type Matcher struct {
	cache *lru.Cache[string, *regexp.Regexp]
}

// NewMatcher creates a matcher caching up to size compiled patterns.
func NewMatcher(size int) *Matcher {
	if size <= 0 {
		size = DefaultPatternCacheSize
	}
	// lru.New only fails for non-positive sizes
	cache, _ := lru.New[string, *regexp.Regexp](size)
	return &Matcher{cache: cache}
}

var defaultMatcher = NewMatcher(DefaultPatternCacheSize)

// WindowMatches reports whether title matches pattern using a shared matcher.
func WindowMatches(title, pattern string) bool {
	return defaultMatcher.Matches(title, pattern)
}

// Matches reports whether title matches pattern.
//
// A pattern wrapped in "//" is a case-insensitive regular expression that may
// match anywhere in the title. Anything else is a case-insensitive wildcard
// pattern where '*' matches any run of characters and which must cover the
// whole title.
func (m *Matcher) Matches(title, pattern string) bool {
	re := m.compile(pattern)
	if re == nil {
		return false
	}
	return re.MatchString(title)
}

// Len returns the number of cached patterns.
func (m *Matcher) Len() int {
	return m.cache.Len()
}

func (m *Matcher) compile(pattern string) *regexp.Regexp {
	if re, ok := m.cache.Get(pattern); ok {
		return re
	}

	var expr string
	if isRegexPattern(pattern) {
		expr = "(?i)" + pattern[len(regexDelimiter):len(pattern)-len(regexDelimiter)]
	} else {
		expr = wildcardToRegexp(pattern)
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		utils.Verbose("Ignoring invalid window pattern %q: %v", pattern, err)
		re = nil
	}

	m.cache.Add(pattern, re)
	return re
}

func isRegexPattern(pattern string) bool {
	return len(pattern) > 2*len(regexDelimiter) &&
		strings.HasPrefix(pattern, regexDelimiter) &&
		strings.HasSuffix(pattern, regexDelimiter)
}

func wildcardToRegexp(pattern string) string {
	parts := strings.Split(pattern, "*")
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	return "(?is)^" + strings.Join(parts, ".*") + "$"
}
