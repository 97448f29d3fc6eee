// Package scan finds textual usages of changed identifiers in files on disk.
package scan

import (
	"regexp"
	"sync"
)

// UsageMatcher decides whether (and where) an identifier occurs in file
// content. It is an interface so the regexp heuristic below can be swapped
// for a real tokenizer without touching the analyzer.
type UsageMatcher interface {
	// FirstMatch returns the 0-based index of the first line containing the
	// identifier, or -1 when it does not occur.
	FirstMatch(lines []string, identifier string) int
}

// RegexpMatcher matches the literal identifier with a word boundary applied
// only on the side(s) where the identifier itself starts/ends with a word
// character. "getUser" therefore does not match inside "getUserById", while
// "/api/users" matches without a spurious boundary requirement before the
// slash. This is a best-effort heuristic, not exact token matching: when one
// side of the identifier is a non-word character, that side accepts any
// neighbor.
type RegexpMatcher struct {
	mu    sync.Mutex
	cache map[string]*regexp.Regexp
}

// NewRegexpMatcher creates a RegexpMatcher with an empty pattern cache.
func NewRegexpMatcher() *RegexpMatcher {
	return &RegexpMatcher{cache: make(map[string]*regexp.Regexp)}
}

// FirstMatch implements UsageMatcher.
func (m *RegexpMatcher) FirstMatch(lines []string, identifier string) int {
	re := m.pattern(identifier)
	if re == nil {
		return -1
	}
	for i, line := range lines {
		if re.MatchString(line) {
			return i
		}
	}
	return -1
}

func (m *RegexpMatcher) pattern(identifier string) *regexp.Regexp {
	m.mu.Lock()
	defer m.mu.Unlock()

	if re, ok := m.cache[identifier]; ok {
		return re
	}

	expr := regexp.QuoteMeta(identifier)
	runes := []rune(identifier)
	if len(runes) > 0 && isWordRune(runes[0]) {
		expr = `\b` + expr
	}
	if len(runes) > 0 && isWordRune(runes[len(runes)-1]) {
		expr = expr + `\b`
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		// QuoteMeta makes this unreachable for any input, but a nil entry
		// keeps a bad identifier from being recompiled on every file.
		m.cache[identifier] = nil
		return nil
	}
	m.cache[identifier] = re
	return re
}

func isWordRune(r rune) bool {
	return r == '_' ||
		(r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9')
}
