package crawler

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// termMatcher tests text for a case-insensitive substring.
//
// Design decision: We lower-case with x/text/cases instead of
// strings.ToLower so that language-neutral Unicode case mapping is applied
// to both sides the same way (final sigma, for example).
// A cases.Caser is not safe for concurrent use, so every search builds its
// own matcher.
type termMatcher struct {
	caser cases.Caser
	term  string
}

func newTermMatcher(term string) *termMatcher {
	caser := cases.Lower(language.Und)
	return &termMatcher{
		caser: caser,
		term:  caser.String(term),
	}
}

// Match reports whether text contains the term, ignoring case.
func (m *termMatcher) Match(text string) bool {
	return strings.Contains(m.caser.String(text), m.term)
}
