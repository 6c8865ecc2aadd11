package scraper

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// DefaultTolerance is the edit-distance threshold for the fuzzy pass.
// Small enough that distinct short names do not collide, large enough to
// absorb punctuation, whitespace and diacritic differences.
const DefaultTolerance = 3

// Matcher decides whether a claimed reviewer name can be attributed to a
// fetched review page.
type Matcher struct {
	tolerance int
}

// NewMatcher creates a Matcher. Non-positive tolerances fall back to
// DefaultTolerance; the tolerance is fixed per Matcher, never per call.
func NewMatcher(tolerance int) *Matcher {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	return &Matcher{tolerance: tolerance}
}

// Match reports whether the claimed name matches the page.
//
// A case-insensitive substring hit anywhere in the body text is an
// immediate match, covering names that appear outside any parsed
// structural element. Otherwise each structural candidate is compared by
// edit distance against the tolerance. With no candidates at all the
// substring test is the only fallback, a deliberately weaker check on
// heavily client-rendered pages.
func (m *Matcher) Match(claimed string, candidates []string, bodyText string) bool {
	needle := strings.ToLower(strings.TrimSpace(claimed))
	if needle == "" {
		return false
	}

	if strings.Contains(strings.ToLower(bodyText), needle) {
		return true
	}

	for _, candidate := range candidates {
		distance := levenshtein.ComputeDistance(needle, strings.ToLower(strings.TrimSpace(candidate)))
		if distance <= m.tolerance {
			return true
		}
	}

	return false
}
