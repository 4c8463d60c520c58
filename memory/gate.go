package memory

import (
	"regexp"
	"strings"
)

// The retrieval gate rejects inputs that never benefit from recall:
// exact-match greetings and farewells, identity questions, basic
// arithmetic, and meta "what can you do" questions. Everything else
// proceeds to search.

var trivialExact = map[string]struct{}{
	"hello":        {},
	"hi":           {},
	"hey":          {},
	"yo":           {},
	"good morning": {},
	"good evening": {},
	"good night":   {},
	"goodbye":      {},
	"bye":          {},
	"see you":      {},
	"thanks":       {},
	"thank you":    {},
	"ok":           {},
	"okay":         {},
}

var trivialPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(who|what) are you$`),
	regexp.MustCompile(`^what('s| is) your name$`),
	regexp.MustCompile(`^what can you do$`),
	regexp.MustCompile(`^(help|help me)$`),
	regexp.MustCompile(`^how are you( doing)?$`),
	// Bare arithmetic, e.g. "2+2" or "what is 3 * 4".
	regexp.MustCompile(`^(what is |what's )?\d+(\.\d+)?(\s*[-+*/^]\s*\d+(\.\d+)?)+$`),
}

// shouldRetrieve is the retrieval gate.
func shouldRetrieve(query string) bool {
	normalized := normalizeQuery(query)
	if normalized == "" {
		return false
	}
	if _, ok := trivialExact[normalized]; ok {
		return false
	}
	for _, re := range trivialPatterns {
		if re.MatchString(normalized) {
			return false
		}
	}
	return true
}

func normalizeQuery(query string) string {
	q := strings.ToLower(strings.TrimSpace(query))
	return strings.TrimRight(q, " !.?")
}
