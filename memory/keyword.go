package memory

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/esinecan/skynet-agent-sub001/core"
)

// keywordSearch is the lexical fallback. Each candidate record accumulates
// KeywordBaseScore per keyword present as a substring plus WordBoundaryBonus
// when the keyword also matches as a whole word; the sum is scaled by the
// coverage ratio (matched keywords / total keywords). Zero-match candidates
// are dropped, the rest sorted by score descending and truncated to limit.
func keywordSearch(corpus []core.MemoryRecord, query string, limit int, cfg RetrieverConfig) []core.SearchResult {
	keywords := tokenizeQuery(query, cfg.MinKeywordLength)
	if len(keywords) == 0 || len(corpus) == 0 {
		return nil
	}

	// One boundary matcher per keyword, compiled up front.
	boundary := make([]*regexp.Regexp, len(keywords))
	for i, kw := range keywords {
		boundary[i] = regexp.MustCompile(`\b` + regexp.QuoteMeta(kw) + `\b`)
	}

	var results []core.SearchResult
	for _, rec := range corpus {
		text := strings.ToLower(rec.Text)

		var score float64
		matched := 0
		for i, kw := range keywords {
			if !strings.Contains(text, kw) {
				continue
			}
			matched++
			score += cfg.KeywordBaseScore
			if boundary[i].MatchString(text) {
				score += cfg.WordBoundaryBonus
			}
		}
		if matched == 0 {
			continue
		}

		score *= float64(matched) / float64(len(keywords))
		results = append(results, core.SearchResult{
			ID:         rec.ID,
			Text:       rec.Text,
			Score:      score,
			Metadata:   rec.Metadata,
			SearchType: core.SearchKeyword,
		})
	}

	// Equal scores order by id so repeated searches over an unchanged
	// corpus return the same list.
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ID < results[j].ID
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

// tokenizeQuery lowercases the query, strips punctuation and returns the
// distinct words longer than minLength runes.
func tokenizeQuery(query string, minLength int) []string {
	fields := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})

	seen := make(map[string]struct{}, len(fields))
	var keywords []string
	for _, f := range fields {
		if len([]rune(f)) <= minLength {
			continue
		}
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		keywords = append(keywords, f)
	}
	return keywords
}
