package memory

import (
	"math"
	"sort"

	"github.com/esinecan/skynet-agent-sub001/core"
)

// mergeResults unions the semantic and keyword result sets keyed by record
// id. On an id collision the semantic entry wins and the keyword duplicate
// is discarded. The merged list sorts by score descending, except that two
// entries whose scores differ by less than epsilon order semantic-first
// regardless of the raw comparison.
func mergeResults(semantic, keyword []core.SearchResult, epsilon float64) []core.SearchResult {
	seen := make(map[string]struct{}, len(semantic))
	merged := make([]core.SearchResult, 0, len(semantic)+len(keyword))

	for _, res := range semantic {
		res.SearchType = core.SearchSemantic
		seen[res.ID] = struct{}{}
		merged = append(merged, res)
	}
	for _, res := range keyword {
		if _, dup := seen[res.ID]; dup {
			continue
		}
		res.SearchType = core.SearchKeyword
		merged = append(merged, res)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		a, b := merged[i], merged[j]
		if math.Abs(a.Score-b.Score) < epsilon && a.SearchType != b.SearchType {
			return a.SearchType == core.SearchSemantic
		}
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return a.ID < b.ID
	})

	return merged
}
