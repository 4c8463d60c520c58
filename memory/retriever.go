package memory

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/esinecan/skynet-agent-sub001/core"
)

// RetrieverConfig names every retrieval constant. All values are
// overridable; the zero value of a field falls back to its default.
type RetrieverConfig struct {
	// TopK is the semantic search result limit.
	TopK int

	// MinScore is the similarity floor for semantic results.
	MinScore float64

	// KeywordThreshold triggers the keyword fallback when the semantic
	// result count is strictly below it.
	KeywordThreshold int

	// KeywordBaseScore is added per keyword found as a substring.
	KeywordBaseScore float64

	// WordBoundaryBonus is added when the keyword also matches on a
	// whole-word boundary.
	WordBoundaryBonus float64

	// TieBreakEpsilon is the score band inside which semantic-origin
	// results order before keyword-origin results regardless of raw score.
	TieBreakEpsilon float64

	// CorpusLimit caps the candidate corpus scanned by the fallback.
	CorpusLimit int

	// MinKeywordLength drops query tokens at or below this rune count.
	MinKeywordLength int
}

// DefaultRetrieverConfig holds the stock retrieval constants.
var DefaultRetrieverConfig = RetrieverConfig{
	TopK:              3,
	MinScore:          0.3,
	KeywordThreshold:  2,
	KeywordBaseScore:  0.3,
	WordBoundaryBonus: 0.2,
	TieBreakEpsilon:   0.1,
	CorpusLimit:       500,
	MinKeywordLength:  2,
}

func (c RetrieverConfig) withDefaults() RetrieverConfig {
	d := DefaultRetrieverConfig
	if c.TopK == 0 {
		c.TopK = d.TopK
	}
	if c.MinScore == 0 {
		c.MinScore = d.MinScore
	}
	if c.KeywordThreshold == 0 {
		c.KeywordThreshold = d.KeywordThreshold
	}
	if c.KeywordBaseScore == 0 {
		c.KeywordBaseScore = d.KeywordBaseScore
	}
	if c.WordBoundaryBonus == 0 {
		c.WordBoundaryBonus = d.WordBoundaryBonus
	}
	if c.TieBreakEpsilon == 0 {
		c.TieBreakEpsilon = d.TieBreakEpsilon
	}
	if c.CorpusLimit == 0 {
		c.CorpusLimit = d.CorpusLimit
	}
	if c.MinKeywordLength == 0 {
		c.MinKeywordLength = d.MinKeywordLength
	}
	return c
}

// Result is the retriever's output for one turn.
type Result struct {
	// ShouldRetrieve is false when the gate rejected the query; Results
	// and Context are then empty.
	ShouldRetrieve bool

	// Query is the user text the decision was made for.
	Query string

	// Results is the merged, ranked result set.
	Results []core.SearchResult

	// Context is the formatted text block for prompt injection.
	Context string
}

// Retriever decides whether to search, runs semantic search, falls back to
// keyword search, and merges the results.
type Retriever struct {
	store  Store
	config RetrieverConfig
	logger zerolog.Logger
}

// NewRetriever creates a retriever over the given store.
func NewRetriever(store Store, config RetrieverConfig, logger zerolog.Logger) *Retriever {
	return &Retriever{
		store:  store,
		config: config.withDefaults(),
		logger: logger.With().Str("component", "retriever").Logger(),
	}
}

// Retrieve runs the full gate/search/fallback/merge/filter sequence.
// Search failures degrade to an empty result set rather than propagate:
// the store error is returned so the caller can log it, but the Result is
// always usable.
func (r *Retriever) Retrieve(ctx context.Context, sessionID, query string, filters *SearchFilters) (*Result, error) {
	if !shouldRetrieve(query) {
		r.logger.Debug().Str("query", truncateLog(query, 50)).Msg("retrieval gated off")
		return &Result{ShouldRetrieve: false, Query: query}, nil
	}

	res := &Result{ShouldRetrieve: true, Query: query}

	semantic, err := r.store.Search(ctx, query, SearchOptions{
		Limit:     r.config.TopK,
		SessionID: sessionID,
		MinScore:  r.config.MinScore,
	})
	if err != nil {
		return res, fmt.Errorf("semantic search: %w", err)
	}

	// Keyword fallback fires only when semantic recall is thin.
	var keyword []core.SearchResult
	if len(semantic) < r.config.KeywordThreshold {
		corpus, err := r.store.GetAll(ctx, sessionID)
		if err != nil {
			return res, fmt.Errorf("keyword corpus scan: %w", err)
		}
		if len(corpus) > r.config.CorpusLimit {
			corpus = corpus[:r.config.CorpusLimit]
		}
		keyword = keywordSearch(corpus, query, r.config.TopK, r.config)
		r.logger.Debug().
			Int("semantic", len(semantic)).
			Int("keyword", len(keyword)).
			Msg("keyword fallback ran")
	}

	merged := mergeResults(semantic, keyword, r.config.TieBreakEpsilon)
	merged = applyFilters(merged, filters)

	res.Results = merged
	res.Context = formatContext(merged)

	r.logger.Debug().
		Str("query", truncateLog(query, 50)).
		Int("results", len(merged)).
		Msg("retrieval complete")
	return res, nil
}

// formatContext builds the prompt-injection block from merged results.
func formatContext(results []core.SearchResult) string {
	if len(results) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("=== RELEVANT MEMORIES ===\n")
	for i, res := range results {
		fmt.Fprintf(&b, "%d. %s\n", i+1, res.Text)
	}
	return b.String()
}

// applyFilters enforces conscious-memory filters. Conversational records
// pass through untouched unless the caller asked for conscious-only.
func applyFilters(results []core.SearchResult, filters *SearchFilters) []core.SearchResult {
	if filters == nil {
		return results
	}
	out := results[:0:0]
	for _, res := range results {
		if res.Metadata.Type != core.MemoryConscious {
			if !filters.ConsciousOnly {
				out = append(out, res)
			}
			continue
		}
		if !matchesConsciousFilters(res.Metadata, filters) {
			continue
		}
		out = append(out, res)
	}
	return out
}

func matchesConsciousFilters(meta core.RecordMetadata, filters *SearchFilters) bool {
	if len(filters.Tags) > 0 && !anyTagMatch(meta.Tags, filters.Tags) {
		return false
	}
	if filters.MinImportance > 0 && meta.Importance < filters.MinImportance {
		return false
	}
	if filters.MaxImportance > 0 && meta.Importance > filters.MaxImportance {
		return false
	}
	if filters.Source != "" && meta.Source != filters.Source {
		return false
	}
	return true
}

func anyTagMatch(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if h == w {
				return true
			}
		}
	}
	return false
}

// truncateLog trims text for log fields.
func truncateLog(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
