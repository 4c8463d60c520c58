package memory

import (
	"math"
	"testing"

	"github.com/esinecan/skynet-agent-sub001/core"
)

func record(id, text string) core.MemoryRecord {
	return core.MemoryRecord{ID: id, Text: text}
}

func TestKeywordScoring(t *testing.T) {
	cfg := DefaultRetrieverConfig
	corpus := []core.MemoryRecord{
		record("a", "the quick brown fox"),
		record("b", "quicksand swallowed the map"),
		record("c", "nothing relevant here"),
	}

	// Keywords: quick, fox, jumps.
	results := keywordSearch(corpus, "quick fox jumps", 10, cfg)
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2 (zero-match candidates are dropped)", len(results))
	}

	// "a": quick and fox both match as whole words.
	// (0.3+0.2 + 0.3+0.2) * 2/3 = 0.6667.
	if results[0].ID != "a" {
		t.Fatalf("top result %q, want a", results[0].ID)
	}
	want := (cfg.KeywordBaseScore + cfg.WordBoundaryBonus) * 2 * (2.0 / 3.0)
	if math.Abs(results[0].Score-want) > 1e-9 {
		t.Errorf("score %v, want %v", results[0].Score, want)
	}
	if results[0].SearchType != core.SearchKeyword {
		t.Errorf("search type %q, want keyword", results[0].SearchType)
	}

	// "b": quick matches only as a substring of quicksand, no boundary bonus.
	// 0.3 * 1/3 = 0.1.
	want = cfg.KeywordBaseScore * (1.0 / 3.0)
	if math.Abs(results[1].Score-want) > 1e-9 {
		t.Errorf("substring-only score %v, want %v", results[1].Score, want)
	}
}

func TestKeywordSearchCaseInsensitive(t *testing.T) {
	corpus := []core.MemoryRecord{record("a", "Paris Is The Capital Of France")}
	results := keywordSearch(corpus, "PARIS capital", 10, DefaultRetrieverConfig)
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
}

func TestKeywordSearchLimit(t *testing.T) {
	corpus := []core.MemoryRecord{
		record("a", "wombat"), record("b", "wombat"),
		record("c", "wombat"), record("d", "wombat"),
	}
	results := keywordSearch(corpus, "wombat", 2, DefaultRetrieverConfig)
	if len(results) != 2 {
		t.Fatalf("got %d results, want limit of 2", len(results))
	}
}

func TestKeywordSearchDeterministicTies(t *testing.T) {
	corpus := []core.MemoryRecord{
		record("beta", "wombat"),
		record("alpha", "wombat"),
	}
	results := keywordSearch(corpus, "wombat", 10, DefaultRetrieverConfig)
	// Equal scores order by id, independent of corpus order.
	if results[0].ID != "alpha" || results[1].ID != "beta" {
		t.Errorf("tie order %q, %q; want alpha, beta", results[0].ID, results[1].ID)
	}
}

func TestTokenizeQuery(t *testing.T) {
	keywords := tokenizeQuery("What is my favorite tea, my FAVORITE?", 2)
	// "is" and "my" are too short; "favorite" deduplicates.
	want := []string{"what", "favorite", "tea"}
	if len(keywords) != len(want) {
		t.Fatalf("got %v, want %v", keywords, want)
	}
	for i := range want {
		if keywords[i] != want[i] {
			t.Errorf("keyword[%d] = %q, want %q", i, keywords[i], want[i])
		}
	}
}

func TestKeywordSearchEmptyInputs(t *testing.T) {
	if got := keywordSearch(nil, "anything substantial", 10, DefaultRetrieverConfig); got != nil {
		t.Errorf("empty corpus: got %v", got)
	}
	if got := keywordSearch([]core.MemoryRecord{record("a", "x")}, "a an is", 10, DefaultRetrieverConfig); got != nil {
		t.Errorf("no usable keywords: got %v", got)
	}
}
