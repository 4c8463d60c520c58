package memory

import (
	"context"

	"github.com/esinecan/skynet-agent-sub001/core"
)

// Store is the memory storage backend.
//
// Implementations own the similarity index; the retriever only sees query
// text and scored results. ChromemStore is the SDK-provided implementation;
// production deployments can swap in a remote vector database behind the
// same interface.
type Store interface {
	// Store saves a new record and returns its id. Records are immutable
	// after creation.
	Store(ctx context.Context, text string, meta core.RecordMetadata) (string, error)

	// Search returns records semantically similar to the query, sorted by
	// score descending. Results are tagged SearchSemantic.
	Search(ctx context.Context, query string, opts SearchOptions) ([]core.SearchResult, error)

	// GetAll returns the raw record corpus, session-scoped when sessionID
	// is non-empty. The keyword fallback scans this corpus.
	GetAll(ctx context.Context, sessionID string) ([]core.MemoryRecord, error)

	// Close releases resources.
	Close() error
}

// SearchOptions scope a semantic search.
type SearchOptions struct {
	// Limit caps the number of results.
	Limit int

	// SessionID restricts the search to one session's records when set.
	SessionID string

	// MinScore drops results below this similarity floor.
	MinScore float64
}

// Embedder converts text to vector embeddings.
//
// Implementations: onnx (local MiniLM), mock (deterministic, for tests).
// The Embedder is an implementation detail of Store; the retriever and the
// engine never touch it directly.
type Embedder interface {
	// Embed converts a single text to an embedding vector.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the embedding vector size.
	Dimensions() int
}

// SearchFilters restrict retrieval results. The filters only bind on
// conscious memories; plain conversational memories pass through unless
// ConsciousOnly is set.
type SearchFilters struct {
	// Tags matches records carrying any of the given tags.
	Tags []string

	// MinImportance and MaxImportance bound the importance score (1-10).
	// Zero values leave the corresponding bound open.
	MinImportance int
	MaxImportance int

	// Source restricts to records with the given provenance.
	Source core.MemorySource

	// ConsciousOnly drops conversational memories entirely.
	ConsciousOnly bool
}
