// Package chromem provides the chromem-go backed memory store.
// chromem-go is a pure Go, embedded vector database; this wrapper adds
// session scoping, metadata round-tripping, and a raw-record mirror that
// serves the keyword fallback's corpus scans without touching the index.
package chromem

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	chromem "github.com/philippgille/chromem-go"
	"github.com/rs/zerolog"

	"github.com/esinecan/skynet-agent-sub001/core"
	"github.com/esinecan/skynet-agent-sub001/memory"

	"github.com/google/uuid"
)

const collectionName = "memories"

// ChromemStore implements memory.Store on top of chromem-go.
type ChromemStore struct {
	db       *chromem.DB
	col      *chromem.Collection
	embedder memory.Embedder
	logger   zerolog.Logger

	mu      sync.RWMutex
	records []core.MemoryRecord // insertion-ordered mirror for GetAll
}

// New creates a chromem-backed store. Embeddings are produced by the given
// embedder; chromem never embeds on its own.
func New(embedder memory.Embedder, logger zerolog.Logger) (*ChromemStore, error) {
	db := chromem.NewDB()

	col, err := db.CreateCollection(collectionName, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	return &ChromemStore{
		db:       db,
		col:      col,
		embedder: embedder,
		logger:   logger.With().Str("component", "chromem-store").Logger(),
	}, nil
}

// Store saves a new record and returns its id.
func (s *ChromemStore) Store(ctx context.Context, text string, meta core.RecordMetadata) (string, error) {
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	if meta.Type == "" {
		meta.Type = core.MemoryConversational
	}
	id := uuid.New().String()

	embedding, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return "", fmt.Errorf("embed record: %w", err)
	}

	doc := chromem.Document{
		ID:        id,
		Content:   text,
		Embedding: embedding,
		Metadata:  encodeMetadata(meta),
	}
	if err := s.col.AddDocument(ctx, doc); err != nil {
		return "", fmt.Errorf("add document: %w", err)
	}

	s.mu.Lock()
	s.records = append(s.records, core.MemoryRecord{ID: id, Text: text, Metadata: meta})
	s.mu.Unlock()

	s.logger.Debug().Str("id", id).Str("session", meta.SessionID).Str("type", string(meta.Type)).Msg("stored memory")
	return id, nil
}

// Search runs a similarity query, optionally scoped to one session.
func (s *ChromemStore) Search(ctx context.Context, query string, opts memory.SearchOptions) ([]core.SearchResult, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 3
	}

	// chromem rejects nResults larger than the matching document count,
	// so clamp against the mirror before querying.
	available := s.count(opts.SessionID)
	if available == 0 {
		return nil, nil
	}
	if limit > available {
		limit = available
	}

	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	var where map[string]string
	if opts.SessionID != "" {
		where = map[string]string{"session_id": opts.SessionID}
	}

	raw, err := s.col.QueryEmbedding(ctx, embedding, limit, where, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	results := make([]core.SearchResult, 0, len(raw))
	for _, r := range raw {
		score := float64(r.Similarity)
		if score < opts.MinScore {
			continue
		}
		results = append(results, core.SearchResult{
			ID:         r.ID,
			Text:       r.Content,
			Score:      score,
			Metadata:   decodeMetadata(r.Metadata),
			SearchType: core.SearchSemantic,
		})
	}

	s.logger.Debug().Int("raw", len(raw)).Int("kept", len(results)).Msg("semantic search")
	return results, nil
}

// GetAll returns the record corpus, session-scoped when sessionID is set.
func (s *ChromemStore) GetAll(ctx context.Context, sessionID string) ([]core.MemoryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.MemoryRecord, 0, len(s.records))
	for _, rec := range s.records {
		if sessionID != "" && rec.Metadata.SessionID != sessionID {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// Close releases resources. chromem keeps everything in process memory.
func (s *ChromemStore) Close() error {
	return nil
}

func (s *ChromemStore) count(sessionID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sessionID == "" {
		return len(s.records)
	}
	n := 0
	for _, rec := range s.records {
		if rec.Metadata.SessionID == sessionID {
			n++
		}
	}
	return n
}

func encodeMetadata(meta core.RecordMetadata) map[string]string {
	m := map[string]string{
		"session_id":  meta.SessionID,
		"created_at":  meta.Timestamp.Format(time.RFC3339),
		"importance":  strconv.Itoa(meta.Importance),
		"source":      string(meta.Source),
		"memory_type": string(meta.Type),
	}
	if len(meta.Tags) > 0 {
		tags := append([]string(nil), meta.Tags...)
		sort.Strings(tags)
		m["tags"] = strings.Join(tags, ",")
	}
	return m
}

func decodeMetadata(m map[string]string) core.RecordMetadata {
	meta := core.RecordMetadata{
		SessionID: m["session_id"],
		Source:    core.MemorySource(m["source"]),
		Type:      core.MemoryType(m["memory_type"]),
	}
	meta.Timestamp, _ = time.Parse(time.RFC3339, m["created_at"])
	meta.Importance, _ = strconv.Atoi(m["importance"])
	if tags := m["tags"]; tags != "" {
		meta.Tags = strings.Split(tags, ",")
	}
	return meta
}
