// Package session holds accumulated per-session turn state between turns.
package session

import (
	"sync"

	"github.com/esinecan/skynet-agent-sub001/core"
)

// Store keeps the last completed TurnState per session. One writer per
// session is assumed; the mutex only guards the map itself, because
// sessions never share state. Clones cross the boundary in both
// directions so callers can never alias stored slices or maps.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*core.TurnState
}

// NewStore creates an empty conversation store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*core.TurnState)}
}

// Get returns a copy of the session's state, or ok=false when the session
// has no history yet.
func (s *Store) Get(sessionID string) (*core.TurnState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.sessions[sessionID]
	if !ok {
		return nil, false
	}
	return state.Clone(), true
}

// Put stores a copy of the state under its session id.
func (s *Store) Put(sessionID string, state *core.TurnState) {
	clone := state.Clone()
	s.mu.Lock()
	s.sessions[sessionID] = clone
	s.mu.Unlock()
}

// Len reports the number of tracked sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
