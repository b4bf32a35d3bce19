package game

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

type storedMatch struct {
	match  *Match
	cancel context.CancelFunc
}

// MatchStore is the in-memory registry of live matches.
type MatchStore struct {
	mu      sync.Mutex
	matches map[uuid.UUID]storedMatch
}

func NewMatchStore() *MatchStore {
	return &MatchStore{
		matches: make(map[uuid.UUID]storedMatch),
	}
}

// AddMatch registers m. cancel stops its Run loop and may be nil.
func (s *MatchStore) AddMatch(m *Match, cancel context.CancelFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matches[m.ID] = storedMatch{match: m, cancel: cancel}
}

func (s *MatchStore) GetMatch(id uuid.UUID) (*Match, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sm, exists := s.matches[id]
	return sm.match, exists
}

// DeleteMatch removes the match and stops it if it is still running.
func (s *MatchStore) DeleteMatch(id uuid.UUID) {
	s.mu.Lock()
	sm, exists := s.matches[id]
	delete(s.matches, id)
	s.mu.Unlock()
	if exists && sm.cancel != nil {
		sm.cancel()
	}
}

// List returns the IDs of every registered match.
func (s *MatchStore) List() []uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]uuid.UUID, 0, len(s.matches))
	for id := range s.matches {
		ids = append(ids, id)
	}
	return ids
}

// Close stops every registered match and empties the store.
func (s *MatchStore) Close() {
	s.mu.Lock()
	all := s.matches
	s.matches = make(map[uuid.UUID]storedMatch)
	s.mu.Unlock()
	for _, sm := range all {
		if sm.cancel != nil {
			sm.cancel()
		}
	}
}
