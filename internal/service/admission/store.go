package admission

import (
	"context"
	"sync"
	"time"
)

// State is the rate/quota state for one identifier (IP or wallet). It is
// mutated exactly once per admitted request and reset lazily at read time.
type State struct {
	WindowCount   int       `json:"window_count"`
	WindowResetAt time.Time `json:"window_reset_at"`
	DailyCount    int       `json:"daily_count"`
	DailyResetAt  time.Time `json:"daily_reset_at"`
}

// Store persists admission state per identifier. Implementations are safe for
// concurrent use; atomicity of read-modify-write cycles is provided by the
// Controller, not the store.
type Store interface {
	Get(ctx context.Context, identifier string) (*State, error)
	Set(ctx context.Context, identifier string, s *State) error
	Delete(ctx context.Context, identifier string) error
}

// MemoryStore is the in-process Store.
type MemoryStore struct {
	mu sync.RWMutex
	m  map[string]*State
}

// NewMemoryStore creates an empty memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{m: make(map[string]*State)}
}

func (s *MemoryStore) Get(_ context.Context, identifier string) (*State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.m[identifier]
	if !ok {
		return nil, nil
	}
	cp := *st
	return &cp, nil
}

func (s *MemoryStore) Set(_ context.Context, identifier string, st *State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *st
	s.m[identifier] = &cp
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, identifier string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, identifier)
	return nil
}

// Sweep drops identifiers whose daily window has fully elapsed. Housekeeping
// only: reads lazily self-expire regardless.
func (s *MemoryStore) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, st := range s.m {
		if now.After(st.DailyResetAt) && now.After(st.WindowResetAt) {
			delete(s.m, id)
			removed++
		}
	}
	return removed
}

// Len reports the tracked identifier count.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}
