package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"InsightHub/internal/domain/models"
)

// ErrCacheMiss is returned when a fingerprint is absent or expired.
var ErrCacheMiss = errors.New("cache: key not found")

// Entry is one cached insight with its lifecycle metadata.
type Entry struct {
	Fingerprint string                  `json:"fingerprint"`
	Data        *models.InsightResponse `json:"data"`
	CreatedAt   time.Time               `json:"created_at"`
	TTL         time.Duration           `json:"ttl"`
}

// Expired reports whether the entry has outlived its TTL.
func (e *Entry) Expired(now time.Time) bool {
	return now.After(e.CreatedAt.Add(e.TTL))
}

// Store is the pluggable backing store for the response cache. Concurrency
// safety is internal to implementations; callers never lock.
type Store interface {
	Get(ctx context.Context, fingerprint string) (*Entry, error)
	Set(ctx context.Context, fingerprint string, e *Entry) error
	Delete(ctx context.Context, fingerprint string) error
}

// MemoryStore is a bounded in-memory Store with LRU eviction. Reads promote
// an entry to most-recently-used; when at capacity, the least recently used
// entry is evicted.
type MemoryStore struct {
	mu      sync.Mutex
	data    map[string]*Entry
	access  map[string]time.Time
	maxSize int
}

// NewMemoryStore creates a memory store bounded at maxSize entries.
func NewMemoryStore(maxSize int) *MemoryStore {
	if maxSize <= 0 {
		maxSize = 1000
	}
	return &MemoryStore{
		data:    make(map[string]*Entry),
		access:  make(map[string]time.Time),
		maxSize: maxSize,
	}
}

func (s *MemoryStore) Get(_ context.Context, fingerprint string) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.data[fingerprint]
	if !ok {
		return nil, ErrCacheMiss
	}
	if e.Expired(time.Now()) {
		delete(s.data, fingerprint)
		delete(s.access, fingerprint)
		return nil, ErrCacheMiss
	}

	// Promote to most-recently-used.
	s.access[fingerprint] = time.Now()
	return e, nil
}

func (s *MemoryStore) Set(_ context.Context, fingerprint string, e *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[fingerprint]; !exists && len(s.data) >= s.maxSize {
		s.evictLRU()
	}
	s.data[fingerprint] = e
	s.access[fingerprint] = time.Now()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, fingerprint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, fingerprint)
	delete(s.access, fingerprint)
	return nil
}

// Len reports the current entry count.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}

func (s *MemoryStore) evictLRU() {
	var oldestKey string
	var oldestTime time.Time
	first := true

	for key, accessTime := range s.access {
		if first || accessTime.Before(oldestTime) {
			oldestTime = accessTime
			oldestKey = key
			first = false
		}
	}
	if oldestKey != "" {
		delete(s.data, oldestKey)
		delete(s.access, oldestKey)
	}
}
