package repository

import (
	"context"
	"sync"
	"time"

	"github.com/aldianriski/portfolioapi/internal/models"
)

// MemoryRateLimitStore keeps fixed-window counters in process memory.
// Counters are lost on restart and are not shared between instances.
type MemoryRateLimitStore struct {
	mu      sync.Mutex
	entries map[string]models.RateLimitEntry
}

// NewMemoryRateLimitStore creates an empty in-memory store
func NewMemoryRateLimitStore() *MemoryRateLimitStore {
	return &MemoryRateLimitStore{entries: make(map[string]models.RateLimitEntry)}
}

// Hit counts one request for key and returns the updated window. A missing or
// expired window is replaced by a new one ending at now+window.
func (s *MemoryRateLimitStore) Hit(ctx context.Context, key string, window time.Duration, now time.Time) (models.RateLimitEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok || entry.Expired(now) {
		entry = models.RateLimitEntry{Count: 1, ResetTime: now.Add(window)}
	} else {
		entry.Count++
	}
	s.entries[key] = entry
	return entry, nil
}

// Sweep drops every expired window and returns how many were dropped
func (s *MemoryRateLimitStore) Sweep(ctx context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, entry := range s.entries {
		if entry.Expired(now) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of tracked windows
func (s *MemoryRateLimitStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
