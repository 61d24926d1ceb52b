package dncstore

import (
	"context"
	"sync"

	"github.com/davidleathers/voice-outreach-backend/internal/domain/dnc"
)

// MemoryStore is an in-process do-not-call set. It backs tests and serves as
// the shared index for the file store.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*dnc.Entry
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]*dnc.Entry)}
}

// Add inserts the entry unless its number is already present.
func (s *MemoryStore) Add(_ context.Context, entry *dnc.Entry) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := entry.Key()
	if _, ok := s.entries[key]; ok {
		return false, nil
	}
	s.entries[key] = entry
	return true, nil
}

// Contains tests membership by normalized phone number.
func (s *MemoryStore) Contains(_ context.Context, phoneNumber string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.entries[phoneNumber]
	return ok, nil
}

// Size reports the number of entries held.
func (s *MemoryStore) Size(_ context.Context) (int64, error) {
	return int64(s.Len()), nil
}

// Len reports the number of entries held.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

var _ dnc.Store = (*MemoryStore)(nil)
