package store

import (
	"context"
	"sort"
	"sync"

	"github.com/smehra/dreamfilm/internal/model"
)

// MemoryStore keeps dreams in a mutex-guarded map. Suitable for local
// development and tests; state is lost on restart.
type MemoryStore struct {
	mu     sync.RWMutex
	dreams map[string]*model.Dream
}

// Compile-time interface check.
var _ DreamStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{dreams: make(map[string]*model.Dream)}
}

// Put stores a dream.
func (s *MemoryStore) Put(_ context.Context, dream *model.Dream) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dreams[dream.ID] = dream
	return nil
}

// Get retrieves a dream by ID. Returns nil, nil if not found.
func (s *MemoryStore) Get(_ context.Context, id string) (*model.Dream, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dreams[id], nil
}

// List returns all dreams, newest first.
func (s *MemoryStore) List(_ context.Context) ([]*model.Dream, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.Dream, 0, len(s.dreams))
	for _, d := range s.dreams {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
