package store

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type memoryStore struct {
	mu        sync.RWMutex
	templates map[string]Template
	now       func() time.Time
}

// NewMemoryStore returns a Store that keeps records in process memory.
func NewMemoryStore() Store {
	return &memoryStore{
		templates: make(map[string]Template),
		now:       time.Now,
	}
}

func (s *memoryStore) Get(ctx context.Context, id string) (*Template, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.templates[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return &t, nil
}

func (s *memoryStore) Put(ctx context.Context, id string, patch Patch) (*Template, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.templates[id]
	t.ID = id
	patch.apply(&t)
	t.UpdatedAt = s.now().UTC()
	s.templates[id] = t
	return &t, nil
}
