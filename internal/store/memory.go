package store

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore keeps documents in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	docs  map[string][]byte
	quota int
}

// NewMemoryStore creates an in-memory store. A positive quota caps the total
// number of bytes held across all collections.
func NewMemoryStore(quota int) *MemoryStore {
	return &MemoryStore{
		docs:  make(map[string][]byte),
		quota: quota,
	}
}

func (s *MemoryStore) Load(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[name]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), doc...), nil
}

func (s *MemoryStore) Save(ctx context.Context, name string, doc []byte) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.quota > 0 {
		used := len(doc)
		for key, existing := range s.docs {
			if key != name {
				used += len(existing)
			}
		}
		if used > s.quota {
			return fmt.Errorf("%w: quota of %d bytes exceeded writing %s", ErrStorage, s.quota, name)
		}
	}

	s.docs[name] = append([]byte(nil), doc...)
	return nil
}

// Size returns the number of bytes currently held.
func (s *MemoryStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for _, doc := range s.docs {
		total += len(doc)
	}
	return total
}
