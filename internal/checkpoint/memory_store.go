package checkpoint

import (
	"sort"
	"sync"
)

// MemoryStore implements an in-memory checkpoint store
type MemoryStore struct {
	mu          sync.RWMutex
	checkpoints map[string]*Checkpoint
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		checkpoints: make(map[string]*Checkpoint),
	}
}

// Save stores a checkpoint, replacing any with the same ID
func (s *MemoryStore) Save(cp *Checkpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	saved := *cp
	s.checkpoints[cp.ID] = &saved
	return nil
}

// Get retrieves a checkpoint
func (s *MemoryStore) Get(id string) (*Checkpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if cp, ok := s.checkpoints[id]; ok {
		out := *cp
		return &out, nil
	}
	return nil, notFound(id)
}

// List lists checkpoints newest first
func (s *MemoryStore) List(agent string, limit int) ([]*Checkpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cps := make([]*Checkpoint, 0, len(s.checkpoints))
	for _, cp := range s.checkpoints {
		if agent != "" && cp.Agent != agent {
			continue
		}
		out := *cp
		cps = append(cps, &out)
	}

	sort.Slice(cps, func(i, j int) bool {
		return cps[i].CreatedAt.After(cps[j].CreatedAt)
	})

	if limit > 0 && len(cps) > limit {
		cps = cps[:limit]
	}
	return cps, nil
}

// Delete removes a checkpoint
func (s *MemoryStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.checkpoints[id]; !ok {
		return notFound(id)
	}
	delete(s.checkpoints, id)
	return nil
}

// Close closes the store (no-op for memory)
func (s *MemoryStore) Close() error {
	return nil
}
