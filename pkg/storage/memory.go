package storage

import (
	"context"
	"sync"

	"github.com/matzehuels/lifeline/pkg/errors"
)

// MemoryStore keeps records in a map. It is safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

// Save implements [Store].
func (s *MemoryStore) Save(ctx context.Context, r *Record) error {
	prepare(r)
	if err := ValidateID(r.ID); err != nil {
		return err
	}
	s.mu.Lock()
	s.records[r.ID] = *r
	s.mu.Unlock()
	return nil
}

// Get implements [Store].
func (s *MemoryStore) Get(ctx context.Context, id string) (*Record, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	s.mu.RLock()
	r, ok := s.records[id]
	s.mu.RUnlock()
	if !ok {
		return nil, notFound(id)
	}
	return &r, nil
}

// FindByHash implements [Store].
func (s *MemoryStore) FindByHash(ctx context.Context, docHash string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var best *Record
	for _, r := range s.records {
		if r.DocumentHash != docHash {
			continue
		}
		if best == nil || r.CreatedAt.After(best.CreatedAt) {
			r := r
			best = &r
		}
	}
	if best == nil {
		return nil, errors.New(errors.ErrCodeNotFound, "no diagram for document %s", docHash)
	}
	return best, nil
}

// Delete implements [Store].
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return notFound(id)
	}
	delete(s.records, id)
	return nil
}

// Len returns the number of stored records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Close implements [Store].
func (s *MemoryStore) Close(ctx context.Context) error { return nil }

var _ Store = (*MemoryStore)(nil)
