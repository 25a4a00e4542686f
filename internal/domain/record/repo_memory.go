package record

import (
	"context"
	"fmt"
	"sync"

	"github.com/phr/phr/internal/platform/apperr"
	"github.com/phr/phr/internal/platform/identity"
)

// MemoryRepository is the in-memory implementation: the record map and the
// per-owner id index are guarded by one mutex so every call
// observes them consistently. Records are cloned on the way in and out; store
// state is never aliased by callers.
type MemoryRepository struct {
	mu         sync.Mutex
	records    map[string]*HealthRecord
	order      []string                    // record ids in insertion order
	ownerIndex map[identity.Ref][]string   // owner -> record ids in creation order
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		records:    make(map[string]*HealthRecord),
		ownerIndex: make(map[identity.Ref][]string),
	}
}

func (s *MemoryRepository) Create(ctx context.Context, r *HealthRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[r.ID]; exists {
		// Ids are uuids; a collision means the generator is broken.
		panic(fmt.Sprintf("record store: duplicate id %s", r.ID))
	}

	s.records[r.ID] = r.Clone()
	s.order = append(s.order, r.ID)
	s.ownerIndex[r.Owner] = append(s.ownerIndex[r.Owner], r.ID)
	return nil
}

func (s *MemoryRepository) GetByID(ctx context.Context, id string) (*HealthRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[id]
	if !ok {
		return nil, apperr.NotFound("record %s not found", id)
	}
	return r.Clone(), nil
}

func (s *MemoryRepository) Update(ctx context.Context, r *HealthRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[r.ID]; !ok {
		return apperr.NotFound("record %s not found", r.ID)
	}
	s.records[r.ID] = r.Clone()
	return nil
}

func (s *MemoryRepository) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[id]
	if !ok {
		return apperr.NotFound("record %s not found", id)
	}

	// Record and index entry go together; the lock makes the pair atomic.
	delete(s.records, id)
	s.order = removeID(s.order, id)
	s.ownerIndex[r.Owner] = removeID(s.ownerIndex[r.Owner], id)
	if len(s.ownerIndex[r.Owner]) == 0 {
		delete(s.ownerIndex, r.Owner)
	}
	return nil
}

func (s *MemoryRepository) ListByOwner(ctx context.Context, owner identity.Ref) ([]*HealthRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := s.ownerIndex[owner]
	out := make([]*HealthRecord, 0, len(ids))
	for _, id := range ids {
		r, ok := s.records[id]
		if !ok {
			// The index referenced a record that is gone: the delete
			// atomicity contract was violated somewhere.
			panic(fmt.Sprintf("record store: index references missing record %s", id))
		}
		out = append(out, r.Clone())
	}
	return out, nil
}

func (s *MemoryRepository) ListSharedWith(ctx context.Context, grantee identity.Ref) ([]*HealthRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*HealthRecord
	for _, id := range s.order {
		r := s.records[id]
		if r.IsSharedWith(grantee) {
			out = append(out, r.Clone())
		}
	}
	return out, nil
}

func (s *MemoryRepository) Count(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records), nil
}

func removeID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
