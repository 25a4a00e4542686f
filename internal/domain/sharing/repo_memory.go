package sharing

import (
	"context"
	"fmt"
	"sync"

	"github.com/phr/phr/internal/platform/apperr"
	"github.com/phr/phr/internal/platform/identity"
)

// MemoryRepository is the in-memory ledger: one mutex-guarded map, with
// requests cloned at the boundary so callers never alias ledger state.
type MemoryRepository struct {
	mu       sync.Mutex
	requests map[string]*ShareRequest
	order    []string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{requests: make(map[string]*ShareRequest)}
}

func (s *MemoryRepository) Create(ctx context.Context, r *ShareRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.requests[r.ID]; exists {
		panic(fmt.Sprintf("share ledger: duplicate id %s", r.ID))
	}
	s.requests[r.ID] = r.Clone()
	s.order = append(s.order, r.ID)
	return nil
}

func (s *MemoryRepository) GetByID(ctx context.Context, id string) (*ShareRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.requests[id]
	if !ok {
		return nil, apperr.NotFound("share request %s not found", id)
	}
	return r.Clone(), nil
}

func (s *MemoryRepository) Update(ctx context.Context, r *ShareRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.requests[r.ID]; !ok {
		return apperr.NotFound("share request %s not found", r.ID)
	}
	s.requests[r.ID] = r.Clone()
	return nil
}

func (s *MemoryRepository) ListByPatient(ctx context.Context, patient identity.Ref) ([]*ShareRequest, error) {
	return s.filter(func(r *ShareRequest) bool { return r.Patient == patient }), nil
}

func (s *MemoryRepository) ListByProvider(ctx context.Context, provider identity.Ref) ([]*ShareRequest, error) {
	return s.filter(func(r *ShareRequest) bool { return r.Provider == provider }), nil
}

func (s *MemoryRepository) filter(keep func(*ShareRequest) bool) []*ShareRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*ShareRequest
	for _, id := range s.order {
		if r := s.requests[id]; keep(r) {
			out = append(out, r.Clone())
		}
	}
	return out
}

func (s *MemoryRepository) Count(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests), nil
}
