package directory

import (
	"context"
	"sync"

	"github.com/phr/phr/internal/platform/apperr"
	"github.com/phr/phr/internal/platform/identity"
)

type MemoryPatientRepository struct {
	mu       sync.Mutex
	patients map[identity.Ref]*Patient
}

func NewMemoryPatientRepository() *MemoryPatientRepository {
	return &MemoryPatientRepository{patients: make(map[identity.Ref]*Patient)}
}

func (s *MemoryPatientRepository) Create(ctx context.Context, p *Patient) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.patients[p.ID]; exists {
		return apperr.InvalidArgument("patient %s is already registered", p.ID)
	}
	cp := *p
	s.patients[p.ID] = &cp
	return nil
}

func (s *MemoryPatientRepository) GetByID(ctx context.Context, id identity.Ref) (*Patient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.patients[id]
	if !ok {
		return nil, apperr.NotFound("patient %s not found", id)
	}
	cp := *p
	return &cp, nil
}

func (s *MemoryPatientRepository) Update(ctx context.Context, p *Patient) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.patients[p.ID]; !ok {
		return apperr.NotFound("patient %s not found", p.ID)
	}
	cp := *p
	s.patients[p.ID] = &cp
	return nil
}

func (s *MemoryPatientRepository) Count(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.patients), nil
}

type MemoryProviderRepository struct {
	mu        sync.Mutex
	providers map[identity.Ref]*Provider
	order     []identity.Ref
}

func NewMemoryProviderRepository() *MemoryProviderRepository {
	return &MemoryProviderRepository{providers: make(map[identity.Ref]*Provider)}
}

func (s *MemoryProviderRepository) Create(ctx context.Context, p *Provider) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.providers[p.ID]; exists {
		return apperr.InvalidArgument("provider %s is already registered", p.ID)
	}
	cp := *p
	s.providers[p.ID] = &cp
	s.order = append(s.order, p.ID)
	return nil
}

func (s *MemoryProviderRepository) GetByID(ctx context.Context, id identity.Ref) (*Provider, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.providers[id]
	if !ok {
		return nil, apperr.NotFound("provider %s not found", id)
	}
	cp := *p
	return &cp, nil
}

func (s *MemoryProviderRepository) Update(ctx context.Context, p *Provider) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.providers[p.ID]; !ok {
		return apperr.NotFound("provider %s not found", p.ID)
	}
	cp := *p
	s.providers[p.ID] = &cp
	return nil
}

func (s *MemoryProviderRepository) List(ctx context.Context, limit, offset int) ([]*Provider, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := len(s.order)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}

	out := make([]*Provider, 0, end-offset)
	for _, id := range s.order[offset:end] {
		cp := *s.providers[id]
		out = append(out, &cp)
	}
	return out, total, nil
}

func (s *MemoryProviderRepository) Count(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.providers), nil
}
