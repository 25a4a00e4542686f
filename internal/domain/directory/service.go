package directory

import (
	"context"
	"time"

	"github.com/phr/phr/internal/platform/apperr"
	"github.com/phr/phr/internal/platform/identity"
)

// Service is the pass-through registry for patient and provider profiles.
// The record and sharing services never consult it; policy around
// unregistered callers belongs to the surrounding layer.
type Service struct {
	patients  PatientRepository
	providers ProviderRepository
	now       func() time.Time
}

func NewService(patients PatientRepository, providers ProviderRepository) *Service {
	return &Service{patients: patients, providers: providers, now: time.Now}
}

// SetClock overrides the time source. Intended for tests.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

func (s *Service) RegisterPatient(ctx context.Context, caller identity.Ref, p *Patient) (*Patient, error) {
	if caller.IsZero() {
		return nil, apperr.Unauthorized("caller identity required")
	}
	if p.Name == "" || p.Email == "" {
		return nil, apperr.InvalidArgument("name and email are required")
	}
	p.ID = caller
	p.CreatedAt = s.now()
	if err := s.patients.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) GetPatient(ctx context.Context, id identity.Ref) (*Patient, error) {
	return s.patients.GetByID(ctx, id)
}

func (s *Service) UpdatePatient(ctx context.Context, caller identity.Ref, p *Patient) (*Patient, error) {
	if caller.IsZero() {
		return nil, apperr.Unauthorized("caller identity required")
	}
	if p.Name == "" || p.Email == "" {
		return nil, apperr.InvalidArgument("name and email are required")
	}
	p.ID = caller
	if err := s.patients.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) RegisterProvider(ctx context.Context, caller identity.Ref, p *Provider) (*Provider, error) {
	if caller.IsZero() {
		return nil, apperr.Unauthorized("caller identity required")
	}
	if p.Name == "" || p.Email == "" {
		return nil, apperr.InvalidArgument("name and email are required")
	}
	p.ID = caller
	p.Verified = true // registration is taken on trust; vetting is external
	p.CreatedAt = s.now()
	if err := s.providers.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) GetProvider(ctx context.Context, id identity.Ref) (*Provider, error) {
	return s.providers.GetByID(ctx, id)
}

func (s *Service) ListProviders(ctx context.Context, limit, offset int) ([]*Provider, int, error) {
	return s.providers.List(ctx, limit, offset)
}

func (s *Service) CountPatients(ctx context.Context) (int, error) {
	return s.patients.Count(ctx)
}

func (s *Service) CountProviders(ctx context.Context) (int, error) {
	return s.providers.Count(ctx)
}
