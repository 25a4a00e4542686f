package record

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/phr/phr/internal/platform/apperr"
	"github.com/phr/phr/internal/platform/identity"
	"github.com/phr/phr/internal/platform/metrics"
)

// Service is the record half of the control-plane facade: it gates every
// operation through the access evaluator and keeps the store consistent.
type Service struct {
	repo  Repository
	now   func() time.Time
	newID func() string
	m     *metrics.Metrics
}

func NewService(repo Repository) *Service {
	return &Service{
		repo:  repo,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// SetClock overrides the time source. Intended for tests.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// SetIDGenerator overrides id generation. Intended for tests.
func (s *Service) SetIDGenerator(gen func() string) { s.newID = gen }

func (s *Service) SetMetrics(m *metrics.Metrics) { s.m = m }

func (s *Service) Create(ctx context.Context, caller identity.Ref, req CreateRequest) (*HealthRecord, error) {
	if caller.IsZero() {
		return nil, apperr.Unauthorized("caller identity required")
	}
	if !req.RecordType.Valid() {
		return nil, apperr.InvalidArgument("unknown record type %q", req.RecordType)
	}

	now := s.now()
	r := &HealthRecord{
		ID:          s.newID(),
		Owner:       caller,
		Title:       req.Title,
		Description: req.Description,
		RecordType:  req.RecordType,
		Payload:     req.Payload,
		SharedWith:  []identity.Ref{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, r); err != nil {
		return nil, err
	}
	if s.m != nil {
		s.m.RecordsCreated.Inc()
	}
	return r, nil
}

func (s *Service) Get(ctx context.Context, caller identity.Ref, id string) (*HealthRecord, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanRead(r, caller) {
		return nil, apperr.Unauthorized("you do not have access to record %s", id)
	}
	return r, nil
}

func (s *Service) Update(ctx context.Context, caller identity.Ref, id string, req UpdateRequest) (*HealthRecord, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanWrite(r, caller) {
		return nil, apperr.Unauthorized("only the owner may update record %s", id)
	}

	if req.Title != nil {
		r.Title = *req.Title
	}
	if req.Description != nil {
		r.Description = *req.Description
	}
	if req.Payload != nil {
		r.Payload = req.Payload
	}
	r.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Service) Delete(ctx context.Context, caller identity.Ref, id string) error {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !CanWrite(r, caller) {
		return apperr.Unauthorized("only the owner may delete record %s", id)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if s.m != nil {
		s.m.RecordsDeleted.Inc()
	}
	return nil
}

func (s *Service) ListOwned(ctx context.Context, caller identity.Ref) ([]*HealthRecord, error) {
	if caller.IsZero() {
		return nil, apperr.Unauthorized("caller identity required")
	}
	return s.repo.ListByOwner(ctx, caller)
}

func (s *Service) ListAccessible(ctx context.Context, caller identity.Ref) ([]*HealthRecord, error) {
	if caller.IsZero() {
		return nil, apperr.Unauthorized("caller identity required")
	}
	return s.repo.ListSharedWith(ctx, caller)
}

// Grant adds grantee to the record's shared_with set on behalf of owner.
// Records that no longer exist or are no longer owned by owner are silently
// skipped, and re-granting an existing grantee is a no-op; share request
// approval relies on both tolerances.
func (s *Service) Grant(ctx context.Context, recordID string, owner, grantee identity.Ref) error {
	r, err := s.repo.GetByID(ctx, recordID)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return nil
		}
		return err
	}
	if r.Owner != owner {
		return nil
	}
	if !r.addGrantee(grantee) {
		return nil
	}
	r.UpdatedAt = s.now()
	return s.repo.Update(ctx, r)
}

// Revoke removes grantee from the record's shared_with set. Owner-only;
// revoking an absent grantee is a no-op.
func (s *Service) Revoke(ctx context.Context, caller identity.Ref, recordID string, grantee identity.Ref) (*HealthRecord, error) {
	r, err := s.repo.GetByID(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if !CanWrite(r, caller) {
		return nil, apperr.Unauthorized("only the owner may revoke access to record %s", recordID)
	}
	if r.removeGrantee(grantee) {
		r.UpdatedAt = s.now()
		if err := s.repo.Update(ctx, r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}
