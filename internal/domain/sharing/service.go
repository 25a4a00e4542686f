package sharing

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/phr/phr/internal/platform/apperr"
	"github.com/phr/phr/internal/platform/identity"
	"github.com/phr/phr/internal/platform/metrics"
)

// Granter is the slice of the record store the ledger needs at approval
// time: add a grantee to one record if it still exists and is still owned by
// owner, silently skipping otherwise.
type Granter interface {
	Grant(ctx context.Context, recordID string, owner, grantee identity.Ref) error
}

// Service is the share-request half of the control-plane facade. It enforces
// the Pending → {Approved, Rejected, Expired} state machine; expiry is
// observed lazily on approve/reject attempts, never swept.
type Service struct {
	repo    Repository
	granter Granter
	ttl     time.Duration
	now     func() time.Time
	newID   func() string
	m       *metrics.Metrics
}

func NewService(repo Repository, granter Granter, ttl time.Duration) *Service {
	return &Service{
		repo:    repo,
		granter: granter,
		ttl:     ttl,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// SetClock overrides the time source. Intended for tests.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// SetIDGenerator overrides id generation. Intended for tests.
func (s *Service) SetIDGenerator(gen func() string) { s.newID = gen }

func (s *Service) SetMetrics(m *metrics.Metrics) { s.m = m }

// Create opens a pending share request. Ownership of the named records is
// deliberately not verified here: a request may reference a not-yet-created
// or no-longer-owned record without failing, since approval re-checks
// ownership per record.
func (s *Service) Create(ctx context.Context, patient identity.Ref, req CreateRequest) (*ShareRequest, error) {
	if patient.IsZero() {
		return nil, apperr.Unauthorized("caller identity required")
	}
	if req.Provider.IsZero() {
		return nil, apperr.InvalidArgument("provider is required")
	}
	recordIDs := dedupe(req.RecordIDs)
	if len(recordIDs) == 0 {
		return nil, apperr.InvalidArgument("record_ids must not be empty")
	}

	now := s.now()
	r := &ShareRequest{
		ID:          s.newID(),
		Patient:     patient,
		Provider:    req.Provider,
		RecordIDs:   recordIDs,
		Status:      StatusPending,
		Message:     req.Message,
		RequestedAt: now,
		ExpiresAt:   now.Add(s.ttl),
	}
	if err := s.repo.Create(ctx, r); err != nil {
		return nil, err
	}
	if s.m != nil {
		s.m.ShareRequestsCreated.Inc()
	}
	return r, nil
}

// Approve transitions a pending request to Approved and grants the provider
// access to every referenced record the patient still owns.
func (s *Service) Approve(ctx context.Context, caller identity.Ref, requestID string) (*ShareRequest, error) {
	r, err := s.transition(ctx, caller, requestID, StatusApproved)
	if err != nil {
		return nil, err
	}

	for _, recordID := range r.RecordIDs {
		if err := s.granter.Grant(ctx, recordID, r.Patient, r.Provider); err != nil {
			return nil, err
		}
	}
	if s.m != nil {
		s.m.ShareRequestsApproved.Inc()
	}
	return r, nil
}

// Reject transitions a pending request to Rejected. No records are touched.
func (s *Service) Reject(ctx context.Context, caller identity.Ref, requestID string) (*ShareRequest, error) {
	r, err := s.transition(ctx, caller, requestID, StatusRejected)
	if err != nil {
		return nil, err
	}
	if s.m != nil {
		s.m.ShareRequestsRejected.Inc()
	}
	return r, nil
}

// transition runs the shared authorization, state and expiry checks, then
// moves the request into target and persists it.
func (s *Service) transition(ctx context.Context, caller identity.Ref, requestID string, target Status) (*ShareRequest, error) {
	r, err := s.repo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if caller != r.Patient {
		return nil, apperr.Unauthorized("only the requesting patient may decide share request %s", requestID)
	}
	if r.Status == StatusExpired {
		return nil, apperr.Expired("share request %s has expired", requestID)
	}
	if r.Status != StatusPending {
		return nil, apperr.InvalidState("share request %s is already %s", requestID, r.Status)
	}
	if s.now().After(r.ExpiresAt) {
		// Lazy expiry: the transition is persisted even though the call
		// itself fails.
		r.Status = StatusExpired
		if err := s.repo.Update(ctx, r); err != nil {
			return nil, err
		}
		if s.m != nil {
			s.m.ShareRequestsExpired.Inc()
		}
		return nil, apperr.Expired("share request %s has expired", requestID)
	}

	r.Status = target
	if err := s.repo.Update(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Service) ListForPatient(ctx context.Context, caller identity.Ref) ([]*ShareRequest, error) {
	if caller.IsZero() {
		return nil, apperr.Unauthorized("caller identity required")
	}
	return s.repo.ListByPatient(ctx, caller)
}

func (s *Service) ListForProvider(ctx context.Context, caller identity.Ref) ([]*ShareRequest, error) {
	if caller.IsZero() {
		return nil, apperr.Unauthorized("caller identity required")
	}
	return s.repo.ListByProvider(ctx, caller)
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
