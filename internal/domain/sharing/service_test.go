package sharing

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/phr/phr/internal/domain/record"
	"github.com/phr/phr/internal/platform/apperr"
	"github.com/phr/phr/internal/platform/identity"
)

// ServiceSuite drives the share-request lifecycle against the real record
// service so approval side effects land on actual records.
type ServiceSuite struct {
	suite.Suite

	ctx     context.Context
	now     time.Time
	records *record.Service
	svc     *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.now = time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

	s.records = record.NewService(record.NewMemoryRepository())
	s.records.SetClock(s.clock)

	var recSeq int
	s.records.SetIDGenerator(func() string {
		recSeq++
		return fmt.Sprintf("rec-%d", recSeq)
	})

	s.svc = NewService(NewMemoryRepository(), s.records, 7*24*time.Hour)
	s.svc.SetClock(s.clock)

	var reqSeq int
	s.svc.SetIDGenerator(func() string {
		reqSeq++
		return fmt.Sprintf("req-%d", reqSeq)
	})
}

func (s *ServiceSuite) clock() time.Time { return s.now }

// advance moves the shared test clock forward.
func (s *ServiceSuite) advance(d time.Duration) { s.now = s.now.Add(d) }

func (s *ServiceSuite) createRecord(owner identity.Ref, title string) *record.HealthRecord {
	r, err := s.records.Create(s.ctx, owner, record.CreateRequest{
		Title:      title,
		RecordType: record.TypeLabResult,
	})
	s.Require().NoError(err)
	return r
}

func (s *ServiceSuite) TestCreate() {
	r, err := s.svc.Create(s.ctx, "alice", CreateRequest{
		Provider:  "dr-bob",
		RecordIDs: []string{"rec-1", "rec-2", "rec-1", ""},
		Message:   "annual checkup",
	})
	s.Require().NoError(err)

	s.Equal("req-1", r.ID)
	s.Equal(StatusPending, r.Status)
	s.Equal([]string{"rec-1", "rec-2"}, r.RecordIDs, "ids are deduplicated, blanks dropped")
	s.Equal(s.now, r.RequestedAt)
	s.Equal(s.now.Add(7*24*time.Hour), r.ExpiresAt)
}

func (s *ServiceSuite) TestCreateValidation() {
	_, err := s.svc.Create(s.ctx, "", CreateRequest{Provider: "dr-bob", RecordIDs: []string{"rec-1"}})
	s.True(apperr.IsKind(err, apperr.KindUnauthorized))

	_, err = s.svc.Create(s.ctx, "alice", CreateRequest{RecordIDs: []string{"rec-1"}})
	s.True(apperr.IsKind(err, apperr.KindInvalidArgument))

	_, err = s.svc.Create(s.ctx, "alice", CreateRequest{Provider: "dr-bob"})
	s.True(apperr.IsKind(err, apperr.KindInvalidArgument))

	_, err = s.svc.Create(s.ctx, "alice", CreateRequest{Provider: "dr-bob", RecordIDs: []string{"", ""}})
	s.True(apperr.IsKind(err, apperr.KindInvalidArgument), "all-blank ids collapse to empty")
}

func (s *ServiceSuite) TestCreateDoesNotCheckOwnership() {
	// Referencing records the patient does not own (or that do not exist)
	// is allowed at creation; approval sorts it out per record.
	other := s.createRecord("carol", "not alices")

	r, err := s.svc.Create(s.ctx, "alice", CreateRequest{
		Provider:  "dr-bob",
		RecordIDs: []string{other.ID, "never-created"},
	})
	s.Require().NoError(err)
	s.Equal(StatusPending, r.Status)
}

func (s *ServiceSuite) TestApproveGrantsAccess() {
	r1 := s.createRecord("alice", "blood panel")
	r2 := s.createRecord("alice", "mri scan")

	req, err := s.svc.Create(s.ctx, "alice", CreateRequest{
		Provider:  "dr-bob",
		RecordIDs: []string{r1.ID, r2.ID},
	})
	s.Require().NoError(err)

	approved, err := s.svc.Approve(s.ctx, "alice", req.ID)
	s.Require().NoError(err)
	s.Equal(StatusApproved, approved.Status)

	for _, id := range []string{r1.ID, r2.ID} {
		got, err := s.records.Get(s.ctx, "dr-bob", id)
		s.Require().NoError(err, "provider should read %s after approval", id)
		s.True(got.IsSharedWith("dr-bob"))
	}
}

func (s *ServiceSuite) TestApproveSkipsRecordsNoLongerOwned() {
	kept := s.createRecord("alice", "kept")
	deleted := s.createRecord("alice", "deleted before approval")
	foreign := s.createRecord("carol", "carols record")

	req, err := s.svc.Create(s.ctx, "alice", CreateRequest{
		Provider:  "dr-bob",
		RecordIDs: []string{kept.ID, deleted.ID, foreign.ID, "never-existed"},
	})
	s.Require().NoError(err)

	s.Require().NoError(s.records.Delete(s.ctx, "alice", deleted.ID))

	approved, err := s.svc.Approve(s.ctx, "alice", req.ID)
	s.Require().NoError(err)
	s.Equal(StatusApproved, approved.Status)

	got, err := s.records.Get(s.ctx, "dr-bob", kept.ID)
	s.Require().NoError(err)
	s.True(got.IsSharedWith("dr-bob"))

	// Carol's record must be untouched: the approval only grants what the
	// requesting patient still owns.
	carols, err := s.records.Get(s.ctx, "carol", foreign.ID)
	s.Require().NoError(err)
	s.Empty(carols.SharedWith)
}

func (s *ServiceSuite) TestOnlyPatientMayDecide() {
	r := s.createRecord("alice", "x")
	req, _ := s.svc.Create(s.ctx, "alice", CreateRequest{Provider: "dr-bob", RecordIDs: []string{r.ID}})

	_, err := s.svc.Approve(s.ctx, "dr-bob", req.ID)
	s.True(apperr.IsKind(err, apperr.KindUnauthorized), "the provider cannot approve their own request")

	_, err = s.svc.Reject(s.ctx, "mallory", req.ID)
	s.True(apperr.IsKind(err, apperr.KindUnauthorized))

	// Still pending and still approvable by the patient.
	_, err = s.svc.Approve(s.ctx, "alice", req.ID)
	s.NoError(err)
}

func (s *ServiceSuite) TestDoubleDecisionIsInvalidState() {
	r := s.createRecord("alice", "x")
	req, _ := s.svc.Create(s.ctx, "alice", CreateRequest{Provider: "dr-bob", RecordIDs: []string{r.ID}})

	_, err := s.svc.Approve(s.ctx, "alice", req.ID)
	s.Require().NoError(err)

	_, err = s.svc.Approve(s.ctx, "alice", req.ID)
	s.True(apperr.IsKind(err, apperr.KindInvalidState))

	_, err = s.svc.Reject(s.ctx, "alice", req.ID)
	s.True(apperr.IsKind(err, apperr.KindInvalidState))
}

func (s *ServiceSuite) TestReject() {
	r := s.createRecord("alice", "x")
	req, _ := s.svc.Create(s.ctx, "alice", CreateRequest{Provider: "dr-bob", RecordIDs: []string{r.ID}})

	rejected, err := s.svc.Reject(s.ctx, "alice", req.ID)
	s.Require().NoError(err)
	s.Equal(StatusRejected, rejected.Status)

	// Rejection never touches the record.
	got, err := s.records.Get(s.ctx, "alice", r.ID)
	s.Require().NoError(err)
	s.Empty(got.SharedWith)
}

func (s *ServiceSuite) TestLazyExpiryPersists() {
	r := s.createRecord("alice", "x")
	req, _ := s.svc.Create(s.ctx, "alice", CreateRequest{Provider: "dr-bob", RecordIDs: []string{r.ID}})

	s.advance(7*24*time.Hour + time.Minute)

	_, err := s.svc.Approve(s.ctx, "alice", req.ID)
	s.True(apperr.IsKind(err, apperr.KindExpired))

	// The failed approve persisted the expiry.
	stored, err := s.svc.repo.GetByID(s.ctx, req.ID)
	s.Require().NoError(err)
	s.Equal(StatusExpired, stored.Status)

	// Further attempts keep reporting expired, not invalid state.
	_, err = s.svc.Approve(s.ctx, "alice", req.ID)
	s.True(apperr.IsKind(err, apperr.KindExpired))
	_, err = s.svc.Reject(s.ctx, "alice", req.ID)
	s.True(apperr.IsKind(err, apperr.KindExpired))

	// No access was granted.
	got, err := s.records.Get(s.ctx, "alice", r.ID)
	s.Require().NoError(err)
	s.Empty(got.SharedWith)
}

func (s *ServiceSuite) TestApproveExactlyAtExpiryStillValid() {
	r := s.createRecord("alice", "x")
	req, _ := s.svc.Create(s.ctx, "alice", CreateRequest{Provider: "dr-bob", RecordIDs: []string{r.ID}})

	// now == expires_at is not yet expired; only strictly after counts.
	s.advance(7 * 24 * time.Hour)

	approved, err := s.svc.Approve(s.ctx, "alice", req.ID)
	s.Require().NoError(err)
	s.Equal(StatusApproved, approved.Status)
}

func (s *ServiceSuite) TestApproveMissingRequest() {
	_, err := s.svc.Approve(s.ctx, "alice", "nope")
	s.True(apperr.IsKind(err, apperr.KindNotFound))
}

func (s *ServiceSuite) TestListings() {
	r := s.createRecord("alice", "x")

	req1, _ := s.svc.Create(s.ctx, "alice", CreateRequest{Provider: "dr-bob", RecordIDs: []string{r.ID}})
	req2, _ := s.svc.Create(s.ctx, "alice", CreateRequest{Provider: "dr-carol", RecordIDs: []string{r.ID}})
	req3, _ := s.svc.Create(s.ctx, "dan", CreateRequest{Provider: "dr-bob", RecordIDs: []string{"rec-x"}})

	mine, err := s.svc.ListForPatient(s.ctx, "alice")
	s.Require().NoError(err)
	s.Len(mine, 2)
	s.Equal(req1.ID, mine[0].ID)
	s.Equal(req2.ID, mine[1].ID)

	incoming, err := s.svc.ListForProvider(s.ctx, "dr-bob")
	s.Require().NoError(err)
	s.Len(incoming, 2)
	s.Equal(req1.ID, incoming[0].ID)
	s.Equal(req3.ID, incoming[1].ID)

	_, err = s.svc.ListForPatient(s.ctx, "")
	s.True(apperr.IsKind(err, apperr.KindUnauthorized))
}

// Full patient/provider walkthrough: request, approve, read, revoke.
func (s *ServiceSuite) TestShareLifecycleEndToEnd() {
	r1 := s.createRecord("alice", "blood panel")
	r2 := s.createRecord("alice", "allergy list")

	req, err := s.svc.Create(s.ctx, "alice", CreateRequest{
		Provider:  "dr-bob",
		RecordIDs: []string{r1.ID, r2.ID},
		Message:   "referral",
	})
	s.Require().NoError(err)

	incoming, err := s.svc.ListForProvider(s.ctx, "dr-bob")
	s.Require().NoError(err)
	s.Len(incoming, 1)
	s.Equal(StatusPending, incoming[0].Status)

	_, err = s.svc.Approve(s.ctx, "alice", req.ID)
	s.Require().NoError(err)

	accessible, err := s.records.ListAccessible(s.ctx, "dr-bob")
	s.Require().NoError(err)
	s.Len(accessible, 2)

	// The patient later revokes one record; the other stays shared.
	_, err = s.records.Revoke(s.ctx, "alice", r1.ID, "dr-bob")
	s.Require().NoError(err)

	accessible, err = s.records.ListAccessible(s.ctx, "dr-bob")
	s.Require().NoError(err)
	s.Len(accessible, 1)
	s.Equal(r2.ID, accessible[0].ID)
}

func (s *ServiceSuite) TestCount() {
	n, err := s.svc.Count(s.ctx)
	s.Require().NoError(err)
	s.Zero(n)

	r := s.createRecord("alice", "x")
	_, _ = s.svc.Create(s.ctx, "alice", CreateRequest{Provider: "dr-bob", RecordIDs: []string{r.ID}})
	_, _ = s.svc.Create(s.ctx, "alice", CreateRequest{Provider: "dr-carol", RecordIDs: []string{r.ID}})

	n, err = s.svc.Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, n)
}
