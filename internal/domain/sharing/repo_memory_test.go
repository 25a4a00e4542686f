package sharing

import (
	"context"
	"testing"
	"time"

	"github.com/phr/phr/internal/platform/apperr"
	"github.com/phr/phr/internal/platform/identity"
)

func newTestRequest(id string, patient, provider identity.Ref) *ShareRequest {
	now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	return &ShareRequest{
		ID:          id,
		Patient:     patient,
		Provider:    provider,
		RecordIDs:   []string{"rec-1"},
		Status:      StatusPending,
		RequestedAt: now,
		ExpiresAt:   now.Add(7 * 24 * time.Hour),
	}
}

func TestMemoryRepositoryCreateGet(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	if err := repo.Create(ctx, newTestRequest("req-1", "alice", "dr-bob")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.GetByID(ctx, "req-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Patient != "alice" || got.Status != StatusPending {
		t.Errorf("unexpected request: %+v", got)
	}

	// Returned requests must not alias ledger state.
	got.Status = StatusApproved
	got.RecordIDs[0] = "tampered"
	again, _ := repo.GetByID(ctx, "req-1")
	if again.Status != StatusPending || again.RecordIDs[0] != "rec-1" {
		t.Error("ledger state was aliased by a returned request")
	}
}

func TestMemoryRepositoryGetMissing(t *testing.T) {
	repo := NewMemoryRepository()

	_, err := repo.GetByID(context.Background(), "nope")
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMemoryRepositoryDuplicateIDPanics(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	if err := repo.Create(ctx, newTestRequest("req-1", "alice", "dr-bob")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on duplicate id")
		}
	}()
	_ = repo.Create(ctx, newTestRequest("req-1", "carol", "dr-dan"))
}

func TestMemoryRepositoryUpdate(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	r := newTestRequest("req-1", "alice", "dr-bob")
	if err := repo.Create(ctx, r); err != nil {
		t.Fatalf("Create: %v", err)
	}

	r.Status = StatusApproved
	if err := repo.Update(ctx, r); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, _ := repo.GetByID(ctx, "req-1")
	if got.Status != StatusApproved {
		t.Errorf("status = %s, want approved", got.Status)
	}

	missing := newTestRequest("req-9", "alice", "dr-bob")
	if err := repo.Update(ctx, missing); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("update of missing request: got %v", err)
	}
}

func TestMemoryRepositoryListings(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	reqs := []*ShareRequest{
		newTestRequest("req-1", "alice", "dr-bob"),
		newTestRequest("req-2", "carol", "dr-bob"),
		newTestRequest("req-3", "alice", "dr-dan"),
	}
	for _, r := range reqs {
		if err := repo.Create(ctx, r); err != nil {
			t.Fatalf("Create %s: %v", r.ID, err)
		}
	}

	byPatient, err := repo.ListByPatient(ctx, "alice")
	if err != nil {
		t.Fatalf("ListByPatient: %v", err)
	}
	if len(byPatient) != 2 || byPatient[0].ID != "req-1" || byPatient[1].ID != "req-3" {
		t.Errorf("unexpected patient listing: %v", byPatient)
	}

	byProvider, err := repo.ListByProvider(ctx, "dr-bob")
	if err != nil {
		t.Fatalf("ListByProvider: %v", err)
	}
	if len(byProvider) != 2 || byProvider[0].ID != "req-1" || byProvider[1].ID != "req-2" {
		t.Errorf("unexpected provider listing: %v", byProvider)
	}

	if n, _ := repo.Count(ctx); n != 3 {
		t.Errorf("count = %d, want 3", n)
	}
}

func TestStatusTerminal(t *testing.T) {
	if StatusPending.Terminal() {
		t.Error("pending is not terminal")
	}
	for _, st := range []Status{StatusApproved, StatusRejected, StatusExpired} {
		if !st.Terminal() {
			t.Errorf("%s should be terminal", st)
		}
	}
}
