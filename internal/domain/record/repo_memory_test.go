package record

import (
	"context"
	"testing"
	"time"

	"github.com/phr/phr/internal/platform/apperr"
	"github.com/phr/phr/internal/platform/identity"
)

func newTestRecord(id string, owner identity.Ref) *HealthRecord {
	now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	return &HealthRecord{
		ID:         id,
		Owner:      owner,
		Title:      "record " + id,
		RecordType: TypeLabResult,
		SharedWith: []identity.Ref{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func TestMemoryRepositoryCreateGet(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	r := newTestRecord("rec-1", "alice")
	if err := repo.Create(ctx, r); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.GetByID(ctx, "rec-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Owner != "alice" || got.Title != "record rec-1" {
		t.Errorf("unexpected record: %+v", got)
	}

	// Mutating the returned record must not touch store state.
	got.Title = "tampered"
	got.SharedWith = append(got.SharedWith, "mallory")
	again, _ := repo.GetByID(ctx, "rec-1")
	if again.Title != "record rec-1" || len(again.SharedWith) != 0 {
		t.Error("store state was aliased by a returned record")
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

	if err := repo.Create(ctx, newTestRecord("rec-1", "alice")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on duplicate id")
		}
	}()
	_ = repo.Create(ctx, newTestRecord("rec-1", "bob"))
}

func TestMemoryRepositoryDeleteRemovesIndexEntry(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	for _, id := range []string{"rec-1", "rec-2", "rec-3"} {
		if err := repo.Create(ctx, newTestRecord(id, "alice")); err != nil {
			t.Fatalf("Create %s: %v", id, err)
		}
	}

	if err := repo.Delete(ctx, "rec-2"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	owned, err := repo.ListByOwner(ctx, "alice")
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	if len(owned) != 2 || owned[0].ID != "rec-1" || owned[1].ID != "rec-3" {
		t.Errorf("unexpected owner listing after delete: %v", owned)
	}

	if err := repo.Delete(ctx, "rec-2"); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("second delete should report not found, got %v", err)
	}
}

func TestMemoryRepositoryListByOwnerOrder(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	ids := []string{"c", "a", "b"}
	for _, id := range ids {
		if err := repo.Create(ctx, newTestRecord(id, "alice")); err != nil {
			t.Fatalf("Create %s: %v", id, err)
		}
	}
	_ = repo.Create(ctx, newTestRecord("x", "bob"))

	owned, err := repo.ListByOwner(ctx, "alice")
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	if len(owned) != 3 {
		t.Fatalf("expected 3 records, got %d", len(owned))
	}
	for i, id := range ids {
		if owned[i].ID != id {
			t.Errorf("position %d: got %s, want %s (creation order)", i, owned[i].ID, id)
		}
	}
}

func TestMemoryRepositoryListSharedWith(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	r1 := newTestRecord("rec-1", "alice")
	r1.SharedWith = []identity.Ref{"dr-bob"}
	r2 := newTestRecord("rec-2", "carol")
	r2.SharedWith = []identity.Ref{"dr-bob", "dr-dan"}
	r3 := newTestRecord("rec-3", "alice")

	for _, r := range []*HealthRecord{r1, r2, r3} {
		if err := repo.Create(ctx, r); err != nil {
			t.Fatalf("Create %s: %v", r.ID, err)
		}
	}

	shared, err := repo.ListSharedWith(ctx, "dr-bob")
	if err != nil {
		t.Fatalf("ListSharedWith: %v", err)
	}
	if len(shared) != 2 || shared[0].ID != "rec-1" || shared[1].ID != "rec-2" {
		t.Errorf("unexpected shared listing: %v", shared)
	}

	none, _ := repo.ListSharedWith(ctx, "nobody")
	if len(none) != 0 {
		t.Errorf("expected empty listing, got %d", len(none))
	}
}

func TestMemoryRepositoryCount(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	if n, _ := repo.Count(ctx); n != 0 {
		t.Fatalf("empty store count = %d", n)
	}
	_ = repo.Create(ctx, newTestRecord("rec-1", "alice"))
	_ = repo.Create(ctx, newTestRecord("rec-2", "bob"))
	if n, _ := repo.Count(ctx); n != 2 {
		t.Fatalf("count = %d, want 2", n)
	}
}
