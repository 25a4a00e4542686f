package record

import (
	"context"

	"github.com/phr/phr/internal/platform/identity"
)

// Repository owns the record-id → HealthRecord mapping and the per-owner
// index. Implementations must keep both mutually consistent: a delete removes
// the record and its index entry as one step with no observable intermediate
// state.
type Repository interface {
	Create(ctx context.Context, r *HealthRecord) error
	GetByID(ctx context.Context, id string) (*HealthRecord, error)
	Update(ctx context.Context, r *HealthRecord) error
	Delete(ctx context.Context, id string) error
	// ListByOwner returns the owner's records in creation order.
	ListByOwner(ctx context.Context, owner identity.Ref) ([]*HealthRecord, error)
	// ListSharedWith scans for records whose shared_with contains grantee,
	// in store insertion order.
	ListSharedWith(ctx context.Context, grantee identity.Ref) ([]*HealthRecord, error)
	Count(ctx context.Context) (int, error)
}
