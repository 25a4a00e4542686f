package sharing

import (
	"context"

	"github.com/phr/phr/internal/platform/identity"
)

// Repository owns the request-id → ShareRequest mapping.
type Repository interface {
	Create(ctx context.Context, r *ShareRequest) error
	GetByID(ctx context.Context, id string) (*ShareRequest, error)
	Update(ctx context.Context, r *ShareRequest) error
	ListByPatient(ctx context.Context, patient identity.Ref) ([]*ShareRequest, error)
	ListByProvider(ctx context.Context, provider identity.Ref) ([]*ShareRequest, error)
	Count(ctx context.Context) (int, error)
}
