package directory

import (
	"context"

	"github.com/phr/phr/internal/platform/identity"
)

type PatientRepository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id identity.Ref) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	Count(ctx context.Context) (int, error)
}

type ProviderRepository interface {
	Create(ctx context.Context, p *Provider) error
	GetByID(ctx context.Context, id identity.Ref) (*Provider, error)
	Update(ctx context.Context, p *Provider) error
	List(ctx context.Context, limit, offset int) ([]*Provider, int, error)
	Count(ctx context.Context) (int, error)
}
