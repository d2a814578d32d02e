package ports

import (
	"context"
	"errors"

	pettypes "github.com/Apurer/petstore-api-tests/internal/domains/pets/application/types"
	"github.com/Apurer/petstore-api-tests/internal/domains/pets/domain"
)

var ErrNotFound = errors.New("pet not found")

// Repository is the outbound persistence port. Save is an upsert.
type Repository interface {
	Save(ctx context.Context, pet *domain.Pet) (*pettypes.PetProjection, error)
	GetByID(ctx context.Context, id int64) (*pettypes.PetProjection, error)
	Delete(ctx context.Context, id int64) error
	FindByStatus(ctx context.Context, statuses []domain.Status) ([]*pettypes.PetProjection, error)
	List(ctx context.Context) ([]*pettypes.PetProjection, error)
}
