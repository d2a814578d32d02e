package types

import (
	"time"

	"github.com/Apurer/petstore-api-tests/internal/domains/pets/domain"
)

// PetMetadata captures infrastructure timestamps associated with a stored pet.
type PetMetadata struct {
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PetProjection transports a pet together with its persistence metadata.
type PetProjection struct {
	Pet      *domain.Pet
	Metadata PetMetadata
}

// NewPetProjection wraps a pet with persistence metadata.
func NewPetProjection(pet *domain.Pet, createdAt, updatedAt time.Time) *PetProjection {
	if pet == nil {
		return nil
	}
	return &PetProjection{
		Pet: pet,
		Metadata: PetMetadata{
			CreatedAt: createdAt,
			UpdatedAt: updatedAt,
		},
	}
}

// Pets unwraps the pets of a projection list, skipping nil entries.
func Pets(list []*PetProjection) []*domain.Pet {
	pets := make([]*domain.Pet, 0, len(list))
	for _, p := range list {
		if p == nil || p.Pet == nil {
			continue
		}
		pets = append(pets, p.Pet)
	}
	return pets
}
