package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	petmemory "github.com/Apurer/petstore-api-tests/internal/domains/pets/adapters/memory"
	pettypes "github.com/Apurer/petstore-api-tests/internal/domains/pets/application/types"
	"github.com/Apurer/petstore-api-tests/internal/domains/pets/domain"
	"github.com/Apurer/petstore-api-tests/internal/domains/pets/ports"
)

func mutation(id int64, name, status string) pettypes.PetMutationInput {
	return pettypes.PetMutationInput{
		ID:        id,
		Name:      name,
		PhotoURLs: []string{"https://www.dog.com"},
		Category:  &pettypes.CategoryInput{ID: 1, Name: "Dog"},
		Tags:      []pettypes.TagInput{{ID: 10, Name: "red"}, {ID: 20, Name: "black"}},
		Status:    status,
	}
}

func TestAddPet_Success(t *testing.T) {
	svc := NewService(petmemory.NewRepository())

	proj, err := svc.AddPet(context.Background(), pettypes.AddPetInput{PetMutationInput: mutation(1, "Doggie", "available")})
	require.NoError(t, err)
	require.Equal(t, int64(1), proj.Pet.ID)
	require.Equal(t, "Doggie", proj.Pet.Name)
	require.Equal(t, domain.StatusAvailable, proj.Pet.Status)
	require.Equal(t, &domain.Category{ID: 1, Name: "Dog"}, proj.Pet.Category)
	require.Equal(t, []domain.Tag{{ID: 10, Name: "red"}, {ID: 20, Name: "black"}}, proj.Pet.Tags)
	require.False(t, proj.Metadata.CreatedAt.IsZero())
}

func TestAddPet_AssignsID(t *testing.T) {
	svc := NewService(petmemory.NewRepository(), WithIDSource(func() int64 { return 77 }))

	proj, err := svc.AddPet(context.Background(), pettypes.AddPetInput{PetMutationInput: mutation(0, "Doggie", "")})
	require.NoError(t, err)
	require.Equal(t, int64(77), proj.Pet.ID)
}

func TestAddPet_NegativeID(t *testing.T) {
	svc := NewService(petmemory.NewRepository())

	_, err := svc.AddPet(context.Background(), pettypes.AddPetInput{PetMutationInput: mutation(-5, "Doggie", "")})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdatePet_Upserts(t *testing.T) {
	repo := petmemory.NewRepository()
	svc := NewService(repo)
	ctx := context.Background()

	_, err := svc.AddPet(ctx, pettypes.AddPetInput{PetMutationInput: mutation(1, "Doggie", "available")})
	require.NoError(t, err)

	replaced, err := svc.UpdatePet(ctx, pettypes.UpdatePetInput{PetMutationInput: mutation(2, "German Shepherd", "sold")})
	require.NoError(t, err)
	require.Equal(t, int64(2), replaced.Pet.ID)
	require.Equal(t, "German Shepherd", replaced.Pet.Name)
	require.Equal(t, domain.StatusSold, replaced.Pet.Status)

	original, err := svc.GetByID(ctx, pettypes.PetIdentifier{ID: 1})
	require.NoError(t, err)
	require.Equal(t, "Doggie", original.Pet.Name)
}

func TestUpdatePet_KeepsCreatedAt(t *testing.T) {
	clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	repo := petmemory.NewRepository().WithClock(func() time.Time { return clock })
	svc := NewService(repo)
	ctx := context.Background()

	created, err := svc.AddPet(ctx, pettypes.AddPetInput{PetMutationInput: mutation(3, "Rex", "available")})
	require.NoError(t, err)

	clock = clock.Add(time.Minute)
	updated, err := svc.UpdatePet(ctx, pettypes.UpdatePetInput{PetMutationInput: mutation(3, "Rexy", "pending")})
	require.NoError(t, err)
	require.Equal(t, created.Metadata.CreatedAt, updated.Metadata.CreatedAt)
	require.True(t, updated.Metadata.UpdatedAt.After(created.Metadata.UpdatedAt))
}

func TestUpdatePetWithForm(t *testing.T) {
	svc := NewService(petmemory.NewRepository())
	ctx := context.Background()

	_, err := svc.AddPet(ctx, pettypes.AddPetInput{PetMutationInput: mutation(4, "Doggie", "available")})
	require.NoError(t, err)

	name, status := "Pug", "sold"
	updated, err := svc.UpdatePetWithForm(ctx, pettypes.UpdatePetWithFormInput{ID: 4, Name: &name, Status: &status})
	require.NoError(t, err)
	require.Equal(t, "Pug", updated.Pet.Name)
	require.Equal(t, domain.StatusSold, updated.Pet.Status)
	require.Len(t, updated.Pet.Tags, 2)

	_, err = svc.UpdatePetWithForm(ctx, pettypes.UpdatePetWithFormInput{ID: 404, Name: &name})
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestFindByStatus_SplitsCommaSeparated(t *testing.T) {
	svc := NewService(petmemory.NewRepository())
	ctx := context.Background()
	for i, status := range []string{"available", "pending", "sold", "lost"} {
		_, err := svc.AddPet(ctx, pettypes.AddPetInput{PetMutationInput: mutation(int64(i+1), "pet", status)})
		require.NoError(t, err)
	}

	result, err := svc.FindByStatus(ctx, pettypes.FindPetsByStatusInput{Statuses: []string{"available,pending,sold"}})
	require.NoError(t, err)
	require.Len(t, result, 3)

	defaulted, err := svc.FindByStatus(ctx, pettypes.FindPetsByStatusInput{})
	require.NoError(t, err)
	require.Len(t, defaulted, 1)
	require.Equal(t, domain.StatusAvailable, defaulted[0].Pet.Status)
}

func TestParseStatuses(t *testing.T) {
	got := ParseStatuses([]string{"available, pending", "", "sold,available", " ,"})
	require.Equal(t, []domain.Status{domain.StatusAvailable, domain.StatusPending, domain.StatusSold}, got)
	require.Empty(t, ParseStatuses(nil))
}

func TestDelete_ThenNotFound(t *testing.T) {
	svc := NewService(petmemory.NewRepository())
	ctx := context.Background()

	_, err := svc.AddPet(ctx, pettypes.AddPetInput{PetMutationInput: mutation(8, "Doggie", "available")})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, pettypes.PetIdentifier{ID: 8}))
	require.ErrorIs(t, svc.Delete(ctx, pettypes.PetIdentifier{ID: 8}), ports.ErrNotFound)
}

func TestUploadImage(t *testing.T) {
	svc := NewService(petmemory.NewRepository())
	ctx := context.Background()

	_, err := svc.AddPet(ctx, pettypes.AddPetInput{PetMutationInput: mutation(9, "Doggie", "available")})
	require.NoError(t, err)

	result, err := svc.UploadImage(ctx, pettypes.UploadImageInput{ID: 9, Filename: "petImage.jpg", Size: 12, Metadata: "test"})
	require.NoError(t, err)
	require.Equal(t, int32(200), result.Code)
	require.Contains(t, result.Message, "petImage.jpg")
	require.Contains(t, result.Message, "test")

	_, err = svc.UploadImage(ctx, pettypes.UploadImageInput{ID: 10, Filename: "petImage.jpg"})
	require.ErrorIs(t, err, ports.ErrNotFound)

	_, err = svc.UploadImage(ctx, pettypes.UploadImageInput{ID: 9})
	require.ErrorIs(t, err, ErrInvalidInput)
}
