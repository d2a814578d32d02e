//go:build integration
// +build integration

// To enable gopls support for this file, add the following to your VSCode settings.json:
// "gopls": {
//   "buildFlags": ["-tags=integration"]
// }

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	petspostgres "github.com/Apurer/petstore-api-tests/internal/domains/pets/adapters/persistence/postgres"
	"github.com/Apurer/petstore-api-tests/internal/domains/pets/domain"
	"github.com/Apurer/petstore-api-tests/internal/domains/pets/ports"
	"github.com/Apurer/petstore-api-tests/internal/platform/migrations"
	platformpostgres "github.com/Apurer/petstore-api-tests/internal/platform/postgres"
)

func setupPostgresContainer(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := tcpostgres.Run(ctx, "postgres:15-alpine",
		tcpostgres.WithDatabase("petstore_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgContainer.Terminate(ctx) })

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := platformpostgres.Connect(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	require.NoError(t, migrations.Run(db))
	return db
}

func TestPostgresRepository_SaveAndGetByID(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	repo := petspostgres.NewRepository(setupPostgresContainer(t))
	ctx := context.Background()

	pet := &domain.Pet{
		ID:        1,
		Name:      "Buddy",
		Category:  &domain.Category{ID: 1, Name: "Dog"},
		PhotoURLs: []string{"https://www.dog.com", "https://www.dogworld.com", "https://www.dog.com"},
		Tags:      []domain.Tag{{ID: 10, Name: "red"}, {ID: 20, Name: ""}},
		Status:    domain.StatusAvailable,
	}

	projection, err := repo.Save(ctx, pet)
	require.NoError(t, err)
	assert.False(t, projection.Metadata.CreatedAt.IsZero())

	retrieved, err := repo.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, pet.Name, retrieved.Pet.Name)
	assert.Equal(t, pet.Status, retrieved.Pet.Status)
	assert.Equal(t, pet.Category, retrieved.Pet.Category)
	assert.Equal(t, pet.PhotoURLs, retrieved.Pet.PhotoURLs)
	assert.Equal(t, pet.Tags, retrieved.Pet.Tags)
}

func TestPostgresRepository_SaveIsUpsert(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	repo := petspostgres.NewRepository(setupPostgresContainer(t))
	ctx := context.Background()

	_, err := repo.Save(ctx, &domain.Pet{ID: 7, Name: "Doggie", Status: domain.StatusAvailable})
	require.NoError(t, err)
	updated, err := repo.Save(ctx, &domain.Pet{ID: 7, Name: "German Shepherd", Status: domain.StatusSold})
	require.NoError(t, err)
	assert.Equal(t, "German Shepherd", updated.Pet.Name)
	assert.Equal(t, domain.StatusSold, updated.Pet.Status)
	assert.Nil(t, updated.Pet.Category)
}

func TestPostgresRepository_FindByStatus(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	repo := petspostgres.NewRepository(setupPostgresContainer(t))
	ctx := context.Background()

	for _, p := range []*domain.Pet{
		{ID: 4, Name: "Another Available", Status: domain.StatusAvailable},
		{ID: 1, Name: "Available Dog", Status: domain.StatusAvailable},
		{ID: 2, Name: "Pending Cat", Status: domain.StatusPending},
		{ID: 3, Name: "Sold Bird", Status: domain.StatusSold},
	} {
		_, err := repo.Save(ctx, p)
		require.NoError(t, err)
	}

	available, err := repo.FindByStatus(ctx, []domain.Status{domain.StatusAvailable})
	require.NoError(t, err)
	require.Len(t, available, 2)
	assert.Equal(t, int64(1), available[0].Pet.ID)
	assert.Equal(t, int64(4), available[1].Pet.ID)

	pendingAndSold, err := repo.FindByStatus(ctx, []domain.Status{domain.StatusPending, domain.StatusSold})
	require.NoError(t, err)
	assert.Len(t, pendingAndSold, 2)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestPostgresRepository_DeleteTwice(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	repo := petspostgres.NewRepository(setupPostgresContainer(t))
	ctx := context.Background()

	_, err := repo.Save(ctx, &domain.Pet{ID: 1, Name: "ToDelete"})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, 1))
	require.ErrorIs(t, repo.Delete(ctx, 1), ports.ErrNotFound)

	_, err = repo.GetByID(ctx, 1)
	require.ErrorIs(t, err, ports.ErrNotFound)
}
