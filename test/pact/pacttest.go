//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/Apurer/petstore-api-tests/internal/domains/pets/domain"
)

const (
	ProviderName = "petstore-api"
	ConsumerName = "petstore-conformance"

	StatePetsBaseline = "pets baseline"
	StatePetExists    = "pet with id 101 exists"
	StatePetMissing   = "no pet with id 404"
	StatePetsByStatus = "an available pet exists"
)

const (
	ExistingPetID int64 = 101
	MissingPetID  int64 = 404
)

const (
	ExamplePhotoURL = "https://example.pact/pets/fluffy.png"
	ExamplePetName  = "Fluffy Pact Cat"
)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the canonical pact file path for the conformance consumer.
func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// ExamplePet is the pet both sides of the contract agree on.
func ExamplePet() *domain.Pet {
	return &domain.Pet{
		ID:        ExistingPetID,
		Category:  &domain.Category{ID: 1, Name: "Cat"},
		Name:      ExamplePetName,
		PhotoURLs: []string{ExamplePhotoURL},
		Tags:      []domain.Tag{{ID: 10, Name: "fluffy"}},
		Status:    domain.StatusAvailable,
	}
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
