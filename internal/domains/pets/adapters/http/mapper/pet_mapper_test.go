package mapper

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Apurer/petstore-api-tests/internal/domains/pets/domain"
)

func TestPetJSON_FieldNames(t *testing.T) {
	pet := FromDomainPet(&domain.Pet{
		ID:        12,
		Category:  &domain.Category{ID: 1, Name: "Dog"},
		Name:      "Doggie",
		PhotoURLs: []string{"https://www.dog.com"},
		Tags:      []domain.Tag{{ID: 10, Name: "red"}},
		Status:    domain.StatusAvailable,
	})

	raw, err := json.Marshal(pet)
	require.NoError(t, err)
	require.JSONEq(t, `{
		"id": 12,
		"category": {"id": 1, "name": "Dog"},
		"name": "Doggie",
		"photoUrls": ["https://www.dog.com"],
		"tags": [{"id": 10, "name": "red"}],
		"status": "available"
	}`, string(raw))
}

func TestFromDomainPet_EmptyListsRenderAsArrays(t *testing.T) {
	raw, err := json.Marshal(FromDomainPet(&domain.Pet{ID: 1, Name: "x"}))
	require.NoError(t, err)
	require.JSONEq(t, `{"id": 1, "name": "x", "photoUrls": [], "tags": []}`, string(raw))
}

func TestToDomainPet_KeepsUnknownStatusAndOrder(t *testing.T) {
	var wire Pet
	require.NoError(t, json.Unmarshal([]byte(`{
		"id": 3,
		"name": "Pug",
		"photoUrls": ["b", "a", "b"],
		"tags": [{"id": 2, "name": "z"}, {"id": 1, "name": "y"}],
		"status": "adopted"
	}`), &wire))

	pet := ToDomainPet(wire)
	require.Equal(t, domain.Status("adopted"), pet.Status)
	require.Equal(t, []string{"b", "a", "b"}, pet.PhotoURLs)
	require.Equal(t, []domain.Tag{{ID: 2, Name: "z"}, {ID: 1, Name: "y"}}, pet.Tags)
	require.Nil(t, pet.Category)
}
