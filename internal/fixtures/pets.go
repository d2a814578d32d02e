// Package fixtures builds the in-memory pets the conformance scenarios send to the
// service under test.
package fixtures

import (
	"github.com/Apurer/petstore-api-tests/internal/domains/pets/domain"
)

const (
	DefaultCategoryName = "Dog"
	DefaultPetName      = "Doggie"
	UpdatedPetName      = "German Shepherd"
	FormPetName         = "Pug"
)

// DefaultPhotoURLs are attached to most scenario fixtures.
func DefaultPhotoURLs() []string {
	return []string{"https://www.dog.com", "https://www.dogworld.com"}
}

// PetBuilder assembles a Pet fixture starting from the suite defaults.
type PetBuilder struct {
	pet domain.Pet
}

// NewPet starts a builder with the default category, name, photos, tags, and status.
// The id comes from ids.
func NewPet(ids *IDGenerator) *PetBuilder {
	b := &PetBuilder{pet: domain.Pet{
		Category:  &domain.Category{ID: 1, Name: DefaultCategoryName},
		Name:      DefaultPetName,
		PhotoURLs: DefaultPhotoURLs(),
		Tags:      []domain.Tag{{ID: 10, Name: "red"}, {ID: 20, Name: "black"}},
		Status:    domain.StatusAvailable,
	}}
	if ids != nil {
		b.pet.ID = ids.NextID()
	}
	return b
}

// WithID overrides the generated identifier.
func (b *PetBuilder) WithID(id int64) *PetBuilder {
	b.pet.ID = id
	return b
}

// WithCategory sets the category.
func (b *PetBuilder) WithCategory(id int64, name string) *PetBuilder {
	b.pet.UpdateCategory(&domain.Category{ID: id, Name: name})
	return b
}

// WithoutCategory drops the category.
func (b *PetBuilder) WithoutCategory() *PetBuilder {
	b.pet.UpdateCategory(nil)
	return b
}

// WithName sets the display name.
func (b *PetBuilder) WithName(name string) *PetBuilder {
	b.pet.Rename(name)
	return b
}

// WithPhotoURLs replaces the photo URL list.
func (b *PetBuilder) WithPhotoURLs(urls ...string) *PetBuilder {
	b.pet.ReplacePhotos(urls)
	return b
}

// WithTags replaces the tag list.
func (b *PetBuilder) WithTags(tags ...domain.Tag) *PetBuilder {
	b.pet.ReplaceTags(tags)
	return b
}

// WithStatus sets the status.
func (b *PetBuilder) WithStatus(status domain.Status) *PetBuilder {
	b.pet.UpdateStatus(status)
	return b
}

// Build returns an independent copy of the assembled pet.
func (b *PetBuilder) Build() *domain.Pet {
	return b.pet.Clone()
}

// NewPetForAdd is the fixture posted by the add-pet scenario.
func NewPetForAdd(ids *IDGenerator) *domain.Pet {
	return NewPet(ids).
		WithCategory(1, DefaultCategoryName).
		WithTags(domain.Tag{ID: 10, Name: "red"}, domain.Tag{ID: 20, Name: "black"}).
		Build()
}

// NewPetForLookup is the fixture created and then fetched by id.
func NewPetForLookup(ids *IDGenerator) *domain.Pet {
	return NewPet(ids).
		WithCategory(2, DefaultCategoryName).
		WithPhotoURLs("https://www.doggie.com", "https://www.dogworlds.com").
		WithTags(domain.Tag{ID: 30, Name: "White"}, domain.Tag{ID: 40, Name: "Blue"}).
		Build()
}

// NewPetForUpdate is the fixture replaced through PUT.
func NewPetForUpdate(ids *IDGenerator) *domain.Pet {
	return NewPet(ids).
		WithCategory(4, DefaultCategoryName).
		WithTags(domain.Tag{ID: 30, Name: "Brown"}, domain.Tag{ID: 40, Name: "White"}).
		Build()
}

// NewPetForFormUpdate is the fixture updated through form fields.
func NewPetForFormUpdate(ids *IDGenerator) *domain.Pet {
	return NewPet(ids).
		WithCategory(5, DefaultCategoryName).
		WithTags(domain.Tag{ID: 50, Name: "Brownie"}, domain.Tag{ID: 60, Name: "Whitey"}).
		Build()
}

// NewPetForDelete is the fixture deleted twice.
func NewPetForDelete(ids *IDGenerator) *domain.Pet {
	return NewPet(ids).
		WithCategory(8, DefaultCategoryName).
		WithTags(domain.Tag{ID: 50, Name: "Brownie"}, domain.Tag{ID: 60, Name: "Whitey"}).
		Build()
}

// NewPetForUpload is the fixture an image is uploaded for.
func NewPetForUpload(ids *IDGenerator) *domain.Pet {
	return NewPet(ids).
		WithCategory(1, DefaultCategoryName).
		WithTags(domain.Tag{ID: 70, Name: "Brownie"}, domain.Tag{ID: 80, Name: "Whitey"}).
		Build()
}
