package mapper

import (
	pettypes "github.com/Apurer/petstore-api-tests/internal/domains/pets/application/types"
	"github.com/Apurer/petstore-api-tests/internal/domains/pets/domain"
)

// Category is the wire representation of a pet category.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Tag is the wire representation of a pet tag.
type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Pet is the JSON document exchanged on /pet endpoints.
type Pet struct {
	ID        int64     `json:"id"`
	Category  *Category `json:"category,omitempty"`
	Name      string    `json:"name"`
	PhotoURLs []string  `json:"photoUrls"`
	Tags      []Tag     `json:"tags"`
	Status    string    `json:"status,omitempty"`
}

// APIResponse is the envelope returned by the image upload endpoint.
type APIResponse struct {
	Code    int32  `json:"code"`
	Type    string `json:"type,omitempty"`
	Message string `json:"message,omitempty"`
}

// ToDomainPet maps a wire Pet into the domain record.
func ToDomainPet(input Pet) *domain.Pet {
	pet := &domain.Pet{ID: input.ID, Name: input.Name, Status: domain.Status(input.Status)}
	if input.Category != nil {
		pet.UpdateCategory(&domain.Category{ID: input.Category.ID, Name: input.Category.Name})
	}
	pet.ReplacePhotos(input.PhotoURLs)
	if input.Tags != nil {
		tags := make([]domain.Tag, 0, len(input.Tags))
		for _, t := range input.Tags {
			tags = append(tags, domain.Tag{ID: t.ID, Name: t.Name})
		}
		pet.ReplaceTags(tags)
	}
	return pet
}

// FromDomainPet maps a domain record into a wire Pet. Empty lists are rendered as
// [] rather than null.
func FromDomainPet(p *domain.Pet) Pet {
	if p == nil {
		return Pet{PhotoURLs: []string{}, Tags: []Tag{}}
	}
	var cat *Category
	if p.Category != nil {
		cat = &Category{ID: p.Category.ID, Name: p.Category.Name}
	}
	tags := make([]Tag, 0, len(p.Tags))
	for _, t := range p.Tags {
		tags = append(tags, Tag{ID: t.ID, Name: t.Name})
	}
	return Pet{
		ID:        p.ID,
		Category:  cat,
		Name:      p.Name,
		PhotoURLs: append([]string{}, p.PhotoURLs...),
		Tags:      tags,
		Status:    string(p.Status),
	}
}

// FromDomainPetList maps a slice of domain records to wire Pets.
func FromDomainPetList(list []*domain.Pet) []Pet {
	resp := make([]Pet, 0, len(list))
	for _, p := range list {
		resp = append(resp, FromDomainPet(p))
	}
	return resp
}

// ToDomainPetList maps a slice of wire Pets to domain records.
func ToDomainPetList(list []Pet) []*domain.Pet {
	resp := make([]*domain.Pet, 0, len(list))
	for _, p := range list {
		resp = append(resp, ToDomainPet(p))
	}
	return resp
}

// ToMutationInput maps a request body into the service command. An absent tags
// array stays nil.
func ToMutationInput(p Pet) pettypes.PetMutationInput {
	input := pettypes.PetMutationInput{
		ID:        p.ID,
		Name:      p.Name,
		PhotoURLs: p.PhotoURLs,
		Status:    p.Status,
	}
	if p.Category != nil {
		input.Category = &pettypes.CategoryInput{ID: p.Category.ID, Name: p.Category.Name}
	}
	if p.Tags != nil {
		input.Tags = make([]pettypes.TagInput, 0, len(p.Tags))
		for _, t := range p.Tags {
			input.Tags = append(input.Tags, pettypes.TagInput{ID: t.ID, Name: t.Name})
		}
	}
	return input
}

// FromProjection renders a stored pet.
func FromProjection(p *pettypes.PetProjection) Pet {
	if p == nil {
		return FromDomainPet(nil)
	}
	return FromDomainPet(p.Pet)
}

// FromProjectionList renders stored pets, always as a JSON array.
func FromProjectionList(list []*pettypes.PetProjection) []Pet {
	return FromDomainPetList(pettypes.Pets(list))
}
