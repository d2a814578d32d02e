package application

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	types "github.com/Apurer/petstore-api-tests/internal/domains/pets/application/types"
	"github.com/Apurer/petstore-api-tests/internal/domains/pets/domain"
	"github.com/Apurer/petstore-api-tests/internal/domains/pets/ports"
)

// Service orchestrates the pets use cases of the stub service.
type Service struct {
	repo   ports.Repository
	nextID func() int64
}

// Option configures the service.
type Option func(*Service)

// WithIDSource sets the function used to assign ids to pets posted without one.
func WithIDSource(next func() int64) Option {
	return func(s *Service) {
		if next != nil {
			s.nextID = next
		}
	}
}

// NewService wires the pets service with its dependencies.
func NewService(repo ports.Repository, opts ...Option) *Service {
	var seq atomic.Int64
	seq.Store(9_000_000_000)
	s := &Service{
		repo:   repo,
		nextID: func() int64 { return seq.Add(1) },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddPet stores a new pet. A zero id is replaced by a service-assigned one.
func (s *Service) AddPet(ctx context.Context, input types.AddPetInput) (*types.PetProjection, error) {
	pet, err := s.buildPet(input.PetMutationInput)
	if err != nil {
		return nil, err
	}
	return s.repo.Save(ctx, pet)
}

// UpdatePet replaces the stored state of a pet. Unknown ids are created.
func (s *Service) UpdatePet(ctx context.Context, input types.UpdatePetInput) (*types.PetProjection, error) {
	pet, err := s.buildPet(input.PetMutationInput)
	if err != nil {
		return nil, err
	}
	return s.repo.Save(ctx, pet)
}

// UpdatePetWithForm renames and/or re-labels an existing pet.
func (s *Service) UpdatePetWithForm(ctx context.Context, input types.UpdatePetWithFormInput) (*types.PetProjection, error) {
	projection, err := s.repo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	existing := projection.Pet
	if input.Name != nil && *input.Name != "" {
		existing.Rename(*input.Name)
	}
	if input.Status != nil && *input.Status != "" {
		existing.UpdateStatus(domain.Status(*input.Status))
	}
	return s.repo.Save(ctx, existing)
}

// FindByStatus returns pets whose status matches any requested value. Values may
// be repeated parameters or comma-separated lists; nothing requested means available.
func (s *Service) FindByStatus(ctx context.Context, input types.FindPetsByStatusInput) ([]*types.PetProjection, error) {
	statuses := ParseStatuses(input.Statuses)
	if len(statuses) == 0 {
		statuses = []domain.Status{domain.StatusAvailable}
	}
	return s.repo.FindByStatus(ctx, statuses)
}

// GetByID loads a single pet.
func (s *Service) GetByID(ctx context.Context, input types.PetIdentifier) (*types.PetProjection, error) {
	return s.repo.GetByID(ctx, input.ID)
}

// Delete removes a pet. Deleting an unknown id yields ports.ErrNotFound.
func (s *Service) Delete(ctx context.Context, input types.PetIdentifier) error {
	return s.repo.Delete(ctx, input.ID)
}

// UploadImage acknowledges an image for an existing pet. The bytes are not kept.
func (s *Service) UploadImage(ctx context.Context, input types.UploadImageInput) (*ports.UploadImageResult, error) {
	if strings.TrimSpace(input.Filename) == "" {
		return nil, invalid("missing file")
	}
	if _, err := s.repo.GetByID(ctx, input.ID); err != nil {
		return nil, err
	}
	msg := fmt.Sprintf("additionalMetadata: %s\nFile uploaded to ./%s, %d bytes", input.Metadata, input.Filename, input.Size)
	return &ports.UploadImageResult{Code: 200, Type: "unknown", Message: msg}, nil
}

// ParseStatuses flattens repeated and comma-separated status values, dropping
// blanks and duplicates while keeping first-seen order.
func ParseStatuses(values []string) []domain.Status {
	seen := map[domain.Status]struct{}{}
	var statuses []domain.Status
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			status := domain.Status(strings.TrimSpace(part))
			if status == "" {
				continue
			}
			if _, ok := seen[status]; ok {
				continue
			}
			seen[status] = struct{}{}
			statuses = append(statuses, status)
		}
	}
	return statuses
}

func (s *Service) buildPet(input types.PetMutationInput) (*domain.Pet, error) {
	if input.ID < 0 {
		return nil, invalid("id must not be negative, got %d", input.ID)
	}
	id := input.ID
	if id == 0 {
		id = s.nextID()
	}
	pet := &domain.Pet{ID: id}
	pet.Rename(input.Name)
	pet.UpdateStatus(domain.Status(input.Status))
	pet.ReplacePhotos(input.PhotoURLs)
	if input.Category != nil {
		pet.UpdateCategory(&domain.Category{ID: input.Category.ID, Name: input.Category.Name})
	}
	if input.Tags != nil {
		tags := make([]domain.Tag, 0, len(input.Tags))
		for _, t := range input.Tags {
			tags = append(tags, domain.Tag{ID: t.ID, Name: t.Name})
		}
		pet.ReplaceTags(tags)
	}
	return pet, nil
}

var _ ports.Service = (*Service)(nil)
