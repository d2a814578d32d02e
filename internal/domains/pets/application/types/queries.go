package types

// FindPetsByStatusInput filters pets by status. Each entry may itself be a
// comma-separated list.
type FindPetsByStatusInput struct {
	Statuses []string
}

// PetIdentifier references a pet by its ID.
type PetIdentifier struct {
	ID int64
}
