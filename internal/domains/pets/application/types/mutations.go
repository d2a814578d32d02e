package types

// CategoryInput describes the category payload supplied to pet use cases.
type CategoryInput struct {
	ID   int64
	Name string
}

// TagInput carries tag metadata for pet commands.
type TagInput struct {
	ID   int64
	Name string
}

// PetMutationInput is the full pet state sent on create and replace. Nil slices
// mean the field was absent from the request.
type PetMutationInput struct {
	ID        int64
	Name      string
	PhotoURLs []string
	Category  *CategoryInput
	Tags      []TagInput
	Status    string
}

// AddPetInput captures the request to add a new pet into the catalog.
type AddPetInput struct {
	PetMutationInput
}

// UpdatePetInput replaces a pet with new state, creating it when the id is unknown.
type UpdatePetInput struct {
	PetMutationInput
}

// UpdatePetWithFormInput models the simplified form-based update flow.
type UpdatePetWithFormInput struct {
	ID     int64
	Name   *string
	Status *string
}
