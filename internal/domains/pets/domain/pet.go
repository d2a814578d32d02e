package domain

// Status is the lifecycle label a pet-store service attaches to a pet.
// The three constants are conventions observed on the wire; any other value is
// carried through untouched.
type Status string

const (
	StatusAvailable Status = "available"
	StatusPending   Status = "pending"
	StatusSold      Status = "sold"
)

// Known reports whether the status is one of the conventional values.
func (s Status) Known() bool {
	switch s {
	case StatusAvailable, StatusPending, StatusSold:
		return true
	default:
		return false
	}
}

// AllStatuses returns the conventional statuses in the order services list them.
func AllStatuses() []Status {
	return []Status{StatusAvailable, StatusPending, StatusSold}
}

// Category groups pets in the catalog.
type Category struct {
	ID   int64
	Name string
}

// Tag is a lightweight marker attached to pets for filtering.
type Tag struct {
	ID   int64
	Name string
}

// Pet is the record exchanged with the pet-store service. Category and Tags are
// owned by the pet; none of the fields are cross-validated here.
type Pet struct {
	ID        int64
	Category  *Category
	Name      string
	PhotoURLs []string
	Tags      []Tag
	Status    Status
}

// Clone returns a deep copy so callers can mutate and re-send a pet without
// touching the original.
func (p *Pet) Clone() *Pet {
	if p == nil {
		return nil
	}
	clone := *p
	if p.Category != nil {
		category := *p.Category
		clone.Category = &category
	}
	if p.PhotoURLs != nil {
		clone.PhotoURLs = append([]string{}, p.PhotoURLs...)
	}
	if p.Tags != nil {
		clone.Tags = append([]Tag{}, p.Tags...)
	}
	return &clone
}

// Rename sets the display name.
func (p *Pet) Rename(name string) {
	p.Name = name
}

// UpdateStatus stores the status as given.
func (p *Pet) UpdateStatus(status Status) {
	p.Status = status
}

// ReplacePhotos swaps the photo URL list, preserving order and duplicates.
func (p *Pet) ReplacePhotos(urls []string) {
	if urls == nil {
		p.PhotoURLs = nil
		return
	}
	p.PhotoURLs = append([]string{}, urls...)
}

// ReplaceTags swaps the current tag list.
func (p *Pet) ReplaceTags(tags []Tag) {
	if tags == nil {
		p.Tags = nil
		return
	}
	p.Tags = append([]Tag{}, tags...)
}

// UpdateCategory sets a new category pointer.
func (p *Pet) UpdateCategory(cat *Category) {
	if cat == nil {
		p.Category = nil
		return
	}
	category := *cat
	p.Category = &category
}
