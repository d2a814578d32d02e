package types

// UploadImageInput represents the command to attach an image to a pet.
type UploadImageInput struct {
	ID       int64
	Filename string
	Size     int64
	Metadata string
}
