package fixtures

import _ "embed"

// PetImageFilename is the name the sample image is uploaded under.
const PetImageFilename = "petImage.jpg"

// PetImageMetadata is sent alongside the upload as additionalMetadata.
const PetImageMetadata = "test"

//go:embed testdata/petImage.jpg
var petImage []byte

// PetImage returns a copy of the sample JPEG used by the upload scenario.
func PetImage() []byte {
	return append([]byte{}, petImage...)
}
