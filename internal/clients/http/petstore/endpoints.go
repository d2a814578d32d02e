package petstore

import (
	"fmt"

	"github.com/oapi-codegen/runtime"
)

// Endpoints renders the request paths of the pet resource, relative to the base URI.
type Endpoints struct{}

func (Endpoints) Pets() string {
	return "/pet"
}

func (Endpoints) FindByStatus() string {
	return "/pet/findByStatus"
}

func (e Endpoints) Pet(id int64) (string, error) {
	return petPath(id, "")
}

func (e Endpoints) UploadImage(id int64) (string, error) {
	return petPath(id, "/uploadImage")
}

func petPath(id int64, suffix string) (string, error) {
	param, err := runtime.StyleParamWithLocation("simple", false, "petId", runtime.ParamLocationPath, id)
	if err != nil {
		return "", fmt.Errorf("style petId path parameter: %w", err)
	}
	return "/pet/" + param + suffix, nil
}
