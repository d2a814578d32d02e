package petstore

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Apurer/petstore-api-tests/internal/domains/pets/adapters/http/mapper"
	"github.com/Apurer/petstore-api-tests/internal/domains/pets/domain"
	apierrors "github.com/Apurer/petstore-api-tests/internal/shared/errors"
	"github.com/Apurer/petstore-api-tests/internal/shared/httpstatus"
)

// Response is a fully read HTTP response from the pet-store service.
type Response struct {
	Method     string
	Path       string
	StatusCode int
	Status     string
	Header     http.Header
	Body       []byte
	Duration   time.Duration
	TraceID    string
}

// ExpectStatus returns an *UnexpectedStatusError unless the status code matches want.
func (r *Response) ExpectStatus(want httpstatus.Status) error {
	if want.Is(r.StatusCode) {
		return nil
	}
	err := &UnexpectedStatusError{
		Method:  r.Method,
		Path:    r.Path,
		Want:    want,
		Got:     r.StatusCode,
		Body:    string(r.Body),
		TraceID: r.TraceID,
	}
	if problem, ok := r.Problem(); ok {
		err.Problem = &problem
	}
	return err
}

// DecodeJSON unmarshals the body into v.
func (r *Response) DecodeJSON(v any) error {
	if len(r.Body) == 0 {
		return fmt.Errorf("%w: %s %s: empty body", ErrDecode, r.Method, r.Path)
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrDecode, r.Method, r.Path, err)
	}
	return nil
}

// DecodePet parses the body as a single pet.
func (r *Response) DecodePet() (*domain.Pet, error) {
	var wire mapper.Pet
	if err := r.DecodeJSON(&wire); err != nil {
		return nil, err
	}
	return mapper.ToDomainPet(wire), nil
}

// DecodePets parses the body as a list of pets.
func (r *Response) DecodePets() ([]*domain.Pet, error) {
	var wire []mapper.Pet
	if err := r.DecodeJSON(&wire); err != nil {
		return nil, err
	}
	return mapper.ToDomainPetList(wire), nil
}

// DecodeAPIResponse parses the body as the upload envelope.
func (r *Response) DecodeAPIResponse() (*mapper.APIResponse, error) {
	var envelope mapper.APIResponse
	if err := r.DecodeJSON(&envelope); err != nil {
		return nil, err
	}
	return &envelope, nil
}

// PetID reads the top-level "id" field of the body.
func (r *Response) PetID() (int64, error) {
	var probe struct {
		ID *int64 `json:"id"`
	}
	if err := r.DecodeJSON(&probe); err != nil {
		return 0, err
	}
	if probe.ID == nil {
		return 0, fmt.Errorf("%w: %s %s", ErrMissingID, r.Method, r.Path)
	}
	return *probe.ID, nil
}

// Problem returns the RFC 7807 document carried by the body, if any.
func (r *Response) Problem() (apierrors.ProblemDetail, bool) {
	return apierrors.Decode(r.Header.Get("Content-Type"), r.Body)
}
