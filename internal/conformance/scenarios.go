// Package conformance checks that a pet-store service honours the /pet contract.
//
// Each Scenario is a short straight-line script: build a fixture, call the
// service, assert on the status code and the echoed fields. Scenarios are
// independent of each other and can be run in any order.
package conformance

import (
	"context"
	"log/slog"

	"github.com/Apurer/petstore-api-tests/internal/domains/pets/domain"
	"github.com/Apurer/petstore-api-tests/internal/fixtures"
	"github.com/Apurer/petstore-api-tests/internal/shared/httpstatus"
)

// Scenario is one conformance check.
type Scenario struct {
	Name        string
	Description string
	Run         func(ctx context.Context, h *Harness) error
}

const (
	AddPet            = "add-pet"
	FindByStatus      = "find-by-status"
	FindByID          = "find-by-id"
	UpdatePet         = "update-pet"
	UpdatePetWithForm = "update-pet-with-form"
	DeletePet         = "delete-pet"
	UploadImage       = "upload-image"
)

// Scenarios returns every scenario in execution order.
func Scenarios() []Scenario {
	return []Scenario{
		{
			Name:        AddPet,
			Description: "POST /pet echoes the created pet",
			Run:         runAddPet,
		},
		{
			Name:        FindByStatus,
			Description: "GET /pet/findByStatus accepts a comma-separated status list",
			Run:         runFindByStatus,
		},
		{
			Name:        FindByID,
			Description: "GET /pet/{id} returns a created pet and 404 for an unknown id",
			Run:         runFindByID,
		},
		{
			Name:        UpdatePet,
			Description: "PUT /pet echoes the replaced id, name and status",
			Run:         runUpdatePet,
		},
		{
			Name:        UpdatePetWithForm,
			Description: "POST /pet/{id} accepts name and status form fields",
			Run:         runUpdatePetWithForm,
		},
		{
			Name:        DeletePet,
			Description: "DELETE /pet/{id} returns 200 and then 404",
			Run:         runDeletePet,
		},
		{
			Name:        UploadImage,
			Description: "POST /pet/{id}/uploadImage accepts a multipart image",
			Run:         runUploadImage,
		},
	}
}

func runAddPet(ctx context.Context, h *Harness) error {
	const step = "add pet"
	pet := fixtures.NewPetForAdd(h.ids)
	res, err := h.client.AddPet(ctx, pet)
	if err != nil {
		return transport(step, err)
	}
	if err := h.expectStatus(ctx, step, res, httpstatus.OK); err != nil {
		return err
	}
	got, err := res.DecodePet()
	if err != nil {
		return &Failure{Step: step, Err: err}
	}
	if err := expectEcho(step, pet, got); err != nil {
		return err
	}
	if err := expectEqual(step, "category", pet.Category, got.Category); err != nil {
		return err
	}
	if err := expectEqual(step, "photoUrls", pet.PhotoURLs, got.PhotoURLs); err != nil {
		return err
	}
	return expectEqual(step, "tags", pet.Tags, got.Tags)
}

func runFindByStatus(ctx context.Context, h *Harness) error {
	const step = "find pets by status"
	res, err := h.client.FindByStatus(ctx, domain.AllStatuses()...)
	if err != nil {
		return transport(step, err)
	}
	if err := h.expectStatus(ctx, step, res, httpstatus.OK); err != nil {
		return err
	}
	pets, err := res.DecodePets()
	if err != nil {
		return &Failure{Step: step, Err: err}
	}
	h.logger.LogAttrs(ctx, slog.LevelInfo, "pets found by status", slog.Int("count", len(pets)))
	return nil
}

func runFindByID(ctx context.Context, h *Harness) error {
	pet := fixtures.NewPetForLookup(h.ids)
	id, err := h.createPet(ctx, pet)
	if err != nil {
		return err
	}

	const step = "get pet"
	res, err := h.client.GetPet(ctx, id)
	if err != nil {
		return transport(step, err)
	}
	if err := h.expectStatus(ctx, step, res, httpstatus.OK); err != nil {
		return err
	}
	got, err := res.DecodePet()
	if err != nil {
		return &Failure{Step: step, Err: err}
	}
	want := pet.Clone()
	want.ID = id
	if err := expectEcho(step, want, got); err != nil {
		return err
	}

	const missingStep = "get missing pet"
	missing := fixtures.MissingPetID(h.now())
	res, err = h.client.GetPet(ctx, missing)
	if err != nil {
		return transport(missingStep, err)
	}
	return h.expectStatus(ctx, missingStep, res, httpstatus.NotFound)
}

func runUpdatePet(ctx context.Context, h *Harness) error {
	pet := fixtures.NewPetForUpdate(h.ids)
	id, err := h.createPet(ctx, pet)
	if err != nil {
		return err
	}

	const step = "replace pet"
	replacement := pet.Clone()
	replacement.ID = h.ids.NextID()
	replacement.Rename(fixtures.UpdatedPetName)
	replacement.UpdateStatus(domain.StatusSold)
	h.logger.LogAttrs(ctx, slog.LevelInfo, "replacing pet",
		slog.Int64("pet.id", id),
		slog.Int64("pet.new_id", replacement.ID),
	)
	res, err := h.client.UpdatePet(ctx, replacement)
	if err != nil {
		return transport(step, err)
	}
	if err := h.expectStatus(ctx, step, res, httpstatus.OK); err != nil {
		return err
	}
	got, err := res.DecodePet()
	if err != nil {
		return &Failure{Step: step, Err: err}
	}
	return expectEcho(step, replacement, got)
}

func runUpdatePetWithForm(ctx context.Context, h *Harness) error {
	id, err := h.createPet(ctx, fixtures.NewPetForFormUpdate(h.ids))
	if err != nil {
		return err
	}

	const step = "update pet with form"
	res, err := h.client.UpdatePetWithForm(ctx, id, fixtures.FormPetName, domain.StatusSold)
	if err != nil {
		return transport(step, err)
	}
	return h.expectStatus(ctx, step, res, httpstatus.OK)
}

func runDeletePet(ctx context.Context, h *Harness) error {
	id, err := h.createPet(ctx, fixtures.NewPetForDelete(h.ids))
	if err != nil {
		return err
	}

	const step = "delete pet"
	res, err := h.client.DeletePet(ctx, id)
	if err != nil {
		return transport(step, err)
	}
	if err := h.expectStatus(ctx, step, res, httpstatus.OK); err != nil {
		return err
	}

	const repeatStep = "delete pet again"
	res, err = h.client.DeletePet(ctx, id)
	if err != nil {
		return transport(repeatStep, err)
	}
	return h.expectStatus(ctx, repeatStep, res, httpstatus.NotFound)
}

func runUploadImage(ctx context.Context, h *Harness) error {
	id, err := h.createPet(ctx, fixtures.NewPetForUpload(h.ids))
	if err != nil {
		return err
	}

	const step = "upload image"
	res, err := h.client.UploadImage(ctx, id, h.image)
	if err != nil {
		return transport(step, err)
	}
	if err := h.expectStatus(ctx, step, res, httpstatus.OK); err != nil {
		return err
	}
	envelope, err := res.DecodeAPIResponse()
	if err != nil {
		return &Failure{Step: step, Err: err}
	}
	h.logger.LogAttrs(ctx, slog.LevelInfo, "image uploaded",
		slog.Int64("pet.id", id),
		slog.String("message", envelope.Message),
	)
	return nil
}
