package stub

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	pethttpmapper "github.com/Apurer/petstore-api-tests/internal/domains/pets/adapters/http/mapper"
	petsapp "github.com/Apurer/petstore-api-tests/internal/domains/pets/application"
	pettypes "github.com/Apurer/petstore-api-tests/internal/domains/pets/application/types"
	"github.com/Apurer/petstore-api-tests/internal/domains/pets/ports"
	apierrors "github.com/Apurer/petstore-api-tests/internal/shared/errors"
)

// PetAPI wires HTTP transport with the pets service.
type PetAPI struct {
	service     ports.Service
	uploadField string
	responder   *apierrors.Responder
}

// NewPetAPI creates a PetAPI backed by the provided service.
func NewPetAPI(service ports.Service, uploadField string) *PetAPI {
	if uploadField == "" {
		uploadField = DefaultUploadField
	}
	return &PetAPI{
		service:     service,
		uploadField: uploadField,
		responder:   apierrors.NewResponder("", mapPetError),
	}
}

// Post /v2/pet
// Add a new pet to the store
func (api *PetAPI) AddPet(c *gin.Context) {
	var payload pethttpmapper.Pet
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.responder.BadRequest(c, err.Error())
		return
	}
	saved, err := api.service.AddPet(c.Request.Context(), pettypes.AddPetInput{PetMutationInput: pethttpmapper.ToMutationInput(payload)})
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pethttpmapper.FromProjection(saved))
}

// Put /v2/pet
// Update an existing pet, creating it when the id is unknown
func (api *PetAPI) UpdatePet(c *gin.Context) {
	var payload pethttpmapper.Pet
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.responder.BadRequest(c, err.Error())
		return
	}
	updated, err := api.service.UpdatePet(c.Request.Context(), pettypes.UpdatePetInput{PetMutationInput: pethttpmapper.ToMutationInput(payload)})
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pethttpmapper.FromProjection(updated))
}

// Get /v2/pet/findByStatus
// Finds Pets by status
func (api *PetAPI) FindPetsByStatus(c *gin.Context) {
	result, err := api.service.FindByStatus(c.Request.Context(), pettypes.FindPetsByStatusInput{Statuses: c.QueryArray("status")})
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pethttpmapper.FromProjectionList(result))
}

// Get /v2/pet/:petId
// Find pet by ID
func (api *PetAPI) GetPetByID(c *gin.Context) {
	id, ok := api.parseIDParam(c)
	if !ok {
		return
	}
	pet, err := api.service.GetByID(c.Request.Context(), pettypes.PetIdentifier{ID: id})
	if err != nil {
		api.respondPetError(c, id, err)
		return
	}
	c.JSON(http.StatusOK, pethttpmapper.FromProjection(pet))
}

// Post /v2/pet/:petId
// Updates a pet in the store with form data
func (api *PetAPI) UpdatePetWithForm(c *gin.Context) {
	id, ok := api.parseIDParam(c)
	if !ok {
		return
	}
	input := pettypes.UpdatePetWithFormInput{ID: id}
	if name, ok := c.GetPostForm("name"); ok {
		input.Name = &name
	}
	if status, ok := c.GetPostForm("status"); ok {
		input.Status = &status
	}
	if _, err := api.service.UpdatePetWithForm(c.Request.Context(), input); err != nil {
		api.respondPetError(c, id, err)
		return
	}
	c.JSON(http.StatusOK, acknowledge(id))
}

// Delete /v2/pet/:petId
// Deletes a pet
func (api *PetAPI) DeletePet(c *gin.Context) {
	id, ok := api.parseIDParam(c)
	if !ok {
		return
	}
	if err := api.service.Delete(c.Request.Context(), pettypes.PetIdentifier{ID: id}); err != nil {
		api.respondPetError(c, id, err)
		return
	}
	c.JSON(http.StatusOK, acknowledge(id))
}

// Post /v2/pet/:petId/uploadImage
// uploads an image
func (api *PetAPI) UploadFile(c *gin.Context) {
	id, ok := api.parseIDParam(c)
	if !ok {
		return
	}
	file, err := api.uploadedFile(c)
	if err != nil {
		api.responder.BadRequest(c, err.Error())
		return
	}
	input := pettypes.UploadImageInput{
		ID:       id,
		Filename: file.Filename,
		Size:     file.Size,
		Metadata: c.PostForm("additionalMetadata"),
	}
	result, err := api.service.UploadImage(c.Request.Context(), input)
	if err != nil {
		api.respondPetError(c, id, err)
		return
	}
	c.JSON(http.StatusOK, pethttpmapper.APIResponse{Code: result.Code, Type: result.Type, Message: result.Message})
}

// uploadedFile prefers the configured field and otherwise accepts a form with
// exactly one file part.
func (api *PetAPI) uploadedFile(c *gin.Context) (*multipart.FileHeader, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, err
	}
	if files := form.File[api.uploadField]; len(files) > 0 {
		return files[0], nil
	}
	var found []*multipart.FileHeader
	for _, files := range form.File {
		found = append(found, files...)
	}
	switch len(found) {
	case 0:
		return nil, errors.New("multipart body carries no file")
	case 1:
		return found[0], nil
	default:
		return nil, errors.New("multipart body carries several files and none under " + strconv.Quote(api.uploadField))
	}
}

func (api *PetAPI) parseIDParam(c *gin.Context) (int64, bool) {
	value := c.Param("petId")
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		api.responder.Respond(c, apierrors.ErrBadRequest.
			WithDetail("petId must be an integer").
			WithExtension("petId", value))
		return 0, false
	}
	return id, true
}

func (api *PetAPI) respondPetError(c *gin.Context, id int64, err error) {
	if errors.Is(err, ports.ErrNotFound) {
		api.responder.NotFound(c, "pet", id)
		return
	}
	api.responder.RespondError(c, err)
}

func mapPetError(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, ports.ErrNotFound):
		return apierrors.ErrNotFound.WithDetail(err.Error()), true
	case errors.Is(err, petsapp.ErrInvalidInput):
		return apierrors.ErrValidation.WithDetail(err.Error()), true
	default:
		return apierrors.ProblemDetail{}, false
	}
}

func acknowledge(id int64) pethttpmapper.APIResponse {
	return pethttpmapper.APIResponse{Code: http.StatusOK, Type: "unknown", Message: strconv.FormatInt(id, 10)}
}
