package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/form-builder-service/internal/services"
	"github.com/SAP-F-2025/form-builder-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type FormHandler struct {
	BaseHandler
	formService services.FormService
}

func NewFormHandler(formService services.FormService, logger utils.Logger) *FormHandler {
	return &FormHandler{
		BaseHandler: NewBaseHandler(logger),
		formService: formService,
	}
}

// ListForms returns a page of forms, newest first
// @Summary List forms
// @Tags forms
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(10)
// @Param search query string false "Case-insensitive match on title or description"
// @Success 200 {object} SuccessResponse
// @Router /forms [get]
func (h *FormHandler) ListForms(c *gin.Context) {
	req := services.ListFormsRequest{
		Page:   parseIntQuery(c, "page", services.DefaultPage),
		Limit:  parseIntQuery(c, "limit", services.DefaultLimit),
		Search: c.Query("search"),
	}

	result, err := h.formService.List(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err, "Invalid request")
		return
	}

	h.RespondWithPage(c, result.Forms, result.Pagination, nil)
}

// GetForm retrieves a form by ID
// @Summary Get form
// @Tags forms
// @Produce json
// @Param id path string true "Form ID"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /forms/{id} [get]
func (h *FormHandler) GetForm(c *gin.Context) {
	form, err := h.formService.GetByID(c.Request.Context(), c.Param(formIDParam))
	if err != nil {
		h.handleServiceError(c, err, "Invalid form data")
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "", form)
}

// CreateForm creates a form from a multipart or JSON body
// @Summary Create form
// @Tags forms
// @Accept json,mpfd
// @Produce json
// @Param formData formData string false "Form JSON"
// @Param createdBy formData string false "Author"
// @Success 201 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Router /forms [post]
func (h *FormHandler) CreateForm(c *gin.Context) {
	payload, err := readFormPayload(c)
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid form data", err, err.Error())
		return
	}

	h.LogRequest(c, "Creating form", "created_by", payload.CreatedBy)

	form, err := h.formService.Create(c.Request.Context(), payload)
	if err != nil {
		h.handleServiceError(c, err, "Invalid form data")
		return
	}

	h.RespondWithSuccess(c, http.StatusCreated, "Form created successfully", form, "form_id", form.ID.Hex())
}

// UpdateForm applies the submitted fields onto an existing form
// @Summary Update form
// @Tags forms
// @Accept json,mpfd
// @Produce json
// @Param id path string true "Form ID"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /forms/{id} [put]
func (h *FormHandler) UpdateForm(c *gin.Context) {
	payload, err := readFormPayload(c)
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid form data", err, err.Error())
		return
	}

	id := c.Param(formIDParam)
	h.LogRequest(c, "Updating form", "form_id", id)

	form, err := h.formService.Update(c.Request.Context(), id, payload)
	if err != nil {
		h.handleServiceError(c, err, "Invalid form data")
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Form updated successfully", form, "form_id", id)
}

// DeleteForm deletes a form and all of its responses
// @Summary Delete form
// @Tags forms
// @Produce json
// @Param id path string true "Form ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /forms/{id} [delete]
func (h *FormHandler) DeleteForm(c *gin.Context) {
	id := c.Param(formIDParam)
	h.LogRequest(c, "Deleting form", "form_id", id)

	if err := h.formService.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err, "Invalid form data")
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Form deleted successfully", nil, "form_id", id)
}
