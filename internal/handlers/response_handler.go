package handlers

import (
	"fmt"
	"net/http"

	"github.com/SAP-F-2025/form-builder-service/internal/models"
	"github.com/SAP-F-2025/form-builder-service/internal/services"
	"github.com/SAP-F-2025/form-builder-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type ResponseHandler struct {
	BaseHandler
	responseService services.ResponseService
	exportService   services.ExportService
}

func NewResponseHandler(
	responseService services.ResponseService,
	exportService services.ExportService,
	logger utils.Logger,
) *ResponseHandler {
	return &ResponseHandler{
		BaseHandler:     NewBaseHandler(logger),
		responseService: responseService,
		exportService:   exportService,
	}
}

// SubmitResponse scores and stores a submission
// @Summary Submit response
// @Tags responses
// @Accept json
// @Produce json
// @Param formId path string true "Form ID"
// @Param response body models.SubmitRequest true "Answers"
// @Success 201 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /forms/{formId}/submit [post]
func (h *ResponseHandler) SubmitResponse(c *gin.Context) {
	var req models.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid response data", err, err.Error())
		return
	}

	formID := c.Param(formIDParam)
	h.LogRequest(c, "Submitting response", "form_id", formID, "answered_questions", len(req.Responses))

	response, err := h.responseService.Submit(c.Request.Context(), formID, &req)
	if err != nil {
		h.handleServiceError(c, err, "Invalid response data")
		return
	}

	h.RespondWithSuccess(c, http.StatusCreated, "Response submitted successfully", response,
		"form_id", formID,
		"response_id", response.ID.Hex(),
		"score", response.Score,
		"max_score", response.MaxScore)
}

// ListResponses returns a page of responses plus analytics over all of them
// @Summary List responses
// @Tags responses
// @Produce json
// @Param formId path string true "Form ID"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(10)
// @Success 200 {object} SuccessResponse
// @Router /forms/{formId}/responses [get]
func (h *ResponseHandler) ListResponses(c *gin.Context) {
	req := services.ListResponsesRequest{
		Page:  parseIntQuery(c, "page", services.DefaultPage),
		Limit: parseIntQuery(c, "limit", services.DefaultLimit),
	}

	result, err := h.responseService.List(c.Request.Context(), c.Param(formIDParam), &req)
	if err != nil {
		h.handleServiceError(c, err, "Invalid request")
		return
	}

	h.RespondWithPage(c, result.Responses, result.Pagination, &result.Analytics)
}

// GetResponse retrieves one response of a form
// @Summary Get response
// @Tags responses
// @Produce json
// @Param formId path string true "Form ID"
// @Param responseId path string true "Response ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /forms/{formId}/responses/{responseId} [get]
func (h *ResponseHandler) GetResponse(c *gin.Context) {
	response, err := h.responseService.GetByID(c.Request.Context(), c.Param(formIDParam), c.Param(responseIDParam))
	if err != nil {
		h.handleServiceError(c, err, "Invalid request")
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "", response)
}

// DeleteResponse removes one response
// @Summary Delete response
// @Tags responses
// @Produce json
// @Param formId path string true "Form ID"
// @Param responseId path string true "Response ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /forms/{formId}/responses/{responseId} [delete]
func (h *ResponseHandler) DeleteResponse(c *gin.Context) {
	formID, responseID := c.Param(formIDParam), c.Param(responseIDParam)
	h.LogRequest(c, "Deleting response", "form_id", formID, "response_id", responseID)

	if err := h.responseService.Delete(c.Request.Context(), formID, responseID); err != nil {
		h.handleServiceError(c, err, "Invalid request")
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Response deleted successfully", nil)
}

// RescoreResponse recomputes a stored response against the current form
// @Summary Rescore response
// @Tags responses
// @Produce json
// @Param formId path string true "Form ID"
// @Param responseId path string true "Response ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /forms/{formId}/responses/{responseId}/rescore [post]
func (h *ResponseHandler) RescoreResponse(c *gin.Context) {
	formID, responseID := c.Param(formIDParam), c.Param(responseIDParam)
	h.LogRequest(c, "Rescoring response", "form_id", formID, "response_id", responseID)

	response, err := h.responseService.Rescore(c.Request.Context(), formID, responseID)
	if err != nil {
		h.handleServiceError(c, err, "Invalid request")
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Response rescored successfully", response,
		"score", response.Score,
		"max_score", response.MaxScore)
}

// ExportResponses downloads every response of a form as an XLSX workbook
// @Summary Export responses
// @Tags responses
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param formId path string true "Form ID"
// @Success 200 {file} file
// @Failure 404 {object} ErrorResponse
// @Router /forms/{formId}/responses/export [get]
func (h *ResponseHandler) ExportResponses(c *gin.Context) {
	formID := c.Param(formIDParam)
	h.LogRequest(c, "Exporting responses", "form_id", formID)

	file, err := h.exportService.ExportResponses(c.Request.Context(), formID)
	if err != nil {
		h.handleServiceError(c, err, "Invalid request")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Content)
}
