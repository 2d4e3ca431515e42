package handlers

import (
	"errors"
	"net/http"

	"github.com/SAP-F-2025/form-builder-service/internal/analytics"
	"github.com/SAP-F-2025/form-builder-service/internal/services"
	"github.com/SAP-F-2025/form-builder-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// ===== COMMON RESPONSE STRUCTURES =====

// ErrorResponse represents an error response. Server errors carry the
// request id so clients can report it.
type ErrorResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
	RequestID string      `json:"requestId,omitempty"`
}

// SuccessResponse represents a success response. Pagination and Analytics
// are only set by list endpoints.
type SuccessResponse struct {
	Success    bool                 `json:"success"`
	Message    string               `json:"message,omitempty"`
	Data       interface{}          `json:"data,omitempty"`
	Pagination *services.Pagination `json:"pagination,omitempty"`
	Analytics  *analytics.Analytics `json:"analytics,omitempty"`
}

// ===== BASE HANDLER STRUCT =====

// BaseHandler provides common logging functionality for all handlers
type BaseHandler struct {
	logger utils.Logger
}

// NewBaseHandler creates a new base handler with logging capability
func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{
		logger: logger,
	}
}

// requestLogger returns the request-scoped logger set by utils.ContextLogger
func (h *BaseHandler) requestLogger(c *gin.Context) utils.Logger {
	return utils.GetLoggerFromContext(c, h.logger)
}

// LogRequest logs incoming HTTP requests with context information
func (h *BaseHandler) LogRequest(c *gin.Context, message string, additionalFields ...interface{}) {
	fields := []interface{}{
		"remote_addr", c.ClientIP(),
		"user_agent", c.Request.UserAgent(),
	}
	fields = append(fields, additionalFields...)

	h.requestLogger(c).Info(message, fields...)
}

// LogError logs error details with context information
func (h *BaseHandler) LogError(c *gin.Context, err error, message string, additionalFields ...interface{}) {
	h.requestLogger(c).LogError(err, message, additionalFields...)
}

// LogDebug logs debug information with context
func (h *BaseHandler) LogDebug(c *gin.Context, message string, additionalFields ...interface{}) {
	h.requestLogger(c).Debug(message, additionalFields...)
}

// LogInfo logs informational messages with context
func (h *BaseHandler) LogInfo(c *gin.Context, message string, additionalFields ...interface{}) {
	h.requestLogger(c).Info(message, additionalFields...)
}

// LogWarn logs warning messages with context
func (h *BaseHandler) LogWarn(c *gin.Context, message string, additionalFields ...interface{}) {
	h.requestLogger(c).Warn(message, additionalFields...)
}

// RespondWithError sends a consistent error response and logs it
func (h *BaseHandler) RespondWithError(c *gin.Context, statusCode int, message string, err error, details ...interface{}) {
	errorResp := ErrorResponse{
		Success: false,
		Message: message,
	}

	if len(details) > 0 {
		errorResp.Details = details[0]
	}
	if statusCode >= http.StatusInternalServerError {
		errorResp.RequestID = utils.RequestID(c)
	}

	if err != nil && statusCode >= http.StatusInternalServerError {
		h.LogError(c, err, message, "status_code", statusCode)
	} else if err != nil {
		h.LogWarn(c, message, "status_code", statusCode, "error", err)
	} else {
		h.LogWarn(c, message, "status_code", statusCode)
	}

	c.JSON(statusCode, errorResp)
}

// RespondWithSuccess sends a consistent success response and logs it
func (h *BaseHandler) RespondWithSuccess(c *gin.Context, statusCode int, message string, data interface{}, additionalFields ...interface{}) {
	successResp := SuccessResponse{
		Success: true,
		Message: message,
		Data:    data,
	}

	fields := []interface{}{"status_code", statusCode}
	fields = append(fields, additionalFields...)
	h.LogDebug(c, "Request succeeded", fields...)

	c.JSON(statusCode, successResp)
}

// RespondWithPage sends one page of a list with its pagination block and,
// for responses, the form analytics.
func (h *BaseHandler) RespondWithPage(c *gin.Context, data interface{}, pagination services.Pagination, summary *analytics.Analytics) {
	c.JSON(http.StatusOK, SuccessResponse{
		Success:    true,
		Data:       data,
		Pagination: &pagination,
		Analytics:  summary,
	})
}

// handleServiceError maps service errors onto status codes. invalidMessage
// is the message used for validation failures of the request body.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error, invalidMessage string) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		h.RespondWithError(c, http.StatusBadRequest, invalidMessage, err, validationErrors)
		return
	}

	switch {
	case errors.Is(err, services.ErrNameRequired):
		h.RespondWithError(c, http.StatusBadRequest, "Name is required", err)
	case errors.Is(err, services.ErrEmptySubmission):
		h.RespondWithError(c, http.StatusBadRequest, "Please answer at least one question before submitting", err)
	case errors.Is(err, services.ErrInvalidFormID):
		h.RespondWithError(c, http.StatusBadRequest, "Invalid form ID", err)
	case errors.Is(err, services.ErrInvalidResponseID), errors.Is(err, services.ErrInvalidID):
		h.RespondWithError(c, http.StatusBadRequest, "Invalid ID", err)
	case errors.Is(err, services.ErrInvalidFormData):
		h.RespondWithError(c, http.StatusBadRequest, "Invalid form data", err, err.Error())
	case services.IsValidation(err):
		h.RespondWithError(c, http.StatusBadRequest, invalidMessage, err)
	case errors.Is(err, services.ErrFormNotFound):
		h.RespondWithError(c, http.StatusNotFound, "Form not found", err)
	case errors.Is(err, services.ErrResponseNotFound):
		h.RespondWithError(c, http.StatusNotFound, "Response not found", err)
	case services.IsNotFound(err):
		h.RespondWithError(c, http.StatusNotFound, "Resource not found", err)
	default:
		h.RespondWithError(c, http.StatusInternalServerError, "Server error", err)
	}
}
