package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"

	"github.com/SAP-F-2025/form-builder-service/internal/analytics"
	"github.com/SAP-F-2025/form-builder-service/internal/cache"
	"github.com/SAP-F-2025/form-builder-service/internal/events"
	"github.com/SAP-F-2025/form-builder-service/internal/models"
	"github.com/SAP-F-2025/form-builder-service/internal/repositories"
	"github.com/SAP-F-2025/form-builder-service/internal/validator"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// FormService manages form definitions
type FormService interface {
	Create(ctx context.Context, payload *FormPayload) (*models.Form, error)
	GetByID(ctx context.Context, id string) (*models.Form, error)
	// Update applies the fields present in the payload onto the stored form
	Update(ctx context.Context, id string, payload *FormPayload) (*models.Form, error)
	// Delete removes the form together with all of its responses
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, req *ListFormsRequest) (*FormListResponse, error)
}

// ResponseService handles submissions, their scores and per-form analytics
type ResponseService interface {
	Submit(ctx context.Context, formID string, req *models.SubmitRequest) (*models.FormResponse, error)
	GetByID(ctx context.Context, formID, responseID string) (*models.FormResponse, error)
	List(ctx context.Context, formID string, req *ListResponsesRequest) (*ResponseListResponse, error)
	Delete(ctx context.Context, formID, responseID string) error
	// Rescore recomputes a stored response against the current form
	Rescore(ctx context.Context, formID, responseID string) (*models.FormResponse, error)
	Analytics(ctx context.Context, formID string) (*analytics.Analytics, error)
}

// ExportService renders the responses of a form as a spreadsheet
type ExportService interface {
	ExportResponses(ctx context.Context, formID string) (*ExportFile, error)
}

// ===== REQUEST / RESPONSE TYPES =====

// FormPayload carries a form document as sent by the client. Data is the
// JSON object, CreatedBy the optional multipart field. Images hold metadata
// of uploaded files; QuestionImages[i] belongs to question i.
type FormPayload struct {
	Data           json.RawMessage
	CreatedBy      string
	HeaderImage    *models.Image
	QuestionImages []models.Image
}

type ListFormsRequest struct {
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
	Search string `form:"search"`
}

type ListResponsesRequest struct {
	Page  int `form:"page"`
	Limit int `form:"limit"`
}

type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

type FormListResponse struct {
	Forms      []*models.Form `json:"forms"`
	Pagination Pagination     `json:"pagination"`
}

type ResponseListResponse struct {
	Responses  []*models.FormResponse `json:"responses"`
	Pagination Pagination             `json:"pagination"`
	Analytics  analytics.Analytics    `json:"analytics"`
}

type ExportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}

// ===== SERVICE MANAGER =====

// ServiceManager wires every service to one storage backend
type ServiceManager struct {
	Forms     FormService
	Responses ResponseService
	Export    ExportService
}

func NewServiceManager(
	repo repositories.Repository,
	analyticsCache cache.AnalyticsCache,
	publisher events.EventPublisher,
	v *validator.Validator,
	logger *slog.Logger,
	debug bool,
) *ServiceManager {
	notifier := newEventNotifier(publisher, logger)
	return &ServiceManager{
		Forms:     NewFormService(repo, analyticsCache, notifier, v, logger),
		Responses: NewResponseService(repo, analyticsCache, notifier, v, logger, debug),
		Export:    NewExportService(repo, logger),
	}
}

// ===== PAGINATION HELPERS =====

// normalizePage clamps page and limit and returns the row offset.
func normalizePage(page, limit int) (int, int, int) {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return page, limit, (page - 1) * limit
}

func newPagination(page, limit int, total int64) Pagination {
	return Pagination{
		Page:  page,
		Limit: limit,
		Total: total,
		Pages: int(math.Ceil(float64(total) / float64(limit))),
	}
}
