package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SAP-F-2025/form-builder-service/internal/cache"
	"github.com/SAP-F-2025/form-builder-service/internal/events"
	"github.com/SAP-F-2025/form-builder-service/internal/models"
	"github.com/SAP-F-2025/form-builder-service/internal/repositories"
	"github.com/SAP-F-2025/form-builder-service/internal/validator"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Keys owned by the server; client values for them are dropped.
var serverOwnedFormKeys = []string{"_id", "createdAt", "updatedAt", "questionCount", "totalPoints"}

type formService struct {
	repo      repositories.Repository
	cache     cache.AnalyticsCache
	notifier  *eventNotifier
	validator *validator.Validator
	logger    *slog.Logger
	opLogger  *ServiceLogger
}

func NewFormService(
	repo repositories.Repository,
	analyticsCache cache.AnalyticsCache,
	notifier *eventNotifier,
	v *validator.Validator,
	logger *slog.Logger,
) FormService {
	return &formService{
		repo:      repo,
		cache:     analyticsCache,
		notifier:  notifier,
		validator: v,
		logger:    logger,
		opLogger:  NewServiceLogger(logger, LogConfig{Service: "form-builder", Component: "forms"}),
	}
}

// ===== CORE CRUD OPERATIONS =====

func (s *formService) Create(ctx context.Context, payload *FormPayload) (form *models.Form, err error) {
	start := time.Now()
	defer func() {
		id := ""
		if form != nil {
			id = form.ID.Hex()
		}
		s.opLogger.LogOperation(ctx, "create_form", "form", id, time.Since(start), err)
	}()

	form = models.NewForm()
	if err = decodeFormData(payload.Data, form); err != nil {
		return nil, err
	}
	if createdBy := strings.TrimSpace(payload.CreatedBy); createdBy != "" {
		form.CreatedBy = createdBy
	}
	applyImages(form, payload)
	form.Normalize()

	if err = s.validator.ValidateForm(form); err != nil {
		return nil, err
	}

	if err = s.repo.Forms().Create(ctx, form); err != nil {
		return nil, fmt.Errorf("failed to create form: %w", err)
	}

	s.notifier.notify(ctx, events.EventFormCreated, events.FormCreatedEvent{
		FormID:        form.ID.Hex(),
		Title:         form.Title,
		QuestionCount: len(form.Questions),
		TotalPoints:   form.TotalPoints(),
		CreatedBy:     form.CreatedBy,
	})
	return form, nil
}

func (s *formService) GetByID(ctx context.Context, id string) (*models.Form, error) {
	formID, err := parseFormID(id)
	if err != nil {
		return nil, err
	}
	return s.getForm(ctx, formID)
}

func (s *formService) Update(ctx context.Context, id string, payload *FormPayload) (form *models.Form, err error) {
	start := time.Now()
	defer func() {
		s.opLogger.LogOperation(ctx, "update_form", "form", id, time.Since(start), err)
	}()

	formID, err := parseFormID(id)
	if err != nil {
		return nil, err
	}

	form, err = s.getForm(ctx, formID)
	if err != nil {
		return nil, err
	}
	createdAt := form.CreatedAt

	if err = decodeFormData(payload.Data, form); err != nil {
		return nil, err
	}
	if createdBy := strings.TrimSpace(payload.CreatedBy); createdBy != "" {
		form.CreatedBy = createdBy
	}
	applyImages(form, payload)
	form.ID = formID
	form.CreatedAt = createdAt
	form.Normalize()

	if err = s.validator.ValidateForm(form); err != nil {
		return nil, err
	}

	if err = s.repo.Forms().Update(ctx, form); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrFormNotFound
		}
		return nil, fmt.Errorf("failed to update form: %w", err)
	}

	// Scores are stored, but the max score of the form may have changed.
	s.invalidateAnalytics(ctx, id)
	return form, nil
}

func (s *formService) Delete(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() {
		s.opLogger.LogOperation(ctx, "delete_form", "form", id, time.Since(start), err)
	}()

	formID, err := parseFormID(id)
	if err != nil {
		return err
	}

	if _, err = s.getForm(ctx, formID); err != nil {
		return err
	}

	// Responses go first so a failure never leaves them without their form.
	deleted, err := s.repo.Responses().DeleteByForm(ctx, formID)
	if err != nil {
		return fmt.Errorf("failed to delete form responses: %w", err)
	}
	s.invalidateAnalytics(ctx, id)

	if err = s.repo.Forms().Delete(ctx, formID); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrFormNotFound
		}
		return fmt.Errorf("failed to delete form: %w", err)
	}

	s.notifier.notify(ctx, events.EventFormDeleted, events.FormDeletedEvent{
		FormID:           id,
		DeletedResponses: deleted,
	})
	return nil
}

func (s *formService) List(ctx context.Context, req *ListFormsRequest) (*FormListResponse, error) {
	page, limit, offset := normalizePage(req.Page, req.Limit)

	forms, total, err := s.repo.Forms().List(ctx, repositories.FormFilters{
		Search: strings.TrimSpace(req.Search),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list forms: %w", err)
	}
	if forms == nil {
		forms = []*models.Form{}
	}

	return &FormListResponse{
		Forms:      forms,
		Pagination: newPagination(page, limit, total),
	}, nil
}

// ===== HELPERS =====

func (s *formService) getForm(ctx context.Context, id primitive.ObjectID) (*models.Form, error) {
	form, err := s.repo.Forms().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrFormNotFound
		}
		return nil, fmt.Errorf("failed to get form: %w", err)
	}
	return form, nil
}

func (s *formService) invalidateAnalytics(ctx context.Context, formID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, formID); err != nil {
		s.logger.WarnContext(ctx, "Failed to invalidate analytics cache", "form_id", formID, "error", err)
	}
}

// decodeFormData applies the JSON object in data onto form. Top-level fields
// absent from data keep their current values; questions and headerImage are
// replaced as a whole.
func decodeFormData(data json.RawMessage, form *models.Form) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return ErrInvalidFormData
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return fmt.Errorf("%w: expected a JSON object", ErrInvalidFormData)
	}
	for _, key := range serverOwnedFormKeys {
		delete(fields, key)
	}
	if _, ok := fields["questions"]; ok {
		form.Questions = nil
	}
	if _, ok := fields["headerImage"]; ok {
		form.HeaderImage = nil
	}

	cleaned, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFormData, err)
	}
	if err := json.Unmarshal(cleaned, form); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFormData, err)
	}
	return nil
}

// applyImages attaches uploaded image metadata. Images beyond the last
// question are dropped.
func applyImages(form *models.Form, payload *FormPayload) {
	if payload.HeaderImage != nil {
		image := *payload.HeaderImage
		form.HeaderImage = &image
	}
	for i := range payload.QuestionImages {
		if i >= len(form.Questions) {
			break
		}
		image := payload.QuestionImages[i]
		form.Questions[i].Image = &image
	}
}

func parseFormID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidFormID
	}
	return oid, nil
}

func parseResponseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidResponseID
	}
	return oid, nil
}
