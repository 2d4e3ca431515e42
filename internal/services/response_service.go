package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/SAP-F-2025/form-builder-service/internal/analytics"
	"github.com/SAP-F-2025/form-builder-service/internal/cache"
	"github.com/SAP-F-2025/form-builder-service/internal/events"
	"github.com/SAP-F-2025/form-builder-service/internal/models"
	"github.com/SAP-F-2025/form-builder-service/internal/repositories"
	"github.com/SAP-F-2025/form-builder-service/internal/scoring"
	"github.com/SAP-F-2025/form-builder-service/internal/validator"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type responseService struct {
	repo      repositories.Repository
	cache     cache.AnalyticsCache
	notifier  *eventNotifier
	validator *validator.Validator
	logger    *slog.Logger
	opLogger  *ServiceLogger
}

func NewResponseService(
	repo repositories.Repository,
	analyticsCache cache.AnalyticsCache,
	notifier *eventNotifier,
	v *validator.Validator,
	logger *slog.Logger,
	debug bool,
) ResponseService {
	return &responseService{
		repo:      repo,
		cache:     analyticsCache,
		notifier:  notifier,
		validator: v,
		logger:    logger,
		opLogger: NewServiceLogger(logger, LogConfig{
			Service:     "form-builder",
			Component:   "responses",
			EnableDebug: debug,
		}),
	}
}

// ===== SUBMISSION =====

// Submit checks the name first, then that the form exists, then that at
// least one question was answered, before validating the answers.
func (s *responseService) Submit(ctx context.Context, formID string, req *models.SubmitRequest) (response *models.FormResponse, err error) {
	start := time.Now()
	defer func() {
		s.opLogger.LogOperation(ctx, "submit_response", "form", formID, time.Since(start), err)
	}()

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	oid, err := parseFormID(formID)
	if err != nil {
		return nil, err
	}
	form, err := s.getForm(ctx, oid)
	if err != nil {
		return nil, err
	}

	if len(req.Responses) == 0 {
		return nil, ErrEmptySubmission
	}
	if err = s.validator.ValidateSubmission(req); err != nil {
		if ve, ok := err.(ValidationErrors); ok {
			s.opLogger.LogValidationError(ctx, "submit_response", ve)
		}
		return nil, err
	}

	result := scoring.Score(form, req.Responses)
	breakdown := result.Breakdown
	now := time.Now().UTC()

	response = &models.FormResponse{
		FormID:      oid,
		Responses:   req.Responses,
		Score:       result.Score,
		MaxScore:    result.MaxScore,
		Breakdown:   &breakdown,
		SubmittedAt: now,
		SubmittedBy: name,
		TimeSpent:   int(math.Round(req.TimeSpent)),
		IsComplete:  true,
		Feedback:    strings.TrimSpace(req.Feedback),
	}

	if err = s.repo.Responses().Create(ctx, response); err != nil {
		return nil, fmt.Errorf("failed to save response: %w", err)
	}

	s.opLogger.LogScoreBreakdown(ctx, response.ID.Hex(), response.Breakdown)
	s.invalidateAnalytics(ctx, formID)
	s.notifier.notify(ctx, events.EventResponseSubmitted, events.ResponseSubmittedEvent{
		FormID:          formID,
		ResponseID:      response.ID.Hex(),
		SubmittedBy:     response.SubmittedBy,
		Score:           response.Score,
		MaxScore:        response.MaxScore,
		PercentageScore: response.PercentageScore(),
		TimeSpent:       response.TimeSpent,
		SubmittedAt:     response.SubmittedAt,
	})
	return response, nil
}

// ===== READ OPERATIONS =====

func (s *responseService) GetByID(ctx context.Context, formID, responseID string) (*models.FormResponse, error) {
	fid, rid, err := parseIDs(formID, responseID)
	if err != nil {
		return nil, err
	}
	return s.getResponse(ctx, fid, rid)
}

// List returns one page of responses together with analytics computed over
// every response of the form.
func (s *responseService) List(ctx context.Context, formID string, req *ListResponsesRequest) (*ResponseListResponse, error) {
	oid, err := parseFormID(formID)
	if err != nil {
		return nil, err
	}
	if _, err := s.getForm(ctx, oid); err != nil {
		return nil, err
	}
	page, limit, offset := normalizePage(req.Page, req.Limit)

	responses, total, err := s.repo.Responses().ListByForm(ctx, oid, repositories.ResponseFilters{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list responses: %w", err)
	}
	if responses == nil {
		responses = []*models.FormResponse{}
	}

	summary, err := s.loadAnalytics(ctx, oid)
	if err != nil {
		return nil, err
	}

	return &ResponseListResponse{
		Responses:  responses,
		Pagination: newPagination(page, limit, total),
		Analytics:  *summary,
	}, nil
}

func (s *responseService) Analytics(ctx context.Context, formID string) (*analytics.Analytics, error) {
	oid, err := parseFormID(formID)
	if err != nil {
		return nil, err
	}
	if _, err := s.getForm(ctx, oid); err != nil {
		return nil, err
	}
	return s.loadAnalytics(ctx, oid)
}

// ===== WRITE OPERATIONS =====

func (s *responseService) Delete(ctx context.Context, formID, responseID string) (err error) {
	start := time.Now()
	defer func() {
		s.opLogger.LogOperation(ctx, "delete_response", "response", responseID, time.Since(start), err)
	}()

	fid, rid, err := parseIDs(formID, responseID)
	if err != nil {
		return err
	}

	if err = s.repo.Responses().Delete(ctx, fid, rid); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrResponseNotFound
		}
		return fmt.Errorf("failed to delete response: %w", err)
	}

	s.invalidateAnalytics(ctx, formID)
	s.notifier.notify(ctx, events.EventResponseDeleted, events.ResponseDeletedEvent{
		FormID:     formID,
		ResponseID: responseID,
	})
	return nil
}

func (s *responseService) Rescore(ctx context.Context, formID, responseID string) (response *models.FormResponse, err error) {
	start := time.Now()
	defer func() {
		s.opLogger.LogOperation(ctx, "rescore_response", "response", responseID, time.Since(start), err)
	}()

	fid, rid, err := parseIDs(formID, responseID)
	if err != nil {
		return nil, err
	}
	response, err = s.getResponse(ctx, fid, rid)
	if err != nil {
		return nil, err
	}
	form, err := s.getForm(ctx, fid)
	if err != nil {
		return nil, err
	}

	previous := response.Score
	result := scoring.Score(form, response.Responses)
	breakdown := result.Breakdown
	now := time.Now().UTC()

	response.Score = result.Score
	response.MaxScore = result.MaxScore
	response.Breakdown = &breakdown
	response.RescoredAt = &now

	if err = s.repo.Responses().UpdateScore(ctx, response); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrResponseNotFound
		}
		return nil, fmt.Errorf("failed to update response score: %w", err)
	}

	s.opLogger.LogScoreBreakdown(ctx, responseID, response.Breakdown)
	s.invalidateAnalytics(ctx, formID)
	s.notifier.notify(ctx, events.EventResponseRescored, events.ResponseRescoredEvent{
		FormID:        formID,
		ResponseID:    responseID,
		PreviousScore: previous,
		Score:         response.Score,
		MaxScore:      response.MaxScore,
	})
	return response, nil
}

// ===== HELPERS =====

// loadAnalytics serves the cached summary when present. Cache failures fall
// back to computing from storage, and the result is only cached when the
// generation it was computed under is known.
func (s *responseService) loadAnalytics(ctx context.Context, formID primitive.ObjectID) (*analytics.Analytics, error) {
	key := formID.Hex()

	cacheable := false
	var generation int64
	if s.cache != nil {
		cached, gen, err := s.cache.Get(ctx, key)
		switch {
		case err != nil:
			s.logger.WarnContext(ctx, "Failed to read analytics cache", "form_id", key, "error", err)
		case cached != nil:
			return cached, nil
		default:
			cacheable, generation = true, gen
		}
	}

	summaries, err := s.repo.Responses().ScoreSummaries(ctx, formID)
	if err != nil {
		return nil, fmt.Errorf("failed to load response scores: %w", err)
	}
	summary := analytics.Summarize(summaries)

	if cacheable {
		if err := s.cache.Set(ctx, key, generation, summary); err != nil {
			s.logger.WarnContext(ctx, "Failed to write analytics cache", "form_id", key, "error", err)
		}
	}
	return &summary, nil
}

func (s *responseService) invalidateAnalytics(ctx context.Context, formID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, formID); err != nil {
		s.logger.WarnContext(ctx, "Failed to invalidate analytics cache", "form_id", formID, "error", err)
	}
}

func (s *responseService) getForm(ctx context.Context, id primitive.ObjectID) (*models.Form, error) {
	form, err := s.repo.Forms().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrFormNotFound
		}
		return nil, fmt.Errorf("failed to get form: %w", err)
	}
	return form, nil
}

func (s *responseService) getResponse(ctx context.Context, formID, id primitive.ObjectID) (*models.FormResponse, error) {
	response, err := s.repo.Responses().GetByID(ctx, formID, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrResponseNotFound
		}
		return nil, fmt.Errorf("failed to get response: %w", err)
	}
	return response, nil
}

func parseIDs(formID, responseID string) (primitive.ObjectID, primitive.ObjectID, error) {
	fid, err := parseFormID(formID)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, err
	}
	rid, err := parseResponseID(responseID)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, err
	}
	return fid, rid, nil
}
