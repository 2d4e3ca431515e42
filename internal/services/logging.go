package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/form-builder-service/internal/models"
)

// ServiceLogger provides structured logging for service layer operations
type ServiceLogger struct {
	logger *slog.Logger
	config LogConfig
}

type LogConfig struct {
	Service     string
	Component   string
	EnableDebug bool
}

func NewServiceLogger(logger *slog.Logger, config LogConfig) *ServiceLogger {
	return &ServiceLogger{
		logger: logger.With("service", config.Service, "component", config.Component),
		config: config,
	}
}

// ===== OPERATION LOGGING =====

// LogOperation logs the outcome of one service call. Validation failures and
// misses are expected traffic and stay below error level.
func (l *ServiceLogger) LogOperation(ctx context.Context, operation, resourceType, resourceID string, duration time.Duration, err error) {
	level := slog.LevelInfo
	status := "success"

	attrs := []slog.Attr{
		slog.String("operation", operation),
		slog.String("resource_type", resourceType),
		slog.String("resource_id", resourceID),
		slog.Duration("duration", duration),
	}

	if err != nil {
		switch {
		case IsValidation(err) || IsInvalidID(err):
			level = slog.LevelWarn
			status = "validation_error"
		case IsNotFound(err):
			status = "not_found"
		default:
			level = slog.LevelError
			status = "error"
		}
		attrs = append(attrs, slog.String("error", err.Error()))

		var ve ValidationErrors
		if errors.As(err, &ve) {
			attrs = append(attrs, slog.Int("validation_errors_count", len(ve)))
		}
	}
	attrs = append(attrs, slog.String("status", status))

	l.logger.LogAttrs(ctx, level, fmt.Sprintf("%s operation %s", operation, status), attrs...)
}

func (l *ServiceLogger) LogValidationError(ctx context.Context, operation string, validationErrors ValidationErrors) {
	attrs := []slog.Attr{
		slog.String("operation", operation),
		slog.Int("error_count", len(validationErrors)),
	}

	for i, err := range validationErrors {
		if i < 5 { // Limit to first 5 errors to avoid log spam
			attrs = append(attrs, slog.Group(fmt.Sprintf("error_%d", i+1),
				slog.String("field", err.Field),
				slog.String("message", err.Message),
			))
		}
	}

	l.logger.LogAttrs(ctx, slog.LevelWarn, "Validation failed", attrs...)
}

// ===== SCORING LOGGING =====

// LogScoreBreakdown writes the per-question scoring trace at debug level.
func (l *ServiceLogger) LogScoreBreakdown(ctx context.Context, responseID string, breakdown *models.ScoreBreakdown) {
	if !l.config.EnableDebug || breakdown == nil {
		return
	}

	attrs := []slog.Attr{
		slog.String("response_id", responseID),
		slog.Int("questions", len(breakdown.Questions)),
		slog.Int("ignored_answers", len(breakdown.Ignored)),
	}
	for _, q := range breakdown.Questions {
		attrs = append(attrs, slog.Group(q.QuestionID,
			slog.String("type", string(q.Type)),
			slog.Float64("earned", q.Earned),
			slog.Float64("possible", q.Possible),
			slog.String("outcome", string(q.Outcome)),
		))
	}
	for i, ig := range breakdown.Ignored {
		if i < 5 {
			attrs = append(attrs, slog.Group(fmt.Sprintf("ignored_%d", i+1),
				slog.String("question_id", ig.QuestionID),
				slog.String("reason", string(ig.Reason)),
			))
		}
	}

	l.logger.LogAttrs(ctx, slog.LevelDebug, "Score breakdown", attrs...)
}
