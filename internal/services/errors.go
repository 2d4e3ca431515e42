package services

import (
	"errors"

	apperrors "github.com/SAP-F-2025/form-builder-service/internal/errors"
	"github.com/SAP-F-2025/form-builder-service/internal/repositories"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrValidationFailed = errors.New("validation failed")
	ErrInvalidID        = errors.New("invalid id")

	// Form specific errors
	ErrFormNotFound    = errors.New("form not found")
	ErrInvalidFormID   = errors.New("invalid form id")
	ErrInvalidFormData = errors.New("invalid form data")

	// Response specific errors
	ErrResponseNotFound  = errors.New("response not found")
	ErrInvalidResponseID = errors.New("invalid response id")
	ErrNameRequired      = errors.New("name is required")
	ErrEmptySubmission   = errors.New("please answer at least one question before submitting")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// NewValidationError creates a new validation error using the shared type
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

// ===== ERROR HELPERS =====

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrFormNotFound) ||
		errors.Is(err, ErrResponseNotFound) ||
		repositories.IsNotFoundError(err)
}

// IsInvalidID reports a malformed form or response id
func IsInvalidID(err error) bool {
	return errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrInvalidFormID) ||
		errors.Is(err, ErrInvalidResponseID)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) ||
		errors.Is(err, ErrInvalidFormData) ||
		errors.Is(err, ErrNameRequired) ||
		errors.Is(err, ErrEmptySubmission) {
		return true
	}
	var ve apperrors.ValidationErrors
	if errors.As(err, &ve) {
		return true
	}
	var single *apperrors.ValidationError
	return errors.As(err, &single)
}
