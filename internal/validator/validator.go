package validator

import (
	"reflect"
	"strings"

	apperrors "github.com/SAP-F-2025/form-builder-service/internal/errors"
	"github.com/SAP-F-2025/form-builder-service/internal/models"
	"github.com/go-playground/validator/v10"
)

// ValidationErrors is the field/message list every rule in this package
// reports through.
type ValidationErrors = apperrors.ValidationErrors

// Validator is the main validator instance that combines all validation types
type Validator struct {
	structValidator     *validator.Validate
	formValidator       *FormValidator
	submissionValidator *SubmissionValidator
}

// New creates a new centralized validator instance
func New() *Validator {
	structValidator := validator.New()

	// Register all custom validators once
	registerCustomValidators(structValidator)

	return &Validator{
		structValidator:     structValidator,
		formValidator:       NewFormValidator(),
		submissionValidator: NewSubmissionValidator(),
	}
}

// ValidateStruct validates struct tags only
func (v *Validator) ValidateStruct(s interface{}) error {
	if err := v.structValidator.Struct(s); err != nil {
		if errs := apperrors.ToValidationErrors(err); len(errs) > 0 {
			return errs
		}
		return err
	}
	return nil
}

// ValidateForm checks struct tags and then the per-type question rules.
func (v *Validator) ValidateForm(form *models.Form) error {
	if err := v.ValidateStruct(form); err != nil {
		return err
	}
	if errs := v.formValidator.Validate(form); len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidateSubmission checks struct tags and then the per-type answer rules.
func (v *Validator) ValidateSubmission(req *models.SubmitRequest) error {
	if err := v.ValidateStruct(req); err != nil {
		return err
	}
	if errs := v.submissionValidator.Validate(req); len(errs) > 0 {
		return errs
	}
	return nil
}

// Form returns the form business validator
func (v *Validator) Form() *FormValidator {
	return v.formValidator
}

// registerCustomValidators registers all custom validation functions
func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("question_type", validateQuestionType)
	validate.RegisterValidation("sub_question_type", validateSubQuestionType)
	validate.RegisterValidation("not_blank", validateNotBlank)

	// Custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// Custom validation functions
func validateQuestionType(fl validator.FieldLevel) bool {
	return models.QuestionType(fl.Field().String()).IsValid()
}

func validateSubQuestionType(fl validator.FieldLevel) bool {
	return models.SubQuestionType(fl.Field().String()).IsValid()
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}
