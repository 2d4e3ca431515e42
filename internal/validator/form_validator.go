package validator

import (
	"fmt"
	"strings"

	"github.com/SAP-F-2025/form-builder-service/internal/errors"
	"github.com/SAP-F-2025/form-builder-service/internal/models"
)

// FormValidator enforces the per-type content rules of form questions.
type FormValidator struct{}

func NewFormValidator() *FormValidator {
	return &FormValidator{}
}

// Validate returns every rule violation of form, in question order.
func (v *FormValidator) Validate(form *models.Form) ValidationErrors {
	var errs ValidationErrors

	if len(form.Questions) == 0 {
		errs = append(errs, *errors.NewValidationErrorWithRule("questions", "form must have at least one question", "min_questions", nil))
	}

	for i := range form.Questions {
		errs = append(errs, v.validateQuestion(i, &form.Questions[i])...)
	}
	return errs
}

func (v *FormValidator) validateQuestion(index int, q *models.Question) ValidationErrors {
	var errs ValidationErrors
	field := func(name string) string {
		return fmt.Sprintf("questions[%d].%s", index, name)
	}
	add := func(name, message, rule string) {
		errs = append(errs, *errors.NewValidationErrorWithRule(field(name), message, rule, nil))
	}

	if strings.TrimSpace(q.QuestionText) == "" {
		add("questionText", "question text is required", "required")
	}

	switch q.Type {
	case models.QuestionCategorize:
		if len(q.Categories) == 0 {
			add("categories", "at least one category is required", "min_categories")
		}
		if len(q.Options) == 0 {
			add("options", "at least one item is required", "min_items")
		}
	case models.QuestionCloze:
		if strings.TrimSpace(q.Sentence) == "" {
			add("sentence", "sentence is required", "required")
		}
		if len(q.SelectedWords) == 0 {
			add("selectedWords", "at least one word must be selected", "min_blanks")
		}
		if len(q.AnswerOptions) == 0 {
			add("answerOptions", "at least one answer option is required", "min_answer_options")
		}
	case models.QuestionComprehension:
		if strings.TrimSpace(q.Passage) == "" {
			add("passage", "passage is required", "required")
		}
		if len(q.Questions) == 0 {
			add("questions", "at least one sub-question is required", "min_sub_questions")
		}
		for j, sq := range q.Questions {
			if sq.Type == models.SubQuestionShortText {
				continue
			}
			if len(sq.CorrectOptionIDs()) == 0 {
				add(fmt.Sprintf("questions[%d].options", j), "at least one option must be marked correct", "correct_option")
			}
		}
	}
	return errs
}

// SubmissionValidator enforces the per-type answer rules of a submission.
type SubmissionValidator struct{}

func NewSubmissionValidator() *SubmissionValidator {
	return &SubmissionValidator{}
}

// Validate returns every rule violation of req. Answers are checked against
// the type declared in the response entry.
func (v *SubmissionValidator) Validate(req *models.SubmitRequest) ValidationErrors {
	var errs ValidationErrors

	for i, resp := range req.Responses {
		for j, a := range resp.Answers {
			field := fmt.Sprintf("responses[%d].answers[%d]", i, j)
			var message string

			switch resp.Type {
			case models.QuestionCategorize:
				if a.ItemID == "" || a.SelectedCategoryID == "" {
					message = "item id and selected category are required for categorize questions"
				}
			case models.QuestionCloze:
				if a.BlankID == "" || a.SelectedAnswer == "" {
					message = "blank id and selected answer are required for cloze questions"
				}
			case models.QuestionComprehension:
				if a.SubQuestionID == "" {
					message = "sub-question id is required for comprehension questions"
				}
			}

			if message != "" {
				errs = append(errs, *errors.NewValidationErrorWithRule(field, message, "answer_shape", nil))
			}
		}
	}
	return errs
}
