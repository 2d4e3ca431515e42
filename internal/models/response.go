package models

import (
	"encoding/json"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Answer is one answer entry. Which fields are set depends on the type of
// the question being answered.
type Answer struct {
	// categorize
	ItemID             string `json:"itemId,omitempty" bson:"itemId,omitempty"`
	SelectedCategoryID string `json:"selectedCategoryId,omitempty" bson:"selectedCategoryId,omitempty"`

	// cloze
	BlankID        string `json:"blankId,omitempty" bson:"blankId,omitempty"`
	SelectedAnswer string `json:"selectedAnswer,omitempty" bson:"selectedAnswer,omitempty"`

	// comprehension
	SubQuestionID   string   `json:"subQuestionId,omitempty" bson:"subQuestionId,omitempty"`
	SelectedOptions []string `json:"selectedOptions,omitempty" bson:"selectedOptions,omitempty"`
	TextAnswer      string   `json:"textAnswer,omitempty" bson:"textAnswer,omitempty"`
}

type QuestionResponse struct {
	QuestionID string       `json:"questionId" bson:"questionId" validate:"required"`
	Type       QuestionType `json:"type" bson:"type" validate:"required,question_type"`
	Answers    []Answer     `json:"answers" bson:"answers" validate:"required,min=1"`
}

type FormResponse struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	FormID      primitive.ObjectID `json:"formId" bson:"formId"`
	Responses   []QuestionResponse `json:"responses" bson:"responses"`
	Score       float64            `json:"score" bson:"score"`
	MaxScore    float64            `json:"maxScore" bson:"maxScore"`
	Breakdown   *ScoreBreakdown    `json:"breakdown,omitempty" bson:"breakdown,omitempty"`
	SubmittedAt time.Time          `json:"submittedAt" bson:"submittedAt"`
	SubmittedBy string             `json:"submittedBy" bson:"submittedBy"`
	TimeSpent   int                `json:"timeSpent" bson:"timeSpent"` // seconds
	IsComplete  bool               `json:"isComplete" bson:"isComplete"`
	Feedback    string             `json:"feedback,omitempty" bson:"feedback,omitempty"`
	RescoredAt  *time.Time         `json:"rescoredAt,omitempty" bson:"rescoredAt,omitempty"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

func (r FormResponse) MarshalJSON() ([]byte, error) {
	type alias FormResponse
	return json.Marshal(struct {
		alias
		PercentageScore  float64 `json:"percentageScore"`
		TimeSpentMinutes float64 `json:"timeSpentMinutes"`
	}{
		alias:            alias(r),
		PercentageScore:  r.PercentageScore(),
		TimeSpentMinutes: r.TimeSpentMinutes(),
	})
}

// PercentageScore is score/maxScore as a whole-number percentage.
func (r *FormResponse) PercentageScore() float64 {
	if r.MaxScore <= 0 {
		return 0
	}
	return math.Round(r.Score / r.MaxScore * 100)
}

// TimeSpentMinutes converts TimeSpent to minutes rounded to 2 decimals.
func (r *FormResponse) TimeSpentMinutes() float64 {
	return Round2(float64(r.TimeSpent) / 60)
}

// Round2 rounds half away from zero to 2 decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// SubmitRequest is the body of a form submission.
type SubmitRequest struct {
	Responses   []QuestionResponse `json:"responses" validate:"dive"`
	TimeSpent   float64            `json:"timeSpent" validate:"min=0"` // seconds
	SubmittedBy string             `json:"submittedBy"`
	Name        string             `json:"name" validate:"not_blank"`
	Feedback    string             `json:"feedback" validate:"max=1000"`
}
