package postgres

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/SAP-F-2025/form-builder-service/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/datatypes"
)

type formRecord struct {
	ID          string         `gorm:"primaryKey;size:24"`
	Title       string         `gorm:"size:200;not null"`
	Description string         `gorm:"size:500"`
	HeaderImage datatypes.JSON `gorm:"type:jsonb"`
	Questions   datatypes.JSON `gorm:"type:jsonb;not null"`
	Settings    datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedBy   string         `gorm:"size:255;index"`
	IsActive    bool           `gorm:"index"`
	CreatedAt   time.Time      `gorm:"index:idx_forms_created_at,sort:desc"`
	UpdatedAt   time.Time
}

func (formRecord) TableName() string {
	return "forms"
}

type responseRecord struct {
	ID          string         `gorm:"primaryKey;size:24"`
	FormID      string         `gorm:"size:24;not null;index:idx_responses_form_created,priority:1"`
	Responses   datatypes.JSON `gorm:"type:jsonb;not null"`
	Score       float64        `gorm:"not null;default:0"`
	MaxScore    float64        `gorm:"not null"`
	Breakdown   datatypes.JSON `gorm:"type:jsonb"`
	SubmittedAt time.Time      `gorm:"index"`
	SubmittedBy string         `gorm:"size:255;index"`
	TimeSpent   int            `gorm:"not null;default:0"`
	IsComplete  bool           `gorm:"not null;default:true"`
	Feedback    string         `gorm:"size:1000"`
	RescoredAt  *time.Time
	CreatedAt   time.Time `gorm:"index:idx_responses_form_created,priority:2,sort:desc"`
	UpdatedAt   time.Time
}

func (responseRecord) TableName() string {
	return "form_responses"
}

// storedQuestion keeps the answer key as a list of entries, since jsonb does
// not preserve object member order.
type storedQuestion struct {
	models.Question
	CorrectAnswers []models.AnswerKeyEntry `json:"correctAnswers,omitempty"`
}

func toFormRecord(form *models.Form) (*formRecord, error) {
	stored := make([]storedQuestion, len(form.Questions))
	for i, q := range form.Questions {
		stored[i] = storedQuestion{Question: q, CorrectAnswers: q.CorrectAnswers}
	}

	questions, err := json.Marshal(stored)
	if err != nil {
		return nil, fmt.Errorf("failed to encode questions: %w", err)
	}
	settings, err := json.Marshal(form.Settings)
	if err != nil {
		return nil, fmt.Errorf("failed to encode settings: %w", err)
	}
	var headerImage datatypes.JSON
	if form.HeaderImage != nil {
		if headerImage, err = json.Marshal(form.HeaderImage); err != nil {
			return nil, fmt.Errorf("failed to encode header image: %w", err)
		}
	}

	return &formRecord{
		ID:          form.ID.Hex(),
		Title:       form.Title,
		Description: form.Description,
		HeaderImage: headerImage,
		Questions:   questions,
		Settings:    settings,
		CreatedBy:   form.CreatedBy,
		IsActive:    form.IsActive,
		CreatedAt:   form.CreatedAt,
		UpdatedAt:   form.UpdatedAt,
	}, nil
}

func (r *formRecord) toModel() (*models.Form, error) {
	id, err := primitive.ObjectIDFromHex(r.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid form id %q: %w", r.ID, err)
	}

	var stored []storedQuestion
	if err := json.Unmarshal(r.Questions, &stored); err != nil {
		return nil, fmt.Errorf("failed to decode questions: %w", err)
	}
	questions := make([]models.Question, len(stored))
	for i, sq := range stored {
		questions[i] = sq.Question
		questions[i].CorrectAnswers = sq.CorrectAnswers
	}

	form := &models.Form{
		ID:          id,
		Title:       r.Title,
		Description: r.Description,
		Questions:   questions,
		CreatedBy:   r.CreatedBy,
		IsActive:    r.IsActive,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if len(r.Settings) > 0 {
		if err := json.Unmarshal(r.Settings, &form.Settings); err != nil {
			return nil, fmt.Errorf("failed to decode settings: %w", err)
		}
	}
	if len(r.HeaderImage) > 0 && string(r.HeaderImage) != "null" {
		form.HeaderImage = &models.Image{}
		if err := json.Unmarshal(r.HeaderImage, form.HeaderImage); err != nil {
			return nil, fmt.Errorf("failed to decode header image: %w", err)
		}
	}
	return form, nil
}

func toResponseRecord(resp *models.FormResponse) (*responseRecord, error) {
	responses, err := json.Marshal(resp.Responses)
	if err != nil {
		return nil, fmt.Errorf("failed to encode answers: %w", err)
	}
	var breakdown datatypes.JSON
	if resp.Breakdown != nil {
		if breakdown, err = json.Marshal(resp.Breakdown); err != nil {
			return nil, fmt.Errorf("failed to encode breakdown: %w", err)
		}
	}

	return &responseRecord{
		ID:          resp.ID.Hex(),
		FormID:      resp.FormID.Hex(),
		Responses:   responses,
		Score:       resp.Score,
		MaxScore:    resp.MaxScore,
		Breakdown:   breakdown,
		SubmittedAt: resp.SubmittedAt,
		SubmittedBy: resp.SubmittedBy,
		TimeSpent:   resp.TimeSpent,
		IsComplete:  resp.IsComplete,
		Feedback:    resp.Feedback,
		RescoredAt:  resp.RescoredAt,
		CreatedAt:   resp.CreatedAt,
		UpdatedAt:   resp.UpdatedAt,
	}, nil
}

func (r *responseRecord) toModel() (*models.FormResponse, error) {
	resp := &models.FormResponse{
		Score:       r.Score,
		MaxScore:    r.MaxScore,
		SubmittedAt: r.SubmittedAt,
		SubmittedBy: r.SubmittedBy,
		TimeSpent:   r.TimeSpent,
		IsComplete:  r.IsComplete,
		Feedback:    r.Feedback,
		RescoredAt:  r.RescoredAt,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}

	var err error
	if r.ID != "" {
		if resp.ID, err = primitive.ObjectIDFromHex(r.ID); err != nil {
			return nil, fmt.Errorf("invalid response id %q: %w", r.ID, err)
		}
	}
	if r.FormID != "" {
		if resp.FormID, err = primitive.ObjectIDFromHex(r.FormID); err != nil {
			return nil, fmt.Errorf("invalid form id %q: %w", r.FormID, err)
		}
	}
	if len(r.Responses) > 0 {
		if err := json.Unmarshal(r.Responses, &resp.Responses); err != nil {
			return nil, fmt.Errorf("failed to decode answers: %w", err)
		}
	}
	if len(r.Breakdown) > 0 && string(r.Breakdown) != "null" {
		resp.Breakdown = &models.ScoreBreakdown{}
		if err := json.Unmarshal(r.Breakdown, resp.Breakdown); err != nil {
			return nil, fmt.Errorf("failed to decode breakdown: %w", err)
		}
	}
	return resp, nil
}
