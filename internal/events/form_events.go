package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	eventSource  = "form-builder-service"
	eventVersion = "1.0"
)

// EventType represents the kinds of domain events the service emits
type EventType string

const (
	// Form events
	EventFormCreated EventType = "form.created"
	EventFormDeleted EventType = "form.deleted"

	// Response events
	EventResponseSubmitted EventType = "response.submitted"
	EventResponseRescored  EventType = "response.rescored"
	EventResponseDeleted   EventType = "response.deleted"
)

// Event is the envelope shared by all published events
type Event struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Form event payloads

type FormCreatedEvent struct {
	FormID        string  `json:"formId"`
	Title         string  `json:"title"`
	QuestionCount int     `json:"questionCount"`
	TotalPoints   float64 `json:"totalPoints"`
	CreatedBy     string  `json:"createdBy"`
}

type FormDeletedEvent struct {
	FormID           string `json:"formId"`
	DeletedResponses int64  `json:"deletedResponses"`
}

// Response event payloads

type ResponseSubmittedEvent struct {
	FormID          string    `json:"formId"`
	ResponseID      string    `json:"responseId"`
	SubmittedBy     string    `json:"submittedBy"`
	Score           float64   `json:"score"`
	MaxScore        float64   `json:"maxScore"`
	PercentageScore float64   `json:"percentageScore"`
	TimeSpent       int       `json:"timeSpent"`
	SubmittedAt     time.Time `json:"submittedAt"`
}

type ResponseRescoredEvent struct {
	FormID        string  `json:"formId"`
	ResponseID    string  `json:"responseId"`
	PreviousScore float64 `json:"previousScore"`
	Score         float64 `json:"score"`
	MaxScore      float64 `json:"maxScore"`
}

type ResponseDeletedEvent struct {
	FormID     string `json:"formId"`
	ResponseID string `json:"responseId"`
}

// NewEvent wraps data in an envelope with a fresh id and timestamp.
func NewEvent(eventType EventType, data interface{}) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Source:    eventSource,
		Version:   eventVersion,
		Data:      data,
	}
}
