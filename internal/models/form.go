package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type QuestionType string
type SubQuestionType string

const (
	QuestionCategorize    QuestionType = "categorize"
	QuestionCloze         QuestionType = "cloze"
	QuestionComprehension QuestionType = "comprehension"
)

const (
	SubQuestionMCQ       SubQuestionType = "mcq"
	SubQuestionMCA       SubQuestionType = "mca"
	SubQuestionShortText SubQuestionType = "short-text"
)

const DefaultCreatedBy = "anonymous"

func (t QuestionType) IsValid() bool {
	switch t {
	case QuestionCategorize, QuestionCloze, QuestionComprehension:
		return true
	}
	return false
}

func (t SubQuestionType) IsValid() bool {
	switch t {
	case SubQuestionMCQ, SubQuestionMCA, SubQuestionShortText:
		return true
	}
	return false
}

// Image holds metadata of an uploaded image. The file itself lives elsewhere.
type Image struct {
	URL      string `json:"url,omitempty" bson:"url,omitempty"`
	Filename string `json:"filename,omitempty" bson:"filename,omitempty"`
	Mimetype string `json:"mimetype,omitempty" bson:"mimetype,omitempty"`
}

type FormSettings struct {
	AllowMultipleSubmissions bool `json:"allowMultipleSubmissions" bson:"allowMultipleSubmissions"`
	ShowResults              bool `json:"showResults" bson:"showResults"`
	TimeLimit                *int `json:"timeLimit" bson:"timeLimit" validate:"omitempty,min=1"` // minutes
}

type Form struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Title       string             `json:"title" bson:"title" validate:"required,max=200"`
	Description string             `json:"description" bson:"description" validate:"max=500"`
	HeaderImage *Image             `json:"headerImage,omitempty" bson:"headerImage,omitempty"`
	Questions   []Question         `json:"questions" bson:"questions" validate:"required,min=1,dive"`
	Settings    FormSettings       `json:"settings" bson:"settings"`
	CreatedBy   string             `json:"createdBy" bson:"createdBy"`
	IsActive    bool               `json:"isActive" bson:"isActive"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// Question is a flat union of the three question shapes. Only the fields of
// the matching Type are meaningful.
type Question struct {
	ID           string       `json:"id" bson:"id" validate:"required"`
	Type         QuestionType `json:"type" bson:"type" validate:"required,question_type"`
	QuestionText string       `json:"questionText" bson:"questionText" validate:"required"`
	Image        *Image       `json:"image,omitempty" bson:"image,omitempty"`

	// categorize
	Categories     []Category       `json:"categories,omitempty" bson:"categories,omitempty" validate:"dive"`
	Options        []CategorizeItem `json:"options,omitempty" bson:"options,omitempty" validate:"dive"`
	CorrectAnswers AnswerKey        `json:"correctAnswers,omitempty" bson:"correctAnswers,omitempty"`

	// cloze
	Sentence      string        `json:"sentence,omitempty" bson:"sentence,omitempty"`
	SelectedWords []ClozeBlank  `json:"selectedWords,omitempty" bson:"selectedWords,omitempty" validate:"dive"`
	AnswerOptions []ClozeOption `json:"answerOptions,omitempty" bson:"answerOptions,omitempty" validate:"dive"`

	// comprehension
	Instructions string        `json:"instructions,omitempty" bson:"instructions,omitempty"`
	Passage      string        `json:"passage,omitempty" bson:"passage,omitempty"`
	Questions    []SubQuestion `json:"questions,omitempty" bson:"questions,omitempty" validate:"dive"`
}

type Category struct {
	ID   string `json:"id" bson:"id" validate:"required"`
	Name string `json:"name" bson:"name" validate:"required"`
}

// CategorizeItem is a draggable item; CategoryID is its correct category.
type CategorizeItem struct {
	ID         string `json:"id" bson:"id" validate:"required"`
	Text       string `json:"text" bson:"text" validate:"required"`
	CategoryID string `json:"categoryId" bson:"categoryId"`
}

// ClozeBlank marks a word of the sentence turned into a blank.
type ClozeBlank struct {
	Word     string `json:"word" bson:"word" validate:"required"`
	Position int    `json:"position" bson:"position" validate:"min=0"`
	Key      string `json:"key" bson:"key" validate:"required"`
}

type ClozeOption struct {
	ID        string `json:"id" bson:"id" validate:"required"`
	Text      string `json:"text" bson:"text" validate:"required"`
	IsCorrect bool   `json:"isCorrect" bson:"isCorrect"`
	WordKey   string `json:"wordKey" bson:"wordKey"`
}

type SubQuestion struct {
	ID      string          `json:"id" bson:"id" validate:"required"`
	Type    SubQuestionType `json:"type" bson:"type" validate:"required,sub_question_type"`
	Text    string          `json:"text" bson:"text" validate:"required"`
	Options []Option        `json:"options" bson:"options" validate:"dive"`
	Points  float64         `json:"points" bson:"points"`
}

type Option struct {
	ID        string `json:"id" bson:"id" validate:"required"`
	Text      string `json:"text" bson:"text" validate:"required"`
	IsCorrect bool   `json:"isCorrect" bson:"isCorrect"`
}

// NewForm returns a form populated with the defaults applied on creation.
func NewForm() *Form {
	return &Form{
		Questions: []Question{},
		Settings: FormSettings{
			ShowResults: true,
		},
		CreatedBy: DefaultCreatedBy,
		IsActive:  true,
	}
}

func (f Form) MarshalJSON() ([]byte, error) {
	type alias Form
	return json.Marshal(struct {
		alias
		QuestionCount int     `json:"questionCount"`
		TotalPoints   float64 `json:"totalPoints"`
	}{
		alias:         alias(f),
		QuestionCount: len(f.Questions),
		TotalPoints:   f.TotalPoints(),
	})
}

// TotalPoints is the number of points the form is worth: one per categorize
// or cloze question plus the points of every comprehension sub-question.
func (f *Form) TotalPoints() float64 {
	var total float64
	for i := range f.Questions {
		total += f.Questions[i].Points()
	}
	return total
}

// FindQuestion returns the question with the given id or nil.
func (f *Form) FindQuestion(id string) *Question {
	for i := range f.Questions {
		if f.Questions[i].ID == id {
			return &f.Questions[i]
		}
	}
	return nil
}

// Normalize trims free text, fills in missing ids and rebuilds the
// categorize answer keys from the items.
func (f *Form) Normalize() {
	f.Title = strings.TrimSpace(f.Title)
	f.Description = strings.TrimSpace(f.Description)
	f.CreatedBy = strings.TrimSpace(f.CreatedBy)
	if f.CreatedBy == "" {
		f.CreatedBy = DefaultCreatedBy
	}
	if f.Questions == nil {
		f.Questions = []Question{}
	}
	for i := range f.Questions {
		f.Questions[i].normalize()
	}
}

func (q *Question) normalize() {
	q.ID = ensureID(q.ID)
	q.QuestionText = strings.TrimSpace(q.QuestionText)
	q.Sentence = strings.TrimSpace(q.Sentence)
	q.Instructions = strings.TrimSpace(q.Instructions)
	q.Passage = strings.TrimSpace(q.Passage)

	for i := range q.Categories {
		q.Categories[i].ID = ensureID(q.Categories[i].ID)
		q.Categories[i].Name = strings.TrimSpace(q.Categories[i].Name)
	}
	for i := range q.Options {
		q.Options[i].ID = ensureID(q.Options[i].ID)
		q.Options[i].Text = strings.TrimSpace(q.Options[i].Text)
	}
	for i := range q.AnswerOptions {
		q.AnswerOptions[i].ID = ensureID(q.AnswerOptions[i].ID)
		q.AnswerOptions[i].Text = strings.TrimSpace(q.AnswerOptions[i].Text)
	}
	for i := range q.Questions {
		sq := &q.Questions[i]
		sq.ID = ensureID(sq.ID)
		sq.Text = strings.TrimSpace(sq.Text)
		if sq.Type == "" {
			sq.Type = SubQuestionMCQ
		}
		if sq.Points < 1 {
			sq.Points = 1
		}
		for j := range sq.Options {
			sq.Options[j].ID = ensureID(sq.Options[j].ID)
			sq.Options[j].Text = strings.TrimSpace(sq.Options[j].Text)
		}
	}

	if q.Type == QuestionCategorize {
		q.CorrectAnswers = q.deriveAnswerKey()
	}
}

func (q *Question) deriveAnswerKey() AnswerKey {
	key := AnswerKey{}
	for _, item := range q.Options {
		if item.CategoryID != "" {
			key.Set(item.ID, item.CategoryID)
		}
	}
	return key
}

// Points is what the question contributes to the form's maximum score.
func (q *Question) Points() float64 {
	if q.Type != QuestionComprehension {
		return 1
	}
	var total float64
	for i := range q.Questions {
		total += q.Questions[i].EffectivePoints()
	}
	return total
}

// FindItem returns the categorize item with the given id or nil.
func (q *Question) FindItem(id string) *CategorizeItem {
	for i := range q.Options {
		if q.Options[i].ID == id {
			return &q.Options[i]
		}
	}
	return nil
}

// CorrectClozeOption returns the correct option for a blank key or nil when
// none is marked correct.
func (q *Question) CorrectClozeOption(key string) *ClozeOption {
	for i := range q.AnswerOptions {
		opt := &q.AnswerOptions[i]
		if opt.IsCorrect && opt.WordKey == key {
			return opt
		}
	}
	return nil
}

// FindSubQuestion returns the comprehension sub-question with the given id or nil.
func (q *Question) FindSubQuestion(id string) *SubQuestion {
	for i := range q.Questions {
		if q.Questions[i].ID == id {
			return &q.Questions[i]
		}
	}
	return nil
}

// EffectivePoints treats unset or sub-1 points as 1.
func (sq *SubQuestion) EffectivePoints() float64 {
	if sq.Points < 1 {
		return 1
	}
	return sq.Points
}

// CorrectOptionIDs returns the ids of options marked correct, in option order.
func (sq *SubQuestion) CorrectOptionIDs() []string {
	ids := make([]string, 0, len(sq.Options))
	for _, opt := range sq.Options {
		if opt.IsCorrect {
			ids = append(ids, opt.ID)
		}
	}
	return ids
}

func ensureID(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return uuid.NewString()
	}
	return id
}
