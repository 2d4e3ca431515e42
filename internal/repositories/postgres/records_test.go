package postgres

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/SAP-F-2025/form-builder-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestFormRecord_AnswerKeyStoredAsEntries(t *testing.T) {
	form := models.NewForm()
	form.ID = primitive.NewObjectID()
	form.Title = "Quiz"
	form.CreatedAt = time.Now().UTC()
	form.Questions = []models.Question{{
		ID:             "q1",
		Type:           models.QuestionCategorize,
		QuestionText:   "Sort",
		Options:        []models.CategorizeItem{{ID: "z", Text: "Z", CategoryID: "c1"}, {ID: "a", Text: "A", CategoryID: "c2"}},
		CorrectAnswers: models.AnswerKey{{Key: "z", Value: "c1"}, {Key: "a", Value: "c2"}},
	}}

	record, err := toFormRecord(form)
	require.NoError(t, err)
	assert.Equal(t, form.ID.Hex(), record.ID)
	assert.Nil(t, record.HeaderImage)

	var raw []map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(record.Questions, &raw))
	assert.JSONEq(t, `[{"key":"z","value":"c1"},{"key":"a","value":"c2"}]`, string(raw[0]["correctAnswers"]))

	back, err := record.toModel()
	require.NoError(t, err)
	assert.Equal(t, form.ID, back.ID)
	assert.Equal(t, form.Questions[0].CorrectAnswers, back.Questions[0].CorrectAnswers)
	assert.True(t, back.Settings.ShowResults)
}

func TestResponseRecord_OptionalColumns(t *testing.T) {
	resp := &models.FormResponse{
		ID:       primitive.NewObjectID(),
		FormID:   primitive.NewObjectID(),
		Score:    1,
		MaxScore: 2,
		Responses: []models.QuestionResponse{
			{QuestionID: "q1", Type: models.QuestionCloze, Answers: []models.Answer{{BlankID: "b1", SelectedAnswer: "fox"}}},
		},
	}

	record, err := toResponseRecord(resp)
	require.NoError(t, err)
	assert.Nil(t, record.Breakdown)

	back, err := record.toModel()
	require.NoError(t, err)
	assert.Nil(t, back.Breakdown)
	assert.Equal(t, resp.FormID, back.FormID)
	assert.Equal(t, resp.Responses, back.Responses)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\% off\_now\\`, escapeLike(`50% off_now\`))
}
