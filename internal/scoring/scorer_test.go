package scoring

import (
	"testing"

	"github.com/SAP-F-2025/form-builder-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func categorizeQuestion() models.Question {
	return models.Question{
		ID:           "q-cat",
		Type:         models.QuestionCategorize,
		QuestionText: "Sort the animals",
		Categories: []models.Category{
			{ID: "catA", Name: "Mammal"},
			{ID: "catB", Name: "Bird"},
		},
		Options: []models.CategorizeItem{
			{ID: "item1", Text: "Dog", CategoryID: "catA"},
			{ID: "item2", Text: "Eagle", CategoryID: "catB"},
		},
	}
}

func clozeQuestion() models.Question {
	return models.Question{
		ID:           "q-cloze",
		Type:         models.QuestionCloze,
		QuestionText: "Fill in the blanks",
		Sentence:     "The quick brown fox",
		SelectedWords: []models.ClozeBlank{
			{Word: "quick", Position: 1, Key: "b1"},
			{Word: "fox", Position: 3, Key: "b2"},
		},
		AnswerOptions: []models.ClozeOption{
			{ID: "o1", Text: "quick", IsCorrect: true, WordKey: "b1"},
			{ID: "o2", Text: "slow", IsCorrect: false, WordKey: "b1"},
			{ID: "o3", Text: "fox", IsCorrect: true, WordKey: "b2"},
		},
	}
}

func comprehensionQuestion() models.Question {
	return models.Question{
		ID:           "q-comp",
		Type:         models.QuestionComprehension,
		QuestionText: "Read the passage",
		Passage:      "Go was designed at Google.",
		Questions: []models.SubQuestion{
			{
				ID: "mcq1", Type: models.SubQuestionMCQ, Text: "Where?", Points: 2,
				Options: []models.Option{
					{ID: "optA", Text: "Google", IsCorrect: true},
					{ID: "optB", Text: "Bell Labs"},
				},
			},
			{ID: "st1", Type: models.SubQuestionShortText, Text: "Why?", Points: 1},
		},
	}
}

func mcaQuestion() models.Question {
	return models.Question{
		ID:           "q-mca",
		Type:         models.QuestionComprehension,
		QuestionText: "Pick all",
		Passage:      "Primes below ten.",
		Questions: []models.SubQuestion{
			{
				ID: "mca1", Type: models.SubQuestionMCA, Text: "Which are prime?", Points: 3,
				Options: []models.Option{
					{ID: "two", Text: "2", IsCorrect: true},
					{ID: "three", Text: "3", IsCorrect: true},
					{ID: "four", Text: "4"},
				},
			},
		},
	}
}

func formWith(questions ...models.Question) *models.Form {
	return &models.Form{Title: "Quiz", Questions: questions}
}

func TestScore_Categorize(t *testing.T) {
	form := formWith(categorizeQuestion())

	t.Run("one mismatch zeroes the question", func(t *testing.T) {
		res := Score(form, []models.QuestionResponse{{
			QuestionID: "q-cat",
			Type:       models.QuestionCategorize,
			Answers: []models.Answer{
				{ItemID: "item1", SelectedCategoryID: "catA"},
				{ItemID: "item2", SelectedCategoryID: "catC"},
			},
		}})

		assert.Equal(t, 0.0, res.Score)
		assert.Equal(t, 1.0, res.MaxScore)
		require.Len(t, res.Breakdown.Questions, 1)
		assert.Equal(t, models.OutcomeIncorrect, res.Breakdown.Questions[0].Outcome)
	})

	t.Run("all correct earns one point", func(t *testing.T) {
		res := Score(form, []models.QuestionResponse{{
			QuestionID: "q-cat",
			Type:       models.QuestionCategorize,
			Answers: []models.Answer{
				{ItemID: "item1", SelectedCategoryID: "catA"},
				{ItemID: "item2", SelectedCategoryID: "catB"},
			},
		}})

		assert.Equal(t, 1.0, res.Score)
		assert.Equal(t, 1.0, res.MaxScore)
		assert.Equal(t, models.OutcomeCorrect, res.Breakdown.Questions[0].Outcome)
	})

	t.Run("unknown item is ignored", func(t *testing.T) {
		res := Score(form, []models.QuestionResponse{{
			QuestionID: "q-cat",
			Type:       models.QuestionCategorize,
			Answers: []models.Answer{
				{ItemID: "item1", SelectedCategoryID: "catA"},
				{ItemID: "ghost", SelectedCategoryID: "catB"},
			},
		}})

		assert.Equal(t, 1.0, res.Score)
		require.Len(t, res.Breakdown.Ignored, 1)
		assert.Equal(t, models.IgnoredAnswer{QuestionID: "q-cat", ItemID: "ghost", Reason: models.IgnoreUnknownItem}, res.Breakdown.Ignored[0])
	})

	t.Run("only unknown items leaves the question unanswered", func(t *testing.T) {
		res := Score(form, []models.QuestionResponse{{
			QuestionID: "q-cat",
			Answers:    []models.Answer{{ItemID: "ghost", SelectedCategoryID: "catA"}},
		}})

		assert.Equal(t, 0.0, res.Score)
		assert.Equal(t, models.OutcomeUnanswered, res.Breakdown.Questions[0].Outcome)
	})
}

func TestScore_Cloze(t *testing.T) {
	form := formWith(clozeQuestion())

	answers := func(first, second string) []models.QuestionResponse {
		return []models.QuestionResponse{{
			QuestionID: "q-cloze",
			Type:       models.QuestionCloze,
			Answers: []models.Answer{
				{BlankID: "b1", SelectedAnswer: first},
				{BlankID: "b2", SelectedAnswer: second},
			},
		}}
	}

	assert.Equal(t, 1.0, Score(form, answers("quick", "fox")).Score)
	assert.Equal(t, 0.0, Score(form, answers("slow", "fox")).Score)
	assert.Equal(t, 0.0, Score(form, answers("Quick", "fox")).Score, "comparison is case-sensitive")

	t.Run("blank without a correct option is incorrect", func(t *testing.T) {
		res := Score(form, []models.QuestionResponse{{
			QuestionID: "q-cloze",
			Answers:    []models.Answer{{BlankID: "b9", SelectedAnswer: "anything"}},
		}})

		assert.Equal(t, 0.0, res.Score)
		assert.Equal(t, models.OutcomeIncorrect, res.Breakdown.Questions[0].Outcome)
	})
}

func TestScore_Comprehension(t *testing.T) {
	form := formWith(comprehensionQuestion())

	res := Score(form, []models.QuestionResponse{{
		QuestionID: "q-comp",
		Type:       models.QuestionComprehension,
		Answers: []models.Answer{
			{SubQuestionID: "mcq1", SelectedOptions: []string{"optA"}},
			{SubQuestionID: "st1", TextAnswer: "because"},
		},
	}})

	assert.Equal(t, 3.0, res.Score)
	assert.Equal(t, 3.0, res.MaxScore)
	assert.Equal(t, models.OutcomeCorrect, res.Breakdown.Questions[0].Outcome)

	t.Run("mcq with two selections earns nothing", func(t *testing.T) {
		res := Score(form, []models.QuestionResponse{{
			QuestionID: "q-comp",
			Answers: []models.Answer{
				{SubQuestionID: "mcq1", SelectedOptions: []string{"optA", "optB"}},
				{SubQuestionID: "st1"},
			},
		}})

		assert.Equal(t, 1.0, res.Score, "empty short-text answer still earns its points")
		assert.Equal(t, models.OutcomePartial, res.Breakdown.Questions[0].Outcome)
	})

	t.Run("unknown and repeated sub-questions are ignored", func(t *testing.T) {
		res := Score(form, []models.QuestionResponse{{
			QuestionID: "q-comp",
			Answers: []models.Answer{
				{SubQuestionID: "mcq1", SelectedOptions: []string{"optB"}},
				{SubQuestionID: "mcq1", SelectedOptions: []string{"optA"}},
				{SubQuestionID: "nope"},
			},
		}})

		assert.Equal(t, 0.0, res.Score)
		require.Len(t, res.Breakdown.Ignored, 2)
		assert.Equal(t, models.IgnoreDuplicateSubQuestion, res.Breakdown.Ignored[0].Reason)
		assert.Equal(t, models.IgnoreUnknownSubQuestion, res.Breakdown.Ignored[1].Reason)
	})
}

func TestScore_MCAExactSet(t *testing.T) {
	form := formWith(mcaQuestion())

	cases := []struct {
		name     string
		selected []string
		want     float64
	}{
		{"exact set", []string{"three", "two"}, 3},
		{"repeated ids", []string{"two", "three", "two"}, 3},
		{"strict subset", []string{"two"}, 0},
		{"strict superset", []string{"two", "three", "four"}, 0},
		{"nothing selected", nil, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := Score(form, []models.QuestionResponse{{
				QuestionID: "q-mca",
				Answers:    []models.Answer{{SubQuestionID: "mca1", SelectedOptions: tc.selected}},
			}})
			assert.Equal(t, tc.want, res.Score)
		})
	}
}

func TestScore_QuestionLevelEdgeCases(t *testing.T) {
	form := formWith(categorizeQuestion(), clozeQuestion(), comprehensionQuestion())
	correctCat := models.QuestionResponse{
		QuestionID: "q-cat",
		Answers: []models.Answer{
			{ItemID: "item1", SelectedCategoryID: "catA"},
			{ItemID: "item2", SelectedCategoryID: "catB"},
		},
	}
	wrongCat := models.QuestionResponse{
		QuestionID: "q-cat",
		Answers:    []models.Answer{{ItemID: "item1", SelectedCategoryID: "catB"}},
	}

	res := Score(form, []models.QuestionResponse{
		correctCat,
		wrongCat,
		{QuestionID: "missing", Answers: []models.Answer{{ItemID: "x"}}},
	})

	assert.Equal(t, 1.0, res.Score, "first entry wins")
	assert.Equal(t, 5.0, res.MaxScore)
	require.Len(t, res.Breakdown.Questions, 3)
	assert.Equal(t, models.OutcomeUnanswered, res.Breakdown.Questions[1].Outcome)
	assert.Equal(t, 3.0, res.Breakdown.Questions[2].Possible)
	assert.Equal(t, []models.IgnoredAnswer{
		{QuestionID: "q-cat", Reason: models.IgnoreDuplicateQuestion},
		{QuestionID: "missing", Reason: models.IgnoreUnknownQuestion},
	}, res.Breakdown.Ignored)
}

func TestScore_FormTypeGovernsScoring(t *testing.T) {
	form := formWith(categorizeQuestion())

	res := Score(form, []models.QuestionResponse{{
		QuestionID: "q-cat",
		Type:       models.QuestionCloze,
		Answers: []models.Answer{
			{ItemID: "item1", SelectedCategoryID: "catA"},
			{ItemID: "item2", SelectedCategoryID: "catB"},
		},
	}})

	assert.Equal(t, 1.0, res.Score)
}

func TestMaxScore(t *testing.T) {
	assert.Equal(t, 1.0, MaxScore(formWith()))

	comp := comprehensionQuestion()
	comp.Questions[1].Points = 0
	assert.Equal(t, 3.0, MaxScore(formWith(comp)), "unset points count as 1")

	empty := models.Question{ID: "q", Type: models.QuestionComprehension}
	assert.Equal(t, 1.0, MaxScore(formWith(empty)))
}

func TestScore_ScoreNeverExceedsMax(t *testing.T) {
	form := formWith(categorizeQuestion(), clozeQuestion(), comprehensionQuestion(), mcaQuestion())
	res := Score(form, []models.QuestionResponse{
		{QuestionID: "q-cat", Answers: []models.Answer{{ItemID: "item1", SelectedCategoryID: "catA"}, {ItemID: "item2", SelectedCategoryID: "catB"}}},
		{QuestionID: "q-cloze", Answers: []models.Answer{{BlankID: "b1", SelectedAnswer: "quick"}, {BlankID: "b2", SelectedAnswer: "fox"}}},
		{QuestionID: "q-comp", Answers: []models.Answer{{SubQuestionID: "mcq1", SelectedOptions: []string{"optA"}}, {SubQuestionID: "st1"}}},
		{QuestionID: "q-mca", Answers: []models.Answer{{SubQuestionID: "mca1", SelectedOptions: []string{"two", "three"}}}},
	})

	assert.Equal(t, res.MaxScore, res.Score)
	assert.Equal(t, 8.0, res.Score)
	assert.Empty(t, res.Breakdown.Ignored)
}
