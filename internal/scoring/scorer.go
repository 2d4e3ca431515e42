// Package scoring computes the score of a submission against a form.
//
// Scoring is pure: it never fails and never touches storage. Submitted data
// that does not match the form (unknown questions, items or sub-questions)
// is recorded as ignored and earns nothing.
package scoring

import (
	"math"

	"github.com/SAP-F-2025/form-builder-service/internal/models"
)

// Result is the outcome of scoring one submission.
type Result struct {
	Score     float64
	MaxScore  float64
	Breakdown models.ScoreBreakdown
}

// MaxScore is the form's total points, floored at 1.
func MaxScore(form *models.Form) float64 {
	return math.Max(form.TotalPoints(), 1)
}

// Score scores responses against form. Questions are scored in form order;
// when a question is answered more than once only the first entry counts.
func Score(form *models.Form, responses []models.QuestionResponse) Result {
	result := Result{
		MaxScore: MaxScore(form),
		Breakdown: models.ScoreBreakdown{
			Questions: make([]models.QuestionScore, 0, len(form.Questions)),
			Ignored:   []models.IgnoredAnswer{},
		},
	}

	answered := make(map[string]*models.QuestionResponse, len(responses))
	for i := range responses {
		resp := &responses[i]
		if form.FindQuestion(resp.QuestionID) == nil {
			result.ignore(models.IgnoredAnswer{QuestionID: resp.QuestionID, Reason: models.IgnoreUnknownQuestion})
			continue
		}
		if _, dup := answered[resp.QuestionID]; dup {
			result.ignore(models.IgnoredAnswer{QuestionID: resp.QuestionID, Reason: models.IgnoreDuplicateQuestion})
			continue
		}
		answered[resp.QuestionID] = resp
	}

	var total float64
	for i := range form.Questions {
		q := &form.Questions[i]
		qs := models.QuestionScore{
			QuestionID: q.ID,
			Type:       q.Type,
			Possible:   q.Points(),
			Outcome:    models.OutcomeUnanswered,
		}

		if resp, ok := answered[q.ID]; ok {
			var t tally
			switch q.Type {
			case models.QuestionCategorize:
				t = result.scoreCategorize(q, resp.Answers)
			case models.QuestionCloze:
				t = scoreCloze(q, resp.Answers)
			case models.QuestionComprehension:
				t = result.scoreComprehension(q, resp.Answers)
			}
			qs.Earned = t.earned
			qs.Outcome = t.outcome(qs.Possible)
		}

		total += qs.Earned
		result.Breakdown.Questions = append(result.Breakdown.Questions, qs)
	}

	result.Score = models.Round2(total)
	return result
}

func (r *Result) ignore(a models.IgnoredAnswer) {
	r.Breakdown.Ignored = append(r.Breakdown.Ignored, a)
}

type tally struct {
	evaluated int
	earned    float64
}

func (t tally) outcome(possible float64) models.ScoreOutcome {
	switch {
	case t.evaluated == 0:
		return models.OutcomeUnanswered
	case t.earned >= possible:
		return models.OutcomeCorrect
	case t.earned <= 0:
		return models.OutcomeIncorrect
	default:
		return models.OutcomePartial
	}
}

// scoreCategorize awards 1 point when every evaluated item sits in its
// correct category. Unknown items are ignored, not evaluated.
func (r *Result) scoreCategorize(q *models.Question, answers []models.Answer) tally {
	var t tally
	correct := 0
	for _, a := range answers {
		item := q.FindItem(a.ItemID)
		if item == nil {
			r.ignore(models.IgnoredAnswer{QuestionID: q.ID, ItemID: a.ItemID, Reason: models.IgnoreUnknownItem})
			continue
		}
		t.evaluated++
		if item.CategoryID != "" && a.SelectedCategoryID == item.CategoryID {
			correct++
		}
	}
	if t.evaluated > 0 && correct == t.evaluated {
		t.earned = 1
	}
	return t
}

// scoreCloze awards 1 point when every answered blank holds the exact text
// of the correct option for its key. A key without a correct option can
// never be answered correctly.
func scoreCloze(q *models.Question, answers []models.Answer) tally {
	t := tally{evaluated: len(answers)}
	for _, a := range answers {
		opt := q.CorrectClozeOption(a.BlankID)
		if opt == nil || opt.Text != a.SelectedAnswer {
			return t
		}
	}
	if t.evaluated > 0 {
		t.earned = 1
	}
	return t
}

// scoreComprehension sums the points of correctly answered sub-questions.
func (r *Result) scoreComprehension(q *models.Question, answers []models.Answer) tally {
	var t tally
	seen := make(map[string]bool, len(answers))
	for _, a := range answers {
		sq := q.FindSubQuestion(a.SubQuestionID)
		if sq == nil {
			r.ignore(models.IgnoredAnswer{QuestionID: q.ID, SubQuestionID: a.SubQuestionID, Reason: models.IgnoreUnknownSubQuestion})
			continue
		}
		if seen[sq.ID] {
			r.ignore(models.IgnoredAnswer{QuestionID: q.ID, SubQuestionID: sq.ID, Reason: models.IgnoreDuplicateSubQuestion})
			continue
		}
		seen[sq.ID] = true
		t.evaluated++
		if subQuestionCorrect(sq, a) {
			t.earned += sq.EffectivePoints()
		}
	}
	return t
}

func subQuestionCorrect(sq *models.SubQuestion, a models.Answer) bool {
	switch sq.Type {
	case models.SubQuestionMCQ:
		if len(a.SelectedOptions) != 1 {
			return false
		}
		for _, opt := range sq.Options {
			if opt.ID == a.SelectedOptions[0] {
				return opt.IsCorrect
			}
		}
		return false
	case models.SubQuestionMCA:
		return sameSet(a.SelectedOptions, sq.CorrectOptionIDs())
	case models.SubQuestionShortText:
		// Free text is not auto-graded; any answer earns the points.
		return true
	}
	return false
}

// sameSet reports whether selected and correct hold the same ids, ignoring
// order and repeats. An empty correct set never matches.
func sameSet(selected, correct []string) bool {
	if len(correct) == 0 {
		return false
	}
	want := make(map[string]bool, len(correct))
	for _, id := range correct {
		want[id] = true
	}
	got := make(map[string]bool, len(selected))
	for _, id := range selected {
		if !want[id] {
			return false
		}
		got[id] = true
	}
	return len(got) == len(want)
}
