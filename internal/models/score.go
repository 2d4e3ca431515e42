package models

type ScoreOutcome string

const (
	OutcomeCorrect    ScoreOutcome = "correct"
	OutcomeIncorrect  ScoreOutcome = "incorrect"
	OutcomePartial    ScoreOutcome = "partial"
	OutcomeUnanswered ScoreOutcome = "unanswered"
)

type IgnoreReason string

const (
	IgnoreUnknownQuestion      IgnoreReason = "unknown_question"
	IgnoreDuplicateQuestion    IgnoreReason = "duplicate_question"
	IgnoreUnknownItem          IgnoreReason = "unknown_item"
	IgnoreUnknownSubQuestion   IgnoreReason = "unknown_sub_question"
	IgnoreDuplicateSubQuestion IgnoreReason = "duplicate_sub_question"
)

// QuestionScore is the scoring outcome of one form question.
type QuestionScore struct {
	QuestionID string       `json:"questionId" bson:"questionId"`
	Type       QuestionType `json:"type" bson:"type"`
	Earned     float64      `json:"earned" bson:"earned"`
	Possible   float64      `json:"possible" bson:"possible"`
	Outcome    ScoreOutcome `json:"outcome" bson:"outcome"`
}

// IgnoredAnswer records submitted data that matched nothing on the form.
// Ignored answers earn nothing and never fail a submission.
type IgnoredAnswer struct {
	QuestionID    string       `json:"questionId" bson:"questionId"`
	ItemID        string       `json:"itemId,omitempty" bson:"itemId,omitempty"`
	SubQuestionID string       `json:"subQuestionId,omitempty" bson:"subQuestionId,omitempty"`
	Reason        IgnoreReason `json:"reason" bson:"reason"`
}

type ScoreBreakdown struct {
	Questions []QuestionScore `json:"questions" bson:"questions"`
	Ignored   []IgnoredAnswer `json:"ignored" bson:"ignored"`
}
