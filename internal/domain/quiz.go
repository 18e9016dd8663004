package domain

// AnswerOption is one selectable answer on a quiz question.
type AnswerOption struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

// Question is an item in a quiz: text plus its answer options.
type Question struct {
	ID      string         `json:"id"`
	UserID  string         `json:"userID"`
	Text    string         `json:"text"`
	Answers []AnswerOption `json:"answers"`
}

// UserAnswer records one participant's pick for one question.
type UserAnswer struct {
	QuestionID string `json:"questionId"`
	AnswerID   string `json:"answerId"`
	Timestamp  int64  `json:"timestamp"` // unix milliseconds
}

// Quiz is the full room document for a multiple-choice quiz.
type Quiz struct {
	ID              string                  `json:"id"`
	Topic           string                  `json:"topic"`
	Description     string                  `json:"description"`
	MaxParticipants int                     `json:"maxParticipants"`
	MaxQuestions    int                     `json:"maxQuestions"`
	AdminID         string                  `json:"adminID"`
	Participants    Participants            `json:"participants"`
	Questions       map[string]Question     `json:"questions"`
	UserAnswers     map[string][]UserAnswer `json:"userAnswers"`
	Chats           map[string]ChatMessage  `json:"chats"`
	Results         []Result                `json:"results"`
	HasStarted      bool                    `json:"hasStarted"`
}

func (q *Quiz) SessionID() string      { return q.ID }
func (q *Quiz) SessionAdminID() string { return q.AdminID }
func (q *Quiz) Started() bool          { return q.HasStarted }

func (q *Quiz) HasParticipant(userID string) bool {
	_, ok := q.Participants[userID]
	return ok
}

func (q *Quiz) HasQuestion(questionID string) bool {
	_, ok := q.Questions[questionID]
	return ok
}

// HasAnswered reports whether the participant already recorded this exact
// (question, answer) pick. Duplicate submissions are idempotent no-ops.
func (q *Quiz) HasAnswered(userID, questionID, answerID string) bool {
	for _, a := range q.UserAnswers[userID] {
		if a.QuestionID == questionID && a.AnswerID == answerID {
			return true
		}
	}
	return false
}

// EveryoneAnswered reports whether every participant has answered every
// question. Computed on demand, never stored.
func (q *Quiz) EveryoneAnswered() bool {
	if len(q.Participants) == 0 || len(q.Questions) == 0 {
		return false
	}
	for userID := range q.Participants {
		if len(q.UserAnswers[userID]) < len(q.Questions) {
			return false
		}
	}
	return true
}

// Redacted returns a copy safe to broadcast mid-game: correctness flags are
// hidden until results exist, so participants cannot read answers off the
// snapshot. The stored document keeps the flags.
func (q *Quiz) Redacted() *Quiz {
	if len(q.Results) > 0 {
		return q
	}

	clone := *q
	clone.Questions = make(map[string]Question, len(q.Questions))
	for id, question := range q.Questions {
		answers := make([]AnswerOption, len(question.Answers))
		for i, a := range question.Answers {
			a.IsCorrect = false
			answers[i] = a
		}
		question.Answers = answers
		clone.Questions[id] = question
	}
	return &clone
}
