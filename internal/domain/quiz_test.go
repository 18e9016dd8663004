package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func redactableQuiz() *Quiz {
	return &Quiz{
		ID:      "ABC123",
		AdminID: "admin",
		Participants: Participants{
			"admin": "Alice",
			"bob":   "Bob",
		},
		Questions: map[string]Question{
			"q1": {ID: "q1", Text: "2+2?", Answers: []AnswerOption{
				{ID: "a1", Text: "4", IsCorrect: true},
				{ID: "a2", Text: "5"},
			}},
		},
		UserAnswers: map[string][]UserAnswer{},
	}
}

func TestQuizRedacted_HidesCorrectnessBeforeResults(t *testing.T) {
	req := require.New(t)

	quiz := redactableQuiz()
	redacted := quiz.Redacted()

	for _, question := range redacted.Questions {
		for _, answer := range question.Answers {
			req.False(answer.IsCorrect)
		}
	}

	// the stored document is untouched
	req.True(quiz.Questions["q1"].Answers[0].IsCorrect)
}

func TestQuizRedacted_RevealsAfterResults(t *testing.T) {
	req := require.New(t)

	quiz := redactableQuiz()
	quiz.Results = []Result{{ID: "bob", Name: "Bob", Score: 100}}

	redacted := quiz.Redacted()
	req.True(redacted.Questions["q1"].Answers[0].IsCorrect)
}

func TestQuizHasAnswered_MatchesExactPick(t *testing.T) {
	req := require.New(t)

	quiz := redactableQuiz()
	quiz.UserAnswers["bob"] = []UserAnswer{{QuestionID: "q1", AnswerID: "a1"}}

	req.True(quiz.HasAnswered("bob", "q1", "a1"))
	req.False(quiz.HasAnswered("bob", "q1", "a2"))
	req.False(quiz.HasAnswered("admin", "q1", "a1"))
}

func TestQuizEveryoneAnswered(t *testing.T) {
	req := require.New(t)

	quiz := redactableQuiz()
	req.False(quiz.EveryoneAnswered())

	quiz.UserAnswers["admin"] = []UserAnswer{{QuestionID: "q1", AnswerID: "a1"}}
	req.False(quiz.EveryoneAnswered())

	quiz.UserAnswers["bob"] = []UserAnswer{{QuestionID: "q1", AnswerID: "a2"}}
	req.True(quiz.EveryoneAnswered())
}

func TestPollEveryoneRanked(t *testing.T) {
	req := require.New(t)

	poll := &Poll{
		Participants: Participants{"admin": "Alice", "bob": "Bob"},
		Rankings:     map[string][]string{},
	}
	req.False(poll.EveryoneRanked())

	poll.Rankings["admin"] = []string{"n1"}
	req.False(poll.EveryoneRanked())

	poll.Rankings["bob"] = []string{"n1"}
	req.True(poll.EveryoneRanked())
}
