package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hilthontt/quorum/internal/domain"
	"github.com/hilthontt/quorum/internal/infrastructure/logging"
	"github.com/hilthontt/quorum/internal/infrastructure/store"
)

func newTestQuizRepository(t *testing.T) *QuizRepository {
	t.Helper()

	s, err := store.Open(store.Options{InMemory: true}, logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return NewQuizRepository(s, time.Hour, logging.NewNop())
}

func createTestQuiz(t *testing.T, repo *QuizRepository) *domain.Quiz {
	t.Helper()

	quiz, err := repo.CreateQuiz(context.Background(), CreateQuizData{
		QuizID:          "QUIZ01",
		UserID:          "admin-1",
		Name:            "Alice",
		Topic:           "trivia",
		Description:     "friday night",
		MaxParticipants: 5,
		MaxQuestions:    10,
	})
	require.NoError(t, err)
	return quiz
}

func TestQuizRepository_CreateSeedsAdmin(t *testing.T) {
	req := require.New(t)
	repo := newTestQuizRepository(t)

	quiz := createTestQuiz(t, repo)

	req.Equal("QUIZ01", quiz.ID)
	req.Equal("friday night", quiz.Description)
	req.Equal(5, quiz.MaxParticipants)
	req.Equal("Alice", quiz.Participants["admin-1"])
	req.Empty(quiz.Questions)
	req.Empty(quiz.Results)
}

func TestQuizRepository_QuestionLifecycle(t *testing.T) {
	req := require.New(t)
	repo := newTestQuizRepository(t)
	ctx := context.Background()

	createTestQuiz(t, repo)

	question := domain.Question{
		ID:     "q1",
		UserID: "admin-1",
		Text:   "2+2?",
		Answers: []domain.AnswerOption{
			{ID: "a1", Text: "4", IsCorrect: true},
		},
	}

	quiz, err := repo.AddQuestion(ctx, "QUIZ01", question)
	req.NoError(err)
	req.Equal("2+2?", quiz.Questions["q1"].Text)
	req.True(quiz.Questions["q1"].Answers[0].IsCorrect)

	quiz, err = repo.RemoveQuestion(ctx, "QUIZ01", "q1")
	req.NoError(err)
	req.NotContains(quiz.Questions, "q1")
}

func TestQuizRepository_SetAnswerOptionsReplacesWholeList(t *testing.T) {
	req := require.New(t)
	repo := newTestQuizRepository(t)
	ctx := context.Background()

	createTestQuiz(t, repo)

	_, err := repo.AddQuestion(ctx, "QUIZ01", domain.Question{ID: "q1", Text: "2+2?", Answers: []domain.AnswerOption{
		{ID: "a1", Text: "4", IsCorrect: true},
		{ID: "a2", Text: "5"},
	}})
	req.NoError(err)

	quiz, err := repo.SetAnswerOptions(ctx, "QUIZ01", "q1", []domain.AnswerOption{
		{ID: "a1", Text: "4", IsCorrect: true},
	})
	req.NoError(err)
	req.Len(quiz.Questions["q1"].Answers, 1)
}

func TestQuizRepository_UserAnswersAppend(t *testing.T) {
	req := require.New(t)
	repo := newTestQuizRepository(t)
	ctx := context.Background()

	createTestQuiz(t, repo)

	_, err := repo.AddUserAnswer(ctx, "QUIZ01", "user-2", domain.UserAnswer{QuestionID: "q1", AnswerID: "a1", Timestamp: 1})
	req.NoError(err)

	quiz, err := repo.AddUserAnswer(ctx, "QUIZ01", "user-2", domain.UserAnswer{QuestionID: "q2", AnswerID: "a3", Timestamp: 2})
	req.NoError(err)
	req.Len(quiz.UserAnswers["user-2"], 2)
	req.Equal("q1", quiz.UserAnswers["user-2"][0].QuestionID)
	req.Equal("q2", quiz.UserAnswers["user-2"][1].QuestionID)
}

func TestQuizRepository_StartAndResults(t *testing.T) {
	req := require.New(t)
	repo := newTestQuizRepository(t)
	ctx := context.Background()

	createTestQuiz(t, repo)

	quiz, err := repo.StartQuiz(ctx, "QUIZ01")
	req.NoError(err)
	req.True(quiz.HasStarted)

	quiz, err = repo.SaveResults(ctx, "QUIZ01", []domain.Result{{ID: "user-2", Name: "Bob", Score: 100}})
	req.NoError(err)
	req.Len(quiz.Results, 1)
}

func TestQuizRepository_DeleteQuiz(t *testing.T) {
	req := require.New(t)
	repo := newTestQuizRepository(t)
	ctx := context.Background()

	createTestQuiz(t, repo)
	req.NoError(repo.DeleteQuiz(ctx, "QUIZ01"))

	_, err := repo.GetQuiz(ctx, "QUIZ01")
	req.ErrorIs(err, domain.ErrRoomNotFound)
}
