package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hilthontt/quorum/internal/domain"
	"github.com/hilthontt/quorum/internal/infrastructure/logging"
	"github.com/hilthontt/quorum/internal/infrastructure/store"
	"github.com/hilthontt/quorum/internal/infrastructure/token"
	"github.com/hilthontt/quorum/internal/repository"
)

func newTestQuizService(t *testing.T, lockOnStart bool) *QuizService {
	t.Helper()

	s, err := store.Open(store.Options{InMemory: true}, logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	repo := repository.NewQuizRepository(s, time.Hour, logging.NewNop())
	issuer := token.NewIssuer("test-secret", time.Hour)
	return NewQuizService(repo, issuer, lockOnStart, logging.NewNop())
}

func createQuiz(t *testing.T, svc *QuizService, maxParticipants, maxQuestions int) *QuizAccess {
	t.Helper()

	access, err := svc.CreateQuiz(context.Background(), CreateQuizFields{
		Topic:           "trivia",
		Description:     "friday night",
		MaxParticipants: maxParticipants,
		MaxQuestions:    maxQuestions,
		Name:            "Alice",
	})
	require.NoError(t, err)
	return access
}

func questionID(t *testing.T, quiz *domain.Quiz) string {
	t.Helper()
	require.Len(t, quiz.Questions, 1)
	for id := range quiz.Questions {
		return id
	}
	return ""
}

func TestQuizService_CreateIssuesAdminCredential(t *testing.T) {
	req := require.New(t)
	svc := newTestQuizService(t, false)

	access := createQuiz(t, svc, 5, 10)

	req.Len(access.Quiz.ID, 6)
	req.NotEmpty(access.AccessToken)
	req.Equal("friday night", access.Quiz.Description)
	req.Equal("Alice", access.Quiz.Participants[access.Quiz.AdminID])
}

func TestQuizService_JoinRespectsCapacity(t *testing.T) {
	req := require.New(t)
	svc := newTestQuizService(t, false)
	ctx := context.Background()

	access := createQuiz(t, svc, 2, 10)

	// admin occupies one slot; one more fits
	_, err := svc.AddParticipant(ctx, access.Quiz.ID, "user-2", "Bob")
	req.NoError(err)

	_, err = svc.JoinQuiz(ctx, access.Quiz.ID, "Carol")
	req.ErrorIs(err, domain.ErrRoomFull)
}

func TestQuizService_AddParticipantRechecksCapacity(t *testing.T) {
	req := require.New(t)
	svc := newTestQuizService(t, false)
	ctx := context.Background()

	access := createQuiz(t, svc, 2, 10)

	// token was issued while there was room...
	joined, err := svc.JoinQuiz(ctx, access.Quiz.ID, "Bob")
	req.NoError(err)
	req.NotEmpty(joined.AccessToken)

	// ...but the room filled up before the websocket connected
	_, err = svc.AddParticipant(ctx, access.Quiz.ID, "user-2", "Carol")
	req.NoError(err)

	_, err = svc.AddParticipant(ctx, access.Quiz.ID, "user-3", "Bob")
	req.ErrorIs(err, domain.ErrRoomFull)
}

func TestQuizService_AddParticipantIdempotentWhenPresent(t *testing.T) {
	req := require.New(t)
	svc := newTestQuizService(t, false)
	ctx := context.Background()

	access := createQuiz(t, svc, 2, 10)

	// a reconnect of an existing participant never trips the capacity check
	quiz, err := svc.AddParticipant(ctx, access.Quiz.ID, access.Quiz.AdminID, "Alice")
	req.NoError(err)
	req.Len(quiz.Participants, 1)
}

func TestQuizService_JoinAfterStartAllowedByDefault(t *testing.T) {
	req := require.New(t)
	svc := newTestQuizService(t, false)
	ctx := context.Background()

	access := createQuiz(t, svc, 5, 10)
	_, err := svc.StartQuiz(ctx, access.Quiz.ID)
	req.NoError(err)

	_, err = svc.JoinQuiz(ctx, access.Quiz.ID, "Bob")
	req.NoError(err)
}

func TestQuizService_MaxQuestionsRejected(t *testing.T) {
	req := require.New(t)
	svc := newTestQuizService(t, false)
	ctx := context.Background()

	access := createQuiz(t, svc, 5, 2)

	_, err := svc.AddQuestion(ctx, access.Quiz.ID, access.Quiz.AdminID, "first?")
	req.NoError(err)
	_, err = svc.AddQuestion(ctx, access.Quiz.ID, access.Quiz.AdminID, "second?")
	req.NoError(err)

	_, err = svc.AddQuestion(ctx, access.Quiz.ID, access.Quiz.AdminID, "third?")
	req.ErrorIs(err, domain.ErrMaxQuestions)
}

func TestQuizService_QuestionMutationsLockAfterStart(t *testing.T) {
	req := require.New(t)
	svc := newTestQuizService(t, false)
	ctx := context.Background()

	access := createQuiz(t, svc, 5, 10)

	quiz, err := svc.AddQuestion(ctx, access.Quiz.ID, access.Quiz.AdminID, "2+2?")
	req.NoError(err)
	qid := questionID(t, quiz)

	_, err = svc.StartQuiz(ctx, access.Quiz.ID)
	req.NoError(err)

	_, err = svc.AddQuestion(ctx, access.Quiz.ID, access.Quiz.AdminID, "late?")
	req.ErrorIs(err, domain.ErrRoomStarted)

	_, err = svc.RemoveQuestion(ctx, access.Quiz.ID, qid)
	req.ErrorIs(err, domain.ErrRoomStarted)

	_, err = svc.AddAnswerOption(ctx, access.Quiz.ID, qid, AnswerOptionFields{Text: "4", IsCorrect: true})
	req.ErrorIs(err, domain.ErrRoomStarted)
}

func TestQuizService_AnswerOptionLifecycle(t *testing.T) {
	req := require.New(t)
	svc := newTestQuizService(t, false)
	ctx := context.Background()

	access := createQuiz(t, svc, 5, 10)

	quiz, err := svc.AddQuestionWithAnswers(ctx, access.Quiz.ID, access.Quiz.AdminID, "2+2?", []AnswerOptionFields{
		{Text: "4", IsCorrect: true},
		{Text: "5"},
	})
	req.NoError(err)
	qid := questionID(t, quiz)
	req.Len(quiz.Questions[qid].Answers, 2)

	quiz, err = svc.AddAnswerOption(ctx, access.Quiz.ID, qid, AnswerOptionFields{Text: "22"})
	req.NoError(err)
	req.Len(quiz.Questions[qid].Answers, 3)

	wrongID := quiz.Questions[qid].Answers[2].ID
	quiz, err = svc.RemoveAnswerOption(ctx, access.Quiz.ID, qid, wrongID)
	req.NoError(err)
	req.Len(quiz.Questions[qid].Answers, 2)

	_, err = svc.AddAnswerOption(ctx, access.Quiz.ID, "missing", AnswerOptionFields{Text: "x"})
	req.ErrorIs(err, domain.ErrItemNotFound)
}

func TestQuizService_SubmitAnswerRules(t *testing.T) {
	req := require.New(t)
	svc := newTestQuizService(t, false)
	ctx := context.Background()

	access := createQuiz(t, svc, 5, 10)
	quizID := access.Quiz.ID

	quiz, err := svc.AddQuestionWithAnswers(ctx, quizID, access.Quiz.AdminID, "2+2?", []AnswerOptionFields{
		{Text: "4", IsCorrect: true},
		{Text: "5"},
	})
	req.NoError(err)
	qid := questionID(t, quiz)
	correctID := quiz.Questions[qid].Answers[0].ID

	// before start: conflict
	_, err = svc.SubmitAnswer(ctx, quizID, "user-2", qid, correctID, 0)
	req.ErrorIs(err, domain.ErrRoomNotStarted)

	_, err = svc.StartQuiz(ctx, quizID)
	req.NoError(err)
	_, err = svc.AddParticipant(ctx, quizID, "user-2", "Bob")
	req.NoError(err)

	// unknown question
	_, err = svc.SubmitAnswer(ctx, quizID, "user-2", "missing", correctID, 0)
	req.ErrorIs(err, domain.ErrItemNotFound)

	quiz, err = svc.SubmitAnswer(ctx, quizID, "user-2", qid, correctID, 0)
	req.NoError(err)
	req.Len(quiz.UserAnswers["user-2"], 1)
	req.NotZero(quiz.UserAnswers["user-2"][0].Timestamp)

	// exact duplicate is an idempotent no-op
	quiz, err = svc.SubmitAnswer(ctx, quizID, "user-2", qid, correctID, 0)
	req.NoError(err)
	req.Len(quiz.UserAnswers["user-2"], 1)
}

func TestQuizService_NonParticipantCannotContribute(t *testing.T) {
	req := require.New(t)
	svc := newTestQuizService(t, false)
	ctx := context.Background()

	access := createQuiz(t, svc, 5, 10)
	quizID := access.Quiz.ID

	quiz, err := svc.AddQuestionWithAnswers(ctx, quizID, access.Quiz.AdminID, "2+2?", []AnswerOptionFields{
		{Text: "4", IsCorrect: true},
	})
	req.NoError(err)
	qid := questionID(t, quiz)
	answerID := quiz.Questions[qid].Answers[0].ID

	_, err = svc.StartQuiz(ctx, quizID)
	req.NoError(err)

	// a credential holder who was never admitted (or was removed) has no voice
	_, err = svc.SubmitAnswer(ctx, quizID, "stranger", qid, answerID, 0)
	req.ErrorIs(err, domain.ErrNotParticipant)

	_, err = svc.AddChat(ctx, quizID, "stranger", "Mallory", "hi")
	req.ErrorIs(err, domain.ErrNotParticipant)

	quiz, err = svc.ComputeResults(ctx, quizID)
	req.NoError(err)
	req.Empty(quiz.Results)
}

func TestQuizService_ResultsEmptyUntilComputed(t *testing.T) {
	req := require.New(t)
	svc := newTestQuizService(t, false)
	ctx := context.Background()

	access := createQuiz(t, svc, 5, 10)
	quizID := access.Quiz.ID

	quiz, err := svc.AddQuestionWithAnswers(ctx, quizID, access.Quiz.AdminID, "2+2?", []AnswerOptionFields{
		{Text: "4", IsCorrect: true},
		{Text: "5"},
	})
	req.NoError(err)
	qid := questionID(t, quiz)
	correctID := quiz.Questions[qid].Answers[0].ID
	wrongID := quiz.Questions[qid].Answers[1].ID

	_, err = svc.StartQuiz(ctx, quizID)
	req.NoError(err)
	_, err = svc.AddParticipant(ctx, quizID, "user-2", "Bob")
	req.NoError(err)
	_, err = svc.AddParticipant(ctx, quizID, "user-3", "Carol")
	req.NoError(err)

	quiz, err = svc.SubmitAnswer(ctx, quizID, "user-2", qid, correctID, 0)
	req.NoError(err)
	req.Empty(quiz.Results)

	quiz, err = svc.SubmitAnswer(ctx, quizID, "user-3", qid, wrongID, 0)
	req.NoError(err)
	req.Empty(quiz.Results)

	quiz, err = svc.ComputeResults(ctx, quizID)
	req.NoError(err)
	req.Len(quiz.Results, 2)
	req.Equal("user-2", quiz.Results[0].ID)
	req.Equal(float64(100), quiz.Results[0].Score)
	req.Equal("user-3", quiz.Results[1].ID)
	req.Equal(float64(0), quiz.Results[1].Score)
}

func TestQuizService_RemoveParticipantAfterStartIsNoOp(t *testing.T) {
	req := require.New(t)
	svc := newTestQuizService(t, false)
	ctx := context.Background()

	access := createQuiz(t, svc, 5, 10)
	_, err := svc.AddParticipant(ctx, access.Quiz.ID, "user-2", "Bob")
	req.NoError(err)
	_, err = svc.StartQuiz(ctx, access.Quiz.ID)
	req.NoError(err)

	quiz, err := svc.RemoveParticipant(ctx, access.Quiz.ID, "user-2")
	req.NoError(err)
	req.Nil(quiz)
}

func TestQuizService_CancelDeletesRoom(t *testing.T) {
	req := require.New(t)
	svc := newTestQuizService(t, false)
	ctx := context.Background()

	access := createQuiz(t, svc, 5, 10)
	req.NoError(svc.CancelQuiz(ctx, access.Quiz.ID))

	_, err := svc.GetQuiz(ctx, access.Quiz.ID)
	req.ErrorIs(err, domain.ErrRoomNotFound)
}
