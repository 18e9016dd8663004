package repository

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hilthontt/quorum/internal/domain"
	"github.com/hilthontt/quorum/internal/infrastructure/store"
)

const quizKeyPrefix = "quizzes:"

type QuizRepository struct {
	store store.DocumentStore
	ttl   time.Duration
	log   *zap.SugaredLogger
}

func NewQuizRepository(s store.DocumentStore, ttl time.Duration, log *zap.SugaredLogger) *QuizRepository {
	return &QuizRepository{store: s, ttl: ttl, log: log}
}

type CreateQuizData struct {
	QuizID          string
	UserID          string
	Name            string
	Topic           string
	Description     string
	MaxParticipants int
	MaxQuestions    int
}

func quizKey(quizID string) string {
	return quizKeyPrefix + quizID
}

func (r *QuizRepository) CreateQuiz(ctx context.Context, data CreateQuizData) (*domain.Quiz, error) {
	quiz := &domain.Quiz{
		ID:              data.QuizID,
		Topic:           data.Topic,
		Description:     data.Description,
		MaxParticipants: data.MaxParticipants,
		MaxQuestions:    data.MaxQuestions,
		AdminID:         data.UserID,
		Participants:    domain.Participants{data.UserID: data.Name},
		Questions:       map[string]domain.Question{},
		UserAnswers:     map[string][]domain.UserAnswer{},
		Chats:           map[string]domain.ChatMessage{},
		Results:         []domain.Result{},
	}

	r.log.Debugw("creating quiz", "quizID", data.QuizID, "ttl", r.ttl)

	if err := r.store.Create(ctx, quizKey(data.QuizID), quiz, r.ttl); err != nil {
		return nil, translateErr(err)
	}
	return quiz, nil
}

func (r *QuizRepository) GetQuiz(ctx context.Context, quizID string) (*domain.Quiz, error) {
	var quiz domain.Quiz
	if err := r.store.Get(ctx, quizKey(quizID), &quiz); err != nil {
		return nil, translateErr(err)
	}
	return &quiz, nil
}

func (r *QuizRepository) AddParticipant(ctx context.Context, quizID, userID, name string) (*domain.Quiz, error) {
	path := "participants." + userID
	if err := r.store.SetPath(ctx, quizKey(quizID), path, name); err != nil {
		return nil, translateErr(err)
	}
	return r.GetQuiz(ctx, quizID)
}

func (r *QuizRepository) RemoveParticipant(ctx context.Context, quizID, userID string) (*domain.Quiz, error) {
	path := "participants." + userID
	if err := r.store.DeletePath(ctx, quizKey(quizID), path); err != nil {
		return nil, translateErr(err)
	}
	return r.GetQuiz(ctx, quizID)
}

func (r *QuizRepository) AddQuestion(ctx context.Context, quizID string, question domain.Question) (*domain.Quiz, error) {
	path := "questions." + question.ID
	if err := r.store.SetPath(ctx, quizKey(quizID), path, question); err != nil {
		return nil, translateErr(err)
	}
	return r.GetQuiz(ctx, quizID)
}

func (r *QuizRepository) RemoveQuestion(ctx context.Context, quizID, questionID string) (*domain.Quiz, error) {
	path := "questions." + questionID
	if err := r.store.DeletePath(ctx, quizKey(quizID), path); err != nil {
		return nil, translateErr(err)
	}
	return r.GetQuiz(ctx, quizID)
}

// SetAnswerOptions replaces a question's full option list in one field-path
// write. Both option add and option remove funnel through here.
func (r *QuizRepository) SetAnswerOptions(ctx context.Context, quizID, questionID string, answers []domain.AnswerOption) (*domain.Quiz, error) {
	path := "questions." + questionID + ".answers"
	if err := r.store.SetPath(ctx, quizKey(quizID), path, answers); err != nil {
		return nil, translateErr(err)
	}
	return r.GetQuiz(ctx, quizID)
}

func (r *QuizRepository) AddUserAnswer(ctx context.Context, quizID, userID string, answer domain.UserAnswer) (*domain.Quiz, error) {
	path := "userAnswers." + userID
	if err := r.store.AppendPath(ctx, quizKey(quizID), path, answer); err != nil {
		return nil, translateErr(err)
	}
	return r.GetQuiz(ctx, quizID)
}

func (r *QuizRepository) StartQuiz(ctx context.Context, quizID string) (*domain.Quiz, error) {
	if err := r.store.SetPath(ctx, quizKey(quizID), "hasStarted", true); err != nil {
		return nil, translateErr(err)
	}
	return r.GetQuiz(ctx, quizID)
}

func (r *QuizRepository) AddChat(ctx context.Context, quizID, chatID string, chat domain.ChatMessage) (*domain.Quiz, error) {
	path := "chats." + chatID
	if err := r.store.SetPath(ctx, quizKey(quizID), path, chat); err != nil {
		return nil, translateErr(err)
	}
	return r.GetQuiz(ctx, quizID)
}

func (r *QuizRepository) SaveResults(ctx context.Context, quizID string, results []domain.Result) (*domain.Quiz, error) {
	if err := r.store.SetPath(ctx, quizKey(quizID), "results", results); err != nil {
		return nil, translateErr(err)
	}
	return r.GetQuiz(ctx, quizID)
}

func (r *QuizRepository) DeleteQuiz(ctx context.Context, quizID string) error {
	if err := r.store.Delete(ctx, quizKey(quizID)); err != nil {
		return translateErr(err)
	}
	return nil
}
