package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hilthontt/quorum/internal/domain"
	"github.com/hilthontt/quorum/internal/infrastructure/token"
	"github.com/hilthontt/quorum/internal/repository"
	"github.com/hilthontt/quorum/internal/results"
)

// QuizAccess pairs a quiz snapshot with the credential minted for a caller.
type QuizAccess struct {
	Quiz        *domain.Quiz `json:"quiz"`
	AccessToken string       `json:"accessToken"`
}

type CreateQuizFields struct {
	Topic           string
	Description     string
	MaxParticipants int
	MaxQuestions    int
	Name            string
}

type AnswerOptionFields struct {
	Text      string
	IsCorrect bool
}

type QuizService struct {
	repo        *repository.QuizRepository
	issuer      *token.Issuer
	lockOnStart bool
	log         *zap.SugaredLogger
}

// NewQuizService builds a quiz service. Quizzes do not lock on start by
// default, so latecomers can still join mid-game.
func NewQuizService(repo *repository.QuizRepository, issuer *token.Issuer, lockOnStart bool, log *zap.SugaredLogger) *QuizService {
	return &QuizService{
		repo:        repo,
		issuer:      issuer,
		lockOnStart: lockOnStart,
		log:         log,
	}
}

func (s *QuizService) CreateQuiz(ctx context.Context, fields CreateQuizFields) (*QuizAccess, error) {
	userID := domain.NewUserID()

	var quiz *domain.Quiz
	for attempt := 0; attempt < createRetries; attempt++ {
		quizID, err := domain.NewRoomCode()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrStore, err)
		}

		quiz, err = s.repo.CreateQuiz(ctx, repository.CreateQuizData{
			QuizID:          quizID,
			UserID:          userID,
			Name:            fields.Name,
			Topic:           fields.Topic,
			Description:     fields.Description,
			MaxParticipants: fields.MaxParticipants,
			MaxQuestions:    fields.MaxQuestions,
		})
		if errors.Is(err, domain.ErrRoomExists) {
			s.log.Warnw("room code collision, regenerating", "quizID", quizID)
			continue
		}
		if err != nil {
			return nil, err
		}
		break
	}
	if quiz == nil {
		return nil, fmt.Errorf("%w: exhausted room code retries", domain.ErrStore)
	}

	accessToken, err := s.issuer.Sign(quiz.ID, userID, fields.Name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStore, err)
	}

	s.log.Infow("quiz created", "quizID", quiz.ID, "adminID", userID)

	return &QuizAccess{Quiz: quiz, AccessToken: accessToken}, nil
}

func (s *QuizService) JoinQuiz(ctx context.Context, quizID, name string) (*QuizAccess, error) {
	quiz, err := s.repo.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}

	if s.lockOnStart && quiz.HasStarted {
		return nil, domain.ErrRoomStarted
	}
	if len(quiz.Participants) >= quiz.MaxParticipants {
		return nil, domain.ErrRoomFull
	}

	userID := domain.NewUserID()
	accessToken, err := s.issuer.Sign(quiz.ID, userID, name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStore, err)
	}

	return &QuizAccess{Quiz: quiz, AccessToken: accessToken}, nil
}

func (s *QuizService) RejoinQuiz(ctx context.Context, quizID, userID, name string) (*domain.Quiz, error) {
	return s.AddParticipant(ctx, quizID, userID, name)
}

func (s *QuizService) GetQuiz(ctx context.Context, quizID string) (*domain.Quiz, error) {
	return s.repo.GetQuiz(ctx, quizID)
}

// AddParticipant re-checks capacity against a fresh read on every call:
// tokens may have been handed out while the room filled up, so the check at
// join time alone is not enough.
func (s *QuizService) AddParticipant(ctx context.Context, quizID, userID, name string) (*domain.Quiz, error) {
	quiz, err := s.repo.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}

	if quiz.HasParticipant(userID) {
		return quiz, nil
	}
	if len(quiz.Participants) >= quiz.MaxParticipants {
		return nil, domain.ErrRoomFull
	}

	return s.repo.AddParticipant(ctx, quizID, userID, name)
}

// RemoveParticipant mirrors the poll rule: a no-op after start and for the
// admin, signalled by a nil snapshot.
func (s *QuizService) RemoveParticipant(ctx context.Context, quizID, userID string) (*domain.Quiz, error) {
	quiz, err := s.repo.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}

	if quiz.HasStarted || userID == quiz.AdminID {
		return nil, nil
	}

	return s.repo.RemoveParticipant(ctx, quizID, userID)
}

// AddQuestion adds a bare question with no options yet.
func (s *QuizService) AddQuestion(ctx context.Context, quizID, userID, text string) (*domain.Quiz, error) {
	if _, err := s.guardQuestionMutation(ctx, quizID); err != nil {
		return nil, err
	}

	id := domain.NewItemID()
	return s.repo.AddQuestion(ctx, quizID, domain.Question{
		ID:      id,
		UserID:  userID,
		Text:    text,
		Answers: []domain.AnswerOption{},
	})
}

// AddQuestionWithAnswers adds a question authored with its full option set in
// a single command.
func (s *QuizService) AddQuestionWithAnswers(ctx context.Context, quizID, userID, text string, options []AnswerOptionFields) (*domain.Quiz, error) {
	if _, err := s.guardQuestionMutation(ctx, quizID); err != nil {
		return nil, err
	}

	answers := make([]domain.AnswerOption, 0, len(options))
	for _, opt := range options {
		answers = append(answers, domain.AnswerOption{
			ID:        domain.NewItemID(),
			Text:      opt.Text,
			IsCorrect: opt.IsCorrect,
		})
	}

	id := domain.NewItemID()
	return s.repo.AddQuestion(ctx, quizID, domain.Question{
		ID:      id,
		UserID:  userID,
		Text:    text,
		Answers: answers,
	})
}

func (s *QuizService) guardQuestionMutation(ctx context.Context, quizID string) (*domain.Quiz, error) {
	quiz, err := s.repo.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if quiz.HasStarted {
		return nil, domain.ErrRoomStarted
	}
	if len(quiz.Questions) >= quiz.MaxQuestions {
		return nil, domain.ErrMaxQuestions
	}
	return quiz, nil
}

func (s *QuizService) RemoveQuestion(ctx context.Context, quizID, questionID string) (*domain.Quiz, error) {
	quiz, err := s.repo.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if quiz.HasStarted {
		return nil, domain.ErrRoomStarted
	}

	return s.repo.RemoveQuestion(ctx, quizID, questionID)
}

func (s *QuizService) AddAnswerOption(ctx context.Context, quizID, questionID string, option AnswerOptionFields) (*domain.Quiz, error) {
	quiz, err := s.repo.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if quiz.HasStarted {
		return nil, domain.ErrRoomStarted
	}
	question, ok := quiz.Questions[questionID]
	if !ok {
		return nil, fmt.Errorf("%w: question %q", domain.ErrItemNotFound, questionID)
	}

	answers := append(question.Answers, domain.AnswerOption{
		ID:        domain.NewItemID(),
		Text:      option.Text,
		IsCorrect: option.IsCorrect,
	})
	return s.repo.SetAnswerOptions(ctx, quizID, questionID, answers)
}

func (s *QuizService) RemoveAnswerOption(ctx context.Context, quizID, questionID, answerID string) (*domain.Quiz, error) {
	quiz, err := s.repo.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if quiz.HasStarted {
		return nil, domain.ErrRoomStarted
	}
	question, ok := quiz.Questions[questionID]
	if !ok {
		return nil, fmt.Errorf("%w: question %q", domain.ErrItemNotFound, questionID)
	}

	answers := make([]domain.AnswerOption, 0, len(question.Answers))
	for _, a := range question.Answers {
		if a.ID != answerID {
			answers = append(answers, a)
		}
	}
	return s.repo.SetAnswerOptions(ctx, quizID, questionID, answers)
}

// SubmitAnswer records one participant pick. Duplicate (question, answer)
// picks are idempotent no-ops that return the current state unchanged.
func (s *QuizService) SubmitAnswer(ctx context.Context, quizID, userID, questionID, answerID string, timestamp int64) (*domain.Quiz, error) {
	quiz, err := s.repo.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if !quiz.HasStarted {
		return nil, domain.ErrRoomNotStarted
	}
	if !quiz.HasParticipant(userID) {
		return nil, domain.ErrNotParticipant
	}
	if !quiz.HasQuestion(questionID) {
		return nil, fmt.Errorf("%w: question %q", domain.ErrItemNotFound, questionID)
	}
	if quiz.HasAnswered(userID, questionID, answerID) {
		return quiz, nil
	}

	if timestamp == 0 {
		timestamp = time.Now().UnixMilli()
	}

	return s.repo.AddUserAnswer(ctx, quizID, userID, domain.UserAnswer{
		QuestionID: questionID,
		AnswerID:   answerID,
		Timestamp:  timestamp,
	})
}

// StartQuiz flips hasStarted. Idempotent.
func (s *QuizService) StartQuiz(ctx context.Context, quizID string) (*domain.Quiz, error) {
	return s.repo.StartQuiz(ctx, quizID)
}

// AddChat appends a chat entry; non-participants are rejected.
func (s *QuizService) AddChat(ctx context.Context, quizID, userID, name, text string) (*domain.Quiz, error) {
	quiz, err := s.repo.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if !quiz.HasParticipant(userID) {
		return nil, domain.ErrNotParticipant
	}

	return s.repo.AddChat(ctx, quizID, domain.NewItemID(), domain.ChatMessage{
		UserID:    userID,
		Name:      name,
		Text:      text,
		Timestamp: time.Now().UnixMilli(),
	})
}

// ComputeResults recomputes the whole leaderboard from every recorded answer
// and persists it. O(total answers), self-consistent by construction.
func (s *QuizService) ComputeResults(ctx context.Context, quizID string) (*domain.Quiz, error) {
	quiz, err := s.repo.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}

	computed := results.ComputeQuiz(quiz)
	s.log.Debugw("computed quiz results", "quizID", quizID, "rows", len(computed))

	return s.repo.SaveResults(ctx, quizID, computed)
}

func (s *QuizService) CancelQuiz(ctx context.Context, quizID string) error {
	return s.repo.DeleteQuiz(ctx, quizID)
}
