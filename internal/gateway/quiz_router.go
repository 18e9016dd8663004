package gateway

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hilthontt/quorum/internal/domain"
	"github.com/hilthontt/quorum/internal/infrastructure/metrics"
	"github.com/hilthontt/quorum/internal/service"
)

type answerOptionPayload struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

// QuizRouter maps quiz commands onto the quiz service. Snapshots go out
// through NewQuizUpdated, which redacts the answer key until results exist.
type QuizRouter struct {
	hub     *Hub
	service *service.QuizService
	metrics *metrics.Metrics
	log     *zap.SugaredLogger
}

func NewQuizRouter(hub *Hub, svc *service.QuizService, m *metrics.Metrics, log *zap.SugaredLogger) *QuizRouter {
	return &QuizRouter{
		hub:     hub,
		service: svc,
		metrics: m,
		log:     log,
	}
}

// Connected registers the socket with the hub and admits the caller as a
// participant; a rejected joiner (full or expired room) is detached again and
// never keeps a live socket into the room.
func (rt *QuizRouter) Connected(ctx context.Context, c *Client) error {
	rt.hub.Add(quizRoom(c.RoomID), c)

	var joinErr error
	rt.hub.Serialize(quizRoom(c.RoomID), func() {
		quiz, err := rt.service.AddParticipant(ctx, c.RoomID, c.UserID, c.Name)
		if err != nil {
			joinErr = err
			return
		}
		rt.broadcast(c.RoomID, NewQuizUpdated(quiz))
	})
	if joinErr != nil {
		c.Send(NewException(joinErr))
		rt.hub.Remove(c)
		return joinErr
	}
	return nil
}

func (rt *QuizRouter) Disconnected(ctx context.Context, c *Client) {
	rt.hub.Serialize(quizRoom(c.RoomID), func() {
		quiz, err := rt.service.RemoveParticipant(ctx, c.RoomID, c.UserID)
		if err != nil {
			if domain.KindOf(err) != domain.KindNotFound {
				rt.log.Warnw("remove participant on disconnect", "quizID", c.RoomID, "userID", c.UserID, "error", err)
			}
			return
		}
		if quiz != nil {
			rt.broadcast(c.RoomID, NewQuizUpdated(quiz))
		}
	})
}

func (rt *QuizRouter) Handle(ctx context.Context, c *Client, cmd Command) {
	rt.metrics.Commands.WithLabelValues("quiz", cmd.Event).Inc()

	rt.hub.Serialize(quizRoom(c.RoomID), func() {
		quiz, err := rt.dispatch(ctx, c, cmd)
		if err != nil {
			rt.metrics.CommandErrors.WithLabelValues("quiz", string(domain.KindOf(err))).Inc()
			c.Send(NewException(err))
			return
		}
		if quiz != nil {
			rt.broadcast(c.RoomID, NewQuizUpdated(quiz))
		}
	})
}

func (rt *QuizRouter) dispatch(ctx context.Context, c *Client, cmd Command) (*domain.Quiz, error) {
	switch cmd.Event {
	case EventQuestion:
		var data struct {
			Text    string                `json:"text"`
			Answers []answerOptionPayload `json:"answers"`
		}
		if err := decodePayload(cmd.Data, &data); err != nil {
			return nil, err
		}
		if len(data.Answers) == 0 {
			return rt.service.AddQuestion(ctx, c.RoomID, c.UserID, data.Text)
		}
		options := make([]service.AnswerOptionFields, 0, len(data.Answers))
		for _, a := range data.Answers {
			options = append(options, service.AnswerOptionFields{Text: a.Text, IsCorrect: a.IsCorrect})
		}
		return rt.service.AddQuestionWithAnswers(ctx, c.RoomID, c.UserID, data.Text, options)

	case EventQuestionAnswer:
		var data struct {
			QuestionID string `json:"questionId"`
			Text       string `json:"text"`
			IsCorrect  bool   `json:"isCorrect"`
		}
		if err := decodePayload(cmd.Data, &data); err != nil {
			return nil, err
		}
		return rt.service.AddAnswerOption(ctx, c.RoomID, data.QuestionID, service.AnswerOptionFields{
			Text:      data.Text,
			IsCorrect: data.IsCorrect,
		})

	case EventRemoveQuestion:
		var data struct {
			ID string `json:"id"`
		}
		if err := decodePayload(cmd.Data, &data); err != nil {
			return nil, err
		}
		if err := rt.requireAdmin(ctx, c); err != nil {
			return nil, err
		}
		return rt.service.RemoveQuestion(ctx, c.RoomID, data.ID)

	case EventRemoveQuestionAnswer:
		var data struct {
			QuestionID string `json:"questionId"`
			AnswerID   string `json:"answerId"`
		}
		if err := decodePayload(cmd.Data, &data); err != nil {
			return nil, err
		}
		if err := rt.requireAdmin(ctx, c); err != nil {
			return nil, err
		}
		return rt.service.RemoveAnswerOption(ctx, c.RoomID, data.QuestionID, data.AnswerID)

	case EventSubmitUserAnswer:
		var data struct {
			QuestionID string `json:"questionId"`
			AnswerID   string `json:"answerId"`
			Timestamp  int64  `json:"timestamp"`
		}
		if err := decodePayload(cmd.Data, &data); err != nil {
			return nil, err
		}
		quiz, err := rt.service.SubmitAnswer(ctx, c.RoomID, c.UserID, data.QuestionID, data.AnswerID, data.Timestamp)
		if err != nil {
			return nil, err
		}
		if quiz.EveryoneAnswered() {
			rt.log.Infow("all participants answered", "quizID", c.RoomID)
		}
		return quiz, nil

	case EventChat:
		var data struct {
			Message string `json:"message"`
		}
		if err := decodePayload(cmd.Data, &data); err != nil {
			return nil, err
		}
		if err := validateChat(data.Message); err != nil {
			return nil, err
		}
		return rt.service.AddChat(ctx, c.RoomID, c.UserID, c.Name, data.Message)

	case EventRemoveParticipant:
		var data struct {
			ID string `json:"id"`
		}
		if err := decodePayload(cmd.Data, &data); err != nil {
			return nil, err
		}
		if err := rt.requireAdmin(ctx, c); err != nil {
			return nil, err
		}
		return rt.service.RemoveParticipant(ctx, c.RoomID, data.ID)

	case EventStartQuiz:
		if err := rt.requireAdmin(ctx, c); err != nil {
			return nil, err
		}
		return rt.service.StartQuiz(ctx, c.RoomID)

	case EventCloseQuiz:
		if err := rt.requireAdmin(ctx, c); err != nil {
			return nil, err
		}
		return rt.service.ComputeResults(ctx, c.RoomID)

	case EventCancelQuiz:
		if err := rt.requireAdmin(ctx, c); err != nil {
			return nil, err
		}
		if err := rt.service.CancelQuiz(ctx, c.RoomID); err != nil {
			return nil, err
		}
		rt.hub.CloseRoom(quizRoom(c.RoomID), NewQuizCancelled())
		return nil, nil

	default:
		return nil, fmt.Errorf("%w: unknown event %q", domain.ErrInvalidInput, cmd.Event)
	}
}

func (rt *QuizRouter) requireAdmin(ctx context.Context, c *Client) error {
	quiz, err := rt.service.GetQuiz(ctx, c.RoomID)
	if err != nil {
		return err
	}
	return requireAdmin(quiz, c.UserID)
}

func (rt *QuizRouter) broadcast(quizID string, msg *Message) {
	rt.metrics.Broadcasts.WithLabelValues("quiz").Inc()
	rt.hub.Broadcast(quizRoom(quizID), msg)
}
