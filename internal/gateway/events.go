package gateway

import (
	"encoding/json"

	"github.com/hilthontt/quorum/internal/domain"
)

// Inbound poll commands.
const (
	EventNominate          = "nominate"
	EventRemoveNomination  = "remove_nomination"
	EventSubmitRankings    = "submit_rankings"
	EventChat              = "chat"
	EventRemoveParticipant = "remove_participant"
	EventStartPoll         = "start_poll"
	EventClosePoll         = "close_poll"
	EventCancelPoll        = "cancel_poll"
)

// Inbound quiz commands.
const (
	EventQuestion             = "question"
	EventQuestionAnswer       = "question_answer"
	EventRemoveQuestion       = "remove_question"
	EventRemoveQuestionAnswer = "remove_question_answer"
	EventSubmitUserAnswer     = "submit_user_answer"
	EventStartQuiz            = "start_quiz"
	EventCloseQuiz            = "close_quiz"
	EventCancelQuiz           = "cancel_quiz"
)

// Outbound events.
const (
	EventPollUpdated   = "poll_updated"
	EventQuizUpdated   = "quiz_updated"
	EventPollCancelled = "poll_cancelled"
	EventQuizCancelled = "quiz_cancelled"
	EventException     = "exception"
)

// Command is the inbound wire frame. Data stays raw until the router knows
// which payload shape the event expects.
type Command struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Message is the outbound wire frame.
type Message struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

func NewPollUpdated(poll *domain.Poll) *Message {
	return &Message{Event: EventPollUpdated, Data: poll}
}

// NewQuizUpdated snapshots a quiz for broadcast. Correctness flags are
// redacted until results exist, so participants cannot read the answer key
// mid-game.
func NewQuizUpdated(quiz *domain.Quiz) *Message {
	return &Message{Event: EventQuizUpdated, Data: quiz.Redacted()}
}

func NewPollCancelled() *Message {
	return &Message{Event: EventPollCancelled}
}

func NewQuizCancelled() *Message {
	return &Message{Event: EventQuizCancelled}
}

type exceptionPayload struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// NewException wraps an error for the issuing client. Infrastructure
// failures are masked; their messages describe internals clients have no
// business seeing.
func NewException(err error) *Message {
	kind := domain.KindOf(err)
	msg := err.Error()
	if kind == domain.KindInfrastructure {
		msg = "internal error"
	}
	return &Message{
		Event: EventException,
		Data:  exceptionPayload{Kind: string(kind), Message: msg},
	}
}
