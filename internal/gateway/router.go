package gateway

import (
	"encoding/json"
	"fmt"

	"github.com/hilthontt/quorum/internal/domain"
)

// maxChatLength caps a single chat message.
const maxChatLength = 100

// Hub room keys are namespaced by activity kind; room codes are only unique
// within a kind.
func pollRoom(pollID string) string { return "poll:" + pollID }
func quizRoom(quizID string) string { return "quiz:" + quizID }

// requireAdmin gates privileged commands against a freshly fetched session,
// so a stale token never grants control over a recycled room code.
func requireAdmin(session domain.Session, userID string) error {
	if session.SessionAdminID() != userID {
		return domain.ErrUnauthorized
	}
	return nil
}

func decodePayload(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return fmt.Errorf("%w: missing payload", domain.ErrInvalidInput)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: malformed payload", domain.ErrInvalidInput)
	}
	return nil
}

func validateChat(text string) error {
	if text == "" || len(text) > maxChatLength {
		return fmt.Errorf("%w: chat message must be between 1 and %d characters", domain.ErrInvalidInput, maxChatLength)
	}
	return nil
}
