package domain

// Session is the shared view of a live room that the gateway and its guards
// operate on. Poll and Quiz both satisfy it; variant-specific fields stay on
// the concrete types.
type Session interface {
	SessionID() string
	SessionAdminID() string
	Started() bool
	HasParticipant(userID string) bool
}

// Participants maps participant ID to display name.
type Participants map[string]string

// ChatMessage is one append-only chat entry inside a room document.
type ChatMessage struct {
	UserID    string `json:"userID"`
	Name      string `json:"name"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"` // unix milliseconds
}

// Result is one row of a computed leaderboard. For polls the identity is a
// nomination ID, for quizzes a participant ID.
type Result struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}
