package domain

// Nomination is a participant-suggested option in a poll.
type Nomination struct {
	UserID string `json:"userID"`
	Text   string `json:"text"`
}

// Poll is the full room document for a ranked-choice poll. The document is
// persisted as-is (one JSON document per room) and broadcast as the snapshot
// after every accepted mutation.
type Poll struct {
	ID            string                 `json:"id"`
	Topic         string                 `json:"topic"`
	VotesPerVoter int                    `json:"votesPerVoter"`
	AdminID       string                 `json:"adminID"`
	Participants  Participants           `json:"participants"`
	Nominations   map[string]Nomination  `json:"nominations"`
	Rankings      map[string][]string    `json:"rankings"`
	Chats         map[string]ChatMessage `json:"chats"`
	Results       []Result               `json:"results"`
	HasStarted    bool                   `json:"hasStarted"`
}

func (p *Poll) SessionID() string      { return p.ID }
func (p *Poll) SessionAdminID() string { return p.AdminID }
func (p *Poll) Started() bool          { return p.HasStarted }

func (p *Poll) HasParticipant(userID string) bool {
	_, ok := p.Participants[userID]
	return ok
}

func (p *Poll) HasNomination(nominationID string) bool {
	_, ok := p.Nominations[nominationID]
	return ok
}

// EveryoneRanked reports whether all current participants have submitted a
// ranking. Computed on demand, never stored.
func (p *Poll) EveryoneRanked() bool {
	if len(p.Participants) == 0 {
		return false
	}
	for userID := range p.Participants {
		if _, ok := p.Rankings[userID]; !ok {
			return false
		}
	}
	return true
}
