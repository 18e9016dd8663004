package polls

type createPollRequest struct {
	Topic         string `json:"topic" validate:"required,min=1,max=100"`
	VotesPerVoter int    `json:"votesPerVoter" validate:"required,min=1,max=5"`
	Name          string `json:"name" validate:"required,min=1,max=25"`
}

type joinPollRequest struct {
	PollID string `json:"pollID" validate:"required,len=6"`
	Name   string `json:"name" validate:"required,min=1,max=25"`
}
