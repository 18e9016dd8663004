package quizzes

type createQuizRequest struct {
	Topic           string `json:"topic" validate:"required,min=1,max=100"`
	Description     string `json:"description" validate:"max=200"`
	MaxParticipants int    `json:"maxParticipants" validate:"required,min=2"`
	MaxQuestions    int    `json:"maxQuestions" validate:"required,min=2,max=25"`
	Name            string `json:"name" validate:"required,min=1,max=25"`
}

type joinQuizRequest struct {
	QuizID string `json:"quizID" validate:"required,len=6"`
	Name   string `json:"name" validate:"required,min=1,max=25"`
}
