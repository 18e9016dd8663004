package results

import (
	"sort"

	"github.com/samber/lo"

	"github.com/hilthontt/quorum/internal/domain"
)

// pointsPerCorrectAnswer is the fixed score unit for a correct quiz answer.
const pointsPerCorrectAnswer = 100

// ComputeQuiz scores every recorded answer from scratch: 100 points when the
// chosen option is flagged correct for that question, 0 otherwise. One row
// per participant with at least one recorded answer; participants who never
// answered are absent. Full recompute keeps the result set self-consistent
// after question or option removal.
func ComputeQuiz(quiz *domain.Quiz) []domain.Result {
	answered := lo.Keys(quiz.UserAnswers)
	sort.Strings(answered)

	rows := make([]domain.Result, 0, len(answered))
	for _, userID := range answered {
		answers := quiz.UserAnswers[userID]
		if len(answers) == 0 {
			continue
		}
		rows = append(rows, domain.Result{
			ID:    userID,
			Name:  quiz.Participants[userID],
			Score: scoreAnswers(answers, quiz.Questions),
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Score > rows[j].Score
	})

	return rows
}

func scoreAnswers(answers []domain.UserAnswer, questions map[string]domain.Question) float64 {
	var total float64
	for _, answer := range answers {
		question, ok := questions[answer.QuestionID]
		if !ok {
			continue // question removed after the answer was recorded
		}
		picked, ok := lo.Find(question.Answers, func(opt domain.AnswerOption) bool {
			return opt.ID == answer.AnswerID
		})
		if ok && picked.IsCorrect {
			total += pointsPerCorrectAnswer
		}
	}
	return total
}
