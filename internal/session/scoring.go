package session

import (
	"math"

	"trivia-quiz-service/internal/domain"
)

// Score counts correct answers.
func Score(state domain.SessionState) int {
	score := 0
	for _, a := range state.Answers {
		if a.IsCorrect {
			score++
		}
	}
	return score
}

// Progress is the 1-based position of the current question, bounded by the
// number of questions. It is 0 before any question is loaded.
func Progress(state domain.SessionState) int {
	total := len(state.Questions)
	if total == 0 {
		return 0
	}
	p := state.CurrentIndex + 1
	if p > total {
		return total
	}
	if p < 1 {
		return 1
	}
	return p
}

// Percentage is the rounded share of correct answers over all questions.
func Percentage(state domain.SessionState) int {
	total := len(state.Questions)
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(Score(state)) / float64(total)))
}

// Outcome classifies a question on the results screen.
type Outcome string

const (
	OutcomeCorrect    Outcome = "correct"
	OutcomeIncorrect  Outcome = "incorrect"
	OutcomeUnanswered Outcome = "unanswered"
)

// ReviewItem is one row of the results summary.
type ReviewItem struct {
	QuestionID    string  `json:"questionId"`
	Prompt        string  `json:"prompt"`
	CorrectAnswer string  `json:"correctAnswer"`
	ChosenOption  string  `json:"chosenOption,omitempty"`
	Outcome       Outcome `json:"outcome"`
}

// Review lists every question in order with what happened to it. A timed-out
// question with no selection counts as unanswered.
func Review(state domain.SessionState) []ReviewItem {
	items := make([]ReviewItem, 0, len(state.Questions))
	for _, q := range state.Questions {
		item := ReviewItem{
			QuestionID:    q.ID,
			Prompt:        q.Prompt,
			CorrectAnswer: q.CorrectAnswer,
			Outcome:       OutcomeUnanswered,
		}
		if a, ok := state.Answer(q.ID); ok && a.ChosenOption != "" {
			item.ChosenOption = a.ChosenOption
			item.Outcome = OutcomeIncorrect
			if a.IsCorrect {
				item.Outcome = OutcomeCorrect
			}
		}
		items = append(items, item)
	}
	return items
}

// Verdict is the message shown next to the final percentage.
func Verdict(percentage int) string {
	switch {
	case percentage >= 80:
		return "Excellent work!"
	case percentage >= 60:
		return "Good job!"
	case percentage >= 40:
		return "Not bad, could be better!"
	default:
		return "Keep practicing!"
	}
}
