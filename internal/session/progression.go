package session

import "trivia-quiz-service/internal/domain"

// Advance returns the action that follows a recorded answer: completion on
// the last question, otherwise the next index.
func Advance(state domain.SessionState) Action {
	if state.CurrentIndex >= len(state.Questions)-1 {
		return CompleteSession{}
	}
	return SetCurrentQuestion{Index: state.CurrentIndex + 1}
}
