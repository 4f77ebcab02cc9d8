package session

import "trivia-quiz-service/internal/domain"

// Screen is one of the pages of the quiz UI.
type Screen string

const (
	ScreenConfigure Screen = "configure"
	ScreenAttempt   Screen = "attempt"
	ScreenResults   Screen = "results"
)

// Decision is the outcome of a navigation attempt. Redirect is empty when
// Admitted is true.
type Decision struct {
	Screen   Screen `json:"screen"`
	Admitted bool   `json:"admitted"`
	Redirect Screen `json:"redirect,omitempty"`
}

// Admits reports whether screen may be shown for state.
func Admits(state domain.SessionState, screen Screen) bool {
	switch screen {
	case ScreenConfigure:
		return !state.HasStarted || state.IsCompleted
	case ScreenAttempt:
		return state.HasStarted && !state.IsCompleted
	case ScreenResults:
		return state.IsCompleted
	}
	return false
}

func redirectFor(state domain.SessionState, screen Screen) Screen {
	switch screen {
	case ScreenAttempt:
		if state.IsCompleted {
			return ScreenResults
		}
		return ScreenConfigure
	case ScreenConfigure:
		return ScreenAttempt
	}
	return ScreenConfigure
}

// Guard decides whether screen is admitted. When it is not, the redirect
// chain is followed until it reaches a screen that is admitted now, so the
// caller never lands on a second denied screen.
func Guard(state domain.SessionState, screen Screen) Decision {
	if Admits(state, screen) {
		return Decision{Screen: screen, Admitted: true}
	}
	target := redirectFor(state, screen)
	// Three screens: the chain settles in at most two more hops.
	for hop := 0; hop < 3 && !Admits(state, target); hop++ {
		target = redirectFor(state, target)
	}
	return Decision{Screen: screen, Redirect: target}
}

// WarnOnLeave reports whether leaving now would abandon a running quiz.
func WarnOnLeave(state domain.SessionState) bool {
	return state.InProgress() && state.CurrentIndex < len(state.Questions)
}
