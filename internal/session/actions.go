package session

import "trivia-quiz-service/internal/domain"

// Action is one state change request. The set is closed: only the types in
// this file implement it.
type Action interface {
	actionName() string
}

// SetConfiguration replaces the quiz configuration.
type SetConfiguration struct {
	Configuration domain.QuizConfiguration
}

// SetLoading toggles the question loading flag.
type SetLoading struct {
	Loading bool
}

// SetError replaces the load error. An empty message clears it.
type SetError struct {
	Message string
}

// SetQuestions installs a new question set and resets progress.
type SetQuestions struct {
	Questions []domain.Question
}

// StartSession marks the attempt as running.
type StartSession struct{}

// SetCurrentQuestion moves to Index.
type SetCurrentQuestion struct {
	Index int
}

// RecordAnswer upserts Record by question id.
type RecordAnswer struct {
	Record domain.AnswerRecord
}

// CompleteSession marks the attempt as finished.
type CompleteSession struct{}

// ResetSession restores the initial state, keeping the configuration.
type ResetSession struct{}

func (SetConfiguration) actionName() string   { return "SetConfiguration" }
func (SetLoading) actionName() string         { return "SetLoading" }
func (SetError) actionName() string           { return "SetError" }
func (SetQuestions) actionName() string       { return "SetQuestions" }
func (StartSession) actionName() string       { return "StartSession" }
func (SetCurrentQuestion) actionName() string { return "SetCurrentQuestion" }
func (RecordAnswer) actionName() string       { return "RecordAnswer" }
func (CompleteSession) actionName() string    { return "CompleteSession" }
func (ResetSession) actionName() string       { return "ResetSession" }

// Name returns a printable action name for logs.
func Name(a Action) string {
	if a == nil {
		return "<nil>"
	}
	return a.actionName()
}
