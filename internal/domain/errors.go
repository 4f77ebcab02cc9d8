package domain

import "errors"

var (
	// ErrInvalidConfiguration is returned when a quiz configuration violates its constraints.
	ErrInvalidConfiguration = errors.New("invalid quiz configuration")
	// ErrSessionInProgress is returned when configuring or starting while a quiz is running.
	ErrSessionInProgress = errors.New("quiz session already in progress")
	// ErrLoadInProgress is returned when a question load is already running.
	ErrLoadInProgress = errors.New("questions are already loading")
	// ErrNoQuestions indicates the question source returned an empty set.
	ErrNoQuestions = errors.New("no questions available")
	// ErrIndexOutOfRange indicates progression to an index outside the question set.
	ErrIndexOutOfRange = errors.New("question index out of range")
	// ErrDuplicateQuestion indicates a question set with repeated or empty IDs.
	ErrDuplicateQuestion = errors.New("duplicate question id")
	// ErrQuestionNotFound indicates an answer for a question outside the set.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrOptionNotFound indicates a selection that is not a presented option.
	ErrOptionNotFound = errors.New("option not found")
	// ErrNoSelection is returned when confirming without a draft selection.
	ErrNoSelection = errors.New("no option selected")
	// ErrNotAccepting is returned when the current question does not accept answers.
	ErrNotAccepting = errors.New("question is not accepting answers")
	// ErrAttemptClosed is returned by an attempt after Close.
	ErrAttemptClosed = errors.New("attempt closed")
	// ErrAttemptNotFound is returned when an attempt id is unknown.
	ErrAttemptNotFound = errors.New("attempt not found")
)
