package session

import "trivia-quiz-service/internal/domain"

// Reduce applies action to state and returns the next state. It never panics
// and never writes to memory reachable from state; unknown actions return
// state unchanged.
func Reduce(state domain.SessionState, action Action) domain.SessionState {
	switch a := action.(type) {
	case SetConfiguration:
		state.Configuration = a.Configuration.Clone()
	case SetLoading:
		state.IsLoadingQuestions = a.Loading
	case SetError:
		state.LoadError = a.Message
	case SetQuestions:
		state.Questions = copyQuestions(a.Questions)
		state.CurrentIndex = 0
		state.Answers = []domain.AnswerRecord{}
		state.IsCompleted = false
	case StartSession:
		state.HasStarted = true
		state.IsCompleted = false
		state.LoadError = ""
	case SetCurrentQuestion:
		state.CurrentIndex = a.Index
	case RecordAnswer:
		state.Answers = upsertAnswer(state.Answers, a.Record)
	case CompleteSession:
		state.IsCompleted = true
		state.HasStarted = false
	case ResetSession:
		return domain.NewSessionState(state.Configuration.Clone())
	}
	return state
}

func upsertAnswer(answers []domain.AnswerRecord, record domain.AnswerRecord) []domain.AnswerRecord {
	out := make([]domain.AnswerRecord, 0, len(answers)+1)
	replaced := false
	for _, existing := range answers {
		if existing.QuestionID == record.QuestionID {
			out = append(out, record)
			replaced = true
			continue
		}
		out = append(out, existing)
	}
	if !replaced {
		out = append(out, record)
	}
	return out
}

func copyQuestions(questions []domain.Question) []domain.Question {
	out := make([]domain.Question, len(questions))
	for i, q := range questions {
		q.Distractors = append([]string(nil), q.Distractors...)
		q.PresentedOptions = append([]string(nil), q.PresentedOptions...)
		out[i] = q
	}
	return out
}
