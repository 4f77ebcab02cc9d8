package domain

// Category is a trivia category offered by a question source.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// RawQuestion mirrors a question as delivered by a question source, before ingestion.
// Text fields may still carry escaped HTML entities.
type RawQuestion struct {
	Category         string   `json:"category"`
	Type             string   `json:"type"`
	Difficulty       string   `json:"difficulty"`
	Question         string   `json:"question"`
	CorrectAnswer    string   `json:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers"`
}

// QuestionParams is the request sent to a question source.
type QuestionParams struct {
	Amount     int
	Category   *int
	Difficulty *Difficulty
	Type       *QuestionType
}

// Question is the display-ready question. PresentedOptions is fixed at ingestion.
type Question struct {
	ID               string   `json:"id"`
	Category         string   `json:"category"`
	Difficulty       string   `json:"difficulty"`
	Type             string   `json:"type"`
	Prompt           string   `json:"prompt"`
	CorrectAnswer    string   `json:"correctAnswer"`
	Distractors      []string `json:"distractors"`
	PresentedOptions []string `json:"presentedOptions"`
}

// HasOption reports whether option is one of the presented options.
func (q Question) HasOption(option string) bool {
	for _, o := range q.PresentedOptions {
		if o == option {
			return true
		}
	}
	return false
}

// AnswerRecord is the recorded outcome for one question. ChosenOption is empty
// when the countdown expired without a selection.
type AnswerRecord struct {
	QuestionID   string `json:"questionId"`
	ChosenOption string `json:"chosenOption"`
	IsCorrect    bool   `json:"isCorrect"`
}

// SessionState is the whole state of one quiz attempt.
type SessionState struct {
	Configuration      QuizConfiguration `json:"configuration"`
	Questions          []Question        `json:"questions"`
	CurrentIndex       int               `json:"currentIndex"`
	Answers            []AnswerRecord    `json:"answers"`
	IsLoadingQuestions bool              `json:"isLoadingQuestions"`
	LoadError          string            `json:"loadError,omitempty"`
	HasStarted         bool              `json:"hasStarted"`
	IsCompleted        bool              `json:"isCompleted"`
}

// NewSessionState returns the initial state carrying cfg.
func NewSessionState(cfg QuizConfiguration) SessionState {
	return SessionState{
		Configuration: cfg,
		Questions:     []Question{},
		Answers:       []AnswerRecord{},
	}
}

// InProgress reports whether an attempt is running.
func (s SessionState) InProgress() bool {
	return s.HasStarted && !s.IsCompleted
}

// CurrentQuestion returns the question at CurrentIndex, if any.
func (s SessionState) CurrentQuestion() (Question, bool) {
	if s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Questions) {
		return Question{}, false
	}
	return s.Questions[s.CurrentIndex], true
}

// Answer returns the record for questionID, if one exists.
func (s SessionState) Answer(questionID string) (AnswerRecord, bool) {
	for _, a := range s.Answers {
		if a.QuestionID == questionID {
			return a, true
		}
	}
	return AnswerRecord{}, false
}

// Clone returns a deep copy so readers can never alias the writer's slices.
func (s SessionState) Clone() SessionState {
	out := s
	out.Configuration = s.Configuration.Clone()
	out.Questions = make([]Question, len(s.Questions))
	for i, q := range s.Questions {
		q.Distractors = append([]string(nil), q.Distractors...)
		q.PresentedOptions = append([]string(nil), q.PresentedOptions...)
		out.Questions[i] = q
	}
	out.Answers = append(make([]AnswerRecord, 0, len(s.Answers)), s.Answers...)
	return out
}
