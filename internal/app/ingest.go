package app

import (
	"html"
	"math/rand"

	"github.com/google/uuid"

	"trivia-quiz-service/internal/domain"
)

// Shuffler permutes n elements in place through swap, like rand.Shuffle.
type Shuffler func(n int, swap func(i, j int))

// RandomShuffle is the default Shuffler.
func RandomShuffle(n int, swap func(i, j int)) {
	rand.Shuffle(n, swap)
}

// NewQuestionID returns a random question id.
func NewQuestionID() string {
	return uuid.NewString()
}

// DecodeText turns escaped HTML entities into plain text. Plain text is
// returned unchanged.
func DecodeText(s string) string {
	return html.UnescapeString(s)
}

// BuildQuestions converts raw source questions into display-ready ones: text
// is decoded, each question gets a fresh id and its options are shuffled
// once.
func BuildQuestions(raw []domain.RawQuestion, shuffle Shuffler, newID func() string) []domain.Question {
	if shuffle == nil {
		shuffle = RandomShuffle
	}
	if newID == nil {
		newID = NewQuestionID
	}

	out := make([]domain.Question, 0, len(raw))
	for _, r := range raw {
		correct := DecodeText(r.CorrectAnswer)
		distractors := make([]string, 0, len(r.IncorrectAnswers))
		for _, a := range r.IncorrectAnswers {
			distractors = append(distractors, DecodeText(a))
		}

		options := make([]string, 0, len(distractors)+1)
		options = append(options, distractors...)
		options = append(options, correct)
		shuffle(len(options), func(i, j int) {
			options[i], options[j] = options[j], options[i]
		})

		out = append(out, domain.Question{
			ID:               newID(),
			Category:         DecodeText(r.Category),
			Difficulty:       r.Difficulty,
			Type:             r.Type,
			Prompt:           DecodeText(r.Question),
			CorrectAnswer:    correct,
			Distractors:      distractors,
			PresentedOptions: options,
		})
	}
	return out
}
