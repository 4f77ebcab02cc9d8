package memory

import (
	"context"

	"trivia-quiz-service/internal/domain"
)

// StaticQuestionSource serves a fixed question bank (useful for tests/demos).
// It filters by category name, difficulty and type and returns the first
// Amount matches, or ErrNoQuestions when too few match.
type StaticQuestionSource struct {
	categories []domain.Category
	questions  []domain.RawQuestion
}

func NewStaticQuestionSource(categories []domain.Category, questions []domain.RawQuestion) *StaticQuestionSource {
	return &StaticQuestionSource{categories: categories, questions: questions}
}

func (s *StaticQuestionSource) FetchCategories(_ context.Context) ([]domain.Category, error) {
	return append([]domain.Category(nil), s.categories...), nil
}

func (s *StaticQuestionSource) FetchQuestions(_ context.Context, params domain.QuestionParams) ([]domain.RawQuestion, error) {
	category := ""
	if params.Category != nil {
		for _, c := range s.categories {
			if c.ID == *params.Category {
				category = c.Name
			}
		}
		if category == "" {
			return nil, domain.ErrNoQuestions
		}
	}

	out := make([]domain.RawQuestion, 0, params.Amount)
	for _, q := range s.questions {
		if len(out) == params.Amount {
			break
		}
		if category != "" && q.Category != category {
			continue
		}
		if params.Difficulty != nil && q.Difficulty != string(*params.Difficulty) {
			continue
		}
		if params.Type != nil && q.Type != string(*params.Type) {
			continue
		}
		q.IncorrectAnswers = append([]string(nil), q.IncorrectAnswers...)
		out = append(out, q)
	}
	if len(out) < params.Amount || len(out) == 0 {
		return nil, domain.ErrNoQuestions
	}
	return out, nil
}
