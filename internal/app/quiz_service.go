package app

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"trivia-quiz-service/internal/domain"
)

// AttemptRepository abstracts where live attempts are tracked (in-memory, Redis, etc).
type AttemptRepository interface {
	GetOrCreate(id string, create func(id string) *Attempt) (*Attempt, bool)
	Get(id string) (*Attempt, bool)
	Delete(id string)
	Count(ctx context.Context) (int, error)
}

// CategoryRepository lists categories, usually through a cache.
type CategoryRepository interface {
	Categories(ctx context.Context) ([]domain.Category, error)
}

// QuizService contains the quiz use cases shared by every UI shell.
type QuizService struct {
	attempts   AttemptRepository
	categories CategoryRepository
	questions  QuestionSource
	defaults   domain.QuizConfiguration
	opts       AttemptOptions

	mu      sync.Mutex
	holders map[string]int
}

func NewQuizService(attempts AttemptRepository, categories CategoryRepository, questions QuestionSource, defaults domain.QuizConfiguration, opts AttemptOptions) *QuizService {
	return &QuizService{
		attempts:   attempts,
		categories: categories,
		questions:  questions,
		defaults:   defaults.Clone(),
		opts:       opts,
		holders:    make(map[string]int),
	}
}

// Open returns the attempt with id, creating it with the default
// configuration when it does not exist. An empty id always creates a new
// attempt. Every Open counts as a holder until Release.
func (s *QuizService) Open(id string) (*Attempt, bool) {
	if id == "" {
		id = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	attempt, created := s.attempts.GetOrCreate(id, func(id string) *Attempt {
		return NewAttempt(id, s.defaults, s.questions, s.opts)
	})
	s.holders[id]++
	return attempt, created
}

// Release drops one holder of the attempt and closes it when the last
// holder leaves.
func (s *QuizService) Release(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.holders[id] > 1 {
		s.holders[id]--
		return
	}
	delete(s.holders, id)
	s.closeLocked(id)
}

// Attempt looks up a live attempt.
func (s *QuizService) Attempt(id string) (*Attempt, error) {
	attempt, ok := s.attempts.Get(id)
	if !ok {
		return nil, domain.ErrAttemptNotFound
	}
	return attempt, nil
}

// Close stops the attempt and forgets it, whoever still holds it.
func (s *QuizService) Close(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.holders, id)
	s.closeLocked(id)
}

func (s *QuizService) closeLocked(id string) {
	attempt, ok := s.attempts.Get(id)
	if !ok {
		return
	}
	s.attempts.Delete(id)
	attempt.Close()
}

// Categories lists the categories a quiz may be configured with.
func (s *QuizService) Categories(ctx context.Context) ([]domain.Category, error) {
	return s.categories.Categories(ctx)
}

// ActiveAttempts counts the live attempts known to the repository.
func (s *QuizService) ActiveAttempts(ctx context.Context) (int, error) {
	return s.attempts.Count(ctx)
}

// Defaults returns the configuration new attempts start with.
func (s *QuizService) Defaults() domain.QuizConfiguration {
	return s.defaults.Clone()
}
