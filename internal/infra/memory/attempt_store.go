package memory

import (
	"context"
	"sync"

	"trivia-quiz-service/internal/app"
)

// AttemptStore is an in-memory implementation of app.AttemptRepository.
type AttemptStore struct {
	mu       sync.RWMutex
	attempts map[string]*app.Attempt
}

func NewAttemptStore() *AttemptStore {
	return &AttemptStore{
		attempts: make(map[string]*app.Attempt),
	}
}

func (s *AttemptStore) GetOrCreate(id string, create func(id string) *app.Attempt) (*app.Attempt, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if attempt, ok := s.attempts[id]; ok {
		return attempt, false
	}
	attempt := create(id)
	s.attempts[id] = attempt
	return attempt, true
}

func (s *AttemptStore) Get(id string) (*app.Attempt, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	attempt, ok := s.attempts[id]
	return attempt, ok
}

func (s *AttemptStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.attempts, id)
}

func (s *AttemptStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.attempts), nil
}
