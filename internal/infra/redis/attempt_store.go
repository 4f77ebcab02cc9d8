package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"trivia-quiz-service/internal/app"
)

// AttemptStore is a Redis-aware implementation of app.AttemptRepository.
// Attempts run in process, so the local map owns them; Redis holds a
// liveness marker per attempt so Count sees every instance.
type AttemptStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	attempts map[string]*app.Attempt
}

func NewAttemptStore(client *redis.Client, ttl time.Duration) *AttemptStore {
	return &AttemptStore{
		client:   client,
		ttl:      ttl,
		attempts: make(map[string]*app.Attempt),
	}
}

func (s *AttemptStore) GetOrCreate(id string, create func(id string) *app.Attempt) (*app.Attempt, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if attempt, ok := s.attempts[id]; ok {
		s.touch(id)
		return attempt, false
	}
	attempt := create(id)
	s.attempts[id] = attempt
	s.touch(id)
	return attempt, true
}

func (s *AttemptStore) Get(id string) (*app.Attempt, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	attempt, ok := s.attempts[id]
	if ok {
		s.touch(id)
	}
	return attempt, ok
}

func (s *AttemptStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.attempts, id)
	_ = s.client.Del(context.Background(), s.key(id)).Err()
}

// Count returns the number of live attempts across all instances.
func (s *AttemptStore) Count(ctx context.Context) (int, error) {
	count := 0
	iter := s.client.Scan(ctx, 0, attemptKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		count++
	}
	if err := iter.Err(); err != nil {
		return 0, err
	}
	return count, nil
}

// best-effort liveness marker
func (s *AttemptStore) touch(id string) {
	_ = s.client.Set(context.Background(), s.key(id), "1", s.ttl).Err()
}

const attemptKeyPrefix = "quiz:attempt:"

func (s *AttemptStore) key(id string) string {
	return attemptKeyPrefix + id
}
