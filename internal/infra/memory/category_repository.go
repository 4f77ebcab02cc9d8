package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"trivia-quiz-service/internal/domain"
)

// CategoryLoader fetches categories from a question source.
type CategoryLoader interface {
	FetchCategories(ctx context.Context) ([]domain.Category, error)
}

// CategoryRepository caches the category list with TTL to avoid repeated
// source calls.
type CategoryRepository struct {
	loader CategoryLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu        sync.RWMutex
	cached    []domain.Category
	expiresAt time.Time
}

func NewCategoryRepository(loader CategoryLoader, ttl time.Duration) *CategoryRepository {
	return &CategoryRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *CategoryRepository) Categories(ctx context.Context) ([]domain.Category, error) {
	if cached, ok := r.fresh(r.clock()); ok {
		return cached, nil
	}

	result, err, _ := r.sf.Do("categories", func() (interface{}, error) {
		now := r.clock()
		if cached, ok := r.fresh(now); ok {
			return cached, nil
		}

		categories, err := r.loader.FetchCategories(ctx)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.cached = copyCategories(categories)
		r.expiresAt = now.Add(r.ttlWithJitter())
		r.mu.Unlock()
		return copyCategories(categories), nil
	})
	if err != nil {
		return nil, err
	}
	return copyCategories(result.([]domain.Category)), nil
}

func (r *CategoryRepository) fresh(now time.Time) ([]domain.Category, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.cached == nil || !r.expiresAt.After(now) {
		return nil, false
	}
	return copyCategories(r.cached), true
}

func (r *CategoryRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

func copyCategories(in []domain.Category) []domain.Category {
	return append([]domain.Category(nil), in...)
}
