package redis

import (
	"context"
	"math/rand"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"trivia-quiz-service/internal/domain"
)

// CategoryLoader fetches categories from a question source.
type CategoryLoader interface {
	FetchCategories(ctx context.Context) ([]domain.Category, error)
}

// CategoryRepository caches categories in Redis and falls back to a loader on
// cache miss. Categories are stored as: HSET trivia:categories {id} {name}
type CategoryRepository struct {
	client *redis.Client
	loader CategoryLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewCategoryRepository(client *redis.Client, loader CategoryLoader, ttl time.Duration) *CategoryRepository {
	return &CategoryRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

const categoriesKey = "trivia:categories"

func (r *CategoryRepository) Categories(ctx context.Context) ([]domain.Category, error) {
	cached, err := r.client.HGetAll(ctx, categoriesKey).Result()
	if err == nil && len(cached) > 0 {
		return buildCategoriesFromCache(cached), nil
	}

	result, err, _ := r.sf.Do(categoriesKey, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		cached, err := r.client.HGetAll(ctx, categoriesKey).Result()
		if err == nil && len(cached) > 0 {
			return buildCategoriesFromCache(cached), nil
		}

		categories, err := r.loader.FetchCategories(ctx)
		if err != nil {
			return nil, err
		}

		pipe := r.client.Pipeline()
		for _, c := range categories {
			pipe.HSet(ctx, categoriesKey, strconv.Itoa(c.ID), c.Name)
		}
		if ttl := r.ttlWithJitter(); ttl > 0 && len(categories) > 0 {
			pipe.Expire(ctx, categoriesKey, ttl)
		}
		_, _ = pipe.Exec(ctx)

		return categories, nil
	})
	if err != nil {
		return nil, err
	}
	return append([]domain.Category(nil), result.([]domain.Category)...), nil
}

func buildCategoriesFromCache(cached map[string]string) []domain.Category {
	categories := make([]domain.Category, 0, len(cached))
	for idStr, name := range cached {
		id, err := strconv.Atoi(idStr)
		if err != nil {
			continue
		}
		categories = append(categories, domain.Category{ID: id, Name: name})
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].ID < categories[j].ID })
	return categories
}

func (r *CategoryRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
