package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"trivia-quiz-service/internal/domain"
	"trivia-quiz-service/internal/infra/memory"
)

func TestCategoryRepositoryCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)

	loader := &countingLoader{CategoryLoader: memory.NewStaticQuestionSource(sampleCategories(), nil)}
	repo := NewCategoryRepository(client, loader, time.Minute)

	got, err := repo.Categories(context.Background())
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(got))
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if name := mr.HGet("trivia:categories", "21"); name != "Sports" {
		t.Fatalf("expected cached hash entry, got %q", name)
	}

	// Second call should hit cache, loader not incremented.
	got, _ = repo.Categories(context.Background())
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	if got[0].ID != 9 || got[1].Name != "Sports" {
		t.Fatalf("expected categories ordered by id, got %+v", got)
	}

	mr.FastForward(2 * time.Minute)
	_, _ = repo.Categories(context.Background())
	if loader.calls != 2 {
		t.Fatalf("expected reload after ttl, loader calls=%d", loader.calls)
	}
}

type countingLoader struct {
	CategoryLoader
	calls int
}

func (l *countingLoader) FetchCategories(ctx context.Context) ([]domain.Category, error) {
	l.calls++
	return l.CategoryLoader.FetchCategories(ctx)
}

func sampleCategories() []domain.Category {
	return []domain.Category{
		{ID: 9, Name: "General Knowledge"},
		{ID: 21, Name: "Sports"},
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
