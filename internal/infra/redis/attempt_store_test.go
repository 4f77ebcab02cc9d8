package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"
	"trivia-quiz-service/internal/infra/memory"
)

func TestAttemptStoreSetsAndClearsKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewAttemptStore(newClient(mr), time.Minute)
	source := memory.NewStaticQuestionSource(sampleCategories(), nil)
	attempt, _ := store.GetOrCreate("a-1", func(id string) *app.Attempt {
		return app.NewAttempt(id, domain.DefaultConfiguration(), source, app.AttemptOptions{})
	})
	defer attempt.Close()

	if !mr.Exists("quiz:attempt:a-1") {
		t.Fatalf("expected redis key to be set")
	}
	// Another instance's attempt counts too.
	mr.Set("quiz:attempt:remote", "1")
	if n, err := store.Count(context.Background()); err != nil || n != 2 {
		t.Fatalf("expected 2 live attempts, got %d (%v)", n, err)
	}

	store.Delete("a-1")
	if mr.Exists("quiz:attempt:a-1") {
		t.Fatalf("expected redis key to be removed")
	}
	if _, ok := store.Get("a-1"); ok {
		t.Fatalf("expected attempt removed locally")
	}
}
