package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"trivia-quiz-service/internal/domain"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadParsesYAMLAndEnv(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "9000"
redis:
  addr: localhost:6379
trivia:
  source: postgres
quiz:
  questionTime: 20
  feedbackDelay: 2s
  defaults:
    questionCount: 5
    difficulty: hard
    type: boolean
`)
	t.Setenv("REDIS_ADDR", "redis:6380")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9000" || cfg.Redis.Addr != "redis:6380" || cfg.Trivia.Source != SourcePostgres {
		t.Fatalf("unexpected config %+v", cfg)
	}
	d := cfg.Quiz.Defaults
	if d.QuestionCount != 5 || d.Difficulty == nil || *d.Difficulty != domain.DifficultyHard || d.QuestionType == nil || *d.QuestionType != domain.QuestionTypeBoolean {
		t.Fatalf("unexpected defaults %+v", d)
	}
	if d.CategoryID != nil {
		t.Fatalf("category should stay unset")
	}
	if got := Duration(cfg.Quiz.FeedbackDelay, time.Second); got != 2*time.Second {
		t.Fatalf("expected 2s, got %v", got)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Quiz.Defaults.QuestionCount != domain.DefaultQuestionCount {
		t.Fatalf("expected default question count, got %d", cfg.Quiz.Defaults.QuestionCount)
	}
}

func TestLoadRejectsInvalidDefaults(t *testing.T) {
	path := writeConfig(t, "quiz:\n  defaults:\n    questionCount: 80\n")
	if _, err := Load(path); err == nil {
		t.Fatalf("expected invalid defaults to fail")
	}
}

func TestDuration(t *testing.T) {
	if got := Duration("", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback, got %v", got)
	}
	if got := Duration("bogus", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback for bad input, got %v", got)
	}
	if got := Duration("1500ms", time.Minute); got != 1500*time.Millisecond {
		t.Fatalf("expected 1.5s, got %v", got)
	}
}
