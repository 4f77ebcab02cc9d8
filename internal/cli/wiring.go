package cli

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/config"
	"trivia-quiz-service/internal/infra/memory"
	"trivia-quiz-service/internal/infra/opentdb"
	"trivia-quiz-service/internal/infra/postgres"
	infraredis "trivia-quiz-service/internal/infra/redis"
	"trivia-quiz-service/internal/session"
)

// questionSource is what both OpenTriviaDB and the Postgres bank provide.
type questionSource interface {
	app.QuestionSource
	app.CategorySource
}

// deps holds the shared infrastructure of every command.
type deps struct {
	cfg    config.Config
	pool   *pgxpool.Pool
	redis  *redis.Client
	source questionSource
}

func openDeps(ctx context.Context, cfg config.Config) (*deps, error) {
	d := &deps{cfg: cfg}

	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		d.pool = pool
	}
	if cfg.Redis.Addr != "" {
		d.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	switch cfg.Trivia.Source {
	case "", config.SourceOpenTDB:
		d.source = newTriviaClient(cfg)
	case config.SourcePostgres:
		if d.pool == nil {
			d.close()
			return nil, fmt.Errorf("trivia source %q needs postgres.url", cfg.Trivia.Source)
		}
		d.source = postgres.NewQuestionBank(d.pool)
	default:
		d.close()
		return nil, fmt.Errorf("unknown trivia source %q", cfg.Trivia.Source)
	}
	return d, nil
}

func newTriviaClient(cfg config.Config) *opentdb.Client {
	httpClient := &http.Client{Timeout: config.Duration(cfg.Trivia.Timeout, 10*time.Second)}
	return opentdb.NewClient(httpClient, cfg.Trivia.BaseURL)
}

func (d *deps) attemptOptions() app.AttemptOptions {
	budget := d.cfg.Quiz.QuestionTime
	if budget <= 0 {
		budget = session.DefaultTiming().Budget
	}
	return app.AttemptOptions{
		Timing: session.Timing{
			Budget:        budget,
			Tick:          config.Duration(d.cfg.Quiz.Tick, time.Second),
			FeedbackDelay: config.Duration(d.cfg.Quiz.FeedbackDelay, session.DefaultTiming().FeedbackDelay),
		},
	}
}

func (d *deps) quizService() *app.QuizService {
	categoriesTTL := config.Duration(d.cfg.Trivia.CategoriesTTL, 10*time.Minute)
	attemptTTL := config.Duration(d.cfg.Redis.TTL, 30*time.Minute)

	var categories app.CategoryRepository
	var attempts app.AttemptRepository
	if d.redis != nil {
		categories = infraredis.NewCategoryRepository(d.redis, d.source, categoriesTTL)
		attempts = infraredis.NewAttemptStore(d.redis, attemptTTL)
	} else {
		categories = memory.NewCategoryRepository(d.source, categoriesTTL)
		attempts = memory.NewAttemptStore()
	}
	return app.NewQuizService(attempts, categories, d.source, d.cfg.Quiz.Defaults, d.attemptOptions())
}

func (d *deps) close() {
	if d.pool != nil {
		d.pool.Close()
	}
	if d.redis != nil {
		_ = d.redis.Close()
	}
}
