package integration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"
	"trivia-quiz-service/internal/infra/postgres"
	pgmigrations "trivia-quiz-service/internal/infra/postgres/migrations"
	infraredis "trivia-quiz-service/internal/infra/redis"
	"trivia-quiz-service/internal/session"
)

func TestQuizFromQuestionBankEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	migrateBank(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	bank := postgres.NewQuestionBank(pool)
	inserted, err := bank.Import(ctx, sampleCategories(), sampleQuestions())
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if inserted != 3 {
		t.Fatalf("expected 3 new questions, got %d", inserted)
	}
	// Importing again skips duplicates.
	if inserted, err := bank.Import(ctx, sampleCategories(), sampleQuestions()); err != nil || inserted != 0 {
		t.Fatalf("expected idempotent import, got %d (%v)", inserted, err)
	}

	questions, err := bank.FetchQuestions(ctx, domain.QuestionParams{Amount: 2, Category: domain.Ptr(9)})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(questions))
	}
	if _, err := bank.FetchQuestions(ctx, domain.QuestionParams{Amount: 3, Category: domain.Ptr(9)}); !errors.Is(err, domain.ErrNoQuestions) {
		t.Fatalf("expected all-or-nothing failure, got %v", err)
	}
	boolean, err := bank.FetchQuestions(ctx, domain.QuestionParams{Amount: 1, Type: domain.Ptr(domain.QuestionTypeBoolean)})
	if err != nil || boolean[0].CorrectAnswer != "True" || len(boolean[0].IncorrectAnswers) != 1 {
		t.Fatalf("unexpected boolean question %+v (%v)", boolean, err)
	}

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	service := app.NewQuizService(
		infraredis.NewAttemptStore(redisClient, 5*time.Minute),
		infraredis.NewCategoryRepository(redisClient, bank, 5*time.Minute),
		bank,
		domain.QuizConfiguration{QuestionCount: 3},
		app.AttemptOptions{Timing: session.Timing{Budget: 30, Tick: time.Hour}},
	)

	categories, err := service.Categories(ctx)
	if err != nil || len(categories) != 2 {
		t.Fatalf("unexpected categories %+v (%v)", categories, err)
	}

	attempt, _ := service.Open("")
	defer service.Close(attempt.ID())
	if n, err := service.ActiveAttempts(ctx); err != nil || n != 1 {
		t.Fatalf("expected one live attempt, got %d (%v)", n, err)
	}
	if err := attempt.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	for i := 0; i < 3; i++ {
		q, _ := attempt.State().CurrentQuestion()
		if err := attempt.Select(q.CorrectAnswer); err != nil {
			t.Fatalf("select: %v", err)
		}
		if err := attempt.Confirm(); err != nil {
			t.Fatalf("confirm: %v", err)
		}
	}
	if !attempt.State().IsCompleted || attempt.Percentage() != 100 {
		t.Fatalf("expected perfect completed attempt, got %+v", attempt.State())
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func migrateBank(t *testing.T, ctx context.Context, dsn string) {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

func sampleCategories() []domain.Category {
	return []domain.Category{
		{ID: 9, Name: "General Knowledge"},
		{ID: 21, Name: "Sports"},
	}
}

func sampleQuestions() []domain.RawQuestion {
	return []domain.RawQuestion{
		{Category: "General Knowledge", Type: "multiple", Difficulty: "easy", Question: "What is 2 + 2?", CorrectAnswer: "4", IncorrectAnswers: []string{"3", "5", "22"}},
		{Category: "General Knowledge", Type: "multiple", Difficulty: "medium", Question: "Which planet is known as the &quot;Red Planet&quot;?", CorrectAnswer: "Mars", IncorrectAnswers: []string{"Venus", "Jupiter", "Saturn"}},
		{Category: "Sports", Type: "boolean", Difficulty: "easy", Question: "A marathon is 42.195 km.", CorrectAnswer: "True", IncorrectAnswers: []string{"False"}},
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
