package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"trivia-quiz-service/internal/domain"
)

// QuestionBank serves questions and categories stored in Postgres.
type QuestionBank struct {
	pool *pgxpool.Pool
}

func NewQuestionBank(pool *pgxpool.Pool) *QuestionBank {
	return &QuestionBank{pool: pool}
}

func (b *QuestionBank) FetchCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := b.pool.Query(ctx, `SELECT id, name FROM trivia_categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// FetchQuestions picks params.Amount random questions matching the filters.
// When fewer match it returns ErrNoQuestions rather than a partial set.
func (b *QuestionBank) FetchQuestions(ctx context.Context, params domain.QuestionParams) ([]domain.RawQuestion, error) {
	var (
		where []string
		args  []any
	)
	if params.Category != nil {
		args = append(args, *params.Category)
		where = append(where, "category_id = $"+strconv.Itoa(len(args)))
	}
	if params.Difficulty != nil {
		args = append(args, string(*params.Difficulty))
		where = append(where, "difficulty = $"+strconv.Itoa(len(args)))
	}
	if params.Type != nil {
		args = append(args, string(*params.Type))
		where = append(where, "type = $"+strconv.Itoa(len(args)))
	}
	args = append(args, params.Amount)

	query := `SELECT category, type, difficulty, question, correct_answer, incorrect_answers FROM trivia_questions`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY random() LIMIT $" + strconv.Itoa(len(args))

	rows, err := b.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	questions := make([]domain.RawQuestion, 0, params.Amount)
	for rows.Next() {
		var q domain.RawQuestion
		if err := rows.Scan(&q.Category, &q.Type, &q.Difficulty, &q.Question, &q.CorrectAnswer, &q.IncorrectAnswers); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	if len(questions) < params.Amount || len(questions) == 0 {
		return nil, fmt.Errorf("%w: %d of %d matched", domain.ErrNoQuestions, len(questions), params.Amount)
	}
	return questions, nil
}

// Import upserts categories and inserts questions, skipping ones already in
// the bank. Questions are linked to a category by name. It returns the number
// of new questions.
func (b *QuestionBank) Import(ctx context.Context, categories []domain.Category, questions []domain.RawQuestion) (int, error) {
	tx, err := b.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	byName := make(map[string]int, len(categories))
	for _, c := range categories {
		byName[c.Name] = c.ID
		if _, err := tx.Exec(ctx,
			`INSERT INTO trivia_categories (id, name) VALUES ($1, $2)
			 ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name`, c.ID, c.Name); err != nil {
			return 0, fmt.Errorf("upsert category %d: %w", c.ID, err)
		}
	}

	batch := &pgx.Batch{}
	for _, q := range questions {
		var categoryID *int
		if id, ok := byName[q.Category]; ok {
			categoryID = &id
		}
		batch.Queue(
			`INSERT INTO trivia_questions (category_id, category, type, difficulty, question, correct_answer, incorrect_answers)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 ON CONFLICT (question, correct_answer) DO NOTHING`,
			categoryID, q.Category, q.Type, q.Difficulty, q.Question, q.CorrectAnswer, q.IncorrectAnswers,
		)
	}
	results := tx.SendBatch(ctx, batch)
	inserted := 0
	for range questions {
		tag, err := results.Exec()
		if err != nil {
			_ = results.Close()
			return 0, fmt.Errorf("insert question: %w", err)
		}
		inserted += int(tag.RowsAffected())
	}
	if err := results.Close(); err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return inserted, nil
}
