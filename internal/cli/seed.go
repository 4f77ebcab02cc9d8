package cli

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"trivia-quiz-service/internal/config"
	"trivia-quiz-service/internal/domain"
	"trivia-quiz-service/internal/infra/postgres"
)

// NewSeedCmd copies questions from OpenTriviaDB into the Postgres bank.
func NewSeedCmd(configPath *string) *cobra.Command {
	var (
		amount   int
		category int
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Import OpenTriviaDB questions into the Postgres question bank",
		RunE: func(cmd *cobra.Command, args []string) error {
			if amount < domain.MinQuestionCount || amount > domain.MaxQuestionCount {
				return fmt.Errorf("amount must be between %d and %d", domain.MinQuestionCount, domain.MaxQuestionCount)
			}
			ctx := cmd.Context()
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if err := migrateQuestionBank(ctx, cfg); err != nil {
				return err
			}

			// The bank is the target here, so the remote API is always the source.
			cfg.Trivia.Source = config.SourceOpenTDB
			d, err := openDeps(ctx, cfg)
			if err != nil {
				return err
			}
			defer d.close()

			categories, err := d.source.FetchCategories(ctx)
			if err != nil {
				return fmt.Errorf("fetch categories: %w", err)
			}
			params := domain.QuestionParams{Amount: amount}
			if category > 0 {
				params.Category = &category
			}
			questions, err := d.source.FetchQuestions(ctx, params)
			if err != nil {
				return fmt.Errorf("fetch questions: %w", err)
			}

			inserted, err := postgres.NewQuestionBank(d.pool).Import(ctx, categories, questions)
			if err != nil {
				return err
			}
			log.Printf("seeded %d new questions (%d fetched, %d categories)", inserted, len(questions), len(categories))
			return nil
		},
	}
	cmd.Flags().IntVar(&amount, "amount", domain.MaxQuestionCount, "questions to fetch")
	cmd.Flags().IntVar(&category, "category", 0, "category id (0 for any)")
	return cmd
}
