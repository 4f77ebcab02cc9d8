package cli

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"

	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"trivia-quiz-service/internal/config"
	pgmigrations "trivia-quiz-service/internal/infra/postgres/migrations"
)

// NewMigrateCmd manages the schema of the Postgres question bank.
func NewMigrateCmd(configPath *string) *cobra.Command {
	var status, rollback bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the trivia question bank tables",
		Long: "Applies pending migrations for trivia_categories and trivia_questions.\n" +
			"Use --status to list them or --rollback to undo the last applied group.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if status && rollback {
				return fmt.Errorf("--status and --rollback are mutually exclusive")
			}
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			return withBankMigrator(cmd.Context(), cfg, func(ctx context.Context, m *migrate.Migrator) error {
				switch {
				case status:
					return printBankStatus(ctx, m, cmd.OutOrStdout())
				case rollback:
					return rollbackBank(ctx, m)
				}
				return migrateBank(ctx, m)
			})
		},
	}
	cmd.Flags().BoolVar(&status, "status", false, "list applied and pending question bank migrations")
	cmd.Flags().BoolVar(&rollback, "rollback", false, "roll back the last migration group")
	return cmd
}

// migrateQuestionBank brings the question bank schema up to date.
func migrateQuestionBank(ctx context.Context, cfg config.Config) error {
	return withBankMigrator(ctx, cfg, migrateBank)
}

func withBankMigrator(ctx context.Context, cfg config.Config, fn func(context.Context, *migrate.Migrator) error) error {
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("question bank: postgres url not configured")
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.URL)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		return fmt.Errorf("question bank: init migrations: %w", err)
	}
	return fn(ctx, migrator)
}

func migrateBank(ctx context.Context, m *migrate.Migrator) error {
	group, err := m.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("question bank: migrate: %w", err)
	}
	if group.IsZero() {
		log.Printf("question bank is up to date")
		return nil
	}
	log.Printf("question bank migrated to %s", group)
	return nil
}

func rollbackBank(ctx context.Context, m *migrate.Migrator) error {
	group, err := m.Rollback(ctx)
	if err != nil {
		return fmt.Errorf("question bank: rollback: %w", err)
	}
	if group.IsZero() {
		log.Printf("question bank: nothing to roll back")
		return nil
	}
	log.Printf("question bank rolled back %s", group)
	return nil
}

func printBankStatus(ctx context.Context, m *migrate.Migrator, out io.Writer) error {
	ms, err := m.MigrationsWithStatus(ctx)
	if err != nil {
		return fmt.Errorf("question bank: status: %w", err)
	}
	for _, mig := range ms {
		state := "pending"
		if mig.GroupID > 0 {
			state = fmt.Sprintf("applied in group %d", mig.GroupID)
		}
		fmt.Fprintf(out, "%s\t%s\n", mig.Name, state)
	}
	return nil
}
