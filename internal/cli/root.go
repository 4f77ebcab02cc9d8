package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	port       string
	configPath string
)

// Execute runs the trivia-quiz CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trivia-quiz",
		Short: "Timed multiple-choice trivia quizzes",
		Long: "trivia-quiz runs timed multiple-choice quiz attempts: 30 seconds per question,\n" +
			"questions from Open Trivia DB or a local Postgres question bank.\n\n" +
			"Serve attempts to browsers over WebSocket with start, play one in the\n" +
			"terminal with play, and fill the question bank with migrate and seed.",
		Example: "  trivia-quiz start --port 8080\n" +
			"  trivia-quiz play --amount 5 --difficulty easy\n" +
			"  trivia-quiz seed --amount 50 --category 9",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&port, "port", envOr("PORT", "8080"), "HTTP port for the quiz server (env PORT)")
	cmd.PersistentFlags().StringVar(&configPath, "config", envOr("CONFIG_PATH", "config/config.yaml"), "YAML config with trivia, quiz and storage sections (env CONFIG_PATH)")
	cmd.AddCommand(NewStartCmd(&configPath, &port))
	cmd.AddCommand(NewMigrateCmd(&configPath))
	cmd.AddCommand(NewSeedCmd(&configPath))
	cmd.AddCommand(NewPlayCmd(&configPath))
	return cmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
