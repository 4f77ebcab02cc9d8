package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/config"
	"trivia-quiz-service/internal/domain"
	"trivia-quiz-service/internal/session"
)

// NewPlayCmd runs one quiz attempt in the terminal.
func NewPlayCmd(configPath *string) *cobra.Command {
	var (
		amount     int
		category   int
		difficulty string
		qtype      string
	)
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a timed quiz in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			d, err := openDeps(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer d.close()

			quizCfg := cfg.Quiz.Defaults.Clone()
			if cmd.Flags().Changed("amount") {
				quizCfg.QuestionCount = amount
			}
			if category > 0 {
				quizCfg.CategoryID = domain.Ptr(category)
			}
			if difficulty != "" {
				quizCfg.Difficulty = domain.Ptr(domain.Difficulty(difficulty))
			}
			if qtype != "" {
				quizCfg.QuestionType = domain.Ptr(domain.QuestionType(qtype))
			}

			attempt := app.NewAttempt(uuid.NewString(), quizCfg, d.source, d.attemptOptions())
			defer attempt.Close()
			return Play(cmd.Context(), attempt, os.Stdin, cmd.OutOrStdout())
		},
	}
	cmd.Flags().IntVar(&amount, "amount", domain.DefaultQuestionCount, "number of questions (1-50)")
	cmd.Flags().IntVar(&category, "category", 0, "category id (0 for any)")
	cmd.Flags().StringVar(&difficulty, "difficulty", "", "easy, medium or hard")
	cmd.Flags().StringVar(&qtype, "type", "", "multiple or boolean")
	return cmd
}

// Play starts attempt and drives it from line input until it completes, the
// input ends or ctx is canceled. Answers are option letters.
func Play(ctx context.Context, attempt *app.Attempt, in io.Reader, out io.Writer) error {
	if err := attempt.Start(ctx); err != nil {
		return err
	}

	states, cancel := attempt.Subscribe()
	defer cancel()

	stop := make(chan struct{})
	defer close(stop)
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-stop:
				return
			}
		}
	}()

	t := &terminal{out: out, attempt: attempt, reported: make(map[string]bool)}
	if t.render(attempt.Snapshot()) {
		return nil
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case snap, ok := <-states:
			if !ok {
				return domain.ErrAttemptClosed
			}
			if done := t.render(snap); done {
				return nil
			}
		case line, ok := <-lines:
			if !ok {
				// Input ended: show whatever is already decided and stop.
				t.render(attempt.Snapshot())
				return nil
			}
			t.answer(line)
			if done := t.render(attempt.Snapshot()); done {
				return nil
			}
		}
	}
}

type terminal struct {
	out      io.Writer
	attempt  *app.Attempt
	revision uint64
	shown    string
	reported map[string]bool
	finished bool
}

// render prints feedback for newly answered questions, then the current
// question or the results. Snapshots older than the last one rendered are
// skipped. It reports whether the attempt is over.
func (t *terminal) render(snap session.Snapshot) bool {
	if t.finished {
		return true
	}
	if t.revision != 0 && snap.Revision <= t.revision {
		return false
	}
	t.revision = snap.Revision
	st := snap.State
	for _, q := range st.Questions {
		a, ok := st.Answer(q.ID)
		if !ok || t.reported[q.ID] {
			continue
		}
		t.reported[q.ID] = true
		switch {
		case a.ChosenOption == "":
			fmt.Fprintf(t.out, "Time's up! Correct answer was %s\n", q.CorrectAnswer)
		case a.IsCorrect:
			fmt.Fprintln(t.out, "Correct!")
		default:
			fmt.Fprintf(t.out, "Wrong. Correct answer was %s\n", q.CorrectAnswer)
		}
	}

	if st.IsCompleted {
		t.finished = true
		t.results(st)
		return true
	}
	if !st.InProgress() {
		return false
	}
	q, ok := st.CurrentQuestion()
	if !ok || q.ID == t.shown {
		return false
	}
	t.shown = q.ID
	fmt.Fprintf(t.out, "\nQ%d/%d [%s, %s]: %s\n\n", session.Progress(st), len(st.Questions), q.Category, q.Difficulty, q.Prompt)
	for i, option := range q.PresentedOptions {
		fmt.Fprintf(t.out, "%c. %s\n", 'A'+i, option)
	}
	fmt.Fprintf(t.out, "\n%d seconds to answer.\n", t.attempt.Countdown().Remaining)
	return false
}

func (t *terminal) answer(line string) {
	st := t.attempt.State()
	q, ok := st.CurrentQuestion()
	if !ok || !st.InProgress() || q.ID != t.shown {
		fmt.Fprintln(t.out, "Too late: the question has moved on.")
		return
	}
	input := strings.ToUpper(strings.TrimSpace(line))
	if len(input) != 1 || input[0] < 'A' || int(input[0]-'A') >= len(q.PresentedOptions) {
		fmt.Fprintf(t.out, "Invalid input. Please enter a letter A-%c.\n", 'A'+len(q.PresentedOptions)-1)
		return
	}
	if err := t.attempt.Select(q.PresentedOptions[input[0]-'A']); err != nil {
		fmt.Fprintf(t.out, "Too late: %v\n", err)
		return
	}
	if err := t.attempt.Confirm(); err != nil {
		fmt.Fprintf(t.out, "Too late: %v\n", err)
	}
}

func (t *terminal) results(st domain.SessionState) {
	pct := session.Percentage(st)
	fmt.Fprintf(t.out, "\nFinal score: %d/%d (%d%%) %s\n\n", session.Score(st), len(st.Questions), pct, session.Verdict(pct))
	for i, item := range session.Review(st) {
		fmt.Fprintf(t.out, "%d. [%s] %s -> %s\n", i+1, item.Outcome, item.Prompt, item.CorrectAnswer)
	}
}
