package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestRootRegistersQuizCommands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"start", "migrate", "seed", "play"} {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Fatalf("command %s not registered: %v", name, err)
		}
	}
}

func TestMigrateRejectsStatusWithRollback(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"migrate", "--status", "--rollback"})

	err := root.Execute()
	if err == nil || !strings.Contains(err.Error(), "mutually exclusive") {
		t.Fatalf("expected flag conflict error, got %v", err)
	}
}

func TestEnvOr(t *testing.T) {
	t.Setenv("TRIVIA_TEST_PORT", "9090")
	if got := envOr("TRIVIA_TEST_PORT", "8080"); got != "9090" {
		t.Fatalf("expected env value, got %q", got)
	}
	if got := envOr("TRIVIA_TEST_UNSET", "8080"); got != "8080" {
		t.Fatalf("expected fallback, got %q", got)
	}
}
