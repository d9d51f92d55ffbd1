package sync

import (
	"strings"
	"testing"
)

func TestRekeyCommandDropsUnlistedFields(t *testing.T) {
	input := "---\nallowed-tools: [\"Bash\"]\ndescription: test command\nsecret: drop-me\n---\nBody text.\n"
	out, err := rekeyCommand(input)
	if err != nil {
		t.Fatalf("rekeyCommand: %v", err)
	}
	if strings.Contains(out, "secret") {
		t.Errorf("expected unlisted field to be dropped, got %q", out)
	}
	if !strings.Contains(out, "allowed-tools") || !strings.Contains(out, "description") {
		t.Errorf("expected preserved fields to survive, got %q", out)
	}
	if !strings.Contains(out, "Body text.") {
		t.Errorf("expected body to be preserved verbatim, got %q", out)
	}
}

func TestRekeyCommandLeavesFrontmatterlessFileUnchanged(t *testing.T) {
	input := "Just a body, no frontmatter.\n"
	out, err := rekeyCommand(input)
	if err != nil {
		t.Fatalf("rekeyCommand: %v", err)
	}
	if out != input {
		t.Errorf("expected unchanged content, got %q", out)
	}
}
