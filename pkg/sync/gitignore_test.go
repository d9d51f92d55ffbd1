package sync

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEnsureGitignoreCreatesFileWithManagedPatterns(t *testing.T) {
	root := t.TempDir()
	if err := ensureGitignore(root, TargetAll); err != nil {
		t.Fatalf("ensureGitignore: %v", err)
	}
	content, err := os.ReadFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		t.Fatalf("reading .gitignore: %v", err)
	}
	if !strings.Contains(string(content), ".github/prompts") {
		t.Errorf("expected managed prompts pattern, got %q", string(content))
	}
}

func TestEnsureGitignoreNeverRemovesExistingEntries(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, ".gitignore")
	if err := os.WriteFile(path, []byte("node_modules/\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := ensureGitignore(root, TargetAll); err != nil {
		t.Fatalf("ensureGitignore: %v", err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(content), "node_modules/") {
		t.Errorf("expected pre-existing entry to survive, got %q", string(content))
	}
}

func TestEnsureGitignoreIsIdempotent(t *testing.T) {
	root := t.TempDir()
	if err := ensureGitignore(root, TargetAll); err != nil {
		t.Fatal(err)
	}
	first, _ := os.ReadFile(filepath.Join(root, ".gitignore"))
	if err := ensureGitignore(root, TargetAll); err != nil {
		t.Fatal(err)
	}
	second, _ := os.ReadFile(filepath.Join(root, ".gitignore"))
	if string(first) != string(second) {
		t.Errorf("expected idempotent .gitignore content, got:\n%q\nvs\n%q", first, second)
	}
}
