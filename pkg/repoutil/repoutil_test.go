package repoutil

import "testing"

func TestSplitRepoPath(t *testing.T) {
	parts, err := SplitRepoPath("owner/repo", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parts[0] != "owner" || parts[1] != "repo" {
		t.Errorf("got %v", parts)
	}

	if _, err := SplitRepoPath("owner/repo/extra", 2); err == nil {
		t.Error("expected error for wrong arity")
	}

	if _, err := SplitRepoPath("owner//repo", 3); err == nil {
		t.Error("expected error for empty component")
	}
}

func TestStripGitSuffix(t *testing.T) {
	if got := StripGitSuffix("owner/repo.git"); got != "owner/repo" {
		t.Errorf("got %q", got)
	}
	if got := StripGitSuffix("owner/repo"); got != "owner/repo" {
		t.Errorf("got %q", got)
	}
}

func TestStripAzureGitSegment(t *testing.T) {
	got := StripAzureGitSegment("org/project/_git/repo")
	if got != "org/project/repo" {
		t.Errorf("got %q", got)
	}
}

func TestSanitizeForFilename(t *testing.T) {
	if got := SanitizeForFilename("owner/repo"); got != "owner-repo" {
		t.Errorf("got %q", got)
	}
	if got := SanitizeForFilename(""); got != "package" {
		t.Errorf("got %q", got)
	}
}
