package manifest

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewLockFileOrdersByDepthThenRepoURL(t *testing.T) {
	deps := []LockedDependency{
		{RepoURL: "github.com/b/repo", Depth: 1, CommitSHA: "b1"},
		{RepoURL: "github.com/a/repo", Depth: 0, CommitSHA: "a0"},
		{RepoURL: "github.com/a/repo", Depth: 1, CommitSHA: "a1"},
	}
	lf := NewLockFile(deps, "1.0.0", "2026-07-31T00:00:00Z")
	if len(lf.Dependencies) != 3 {
		t.Fatalf("got %d deps", len(lf.Dependencies))
	}
	if lf.Dependencies[0].CommitSHA != "a0" {
		t.Errorf("expected depth-0 entry first, got %+v", lf.Dependencies[0])
	}
	if lf.Dependencies[1].RepoURL != "github.com/a/repo" || lf.Dependencies[2].RepoURL != "github.com/b/repo" {
		t.Errorf("expected depth-1 entries ordered by repo_url, got %+v", lf.Dependencies[1:])
	}
}

func TestLockFileRoundTrip(t *testing.T) {
	lf := NewLockFile([]LockedDependency{
		{RepoURL: "github.com/owner/repo", Ref: "main", CommitSHA: "deadbeef", Depth: 0},
	}, "1.0.0", "2026-07-31T00:00:00Z")

	data, err := lf.Marshal()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	r := ParseLockFile(data)
	if !r.Success {
		t.Fatalf("parse failed: %v", r.Errors)
	}
	if r.Value.Dependencies[0].CommitSHA != "deadbeef" {
		t.Errorf("got %+v", r.Value.Dependencies[0])
	}
}

func TestParseLockFileWarnsOnVersionMismatch(t *testing.T) {
	r := ParseLockFile([]byte("lockfile_version: \"99\"\ngenerated_at: \"x\"\napm_version: \"1.0.0\"\ndependencies: []\n"))
	if !r.Success {
		t.Fatalf("expected success, got errors: %v", r.Errors)
	}
	if len(r.Warnings) == 0 {
		t.Error("expected a warning for version mismatch")
	}
}

func TestWriteAtomicWritesReadableFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "apm.lock")
	lf := NewLockFile([]LockedDependency{
		{RepoURL: "github.com/owner/repo", Ref: "main", CommitSHA: "abc123", Depth: 0},
	}, "1.0.0", "2026-07-31T00:00:00Z")

	if err := lf.WriteAtomic(path); err != nil {
		t.Fatalf("WriteAtomic: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading written lockfile: %v", err)
	}
	r := ParseLockFile(data)
	if !r.Success {
		t.Fatalf("parse written lockfile failed: %v", r.Errors)
	}
	if r.Value.Dependencies[0].CommitSHA != "abc123" {
		t.Errorf("got %+v", r.Value.Dependencies[0])
	}
}
