package sync

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/apm-tool/apm/pkg/primitive"
)

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestSyncWritesPromptWithSuffix(t *testing.T) {
	root := t.TempDir()
	pkgDir := filepath.Join(root, "apm_modules", "owner", "repo")
	writeTestFile(t, filepath.Join(pkgDir, ".apm", "prompts", "review.prompt.md"), "Do a review.")

	report, err := Sync(root, TargetVSCode, []Package{{Key: "github.com/owner/repo/", Dir: pkgDir}}, nil)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	want := filepath.Join(root, ".github", "prompts", "review-apm.prompt.md")
	if _, err := os.Stat(want); err != nil {
		t.Errorf("expected %s to exist: %v", want, err)
	}
	found := false
	for _, w := range report.Written {
		if w == want {
			found = true
		}
	}
	if !found {
		t.Errorf("expected report to list %s, got %v", want, report.Written)
	}
}

func TestSyncNukePhaseRemovesOnlyManagedFiles(t *testing.T) {
	root := t.TempDir()
	managed := filepath.Join(root, ".github", "prompts", "stale-apm.prompt.md")
	user := filepath.Join(root, ".github", "prompts", "custom.prompt.md")
	writeTestFile(t, managed, "stale")
	writeTestFile(t, user, "mine")

	if _, err := Sync(root, TargetVSCode, nil, nil); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	if _, err := os.Stat(managed); !os.IsNotExist(err) {
		t.Errorf("expected managed file to be removed, got err=%v", err)
	}
	if _, err := os.Stat(user); err != nil {
		t.Errorf("expected user file to survive untouched, got err=%v", err)
	}
}

func TestSyncFirstPackageWinsOnNameCollision(t *testing.T) {
	root := t.TempDir()
	first := filepath.Join(root, "apm_modules", "owner", "a")
	second := filepath.Join(root, "apm_modules", "owner", "b")
	writeTestFile(t, filepath.Join(first, ".apm", "prompts", "review.prompt.md"), "from a")
	writeTestFile(t, filepath.Join(second, ".apm", "prompts", "review.prompt.md"), "from b")

	if _, err := Sync(root, TargetVSCode, []Package{
		{Key: "github.com/owner/a/", Dir: first},
		{Key: "github.com/owner/b/", Dir: second},
	}, nil); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	content, err := os.ReadFile(filepath.Join(root, ".github", "prompts", "review-apm.prompt.md"))
	if err != nil {
		t.Fatalf("reading synced prompt: %v", err)
	}
	if string(content) != "from a" {
		t.Errorf("expected first package to win, got %q", string(content))
	}
}

func TestSyncSkipsLocalSourcedPrimitives(t *testing.T) {
	root := t.TempDir()
	localChatmode := filepath.Join(root, "reviewer.chatmode.md")
	writeTestFile(t, localChatmode, "---\nname: reviewer\n---\nBody")

	collection := primitive.NewPrimitiveCollection([]primitive.Primitive{
		{Kind: primitive.KindChatmode, Name: "reviewer", FilePath: localChatmode, SourceTag: "."},
	})

	if _, err := Sync(root, TargetVSCode, nil, collection); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	entries, err := os.ReadDir(filepath.Join(root, ".github", "agents"))
	if err != nil && !os.IsNotExist(err) {
		t.Fatalf("reading agents dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no synced agents for a local-sourced chatmode, got %v", entries)
	}
}

func TestSyncCopiesDependencySourcedSkillDirectory(t *testing.T) {
	root := t.TempDir()
	skillDir := filepath.Join(root, "apm_modules", "owner", "repo", "my-skill")
	writeTestFile(t, filepath.Join(skillDir, "SKILL.md"), "---\nname: my-skill\ndescription: d\n---\nBody")
	writeTestFile(t, filepath.Join(skillDir, "helper.py"), "print(1)")

	collection := primitive.NewPrimitiveCollection([]primitive.Primitive{
		{Kind: primitive.KindSkill, Name: "my-skill", FilePath: filepath.Join(skillDir, "SKILL.md"), SourceTag: "github.com/owner/repo/"},
	})

	if _, err := Sync(root, TargetVSCode, nil, collection); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	dest := filepath.Join(root, ".github", "skills", "my-skill-apm", "SKILL.md")
	if _, err := os.Stat(dest); err != nil {
		t.Errorf("expected skill SKILL.md to be copied, got err=%v", err)
	}
	helper := filepath.Join(root, ".github", "skills", "my-skill-apm", "helper.py")
	if _, err := os.Stat(helper); err != nil {
		t.Errorf("expected skill support file to be copied, got err=%v", err)
	}
}
