package primitive

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDiscoverSourceFindsAllKinds(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "docs", "style.instructions.md"), "---\nname: style\n---\nbody\n")
	writeFile(t, filepath.Join(root, "agents", "reviewer.chatmode.md"), "---\nname: reviewer\n---\nbody\n")
	writeFile(t, filepath.Join(root, "agents", "planner.agent.md"), "---\nname: planner\n---\nbody\n")
	writeFile(t, filepath.Join(root, "SKILL.md"), "---\nname: my-skill\ndescription: d\n---\nbody\n")
	writeFile(t, filepath.Join(root, "node_modules", "ignored", "ignored.instructions.md"), "---\nname: ignored\n---\nbody\n")

	found, err := DiscoverSource(root, ".", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(found) != 4 {
		t.Fatalf("expected 4 primitives, got %d: %+v", len(found), found)
	}

	byName := map[string]Primitive{}
	for _, p := range found {
		byName[p.Name] = p
	}
	for _, want := range []string{"style", "reviewer", "planner", "my-skill"} {
		if _, ok := byName[want]; !ok {
			t.Errorf("expected to find primitive %q, got %+v", want, byName)
		}
	}
}

func TestDiscoverSourceIgnoresNestedSkillFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "skills", "my-skill", "SKILL.md"), "---\nname: nested\n---\nbody\n")

	found, err := DiscoverSource(root, ".", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(found) != 0 {
		t.Fatalf("expected a non-top-level SKILL.md to be ignored, got %+v", found)
	}
}

func TestDiscoverDependencySourceOnlyScansFlatAPMSubtrees(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".apm", "instructions", "style.instructions.md"), "---\nname: style\n---\nbody\n")
	writeFile(t, filepath.Join(root, ".apm", "agents", "planner.agent.md"), "---\nname: planner\n---\nbody\n")
	writeFile(t, filepath.Join(root, "SKILL.md"), "---\nname: pkg-skill\n---\nbody\n")
	writeFile(t, filepath.Join(root, "testdata", "fixtures", "leaked.instructions.md"), "---\nname: leaked\n---\nbody\n")
	writeFile(t, filepath.Join(root, ".apm", "instructions", "nested", "deep.instructions.md"), "---\nname: deep\n---\nbody\n")

	found, err := DiscoverDependencySource(root, "github.com/owner/repo/", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(found) != 3 {
		t.Fatalf("expected 3 primitives (style, planner, pkg-skill), got %d: %+v", len(found), found)
	}

	byName := map[string]Primitive{}
	for _, p := range found {
		byName[p.Name] = p
	}
	for _, want := range []string{"style", "planner", "pkg-skill"} {
		if _, ok := byName[want]; !ok {
			t.Errorf("expected to find primitive %q, got %+v", want, byName)
		}
	}
	if _, ok := byName["leaked"]; ok {
		t.Error("expected a file outside .apm/'s flat sub-trees not to be discovered")
	}
	if _, ok := byName["deep"]; ok {
		t.Error("expected a nested file inside .apm/instructions/ not to be discovered, since dependency scanning is flat")
	}
}

func TestDiscoverSourceSkipsNodeModulesAndGit(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".git", "x.instructions.md"), "---\nname: x\n---\nbody\n")
	writeFile(t, filepath.Join(root, "node_modules", "y.instructions.md"), "---\nname: y\n---\nbody\n")

	found, err := DiscoverSource(root, ".", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(found) != 0 {
		t.Fatalf("expected no primitives discovered, got %+v", found)
	}
}
