package constants

import "testing"

func TestManagedDirsAreDistinct(t *testing.T) {
	dirs := []string{ManagedPromptsDir, ManagedAgentsDir, ManagedSkillsDirVSCode, ManagedCommandsDir, ManagedSkillsDirClaude}
	seen := map[string]bool{}
	for _, d := range dirs {
		if seen[d] {
			t.Errorf("managed directory %q declared twice", d)
		}
		seen[d] = true
	}
}

func TestTypedPrimitiveExtensions(t *testing.T) {
	if len(TypedPrimitiveExtensions) != 4 {
		t.Fatalf("expected 4 typed extensions, got %d", len(TypedPrimitiveExtensions))
	}
	for _, ext := range TypedPrimitiveExtensions {
		if ext[0] != '.' {
			t.Errorf("extension %q should start with a dot", ext)
		}
	}
}

func TestCommandFrontmatterKeysPreservesDescription(t *testing.T) {
	found := false
	for _, k := range CommandFrontmatterKeys {
		if k == "description" {
			found = true
		}
	}
	if !found {
		t.Error("description must be a preserved command frontmatter key")
	}
}

func TestSkipDirsIncludesModules(t *testing.T) {
	found := false
	for _, d := range SkipDirs {
		if d == ModulesDirName {
			found = true
		}
	}
	if !found {
		t.Errorf("SkipDirs must include %q", ModulesDirName)
	}
}
