package manifest

import "testing"

func TestValidateStructureAcceptsWellFormedManifest(t *testing.T) {
	content := []byte(`
name: my-pkg
version: "1.0.0"
target: all
type: instructions
dependencies:
  apm:
    - owner/repo#v1
`)
	if err := ValidateStructure(content); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
}

func TestValidateStructureRejectsMissingName(t *testing.T) {
	content := []byte("version: \"1.0.0\"\n")
	if err := ValidateStructure(content); err == nil {
		t.Fatal("expected validation error for missing name")
	}
}

func TestValidateStructureRejectsBadTarget(t *testing.T) {
	content := []byte("name: my-pkg\nversion: \"1.0.0\"\ntarget: windows\n")
	if err := ValidateStructure(content); err == nil {
		t.Fatal("expected validation error for invalid target enum")
	}
}

func TestValidateStructureRejectsUnknownDependencyKey(t *testing.T) {
	content := []byte("name: my-pkg\nversion: \"1.0.0\"\ndependencies:\n  npm:\n    - left-pad\n")
	if err := ValidateStructure(content); err == nil {
		t.Fatal("expected validation error for unknown dependencies sub-key")
	}
}
