package placement

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	constitutionBeginMarker = "<!-- SPEC-KIT CONSTITUTION: BEGIN -->"
	constitutionEndMarker   = "<!-- SPEC-KIT CONSTITUTION: END -->"
)

// conventionalConstitutionPaths are checked in order, relative to the
// project root.
var conventionalConstitutionPaths = []string{
	filepath.Join(".apm", "constitution.md"),
	filepath.Join(".specify", "memory", "constitution.md"),
}

// FindConstitution returns the content of the project's constitution.md,
// if one exists at a conventional path.
func FindConstitution(root string) (content string, found bool) {
	for _, rel := range conventionalConstitutionPaths {
		data, err := os.ReadFile(filepath.Join(root, rel))
		if err == nil {
			return string(data), true
		}
	}
	return "", false
}

// InjectConstitution splices constitutionContent into agentsContent
// between the SPEC-KIT CONSTITUTION markers, replacing any existing block
// only if its hash differs from the new content's hash, preserving
// idempotency across recompiles (single-file mode only, per spec.md §4.4).
func InjectConstitution(agentsContent, constitutionContent string) string {
	newHash := buildIDFor(constitutionContent)
	block := constitutionBeginMarker + "\n" +
		"<!-- hash: " + newHash + " -->\n" +
		constitutionContent + "\n" +
		constitutionEndMarker

	begin := strings.Index(agentsContent, constitutionBeginMarker)
	end := strings.Index(agentsContent, constitutionEndMarker)
	if begin < 0 || end < 0 || end < begin {
		return strings.TrimRight(agentsContent, "\n") + "\n\n" + block + "\n"
	}

	existingBlock := agentsContent[begin : end+len(constitutionEndMarker)]
	if strings.Contains(existingBlock, "<!-- hash: "+newHash+" -->") {
		return agentsContent
	}

	return agentsContent[:begin] + block + agentsContent[end+len(constitutionEndMarker):]
}
