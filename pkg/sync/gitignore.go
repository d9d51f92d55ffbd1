package sync

import (
	"os"
	"path/filepath"
	"strings"
)

// gitignoreHeader marks the block of patterns this package maintains inside
// a project's .gitignore, so re-runs can detect what's already present
// without disturbing anything the user wrote by hand.
const gitignoreHeader = "# apm: managed integration files"

// ensureGitignore appends any managed-directory glob not already present in
// root's .gitignore, creating the file if absent. It never removes a line,
// mirroring the teacher's ensure-on-first-use .gitignore convention
// (pkg/cli/init.go's ensureLogsGitignore call site) generalized from one
// fixed path to the full set of managed globs for the active target.
func ensureGitignore(root string, target Target) error {
	path := filepath.Join(root, ".gitignore")
	existing, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	lines := strings.Split(string(existing), "\n")
	present := make(map[string]bool, len(lines))
	for _, l := range lines {
		present[strings.TrimSpace(l)] = true
	}

	var toAdd []string
	if !present[gitignoreHeader] {
		toAdd = append(toAdd, gitignoreHeader)
	}
	for _, pattern := range gitignorePatterns(target) {
		if !present[pattern] {
			toAdd = append(toAdd, pattern)
		}
	}
	if len(toAdd) == 0 {
		return nil
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	if len(existing) > 0 && !strings.HasSuffix(string(existing), "\n") {
		if _, err := f.WriteString("\n"); err != nil {
			return err
		}
	}
	_, err = f.WriteString(strings.Join(toAdd, "\n") + "\n")
	return err
}

func gitignorePatterns(target Target) []string {
	var patterns []string
	for _, g := range managedGlobsFor(target) {
		patterns = append(patterns, g.Dir+"/"+g.Pattern)
	}
	return patterns
}
