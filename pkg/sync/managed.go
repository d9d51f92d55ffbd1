package sync

import (
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/apm-tool/apm/pkg/constants"
)

// managedGlob names one directory/pattern pair the synchronizer owns
// entirely: every entry under Dir matching Pattern was written by a prior
// sync pass and is fair game for the nuke phase; everything else under Dir
// belongs to the user.
type managedGlob struct {
	Dir     string
	Pattern string
}

// managedGlobsFor lists the (directory, glob) pairs a sync pass for target
// owns, per spec.md §4.5's managed-directories list.
func managedGlobsFor(target Target) []managedGlob {
	var globs []managedGlob
	if target.IncludesVSCode() {
		globs = append(globs,
			managedGlob{constants.ManagedPromptsDir, "*" + constants.ManagedInfix + ".prompt.md"},
			managedGlob{constants.ManagedAgentsDir, "*" + constants.ManagedInfix + ".agent.md"},
			managedGlob{constants.ManagedAgentsDir, "*" + constants.ManagedInfix + ".chatmode.md"},
			managedGlob{constants.ManagedSkillsDirVSCode, "*" + constants.ManagedInfix},
		)
	}
	if target.IncludesClaude() {
		globs = append(globs,
			managedGlob{constants.ManagedCommandsDir, "*" + constants.ManagedInfix + ".md"},
			managedGlob{constants.ManagedSkillsDirClaude, "*" + constants.ManagedInfix},
		)
	}
	return globs
}

// nuke deletes every file (or, for skill directories, every directory)
// beneath root matching one of target's managed globs. User files, lacking
// the -apm infix, never match and are left untouched.
func nuke(root string, target Target) error {
	for _, g := range managedGlobsFor(target) {
		dir := filepath.Join(root, filepath.FromSlash(g.Dir))
		entries, err := os.ReadDir(dir)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return err
		}
		for _, entry := range entries {
			matched, err := doublestar.Match(g.Pattern, entry.Name())
			if err != nil {
				return err
			}
			if !matched {
				continue
			}
			if err := os.RemoveAll(filepath.Join(dir, entry.Name())); err != nil {
				return err
			}
		}
	}
	return nil
}

// suffixed inserts constants.ManagedInfix immediately before the typed
// extension of name (e.g. "review.prompt.md" -> "review-apm.prompt.md"). A
// name with no recognized typed extension gets the infix before its last
// extension, falling back to a plain suffix if it has none.
func suffixed(name string) string {
	for _, ext := range constants.TypedPrimitiveExtensions {
		if len(name) > len(ext) && name[len(name)-len(ext):] == ext {
			return name[:len(name)-len(ext)] + constants.ManagedInfix + ext
		}
	}
	ext := filepath.Ext(name)
	if ext == "" {
		return name + constants.ManagedInfix
	}
	return name[:len(name)-len(ext)] + constants.ManagedInfix + ext
}
