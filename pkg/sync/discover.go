package sync

import (
	"os"
	"path/filepath"
)

// packageFile is one raw source file discovered under an installed
// package's .apm/ tree, ready to be copied into a managed directory.
type packageFile struct {
	Name       string // basename, e.g. "review.prompt.md"
	AbsPath    string
	DeclaredBy string // canonical key of the owning package
}

// discoverPackageFiles lists the flat .apm/<subdir>/*<suffix> files under
// packageDir, mirroring the flat-subtree convention spec.md §4.4 documents
// for agents/chatmodes/instructions/context/memory and this module extends
// to prompts and commands, since C5's own purpose statement ("mirror each
// installed package's prompts, agents, commands, and skills") requires a
// source location for the two kinds §4.4's discovery list didn't enumerate.
func discoverPackageFiles(packageDir, declaredBy, subdir, suffix string) ([]packageFile, error) {
	dir := filepath.Join(packageDir, ".apm", subdir)
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var files []packageFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if len(name) <= len(suffix) || name[len(name)-len(suffix):] != suffix {
			continue
		}
		files = append(files, packageFile{
			Name:       name,
			AbsPath:    filepath.Join(dir, name),
			DeclaredBy: declaredBy,
		})
	}
	return files, nil
}

// firstWins dedups a sequence of packageFile batches (one per package, in
// declaration order) by Name, keeping only the first occurrence, matching
// the resolver's own first-wins conflict rule (spec.md §4.3) applied here to
// a name rather than a canonical key.
func firstWins(batches [][]packageFile) []packageFile {
	seen := make(map[string]bool)
	var out []packageFile
	for _, batch := range batches {
		for _, f := range batch {
			if seen[f.Name] {
				continue
			}
			seen[f.Name] = true
			out = append(out, f)
		}
	}
	return out
}
