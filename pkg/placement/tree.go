// Package placement implements the distributed compiler: turning a set of
// discovered Instruction primitives into one or more AGENTS.md files placed
// across a project tree so that every source file sees exactly the
// instructions whose applyTo glob matches it.
package placement

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/apm-tool/apm/pkg/constants"
	"github.com/apm-tool/apm/pkg/logger"
)

var placementLog = logger.New("placement")

// DirectoryTree is the set of candidate directories under a project root,
// each with the project-relative paths of the files it recursively
// contains. The root itself ("." ) is always a candidate directory.
type DirectoryTree struct {
	Root  string
	Dirs  []string          // project-relative, "." for the root, sorted lexicographically
	Files map[string][]string // dir -> relative file paths under it (recursive)
}

// ScanDirectoryTree walks root, skipping constants.SkipDirs, and returns
// every directory alongside the files it recursively contains. This is the
// "set of directories in the project" input to the placement algorithm.
func ScanDirectoryTree(root string, excludeGlobs []string) (*DirectoryTree, error) {
	allFiles := []string{}

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		if rel == "." {
			return nil
		}
		if d.IsDir() {
			if isSkippedDirName(filepath.Base(rel)) {
				return filepath.SkipDir
			}
			return nil
		}
		if matchesAny(excludeGlobs, rel) {
			return nil
		}
		allFiles = append(allFiles, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}

	tree := &DirectoryTree{Root: root, Files: map[string][]string{}}
	dirSet := map[string]bool{".": true}
	for _, f := range allFiles {
		dir := filepath.ToSlash(filepath.Dir(f))
		for d := dir; ; d = filepath.ToSlash(filepath.Dir(d)) {
			dirSet[d] = true
			if d == "." {
				break
			}
		}
		for d := dir; ; d = filepath.ToSlash(filepath.Dir(d)) {
			tree.Files[d] = append(tree.Files[d], f)
			if d == "." {
				break
			}
		}
	}

	for d := range dirSet {
		tree.Dirs = append(tree.Dirs, d)
	}
	sort.Strings(tree.Dirs)
	return tree, nil
}

func isSkippedDirName(name string) bool {
	for _, skip := range constants.SkipDirs {
		if name == skip || name == filepath.Base(skip) {
			return true
		}
	}
	return false
}

func matchesAny(globs []string, rel string) bool {
	for _, g := range globs {
		if ok, _ := doublestar.Match(g, rel); ok {
			return true
		}
	}
	return false
}

// DirectFiles returns the project-relative files directly inside dir
// (non-recursive).
func (t *DirectoryTree) DirectFiles(dir string) []string {
	var out []string
	for _, f := range t.Files[dir] {
		if filepath.ToSlash(filepath.Dir(f)) == dir {
			out = append(out, f)
		}
	}
	return out
}

// MatchingFiles returns the project-relative files recursively under dir
// that match pattern.
func (t *DirectoryTree) MatchingFiles(dir, pattern string) []string {
	var out []string
	for _, f := range t.Files[dir] {
		if ok, _ := doublestar.Match(pattern, f); ok {
			out = append(out, f)
		}
	}
	return out
}

// Depth returns a directory's distance from the root, used to break ties
// by "lower depth wins" per spec.md §4.4.
func Depth(dir string) int {
	if dir == "." {
		return 0
	}
	return strings.Count(dir, "/") + 1
}
