package placement

import (
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// matchingSet returns the directories that directly contain at least one
// file matching instr.ApplyTo.
func matchingSet(tree *DirectoryTree, instr Instruction) []string {
	var dirs []string
	for _, d := range tree.Dirs {
		if len(filterMatch(tree.DirectFiles(d), instr.ApplyTo)) > 0 {
			dirs = append(dirs, d)
		}
	}
	return dirs
}

func filterMatch(files []string, pattern string) []string {
	var out []string
	for _, f := range files {
		if matched, _ := matchGlob(pattern, f); matched {
			out = append(out, f)
		}
	}
	return out
}

// distributionScore is |matching_set| / |all_candidate_dirs|.
func distributionScore(tree *DirectoryTree, instr Instruction) float64 {
	if len(tree.Dirs) == 0 {
		return 0
	}
	return float64(len(matchingSet(tree, instr))) / float64(len(tree.Dirs))
}

// relevanceScore is the fraction of files recursively under d that match
// instr.ApplyTo.
func relevanceScore(tree *DirectoryTree, dir string, instr Instruction) float64 {
	total := len(tree.Files[dir])
	if total == 0 {
		return 0
	}
	matched := len(tree.MatchingFiles(dir, instr.ApplyTo))
	return float64(matched) / float64(total)
}

// lowestCommonAncestor returns the deepest directory that is an ancestor
// of (or equal to) every directory in dirs. An empty dirs slice yields the
// root.
func lowestCommonAncestor(dirs []string) string {
	if len(dirs) == 0 {
		return "."
	}
	common := splitPath(dirs[0])
	for _, d := range dirs[1:] {
		common = commonPrefix(common, splitPath(d))
	}
	if len(common) == 0 {
		return "."
	}
	return strings.Join(common, "/")
}

func splitPath(dir string) []string {
	if dir == "." {
		return nil
	}
	return strings.Split(dir, "/")
}

func commonPrefix(a, b []string) []string {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var out []string
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			break
		}
		out = append(out, a[i])
	}
	return out
}

// maximalQualifyingDirs returns the directories whose relevance for instr
// is >= SelectiveMultiRelevanceThreshold, with any directory that is a
// descendant of another qualifying directory removed (since its parent's
// AGENTS.md already covers it by upward traversal).
func maximalQualifyingDirs(tree *DirectoryTree, instr Instruction) []string {
	var qualifying []string
	for _, d := range tree.Dirs {
		if relevanceScore(tree, d, instr) >= SelectiveMultiRelevanceThreshold {
			qualifying = append(qualifying, d)
		}
	}
	sort.Strings(qualifying)

	var maximal []string
	for _, d := range qualifying {
		covered := false
		for _, other := range qualifying {
			if other != d && isAncestor(other, d) {
				covered = true
				break
			}
		}
		if !covered {
			maximal = append(maximal, d)
		}
	}
	return maximal
}

// isAncestor reports whether ancestor is a strict ancestor directory of d.
func isAncestor(ancestor, d string) bool {
	if ancestor == d {
		return false
	}
	if ancestor == "." {
		return d != "."
	}
	return strings.HasPrefix(d, ancestor+"/")
}

func matchGlob(pattern, path string) (bool, error) {
	return doublestar.Match(pattern, path)
}

// isUnder reports whether file's directory is dir or a descendant of dir,
// i.e. dir would be seen by file via upward AGENTS.md traversal.
func isUnder(dir, fileDir string) bool {
	if dir == "." {
		return true
	}
	if dir == fileDir {
		return true
	}
	return strings.HasPrefix(fileDir, dir+"/")
}
