package placement

import (
	"sort"
)

// PlacementResult is the output of a single compile pass: which directory
// AGENTS.md files to write and what each must contain.
type PlacementResult struct {
	Files             map[string][]Instruction // dir -> instructions placed there
	CoveragePatterns  []string                 // applyTo patterns that required a root-level coverage copy
	SourceAttribution map[string]string        // instruction name -> source_tag
}

// Compile runs the full distributed placement algorithm over tree and
// instructions, per spec.md §4.4: three-tier score-driven selection, a
// coverage guarantee, and min_instructions_per_file folding.
func Compile(tree *DirectoryTree, instructions []Instruction, minInstructionsPerFile int) *PlacementResult {
	placements := map[string][]Instruction{}
	attribution := map[string]string{}

	for _, instr := range instructions {
		attribution[instr.Name] = instr.SourceTag
		for _, dir := range selectTargets(tree, instr) {
			placements[dir] = append(placements[dir], instr)
		}
	}

	coverage := applyCoverageGuarantee(tree, instructions, placements)
	foldSmallDirectories(tree, placements, minInstructionsPerFile)

	for dir, list := range placements {
		sort.Slice(list, func(i, j int) bool {
			if list[i].ApplyTo != list[j].ApplyTo {
				return list[i].ApplyTo < list[j].ApplyTo
			}
			return list[i].FilePath < list[j].FilePath
		})
		placements[dir] = list
	}

	return &PlacementResult{
		Files:             placements,
		CoveragePatterns:  coverage,
		SourceAttribution: attribution,
	}
}

// selectTargets runs the three-tier score-driven selection for a single
// instruction, per spec.md §4.4 step 2.
func selectTargets(tree *DirectoryTree, instr Instruction) []string {
	if instr.ApplyTo == "" {
		return nil
	}
	score := distributionScore(tree, instr)

	switch {
	case score <= singlePointMaxScore:
		return []string{lowestCommonAncestor(matchingSet(tree, instr))}
	case score <= selectiveMultiMaxScore:
		maximal := maximalQualifyingDirs(tree, instr)
		if len(maximal) == 0 {
			return []string{lowestCommonAncestor(matchingSet(tree, instr))}
		}
		return maximal
	default:
		return []string{"."}
	}
}

// applyCoverageGuarantee ensures every file matching an instruction's
// applyTo would see that instruction via upward AGENTS.md traversal; any
// instruction that fails this for some file gets a root-level copy added,
// per spec.md §4.4 step 3 ("takes precedence over efficiency").
func applyCoverageGuarantee(tree *DirectoryTree, instructions []Instruction, placements map[string][]Instruction) []string {
	var violatingPatterns []string

	for _, instr := range instructions {
		if instr.ApplyTo == "" {
			continue
		}
		placedDirs := placedDirsFor(placements, instr)
		covered := true

		for _, f := range tree.MatchingFiles(".", instr.ApplyTo) {
			fileDir := dirOf(f)
			if !seenFromAnyAncestor(placedDirs, fileDir) {
				covered = false
				break
			}
		}

		if !covered {
			if !containsDir(placedDirs, ".") {
				placements["."] = append(placements["."], instr)
			}
			violatingPatterns = append(violatingPatterns, instr.ApplyTo)
		}
	}

	return violatingPatterns
}

func placedDirsFor(placements map[string][]Instruction, instr Instruction) []string {
	var dirs []string
	for dir, list := range placements {
		for _, i := range list {
			if i.Name == instr.Name && i.ApplyTo == instr.ApplyTo {
				dirs = append(dirs, dir)
				break
			}
		}
	}
	return dirs
}

func seenFromAnyAncestor(placedDirs []string, fileDir string) bool {
	for _, d := range placedDirs {
		if isUnder(d, fileDir) {
			return true
		}
	}
	return false
}

func containsDir(dirs []string, target string) bool {
	for _, d := range dirs {
		if d == target {
			return true
		}
	}
	return false
}

func dirOf(relFile string) string {
	if idx := lastSlash(relFile); idx >= 0 {
		return relFile[:idx]
	}
	return "."
}

func lastSlash(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '/' {
			return i
		}
	}
	return -1
}

// foldSmallDirectories folds any non-root directory whose instruction
// count falls below the threshold upward into its parent, per spec.md
// §4.4 step 4. The root is exempt. Directories are visited once, deepest
// first, so a parent's count already includes everything folded into it
// from its children when it is checked; folding only adds instructions,
// never removes them, so a single bottom-up pass suffices.
func foldSmallDirectories(tree *DirectoryTree, placements map[string][]Instruction, threshold int) {
	if threshold <= 0 {
		return
	}

	dirsByDepthDesc := append([]string{}, tree.Dirs...)
	sort.Slice(dirsByDepthDesc, func(i, j int) bool {
		return Depth(dirsByDepthDesc[i]) > Depth(dirsByDepthDesc[j])
	})

	for _, dir := range dirsByDepthDesc {
		if dir == "." {
			continue
		}
		list, ok := placements[dir]
		if !ok || len(list) >= threshold {
			continue
		}
		parent := parentOf(dir)
		placements[parent] = append(placements[parent], list...)
		delete(placements, dir)
	}
}

func parentOf(dir string) string {
	idx := lastSlash(dir)
	if idx < 0 {
		return "."
	}
	return dir[:idx]
}
