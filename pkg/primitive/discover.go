package primitive

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/apm-tool/apm/pkg/constants"
)

// localGlobPatterns maps each typed-extension kind to the doublestar
// pattern that finds it anywhere under a local project root.
var localGlobPatterns = map[Kind]string{
	KindInstruction: "**/*.instructions.md",
	KindChatmode:    "**/*.chatmode.md",
}

// contextPatterns are the two typed extensions that both classify as
// KindContext, per spec.md §4.4's discovery glob list.
var contextPatterns = []string{"**/*.context.md", "**/*.memory.md"}

const (
	localAgentSuffix = "**/*.agent.md"
	skillFileName    = "SKILL.md"
)

// flatDependencyDirs are the flat (non-recursive) sub-trees under an
// installed package's .apm/ directory that DiscoverDependencySource scans,
// per spec.md §4.4's dependency discovery rule.
var flatDependencyDirs = []struct {
	dir    string
	suffix string
	kind   Kind
}{
	{"agents", ".agent.md", KindChatmode},
	{"chatmodes", ".chatmode.md", KindChatmode},
	{"instructions", ".instructions.md", KindInstruction},
	{"context", ".context.md", KindContext},
	{"memory", ".memory.md", KindContext},
}

// DiscoverSource walks root (a local project directory) recursively and
// returns every primitive it contains, tagged with sourceTag/depth.
// Discovery never descends into constants.SkipDirs, matching the teacher's
// skip-list convention for workflow discovery. A SKILL.md is recognized
// only at root itself, per spec.md §4.4's "a top-level SKILL.md" rule —
// unlike the other four kinds, it is never searched for recursively.
func DiscoverSource(root, sourceTag string, depth int) ([]Primitive, error) {
	fsys := os.DirFS(root)
	var found []Primitive

	collect := func(pattern string, kind Kind) error {
		matches, err := doublestar.Glob(fsys, pattern)
		if err != nil {
			return err
		}
		for _, rel := range matches {
			if inSkippedDir(rel) {
				continue
			}
			if p, ok, err := loadPrimitive(root, rel, kind, sourceTag, depth); err != nil {
				return err
			} else if ok {
				found = append(found, p)
			}
		}
		return nil
	}

	for kind, pattern := range localGlobPatterns {
		if err := collect(pattern, kind); err != nil {
			return nil, err
		}
	}
	if err := collect(localAgentSuffix, KindChatmode); err != nil {
		return nil, err
	}
	for _, pattern := range contextPatterns {
		if err := collect(pattern, KindContext); err != nil {
			return nil, err
		}
	}

	if p, ok, err := loadTopLevelSkill(root, sourceTag, depth); err != nil {
		return nil, err
	} else if ok {
		found = append(found, p)
	}

	return found, nil
}

// DiscoverDependencySource scans an installed package's .apm/ directory for
// its flat agents/, chatmodes/, instructions/, context/, memory/ sub-trees,
// plus an optional package-root SKILL.md, per spec.md §4.4's dependency
// discovery rule. Unlike DiscoverSource it never recurses into the
// package's checkout, so test fixtures or vendored examples elsewhere in
// the tree can't be mistaken for shipped primitives.
func DiscoverDependencySource(root, sourceTag string, depth int) ([]Primitive, error) {
	var found []Primitive

	for _, spec := range flatDependencyDirs {
		dir := filepath.Join(root, ".apm", spec.dir)
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), spec.suffix) {
				continue
			}
			rel, err := filepath.Rel(root, filepath.Join(dir, entry.Name()))
			if err != nil {
				return nil, err
			}
			if p, ok, err := loadPrimitive(root, rel, spec.kind, sourceTag, depth); err != nil {
				return nil, err
			} else if ok {
				found = append(found, p)
			}
		}
	}

	if p, ok, err := loadTopLevelSkill(root, sourceTag, depth); err != nil {
		return nil, err
	} else if ok {
		found = append(found, p)
	}

	return found, nil
}

// loadTopLevelSkill loads root/SKILL.md if present, shared by both
// discovery modes since neither searches for it recursively.
func loadTopLevelSkill(root, sourceTag string, depth int) (Primitive, bool, error) {
	if _, err := os.Stat(filepath.Join(root, skillFileName)); err != nil {
		return Primitive{}, false, nil
	}
	return loadPrimitive(root, skillFileName, KindSkill, sourceTag, depth)
}

func loadPrimitive(root, rel string, kind Kind, sourceTag string, depth int) (Primitive, bool, error) {
	abs := filepath.Join(root, rel)
	content, err := os.ReadFile(abs)
	if err != nil {
		primitiveLog.Printf("skipping unreadable file %s: %v", abs, err)
		return Primitive{}, false, nil
	}
	p, err := parseFile(abs, string(content), kind, sourceTag, depth)
	if err != nil {
		primitiveLog.Printf("skipping unparsable file %s: %v", abs, err)
		return Primitive{}, false, nil
	}
	return p, true, nil
}

func inSkippedDir(relPath string) bool {
	parts := strings.Split(relPath, "/")
	for _, part := range parts {
		for _, skip := range constants.SkipDirs {
			if part == skip || part == filepath.Base(skip) {
				return true
			}
		}
	}
	return false
}
