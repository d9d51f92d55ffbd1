// Package sync implements the Integration Synchronizer (C5): the
// nuke-and-regenerate protocol that mirrors each installed package's
// prompts, agents, commands, and skills into the .github/ and .claude/
// managed sub-trees, under names that can never collide with user-authored
// files. Grounded on the teacher's pkg/cli/packages.go
// (copyIncludeDependenciesFromPackageWithForce, its FileTracker pattern) and
// pkg/cli/download_workflow.go's copy-with-tracking logic, generalized from
// copying a single workflow file to a whole-tree nuke-and-regenerate over
// several managed sub-trees.
package sync

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/apm-tool/apm/pkg/constants"
	"github.com/apm-tool/apm/pkg/logger"
	"github.com/apm-tool/apm/pkg/primitive"
	"github.com/apm-tool/apm/pkg/resolve"
)

var syncLog = logger.New("sync")

// Package is the minimal view of a resolved dependency the synchronizer
// needs: its canonical key, declaration order, and checkout location.
type Package struct {
	Key string
	Dir string
}

// PackagesFromGraph projects a resolved DependencyGraph into the
// declaration-ordered Package list Sync consumes, keeping pkg/sync
// decoupled from pkg/resolve's node internals.
func PackagesFromGraph(graph *resolve.DependencyGraph) []Package {
	nodes := graph.Nodes()
	packages := make([]Package, 0, len(nodes))
	for _, n := range nodes {
		packages = append(packages, Package{Key: n.Ref.CanonicalKey(), Dir: n.LocalDir})
	}
	return packages
}

// Report summarizes one sync pass for CLI/verbose output.
type Report struct {
	Written []string
	Removed bool // not set by Sync, so always false; the nuke phase does not report what it removed
}

// Sync runs the full nuke-and-regenerate protocol at root for target,
// mirroring packages (in declaration order) and the already
// conflict-resolved collection's winning chatmode/skill primitives.
func Sync(root string, target Target, packages []Package, collection *primitive.PrimitiveCollection) (Report, error) {
	tracker := NewFileTracker()

	if err := nuke(root, target); err != nil {
		return Report{}, fmt.Errorf("nuking managed directories: %w", err)
	}

	if err := syncPrompts(root, target, packages, tracker); err != nil {
		return Report{}, err
	}
	if err := syncCommands(root, target, packages, tracker); err != nil {
		return Report{}, err
	}
	if err := syncChatmodes(root, target, collection, tracker); err != nil {
		return Report{}, err
	}
	if err := syncSkills(root, target, collection, tracker); err != nil {
		return Report{}, err
	}

	if len(tracker.GetAllFiles()) > 0 {
		if err := ensureGitignore(root, target); err != nil {
			syncLog.Printf("failed to update .gitignore: %v", err)
		}
	}

	return Report{Written: tracker.GetAllFiles()}, nil
}

func syncPrompts(root string, target Target, packages []Package, tracker *FileTracker) error {
	if !target.IncludesVSCode() {
		return nil
	}
	batches := make([][]packageFile, 0, len(packages))
	for _, p := range packages {
		files, err := discoverPackageFiles(p.Dir, p.Key, "prompts", ".prompt.md")
		if err != nil {
			return fmt.Errorf("discovering prompts in %s: %w", p.Key, err)
		}
		batches = append(batches, files)
	}
	for _, f := range firstWins(batches) {
		dest := filepath.Join(root, filepath.FromSlash(constants.ManagedPromptsDir), suffixed(f.Name))
		if err := copyFile(f.AbsPath, dest); err != nil {
			return fmt.Errorf("syncing prompt %s: %w", f.Name, err)
		}
		tracker.TrackCreated(dest)
	}
	return nil
}

func syncCommands(root string, target Target, packages []Package, tracker *FileTracker) error {
	if !target.IncludesClaude() {
		return nil
	}
	batches := make([][]packageFile, 0, len(packages))
	for _, p := range packages {
		files, err := discoverPackageFiles(p.Dir, p.Key, "commands", ".md")
		if err != nil {
			return fmt.Errorf("discovering commands in %s: %w", p.Key, err)
		}
		batches = append(batches, files)
	}
	for _, f := range firstWins(batches) {
		content, err := os.ReadFile(f.AbsPath)
		if err != nil {
			return fmt.Errorf("reading command %s: %w", f.Name, err)
		}
		rekeyed, err := rekeyCommand(string(content))
		if err != nil {
			return fmt.Errorf("re-keying command %s: %w", f.Name, err)
		}
		dest := filepath.Join(root, filepath.FromSlash(constants.ManagedCommandsDir), suffixed(f.Name))
		if err := writeFile(dest, rekeyed); err != nil {
			return fmt.Errorf("syncing command %s: %w", f.Name, err)
		}
		tracker.TrackCreated(dest)
	}
	return nil
}

func syncChatmodes(root string, target Target, collection *primitive.PrimitiveCollection, tracker *FileTracker) error {
	if collection == nil || !target.IncludesVSCode() {
		return nil
	}
	for _, p := range collection.ByKind(primitive.KindChatmode) {
		if isLocalSource(p) {
			continue
		}
		name := suffixed(filepath.Base(p.FilePath))
		dest := filepath.Join(root, filepath.FromSlash(constants.ManagedAgentsDir), name)
		if err := copyFile(p.FilePath, dest); err != nil {
			return fmt.Errorf("syncing agent %s: %w", p.Name, err)
		}
		tracker.TrackCreated(dest)
	}
	return nil
}

func syncSkills(root string, target Target, collection *primitive.PrimitiveCollection, tracker *FileTracker) error {
	if collection == nil {
		return nil
	}
	for _, p := range collection.ByKind(primitive.KindSkill) {
		if isLocalSource(p) {
			continue
		}
		skillDir := filepath.Dir(p.FilePath)
		dirName := filepath.Base(skillDir) + constants.ManagedInfix

		if target.IncludesVSCode() {
			dest := filepath.Join(root, filepath.FromSlash(constants.ManagedSkillsDirVSCode), dirName)
			if err := copyDir(skillDir, dest, tracker); err != nil {
				return fmt.Errorf("syncing skill %s to vscode: %w", p.Name, err)
			}
		}
		if target.IncludesClaude() {
			dest := filepath.Join(root, filepath.FromSlash(constants.ManagedSkillsDirClaude), dirName)
			if err := copyDir(skillDir, dest, tracker); err != nil {
				return fmt.Errorf("syncing skill %s to claude: %w", p.Name, err)
			}
		}
	}
	return nil
}

func isLocalSource(p primitive.Primitive) bool {
	return p.SourceTag == "."
}

func copyFile(src, dest string) error {
	content, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return writeFile(dest, string(content))
}

func writeFile(dest, content string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dest, []byte(content), 0o644)
}

func copyDir(src, dest string, tracker *FileTracker) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if err := writeFile(target, string(content)); err != nil {
			return err
		}
		tracker.TrackCreated(target)
		return nil
	})
}
