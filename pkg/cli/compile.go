package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/apm-tool/apm/pkg/console"
	"github.com/apm-tool/apm/pkg/constants"
	"github.com/apm-tool/apm/pkg/placement"
	"github.com/apm-tool/apm/pkg/primitive"
	"github.com/apm-tool/apm/pkg/resolve"
	"github.com/apm-tool/apm/pkg/result"
	apmsync "github.com/apm-tool/apm/pkg/sync"
)

// CompileOptions configures `apm compile`.
type CompileOptions struct {
	Target          string // explicit --target override
	Strategy        string // explicit --strategy override: distributed|single
	SingleAgents    bool   // --single-agents shorthand for Strategy == "single"
	DryRun          bool
	NoConstitution  bool
	NoLinks         bool
	Clean           bool
	MinInstructions int // 0 means "use manifest value or default"
}

// CompileReport summarizes a completed compile pass.
type CompileReport struct {
	Written       []string
	Removed       []string
	CoverageGlobs []string
}

// defaultMinInstructionsPerFile is used when neither --min-instructions-per-file
// nor apm.yml's compilation.min_instructions_per_file is set.
const defaultMinInstructionsPerFile = 2

// RunCompile resolves the project's frozen dependency graph, discovers every
// primitive, and runs the distributed placement compiler, writing AGENTS.md
// files across the project tree per spec.md §4.4.
func RunCompile(rootDir string, opts CompileOptions) result.Result[CompileReport] {
	env, err := newEnvironment()
	if err != nil {
		return result.Fail[CompileReport](fmt.Sprintf("reading environment: %v", err))
	}

	loaded := loadManifest(rootDir)
	m := loaded.Value
	if !loaded.Success {
		m = bootstrapManifest(rootDir, nil)
	}

	lockRes := loadLockFile(rootDir)
	if !lockRes.Success {
		return result.Fail[CompileReport](fmt.Sprintf("reading lockfile: %v", lockRes.Errors))
	}

	graphRes := resolve.ResolveFrozen(env, m, lockRes.Value, modulesDirFor(rootDir))
	if !graphRes.Success {
		return result.Fail[CompileReport](fmt.Sprintf("rebuilding dependency graph: %v", graphRes.Errors))
	}
	graph := graphRes.Value

	target := apmsync.DetectTarget(opts.Target, m.Target, rootDir)

	spinner := console.NewSpinner("Compiling instructions...")
	spinner.Start()

	_, collection, err := runIntegrationSync(rootDir, target, graph)
	if err != nil {
		spinner.Stop()
		return result.Fail[CompileReport](err.Error())
	}

	strategy := opts.Strategy
	if strategy == "" {
		strategy = m.Compilation.Strategy
	}
	if opts.SingleAgents {
		strategy = "single"
	}

	resolveLinks := !opts.NoLinks
	if m.Compilation.ResolveLinks != nil {
		resolveLinks = *m.Compilation.ResolveLinks && resolveLinks
	}

	minPerFile := opts.MinInstructions
	if minPerFile == 0 {
		minPerFile = m.Compilation.MinInstructionsPerFile
	}
	if minPerFile == 0 {
		minPerFile = defaultMinInstructionsPerFile
	}

	exclude := m.Compilation.Exclude
	tree, err := placement.ScanDirectoryTree(rootDir, exclude)
	if err != nil {
		spinner.Stop()
		return result.Fail[CompileReport](fmt.Sprintf("scanning project tree: %v", err))
	}

	allPrims := collection.All()
	instructions := placement.BuildInstructions(allPrims)
	for i, instr := range instructions {
		instructions[i].Body = placement.ResolveLinks(instr.Body, collection.ByKind(primitive.KindContext), resolveLinks)
	}

	var placed *placement.PlacementResult
	if strategy == "single" {
		placed = &placement.PlacementResult{Files: map[string][]placement.Instruction{".": instructions}}
	} else {
		placed = placement.Compile(tree, instructions, minPerFile)
	}

	constitution, hasConstitution := "", false
	if !opts.NoConstitution {
		constitution, hasConstitution = placement.FindConstitution(rootDir)
	}

	report := CompileReport{CoverageGlobs: placed.CoveragePatterns}

	if opts.Clean {
		removed, err := removeGeneratedAgentsFiles(tree)
		if err != nil {
			spinner.Stop()
			return result.Fail[CompileReport](fmt.Sprintf("cleaning generated files: %v", err))
		}
		report.Removed = removed
	}

	for dir, dirInstructions := range placed.Files {
		content := placement.RenderAgentsFile(dir, dirInstructions)
		if hasConstitution && strategy == "single" {
			content = placement.InjectConstitution(content, constitution)
		}

		path := filepath.Join(rootDir, dir, constants.AgentsFileName)
		if opts.DryRun {
			report.Written = append(report.Written, path)
			continue
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			spinner.Stop()
			return result.Fail[CompileReport](fmt.Sprintf("creating %s: %v", filepath.Dir(path), err))
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			spinner.Stop()
			return result.Fail[CompileReport](fmt.Sprintf("writing %s: %v", path, err))
		}
		report.Written = append(report.Written, path)
	}

	spinner.StopWithMessage(console.FormatSuccessMessage(fmt.Sprintf("Compiled %d instruction file(s)", len(report.Written))))
	return result.Ok(report)
}

// removeGeneratedAgentsFiles deletes every AGENTS.md under tree that carries
// apm's build-ID trailer, leaving hand-authored AGENTS.md files untouched.
func removeGeneratedAgentsFiles(tree *placement.DirectoryTree) ([]string, error) {
	var removed []string
	for _, dir := range tree.Dirs {
		path := filepath.Join(tree.Root, dir, constants.AgentsFileName)
		content, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if placement.ExtractBuildID(string(content)) == "" {
			continue
		}
		if err := os.Remove(path); err != nil {
			return removed, err
		}
		removed = append(removed, path)
	}
	return removed, nil
}
