package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/goccy/go-yaml"

	"github.com/apm-tool/apm/pkg/console"
	"github.com/apm-tool/apm/pkg/constants"
	"github.com/apm-tool/apm/pkg/manifest"
	"github.com/apm-tool/apm/pkg/resolve"
	"github.com/apm-tool/apm/pkg/result"
	"github.com/apm-tool/apm/pkg/sliceutil"
)

// DepsListEntry is one row of `apm deps list`.
type DepsListEntry struct {
	CanonicalKey string
	Ref          string
	CommitSHA    string
	Depth        int
	DeclaredBy   string
}

// RunDepsList rebuilds the frozen dependency graph and reports every
// resolved package, per spec.md §4.3's inspection operations.
func RunDepsList(rootDir string) result.Result[[]DepsListEntry] {
	graph, lockErrRes := frozenGraph(rootDir)
	if lockErrRes != nil {
		return result.Fail[[]DepsListEntry](lockErrRes.Error())
	}

	entries := make([]DepsListEntry, 0, graph.Len())
	for _, n := range graph.Nodes() {
		entries = append(entries, DepsListEntry{
			CanonicalKey: n.Ref.CanonicalKey(),
			Ref:          n.Ref.EffectiveRef(),
			CommitSHA:    n.CommitSHA,
			Depth:        n.Depth,
			DeclaredBy:   n.DeclaredBy,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Depth != entries[j].Depth {
			return entries[i].Depth < entries[j].Depth
		}
		return entries[i].CanonicalKey < entries[j].CanonicalKey
	})
	return result.Ok(entries)
}

// DepsTreeNode is one entry of `apm deps tree`'s indented rendering.
type DepsTreeNode struct {
	CanonicalKey string
	Depth        int
}

// RunDepsTree renders the dependency graph as a depth-ordered tree,
// grouping each node under its declaring parent.
func RunDepsTree(rootDir string) result.Result[[]DepsTreeNode] {
	graph, lockErrRes := frozenGraph(rootDir)
	if lockErrRes != nil {
		return result.Fail[[]DepsTreeNode](lockErrRes.Error())
	}

	children := map[string][]string{}
	for _, n := range graph.Nodes() {
		children[n.DeclaredBy] = append(children[n.DeclaredBy], n.Ref.CanonicalKey())
	}
	for _, keys := range children {
		sort.Strings(keys)
	}

	var nodes []DepsTreeNode
	var walk func(parent string, depth int)
	walk = func(parent string, depth int) {
		for _, key := range children[parent] {
			nodes = append(nodes, DepsTreeNode{CanonicalKey: key, Depth: depth})
			walk(key, depth+1)
		}
	}
	walk(".", 0)

	return result.Ok(nodes)
}

// RunDepsVerify compares the lockfile against apm.yml and the on-disk
// apm_modules tree, per spec.md §5.
func RunDepsVerify(rootDir string) result.Result[resolve.VerifyReport] {
	manifestRes := loadManifest(rootDir)
	if !manifestRes.Success {
		return result.Fail[resolve.VerifyReport](fmt.Sprintf("reading manifest: %v", manifestRes.Errors))
	}
	lockRes := loadLockFile(rootDir)
	if !lockRes.Success {
		return result.Fail[resolve.VerifyReport](fmt.Sprintf("reading lockfile: %v", lockRes.Errors))
	}

	report := resolve.Verify(rootDir, manifestRes.Value, lockRes.Value)
	res := result.Ok(report)
	if !report.OK() {
		for _, missing := range report.MissingOnDisk {
			res = res.Warn(fmt.Sprintf("%s is locked but missing from %s", missing, constants.ModulesDirName))
		}
		for _, unlocked := range report.DeclaredUnlocked {
			res = res.Warn(fmt.Sprintf("%s is declared but has no lockfile entry; run `apm install`", unlocked))
		}
	}
	return res
}

// UninstallOptions configures `apm deps uninstall`.
type UninstallOptions struct {
	Package string
	Yes     bool // skip the interactive confirmation
	Target  string
}

// RunDepsUninstall removes a dependency from apm.yml, re-resolves, rewrites
// the lockfile, and re-synchronizes the integration layout so the removed
// package's primitives disappear on the next sync pass.
func RunDepsUninstall(rootDir string, opts UninstallOptions) result.Result[InstallReport] {
	manifestRes := loadManifest(rootDir)
	if !manifestRes.Success {
		return result.Fail[InstallReport](fmt.Sprintf("reading manifest: %v", manifestRes.Errors))
	}
	m := manifestRes.Value

	found := false
	remaining := make([]string, 0, len(m.Dependencies.APM))
	for _, dep := range m.Dependencies.APM {
		if dep == opts.Package || sliceutil.ContainsAny(dep, opts.Package) {
			found = true
			continue
		}
		remaining = append(remaining, dep)
	}
	if !found {
		return result.Fail[InstallReport](fmt.Sprintf("%q is not a declared dependency", opts.Package))
	}

	if !opts.Yes {
		confirmed, err := console.ConfirmAction(
			fmt.Sprintf("Remove %s and resynchronize?", opts.Package),
			"Remove", "Cancel",
		)
		if err != nil {
			return result.Fail[InstallReport](fmt.Sprintf("reading confirmation: %v", err))
		}
		if !confirmed {
			return result.Fail[InstallReport]("uninstall cancelled")
		}
	}

	m.Dependencies.APM = remaining
	if err := writeManifest(rootDir, m); err != nil {
		return result.Fail[InstallReport](fmt.Sprintf("writing %s: %v", constants.ManifestFileName, err))
	}

	return RunInstall(context.Background(), rootDir, InstallOptions{Target: opts.Target})
}

// frozenGraph rebuilds the dependency graph purely from apm.lock, the
// shared prerequisite for every read-only `deps` subcommand.
func frozenGraph(rootDir string) (*resolve.DependencyGraph, error) {
	env, err := newEnvironment()
	if err != nil {
		return nil, err
	}
	manifestRes := loadManifest(rootDir)
	m := manifestRes.Value
	if !manifestRes.Success {
		m = bootstrapManifest(rootDir, nil)
	}
	lockRes := loadLockFile(rootDir)
	if !lockRes.Success {
		return nil, fmt.Errorf("reading lockfile: %v", lockRes.Errors)
	}
	graphRes := resolve.ResolveFrozen(env, m, lockRes.Value, modulesDirFor(rootDir))
	if !graphRes.Success {
		return nil, fmt.Errorf("rebuilding dependency graph: %v", graphRes.Errors)
	}
	return graphRes.Value, nil
}

// writeManifest serializes m back to rootDir/apm.yml.
func writeManifest(rootDir string, m manifest.PackageManifest) error {
	content, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("rendering %s: %w", constants.ManifestFileName, err)
	}
	path := filepath.Join(rootDir, constants.ManifestFileName)
	return os.WriteFile(path, content, 0o644)
}
