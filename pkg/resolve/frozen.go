package resolve

import (
	"fmt"

	"github.com/apm-tool/apm/pkg/apmenv"
	"github.com/apm-tool/apm/pkg/depref"
	"github.com/apm-tool/apm/pkg/manifest"
	"github.com/apm-tool/apm/pkg/result"
)

// ResolveFrozen rebuilds a DependencyGraph purely from an existing lockfile,
// performing no network access: each locked entry becomes a node whose
// LocalDir is assumed already materialized on disk. This is the oracle mode
// used by `apm install --frozen` and by compile-time validation, per
// spec.md §5's frozen-install requirement.
//
// Before building the graph, every dependency root declares is cross-checked
// against the lockfile: a declared ref that has no lockfile entry, or whose
// explicit ref diverges from what's locked, fails the resolve outright,
// since §5 requires refs not matching the lockfile to cause failure under
// --frozen rather than silently resolving whatever was last installed.
func ResolveFrozen(env apmenv.Environment, root manifest.PackageManifest, lf manifest.LockFile, modulesDir func(depref.DependencyRef) string) result.Result[*DependencyGraph] {
	locked := make(map[string]manifest.LockedDependency, len(lf.Dependencies))
	for _, dep := range lf.Dependencies {
		locked[dep.RepoURL] = dep
	}

	for _, spec := range root.Dependencies.APM {
		parsed := depref.ParseDependencyRef(spec, env)
		if !parsed.Success {
			return result.Fail[*DependencyGraph](fmt.Sprintf("declared dependency %q could not be parsed: %v", spec, parsed.Errors))
		}
		key := parsed.Value.CanonicalKey()
		dep, ok := locked[key]
		if !ok {
			return result.Fail[*DependencyGraph](fmt.Sprintf("%q is declared in apm.yml but has no apm.lock entry; run `apm install` without --frozen", spec))
		}
		if parsed.Value.Ref != "" && parsed.Value.Ref != dep.Ref {
			return result.Fail[*DependencyGraph](fmt.Sprintf("%q declares ref %q but apm.lock has %q locked; run `apm install` to update the lockfile", spec, parsed.Value.Ref, dep.Ref))
		}
	}

	graph := NewDependencyGraph()
	var warnings []string

	for _, dep := range lf.Dependencies {
		spec := dep.RepoURL
		if dep.Ref != "" {
			spec = fmt.Sprintf("%s#%s", spec, dep.Ref)
		}
		if dep.Alias != "" {
			spec = fmt.Sprintf("%s@%s", spec, dep.Alias)
		}

		parsed := depref.ParseDependencyRef(spec, env)
		if !parsed.Success {
			warnings = append(warnings, fmt.Sprintf("lockfile entry %q could not be parsed: %v", spec, parsed.Errors))
			continue
		}

		node := &PackageNode{
			Ref:        parsed.Value,
			CommitSHA:  dep.CommitSHA,
			Depth:      dep.Depth,
			LocalDir:   modulesDir(parsed.Value),
			DeclaredBy: dep.Source,
		}
		if !graph.Add(parsed.Value.CanonicalKey(), node) {
			warnings = append(warnings, fmt.Sprintf("duplicate lockfile entry for %s", parsed.Value.CanonicalKey()))
		}
	}

	res := result.Ok(graph)
	for _, w := range warnings {
		res = res.Warn(w)
	}
	return res
}
