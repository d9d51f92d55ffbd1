package resolve

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sourcegraph/conc/pool"

	"github.com/apm-tool/apm/pkg/apmenv"
	"github.com/apm-tool/apm/pkg/constants"
	"github.com/apm-tool/apm/pkg/depref"
	"github.com/apm-tool/apm/pkg/logger"
	"github.com/apm-tool/apm/pkg/manifest"
	"github.com/apm-tool/apm/pkg/result"
)

var resolveLog = logger.New("resolve")

// MaxConcurrentFetches bounds how many dependency clones run at once per
// frontier, mirroring the teacher's bounded conc.pool usage for concurrent
// downloads.
const MaxConcurrentFetches = 6

// Resolver runs BFS dependency resolution for a single project.
type Resolver struct {
	env     apmenv.Environment
	fetch   cloner
	rootDir string
}

// cloner is the minimal shape resolve.go actually calls, matched
// structurally against *fetch.Driver (Go interfaces are structural, so the
// concrete driver satisfies this without an adapter).
type cloner interface {
	CloneInto(ctx context.Context, ref depref.DependencyRef, dir string) result.Result[string]
}

// New constructs a Resolver bound to env and rootDir, using fetcher to
// materialize dependencies.
func New(env apmenv.Environment, fetcher cloner, rootDir string) *Resolver {
	return &Resolver{env: env, fetch: fetcher, rootDir: rootDir}
}

// frontierItem is one dependency queued for fetch at a given depth.
type frontierItem struct {
	ref        depref.DependencyRef
	depth      int
	declaredBy string
}

// fetchOutcome is the per-item result of a frontier's concurrent clone pass.
type fetchOutcome struct {
	item     frontierItem
	key      string
	node     *PackageNode
	warnings []string
	err      error
}

// Resolve performs a full BFS resolution starting from root's declared
// dependencies, fetching each frontier concurrently and stopping expansion
// at nodes already registered (first-wins, per spec.md §5) or already
// visited on the current path (cycle guard).
func (r *Resolver) Resolve(ctx context.Context, root manifest.PackageManifest) result.Result[*DependencyGraph] {
	graph := NewDependencyGraph()
	var warnings []string

	frontier := make([]frontierItem, 0, len(root.Dependencies.APM))
	for _, spec := range root.Dependencies.APM {
		parsed := depref.ParseDependencyRef(spec, r.env)
		if !parsed.Success {
			warnings = append(warnings, fmt.Sprintf("skipping invalid dependency %q: %v", spec, parsed.Errors))
			continue
		}
		frontier = append(frontier, frontierItem{ref: parsed.Value, depth: 1, declaredBy: "."})
	}

	for len(frontier) > 0 {
		resolveLog.Printf("Resolving frontier of %d dependencies", len(frontier))
		outcomes := r.fetchFrontier(ctx, frontier)

		var next []frontierItem
		for _, o := range outcomes {
			warnings = append(warnings, o.warnings...)
			if o.err != nil {
				warnings = append(warnings, fmt.Sprintf("failed to resolve %s: %v", o.item.ref.CanonicalKey(), o.err))
				continue
			}
			if !graph.Add(o.key, o.node) {
				// Already present from an earlier (shallower or
				// earlier-declared) discovery; first-wins.
				continue
			}
			for _, childSpec := range o.node.Manifest.Dependencies.APM {
				parsed := depref.ParseDependencyRef(childSpec, r.env)
				if !parsed.Success {
					warnings = append(warnings, fmt.Sprintf("skipping invalid dependency %q declared by %s: %v", childSpec, o.key, parsed.Errors))
					continue
				}
				childKey := parsed.Value.CanonicalKey()
				if graph.Has(childKey) {
					if ancestorChainContains(graph, o.key, childKey) {
						warnings = append(warnings, fmt.Sprintf("CycleDetected: %s depends on %s, which already depends on it transitively", o.key, childKey))
					}
					continue
				}
				next = append(next, frontierItem{ref: parsed.Value, depth: o.item.depth + 1, declaredBy: o.key})
			}
		}
		frontier = next
	}

	res := result.Ok(graph)
	for _, w := range warnings {
		res = res.Warn(w)
	}
	return res
}

// ancestorChainContains reports whether target appears in the chain of
// DeclaredBy edges walked from startKey back to the root (".") — i.e.
// whether target is an ancestor of startKey in the declaration tree. A
// child edge back to an ancestor is a genuine cycle, unlike an edge to a
// node shared by two unrelated branches (a diamond), which is not.
func ancestorChainContains(graph *DependencyGraph, startKey, target string) bool {
	key := startKey
	for {
		if key == target {
			return true
		}
		if key == "." {
			return false
		}
		node, ok := graph.Get(key)
		if !ok {
			return false
		}
		key = node.DeclaredBy
	}
}

// fetchFrontier clones every item in frontier concurrently, bounded by
// MaxConcurrentFetches, and parses the resulting apm.yml (bootstrapping a
// minimal manifest when the dependency carries none).
func (r *Resolver) fetchFrontier(ctx context.Context, frontier []frontierItem) []fetchOutcome {
	p := pool.NewWithResults[fetchOutcome]().WithMaxGoroutines(MaxConcurrentFetches)

	for _, item := range frontier {
		item := item
		p.Go(func() fetchOutcome {
			key := item.ref.CanonicalKey()
			dir := filepath.Join(r.rootDir, constants.ModulesDirName, item.ref.InstallPath())

			cloneRes := r.fetch.CloneInto(ctx, item.ref, dir)
			if !cloneRes.Success {
				return fetchOutcome{item: item, key: key, err: fmt.Errorf("%v", cloneRes.Errors)}
			}

			m, warnings, err := loadOrBootstrapManifest(dir, item.ref)
			if err != nil {
				return fetchOutcome{item: item, key: key, err: err}
			}

			node := &PackageNode{
				Ref:        item.ref,
				CommitSHA:  cloneRes.Value,
				Depth:      item.depth,
				LocalDir:   dir,
				Manifest:   m,
				DeclaredBy: item.declaredBy,
			}
			return fetchOutcome{item: item, key: key, node: node, warnings: warnings}
		})
	}

	return p.Wait()
}

// loadOrBootstrapManifest reads dir/apm.yml. A dependency with no manifest
// is treated as a bare primitive bundle: it gets a minimal synthesized
// manifest (name derived from its install path, no further dependencies),
// per spec.md §9's "packages without apm.yml" resolution.
func loadOrBootstrapManifest(dir string, ref depref.DependencyRef) (manifest.PackageManifest, []string, error) {
	path := filepath.Join(dir, constants.ManifestFileName)
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return manifest.PackageManifest{
			Name:    ref.InstallPath(),
			Version: "0.0.0",
		}, []string{fmt.Sprintf("%s has no %s; treating it as a bare primitive bundle", ref.CanonicalKey(), constants.ManifestFileName)}, nil
	}
	if err != nil {
		return manifest.PackageManifest{}, nil, fmt.Errorf("reading %s: %w", path, err)
	}

	parsed := manifest.ParseManifest(content)
	if !parsed.Success {
		return manifest.PackageManifest{}, nil, fmt.Errorf("parsing %s: %v", path, parsed.Errors)
	}
	return parsed.Value, parsed.Warnings, nil
}
