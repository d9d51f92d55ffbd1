// Package resolve implements the Transitive Resolver: a breadth-first
// traversal of a project's declared dependencies into a flattened,
// conflict-resolved DependencyGraph, and a read-only Verify operation
// against an existing lockfile.
package resolve

import (
	"github.com/apm-tool/apm/pkg/depref"
	"github.com/apm-tool/apm/pkg/manifest"
)

// PackageNode is one resolved package in the dependency graph.
type PackageNode struct {
	Ref       depref.DependencyRef
	CommitSHA string
	Depth     int
	LocalDir  string
	Manifest  manifest.PackageManifest
	DeclaredBy string // canonical key of the package whose apm.yml first named this one
}

// DependencyGraph is the flattened, deduplicated result of a resolve pass.
// Nodes are held in an arena indexed by insertion order, with a canonical-key
// lookup for O(1) conflict checks, per spec.md §9's design note on avoiding
// pointer-heavy recursive graph structures.
type DependencyGraph struct {
	nodes []*PackageNode
	index map[string]int
}

// NewDependencyGraph returns an empty graph.
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{index: make(map[string]int)}
}

// Nodes returns the graph's nodes in first-discovered (BFS) order.
func (g *DependencyGraph) Nodes() []*PackageNode {
	return g.nodes
}

// Get returns the node registered under key, if any.
func (g *DependencyGraph) Get(key string) (*PackageNode, bool) {
	idx, ok := g.index[key]
	if !ok {
		return nil, false
	}
	return g.nodes[idx], true
}

// Has reports whether key is already registered.
func (g *DependencyGraph) Has(key string) bool {
	_, ok := g.index[key]
	return ok
}

// Add registers node under key if not already present. First registration
// wins: a later attempt to add the same key is a no-op, implementing the
// first-wins conflict resolution rule from spec.md §5.
func (g *DependencyGraph) Add(key string, node *PackageNode) (added bool) {
	if _, exists := g.index[key]; exists {
		return false
	}
	g.index[key] = len(g.nodes)
	g.nodes = append(g.nodes, node)
	return true
}

// Len returns the number of nodes in the graph.
func (g *DependencyGraph) Len() int {
	return len(g.nodes)
}
