package cli

import (
	"fmt"

	"github.com/apm-tool/apm/pkg/primitive"
	"github.com/apm-tool/apm/pkg/resolve"
	apmsync "github.com/apm-tool/apm/pkg/sync"
)

// discoverAllPrimitives gathers local-project primitives (depth 0, source
// tag ".") and every installed package's primitives (tagged with its
// canonical key and BFS depth), in that order, so PrimitiveCollection's
// local-always-wins / first-dependency-wins rule sees them in the order
// spec.md §4.4 requires.
func discoverAllPrimitives(rootDir string, graph *resolve.DependencyGraph) ([]primitive.Primitive, error) {
	all, err := primitive.DiscoverSource(rootDir, ".", 0)
	if err != nil {
		return nil, fmt.Errorf("discovering local primitives: %w", err)
	}

	for _, node := range graph.Nodes() {
		found, err := primitive.DiscoverDependencySource(node.LocalDir, node.Ref.CanonicalKey(), node.Depth)
		if err != nil {
			return nil, fmt.Errorf("discovering primitives in %s: %w", node.Ref.CanonicalKey(), err)
		}
		all = append(all, found...)
	}
	return all, nil
}

// runIntegrationSync discovers primitives across the local project and
// graph, resolves conflicts, and runs the synchronizer's nuke-and-regenerate
// pass. Shared by `install` and `compile`, since spec.md §4.5 triggers
// integration sync on either.
func runIntegrationSync(rootDir string, target apmsync.Target, graph *resolve.DependencyGraph) (apmsync.Report, *primitive.PrimitiveCollection, error) {
	all, err := discoverAllPrimitives(rootDir, graph)
	if err != nil {
		return apmsync.Report{}, nil, err
	}
	collection := primitive.NewPrimitiveCollection(all)

	for _, c := range collection.Conflicts {
		cliLog.Printf("primitive conflict: %s %q resolved in favor of %s (%s)", c.Kind, c.Name, c.Winner.SourceTag, c.Reason)
	}

	report, err := apmsync.Sync(rootDir, target, apmsync.PackagesFromGraph(graph), collection)
	if err != nil {
		return apmsync.Report{}, collection, fmt.Errorf("synchronizing integration layout: %w", err)
	}
	return report, collection, nil
}
