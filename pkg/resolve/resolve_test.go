package resolve

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/apm-tool/apm/pkg/apmenv"
	"github.com/apm-tool/apm/pkg/depref"
	"github.com/apm-tool/apm/pkg/manifest"
	"github.com/apm-tool/apm/pkg/result"
)

// stubCloner materializes an apm.yml for each ref into its destination
// directory instead of performing a real clone, keyed by canonical key.
type stubCloner struct {
	manifests map[string]string // canonical key -> apm.yml content
	shas      map[string]string
}

func (s *stubCloner) CloneInto(_ context.Context, ref depref.DependencyRef, dir string) result.Result[string] {
	key := ref.CanonicalKey()
	content, ok := s.manifests[key]
	if !ok {
		return result.Fail[string]("no stub manifest for " + key)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return result.Fail[string](err.Error())
	}
	if content != "" {
		if err := os.WriteFile(filepath.Join(dir, "apm.yml"), []byte(content), 0o644); err != nil {
			return result.Fail[string](err.Error())
		}
	}
	return result.Ok(s.shas[key])
}

func TestResolveFlattensTransitiveDependencies(t *testing.T) {
	env := apmenv.NewForTest("/tmp/proj", nil)
	root := manifest.PackageManifest{
		Name:    "root-pkg",
		Version: "1.0.0",
		Dependencies: manifest.Dependencies{
			APM: []string{"owner/a"},
		},
	}

	stub := &stubCloner{
		manifests: map[string]string{
			"github.com/owner/a/": "name: a\nversion: \"1.0.0\"\ndependencies:\n  apm:\n    - owner/b\n",
			"github.com/owner/b/": "name: b\nversion: \"1.0.0\"\n",
		},
		shas: map[string]string{
			"github.com/owner/a/": "sha-a",
			"github.com/owner/b/": "sha-b",
		},
	}

	r := New(env, stub, t.TempDir())
	res := r.Resolve(context.Background(), root)
	if !res.Success {
		t.Fatalf("resolve failed: %v", res.Errors)
	}
	graph := res.Value
	if graph.Len() != 2 {
		t.Fatalf("expected 2 nodes, got %d: %+v", graph.Len(), graph.Nodes())
	}

	aNode, ok := graph.Get("github.com/owner/a/")
	if !ok || aNode.Depth != 1 {
		t.Errorf("expected owner/a at depth 1, got %+v", aNode)
	}
	bNode, ok := graph.Get("github.com/owner/b/")
	if !ok || bNode.Depth != 2 {
		t.Errorf("expected owner/b at depth 2, got %+v", bNode)
	}
}

func TestResolveFirstWinsOnDiamondDependency(t *testing.T) {
	env := apmenv.NewForTest("/tmp/proj", nil)
	root := manifest.PackageManifest{
		Name:    "root-pkg",
		Version: "1.0.0",
		Dependencies: manifest.Dependencies{
			APM: []string{"owner/a", "owner/c"},
		},
	}

	stub := &stubCloner{
		manifests: map[string]string{
			"github.com/owner/a/": "name: a\nversion: \"1.0.0\"\ndependencies:\n  apm:\n    - owner/shared\n",
			"github.com/owner/c/": "name: c\nversion: \"1.0.0\"\ndependencies:\n  apm:\n    - owner/shared\n",
			"github.com/owner/shared/": "name: shared\nversion: \"1.0.0\"\n",
		},
		shas: map[string]string{
			"github.com/owner/a/":      "sha-a",
			"github.com/owner/c/":      "sha-c",
			"github.com/owner/shared/": "sha-shared",
		},
	}

	r := New(env, stub, t.TempDir())
	res := r.Resolve(context.Background(), root)
	if !res.Success {
		t.Fatalf("resolve failed: %v", res.Errors)
	}
	if res.Value.Len() != 3 {
		t.Fatalf("expected 3 nodes (shared deduped), got %d", res.Value.Len())
	}
	shared, ok := res.Value.Get("github.com/owner/shared/")
	if !ok {
		t.Fatal("expected shared dependency to be present")
	}
	if shared.Depth != 2 {
		t.Errorf("expected shared at depth 2 from first discovery, got %d", shared.Depth)
	}
}

func TestResolveTwoNodeCycleInstallsEachOnceAndWarnsOnce(t *testing.T) {
	env := apmenv.NewForTest("/tmp/proj", nil)
	root := manifest.PackageManifest{
		Name:    "root-pkg",
		Version: "1.0.0",
		Dependencies: manifest.Dependencies{
			APM: []string{"owner/a"},
		},
	}

	stub := &stubCloner{
		manifests: map[string]string{
			"github.com/owner/a/": "name: a\nversion: \"1.0.0\"\ndependencies:\n  apm:\n    - owner/b\n",
			"github.com/owner/b/": "name: b\nversion: \"1.0.0\"\ndependencies:\n  apm:\n    - owner/a\n",
		},
		shas: map[string]string{
			"github.com/owner/a/": "sha-a",
			"github.com/owner/b/": "sha-b",
		},
	}

	r := New(env, stub, t.TempDir())
	res := r.Resolve(context.Background(), root)
	if !res.Success {
		t.Fatalf("resolve failed: %v", res.Errors)
	}
	if res.Value.Len() != 2 {
		t.Fatalf("expected each node installed exactly once, got %d: %+v", res.Value.Len(), res.Value.Nodes())
	}

	cycleWarnings := 0
	for _, w := range res.Warnings {
		if strings.Contains(w, "CycleDetected") {
			cycleWarnings++
		}
	}
	if cycleWarnings != 1 {
		t.Errorf("expected exactly one CycleDetected warning, got %d: %v", cycleWarnings, res.Warnings)
	}
}

func TestResolveBootstrapsManifestForBarePrimitiveBundle(t *testing.T) {
	env := apmenv.NewForTest("/tmp/proj", nil)
	root := manifest.PackageManifest{
		Name:    "root-pkg",
		Version: "1.0.0",
		Dependencies: manifest.Dependencies{
			APM: []string{"owner/bare"},
		},
	}
	stub := &stubCloner{
		manifests: map[string]string{"github.com/owner/bare/": ""},
		shas:      map[string]string{"github.com/owner/bare/": "sha-bare"},
	}

	r := New(env, stub, t.TempDir())
	res := r.Resolve(context.Background(), root)
	if !res.Success {
		t.Fatalf("resolve failed: %v", res.Errors)
	}
	if len(res.Warnings) == 0 {
		t.Error("expected a warning about the bootstrapped manifest")
	}
	node, ok := res.Value.Get("github.com/owner/bare/")
	if !ok {
		t.Fatal("expected bare dependency node")
	}
	if node.Manifest.Name == "" {
		t.Error("expected a synthesized manifest name")
	}
}
