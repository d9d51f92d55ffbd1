package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/apm-tool/apm/pkg/console"
	"github.com/apm-tool/apm/pkg/constants"
	"github.com/apm-tool/apm/pkg/fetch"
	"github.com/apm-tool/apm/pkg/manifest"
	"github.com/apm-tool/apm/pkg/resolve"
	"github.com/apm-tool/apm/pkg/result"
	"github.com/apm-tool/apm/pkg/sliceutil"
	apmsync "github.com/apm-tool/apm/pkg/sync"
)

// InstallOptions configures `apm install`.
type InstallOptions struct {
	Packages []string // explicit dependency args; empty means "everything declared"
	Frozen   bool
	DryRun   bool
	Target   string // explicit --target override, empty for auto-detection
	Verbose  bool
}

// InstallReport summarizes a completed install pass.
type InstallReport struct {
	Graph      *resolve.DependencyGraph
	LockPath   string
	SyncReport apmsync.Report
}

// RunInstall resolves rootDir's dependency tree (or replays it from an
// existing lockfile under --frozen), writes apm.lock, and synchronizes the
// integration layout, per spec.md §4.3/§4.5.
func RunInstall(ctx context.Context, rootDir string, opts InstallOptions) result.Result[InstallReport] {
	env, err := newEnvironment()
	if err != nil {
		return result.Fail[InstallReport](fmt.Sprintf("reading environment: %v", err))
	}

	m, warnings, failErr := resolveRootManifest(rootDir, opts.Packages)
	if failErr != nil {
		return result.Fail[InstallReport](failErr.Error())
	}

	var graphRes result.Result[*resolve.DependencyGraph]
	if opts.Frozen {
		lockRes := loadLockFile(rootDir)
		if !lockRes.Success {
			return result.Fail[InstallReport](fmt.Sprintf("--frozen requires an existing lockfile: %v", lockRes.Errors))
		}
		graphRes = resolve.ResolveFrozen(env, m, lockRes.Value, modulesDirFor(rootDir))
	} else {
		spinner := console.NewSpinner("Resolving dependencies...")
		spinner.Start()
		driver := fetch.New(env)
		resolver := resolve.New(env, driver, rootDir)
		graphRes = resolver.Resolve(ctx, m)
		if graphRes.Success {
			spinner.StopWithMessage(console.FormatSuccessMessage(fmt.Sprintf("Resolved %d package(s)", graphRes.Value.Len())))
		} else {
			spinner.Stop()
		}
	}
	warnings = append(warnings, graphRes.Warnings...)

	if !graphRes.Success {
		return result.Fail[InstallReport](fmt.Sprintf("resolving dependencies: %v", graphRes.Errors))
	}
	graph := graphRes.Value

	report := InstallReport{Graph: graph}

	if opts.DryRun {
		res := result.Ok(report)
		for _, w := range warnings {
			res = res.Warn(w)
		}
		return res
	}

	if !opts.Frozen {
		deps := make([]manifest.LockedDependency, 0, graph.Len())
		for _, n := range graph.Nodes() {
			deps = append(deps, manifest.LockedDependency{
				RepoURL:   n.Ref.CanonicalKey(),
				Ref:       n.Ref.EffectiveRef(),
				CommitSHA: n.CommitSHA,
				Depth:     n.Depth,
				Source:    n.DeclaredBy,
			})
		}
		lf := manifest.NewLockFile(deps, apmVersion(), time.Now().UTC().Format(time.RFC3339))
		lockPath := rootDir + "/apm.lock"
		if err := lf.WriteAtomic(lockPath); err != nil {
			return result.Fail[InstallReport](fmt.Sprintf("writing lockfile: %v", err))
		}
		report.LockPath = lockPath
	}

	target := apmsync.DetectTarget(opts.Target, m.Target, rootDir)
	syncReport, _, err := runIntegrationSync(rootDir, target, graph)
	if err != nil {
		return result.Fail[InstallReport](err.Error())
	}
	report.SyncReport = syncReport

	res := result.Ok(report)
	for _, w := range warnings {
		res = res.Warn(w)
	}
	return res
}

// resolveRootManifest loads rootDir's apm.yml, bootstrapping a minimal one
// when absent and explicit packages were requested, per spec.md §4.3.
func resolveRootManifest(rootDir string, packages []string) (manifest.PackageManifest, []string, error) {
	loaded := loadManifest(rootDir)
	if loaded.Success {
		m := loaded.Value
		if len(packages) > 0 {
			m.Dependencies.APM = selectiveDeps(m.Dependencies.APM, packages)
		}
		return m, loaded.Warnings, nil
	}
	if len(packages) == 0 {
		return manifest.PackageManifest{}, nil, fmt.Errorf("no apm.yml found and no package argument given: %v", loaded.Errors)
	}
	return bootstrapManifest(rootDir, packages), nil, nil
}

// selectiveDeps filters declared to only entries matching one of the
// requested package specs by substring, per spec.md §4.3's selective-install
// rule: "only nodes reachable through matching root edges are enqueued".
func selectiveDeps(declared, requested []string) []string {
	var out []string
	for _, d := range declared {
		for _, want := range requested {
			if d == want || sliceutil.ContainsAny(d, want) {
				out = append(out, d)
				break
			}
		}
	}
	return out
}

// apmVersion reports the CLI's own version for the lockfile's apm_version
// field: apmVersionOverride when it is set at build time via -ldflags -X,
// falling back to the constants package default otherwise.
var apmVersionOverride = ""

func apmVersion() string {
	if apmVersionOverride != "" {
		return apmVersionOverride
	}
	return constants.DefaultAPMVersion
}
