// Package cli implements the operations behind every apm subcommand,
// wiring pkg/depref, pkg/fetch, pkg/manifest, pkg/resolve, pkg/primitive,
// pkg/placement, and pkg/sync together. cmd/apm is a thin cobra shell over
// this package, mirroring the teacher's own cmd/gh-aw (thin command files)
// + pkg/cli (the actual logic) split.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/apm-tool/apm/pkg/apmenv"
	"github.com/apm-tool/apm/pkg/constants"
	"github.com/apm-tool/apm/pkg/depref"
	"github.com/apm-tool/apm/pkg/logger"
	"github.com/apm-tool/apm/pkg/manifest"
	"github.com/apm-tool/apm/pkg/result"
)

var cliLog = logger.New("cli")

// loadManifest reads and parses rootDir/apm.yml.
func loadManifest(rootDir string) result.Result[manifest.PackageManifest] {
	path := filepath.Join(rootDir, constants.ManifestFileName)
	content, err := os.ReadFile(path)
	if err != nil {
		return result.Fail[manifest.PackageManifest](fmt.Sprintf("reading %s: %v", path, err))
	}
	return manifest.ParseManifest(content)
}

// loadLockFile reads and parses rootDir/apm.lock. A missing lockfile is
// reported as an empty, successful LockFile rather than an error, since
// several operations (first install, verify before any install) must
// tolerate its absence.
func loadLockFile(rootDir string) result.Result[manifest.LockFile] {
	path := filepath.Join(rootDir, constants.LockFileName)
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return result.Ok(manifest.LockFile{LockfileVersion: constants.LockFileVersion})
	}
	if err != nil {
		return result.Fail[manifest.LockFile](fmt.Sprintf("reading %s: %v", path, err))
	}
	return manifest.ParseLockFile(content)
}

// bootstrapManifest synthesizes a minimal apm.yml for a project that has
// none, per spec.md §4.3's bootstrapping rule: the project directory's base
// name becomes the package name, version 1.0.0, with deps as its sole
// dependency list.
func bootstrapManifest(rootDir string, deps []string) manifest.PackageManifest {
	return manifest.PackageManifest{
		Name:    filepath.Base(rootDir),
		Version: "1.0.0",
		Dependencies: manifest.Dependencies{
			APM: deps,
		},
	}
}

// modulesDirFor returns the absolute apm_modules checkout path used by
// pkg/resolve's ResolveFrozen, consistent with the live resolver's own
// filepath.Join(rootDir, apm_modules, ref.InstallPath()) convention.
func modulesDirFor(rootDir string) func(ref depref.DependencyRef) string {
	return func(ref depref.DependencyRef) string {
		return filepath.Join(rootDir, constants.ModulesDirName, ref.InstallPath())
	}
}

// newEnvironment builds the process Environment for a CLI invocation rooted
// at the current working directory.
func newEnvironment() (apmenv.Environment, error) {
	return apmenv.New()
}
