package resolve

import (
	"os"

	"github.com/apm-tool/apm/pkg/apmenv"
	"github.com/apm-tool/apm/pkg/constants"
	"github.com/apm-tool/apm/pkg/depref"
	"github.com/apm-tool/apm/pkg/manifest"
)

// VerifyReport is the outcome of comparing a lockfile against what's
// actually on disk, per spec.md §5's `apm deps verify` operation.
type VerifyReport struct {
	Matched          []string // canonical keys present in the lockfile and on disk
	MissingOnDisk    []string // canonical keys locked but absent from apm_modules
	DeclaredUnlocked []string // apm.yml dependencies with no corresponding lockfile entry
}

// OK reports whether the installed tree matches the declared and locked
// dependency sets exactly.
func (r VerifyReport) OK() bool {
	return len(r.MissingOnDisk) == 0 && len(r.DeclaredUnlocked) == 0
}

// Verify is a read-only check: it never fetches or mutates anything. It
// reports which locked dependencies are missing from rootDir/apm_modules,
// and which apm.yml-declared dependencies have no lockfile entry at all.
func Verify(rootDir string, root manifest.PackageManifest, lf manifest.LockFile) VerifyReport {
	var report VerifyReport

	locked := make(map[string]manifest.LockedDependency, len(lf.Dependencies))
	for _, dep := range lf.Dependencies {
		locked[dep.RepoURL] = dep
	}

	for _, dep := range lf.Dependencies {
		installPath := dep.RepoURL
		if parsed := depref.ParseDependencyRef(dep.RepoURL, apmenv.Environment{}); parsed.Success {
			installPath = parsed.Value.InstallPath()
		}
		dir := rootDir + "/" + constants.ModulesDirName + "/" + installPath
		if _, err := os.Stat(dir); err == nil {
			report.Matched = append(report.Matched, dep.RepoURL)
		} else {
			report.MissingOnDisk = append(report.MissingOnDisk, dep.RepoURL)
		}
	}

	for _, spec := range root.Dependencies.APM {
		if _, ok := locked[spec]; !ok {
			if !declaredSpecHasLockEntry(spec, lf) {
				report.DeclaredUnlocked = append(report.DeclaredUnlocked, spec)
			}
		}
	}

	return report
}

// declaredSpecHasLockEntry loosely matches a raw apm.yml dependency spec
// (which may carry a #ref/@alias suffix the lockfile's repo_url key does
// not) against the lockfile's entries. The spec is parsed to its canonical
// key, which is what repo_url holds; a spec that does not parse is compared
// with its #ref/@alias suffix cut off.
func declaredSpecHasLockEntry(spec string, lf manifest.LockFile) bool {
	repoPart := spec
	for _, sep := range []string{"#", "@"} {
		if idx := indexOf(repoPart, sep); idx >= 0 {
			repoPart = repoPart[:idx]
		}
	}
	if parsed := depref.ParseDependencyRef(spec, apmenv.Environment{}); parsed.Success {
		repoPart = parsed.Value.CanonicalKey()
	}
	for _, dep := range lf.Dependencies {
		if dep.RepoURL == repoPart {
			return true
		}
	}
	return false
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}
