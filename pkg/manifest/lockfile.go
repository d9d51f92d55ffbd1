package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/goccy/go-yaml"

	"github.com/apm-tool/apm/pkg/constants"
	"github.com/apm-tool/apm/pkg/result"
)

// LockedDependency is one resolved entry in apm.lock, per spec.md §6.
type LockedDependency struct {
	RepoURL   string `yaml:"repo_url"`
	Ref       string `yaml:"ref"`
	CommitSHA string `yaml:"commit_sha"`
	Depth     int    `yaml:"depth"`
	Alias     string `yaml:"alias,omitempty"`
	Source    string `yaml:"source,omitempty"` // which declaring package pulled this in
}

// LockFile is the full contents of apm.lock.
type LockFile struct {
	LockfileVersion string             `yaml:"lockfile_version"`
	GeneratedAt     string             `yaml:"generated_at"`
	APMVersion      string             `yaml:"apm_version"`
	Dependencies    []LockedDependency `yaml:"dependencies"`
}

// NewLockFile builds a LockFile from a resolved dependency set, ordering
// entries by depth then repo_url, per spec.md §6's determinism requirement.
func NewLockFile(deps []LockedDependency, apmVersion, generatedAt string) LockFile {
	sorted := make([]LockedDependency, len(deps))
	copy(sorted, deps)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Depth != sorted[j].Depth {
			return sorted[i].Depth < sorted[j].Depth
		}
		return sorted[i].RepoURL < sorted[j].RepoURL
	})
	return LockFile{
		LockfileVersion: constants.LockFileVersion,
		GeneratedAt:     generatedAt,
		APMVersion:      apmVersion,
		Dependencies:    sorted,
	}
}

// ParseLockFile decodes apm.lock content.
func ParseLockFile(content []byte) result.Result[LockFile] {
	var lf LockFile
	if err := yaml.Unmarshal(content, &lf); err != nil {
		return result.Fail[LockFile](fmt.Sprintf("LockFileMalformed: %s", err))
	}
	res := result.Ok(lf)
	if lf.LockfileVersion != constants.LockFileVersion {
		res = res.Warn(fmt.Sprintf("lockfile_version %q does not match supported version %q", lf.LockfileVersion, constants.LockFileVersion))
	}
	return res
}

// Marshal serializes the lockfile back to YAML bytes.
func (lf LockFile) Marshal() ([]byte, error) {
	return yaml.Marshal(lf)
}

// WriteAtomic writes the lockfile to path by first writing to a temp file in
// the same directory and renaming it into place, so a concurrent reader (or
// a crash mid-write) never observes a partially written apm.lock, per
// spec.md §5/§9.
func (lf LockFile) WriteAtomic(path string) error {
	data, err := lf.Marshal()
	if err != nil {
		return fmt.Errorf("marshaling lockfile: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".apm-lock-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp lockfile: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp lockfile: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp lockfile: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming temp lockfile into place: %w", err)
	}
	return nil
}
