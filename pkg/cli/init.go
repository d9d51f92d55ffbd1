package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"

	"github.com/apm-tool/apm/pkg/constants"
	"github.com/apm-tool/apm/pkg/manifest"
	"github.com/apm-tool/apm/pkg/result"
)

// InitOptions configures `apm init`.
type InitOptions struct {
	Name        string
	Description string
}

// RunInit writes a starter apm.yml at rootDir, unless one already exists.
func RunInit(rootDir string, opts InitOptions) result.Result[string] {
	path := filepath.Join(rootDir, constants.ManifestFileName)
	if _, err := os.Stat(path); err == nil {
		return result.Fail[string](fmt.Sprintf("%s already exists", path))
	}

	name := opts.Name
	if name == "" {
		name = filepath.Base(rootDir)
	}

	m := manifest.PackageManifest{
		Name:        name,
		Version:     "1.0.0",
		Description: opts.Description,
	}

	content, err := yaml.Marshal(m)
	if err != nil {
		return result.Fail[string](fmt.Sprintf("rendering %s: %v", constants.ManifestFileName, err))
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return result.Fail[string](fmt.Sprintf("writing %s: %v", path, err))
	}

	cliLog.Printf("Wrote starter manifest to %s", path)
	return result.Ok(path)
}
