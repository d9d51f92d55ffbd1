// Package manifest implements the apm.yml / apm.lock codecs: parsing a
// package's declarative manifest into a closed set of typed fields (per
// spec.md §9's "dynamic manifest parsing → typed records" design note) and
// serializing/deserializing the resolver's lockfile.
package manifest

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/goccy/go-yaml"

	"github.com/apm-tool/apm/pkg/logger"
	"github.com/apm-tool/apm/pkg/result"
)

var manifestLog = logger.New("manifest")

// CompilationOptions holds the optional `compilation` block of apm.yml.
type CompilationOptions struct {
	Output                 string   `yaml:"output,omitempty"`
	Strategy                string   `yaml:"strategy,omitempty"`
	ResolveLinks            *bool    `yaml:"resolve_links,omitempty"`
	MinInstructionsPerFile  int      `yaml:"min_instructions_per_file,omitempty"`
	SourceAttribution       bool     `yaml:"source_attribution,omitempty"`
	Exclude                 []string `yaml:"exclude,omitempty"`
}

// Dependencies holds apm.yml's `dependencies` block.
type Dependencies struct {
	APM []string `yaml:"apm,omitempty"`
	MCP []string `yaml:"mcp,omitempty"`
}

// PackageManifest is the parsed contents of a package's apm.yml.
type PackageManifest struct {
	Name         string            `yaml:"name"`
	Version      string            `yaml:"version"`
	Description  string            `yaml:"description,omitempty"`
	Author       string            `yaml:"author,omitempty"`
	License      string            `yaml:"license,omitempty"`
	Target       string            `yaml:"target,omitempty"` // vscode|claude|all
	Type         string            `yaml:"type,omitempty"`   // instructions|skill|hybrid|prompts
	Dependencies Dependencies      `yaml:"dependencies,omitempty"`
	Scripts      map[string]string `yaml:"scripts,omitempty"`
	Compilation  CompilationOptions `yaml:"compilation,omitempty"`
}

// rawManifest mirrors PackageManifest but with Version left as yaml.Node-ish
// any, so a numeric YAML scalar can be detected and coerced per spec.md §9's
// Open Question #2 resolution.
type rawManifest struct {
	Name         string            `yaml:"name"`
	Version      any               `yaml:"version"`
	Description  string            `yaml:"description,omitempty"`
	Author       string            `yaml:"author,omitempty"`
	License      string            `yaml:"license,omitempty"`
	Target       string            `yaml:"target,omitempty"`
	Type         string            `yaml:"type,omitempty"`
	Dependencies Dependencies      `yaml:"dependencies,omitempty"`
	Scripts      map[string]string `yaml:"scripts,omitempty"`
	Compilation  CompilationOptions `yaml:"compilation,omitempty"`
}

// ParseManifest decodes apm.yml content into a PackageManifest. Missing
// name or version is fatal, per spec.md §3. A numeric `version` scalar is
// coerced to its string form with a warning, resolving the Open Question in
// spec.md §9.
func ParseManifest(content []byte) result.Result[PackageManifest] {
	var raw rawManifest
	if err := yaml.Unmarshal(content, &raw); err != nil {
		return result.Fail[PackageManifest](fmt.Sprintf("ManifestMalformed: %s", err))
	}

	m := PackageManifest{
		Name:         raw.Name,
		Description:  raw.Description,
		Author:       raw.Author,
		License:      raw.License,
		Target:       raw.Target,
		Type:         raw.Type,
		Dependencies: raw.Dependencies,
		Scripts:      raw.Scripts,
		Compilation:  raw.Compilation,
	}

	res := result.Ok(m)
	if raw.Name == "" {
		return result.Fail[PackageManifest]("ManifestMissingField: name is required")
	}

	versionStr, coerced, err := coerceVersion(raw.Version)
	if err != nil {
		return result.Fail[PackageManifest](fmt.Sprintf("ManifestMissingField: %s", err))
	}
	m.Version = versionStr
	res.Value = m
	if coerced {
		manifestLog.Printf("Coerced numeric version scalar to string: %q", versionStr)
		res = res.Warn(fmt.Sprintf("version field was a numeric YAML scalar; coerced to %q", versionStr))
	}
	return res
}

// coerceVersion implements spec.md §9's Open Question #2 resolution: a
// numeric YAML scalar version is stringified and, where
// Masterminds/semver's NewVersion accepts it, padded to a three-component
// semver string (see normalizeNumericVersion), emitting a warning.
func coerceVersion(raw any) (value string, coerced bool, err error) {
	switch v := raw.(type) {
	case nil:
		return "", false, fmt.Errorf("version is required")
	case string:
		if v == "" {
			return "", false, fmt.Errorf("version is required")
		}
		return v, false, nil
	case int:
		return normalizeNumericVersion(fmt.Sprintf("%d", v)), true, nil
	case int64, uint64:
		return normalizeNumericVersion(fmt.Sprintf("%d", v)), true, nil
	case float64:
		return normalizeNumericVersion(fmt.Sprintf("%v", v)), true, nil
	default:
		return "", false, fmt.Errorf("version has unsupported type %T", raw)
	}
}

// normalizeNumericVersion pads a bare "1" or "1.0" numeric scalar out to a
// three-component semver string using semver.NewVersion's coercion.
func normalizeNumericVersion(s string) string {
	if v, err := semver.NewVersion(s); err == nil {
		return v.String()
	}
	return s
}
