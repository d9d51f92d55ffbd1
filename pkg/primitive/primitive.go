// Package primitive discovers and classifies the four kinds of agent
// primitive an APM package can ship, and resolves naming conflicts across
// the local project and its transitive dependencies.
package primitive

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/apm-tool/apm/pkg/logger"
	"github.com/apm-tool/apm/pkg/stringutil"
)

var primitiveLog = logger.New("primitive")

// Kind identifies which of the four primitive shapes a file represents.
type Kind string

const (
	KindInstruction Kind = "instruction"
	KindChatmode    Kind = "chatmode" // also covers .agent.md files
	KindContext     Kind = "context"
	KindSkill       Kind = "skill"
)

// Primitive is one discovered agent asset, regardless of kind.
type Primitive struct {
	Kind        Kind
	Name        string // normalized, typed-extension stripped
	FilePath    string // absolute path on disk
	Content     string // markdown body, frontmatter stripped
	Frontmatter map[string]any
	SourceTag   string // canonical key of the declaring package, or "." for the local project
	Depth       int    // 0 for local, dependency graph depth otherwise
}

// parseFile splits a markdown file's YAML frontmatter from its body and
// classifies it, mirroring the teacher's frontmatter-then-body split in
// pkg/parser (ExtractFrontmatterFromContent) and its dedicated SKILL.md
// handling in pkg/parser/skills_parser.go.
func parseFile(path, content string, kind Kind, sourceTag string, depth int) (Primitive, error) {
	frontmatter, body, err := splitFrontmatter(content)
	if err != nil {
		return Primitive{}, fmt.Errorf("parsing frontmatter in %s: %w", path, err)
	}

	name := nameFor(path, frontmatter, kind)
	return Primitive{
		Kind:        kind,
		Name:        name,
		FilePath:    path,
		Content:     body,
		Frontmatter: frontmatter,
		SourceTag:   sourceTag,
		Depth:       depth,
	}, nil
}

// splitFrontmatter extracts the YAML block delimited by leading/trailing
// "---" lines and returns it alongside the remaining markdown body. A file
// with no frontmatter block returns an empty map and its content unchanged.
func splitFrontmatter(content string) (map[string]any, string, error) {
	trimmed := strings.TrimLeft(content, "\n")
	if !strings.HasPrefix(trimmed, "---") {
		return map[string]any{}, content, nil
	}

	lines := strings.Split(trimmed, "\n")
	end := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			end = i
			break
		}
	}
	if end == -1 {
		return map[string]any{}, content, nil
	}

	yamlBlock := strings.Join(lines[1:end], "\n")
	body := strings.Join(lines[end+1:], "\n")

	raw := map[string]any{}
	if strings.TrimSpace(yamlBlock) != "" {
		if err := yaml.Unmarshal([]byte(yamlBlock), &raw); err != nil {
			return nil, "", err
		}
	}

	normalized := make(map[string]any, len(raw))
	for k, v := range raw {
		normalized[stringutil.NormalizeFrontmatterKey(k)] = v
	}
	return normalized, strings.TrimLeft(body, "\n"), nil
}

// nameFor derives a primitive's logical name: the frontmatter's `name`
// field if present, else the typed-extension-stripped file name, else the
// containing directory name for a SKILL.md.
func nameFor(path string, frontmatter map[string]any, kind Kind) string {
	if raw, ok := frontmatter["name"]; ok {
		if s, ok := raw.(string); ok && s != "" {
			return s
		}
	}
	if kind == KindSkill {
		return filepath.Base(filepath.Dir(path))
	}
	return stringutil.NormalizePrimitiveName(filepath.Base(path))
}
