package sync

import (
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/apm-tool/apm/pkg/constants"
)

// rekeyCommand re-renders a command file's frontmatter keeping only
// constants.CommandFrontmatterKeys and copying the body unmodified, per
// spec.md §4.5's command integration rule. A file with no frontmatter block
// is returned unchanged.
func rekeyCommand(content string) (string, error) {
	frontmatter, body, ok := splitCommandFrontmatter(content)
	if !ok {
		return content, nil
	}

	kept := make(map[string]any, len(constants.CommandFrontmatterKeys))
	for _, key := range constants.CommandFrontmatterKeys {
		if v, ok := frontmatter[key]; ok {
			kept[key] = v
		}
	}
	if len(kept) == 0 {
		return body, nil
	}

	rekeyed, err := yaml.Marshal(kept)
	if err != nil {
		return "", err
	}
	return "---\n" + string(rekeyed) + "---\n" + body, nil
}

// splitCommandFrontmatter is the same "^---" / "\n---\n" split the primitive
// engine uses, duplicated here rather than imported: C5's command re-key is
// a standalone one-shot transform over raw package file content, not over a
// discovered primitive/* shape.
func splitCommandFrontmatter(content string) (map[string]any, string, bool) {
	trimmed := strings.TrimLeft(content, "\n")
	if !strings.HasPrefix(trimmed, "---") {
		return nil, content, false
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
		return nil, content, false
	}

	yamlBlock := strings.Join(lines[1:end], "\n")
	body := strings.TrimLeft(strings.Join(lines[end+1:], "\n"), "\n")

	raw := map[string]any{}
	if strings.TrimSpace(yamlBlock) != "" {
		if err := yaml.Unmarshal([]byte(yamlBlock), &raw); err != nil {
			return nil, content, false
		}
	}
	return raw, body, true
}
