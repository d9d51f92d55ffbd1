package manifest

import (
	"encoding/json"
	"fmt"

	"github.com/goccy/go-yaml"
)

// yamlToJSONCompatible decodes YAML content and round-trips it through JSON
// so the jsonschema validator sees plain map[string]any/float64/string
// values rather than YAML-specific node types, mirroring the normalization
// step used for frontmatter schema validation elsewhere in this codebase.
func yamlToJSONCompatible(content []byte, out *any) error {
	var raw any
	if err := yaml.Unmarshal(content, &raw); err != nil {
		return fmt.Errorf("parsing YAML: %w", err)
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("normalizing to JSON: %w", err)
	}
	return json.Unmarshal(data, out)
}
