package stringutil

import "strings"

var typedPrimitiveSuffixes = []string{".prompt.md", ".instructions.md", ".chatmode.md", ".agent.md", ".context.md", ".memory.md"}

// NormalizePrimitiveName strips a primitive's typed markdown extension (or a
// bare .md) from a file name, yielding the identifier used to key it for
// conflict resolution and placement.
//
// The typed suffixes are checked before the bare ".md" suffix since they are
// the more specific match.
//
// Examples:
//
//	NormalizePrimitiveName("reviewer")                  // returns "reviewer"
//	NormalizePrimitiveName("reviewer.md")               // returns "reviewer"
//	NormalizePrimitiveName("reviewer.instructions.md")  // returns "reviewer"
//	NormalizePrimitiveName("my.chatmode.md")            // returns "my"
func NormalizePrimitiveName(name string) string {
	for _, suffix := range typedPrimitiveSuffixes {
		if strings.HasSuffix(name, suffix) {
			return strings.TrimSuffix(name, suffix)
		}
	}
	return strings.TrimSuffix(name, ".md")
}

// NormalizeFrontmatterKey converts dashes to underscores for frontmatter
// keys read through Go struct fields, standardizing the user-facing
// dash-separated format to the internal lookup format.
//
// This function performs normalization only - it assumes the input is
// already a valid key and does NOT perform character validation.
//
// Examples:
//
//	NormalizeFrontmatterKey("argument-hint")  // returns "argument_hint"
//	NormalizeFrontmatterKey("allowed_tools")  // returns "allowed_tools" (unchanged)
func NormalizeFrontmatterKey(key string) string {
	return strings.ReplaceAll(key, "-", "_")
}
