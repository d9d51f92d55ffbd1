package placement

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

const buildIDTrailerPrefix = "<!-- apm:build-id:"

// RenderAgentsFile produces the AGENTS.md content for dir's instructions:
// a deterministic header, instructions grouped by applyTo pattern (each
// group sorted by source file path), and a trailing build-ID comment.
// The build ID is the first 12 hex characters of SHA-256 over the
// rendered content with the build-ID line itself elided, per spec.md
// §4.4. crypto/sha256 is the correct, justified stdlib choice here: no
// hashing library in the dependency closure improves on it for a one-shot
// content digest.
func RenderAgentsFile(dir string, instructions []Instruction) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<!-- Generated by apm. Do not edit directly; re-run `apm compile`. -->\n")
	fmt.Fprintf(&b, "# AGENTS.md (%s)\n\n", displayDir(dir))

	groups := groupByApplyTo(instructions)
	patterns := make([]string, 0, len(groups))
	for p := range groups {
		patterns = append(patterns, p)
	}
	sort.Strings(patterns)

	for _, pattern := range patterns {
		fmt.Fprintf(&b, "## Applies to `%s`\n\n", pattern)
		group := groups[pattern]
		sort.Slice(group, func(i, j int) bool { return group[i].FilePath < group[j].FilePath })
		for _, instr := range group {
			fmt.Fprintf(&b, "### %s\n\n", instr.Name)
			if instr.Description != "" {
				fmt.Fprintf(&b, "%s\n\n", instr.Description)
			}
			fmt.Fprintf(&b, "%s\n\n", strings.TrimRight(instr.Body, "\n"))
		}
	}

	content := b.String()
	buildID := buildIDFor(content)
	fmt.Fprintf(&b, "%s %s -->\n", buildIDTrailerPrefix, buildID)
	return b.String()
}

func displayDir(dir string) string {
	if dir == "." {
		return "project root"
	}
	return dir
}

func groupByApplyTo(instructions []Instruction) map[string][]Instruction {
	groups := map[string][]Instruction{}
	for _, i := range instructions {
		groups[i.ApplyTo] = append(groups[i.ApplyTo], i)
	}
	return groups
}

// buildIDFor computes the first 12 hex characters of SHA-256 over content.
func buildIDFor(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])[:12]
}

// ExtractBuildID returns the build-ID trailer from a previously rendered
// AGENTS.md file's content, or "" if none is present.
func ExtractBuildID(content string) string {
	idx := strings.Index(content, buildIDTrailerPrefix)
	if idx < 0 {
		return ""
	}
	rest := content[idx+len(buildIDTrailerPrefix):]
	rest = strings.TrimSpace(rest)
	rest = strings.TrimSuffix(rest, "-->")
	return strings.TrimSpace(rest)
}
