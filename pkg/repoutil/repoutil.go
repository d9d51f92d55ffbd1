// Package repoutil provides small, host-agnostic helpers for working with
// repository path segments once a dependency reference has already been
// parsed by pkg/depref. It intentionally knows nothing about hosts, refs,
// or virtual paths — those concerns live in pkg/depref.
package repoutil

import (
	"fmt"
	"strings"
)

// SplitRepoPath splits a repository locator into its path components and
// validates the component count against the expected arity for a host
// family (2 for GitHub-family, 3 for Azure DevOps), per the dependency
// reference grammar's path segmentation rule.
func SplitRepoPath(path string, wantParts int) ([]string, error) {
	parts := strings.Split(path, "/")
	if len(parts) != wantParts {
		return nil, fmt.Errorf("expected %d path component(s), got %d in %q", wantParts, len(parts), path)
	}
	for _, p := range parts {
		if p == "" {
			return nil, fmt.Errorf("empty path component in %q", path)
		}
	}
	return parts, nil
}

// StripGitSuffix removes a trailing ".git" from a repository locator.
func StripGitSuffix(path string) string {
	return strings.TrimSuffix(path, ".git")
}

// StripAzureGitSegment discards an embedded "_git" segment, as in
// "dev.azure.com/org/project/_git/repo", before path components are counted.
func StripAzureGitSegment(path string) string {
	return strings.Replace(path, "/_git/", "/", 1)
}

// SanitizeForFilename converts a repository path (e.g. "owner/repo") into a
// filesystem-safe leaf name by replacing path separators with "-".
func SanitizeForFilename(slug string) string {
	if slug == "" {
		return "package"
	}
	return strings.ReplaceAll(slug, "/", "-")
}
