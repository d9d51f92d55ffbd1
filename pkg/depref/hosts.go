package depref

import (
	"fmt"
	"net/url"
	"strings"
)

// CloneURL builds the HTTPS clone URL for d, injecting token as userinfo
// when non-empty, per spec.md §4.1's URL construction rule.
func (d DependencyRef) CloneURL(token string) string {
	switch d.Family() {
	case FamilyAzureDevOps:
		parts := strings.SplitN(d.RepoPath, "/", 3)
		base := fmt.Sprintf("%s/%s/%s/_git/%s", d.Host, parts[0], parts[1], parts[2])
		if token == "" {
			return "https://" + base
		}
		return fmt.Sprintf("https://%s@%s", url.QueryEscape(token), base)
	default:
		base := fmt.Sprintf("%s/%s", d.Host, d.RepoPath)
		if token == "" {
			return "https://" + base
		}
		return fmt.Sprintf("https://x-access-token:%s@%s", url.QueryEscape(token), base)
	}
}

// SSHURL builds the SSH clone URL for d.
func (d DependencyRef) SSHURL() string {
	switch d.Family() {
	case FamilyAzureDevOps:
		parts := strings.SplitN(d.RepoPath, "/", 3)
		return fmt.Sprintf("git@ssh.%s:v3/%s/%s/%s", d.Host, parts[0], parts[1], parts[2])
	default:
		return fmt.Sprintf("git@%s:%s.git", d.Host, d.RepoPath)
	}
}

// FileURL builds the single-file download URL for repoRelativePath at ref,
// using the raw-content endpoint for GitHub-family hosts and the Items REST
// endpoint (URL-encoded path, versionDescriptor.version query) for Azure
// DevOps, per spec.md §4.1.
func (d DependencyRef) FileURL(repoRelativePath, ref string) string {
	switch d.Family() {
	case FamilyAzureDevOps:
		parts := strings.SplitN(d.RepoPath, "/", 3)
		org, project, repo := parts[0], parts[1], parts[2]
		return fmt.Sprintf(
			"https://%s/%s/%s/_apis/git/repositories/%s/items?path=%s&versionDescriptor.version=%s&api-version=7.1",
			d.Host, org, project, repo,
			url.QueryEscape("/"+repoRelativePath),
			url.QueryEscape(ref),
		)
	default:
		rawHost := "raw.githubusercontent.com"
		if d.Host != "github.com" {
			// GitHub Enterprise exposes raw content under the same host.
			rawHost = d.Host + "/raw"
		}
		return fmt.Sprintf("https://%s/%s/%s/%s", rawHost, d.RepoPath, ref, repoRelativePath)
	}
}
