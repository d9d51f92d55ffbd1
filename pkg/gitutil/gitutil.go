package gitutil

import "strings"

// IsAuthError checks if an error message indicates an authentication issue,
// across the three host families apm fetches from: GitHub (gh CLI/API),
// GitHub Enterprise, and Azure DevOps. TF400813 is Azure DevOps' own
// not-authorized code, distinct from the generic HTTP 401/403 text the
// other two families return.
func IsAuthError(errMsg string) bool {
	lowerMsg := strings.ToLower(errMsg)
	return strings.Contains(lowerMsg, "gh_token") ||
		strings.Contains(lowerMsg, "github_token") ||
		strings.Contains(lowerMsg, "ado_apm_pat") ||
		strings.Contains(lowerMsg, "tf400813") ||
		strings.Contains(lowerMsg, "bad credentials") ||
		strings.Contains(lowerMsg, "http 401") ||
		strings.Contains(lowerMsg, "http 403") ||
		strings.Contains(lowerMsg, "authentication") ||
		strings.Contains(lowerMsg, "not logged into") ||
		strings.Contains(lowerMsg, "unauthorized") ||
		strings.Contains(lowerMsg, "forbidden") ||
		strings.Contains(lowerMsg, "permission denied")
}

// IsHexString checks if a string contains only hexadecimal characters
// This is used to validate Git commit SHAs and other hexadecimal identifiers
func IsHexString(s string) bool {
	if len(s) == 0 {
		return false
	}
	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') && (c < 'A' || c > 'F') {
			return false
		}
	}
	return true
}
