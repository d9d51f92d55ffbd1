package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/apm-tool/apm/pkg/depref"
	"github.com/apm-tool/apm/pkg/httputil"
	"github.com/apm-tool/apm/pkg/stringutil"
)

// httpClient is shared by every download so timeout and User-Agent stay
// consistent across host families.
var httpClient = httputil.NewClient(&httputil.ClientOptions{UserAgent: "apm-cli"})

// downloadFileHTTP performs the single-file download for both host
// families: GitHub-family raw-content URLs need no auth header for public
// repos and a bearer token otherwise; Azure DevOps Items REST calls use
// basic auth with the PAT as the password, per spec.md §4.1.
func downloadFileHTTP(ctx context.Context, rawURL, token string, ref depref.DependencyRef, destPath string) error {
	req, err := httpClient.NewRequest(http.MethodGet, rawURL)
	if err != nil {
		return fmt.Errorf("building request for %s: %w", stringutil.SanitizeURL(rawURL), err)
	}
	req = req.WithContext(ctx)
	if token != "" {
		if ref.IsAzureDevOps {
			req.SetBasicAuth("", token)
		} else {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("requesting %s: %w", stringutil.SanitizeURL(rawURL), err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return fmt.Errorf("not found: %s", stringutil.SanitizeURL(rawURL))
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("authentication required for %s", stringutil.SanitizeURL(rawURL))
	default:
		return fmt.Errorf("unexpected status %d fetching %s", resp.StatusCode, stringutil.SanitizeURL(rawURL))
	}

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", destPath, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("writing %s: %w", destPath, err)
	}
	return nil
}
