// Package fetch implements the Fetch Driver: materializing a DependencyRef
// at a specified ref into a local directory, and resolving a ref to a
// commit SHA, against the three supported host families.
package fetch

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/cli/go-gh/v2"

	"github.com/apm-tool/apm/pkg/apmenv"
	"github.com/apm-tool/apm/pkg/depref"
	"github.com/apm-tool/apm/pkg/gitutil"
	"github.com/apm-tool/apm/pkg/logger"
	"github.com/apm-tool/apm/pkg/ratelimit"
	"github.com/apm-tool/apm/pkg/result"
	"github.com/apm-tool/apm/pkg/stringutil"
)

var fetchLog = logger.New("fetch")

// ErrorKind tags a FetchError per the error taxonomy (spec.md §7).
type ErrorKind string

const (
	KindUnreachable  ErrorKind = "Unreachable"
	KindAuthRequired ErrorKind = "AuthRequired"
	KindNoSuchRef    ErrorKind = "NoSuchRef"
	KindNotFound     ErrorKind = "NotFound"
	KindIOError      ErrorKind = "IOError"
)

// FetchError is the typed error every exported C2 operation returns on
// failure.
type FetchError struct {
	Kind    ErrorKind
	Ref     depref.DependencyRef
	Message string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, stringutil.SanitizeURL(e.Message))
}

// ProbeResult is the outcome of resolving a ref to a commit.
type ProbeResult struct {
	CommitSHA string
	RefKind   string
}

// Driver executes C2 operations for a single Environment.
type Driver struct {
	env apmenv.Environment
}

// New constructs a Driver bound to env, from which token selection reads
// GITHUB_APM_PAT/GITHUB_TOKEN/ADO_APM_PAT.
func New(env apmenv.Environment) *Driver {
	return &Driver{env: env}
}

// selectTokens returns the attempt sequence: first no credentials, then the
// strongest available token for the ref's host family, per spec.md §4.2.
func (d *Driver) selectTokens(ref depref.DependencyRef) []string {
	if ref.IsAzureDevOps {
		if t := d.env.AzureDevOpsToken(); t != "" {
			return []string{"", t}
		}
		return []string{""}
	}
	if t := d.env.GitHubToken(); t != "" {
		return []string{"", t}
	}
	return []string{""}
}

// Probe resolves ref.Ref to a commit SHA and classifies its kind, per
// spec.md §4.2's commit-resolution rule.
func (d *Driver) Probe(ctx context.Context, ref depref.DependencyRef) result.Result[ProbeResult] {
	effective := ref.EffectiveRef()
	kind := depref.RefKind(effective)
	fetchLog.Printf("Probing %s at ref %q (kind=%s)", ref.CanonicalKey(), effective, kind)

	if kind == "commit" {
		// Commit refs are accepted verbatim after existence verification is
		// left to the caller's subsequent clone/download attempt.
		return result.Ok(ProbeResult{CommitSHA: strings.ToLower(effective), RefKind: kind})
	}

	sha, err := d.withRetry(ctx, ref, func(token string) (string, error) {
		return lsRemoteSHA(ctx, ref.CloneURL(token), effective)
	})
	if err != nil {
		return result.Fail[ProbeResult](err.Error())
	}
	return result.Ok(ProbeResult{CommitSHA: sha, RefKind: kind})
}

// CloneInto materializes ref at its effective ref into dir, returning the
// commit SHA actually checked out.
func (d *Driver) CloneInto(ctx context.Context, ref depref.DependencyRef, dir string) result.Result[string] {
	effective := ref.EffectiveRef()
	fetchLog.Printf("Cloning %s@%s into %s", ref.CanonicalKey(), effective, dir)

	sha, err := d.withRetry(ctx, ref, func(token string) (string, error) {
		return cloneWithGH(ctx, ref.CloneURL(token), effective, dir)
	})
	if err != nil {
		_ = os.RemoveAll(dir)
		return result.Fail[string](err.Error())
	}
	return result.Ok(sha)
}

// DownloadFile fetches repoRelativePath at ref's effective ref into
// dir/<basename> and returns the written path. It does not resolve or
// return a commit SHA.
func (d *Driver) DownloadFile(ctx context.Context, ref depref.DependencyRef, repoRelativePath, dir string) result.Result[string] {
	effective := ref.EffectiveRef()
	url := ref.FileURL(repoRelativePath, effective)
	fetchLog.Printf("Downloading %s from %s", repoRelativePath, stringutil.SanitizeURL(url))

	destPath := dir + "/" + baseName(repoRelativePath)
	_, err := d.withRetry(ctx, ref, func(token string) (string, error) {
		return "", downloadFileHTTP(ctx, url, token, ref, destPath)
	})
	if err != nil {
		return result.Fail[string](err.Error())
	}
	return result.Ok(destPath)
}

// withRetry implements spec.md §4.2's error policy: a rate-limited,
// exponential-backoff retry budget (drawn from ratelimit.DefaultConfigs,
// keyed by host family) for transient errors, and one additional
// credentialed retry on an authentication-shaped failure.
func (d *Driver) withRetry(ctx context.Context, ref depref.DependencyRef, attempt func(token string) (string, error)) (string, error) {
	opType := ratelimit.OperationGitHubAPI
	if ref.IsAzureDevOps {
		opType = ratelimit.OperationAzureDevOpsAPI
	}

	tokens := d.selectTokens(ref)
	var lastErr error
	for i, token := range tokens {
		sha, err := retryTransient(ctx, opType, attempt, token)
		if err == nil {
			return sha, nil
		}
		lastErr = err
		if !gitutil.IsAuthError(err.Error()) {
			break
		}
		if i == len(tokens)-1 {
			break
		}
		fetchLog.Printf("Authentication-shaped failure, retrying with stronger credentials")
	}
	return "", classify(ref, lastErr)
}

func classify(ref depref.DependencyRef, err error) *FetchError {
	if err == nil {
		return nil
	}
	msg := err.Error()
	kind := KindUnreachable
	switch {
	case gitutil.IsAuthError(msg):
		kind = KindAuthRequired
	case strings.Contains(strings.ToLower(msg), "not found"), strings.Contains(strings.ToLower(msg), "404"):
		kind = KindNotFound
	case strings.Contains(strings.ToLower(msg), "could not find ref"), strings.Contains(strings.ToLower(msg), "couldn't find remote ref"):
		kind = KindNoSuchRef
	}
	return &FetchError{Kind: kind, Ref: ref, Message: msg}
}

func baseName(p string) string {
	if idx := strings.LastIndex(p, "/"); idx >= 0 {
		return p[idx+1:]
	}
	return p
}

func lsRemoteSHA(ctx context.Context, url, ref string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", "ls-remote", url, ref)
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git ls-remote failed for %s: %w", stringutil.SanitizeURL(url), err)
	}
	line := strings.TrimSpace(string(out))
	if line == "" {
		return "", fmt.Errorf("could not find ref %q at %s", ref, stringutil.SanitizeURL(url))
	}
	fields := strings.Fields(line)
	return fields[0], nil
}

func cloneWithGH(ctx context.Context, url, ref, dir string) (string, error) {
	args := []string{"repo", "clone", url, dir}
	if ref != "" {
		args = append(args, "--", "--branch", ref, "--depth", "1")
	}
	// gh.Exec has no context-aware variant in this dependency version;
	// cancellation of the surrounding clone is instead honored by the
	// subsequent context-bound git subprocess call below.
	_, stdErr, err := gh.Exec(args...)
	if err != nil {
		return "", fmt.Errorf("clone failed: %w (stderr: %s)", err, stringutil.SanitizeURL(stdErr.String()))
	}

	cmd := exec.CommandContext(ctx, "git", "rev-parse", "HEAD")
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("failed to resolve HEAD after clone: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}
