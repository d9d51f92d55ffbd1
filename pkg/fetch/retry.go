package fetch

import (
	"context"
	"strings"
	"time"

	"github.com/apm-tool/apm/pkg/gitutil"
	"github.com/apm-tool/apm/pkg/ratelimit"
)

// retryTransient retries attempt, waiting on opType's shared token bucket
// before each attempt and sleeping the bucket's own backoff curve between
// retries, for errors that look transient (not an auth failure, which
// withRetry handles separately by swapping credentials instead of
// retrying, and not a terminal not-found/no-ref failure that retrying
// can't fix). The retry budget and backoff curve come from
// ratelimit.DefaultConfigs rather than hand-rolled constants, so GitHub and
// Azure DevOps traffic share the same tuning the rest of apm's fetch
// infrastructure uses.
func retryTransient(ctx context.Context, opType ratelimit.OperationType, attempt func(token string) (string, error), token string) (string, error) {
	bucket, err := ratelimit.BucketFor(opType)
	if err != nil {
		return "", err
	}
	maxAttempts := bucket.Config().MaxRetries + 1

	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if err := bucket.Wait(ctx); err != nil {
			return "", err
		}
		sha, err := attempt(token)
		if err == nil {
			return sha, nil
		}
		lastErr = err
		if gitutil.IsAuthError(err.Error()) || isTerminal(err.Error()) {
			return "", err
		}
		if i == maxAttempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(bucket.Backoff(i)):
		}
	}
	return "", lastErr
}

// isTerminal reports whether err looks like a definitive not-found/no-ref
// failure that retrying would not fix.
func isTerminal(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "not found") ||
		strings.Contains(lower, "404") ||
		strings.Contains(lower, "could not find ref") ||
		strings.Contains(lower, "couldn't find remote ref")
}
