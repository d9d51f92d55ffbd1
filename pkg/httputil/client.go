// Package httputil provides a configured HTTP client shared by every
// fetch path, so every outbound request carries the same timeout and
// identifying User-Agent regardless of host family.
package httputil

import (
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTimeout bounds a single request, including any redirects.
const DefaultTimeout = 30 * time.Second

// DefaultUserAgent identifies apm to the remote host.
const DefaultUserAgent = "apm-cli"

// ClientOptions configures Client. Zero values fall back to the defaults.
type ClientOptions struct {
	Timeout   time.Duration
	UserAgent string
}

// Client wraps http.Client with apm's standard timeout and User-Agent.
type Client struct {
	httpClient *http.Client
	userAgent  string
}

// NewClient builds a Client from opts, or from the defaults if opts is nil.
func NewClient(opts *ClientOptions) *Client {
	timeout := DefaultTimeout
	userAgent := DefaultUserAgent
	if opts != nil {
		if opts.Timeout > 0 {
			timeout = opts.Timeout
		}
		if opts.UserAgent != "" {
			userAgent = opts.UserAgent
		}
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  userAgent,
	}
}

// NewRequest builds a GET/HEAD-style request carrying the client's
// User-Agent. Callers needing cancellation should attach a context via
// req.WithContext before calling Do.
func (c *Client) NewRequest(method, url string) (*http.Request, error) {
	req, err := http.NewRequest(method, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	return req, nil
}

// Do executes req with the client's configured timeout.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.httpClient.Do(req)
}

// FormatHTTPError builds a descriptive error for a non-2xx response,
// naming the operation that failed in context.
func FormatHTTPError(statusCode int, body []byte, context string) error {
	switch statusCode {
	case http.StatusForbidden:
		return fmt.Errorf("%s access forbidden (403): %s", context, body)
	case http.StatusUnauthorized:
		return fmt.Errorf("%s access unauthorized (401): %s", context, body)
	case http.StatusNotFound:
		return fmt.Errorf("%s endpoint not found (404): %s", context, body)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%s rate limit exceeded (429): %s", context, body)
	default:
		return fmt.Errorf("%s returned status %d: %s", context, statusCode, body)
	}
}

// ReadResponseBody reads resp.Body in full. The caller remains responsible
// for closing it.
func ReadResponseBody(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}
