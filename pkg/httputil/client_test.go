package httputil

import (
	"testing"
	"time"
)

func TestNewClientDefaults(t *testing.T) {
	client := NewClient(nil)
	if client.userAgent != DefaultUserAgent {
		t.Errorf("expected user agent %q, got %q", DefaultUserAgent, client.userAgent)
	}
	if client.httpClient.Timeout != DefaultTimeout {
		t.Errorf("expected timeout %v, got %v", DefaultTimeout, client.httpClient.Timeout)
	}
}

func TestNewClientCustomOptions(t *testing.T) {
	client := NewClient(&ClientOptions{Timeout: 5 * time.Second, UserAgent: "custom-agent"})
	if client.userAgent != "custom-agent" {
		t.Errorf("expected user agent %q, got %q", "custom-agent", client.userAgent)
	}
	if client.httpClient.Timeout != 5*time.Second {
		t.Errorf("expected timeout %v, got %v", 5*time.Second, client.httpClient.Timeout)
	}
}

func TestClientNewRequestSetsUserAgent(t *testing.T) {
	client := NewClient(&ClientOptions{UserAgent: "apm-test"})
	req, err := client.NewRequest("GET", "https://example.com/file")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := req.Header.Get("User-Agent"); got != "apm-test" {
		t.Errorf("expected User-Agent %q, got %q", "apm-test", got)
	}
}

func TestFormatHTTPError(t *testing.T) {
	err := FormatHTTPError(404, []byte("nope"), "fetching owner/repo")
	if err == nil {
		t.Fatal("expected a non-nil error")
	}
}
