package gitutil

import "testing"

func TestIsAuthError(t *testing.T) {
	cases := map[string]bool{
		"HTTP 401: Bad credentials":      true,
		"fatal: Authentication failed":   true,
		"remote: Permission denied":      true,
		"gh_token is required":           true,
		"TF400813: not authorized":       true,
		"ADO_APM_PAT is not set":         true,
		"workflow compiled successfully": false,
	}
	for msg, want := range cases {
		if got := IsAuthError(msg); got != want {
			t.Errorf("IsAuthError(%q) = %v, want %v", msg, got, want)
		}
	}
}

func TestIsHexString(t *testing.T) {
	cases := map[string]bool{
		"deadbeef":     true,
		"DEADBEEF":     true,
		"123abc":       true,
		"":             false,
		"not-hex!":     false,
		"xyz123":       false,
		"0123456789ab": true,
	}
	for s, want := range cases {
		if got := IsHexString(s); got != want {
			t.Errorf("IsHexString(%q) = %v, want %v", s, got, want)
		}
	}
}
