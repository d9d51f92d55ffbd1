package placement

import "testing"

func TestInjectConstitutionAddsBlockWhenAbsent(t *testing.T) {
	out := InjectConstitution("# AGENTS.md\n\nSome content.\n", "Always be helpful.")
	if !containsAll(out, constitutionBeginMarker, constitutionEndMarker, "Always be helpful.") {
		t.Errorf("expected constitution block, got %q", out)
	}
}

func TestInjectConstitutionIsIdempotentWhenHashUnchanged(t *testing.T) {
	first := InjectConstitution("# AGENTS.md\n", "Same content.")
	second := InjectConstitution(first, "Same content.")
	if first != second {
		t.Errorf("expected idempotent injection, got:\n%q\nvs\n%q", first, second)
	}
}

func TestInjectConstitutionReplacesBlockWhenHashChanges(t *testing.T) {
	first := InjectConstitution("# AGENTS.md\n", "Old content.")
	second := InjectConstitution(first, "New content.")
	if containsAll(second, "Old content.") {
		t.Errorf("expected old constitution content to be replaced, got %q", second)
	}
	if !containsAll(second, "New content.") {
		t.Errorf("expected new constitution content, got %q", second)
	}
}

func containsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !contains(s, sub) {
			return false
		}
	}
	return true
}

func contains(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}
