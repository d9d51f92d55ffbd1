package placement

import "testing"

func TestLowestCommonAncestorOfSiblings(t *testing.T) {
	got := lowestCommonAncestor([]string{"a/b", "a/c"})
	if got != "a" {
		t.Errorf("got %q", got)
	}
}

func TestLowestCommonAncestorOfSingleDir(t *testing.T) {
	got := lowestCommonAncestor([]string{"a/b/c"})
	if got != "a/b/c" {
		t.Errorf("got %q", got)
	}
}

func TestLowestCommonAncestorOfUnrelatedDirsIsRoot(t *testing.T) {
	got := lowestCommonAncestor([]string{"a/b", "x/y"})
	if got != "." {
		t.Errorf("got %q", got)
	}
}

func TestLowestCommonAncestorOfEmptySetIsRoot(t *testing.T) {
	if got := lowestCommonAncestor(nil); got != "." {
		t.Errorf("got %q", got)
	}
}

func TestIsAncestor(t *testing.T) {
	cases := []struct {
		ancestor, dir string
		want          bool
	}{
		{".", "a", true},
		{".", ".", false},
		{"a", "a/b", true},
		{"a", "a", false},
		{"a/b", "a/c", false},
	}
	for _, c := range cases {
		if got := isAncestor(c.ancestor, c.dir); got != c.want {
			t.Errorf("isAncestor(%q, %q) = %v, want %v", c.ancestor, c.dir, got, c.want)
		}
	}
}
