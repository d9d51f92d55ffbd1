package placement

import (
	"testing"

	"github.com/apm-tool/apm/pkg/primitive"
)

func TestResolveLinksRewritesKnownContextReference(t *testing.T) {
	ctxPrims := []primitive.Primitive{
		{Kind: primitive.KindContext, Name: "architecture", FilePath: "apm_modules/owner/repo/architecture.context.md"},
	}
	body := "See [the architecture doc](architecture.context.md) for details."
	out := ResolveLinks(body, ctxPrims, true)
	want := "See [the architecture doc](apm_modules/owner/repo/architecture.context.md) for details."
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestResolveLinksLeavesUnknownReferenceUnchanged(t *testing.T) {
	body := "See [missing](missing.context.md) for details."
	out := ResolveLinks(body, nil, true)
	if out != body {
		t.Errorf("expected unchanged body, got %q", out)
	}
}

func TestResolveLinksDisabledReturnsVerbatim(t *testing.T) {
	ctxPrims := []primitive.Primitive{
		{Kind: primitive.KindContext, Name: "architecture", FilePath: "elsewhere.md"},
	}
	body := "See [doc](architecture.context.md)."
	out := ResolveLinks(body, ctxPrims, false)
	if out != body {
		t.Errorf("expected verbatim body when disabled, got %q", out)
	}
}
