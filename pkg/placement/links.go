package placement

import (
	"path"
	"regexp"

	"github.com/apm-tool/apm/pkg/primitive"
)

var contextLinkPattern = regexp.MustCompile(`\[([^\]]*)\]\(([^)]+\.(?:context|memory)\.md)\)`)

// ResolveLinks rewrites markdown links to context/memory primitives in
// body so they point at the actual on-disk path of the winning Context
// primitive with that link target's base name, per spec.md §4.4's link
// resolution rule. Links with no matching Context primitive are left
// unchanged. When resolveLinks is false, body is returned verbatim.
func ResolveLinks(body string, contextPrimitives []primitive.Primitive, resolveLinks bool) string {
	if !resolveLinks {
		return body
	}

	byName := make(map[string]string, len(contextPrimitives))
	for _, p := range contextPrimitives {
		byName[p.Name] = p.FilePath
	}

	return contextLinkPattern.ReplaceAllStringFunc(body, func(match string) string {
		sub := contextLinkPattern.FindStringSubmatch(match)
		text, target := sub[1], sub[2]
		name := stripContextExtension(path.Base(target))
		actual, ok := byName[name]
		if !ok {
			return match
		}
		return "[" + text + "](" + actual + ")"
	})
}

func stripContextExtension(name string) string {
	for _, suffix := range []string{".context.md", ".memory.md"} {
		if len(name) > len(suffix) && name[len(name)-len(suffix):] == suffix {
			return name[:len(name)-len(suffix)]
		}
	}
	return name
}
