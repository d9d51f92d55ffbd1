// Package depref implements the Reference & Host Resolver: parsing a
// dependency string into a canonical DependencyRef, classifying its host
// family, and building the clone/API URLs C2 needs to materialize it.
package depref

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/apm-tool/apm/pkg/apmenv"
	"github.com/apm-tool/apm/pkg/constants"
	"github.com/apm-tool/apm/pkg/gitutil"
	"github.com/apm-tool/apm/pkg/logger"
	"github.com/apm-tool/apm/pkg/repoutil"
	"github.com/apm-tool/apm/pkg/result"
)

var depLog = logger.New("depref")

// HostFamily classifies the Git hosting provider a DependencyRef targets.
type HostFamily int

const (
	// FamilyGitHub covers github.com and GitHub Enterprise (*.ghe.com).
	FamilyGitHub HostFamily = iota
	// FamilyAzureDevOps covers dev.azure.com and *.visualstudio.com.
	FamilyAzureDevOps
)

var repoPathComponentPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// DependencyRef is the canonical, normalized form of a declared dependency.
type DependencyRef struct {
	Host          string
	RepoPath      string // "owner/repo" or "org/project/repo", slash-joined
	Ref           string // branch, tag, or hex commit; "" means unspecified
	Alias         string
	VirtualPath   string
	IsVirtual     bool
	IsAzureDevOps bool
}

// Family reports which host family this ref belongs to.
func (d DependencyRef) Family() HostFamily {
	if d.IsAzureDevOps {
		return FamilyAzureDevOps
	}
	return FamilyGitHub
}

// IsCollection reports whether VirtualPath names a collection manifest.
func (d DependencyRef) IsCollection() bool {
	return strings.Contains(d.VirtualPath, "collections/")
}

// String renders the canonical string form:
// host/repo_path[/virtual_path][#ref][@alias], with the leading "host/"
// omitted when it equals the default host for the ref's family.
func (d DependencyRef) String(defaultHost string) string {
	var b strings.Builder
	if d.Host != defaultHost {
		b.WriteString(d.Host)
		b.WriteString("/")
	}
	b.WriteString(d.RepoPath)
	if d.VirtualPath != "" {
		b.WriteString("/")
		b.WriteString(d.VirtualPath)
	}
	if d.Ref != "" {
		b.WriteString("#")
		b.WriteString(d.Ref)
	}
	if d.Alias != "" {
		b.WriteString("@")
		b.WriteString(d.Alias)
	}
	return b.String()
}

// CanonicalKey is the (host, repo_path, virtual_path) equality/identity key,
// rendered as "host/repo_path/virtual_path" (ending in "/" when there is no
// virtual path). It includes the host, so it is not the same string as
// InstallPath().
func (d DependencyRef) CanonicalKey() string {
	return d.Host + "/" + d.RepoPath + "/" + d.VirtualPath
}

// ErrorKind tags a DepRefError per the error taxonomy (spec.md §7).
type ErrorKind string

const (
	KindInvalidReference        ErrorKind = "InvalidReference"
	KindUnsupportedHost         ErrorKind = "UnsupportedHost"
	KindInvalidVirtualExtension ErrorKind = "InvalidVirtualExtension"
)

// DepRefError is the typed error every exported parse failure returns.
type DepRefError struct {
	Kind    ErrorKind
	Source  string
	Message string
}

func (e *DepRefError) Error() string {
	return fmt.Sprintf("%s: %s (in %q)", e.Kind, e.Message, e.Source)
}

const defaultGitHubHost = "github.com"

// DefaultHost returns the host used when a reference omits one: the
// GITHUB_HOST override if set, else github.com.
func DefaultHost(env apmenv.Environment) string {
	if h := env.GitHubHost(); h != "" {
		return h
	}
	return defaultGitHubHost
}

// isSupportedHost implements the supported-host predicate of spec.md §4.1.
func isSupportedHost(host string, env apmenv.Environment) bool {
	if host == "github.com" {
		return true
	}
	if strings.HasSuffix(host, ".ghe.com") {
		return true
	}
	if host == "dev.azure.com" {
		return true
	}
	if strings.HasSuffix(host, ".visualstudio.com") {
		return true
	}
	if override := env.GitHubHost(); override != "" && override == host {
		return true
	}
	return false
}

func isAzureDevOpsHost(host string) bool {
	return host == "dev.azure.com" || strings.HasSuffix(host, ".visualstudio.com")
}

var sshHostPattern = regexp.MustCompile(`^git@([^:]+):(.+)$`)
var refAliasSplitPattern = regexp.MustCompile(`^(.*)@([A-Za-z0-9._-]+)$`)

// ParseDependencyRef parses a dependency string into a canonical
// DependencyRef, following the grammar of spec.md §4.1.
func ParseDependencyRef(s string, env apmenv.Environment) result.Result[DependencyRef] {
	depLog.Printf("Parsing dependency reference: %q", s)
	original := s
	rest := strings.TrimSpace(s)
	if rest == "" {
		return failInvalid(original, "empty dependency reference")
	}

	var alias string
	if m := sshHostPattern.FindStringSubmatch(rest); m == nil {
		if m := refAliasSplitPattern.FindStringSubmatch(rest); m != nil {
			rest, alias = m[1], m[2]
		}
	}

	var ref string
	if idx := strings.LastIndex(rest, "#"); idx >= 0 {
		ref, rest = rest[idx+1:], rest[:idx]
	}

	host, locator, err := splitHostAndLocator(rest, env)
	if err != nil {
		return failInvalid(original, err.Error())
	}
	if !isSupportedHost(host, env) {
		return result.Fail[DependencyRef](fmt.Sprintf(
			"%s: host %q is not one of github.com, *.ghe.com, dev.azure.com, *.visualstudio.com; set GITHUB_HOST to allow it (in %q)",
			KindUnsupportedHost, host, original))
	}

	isADO := isAzureDevOpsHost(host)
	locator = repoutil.StripGitSuffix(locator)
	if isADO {
		locator = repoutil.StripAzureGitSegment(locator)
	}

	wantParts := 2
	if isADO {
		wantParts = 3
	}
	segments := strings.Split(locator, "/")
	if len(segments) < wantParts {
		return failInvalid(original, fmt.Sprintf("expected at least %d path component(s), got %d", wantParts, len(segments)))
	}
	repoSegments := segments[:wantParts]
	for _, seg := range repoSegments {
		if !repoPathComponentPattern.MatchString(seg) {
			return failInvalid(original, fmt.Sprintf("invalid repository path component %q", seg))
		}
	}
	virtualPath := strings.Join(segments[wantParts:], "/")

	isVirtual, vErr := classifyVirtualPath(virtualPath)
	if vErr != nil {
		return result.Fail[DependencyRef](fmt.Sprintf("%s: %s (in %q)", KindInvalidVirtualExtension, vErr.Error(), original))
	}

	ref = strings.TrimSpace(ref)

	d := DependencyRef{
		Host:          host,
		RepoPath:      strings.Join(repoSegments, "/"),
		Ref:           ref,
		Alias:         alias,
		VirtualPath:   virtualPath,
		IsVirtual:     isVirtual,
		IsAzureDevOps: isADO,
	}
	return result.Ok(d)
}

func failInvalid(source, msg string) result.Result[DependencyRef] {
	return result.Fail[DependencyRef](fmt.Sprintf("%s: %s (in %q)", KindInvalidReference, msg, source))
}

// splitHostAndLocator implements host recognition steps 1-4 of spec.md §4.1.
func splitHostAndLocator(rest string, env apmenv.Environment) (host, locator string, err error) {
	if m := sshHostPattern.FindStringSubmatch(rest); m != nil {
		host = m[1]
		locator = strings.TrimSuffix(m[2], ".git")
		return host, locator, nil
	}

	if strings.HasPrefix(rest, "https://") || strings.HasPrefix(rest, "http://") {
		withoutScheme := rest[strings.Index(rest, "://")+3:]
		slash := strings.Index(withoutScheme, "/")
		if slash < 0 {
			return "", "", fmt.Errorf("URL %q has no path", rest)
		}
		host = withoutScheme[:slash]
		locator = strings.TrimPrefix(withoutScheme[slash:], "/")
		locator = strings.TrimSuffix(locator, ".git")
		return host, locator, nil
	}

	firstSlash := strings.Index(rest, "/")
	if firstSlash > 0 {
		firstSegment := rest[:firstSlash]
		if strings.Contains(firstSegment, ".") {
			return firstSegment, rest[firstSlash+1:], nil
		}
	}

	return DefaultHost(env), rest, nil
}

// classifyVirtualPath implements the virtual-path validation rule of
// spec.md §4.1: returns whether the path marks a single-file/collection
// package (true) or a sub-directory package or no virtual path at all
// (false).
func classifyVirtualPath(vPath string) (isVirtual bool, err error) {
	if vPath == "" {
		return false, nil
	}
	if strings.Contains(vPath, "collections/") {
		return true, nil
	}
	final := vPath
	if idx := strings.LastIndex(vPath, "/"); idx >= 0 {
		final = vPath[idx+1:]
	}
	for _, typed := range constants.TypedPrimitiveExtensions {
		if strings.HasSuffix(final, typed) {
			return true, nil
		}
	}
	if strings.Contains(final, ".") {
		return false, fmt.Errorf("virtual path %q has an unrecognized extension; permitted: %s",
			vPath, strings.Join(constants.TypedPrimitiveExtensions, ", "))
	}
	return false, nil
}

// RefKind classifies ref per spec.md §4.2's commit/tag/branch rule, reusing
// gitutil's hex-string check for the commit case.
func RefKind(ref string) string {
	if ref == "" {
		return "branch"
	}
	if (len(ref) >= 7 && len(ref) <= 40) && gitutil.IsHexString(ref) {
		return "commit"
	}
	if semverTagPattern.MatchString(ref) {
		return "tag"
	}
	return "branch"
}

var semverTagPattern = regexp.MustCompile(`^v?\d+\.\d+\.\d+`)

// EffectiveRef returns the ref to use, defaulting to constants.DefaultRef.
func (d DependencyRef) EffectiveRef() string {
	if d.Ref == "" {
		return constants.DefaultRef
	}
	return d.Ref
}

// InstallPath derives the canonical on-disk location under apm_modules/ for
// this reference, per spec.md §4.1's install path rule.
func (d DependencyRef) InstallPath() string {
	segments := strings.Split(d.RepoPath, "/")
	if d.VirtualPath == "" {
		return strings.Join(segments, "/")
	}
	if d.IsVirtual && !d.IsCollection() {
		final := d.VirtualPath
		if idx := strings.LastIndex(final, "/"); idx >= 0 {
			final = final[idx+1:]
		}
		leaf := repoutil.SanitizeForFilename(segments[len(segments)-1]) + "-" + stripTypedExtension(final)
		return strings.Join(append(append([]string{}, segments[:len(segments)-1]...), leaf), "/")
	}
	return strings.Join(append(append([]string{}, segments...), strings.Split(d.VirtualPath, "/")...), "/")
}

func stripTypedExtension(name string) string {
	for _, typed := range constants.TypedPrimitiveExtensions {
		if strings.HasSuffix(name, typed) {
			return strings.TrimSuffix(name, typed)
		}
	}
	return name
}
