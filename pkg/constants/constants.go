// Package constants centralizes the literal values that describe APM's
// on-disk layout and default behavior, so that no other package hard-codes
// a path fragment or default host.
package constants

// CLIExtensionPrefix is the prefix used in user-facing output to refer to the CLI.
const CLIExtensionPrefix = "apm"

// ManifestFileName is the name of a package's declarative manifest.
const ManifestFileName = "apm.yml"

// LockFileName is the name of the resolver's lockfile.
const LockFileName = "apm.lock"

// ModulesDirName is the directory under the project root that holds the
// materialized transitive closure of installed packages.
const ModulesDirName = "apm_modules"

// AgentsFileName is the aggregated markdown file name emitted by the compiler.
const AgentsFileName = "AGENTS.md"

// ClaudeFileName is the Claude-specific mirror of the root AGENTS.md.
const ClaudeFileName = "CLAUDE.md"

// LockFileVersion is the current schema version written into apm.lock.
const LockFileVersion = "1"

// DefaultRef is the branch used when a dependency reference omits one.
const DefaultRef = "main"

// ManagedInfix is inserted immediately before a synced file's typed extension
// so that APM-owned files can never collide with user-authored ones.
const ManagedInfix = "-apm"

// DefaultAPMVersion is reported in apm.lock when no build-time version is injected.
var DefaultAPMVersion = "dev"

// SkipDirs are directories local primitive discovery never recurses into.
var SkipDirs = []string{".git", "node_modules", ".apm/compiled", ModulesDirName}

// TypedPrimitiveExtensions are the markdown suffixes that mark a virtual_path
// as a single-file package, per the dependency reference grammar.
var TypedPrimitiveExtensions = []string{
	".prompt.md",
	".instructions.md",
	".chatmode.md",
	".agent.md",
}

// ManagedPromptsDir is where prompt primitives are synced for VS Code-family tooling.
const ManagedPromptsDir = ".github/prompts"

// ManagedAgentsDir is where chatmode/agent primitives are synced for VS Code-family tooling.
const ManagedAgentsDir = ".github/agents"

// ManagedSkillsDirVSCode is where skills are synced for VS Code-family tooling.
const ManagedSkillsDirVSCode = ".github/skills"

// ManagedCommandsDir is where command primitives are synced for Claude.
const ManagedCommandsDir = ".claude/commands"

// ManagedSkillsDirClaude is where skills are synced for Claude.
const ManagedSkillsDirClaude = ".claude/skills"

// CommandFrontmatterKeys are the only frontmatter fields preserved when a
// command primitive is re-keyed for Claude integration; every other field is dropped.
var CommandFrontmatterKeys = []string{"allowed-tools", "argument-hint", "description", "model"}
