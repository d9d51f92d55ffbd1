// Package apmenv centralizes the environment-variable and working-directory
// reads that would otherwise be scattered ad hoc across the pipeline, per
// the "global mutable state removal" design note: only C1 (default host)
// and C2 (tokens) consult it.
package apmenv

import (
	"io"
	"os"
)

// Environment bundles the process context the pipeline needs, so that no
// other package calls os.Getenv or os.Getwd directly.
type Environment struct {
	WorkDir string
	Stdout  io.Writer
	Stderr  io.Writer

	getenv func(string) string
}

// New builds an Environment from the real process: current working
// directory, os.Stdout/os.Stderr, and os.Getenv.
func New() (Environment, error) {
	wd, err := os.Getwd()
	if err != nil {
		return Environment{}, err
	}
	return Environment{
		WorkDir: wd,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		getenv:  os.Getenv,
	}, nil
}

// NewForTest builds an Environment with an explicit working directory and
// variable table, for use in package tests that must not depend on the
// invoking process's actual environment.
func NewForTest(workDir string, vars map[string]string) Environment {
	return Environment{
		WorkDir: workDir,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
		getenv: func(key string) string {
			return vars[key]
		},
	}
}

func (e Environment) lookup(key string) string {
	if e.getenv == nil {
		return os.Getenv(key)
	}
	return e.getenv(key)
}

// GitHubHost returns the GITHUB_HOST override, or "" if unset.
func (e Environment) GitHubHost() string { return e.lookup("GITHUB_HOST") }

// GitHubToken returns GITHUB_APM_PAT if set, else GITHUB_TOKEN, else "".
func (e Environment) GitHubToken() string {
	if t := e.lookup("GITHUB_APM_PAT"); t != "" {
		return t
	}
	return e.lookup("GITHUB_TOKEN")
}

// AzureDevOpsToken returns ADO_APM_PAT, or "" if unset.
func (e Environment) AzureDevOpsToken() string { return e.lookup("ADO_APM_PAT") }

// DebugEnabled reports whether APM_DEBUG is set to a truthy value.
func (e Environment) DebugEnabled() bool {
	v := e.lookup("APM_DEBUG")
	return v != "" && v != "0"
}
