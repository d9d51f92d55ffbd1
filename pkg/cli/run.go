package cli

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/apm-tool/apm/pkg/result"
)

// RunOptions configures `apm run`.
type RunOptions struct {
	Script string
	Args   []string
}

// RunScript executes rootDir/apm.yml's named scripts entry through the
// shell, streaming its output straight to the current process's streams.
func RunScript(ctx context.Context, rootDir string, opts RunOptions) result.Result[int] {
	manifestRes := loadManifest(rootDir)
	if !manifestRes.Success {
		return result.Fail[int](fmt.Sprintf("reading manifest: %v", manifestRes.Errors))
	}

	command, ok := manifestRes.Value.Scripts[opts.Script]
	if !ok {
		return result.Fail[int](fmt.Sprintf("no script named %q (available: %s)", opts.Script, strings.Join(availableScripts(manifestRes.Value.Scripts), ", ")))
	}

	cliLog.Printf("Running script %q: %s", opts.Script, command)

	args := append([]string{"-c", command, "sh"}, opts.Args...)
	cmd := exec.CommandContext(ctx, "sh", args...)
	cmd.Dir = rootDir
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if ok := asExitError(err, &exitErr); ok {
			return result.Fail[int](fmt.Sprintf("script %q exited with status %d", opts.Script, exitErr.ExitCode()))
		}
		return result.Fail[int](fmt.Sprintf("running script %q: %v", opts.Script, err))
	}

	return result.Ok(0)
}

func asExitError(err error, target **exec.ExitError) bool {
	if ee, ok := err.(*exec.ExitError); ok {
		*target = ee
		return true
	}
	return false
}

func availableScripts(scripts map[string]string) []string {
	names := make([]string, 0, len(scripts))
	for name := range scripts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
