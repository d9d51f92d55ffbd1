package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/apm-tool/apm/pkg/console"
)

func currentDir() string {
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}

func fail(err string) {
	fmt.Fprintln(os.Stderr, console.FormatErrorMessage(err))
	os.Exit(1)
}

func warnAll(warnings []string) {
	for _, w := range warnings {
		fmt.Fprintln(os.Stderr, console.FormatWarningMessage(w))
	}
}

// NewInitCommand creates `apm init`.
func NewInitCommand() *cobra.Command {
	var name, description string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a starter apm.yml in the current directory",
		Long: `Create a starter apm.yml package manifest in the current directory.

Examples:
  apm init
  apm init --name my-package --description "Shared review instructions"`,
		Run: func(cmd *cobra.Command, args []string) {
			res := RunInit(currentDir(), InitOptions{Name: name, Description: description})
			warnAll(res.Warnings)
			if !res.Success {
				fail(fmt.Sprintf("%v", res.Errors))
			}
			fmt.Fprintln(os.Stderr, console.FormatSuccessMessage(fmt.Sprintf("Wrote %s", res.Value)))
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "package name (defaults to the directory name)")
	cmd.Flags().StringVar(&description, "description", "", "package description")
	return cmd
}

// NewInstallCommand creates `apm install`.
func NewInstallCommand() *cobra.Command {
	var frozen, dryRun bool
	var target string
	cmd := &cobra.Command{
		Use:   "install [package...]",
		Short: "Resolve and fetch declared dependencies, then synchronize the integration layout",
		Long: `Resolve apm.yml's declared dependencies transitively, clone each into
apm_modules, write apm.lock, and synchronize prompts, agents, commands, and
skills into the detected editor's managed directories.

Examples:
  apm install
  apm install github.com/org/review-pack
  apm install --frozen
  apm install --dry-run`,
		Run: func(cmd *cobra.Command, args []string) {
			res := RunInstall(context.Background(), currentDir(), InstallOptions{
				Packages: args,
				Frozen:   frozen,
				DryRun:   dryRun,
				Target:   target,
			})
			warnAll(res.Warnings)
			if !res.Success {
				fail(fmt.Sprintf("%v", res.Errors))
			}
			if res.Value.LockPath != "" {
				fmt.Fprintln(os.Stderr, console.FormatSuccessMessage(fmt.Sprintf("Wrote %s", res.Value.LockPath)))
			}
			fmt.Fprintln(os.Stderr, console.FormatSuccessMessage(fmt.Sprintf("Synchronized %d file(s)", len(res.Value.SyncReport.Written))))
		},
	}
	cmd.Flags().BoolVar(&frozen, "frozen", false, "resolve purely from apm.lock, performing no network access")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "resolve and report without writing apm.lock or syncing")
	cmd.Flags().StringVar(&target, "target", "", "override target detection: vscode|claude|all|minimal")
	return cmd
}

// NewCompileCommand creates `apm compile`.
func NewCompileCommand() *cobra.Command {
	var target, strategy string
	var singleAgents, dryRun, noConstitution, noLinks, clean bool
	var minInstructions int
	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile discovered instructions into distributed AGENTS.md files",
		Long: `Rebuild the frozen dependency graph, discover every instruction, chatmode,
context, and skill primitive across the local project and installed
packages, and run the distributed placement compiler.

Examples:
  apm compile
  apm compile --single-agents
  apm compile --dry-run --verbose
  apm compile --clean`,
		Run: func(cmd *cobra.Command, args []string) {
			res := RunCompile(currentDir(), CompileOptions{
				Target:          target,
				Strategy:        strategy,
				SingleAgents:    singleAgents,
				DryRun:          dryRun,
				NoConstitution:  noConstitution,
				NoLinks:         noLinks,
				Clean:           clean,
				MinInstructions: minInstructions,
			})
			warnAll(res.Warnings)
			if !res.Success {
				fail(fmt.Sprintf("%v", res.Errors))
			}
			for _, path := range res.Value.Written {
				fmt.Fprintln(os.Stderr, console.FormatListItem(path))
			}
			if len(res.Value.CoverageGlobs) > 0 {
				fmt.Fprintln(os.Stderr, console.FormatInfoMessage(fmt.Sprintf("Root coverage copy required for: %v", res.Value.CoverageGlobs)))
			}
		},
	}
	cmd.Flags().StringVar(&target, "target", "", "override target detection: vscode|claude|all|minimal")
	cmd.Flags().StringVar(&strategy, "strategy", "", "compilation strategy: distributed|single")
	cmd.Flags().BoolVar(&singleAgents, "single-agents", false, "shorthand for --strategy single")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report what would be written without writing it")
	cmd.Flags().BoolVar(&noConstitution, "no-constitution", false, "skip constitution.md injection")
	cmd.Flags().BoolVar(&noLinks, "no-links", false, "skip context/memory link resolution")
	cmd.Flags().BoolVar(&clean, "clean", false, "remove apm-generated AGENTS.md files before recompiling")
	cmd.Flags().IntVar(&minInstructions, "min-instructions-per-file", 0, "fold directories below this instruction count into their parent")
	return cmd
}

// NewDepsCommand creates the `apm deps` command group.
func NewDepsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deps",
		Short: "Inspect and manage resolved dependencies",
	}
	cmd.AddCommand(newDepsListCommand(), newDepsTreeCommand(), newDepsVerifyCommand(), newDepsUninstallCommand())
	return cmd
}

func newDepsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every resolved dependency",
		Run: func(cmd *cobra.Command, args []string) {
			res := RunDepsList(currentDir())
			if !res.Success {
				fail(fmt.Sprintf("%v", res.Errors))
			}
			for _, e := range res.Value {
				fmt.Fprintln(os.Stderr, console.FormatListItem(fmt.Sprintf("%s@%s (depth %d, via %s)", e.CanonicalKey, e.Ref, e.Depth, e.DeclaredBy)))
			}
		},
	}
}

func newDepsTreeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tree",
		Short: "Render the dependency graph as a tree",
		Run: func(cmd *cobra.Command, args []string) {
			res := RunDepsTree(currentDir())
			if !res.Success {
				fail(fmt.Sprintf("%v", res.Errors))
			}
			for _, n := range res.Value {
				fmt.Fprintln(os.Stderr, fmt.Sprintf("%s%s", indentFor(n.Depth), n.CanonicalKey))
			}
		},
	}
}

func indentFor(depth int) string {
	indent := ""
	for i := 0; i < depth; i++ {
		indent += "  "
	}
	return indent
}

func newDepsVerifyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check the lockfile against apm.yml and apm_modules",
		Run: func(cmd *cobra.Command, args []string) {
			res := RunDepsVerify(currentDir())
			warnAll(res.Warnings)
			if !res.Success {
				fail(fmt.Sprintf("%v", res.Errors))
			}
			if res.Value.OK() {
				fmt.Fprintln(os.Stderr, console.FormatSuccessMessage("apm.lock matches apm.yml and apm_modules"))
				return
			}
			os.Exit(1)
		},
	}
}

func newDepsUninstallCommand() *cobra.Command {
	var yes bool
	var target string
	cmd := &cobra.Command{
		Use:   "uninstall <package>",
		Short: "Remove a declared dependency and resynchronize",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			res := RunDepsUninstall(currentDir(), UninstallOptions{Package: args[0], Yes: yes, Target: target})
			warnAll(res.Warnings)
			if !res.Success {
				fail(fmt.Sprintf("%v", res.Errors))
			}
			fmt.Fprintln(os.Stderr, console.FormatSuccessMessage(fmt.Sprintf("Removed %s", args[0])))
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the interactive confirmation")
	cmd.Flags().StringVar(&target, "target", "", "override target detection: vscode|claude|all|minimal")
	return cmd
}

// NewRunCommand creates `apm run`.
func NewRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <script> [args...]",
		Short: "Run a script declared in apm.yml's scripts block",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			res := RunScript(context.Background(), currentDir(), RunOptions{Script: args[0], Args: args[1:]})
			if !res.Success {
				fail(fmt.Sprintf("%v", res.Errors))
			}
		},
	}
	return cmd
}
