package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/apm-tool/apm/pkg/cli"
	"github.com/apm-tool/apm/pkg/console"
	"github.com/apm-tool/apm/pkg/constants"
)

// Build-time variable set by GoReleaser.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:     constants.CLIExtensionPrefix,
	Short:   "The agent package manager",
	Version: version,
	Long: `apm manages reusable agent primitives — instructions, chatmodes,
context, and skills — shared across projects as versioned packages.

Common Tasks:
  apm init                    Create a starter manifest
  apm install                 Resolve and fetch dependencies
  apm compile                 Generate distributed AGENTS.md files
  apm deps list                View the resolved dependency set
  apm run <script>            Run a script declared in apm.yml

For detailed help on any command, use:
  apm [command] --help`,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

func init() {
	rootCmd.AddGroup(&cobra.Group{ID: "setup", Title: "Setup Commands:"})
	rootCmd.AddGroup(&cobra.Group{ID: "development", Title: "Development Commands:"})
	rootCmd.AddGroup(&cobra.Group{ID: "execution", Title: "Execution Commands:"})

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")
	rootCmd.SetOut(os.Stderr)
	rootCmd.SetVersionTemplate(fmt.Sprintf("%s\n",
		console.FormatInfoMessage(fmt.Sprintf("%s version {{.Version}}", constants.CLIExtensionPrefix))))

	originalHelpFunc := rootCmd.HelpFunc()
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		for _, subCmd := range cmd.Commands() {
			if subCmd.Name() == "completion" {
				subCmd.Hidden = true
			}
		}
		originalHelpFunc(cmd, args)
	})

	customHelpCmd := &cobra.Command{
		Use:   "help [command]",
		Short: "Help about any command",
		Long: `Help provides help for any command in the application.

Use "` + constants.CLIExtensionPrefix + ` help all" to show help for all commands.`,
		Run: func(c *cobra.Command, args []string) {
			if len(args) == 1 && args[0] == "all" {
				fmt.Fprintln(os.Stderr, console.FormatInfoMessage("apm - Complete Command Reference"))
				for _, subCmd := range rootCmd.Commands() {
					if subCmd.Hidden || subCmd.Name() == "help" {
						continue
					}
					fmt.Fprintf(os.Stderr, "\n%s\n\n", console.FormatInfoMessage(fmt.Sprintf("Command: %s %s", constants.CLIExtensionPrefix, subCmd.Name())))
					_ = subCmd.Help()
				}
				return
			}

			cmd, _, e := rootCmd.Find(args)
			if cmd == nil || e != nil {
				fmt.Fprintf(os.Stderr, "Unknown help topic %#q\n", args)
				_ = rootCmd.Usage()
				return
			}
			cmd.InitDefaultHelpFlag()
			_ = cmd.Help()
		},
	}
	rootCmd.SetHelpCommand(customHelpCmd)

	initCmd := cli.NewInitCommand()
	installCmd := cli.NewInstallCommand()
	compileCmd := cli.NewCompileCommand()
	depsCmd := cli.NewDepsCommand()
	runCmd := cli.NewRunCommand()

	initCmd.GroupID = "setup"
	installCmd.GroupID = "setup"
	compileCmd.GroupID = "development"
	depsCmd.GroupID = "development"
	runCmd.GroupID = "execution"

	rootCmd.AddCommand(initCmd, installCmd, compileCmd, depsCmd, runCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, console.FormatErrorMessage(err.Error()))
		os.Exit(1)
	}
}
