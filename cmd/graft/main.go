// Package main provides the entry point for the graft CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/graft/cmd/graft/commands"
	"github.com/Sumatoshi-tech/graft/pkg/version"
)

func main() {
	version.InitBinaryVersion()

	rootCmd := &cobra.Command{
		Use:   "graft",
		Short: "graft - idempotent regex-anchored source patching",
		Long: `graft inserts an import line and a hook block into source files at
locations found by regular expression anchors. Files that already carry the
patch are left untouched, so runs can be repeated safely.

Commands:
  apply     Patch files in place
  check     Report files that still need patching
  specs     List, show and validate patch specs
  mcp       Serve graft tools over the Model Context Protocol`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(commands.NewApplyCommand())
	rootCmd.AddCommand(commands.NewCheckCommand())
	rootCmd.AddCommand(commands.NewSpecsCommand())
	rootCmd.AddCommand(commands.NewMCPCommand())
	rootCmd.AddCommand(versionCmd())

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}
