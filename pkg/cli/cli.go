// Copyright 2026 The Cockroach Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
// implied. See the License for the specific language governing
// permissions and limitations under the License.

// Package cli implements the hopopt command-line tool, which optimizes hop
// DAGs read from plan files and prints the result.
package cli

import (
	"fmt"
	"os"
	"runtime"
	"text/tabwriter"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// buildTag is set by the linker.
var buildTag = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "output version information",
	Long: `
Output build version information.
`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 1, 2, ' ', 0)
		fmt.Fprintf(tw, "Build Tag:   %s\n", buildTag)
		fmt.Fprintf(tw, "Platform:    %s %s/%s\n", runtime.Compiler, runtime.GOOS, runtime.GOARCH)
		fmt.Fprintf(tw, "Go Version:  %s\n", runtime.Version())
		_ = tw.Flush()
	},
}

var hopoptCmd = &cobra.Command{
	Use:   "hopopt [command] (flags)",
	Short: "optimizer for DAGs of high-level matrix operators",
	Long: `
Reads statement blocks of high-level operators from a YAML plan, eliminates
common subexpressions, assigns block sizes, estimates memory, places every
operator locally or on the distributed engine and reorders matrix
multiplication chains.
`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// isInteractive indicates whether stdout refers to a terminal.
var isInteractive = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

func init() {
	cobra.EnableCommandSorting = false

	hopoptCmd.AddCommand(
		optimizeCmd,
		explainCmd,
		dotCmd,
		versionCmd,
	)
}

// Run executes the command line given by args.
func Run(args []string) error {
	setCLIDefaults()
	hopoptCmd.SetArgs(args)
	return hopoptCmd.Execute()
}

// Main is the entry point of the hopopt binary.
func Main() {
	if err := Run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}
