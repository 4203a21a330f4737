// SPDX-License-Identifier: MIT
// Copyright (c) 2026 scfmod

package main

import (
	"github.com/spf13/cobra"

	"github.com/scfmod/fs-utils/batch"
	"github.com/scfmod/fs-utils/cli"
)

var silent bool

var rootCmd = &cobra.Command{
	Use:   "fs-unpack <archive[/subpath]> [output]",
	Short: "Extract files from a .gar/.dlc archive",
	Long: `fs-unpack extracts a game archive, or a subtree of one, into a directory.
The input may address content inside the archive, e.g. "dataS.gar/scripts".
Output defaults to the current directory.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cli.SetupLogging(silent)

		out := ""
		if len(args) == 2 {
			out = args[1]
		}

		return cli.RunJob(cmd.Context(), cli.Job{
			Input:  args[0],
			Output: out,
			Flags:  cli.Flags{Recursive: true, Silent: silent},
			Process: func(it *batch.Item) ([]byte, error) {
				return it.Bytes()
			},
			RequireItems: true,
		})
	},
}

func init() {
	rootCmd.Flags().BoolVarP(&silent, "silent", "s", false, "suppress per-file output")
}

func main() {
	cli.Execute(rootCmd)
}
