// SPDX-License-Identifier: MIT
// Copyright (c) 2026 scfmod

package main

import (
	"github.com/spf13/cobra"

	"github.com/scfmod/fs-utils/batch"
	"github.com/scfmod/fs-utils/cli"
	"github.com/scfmod/fs-utils/shapes"
)

var flags cli.Flags

var rootCmd = &cobra.Command{
	Use:   "fs-shapes-unlock <input> [output]",
	Short: "Unlock .i3d.shapes files",
	Long: `fs-shapes-unlock clears the edit-lock flags in .shapes geometry files.
Files that are already unlocked pass through unchanged.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cli.SetupLogging(flags.Silent)

		job := cli.Job{
			Input:      args[0],
			Flags:      flags,
			Extensions: []string{"shapes"},
			Process: func(it *batch.Item) ([]byte, error) {
				data, err := it.Bytes()
				if err != nil {
					return nil, err
				}

				if _, err := shapes.Unlock(data); err != nil {
					return nil, err
				}

				return data, nil
			},
		}
		if len(args) == 2 {
			job.Output = args[1]
		}

		return cli.RunJob(cmd.Context(), job)
	},
}

func init() {
	flags.Register(rootCmd)
}

func main() {
	cli.Execute(rootCmd)
}
