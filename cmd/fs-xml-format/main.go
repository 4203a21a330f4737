// SPDX-License-Identifier: MIT
// Copyright (c) 2026 scfmod

package main

import (
	"github.com/spf13/cobra"

	"github.com/scfmod/fs-utils/batch"
	"github.com/scfmod/fs-utils/cli"
	"github.com/scfmod/fs-utils/xmlfmt"
)

var (
	flags      cli.Flags
	indentChar string
	indentSize int
)

var rootCmd = &cobra.Command{
	Use:   "fs-xml-format <input> [output]",
	Short: "Parse XML and output sane formatted XML",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cli.SetupLogging(flags.Silent)

		char, err := xmlfmt.ParseIndentChar(indentChar)
		if err != nil {
			return err
		}
		opts := xmlfmt.Options{Char: char, Size: indentSize}

		job := cli.Job{
			Input:      args[0],
			Flags:      flags,
			Extensions: []string{"xml"},
			Process: func(it *batch.Item) ([]byte, error) {
				data, err := it.Bytes()
				if err != nil {
					return nil, err
				}

				return xmlfmt.Format(data, opts)
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
	rootCmd.Flags().StringVarP(&indentChar, "indent-char", "c", "space", "indent character (space, tab)")
	rootCmd.Flags().IntVarP(&indentSize, "indent-size", "i", 4, "indent size")
}

func main() {
	cli.Execute(rootCmd)
}
