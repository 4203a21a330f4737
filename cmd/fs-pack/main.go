// SPDX-License-Identifier: MIT
// Copyright (c) 2026 scfmod

package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/woozymasta/pathrules"

	"github.com/scfmod/fs-utils/cli"
	"github.com/scfmod/fs-utils/gar"
)

var (
	silent   bool
	dlc      bool
	method   string
	compress []string
)

var rootCmd = &cobra.Command{
	Use:   "fs-pack <folder> <archive>",
	Short: "Build a .gar/.dlc archive from a folder",
	Long: `fs-pack writes every file under the given folder into a new archive,
preserving relative paths. Entries matching a --compress pattern are stored
compressed when that shrinks them.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cli.SetupLogging(silent)
		container := args[1]

		inputs, err := collectInputs(args[0])
		if err != nil {
			return err
		}

		opts := gar.PackOptions{DLC: dlc}
		for _, pattern := range compress {
			opts.Compress = append(opts.Compress, pathrules.Rule{
				Action:  pathrules.ActionInclude,
				Pattern: pattern,
			})
		}

		switch method {
		case "lzss", "":
			opts.Method = gar.CompressionLZSS
		case "lz4":
			opts.Method = gar.CompressionLZ4
		default:
			return fmt.Errorf("unknown compression method %q (want lzss or lz4)", method)
		}

		res, err := gar.PackFile(container, inputs, opts)
		if err != nil {
			return err
		}

		logrus.Infof("wrote %d entries (%d bytes, %d compressed, %d compression candidates stored raw) to %s",
			res.WrittenEntries, res.DataSize, res.CompressedEntries,
			res.SkippedCompressionEntries, container)
		return nil
	},
}

// collectInputs loads every file under root with its slash-relative path.
func collectInputs(root string) ([]gar.Input, error) {
	var inputs []gar.Input

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		inputs = append(inputs, gar.Input{Path: filepath.ToSlash(rel), Data: data})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("collect %s: %w", root, err)
	}

	return inputs, nil
}

func init() {
	rootCmd.Flags().BoolVarP(&silent, "silent", "s", false, "suppress output")
	rootCmd.Flags().BoolVar(&dlc, "dlc", false, "write the DLC container variant")
	rootCmd.Flags().StringVar(&method, "method", "lzss", "compression method (lzss, lz4)")
	rootCmd.Flags().StringArrayVar(&compress, "compress", nil, "glob pattern for entries to compress (repeatable)")
}

func main() {
	cli.Execute(rootCmd)
}
