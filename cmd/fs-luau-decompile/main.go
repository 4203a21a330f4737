// SPDX-License-Identifier: MIT
// Copyright (c) 2026 scfmod

package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/scfmod/fs-utils/batch"
	"github.com/scfmod/fs-utils/bytecode"
	"github.com/scfmod/fs-utils/cli"
	"github.com/scfmod/fs-utils/extool"
)

const (
	backendName = "luau-decompiler"
	backendEnv  = "FS_LUAU_DECOMPILER"
)

var (
	flags      cli.Flags
	decodeOnly bool
	lineInfo   bool
)

var rootCmd = &cobra.Command{
	Use:   "fs-luau-decompile <input> [output]",
	Short: "Decode and decompile Luau .l64 bytecode files",
	Long: `fs-luau-decompile decodes the byteshift obfuscation on Luau .l64 files and
runs the external decompiler backend on the result. The input may be a file,
a folder, or a path into a .gar/.dlc archive. Schema stubs (XMLSchema.l64)
are skipped.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cli.SetupLogging(flags.Silent)

		job := cli.Job{
			Input:      args[0],
			Flags:      flags,
			Extensions: []string{"l64"},
			Skip: func(rel string) bool {
				return strings.Contains(filepath.Base(rel), "XMLSchema")
			},
		}
		if len(args) == 2 {
			job.Output = args[1]
		}

		if decodeOnly {
			job.Process = decodeProcessor
		} else {
			tool, err := extool.Find(backendName, backendEnv)
			if err != nil {
				return err
			}

			job.Process = decompileProcessor(cmd.Context(), tool)
			job.OutputName = luaOutputName
		}

		return cli.RunJob(cmd.Context(), job)
	},
}

// decodeProcessor only strips the obfuscation, keeping the .l64 payload.
func decodeProcessor(it *batch.Item) ([]byte, error) {
	data, err := it.Bytes()
	if err != nil {
		return nil, err
	}

	return bytecode.DecodeLuau(data)
}

// decompileProcessor decodes the blob and hands it to the backend through a
// temporary file, returning the backend's stdout as the Lua source.
func decompileProcessor(ctx context.Context, tool *extool.Tool) batch.Process {
	return func(it *batch.Item) ([]byte, error) {
		data, err := it.Bytes()
		if err != nil {
			return nil, err
		}

		decoded, err := bytecode.DecodeLuau(data)
		if err != nil {
			return nil, err
		}

		tmp, err := os.CreateTemp("", "fs-luau-*.l64")
		if err != nil {
			return nil, err
		}
		defer func() { _ = os.Remove(tmp.Name()) }()

		if _, err := tmp.Write(decoded); err != nil {
			_ = tmp.Close()
			return nil, err
		}
		if err := tmp.Close(); err != nil {
			return nil, err
		}

		args := []string{tmp.Name()}
		if lineInfo {
			args = append([]string{"-l"}, args...)
		}

		return tool.Run(ctx, args...)
	}
}

// luaOutputName swaps the .l64 extension for .lua.
func luaOutputName(rel string) string {
	if strings.EqualFold(filepath.Ext(rel), ".l64") {
		return rel[:len(rel)-len(".l64")] + ".lua"
	}

	return rel
}

func init() {
	flags.Register(rootCmd)
	rootCmd.Flags().BoolVarP(&decodeOnly, "decode-only", "d", false, "only decode files")
	rootCmd.Flags().BoolVarP(&lineInfo, "line-info", "l", false, "include line number info for functions when applicable")
}

func main() {
	cli.Execute(rootCmd)
}
