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
	backendName = "luajit-decompiler"
	backendEnv  = "FS_LUAJIT_DECOMPILER"
)

var flags cli.Flags

var rootCmd = &cobra.Command{
	Use:   "fs-luajit-decompile <input> [output]",
	Short: "Decode and decompile LuaJIT .l64 bytecode files",
	Long: `fs-luajit-decompile decodes the byteshift obfuscation on LuaJIT .l64 files
and runs the external decompiler backend on the result. The input may be a
file, a folder, or a path into a .gar/.dlc archive.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cli.SetupLogging(flags.Silent)

		tool, err := extool.Find(backendName, backendEnv)
		if err != nil {
			return err
		}

		job := cli.Job{
			Input:      args[0],
			Flags:      flags,
			Extensions: []string{"l64"},
			Process:    decompileProcessor(cmd.Context(), tool),
			OutputName: luaOutputName,
		}
		if len(args) == 2 {
			job.Output = args[1]
		}

		return cli.RunJob(cmd.Context(), job)
	},
}

// decompileProcessor decodes the blob in place and hands it to the backend
// through a temporary file, returning the backend's stdout as the Lua source.
func decompileProcessor(ctx context.Context, tool *extool.Tool) batch.Process {
	return func(it *batch.Item) ([]byte, error) {
		data, err := it.Bytes()
		if err != nil {
			return nil, err
		}

		if err := bytecode.DecodeLuaJIT(data); err != nil {
			return nil, err
		}

		tmp, err := os.CreateTemp("", "fs-luajit-*.l64")
		if err != nil {
			return nil, err
		}
		defer func() { _ = os.Remove(tmp.Name()) }()

		if _, err := tmp.Write(data); err != nil {
			_ = tmp.Close()
			return nil, err
		}
		if err := tmp.Close(); err != nil {
			return nil, err
		}

		return tool.Run(ctx, tmp.Name())
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
}

func main() {
	cli.Execute(rootCmd)
}
