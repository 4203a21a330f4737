// SPDX-License-Identifier: MIT
// Copyright (c) 2026 scfmod

// Package cli carries the flag surface, logging setup and batch runner
// shared by the fs-* tools.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/scfmod/fs-utils/batch"
	"github.com/scfmod/fs-utils/garpath"
	"github.com/scfmod/fs-utils/output"
)

// Flags is the option surface every tool shares.
type Flags struct {
	// Recursive descends into subdirectories and container subtrees.
	Recursive bool
	// Silent suppresses per-item and progress logs. Failure summaries
	// still print.
	Silent bool
	// NumThreads is the batch worker count (0 = auto).
	NumThreads int
}

// Register binds the shared flags on cmd.
func (f *Flags) Register(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&f.Recursive, "recursive", "r", false, "process folder input recursively")
	cmd.Flags().BoolVarP(&f.Silent, "silent", "s", false, "suppress per-file output")
	cmd.Flags().IntVar(&f.NumThreads, "num-threads", 0, "worker count when processing folders (0 = auto)")
}

// SetupLogging routes logs to stderr so redirected stdout carries only
// requested output, and applies the silent level cut.
func SetupLogging(silent bool) {
	logrus.SetOutput(os.Stderr)
	if silent {
		logrus.SetLevel(logrus.WarnLevel)
	}
}

// Execute runs cmd and exits non-zero on any error. Wrapping the exit here
// keeps deferred cleanup in RunE paths working.
func Execute(cmd *cobra.Command) {
	cmd.SilenceUsage = true
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// Job describes one tool invocation: a virtual input path, an optional
// output root and the processor applied to every matched file.
type Job struct {
	// Input is the virtual path to resolve (may reach into a container).
	Input string
	// Output overrides the default output root when non-empty.
	Output string
	// Flags are the shared CLI flags.
	Flags Flags
	// Extensions restricts processing to the given file extensions
	// (without dots). Empty accepts everything.
	Extensions []string
	// Skip drops items by logical path before dispatch (optional).
	Skip func(rel string) bool
	// Process transforms each item. Required.
	Process batch.Process
	// OutputName renames the logical output path (optional).
	OutputName func(rel string) string
	// RequireItems makes a run that enumerates nothing an error. Left
	// unset, zero matched files is a successful no-op.
	RequireItems bool
}

// RunJob resolves the input, runs the batch pipeline over it and logs a
// summary. The returned error is non-nil when resolution fails or any item
// fails, driving the process exit code.
func RunJob(ctx context.Context, job Job) error {
	in, err := garpath.Resolve(job.Input)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", job.Input, err)
	}
	defer func() { _ = in.Close() }()

	if in.Reader != nil {
		for _, dup := range in.Reader.DuplicatePaths() {
			logrus.Warnf("duplicate entry path in container: %s", dup)
		}
	}

	filter, err := batch.NewExtensionMatcher(job.Extensions)
	if err != nil {
		return err
	}

	writer, err := output.NewWriter(outputRoot(job.Output, in))
	if err != nil {
		return err
	}

	res, err := batch.Run(ctx, in, batch.Options{
		Recursive:  job.Flags.Recursive,
		Workers:    job.Flags.NumThreads,
		Filter:     filter,
		Skip:       job.Skip,
		Process:    job.Process,
		OutputName: job.OutputName,
		Writer:     writer,
		OnItemDone: logItem,
	})
	if err != nil {
		return err
	}

	if res.FatalErr != nil {
		logrus.Errorf("aborted after %d of %d files: %v", res.Attempted, res.Enumerated, res.FatalErr)
		return res.FatalErr
	}
	if res.Enumerated == 0 {
		if job.RequireItems {
			return fmt.Errorf("no files found in %s", job.Input)
		}

		logrus.Infof("no matching files in %s", job.Input)
		return nil
	}
	if res.Failures > 0 {
		logrus.Errorf("%d of %d files failed", res.Failures, res.Attempted)
		return fmt.Errorf("%d of %d files failed", res.Failures, res.Attempted)
	}

	logrus.Infof("processed %d files", res.Succeeded)
	return nil
}

// logItem reports one finished item. Failures always log; successes only
// when per-item output is not silenced.
func logItem(res batch.ItemResult) {
	if res.Err != nil {
		logrus.Errorf("%s: %v", res.RelPath, res.Err)
		return
	}

	logrus.Infof("%s -> %s", res.RelPath, res.OutPath)
}

// outputRoot picks the output directory: an explicit override wins,
// otherwise filesystem inputs process in place and container inputs land in
// the current directory.
func outputRoot(override string, in *garpath.Resolved) string {
	if override != "" {
		return override
	}

	switch in.Kind {
	case garpath.KindFile:
		return filepath.Dir(in.Path)
	case garpath.KindDir:
		return in.Path
	default:
		return "."
	}
}
