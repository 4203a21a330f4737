// SPDX-License-Identifier: MIT
// Copyright (c) 2026 scfmod

// Package extool locates and runs external decompiler backends. Backends are
// opaque executables distributed alongside the tools, never bundled.
package extool

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// ErrNotFound means no candidate location contained the backend binary.
var ErrNotFound = errors.New("backend executable not found")

// Tool is a located backend executable.
type Tool struct {
	// Name is the bare executable name the tool was searched by.
	Name string
	// Path is the resolved absolute path.
	Path string
}

// Find locates the backend named name. An env override (envVar, when
// non-empty and set) wins; otherwise the search walks: directory of the
// running executable, its bin/ subdirectory, the current directory, and its
// bin/ subdirectory.
func Find(name, envVar string) (*Tool, error) {
	if envVar != "" {
		if override := os.Getenv(envVar); override != "" {
			if !isExecutableFile(override) {
				return nil, fmt.Errorf("%w: %s points to %s", ErrNotFound, envVar, override)
			}

			return &Tool{Name: name, Path: override}, nil
		}
	}

	var dirs []string
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		dirs = append(dirs, exeDir, filepath.Join(exeDir, "bin"))
	}
	if cwd, err := os.Getwd(); err == nil {
		dirs = append(dirs, cwd, filepath.Join(cwd, "bin"))
	}

	for _, dir := range dirs {
		candidate := filepath.Join(dir, name)
		if isExecutableFile(candidate) {
			return &Tool{Name: name, Path: candidate}, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// Run executes the backend with args and returns its stdout. A non-zero
// exit status is an error carrying the captured stderr.
func (t *Tool) Run(ctx context.Context, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, t.Path, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := bytes.TrimSpace(stderr.Bytes())
		if len(msg) > 0 {
			return nil, fmt.Errorf("%s: %w: %s", t.Name, err, msg)
		}

		return nil, fmt.Errorf("%s: %w", t.Name, err)
	}

	return stdout.Bytes(), nil
}

// isExecutableFile reports whether path is a regular file. Execute bits are
// not checked: Windows has none and the exec call reports its own error.
func isExecutableFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
