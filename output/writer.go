// SPDX-License-Identifier: MIT
// Copyright (c) 2026 scfmod

// Package output materializes processed results under one output root,
// mirroring each item's logical relative path.
package output

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Sentinel errors for output writes. Use errors.Is in callers.
var (
	// ErrOutputConflict means a directory occupies the destination file path.
	ErrOutputConflict = errors.New("destination is an existing directory")
	// ErrUnsafeRelPath means the relative path escapes the output root.
	ErrUnsafeRelPath = errors.New("relative path escapes output root")
)

// Writer writes result files under a fixed root directory.
//
// Relative paths are validated against traversal on every write. Entry paths
// from a container index were already rejected at open when unsafe; the
// check here is the last line of defense before bytes touch the disk.
type Writer struct {
	root string
}

// NewWriter resolves root to an absolute path and creates it.
func NewWriter(root string) (*Writer, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve output dir: %w", err)
	}

	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	return &Writer{root: abs}, nil
}

// Root returns the absolute output root.
func (w *Writer) Root() string {
	return w.root
}

// Write persists data at rel under the root, creating intermediate
// directories as needed. An existing file is overwritten; an existing
// directory at the destination is an error. Returns the written path.
func (w *Writer) Write(rel string, data []byte) (string, error) {
	cleanRel, err := safeRelPath(rel)
	if err != nil {
		return "", err
	}

	dst := filepath.Join(w.root, filepath.FromSlash(cleanRel))

	if info, err := os.Stat(dst); err == nil && info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrOutputConflict, dst)
	}

	if dir := filepath.Dir(dst); dir != w.root {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return "", fmt.Errorf("create output directory %s: %w", dir, err)
		}
	}

	if err := os.WriteFile(dst, data, 0o600); err != nil {
		return "", fmt.Errorf("write %s: %w", dst, err)
	}

	return dst, nil
}

// safeRelPath normalizes a logical relative path and rejects anything that
// could resolve outside the root.
func safeRelPath(rel string) (string, error) {
	raw := strings.TrimSpace(rel)
	if raw == "" || strings.ContainsRune(raw, 0) {
		return "", fmt.Errorf("%w: %q", ErrUnsafeRelPath, rel)
	}

	raw = strings.ReplaceAll(raw, `\`, "/")
	if strings.HasPrefix(raw, "/") || hasDrivePrefix(raw) {
		return "", fmt.Errorf("%w: %q is absolute", ErrUnsafeRelPath, rel)
	}

	parts := strings.Split(raw, "/")
	clean := make([]string, 0, len(parts))
	for _, part := range parts {
		switch part {
		case "", ".":
			continue
		case "..":
			return "", fmt.Errorf("%w: %q contains parent traversal", ErrUnsafeRelPath, rel)
		default:
			clean = append(clean, part)
		}
	}
	if len(clean) == 0 {
		return "", fmt.Errorf("%w: %q", ErrUnsafeRelPath, rel)
	}

	return strings.Join(clean, "/"), nil
}

// hasDrivePrefix reports whether path starts with a Windows drive root like C:/.
func hasDrivePrefix(p string) bool {
	if len(p) < 3 {
		return false
	}

	c := p[0]
	alpha := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
	return alpha && p[1] == ':' && p[2] == '/'
}
