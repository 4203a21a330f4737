// SPDX-License-Identifier: MIT
// Copyright (c) 2026 scfmod

// Package garpath resolves tool input paths that may address content inside
// an unopened GAR container, e.g. "dataS.gar/scripts/main.l64". A raw path
// is classified into one of four variants: a plain file, a plain directory,
// one archive entry, or an archive subtree.
package garpath

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/scfmod/fs-utils/gar"
)

// Sentinel errors for input resolution. Use errors.Is in callers.
var (
	// ErrNotFound means no filesystem prefix of the input path exists.
	ErrNotFound = errors.New("input path not found")
	// ErrNotFoundInArchive means the container exists but the internal path does not.
	ErrNotFoundInArchive = errors.New("path not found in archive")
)

// Kind tags one resolved input variant.
type Kind int

// Resolved input variants.
const (
	// KindFile is a plain filesystem file.
	KindFile Kind = iota
	// KindDir is a plain filesystem directory.
	KindDir
	// KindArchiveEntry is one entry inside a container.
	KindArchiveEntry
	// KindArchiveSubtree is a virtual directory inside a container
	// (or the container root when Prefix is empty).
	KindArchiveSubtree
)

// String returns a short variant name for log output.
func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDir:
		return "directory"
	case KindArchiveEntry:
		return "archive entry"
	case KindArchiveSubtree:
		return "archive subtree"
	default:
		return "unknown"
	}
}

// Resolved is one classified tool input. For archive kinds it owns the
// opened container reader, which must outlive every work item derived from
// it; Close releases it.
type Resolved struct {
	// Reader is the opened container for archive kinds, nil otherwise.
	Reader *gar.Reader
	// Path is the on-disk path: the plain file/directory, or the container file.
	Path string
	// Prefix is the archive-internal subtree prefix for KindArchiveSubtree.
	// Empty means the container root.
	Prefix string
	// Entry is the resolved entry metadata for KindArchiveEntry.
	Entry gar.EntryInfo
	// Kind tags which variant this input is.
	Kind Kind
}

// Close releases the container handle for archive kinds.
func (r *Resolved) Close() error {
	if r == nil || r.Reader == nil {
		return nil
	}

	return r.Reader.Close()
}

// Resolve classifies a raw input path.
func Resolve(raw string) (*Resolved, error) {
	return ResolveWithOptions(raw, gar.ReaderOptions{})
}

// ResolveWithOptions classifies a raw input path using explicit container
// reader options.
//
// The path is walked component by component. The first (shortest) on-disk
// prefix that is a regular file is magic-sniffed: a valid container routes
// the remaining components into the archive index; a file that merely shares
// a container extension is kept walking past, so resolution fails with
// ErrNotFound only once no deeper prefix exists.
func ResolveWithOptions(raw string, opts gar.ReaderOptions) (*Resolved, error) {
	trimmed := strings.TrimSpace(raw)
	trimmed = strings.TrimRight(filepath.ToSlash(trimmed), "/")
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty input path", ErrNotFound)
	}

	parts := strings.Split(trimmed, "/")
	prefix := ""
	for i, part := range parts {
		if i == 0 {
			prefix = part
		} else {
			prefix += "/" + part
		}

		// A leading empty component is the filesystem root of an absolute path.
		if part == "" && i == 0 {
			continue
		}

		fsPath := filepath.FromSlash(prefix)
		info, err := os.Stat(fsPath)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR) {
				return nil, fmt.Errorf("%w: %s", ErrNotFound, raw)
			}

			return nil, fmt.Errorf("stat %s: %w", fsPath, err)
		}

		if info.IsDir() {
			if i == len(parts)-1 {
				return &Resolved{Kind: KindDir, Path: fsPath}, nil
			}

			continue
		}

		remainder := strings.Join(parts[i+1:], "/")
		if gar.DetectContainer(fsPath) {
			return resolveArchive(fsPath, remainder, opts)
		}

		if remainder == "" {
			return &Resolved{Kind: KindFile, Path: fsPath}, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrNotFound, raw)
}

// resolveArchive opens the container and routes the internal remainder
// against its index tree.
func resolveArchive(containerPath, remainder string, opts gar.ReaderOptions) (*Resolved, error) {
	r, err := gar.OpenWithOptions(containerPath, opts)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", containerPath, err)
	}

	internal := gar.NormalizePath(remainder)
	if internal == "" {
		return &Resolved{Kind: KindArchiveSubtree, Path: containerPath, Reader: r}, nil
	}

	if entry, ok := r.EntryByPath(internal); ok {
		return &Resolved{Kind: KindArchiveEntry, Path: containerPath, Reader: r, Entry: entry}, nil
	}

	if r.HasDir(internal) {
		return &Resolved{Kind: KindArchiveSubtree, Path: containerPath, Reader: r, Prefix: internal}, nil
	}

	_ = r.Close()
	return nil, fmt.Errorf("%w: %s in %s", ErrNotFoundInArchive, internal, containerPath)
}
