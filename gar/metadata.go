// SPDX-License-Identifier: MIT
// Copyright (c) 2026 scfmod

package gar

import (
	"io"
	"os"
)

// DetectContainer reports whether path names a readable file that starts
// with a known container magic. Only the first four bytes are read, so the
// check is cheap enough for per-component use by the path resolver.
func DetectContainer(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer func() { _ = f.Close() }()

	var magic [4]byte
	if _, err := io.ReadFull(f, magic[:]); err != nil {
		return false
	}

	return magic == magicGar || magic == magicDlc
}

// ListEntries opens a container and returns entry metadata without payload reads.
func ListEntries(path string) ([]EntryInfo, error) {
	return ListEntriesWithOptions(path, ReaderOptions{})
}

// ListEntriesWithOptions opens a container and returns entry metadata without
// payload reads using explicit reader options.
func ListEntriesWithOptions(path string, opts ReaderOptions) ([]EntryInfo, error) {
	f, size, err := openFileWithSize(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	r, err := NewReaderFromReaderAtWithOptions(f, size, opts)
	if err != nil {
		return nil, err
	}

	return r.Entries(), nil
}
