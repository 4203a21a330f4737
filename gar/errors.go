// SPDX-License-Identifier: MIT
// Copyright (c) 2026 scfmod

package gar

import "errors"

// Sentinel errors for container operations. Use errors.Is in callers.
var (
	// ErrBadMagic means the file does not start with a known container magic.
	ErrBadMagic = errors.New("not a GAR container: bad magic")
	// ErrUnsupportedVersion means the container version is outside the supported range.
	ErrUnsupportedVersion = errors.New("unsupported container version")
	// ErrTableOutOfBounds means the declared entry table does not fit the file.
	ErrTableOutOfBounds = errors.New("entry table exceeds file bounds")
	// ErrEntryOutOfBounds means an entry payload range exceeds the file.
	ErrEntryOutOfBounds = errors.New("entry payload exceeds file bounds")
	// ErrEntryPathUnsafe means an entry path is absolute, empty, or contains traversal.
	ErrEntryPathUnsafe = errors.New("unsafe entry path")
	// ErrDuplicateEntryPath means the table repeats a logical path under DuplicateReject.
	ErrDuplicateEntryPath = errors.New("duplicate entry path")
	// ErrFileNameTooLong means an entry path exceeds the maximum length.
	ErrFileNameTooLong = errors.New("entry path exceeds maximum length")
	// ErrSizeMismatch means decompressed payload length differs from the index.
	ErrSizeMismatch = errors.New("decompressed size mismatch")
	// ErrUnknownCompression means the entry carries an unknown compression tag.
	ErrUnknownCompression = errors.New("unknown compression method")
	// ErrEntryNotFound means the entry is not found in the index.
	ErrEntryNotFound = errors.New("entry not found")
	// ErrNilReader means the reader is nil.
	ErrNilReader = errors.New("reader is nil")
	// ErrClosed means the reader is already closed.
	ErrClosed = errors.New("reader already closed")
	// ErrSizeOverflow means a size exceeds the uint32 or 4 GiB container limit.
	ErrSizeOverflow = errors.New("size exceeds uint32 or 4 GiB container limit")
	// ErrEmptyInputs means no inputs provided for pack.
	ErrEmptyInputs = errors.New("no inputs provided for pack")
	// ErrInvalidCompressPattern means one or more compression rules are invalid.
	ErrInvalidCompressPattern = errors.New("invalid compress rules")
)
