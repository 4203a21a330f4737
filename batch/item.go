// SPDX-License-Identifier: MIT
// Copyright (c) 2026 scfmod

package batch

import (
	"fmt"
	"io"
)

// Item is one unit of pipeline work: a byte source plus the logical relative
// path used to mirror output structure. An item is created during
// enumeration and consumed exactly once by a worker.
type Item struct {
	// RelPath is the slash-separated logical relative path of the source.
	RelPath string
	// SizeHint is the expected payload size in bytes (zero when unknown).
	SizeHint int64
	// open yields the payload stream (plain file or container section).
	open func() (io.ReadCloser, error)
}

// Open returns the payload stream for this item.
func (it *Item) Open() (io.ReadCloser, error) {
	if it.open == nil {
		return nil, fmt.Errorf("item %s has no source", it.RelPath)
	}

	return it.open()
}

// Bytes reads the full payload of this item.
func (it *Item) Bytes() ([]byte, error) {
	rc, err := it.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	return io.ReadAll(rc)
}
