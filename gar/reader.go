// SPDX-License-Identifier: MIT
// Copyright (c) 2026 scfmod

package gar

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sync"
)

// readerTableBufferSize is a sequential read buffer for entry table parsing.
const readerTableBufferSize = 64 * 1024

// entryTableReaderPool reuses buffered readers for sequential table parsing.
var entryTableReaderPool = sync.Pool{
	New: func() any {
		return bufio.NewReaderSize(bytes.NewReader(nil), readerTableBufferSize)
	},
}

// Reader provides read-only access to a parsed GAR container.
//
// The index is immutable after Open and may be shared across goroutines.
// Payload reads go through io.NewSectionReader over the underlying ReaderAt;
// *os.File positioned reads are concurrency-safe, so no lock is taken around
// payload I/O.
type Reader struct {
	// ra is the underlying random-access reader used for payload reads.
	ra io.ReaderAt
	// file is set when Reader owns an *os.File opened via Open.
	file *os.File
	// entries stores parsed immutable entry metadata in table order.
	entries []EntryInfo
	// index maps normalized entry path to entries position.
	index map[string]int
	// root is the synthesized directory tree over all entry paths.
	root *dirNode
	// duplicates lists logical paths that repeated in the table.
	duplicates []string
	// size is total source size in bytes.
	size int64
	// version is the parsed table layout version.
	version uint16
	// dlc reports whether the container carries the DLC magic variant.
	dlc bool
	// mu guards closed state and close operation.
	mu sync.Mutex
	// closed reports whether Close was already called.
	closed bool
}

// Open opens a container file by path and parses its index.
func Open(path string) (*Reader, error) {
	return OpenWithOptions(path, ReaderOptions{})
}

// OpenWithOptions opens a container file by path and parses its index using
// explicit reader options.
func OpenWithOptions(path string, opts ReaderOptions) (*Reader, error) {
	opts.applyDefaults()

	f, size, err := openFileWithSize(path)
	if err != nil {
		return nil, err
	}

	r, err := NewReaderFromReaderAtWithOptions(f, size, opts)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	r.file = f
	return r, nil
}

// NewReaderFromReaderAt parses a container from an existing ReaderAt and known size.
func NewReaderFromReaderAt(ra io.ReaderAt, size int64) (*Reader, error) {
	return NewReaderFromReaderAtWithOptions(ra, size, ReaderOptions{})
}

// NewReaderFromReaderAtWithOptions parses a container from an existing ReaderAt
// and known size using explicit reader options.
func NewReaderFromReaderAtWithOptions(ra io.ReaderAt, size int64, opts ReaderOptions) (*Reader, error) {
	opts.applyDefaults()

	if ra == nil {
		return nil, ErrNilReader
	}

	r := &Reader{ra: ra, size: size}
	if err := r.parse(ra, size, opts); err != nil {
		return nil, err
	}

	return r, nil
}

// Entries returns a copy of parsed entries in table order.
func (r *Reader) Entries() []EntryInfo {
	if r == nil {
		return nil
	}

	entries := make([]EntryInfo, len(r.entries))
	copy(entries, r.entries)
	return entries
}

// Len returns the number of indexed entries.
func (r *Reader) Len() int {
	if r == nil {
		return 0
	}

	return len(r.entries)
}

// Version returns the parsed table layout version.
func (r *Reader) Version() uint16 {
	return r.version
}

// IsDLC reports whether the container carries the DLC magic variant.
func (r *Reader) IsDLC() bool {
	return r.dlc
}

// DuplicatePaths returns logical paths that repeated in the entry table.
// Under DuplicateLastWins or DuplicateFirstWins the shadowed records are
// dropped silently by the index; callers that want to warn use this list.
func (r *Reader) DuplicatePaths() []string {
	if r == nil || len(r.duplicates) == 0 {
		return nil
	}

	out := make([]string, len(r.duplicates))
	copy(out, r.duplicates)
	return out
}

// Close closes the underlying file if the reader owns one.
func (r *Reader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}

	r.closed = true
	if r.file != nil {
		return r.file.Close()
	}

	return nil
}

// parse reads and validates the container structure from ReaderAt.
func (r *Reader) parse(ra io.ReaderAt, size int64, opts ReaderOptions) error {
	version, dlc, entryCount, tableOffset, err := parseHeader(ra, size)
	if err != nil {
		return err
	}
	r.version = version
	r.dlc = dlc

	if err := r.parseEntriesBuffered(ra, int64(tableOffset), size, entryCount); err != nil {
		return err
	}

	return r.buildIndex(opts.DuplicatePolicy)
}

// parseHeader validates the fixed header against the known file size.
// Magic and version are checked before anything else so a malformed or
// arbitrarily large non-container file is rejected without a table scan.
func parseHeader(ra io.ReaderAt, size int64) (version uint16, dlc bool, entryCount, tableOffset uint32, err error) {
	var header [headerSize]byte
	if _, err = ra.ReadAt(header[:], 0); err != nil {
		if err == io.EOF {
			err = fmt.Errorf("%w: short header", ErrBadMagic)
			return
		}

		err = fmt.Errorf("read header: %w", err)
		return
	}

	var magic [4]byte
	copy(magic[:], header[0:4])
	switch magic {
	case magicGar:
	case magicDlc:
		dlc = true
	default:
		err = fmt.Errorf("%w: % x", ErrBadMagic, magic)
		return
	}

	version = binary.LittleEndian.Uint16(header[4:6])
	if version < minVersion || version > maxVersion {
		err = fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
		return
	}

	entryCount = binary.LittleEndian.Uint32(header[8:12])
	tableOffset = binary.LittleEndian.Uint32(header[12:16])

	if int64(tableOffset) < headerSize || int64(tableOffset) > size {
		err = fmt.Errorf("%w: table offset %d, file size %d", ErrTableOutOfBounds, tableOffset, size)
		return
	}

	// Each record is at least nameLen + one name byte + fixed fields.
	minTableSize := int64(entryCount) * int64(entryFixedSize+3)
	if minTableSize > size-int64(tableOffset) {
		err = fmt.Errorf("%w: %d entries declared, %d table bytes available",
			ErrTableOutOfBounds, entryCount, size-int64(tableOffset))
		return
	}

	return
}

// parseEntriesBuffered parses entry records from the index table with
// sequential buffered reads to reduce ReadAt syscall overhead.
func (r *Reader) parseEntriesBuffered(ra io.ReaderAt, tableOffset, size int64, entryCount uint32) error {
	sr := io.NewSectionReader(ra, tableOffset, size-tableOffset)
	br := entryTableReaderPool.Get().(*bufio.Reader) //nolint:forcetypeassert // pool contains only *bufio.Reader
	br.Reset(sr)
	defer entryTableReaderPool.Put(br)

	r.entries = make([]EntryInfo, 0, entryCount)
	nameBuf := make([]byte, 0, 256)

	for i := uint32(0); i < entryCount; i++ {
		var nameLen [2]byte
		if _, err := io.ReadFull(br, nameLen[:]); err != nil {
			return fmt.Errorf("%w: read entry %d name length: %w", ErrTableOutOfBounds, i, err)
		}

		n := int(binary.LittleEndian.Uint16(nameLen[:]))
		if n == 0 {
			return fmt.Errorf("%w: entry %d has empty path", ErrEntryPathUnsafe, i)
		}
		if n > maxNameLen {
			return fmt.Errorf("%w: entry %d", ErrFileNameTooLong, i)
		}

		if cap(nameBuf) < n {
			nameBuf = make([]byte, 0, n)
		}
		nameBuf = nameBuf[:n]
		if _, err := io.ReadFull(br, nameBuf); err != nil {
			return fmt.Errorf("%w: read entry %d path: %w", ErrTableOutOfBounds, i, err)
		}

		path, err := validateEntryPath(string(nameBuf))
		if err != nil {
			return err
		}

		var fields [entryFixedSize]byte
		if _, err := io.ReadFull(br, fields[:]); err != nil {
			return fmt.Errorf("%w: read entry %d fields: %w", ErrTableOutOfBounds, i, err)
		}

		entry := EntryInfo{
			Path:         path,
			Compression:  Compression(fields[0]),
			Offset:       binary.LittleEndian.Uint32(fields[1:5]),
			StoredSize:   binary.LittleEndian.Uint32(fields[5:9]),
			OriginalSize: binary.LittleEndian.Uint32(fields[9:13]),
		}

		if err := validateEntryBounds(&entry, size); err != nil {
			return err
		}

		r.entries = append(r.entries, entry)
	}

	return nil
}

// validateEntryBounds checks one entry payload range against the known file size.
func validateEntryBounds(entry *EntryInfo, totalSize int64) error {
	end := int64(entry.Offset) + int64(entry.StoredSize)
	if int64(entry.Offset) < headerSize || end > totalSize {
		return fmt.Errorf("%w: %s at %d+%d, file size %d",
			ErrEntryOutOfBounds, entry.Path, entry.Offset, entry.StoredSize, totalSize)
	}

	switch entry.Compression {
	case CompressionNone:
		if entry.OriginalSize != entry.StoredSize {
			return fmt.Errorf("%w: %s declares %d stored, %d original without compression",
				ErrSizeMismatch, entry.Path, entry.StoredSize, entry.OriginalSize)
		}
	case CompressionLZSS, CompressionLZ4:
	default:
		return fmt.Errorf("%w: %s tag %d", ErrUnknownCompression, entry.Path, entry.Compression)
	}

	return nil
}

// openFileWithSize opens a file and returns a handle plus current size.
func openFileWithSize(path string) (*os.File, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open container: %w", err)
	}

	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, 0, fmt.Errorf("stat: %w", err)
	}

	return f, fi.Size(), nil
}
