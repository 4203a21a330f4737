// SPDX-License-Identifier: MIT
// Copyright (c) 2026 scfmod

package gar

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
)

// packedEntry is one prepared record with its final payload bytes.
type packedEntry struct {
	path    string
	payload []byte
	method  Compression
	origLen uint32
}

// Pack writes a container with the given inputs to w. Entry order is
// deterministic by path. Compression candidates are selected by the
// PackOptions rules; a compressed payload is written only when it is
// actually smaller than the source.
func Pack(w io.Writer, inputs []Input, opts PackOptions) (PackResult, error) {
	var res PackResult

	opts.applyDefaults()

	if len(inputs) == 0 {
		return res, ErrEmptyInputs
	}

	matcher, err := newCompressMatcher(opts.Compress, opts.CompressMatcherOptions)
	if err != nil {
		return res, err
	}

	prepared, err := prepareEntries(inputs, opts, matcher, &res)
	if err != nil {
		return res, err
	}

	tableSize := 0
	for i := range prepared {
		tableSize += 2 + len(prepared[i].path) + entryFixedSize
	}

	payloadStart := int64(headerSize) + int64(tableSize)
	if err := writeHeader(w, opts, uint32(len(prepared)), uint32(headerSize)); err != nil {
		return res, err
	}

	if err := writeTable(w, prepared, payloadStart); err != nil {
		return res, err
	}

	for i := range prepared {
		n, err := w.Write(prepared[i].payload)
		if err != nil {
			return res, fmt.Errorf("write payload %s: %w", prepared[i].path, err)
		}

		res.DataSize += int64(n)
	}

	res.WrittenEntries = len(prepared)
	return res, nil
}

// PackFile writes a container with the given inputs to path.
func PackFile(path string, inputs []Input, opts PackOptions) (PackResult, error) {
	f, err := os.Create(path)
	if err != nil {
		return PackResult{}, fmt.Errorf("create container: %w", err)
	}

	res, packErr := Pack(f, inputs, opts)
	closeErr := f.Close()
	if packErr != nil {
		return res, packErr
	}

	return res, closeErr
}

// prepareEntries validates, sorts, and compresses inputs into final records.
func prepareEntries(inputs []Input, opts PackOptions, matcher *compressMatcher, res *PackResult) ([]packedEntry, error) {
	prepared := make([]packedEntry, 0, len(inputs))
	seen := make(map[string]struct{}, len(inputs))

	for i := range inputs {
		path, err := validateEntryPath(inputs[i].Path)
		if err != nil {
			return nil, err
		}
		if len(path) > maxNameLen {
			return nil, fmt.Errorf("%w: %s", ErrFileNameTooLong, path)
		}
		if _, dup := seen[path]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateEntryPath, path)
		}
		seen[path] = struct{}{}

		data := inputs[i].Data
		if int64(len(data)) > int64(math.MaxUint32) {
			return nil, fmt.Errorf("%w: %s", ErrSizeOverflow, path)
		}

		entry := packedEntry{
			path:    path,
			payload: data,
			method:  CompressionNone,
			origLen: uint32(len(data)),
		}

		if shouldCompress(opts, matcher, path, entry.origLen) {
			compressed, err := compressPayload(opts.Method, data)
			if err != nil {
				return nil, fmt.Errorf("compress %s: %w", path, err)
			}

			if len(compressed) < len(data) {
				entry.payload = compressed
				entry.method = opts.Method
				res.CompressedEntries++
			} else {
				res.SkippedCompressionEntries++
			}
		}

		prepared = append(prepared, entry)
	}

	sort.Slice(prepared, func(a, b int) bool {
		return prepared[a].path < prepared[b].path
	})

	return prepared, nil
}

// writeHeader writes the fixed 16-byte container header.
func writeHeader(w io.Writer, opts PackOptions, entryCount, tableOffset uint32) error {
	var header [headerSize]byte
	magic := magicGar
	if opts.DLC {
		magic = magicDlc
	}

	copy(header[0:4], magic[:])
	binary.LittleEndian.PutUint16(header[4:6], opts.Version)
	binary.LittleEndian.PutUint32(header[8:12], entryCount)
	binary.LittleEndian.PutUint32(header[12:16], tableOffset)

	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	return nil
}

// writeTable writes all entry records with sequential payload offsets.
func writeTable(w io.Writer, prepared []packedEntry, payloadStart int64) error {
	offset := payloadStart
	var fields [entryFixedSize]byte

	for i := range prepared {
		// The offset field is u32, so the payload region may end at 4 GiB
		// but no entry may start there.
		if offset > math.MaxUint32 {
			return fmt.Errorf("%w: %s", ErrSizeOverflow, prepared[i].path)
		}

		end := offset + int64(len(prepared[i].payload))
		if end > maxGarData {
			return fmt.Errorf("%w: %s", ErrSizeOverflow, prepared[i].path)
		}

		var nameLen [2]byte
		binary.LittleEndian.PutUint16(nameLen[:], uint16(len(prepared[i].path)))
		if _, err := w.Write(nameLen[:]); err != nil {
			return fmt.Errorf("write table: %w", err)
		}
		if _, err := w.Write([]byte(prepared[i].path)); err != nil {
			return fmt.Errorf("write table: %w", err)
		}

		fields[0] = byte(prepared[i].method)
		binary.LittleEndian.PutUint32(fields[1:5], uint32(offset))
		binary.LittleEndian.PutUint32(fields[5:9], uint32(len(prepared[i].payload)))
		binary.LittleEndian.PutUint32(fields[9:13], prepared[i].origLen)
		if _, err := w.Write(fields[:]); err != nil {
			return fmt.Errorf("write table: %w", err)
		}

		offset = end
	}

	return nil
}
