// SPDX-License-Identifier: MIT
// Copyright (c) 2026 scfmod

package gar

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/pierrec/lz4/v4"
	"github.com/woozymasta/lzss"
)

// nopCloser wraps a reader and provides a no-op close.
type nopCloser struct {
	io.Reader
}

// Close closes nopCloser (no-op).
func (nopCloser) Close() error {
	return nil
}

// OpenEntry opens the named entry for reading.
// The returned stream yields decompressed content for compressed entries.
func (r *Reader) OpenEntry(path string) (io.ReadCloser, error) {
	if r == nil || r.ra == nil {
		return nil, ErrNilReader
	}

	entry, ok := r.EntryByPath(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, path)
	}

	return r.OpenEntryInfo(entry)
}

// OpenEntryInfo opens an entry stream by already resolved metadata.
// The returned stream yields decompressed content for compressed entries.
func (r *Reader) OpenEntryInfo(entry EntryInfo) (io.ReadCloser, error) {
	if r == nil || r.ra == nil {
		return nil, ErrNilReader
	}

	r.mu.Lock()
	closed := r.closed
	r.mu.Unlock()
	if closed {
		return nil, ErrClosed
	}

	sr := io.NewSectionReader(r.ra, int64(entry.Offset), int64(entry.StoredSize))

	switch entry.Compression {
	case CompressionNone:
		return nopCloser{Reader: sr}, nil
	case CompressionLZSS:
		outLen, err := checkedUint32ToInt(entry.OriginalSize)
		if err != nil {
			return nil, fmt.Errorf("resolve output size for %s: %w", entry.Path, err)
		}

		pr, pw := io.Pipe()
		go streamDecompressLZSS(entry.Path, pw, sr, outLen, int64(entry.StoredSize))
		return pr, nil
	case CompressionLZ4:
		return &sizeCheckedReader{
			r:    lz4.NewReader(sr),
			path: entry.Path,
			want: int64(entry.OriginalSize),
		}, nil
	default:
		return nil, fmt.Errorf("%w: %s tag %d", ErrUnknownCompression, entry.Path, entry.Compression)
	}
}

// ReadEntry reads the full (decompressed) content of the named entry.
func (r *Reader) ReadEntry(path string) ([]byte, error) {
	rc, err := r.OpenEntry(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	return io.ReadAll(rc)
}

// streamDecompressLZSS decodes one compressed entry stream into the pipe
// writer. The codec emits exactly outLen bytes or fails, so a declared size
// that disagrees with the stored stream shows up as input underrun or as
// stored bytes left unconsumed; both are reported as ErrSizeMismatch.
func streamDecompressLZSS(path string, dst *io.PipeWriter, src io.Reader, outLen int, storedLen int64) {
	n, err := lzss.DecompressToWriter(dst, src, outLen, nil)
	if err != nil {
		if isLZSSLengthError(err) || n != storedLen {
			_ = dst.CloseWithError(fmt.Errorf("%w: entry %s declares %d bytes: %v",
				ErrSizeMismatch, path, outLen, err))
			return
		}

		_ = dst.CloseWithError(fmt.Errorf("decompress entry %s: %w", path, err))
		return
	}

	if n != storedLen {
		_ = dst.CloseWithError(fmt.Errorf("%w: entry %s consumed %d of %d stored bytes",
			ErrSizeMismatch, path, n, storedLen))
		return
	}

	_ = dst.Close()
}

// isLZSSLengthError reports whether err means the compressed stream ended at
// odds with the requested output length.
func isLZSSLengthError(err error) bool {
	return errors.Is(err, lzss.ErrInputTooShort) ||
		errors.Is(err, lzss.ErrUnexpectedEOF) ||
		errors.Is(err, lzss.ErrUnexpectedEOFBit) ||
		errors.Is(err, lzss.ErrTrailingData)
}

// sizeCheckedReader verifies the decompressed stream length against the index
// once EOF is reached.
type sizeCheckedReader struct {
	r    io.Reader
	path string
	want int64
	got  int64
}

func (s *sizeCheckedReader) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	s.got += int64(n)

	if s.got > s.want {
		return n, fmt.Errorf("%w: entry %s exceeds declared %d bytes", ErrSizeMismatch, s.path, s.want)
	}

	if err == io.EOF && s.got != s.want {
		return n, fmt.Errorf("%w: entry %s yielded %d bytes, index declares %d",
			ErrSizeMismatch, s.path, s.got, s.want)
	}

	return n, err
}

func (s *sizeCheckedReader) Close() error {
	return nil
}

// checkedUint32ToInt converts uint32 to int with platform-safe overflow check.
func checkedUint32ToInt(v uint32) (int, error) {
	if uint64(v) > uint64(math.MaxInt) {
		return 0, ErrSizeOverflow
	}

	return int(v), nil
}
