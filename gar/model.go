// SPDX-License-Identifier: MIT
// Copyright (c) 2026 scfmod

package gar

import "github.com/woozymasta/pathrules"

// Internal binary layout and format limits.
const (
	headerSize      = 16      // fixed GAR header size in bytes
	entryFixedSize  = 13      // per-entry fixed fields after the name
	maxNameLen      = 512     // max entry path length
	minVersion      = 1       // oldest supported table layout
	maxVersion      = 2       // newest supported table layout
	maxGarData      = 1 << 32 // max addressable payload in one container (4 GiB)
)

// Default packer tuning values.
const (
	DefaultMinCompressSize = 512
	DefaultMaxCompressSize = 16 * 1024 * 1024
)

// Container magic values. The base-game variant uses "GAR1", downloadable
// content uses "DLC1"; both share the same table layout.
var (
	magicGar = [4]byte{'G', 'A', 'R', '1'}
	magicDlc = [4]byte{'D', 'L', 'C', '1'}
)

// Compression is the per-entry payload compression method tag.
type Compression uint8

// Entry compression methods.
const (
	// CompressionNone marks raw payload.
	CompressionNone Compression = 0
	// CompressionLZSS marks LZSS-compressed payload.
	CompressionLZSS Compression = 1
	// CompressionLZ4 marks LZ4 frame compressed payload.
	CompressionLZ4 Compression = 2
)

// EntryInfo describes a single parsed container entry.
type EntryInfo struct {
	// Path is the entry path as stored in the index, forward-slash separated.
	Path string `json:"path"`
	// Offset is byte offset of entry payload within the container file.
	Offset uint32 `json:"offset"`
	// StoredSize is stored payload size in bytes.
	StoredSize uint32 `json:"stored_size"`
	// OriginalSize is uncompressed size; equals StoredSize for raw entries.
	OriginalSize uint32 `json:"original_size"`
	// Compression stores the payload compression method tag.
	Compression Compression `json:"compression,omitempty"`
}

// IsCompressed reports whether this entry payload is stored compressed.
func (e *EntryInfo) IsCompressed() bool {
	return e.Compression != CompressionNone
}

// DuplicatePolicy controls how the reader treats duplicate logical paths
// within one entry table.
type DuplicatePolicy string

// Duplicate path policies.
const (
	// DuplicateLastWins keeps the last table record for a repeated path.
	DuplicateLastWins DuplicatePolicy = "last_wins"
	// DuplicateFirstWins keeps the first table record for a repeated path.
	DuplicateFirstWins DuplicatePolicy = "first_wins"
	// DuplicateReject fails the open when a path repeats.
	DuplicateReject DuplicatePolicy = "reject"
)

// ReaderOptions configures reader parse behavior.
type ReaderOptions struct {
	// DuplicatePolicy selects handling of repeated logical paths in the table.
	DuplicatePolicy DuplicatePolicy `json:"duplicate_policy,omitempty"`
}

// Input describes one source blob to be packed into a container entry.
type Input struct {
	// Path is destination path inside the container.
	Path string `json:"path"`
	// Data is the raw entry payload.
	Data []byte `json:"-"`
}

// PackOptions configures pack behavior.
type PackOptions struct {
	// Compress defines ordered path rules for compression candidate selection.
	Compress []pathrules.Rule `json:"compress,omitempty"`
	// CompressMatcherOptions control compression path rule matching.
	CompressMatcherOptions pathrules.MatcherOptions `json:"compress_matcher_options,omitzero"`
	// Method is the compression method applied to matched entries.
	Method Compression `json:"method,omitempty"`
	// MinCompressSize disables compression for entries smaller than this size.
	// Default is 512 bytes.
	MinCompressSize uint32 `json:"min_compress_size,omitempty"`
	// MaxCompressSize disables compression for entries larger than this size.
	MaxCompressSize uint32 `json:"max_compress_size,omitempty"`
	// DLC writes the "DLC1" magic variant instead of "GAR1".
	DLC bool `json:"dlc,omitempty"`
	// Version is the table layout version to write; zero means newest.
	Version uint16 `json:"version,omitempty"`
}

// PackResult contains pack output statistics.
type PackResult struct {
	// WrittenEntries is number of entries written to the container.
	WrittenEntries int `json:"written_entries"`
	// DataSize is total payload bytes written.
	DataSize int64 `json:"data_size"`
	// CompressedEntries is number of entries written with compressed payload.
	CompressedEntries int `json:"compressed_entries,omitempty"`
	// SkippedCompressionEntries is number of candidates stored raw because
	// compression did not shrink them.
	SkippedCompressionEntries int `json:"skipped_compression_entries,omitempty"`
}

// applyDefaults fills zero-valued reader options with defaults.
func (opts *ReaderOptions) applyDefaults() {
	if opts.DuplicatePolicy == "" {
		opts.DuplicatePolicy = DuplicateLastWins
	}
}

// applyDefaults fills zero-valued pack options with defaults.
func (opts *PackOptions) applyDefaults() {
	if opts.MinCompressSize == 0 {
		opts.MinCompressSize = DefaultMinCompressSize
	}

	if opts.MaxCompressSize == 0 || opts.MaxCompressSize <= opts.MinCompressSize {
		opts.MaxCompressSize = DefaultMaxCompressSize
	}

	if opts.Method == CompressionNone {
		opts.Method = CompressionLZSS
	}

	if opts.Version == 0 {
		opts.Version = maxVersion
	}

	if opts.CompressMatcherOptions == (pathrules.MatcherOptions{}) {
		opts.CompressMatcherOptions = pathrules.MatcherOptions{
			CaseInsensitive: true,
			DefaultAction:   pathrules.ActionExclude,
		}
	}

	if opts.CompressMatcherOptions.DefaultAction == pathrules.ActionUnknown {
		opts.CompressMatcherOptions.DefaultAction = pathrules.ActionExclude
	}
}
