// SPDX-License-Identifier: MIT
// Copyright (c) 2026 scfmod

// Package bytecode detects and decodes the byteshift obfuscation applied to
// LuaJIT and Luau script blobs shipped inside game containers.
package bytecode

import "errors"

// Sentinel errors for bytecode handling. Use errors.Is in callers.
var (
	// ErrUnsupported means the blob does not carry a known bytecode header.
	ErrUnsupported = errors.New("unsupported bytecode")
	// ErrNoShiftTable means no decode table exists for the blob's version.
	ErrNoShiftTable = errors.New("no byteshift table for bytecode version")
)

// shiftTable is one additive byteshift key: the decode walks the blob from
// offset and adds table[i&mask]+i to every byte, wrapping at 256.
type shiftTable struct {
	bytes  []byte
	offset int
	mask   int
}

func (t *shiftTable) apply(buf []byte) {
	for i := t.offset; i < len(buf); i++ {
		buf[i] += t.bytes[i&t.mask] + byte(i)
	}
}

// luajitTables maps the LuaJIT version byte (buf[3]) to its decode key.
var luajitTables = map[byte]shiftTable{
	3: {
		bytes:  []byte{0x14, 0x0B, 0x09, 0x02, 0x08, 0x03, 0x03, 0x03},
		offset: 4,
		mask:   0x07,
	},
	4: {
		bytes: []byte{
			0x06, 0x10, 0x0C, 0x02, 0x09, 0x03, 0x04, 0x04,
			0x09, 0x05, 0x04, 0x02, 0x05, 0x08, 0x09, 0x15,
		},
		offset: 4,
		mask:   0x0F,
	},
}

type luauKey struct {
	version byte
	dlc     bool
}

// luauTables maps (bytecode version, DLC flag) to its decode key. Base-game
// scripts share one 8-byte key across versions 3 and 6; DLC scripts share a
// 16-byte key.
var luauTables = map[luauKey]shiftTable{
	{3, false}: {
		bytes:  []byte{0x02, 0x13, 0x0A, 0x08, 0x01, 0x07, 0x02, 0x02},
		offset: 0,
		mask:   0x07,
	},
	{6, false}: {
		bytes:  []byte{0x02, 0x13, 0x0A, 0x08, 0x01, 0x07, 0x02, 0x02},
		offset: 0,
		mask:   0x07,
	},
	{3, true}: {
		bytes: []byte{
			0x14, 0x05, 0x0F, 0x0B, 0x01, 0x08, 0x02, 0x03,
			0x03, 0x08, 0x04, 0x03, 0x01, 0x04, 0x07, 0x08,
		},
		offset: 0,
		mask:   0x0F,
	},
	{6, true}: {
		bytes: []byte{
			0x14, 0x05, 0x0F, 0x0B, 0x01, 0x08, 0x02, 0x03,
			0x03, 0x08, 0x04, 0x03, 0x01, 0x04, 0x07, 0x08,
		},
		offset: 0,
		mask:   0x0F,
	},
}
