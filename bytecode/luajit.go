// SPDX-License-Identifier: MIT
// Copyright (c) 2026 scfmod

package bytecode

import (
	"bytes"
	"fmt"
)

// luajitMagic is the standard LuaJIT bytecode signature (ESC "LJ").
var luajitMagic = []byte{0x1B, 0x4C, 0x4A}

// IsLuaJIT reports whether buf starts with the LuaJIT bytecode signature.
func IsLuaJIT(buf []byte) bool {
	return len(buf) >= 5 && bytes.Equal(buf[0:3], luajitMagic)
}

// IsLuaJITEncoded reports whether a LuaJIT blob carries the obfuscated
// payload marker.
func IsLuaJITEncoded(buf []byte) bool {
	return IsLuaJIT(buf) && buf[4] == 0xFC
}

// DecodeLuaJIT decodes an obfuscated LuaJIT blob in place and rewrites the
// version byte to the stock value so standard tooling accepts it. Blobs that
// are not encoded pass through untouched.
func DecodeLuaJIT(buf []byte) error {
	if !IsLuaJIT(buf) {
		return fmt.Errorf("%w: missing LuaJIT signature", ErrUnsupported)
	}
	if !IsLuaJITEncoded(buf) {
		return nil
	}

	table, ok := luajitTables[buf[3]]
	if !ok {
		return fmt.Errorf("%w: LuaJIT version 0x%02X", ErrNoShiftTable, buf[3])
	}

	table.apply(buf)
	buf[3] = 0x02

	return nil
}
