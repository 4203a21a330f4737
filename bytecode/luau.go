// SPDX-License-Identifier: MIT
// Copyright (c) 2026 scfmod

package bytecode

import "fmt"

// LuauInfo describes a Luau blob's header classification.
type LuauInfo struct {
	// Version is the Luau bytecode version (zero when unrecognized).
	Version byte
	// Encoded reports whether the blob carries the byteshift obfuscation.
	Encoded bool
	// DLC reports whether the blob uses the DLC key instead of the base one.
	DLC bool
}

// InspectLuau classifies a Luau blob from its first three bytes.
func InspectLuau(buf []byte) LuauInfo {
	if len(buf) < 3 {
		return LuauInfo{}
	}

	b0, b1, b2 := buf[0], buf[1], buf[2]
	switch {
	case b0 == 0x03 && b1 == 0x00 && b2 == 0xF2:
		return LuauInfo{Version: 6, Encoded: true, DLC: true}
	case b0 == 0x02 && b1 == 0xEF:
		return LuauInfo{Version: 3, Encoded: true}
	case b0 == 0x03 && b1 == 0xFD:
		return LuauInfo{Version: 3, Encoded: true, DLC: true}
	case b0 == 0x02 && b1 == 0xF0:
		return LuauInfo{Version: 4, Encoded: true}
	case b0 == 0x02 && b1 == 0xF2:
		return LuauInfo{Version: 6, Encoded: true}
	case b0 == 0x06 && b1 == 0x03:
		return LuauInfo{Version: 6}
	case b0 == 0x03:
		return LuauInfo{Version: 3}
	case b0 == 0x04:
		return LuauInfo{Version: 4}
	default:
		return LuauInfo{}
	}
}

// DecodeLuau decodes an obfuscated Luau blob and returns the plain bytecode.
// The obfuscation prepends one byte, so the decoded result is one byte
// shorter than the input. Blobs that are not encoded are returned as-is.
func DecodeLuau(buf []byte) ([]byte, error) {
	info := InspectLuau(buf)
	if info.Version == 0 {
		return nil, fmt.Errorf("%w: unknown Luau header", ErrUnsupported)
	}
	if !info.Encoded {
		return buf, nil
	}

	table, ok := luauTables[luauKey{version: info.Version, dlc: info.DLC}]
	if !ok {
		return nil, fmt.Errorf("%w: Luau version %d (dlc=%t)", ErrNoShiftTable, info.Version, info.DLC)
	}

	table.apply(buf)

	return buf[1:], nil
}
