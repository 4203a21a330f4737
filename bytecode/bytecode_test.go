package bytecode

import (
	"bytes"
	"errors"
	"testing"
)

// reverseShift is the inverse of the decode pass, used to build encoded
// fixtures from plain bytecode.
func reverseShift(buf []byte, table shiftTable) {
	for i := table.offset; i < len(buf); i++ {
		buf[i] -= table.bytes[i&table.mask] + byte(i)
	}
}

// encodeLuaJIT obfuscates a plain LuaJIT blob the way the game ships it.
func encodeLuaJIT(plain []byte, version byte) []byte {
	enc := bytes.Clone(plain)
	enc[3] = version
	reverseShift(enc, luajitTables[version])

	return enc
}

// encodeLuau obfuscates a plain Luau blob: prepend one key byte, then
// reverse-shift the whole buffer. The prepended byte is chosen so the
// encoded head matches the shipped markers (0x02 base, 0x03 DLC); it is
// dropped again after decoding.
func encodeLuau(plain []byte, version byte, dlc bool) []byte {
	table := luauTables[luauKey{version: version, dlc: dlc}]

	marker := byte(0x02)
	if dlc {
		marker = 0x03
	}

	enc := append([]byte{table.bytes[0] + marker}, plain...)
	reverseShift(enc, table)

	return enc
}

func TestDecodeLuaJIT_RoundTrip(t *testing.T) {
	for _, version := range []byte{3, 4} {
		// The byte at index 4 must reverse-shift to the 0xFC encoded
		// marker under this version's table.
		flag := 0xFC + luajitTables[version].bytes[4] + 4
		plain := []byte{0x1B, 0x4C, 0x4A, 0x02, flag, 0x10, 0x20, 0x30, 0x40, 0x55, 0xAA, 0xFF, 0x00, 0x7F}

		enc := encodeLuaJIT(plain, version)

		if !IsLuaJIT(enc) {
			t.Fatalf("version %d: signature not detected", version)
		}
		if !IsLuaJITEncoded(enc) {
			t.Fatalf("version %d: encoded marker not detected (buf[4]=0x%02X)", version, enc[4])
		}

		if err := DecodeLuaJIT(enc); err != nil {
			t.Fatalf("version %d: %v", version, err)
		}
		if !bytes.Equal(enc, plain) {
			t.Errorf("version %d: decode mismatch\n got %x\nwant %x", version, enc, plain)
		}
	}
}

func TestDecodeLuaJIT_PlainPassthrough(t *testing.T) {
	plain := []byte{0x1B, 0x4C, 0x4A, 0x02, 0x00, 0x01, 0x02}
	buf := bytes.Clone(plain)

	if IsLuaJITEncoded(buf) {
		t.Fatal("plain blob misdetected as encoded")
	}
	if err := DecodeLuaJIT(buf); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(buf, plain) {
		t.Errorf("plain blob modified: %x", buf)
	}
}

func TestDecodeLuaJIT_BadInput(t *testing.T) {
	if err := DecodeLuaJIT([]byte{0x00, 0x01, 0x02, 0x03, 0x04}); !errors.Is(err, ErrUnsupported) {
		t.Errorf("bad signature: got %v", err)
	}

	// Valid signature, encoded marker, but a version with no table.
	buf := []byte{0x1B, 0x4C, 0x4A, 0x09, 0xFC, 0x00}
	if err := DecodeLuaJIT(buf); !errors.Is(err, ErrNoShiftTable) {
		t.Errorf("unknown version: got %v", err)
	}
}

func TestInspectLuau(t *testing.T) {
	cases := []struct {
		name string
		head []byte
		want LuauInfo
	}{
		{"v3 plain", []byte{0x03, 0x01, 0x02}, LuauInfo{Version: 3}},
		{"v4 plain", []byte{0x04, 0x01, 0x02}, LuauInfo{Version: 4}},
		{"v6 plain", []byte{0x06, 0x03, 0x00}, LuauInfo{Version: 6}},
		{"v3 encoded", []byte{0x02, 0xEF, 0x00}, LuauInfo{Version: 3, Encoded: true}},
		{"v4 encoded", []byte{0x02, 0xF0, 0x00}, LuauInfo{Version: 4, Encoded: true}},
		{"v6 encoded", []byte{0x02, 0xF2, 0x00}, LuauInfo{Version: 6, Encoded: true}},
		{"v3 dlc", []byte{0x03, 0xFD, 0x00}, LuauInfo{Version: 3, Encoded: true, DLC: true}},
		{"v6 dlc", []byte{0x03, 0x00, 0xF2}, LuauInfo{Version: 6, Encoded: true, DLC: true}},
		{"unknown", []byte{0xFF, 0xFF, 0xFF}, LuauInfo{}},
		{"short", []byte{0x03}, LuauInfo{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := InspectLuau(tc.head); got != tc.want {
				t.Errorf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestDecodeLuau_RoundTrip(t *testing.T) {
	cases := []struct {
		name    string
		plain   []byte
		version byte
		dlc     bool
	}{
		{"v3 base", []byte{0x03, 0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88}, 3, false},
		{"v6 base", []byte{0x06, 0x03, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88}, 6, false},
		{"v3 dlc", []byte{0x03, 0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88}, 3, true},
		{"v6 dlc", []byte{0x06, 0x03, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88}, 6, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			enc := encodeLuau(tc.plain, tc.version, tc.dlc)

			info := InspectLuau(enc)
			want := LuauInfo{Version: tc.version, Encoded: true, DLC: tc.dlc}
			if info != want {
				t.Fatalf("inspect: got %+v, want %+v (head %x)", info, want, enc[:3])
			}

			got, err := DecodeLuau(enc)
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(got, tc.plain) {
				t.Errorf("decode mismatch\n got %x\nwant %x", got, tc.plain)
			}
		})
	}
}

func TestDecodeLuau_PlainPassthrough(t *testing.T) {
	plain := []byte{0x03, 0x11, 0x22}

	got, err := DecodeLuau(plain)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, plain) {
		t.Errorf("plain blob modified: %x", got)
	}
}

func TestDecodeLuau_Unsupported(t *testing.T) {
	if _, err := DecodeLuau([]byte{0xFF, 0x00, 0x00}); !errors.Is(err, ErrUnsupported) {
		t.Errorf("got %v", err)
	}
}
