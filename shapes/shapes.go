// SPDX-License-Identifier: MIT
// Copyright (c) 2026 scfmod

// Package shapes clears the edit-lock flags in .i3d.shapes geometry files.
// The patch touches only the four-byte header; geometry data is untouched.
package shapes

import (
	"errors"
	"fmt"
)

// ErrUnknownFormat means the first header byte is not a recognized
// shapes-file variant.
var ErrUnknownFormat = errors.New("unknown shapes format")

// minHeaderSize is the number of header bytes the lock flags live in.
const minHeaderSize = 4

// IsLocked reports whether buf carries an active edit lock.
func IsLocked(buf []byte) (bool, error) {
	if len(buf) < minHeaderSize {
		return false, fmt.Errorf("%w: file too short", ErrUnknownFormat)
	}

	switch buf[0] {
	case 0x05, 0x07, 0x0A:
		return buf[1] != 0 || buf[3] != 0, nil
	case 0x00, 0x01:
		return buf[2] != 0, nil
	default:
		return false, fmt.Errorf("%w: header byte 0x%02X", ErrUnknownFormat, buf[0])
	}
}

// Unlock clears the lock flags in place. Already-unlocked buffers pass
// through unchanged; the returned bool reports whether a patch was applied.
func Unlock(buf []byte) (bool, error) {
	locked, err := IsLocked(buf)
	if err != nil {
		return false, err
	}
	if !locked {
		return false, nil
	}

	switch buf[0] {
	case 0x05, 0x07, 0x0A:
		// Modern variants keep the format byte and shift the flag word.
		buf[1] = 0
		buf[2] -= 0x0D
		buf[3] = 0
	case 0x00, 0x01:
		// Legacy layout stores the flags one byte earlier.
		buf[0] = 0
		buf[1] -= 0x0D
		buf[2] = 0
	}

	return true, nil
}
