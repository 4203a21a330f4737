// SPDX-License-Identifier: MIT
// Copyright (c) 2026 scfmod

package gar

import (
	"fmt"
	"path"
	"strings"
)

// NormalizePath converts an archive-internal path to normalized slash-separated form.
// It trims spaces, accepts both "/" and "\", removes leading "./" and "/", and cleans "." segments.
func NormalizePath(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.ReplaceAll(raw, `\`, "/")
	raw = strings.TrimPrefix(raw, "./")
	raw = strings.TrimPrefix(raw, "/")
	raw = path.Clean("/" + raw)
	raw = strings.TrimPrefix(raw, "/")
	if raw == "." {
		return ""
	}

	return strings.TrimSuffix(raw, "/")
}

// validateEntryPath rejects entry paths unusable as extraction destinations.
// Unlike NormalizePath it never rewrites: a table carrying traversal or
// absolute paths fails the open instead of being silently repaired.
func validateEntryPath(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", fmt.Errorf("%w: empty path", ErrEntryPathUnsafe)
	}
	if strings.ContainsRune(raw, 0) {
		return "", fmt.Errorf("%w: %q contains NUL", ErrEntryPathUnsafe, raw)
	}
	if strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, `\`) {
		return "", fmt.Errorf("%w: %q is absolute", ErrEntryPathUnsafe, raw)
	}
	if hasWindowsAbsDrivePrefix(raw) {
		return "", fmt.Errorf("%w: %q is absolute", ErrEntryPathUnsafe, raw)
	}

	normalized := strings.ReplaceAll(raw, `\`, "/")
	for part := range strings.SplitSeq(normalized, "/") {
		switch part {
		case "", ".":
			continue
		case "..":
			return "", fmt.Errorf("%w: %q contains parent traversal", ErrEntryPathUnsafe, raw)
		}
	}

	normalized = NormalizePath(normalized)
	if normalized == "" {
		return "", fmt.Errorf("%w: %q", ErrEntryPathUnsafe, raw)
	}

	return normalized, nil
}

// hasWindowsAbsDrivePrefix reports whether path starts with drive-root prefix like C:/.
func hasWindowsAbsDrivePrefix(p string) bool {
	if len(p) < 3 {
		return false
	}

	return isASCIIAlpha(p[0]) && p[1] == ':' && (p[2] == '/' || p[2] == '\\')
}

// isASCIIAlpha reports whether byte is ASCII latin letter.
func isASCIIAlpha(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
