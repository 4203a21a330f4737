// SPDX-License-Identifier: MIT
// Copyright (c) 2026 scfmod

package gar

import (
	"bytes"
	"fmt"

	"github.com/pierrec/lz4/v4"
	"github.com/woozymasta/lzss"
	"github.com/woozymasta/pathrules"
)

// compressMatcher holds compiled allow-list rules for compression.
type compressMatcher struct {
	matcher *pathrules.Matcher
}

// newCompressMatcher compiles compression path rules.
func newCompressMatcher(rules []pathrules.Rule, opts pathrules.MatcherOptions) (*compressMatcher, error) {
	rules = normalizeCompressRules(rules)
	if len(rules) == 0 {
		return nil, nil
	}

	matcher, err := pathrules.NewMatcher(rules, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: compile rules: %w", ErrInvalidCompressPattern, err)
	}

	return &compressMatcher{matcher: matcher}, nil
}

// normalizeCompressRules normalizes rule patterns and drops empty patterns.
func normalizeCompressRules(rules []pathrules.Rule) []pathrules.Rule {
	normalized := make([]pathrules.Rule, 0, len(rules))
	for _, rule := range rules {
		pattern := NormalizePath(rule.Pattern)
		if pattern == "" {
			continue
		}

		normalized = append(normalized, pathrules.Rule{
			Action:  rule.Action,
			Pattern: pattern,
		})
	}

	return normalized
}

// Match reports whether path is included by at least one compress rule.
func (m *compressMatcher) Match(path string) bool {
	if m == nil || m.matcher == nil {
		return false
	}

	candidate := NormalizePath(path)
	if candidate == "" {
		return false
	}

	return m.matcher.Included(candidate, false)
}

// shouldCompress returns true if path and size pass compression policy.
func shouldCompress(opts PackOptions, matcher *compressMatcher, path string, size uint32) bool {
	if size < opts.MinCompressSize || size > opts.MaxCompressSize {
		return false
	}

	if matcher == nil {
		return false
	}

	return matcher.Match(path)
}

// compressPayload compresses data with the selected method.
func compressPayload(method Compression, data []byte) ([]byte, error) {
	switch method {
	case CompressionLZSS:
		return lzss.Compress(data, lzss.DefaultCompressOptions())
	case CompressionLZ4:
		var buf bytes.Buffer
		zw := lz4.NewWriter(&buf)
		if _, err := zw.Write(data); err != nil {
			return nil, err
		}
		if err := zw.Close(); err != nil {
			return nil, err
		}

		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("%w: tag %d", ErrUnknownCompression, method)
	}
}
