// SPDX-License-Identifier: MIT
// Copyright (c) 2026 scfmod

package batch

import (
	"fmt"
	"strings"

	"github.com/woozymasta/pathrules"
)

// NewExtensionMatcher compiles a case-insensitive matcher that includes only
// paths carrying one of the given extensions (without the leading dot).
// A nil or empty extension list yields a nil matcher, meaning "accept all".
func NewExtensionMatcher(exts []string) (*pathrules.Matcher, error) {
	rules := make([]pathrules.Rule, 0, 2*len(exts))
	for _, ext := range exts {
		ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
		if ext == "" {
			continue
		}

		rules = append(rules,
			pathrules.Rule{Action: pathrules.ActionInclude, Pattern: "*." + ext},
			pathrules.Rule{Action: pathrules.ActionInclude, Pattern: "**/*." + ext},
		)
	}
	if len(rules) == 0 {
		return nil, nil
	}

	matcher, err := pathrules.NewMatcher(rules, pathrules.MatcherOptions{
		CaseInsensitive: true,
		DefaultAction:   pathrules.ActionExclude,
	})
	if err != nil {
		return nil, fmt.Errorf("compile extension rules: %w", err)
	}

	return matcher, nil
}
