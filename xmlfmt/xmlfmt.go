// SPDX-License-Identifier: MIT
// Copyright (c) 2026 scfmod

// Package xmlfmt re-indents XML documents. Comments and CDATA are preserved;
// the output always starts with an XML declaration.
package xmlfmt

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// IndentChar selects the character used for indentation.
type IndentChar string

const (
	IndentSpace IndentChar = "space"
	IndentTab   IndentChar = "tab"
)

// ParseIndentChar maps a CLI flag value to an IndentChar.
func ParseIndentChar(s string) (IndentChar, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "space", "":
		return IndentSpace, nil
	case "tab":
		return IndentTab, nil
	default:
		return "", fmt.Errorf("unknown indent character %q (want space or tab)", s)
	}
}

// Options configure one formatting pass.
type Options struct {
	// Char is the indent character. Empty selects spaces.
	Char IndentChar
	// Size is the indent width per nesting level. Zero selects 4. Tab
	// indentation always uses one tab per level.
	Size int
}

func (o *Options) applyDefaults() {
	if o.Char == "" {
		o.Char = IndentSpace
	}
	if o.Size <= 0 {
		o.Size = 4
	}
}

// Format parses data as XML and returns it re-indented.
func Format(data []byte, opts Options) ([]byte, error) {
	opts.applyDefaults()

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("parse xml: %w", err)
	}
	if doc.Root() == nil {
		return nil, fmt.Errorf("parse xml: no root element")
	}

	ensureDeclaration(doc)

	settings := etree.NewIndentSettings()
	settings.Spaces = opts.Size
	settings.UseTabs = opts.Char == IndentTab
	doc.IndentWithSettings(settings)

	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("serialize xml: %w", err)
	}

	return out, nil
}

// ensureDeclaration prepends an XML declaration when the source had none.
func ensureDeclaration(doc *etree.Document) {
	for _, child := range doc.Child {
		if pi, ok := child.(*etree.ProcInst); ok && pi.Target == "xml" {
			return
		}
	}

	doc.InsertChildAt(0, etree.NewProcInst("xml", `version="1.0" encoding="utf-8"`))
}
