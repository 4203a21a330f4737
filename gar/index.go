// SPDX-License-Identifier: MIT
// Copyright (c) 2026 scfmod

package gar

import (
	"fmt"
	"sort"
	"strings"
)

// dirNode is one synthesized directory in the index tree. Ancestor
// directories of every entry path exist only here, never in the table.
type dirNode struct {
	// dirs maps child directory name to its node.
	dirs map[string]*dirNode
	// files maps child file name to entries position.
	files map[string]int
}

func newDirNode() *dirNode {
	return &dirNode{
		dirs:  make(map[string]*dirNode),
		files: make(map[string]int),
	}
}

// buildIndex deduplicates the parsed table per policy and synthesizes the
// directory tree. Shadowed records are dropped from the entry list so the
// index, tree, and Entries() stay consistent.
func (r *Reader) buildIndex(policy DuplicatePolicy) error {
	index := make(map[string]int, len(r.entries))
	for i := range r.entries {
		path := r.entries[i].Path
		prev, seen := index[path]
		if !seen {
			index[path] = i
			continue
		}

		switch policy {
		case DuplicateLastWins:
			index[path] = i
		case DuplicateFirstWins:
			index[path] = prev
		case DuplicateReject:
			return fmt.Errorf("%w: %s", ErrDuplicateEntryPath, path)
		default:
			return fmt.Errorf("unknown duplicate policy %q", policy)
		}

		r.duplicates = append(r.duplicates, path)
	}

	if len(r.duplicates) > 0 {
		kept := make([]EntryInfo, 0, len(index))
		for i := range r.entries {
			if index[r.entries[i].Path] == i {
				kept = append(kept, r.entries[i])
			}
		}

		r.entries = kept
		index = make(map[string]int, len(r.entries))
		for i := range r.entries {
			index[r.entries[i].Path] = i
		}
	}

	r.index = index
	r.root = newDirNode()
	for i := range r.entries {
		r.insertTreePath(r.entries[i].Path, i)
	}

	return nil
}

// insertTreePath adds one entry path to the directory tree, synthesizing
// ancestor directory nodes as needed.
func (r *Reader) insertTreePath(path string, idx int) {
	node := r.root
	parts := strings.Split(path, "/")
	for _, dir := range parts[:len(parts)-1] {
		child, ok := node.dirs[dir]
		if !ok {
			child = newDirNode()
			node.dirs[dir] = child
		}

		node = child
	}

	node.files[parts[len(parts)-1]] = idx
}

// lookupDir resolves a normalized slash path to a directory node.
// An empty path is the container root.
func (r *Reader) lookupDir(path string) (*dirNode, bool) {
	node := r.root
	if path == "" {
		return node, true
	}

	for _, part := range strings.Split(path, "/") {
		child, ok := node.dirs[part]
		if !ok {
			return nil, false
		}

		node = child
	}

	return node, true
}

// EntryByPath resolves one entry by archive-internal path.
func (r *Reader) EntryByPath(path string) (EntryInfo, bool) {
	if r == nil || r.index == nil {
		return EntryInfo{}, false
	}

	idx, ok := r.index[NormalizePath(path)]
	if !ok {
		return EntryInfo{}, false
	}

	return r.entries[idx], true
}

// HasDir reports whether path names a virtual directory inside the container.
// The empty path is the container root and always exists.
func (r *Reader) HasDir(path string) bool {
	if r == nil || r.root == nil {
		return false
	}

	_, ok := r.lookupDir(NormalizePath(path))
	return ok
}

// WalkSubtree invokes fn for every entry under prefix in deterministic
// (lexical) order. When recursive is false only direct children are visited;
// deeper files are skipped, not errored. Returning an error from fn stops
// the walk.
func (r *Reader) WalkSubtree(prefix string, recursive bool, fn func(entry EntryInfo) error) error {
	if r == nil || r.root == nil {
		return ErrNilReader
	}

	node, ok := r.lookupDir(NormalizePath(prefix))
	if !ok {
		return fmt.Errorf("%w: %s", ErrEntryNotFound, prefix)
	}

	return r.walkNode(node, recursive, fn)
}

// walkNode does a depth-first traversal of one tree node with sorted child order.
func (r *Reader) walkNode(node *dirNode, recursive bool, fn func(entry EntryInfo) error) error {
	names := make([]string, 0, len(node.files))
	for name := range node.files {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := fn(r.entries[node.files[name]]); err != nil {
			return err
		}
	}

	if !recursive {
		return nil
	}

	dirs := make([]string, 0, len(node.dirs))
	for name := range node.dirs {
		dirs = append(dirs, name)
	}
	sort.Strings(dirs)

	for _, name := range dirs {
		if err := r.walkNode(node.dirs[name], true, fn); err != nil {
			return err
		}
	}

	return nil
}
