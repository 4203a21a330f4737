// SPDX-License-Identifier: MIT
// Copyright (c) 2026 scfmod

package batch

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/scfmod/fs-utils/gar"
	"github.com/scfmod/fs-utils/garpath"
)

// enumerate expands one resolved input into concrete work items. Extension
// filtering and the skip predicate apply uniformly to all four variants
// before an item is constructed.
func enumerate(in *garpath.Resolved, opts Options) ([]*Item, error) {
	switch in.Kind {
	case garpath.KindFile:
		return enumeratePlainFile(in.Path, opts)
	case garpath.KindDir:
		return enumerateDir(in.Path, opts)
	case garpath.KindArchiveEntry:
		entry := in.Entry
		if !opts.accepts(entry.Path) {
			return nil, nil
		}

		return []*Item{archiveItem(in.Reader, entry)}, nil
	case garpath.KindArchiveSubtree:
		return enumerateSubtree(in.Reader, in.Prefix, opts)
	default:
		return nil, fmt.Errorf("unknown input kind %d", in.Kind)
	}
}

// enumeratePlainFile yields at most one item for a direct file input.
func enumeratePlainFile(path string, opts Options) ([]*Item, error) {
	name := filepath.Base(path)
	if !opts.accepts(name) {
		return nil, nil
	}

	var hint int64
	if info, err := os.Stat(path); err == nil {
		hint = info.Size()
	}

	return []*Item{fileItem(path, name, hint)}, nil
}

// enumerateDir walks a plain directory. Non-recursive mode considers only
// direct children; deeper files are skipped, not errored.
func enumerateDir(root string, opts Options) ([]*Item, error) {
	var items []*Item

	if !opts.Recursive {
		children, err := os.ReadDir(root)
		if err != nil {
			return nil, fmt.Errorf("read directory %s: %w", root, err)
		}

		for _, child := range children {
			if child.IsDir() || !opts.accepts(child.Name()) {
				continue
			}

			info, err := child.Info()
			var hint int64
			if err == nil {
				hint = info.Size()
			}

			items = append(items, fileItem(filepath.Join(root, child.Name()), child.Name(), hint))
		}

		return items, nil
	}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		rel = filepath.ToSlash(rel)
		if !opts.accepts(rel) {
			return nil
		}

		info, err := d.Info()
		var hint int64
		if err == nil {
			hint = info.Size()
		}

		items = append(items, fileItem(path, rel, hint))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory %s: %w", root, err)
	}

	return items, nil
}

// enumerateSubtree walks the container index tree under prefix. Output paths
// mirror the full logical entry path, so extraction rooted at "a" still
// lands under "<out>/a/".
func enumerateSubtree(r *gar.Reader, prefix string, opts Options) ([]*Item, error) {
	var items []*Item

	err := r.WalkSubtree(prefix, opts.Recursive, func(entry gar.EntryInfo) error {
		if !opts.accepts(entry.Path) {
			return nil
		}

		items = append(items, archiveItem(r, entry))
		return nil
	})
	if err != nil {
		return nil, err
	}

	return items, nil
}

// fileItem builds one work item backed by a plain file.
func fileItem(path, rel string, hint int64) *Item {
	return &Item{
		RelPath:  rel,
		SizeHint: hint,
		open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}
}

// archiveItem builds one work item backed by a container entry.
func archiveItem(r *gar.Reader, entry gar.EntryInfo) *Item {
	return &Item{
		RelPath:  entry.Path,
		SizeHint: int64(entry.OriginalSize),
		open: func() (io.ReadCloser, error) {
			return r.OpenEntryInfo(entry)
		},
	}
}
