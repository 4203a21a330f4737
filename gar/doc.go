// SPDX-License-Identifier: MIT
// Copyright (c) 2026 scfmod

/*
Package gar provides read, extract-oriented, and pack operations for GAR
game containers (.gar/.dlc). A container is a little-endian binary blob:

	header (16 bytes): magic ("GAR1" or "DLC1"), version u16, flags u16,
	                   entry count u32, entry table offset u32
	entry record:      name length u16, name bytes, compression u8,
	                   payload offset u32, stored size u32, original size u32
	payloads:          raw, LZSS, or LZ4 frame compressed entry bytes

Opening is all-or-nothing: the header is validated before the table is
touched, every entry range is checked against the real file size, and any
unsafe entry path (absolute, traversal, NUL) fails the open. A corrupt table
never yields a partial index.

# Reading

Open a container and read entries by archive-internal path:

	r, err := gar.Open("dataS.gar")
	if err != nil {
	    return err
	}
	defer r.Close()
	data, err := r.ReadEntry("scripts/main.l64")

The index carries a synthesized directory tree, so subtrees can be
enumerated without rescanning the entry list:

	err = r.WalkSubtree("scripts", true, func(e gar.EntryInfo) error {
	    // e.Path, e.OriginalSize
	    return nil
	})

Entry reads are safe to call concurrently from multiple goroutines.

For metadata-only scans use ListEntries, and DetectContainer for a cheap
magic sniff:

	if gar.DetectContainer("dataS.gar") {
	    entries, err := gar.ListEntries("dataS.gar")
	    _, _ = entries, err
	}

# Packing

Pack builds a valid container from in-memory inputs, with per-entry
compression selected by github.com/woozymasta/pathrules rules:

	inputs := []gar.Input{{Path: "scripts/main.l64", Data: blob}}
	res, err := gar.PackFile("mod.gar", inputs, gar.PackOptions{
	    Compress: []pathrules.Rule{
	        {Action: pathrules.ActionInclude, Pattern: "scripts/**"},
	    },
	})
	_ = res.CompressedEntries
*/
package gar
