package gar

import (
	"testing"
)

func openTreeFixture(t *testing.T) *Reader {
	t.Helper()

	data := buildManualGar(t, magicGar, 1, []rawEntry{
		{path: "a/x.bin", payload: []byte("xxxxxxxxxx")},
		{path: "a/b/y.bin", payload: []byte("yyyyyyyyyyyyyyyyyyyy")},
		{path: "a/b/c/z.bin", payload: []byte("z")},
		{path: "top.txt", payload: []byte("t")},
	})
	r, err := Open(writeManualGar(t, data))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = r.Close() })

	return r
}

func TestEntryByPath(t *testing.T) {
	r := openTreeFixture(t)

	entry, ok := r.EntryByPath("a/b/y.bin")
	if !ok {
		t.Fatal("expected a/b/y.bin to resolve")
	}
	if entry.OriginalSize != 20 {
		t.Errorf("size: got %d", entry.OriginalSize)
	}

	// Backslashes and leading ./ are accepted on lookup.
	if _, ok := r.EntryByPath(`a\b\y.bin`); !ok {
		t.Error("expected backslash lookup to resolve")
	}
	if _, ok := r.EntryByPath("./top.txt"); !ok {
		t.Error("expected ./ lookup to resolve")
	}

	if _, ok := r.EntryByPath("a/b"); ok {
		t.Error("directory path must not resolve to an entry")
	}
	if _, ok := r.EntryByPath("missing.txt"); ok {
		t.Error("missing path must not resolve")
	}
}

func TestHasDir(t *testing.T) {
	r := openTreeFixture(t)

	for _, dir := range []string{"", "a", "a/b", "a/b/c"} {
		if !r.HasDir(dir) {
			t.Errorf("expected %q to be a virtual directory", dir)
		}
	}
	for _, dir := range []string{"a/x.bin", "a/missing", "top.txt"} {
		if r.HasDir(dir) {
			t.Errorf("expected %q to not be a directory", dir)
		}
	}
}

func TestWalkSubtree(t *testing.T) {
	r := openTreeFixture(t)

	collect := func(prefix string, recursive bool) []string {
		t.Helper()
		var paths []string
		if err := r.WalkSubtree(prefix, recursive, func(e EntryInfo) error {
			paths = append(paths, e.Path)
			return nil
		}); err != nil {
			t.Fatal(err)
		}
		return paths
	}

	got := collect("a", false)
	if len(got) != 1 || got[0] != "a/x.bin" {
		t.Errorf("non-recursive walk of a: %v", got)
	}

	got = collect("a", true)
	want := []string{"a/x.bin", "a/b/y.bin", "a/b/c/z.bin"}
	if len(got) != len(want) {
		t.Fatalf("recursive walk of a: %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("recursive walk of a: got %v, want %v", got, want)
			break
		}
	}

	got = collect("", true)
	if len(got) != 4 {
		t.Errorf("recursive walk of root: %v", got)
	}

	if err := r.WalkSubtree("nope", true, func(EntryInfo) error { return nil }); err == nil {
		t.Error("expected walk of missing subtree to fail")
	}
}
