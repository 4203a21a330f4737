package batch

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/scfmod/fs-utils/gar"
	"github.com/scfmod/fs-utils/garpath"
	"github.com/scfmod/fs-utils/output"
)

// upper is the trivial transform used by most pipeline tests.
func upper(it *Item) ([]byte, error) {
	data, err := it.Bytes()
	if err != nil {
		return nil, err
	}

	return bytes.ToUpper(data), nil
}

func newTestWriter(t *testing.T) *output.Writer {
	t.Helper()

	w, err := output.NewWriter(filepath.Join(t.TempDir(), "out"))
	if err != nil {
		t.Fatal(err)
	}

	return w
}

// packFixture writes a container holding the given path->payload map.
func packFixture(t *testing.T, dir string, files map[string][]byte) string {
	t.Helper()

	inputs := make([]gar.Input, 0, len(files))
	for p, data := range files {
		inputs = append(inputs, gar.Input{Path: p, Data: data})
	}

	dst := filepath.Join(dir, "dataS.gar")
	if _, err := gar.PackFile(dst, inputs, gar.PackOptions{}); err != nil {
		t.Fatal(err)
	}

	return dst
}

func resolveInput(t *testing.T, input string) *garpath.Resolved {
	t.Helper()

	in, err := garpath.Resolve(input)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = in.Close() })

	return in
}

func TestRun_SingleFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "script.lua")
	if err := os.WriteFile(src, []byte("print"), 0o600); err != nil {
		t.Fatal(err)
	}

	w := newTestWriter(t)
	res, err := Run(context.Background(), resolveInput(t, src), Options{
		Process: upper,
		Writer:  w,
	})
	if err != nil {
		t.Fatal(err)
	}

	if res.Succeeded != 1 || res.Failed() {
		t.Fatalf("result: %+v", res)
	}

	got, err := os.ReadFile(filepath.Join(w.Root(), "script.lua"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "PRINT" {
		t.Errorf("content: got %q", got)
	}
}

func TestRun_DirectoryRecursion(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string][]byte{
		"a.lua":          []byte("a"),
		"sub/b.lua":      []byte("b"),
		"sub/deep/c.lua": []byte("c"),
		"readme.txt":     []byte("skip"),
	})

	filter, err := NewExtensionMatcher([]string{"lua"})
	if err != nil {
		t.Fatal(err)
	}

	for _, tc := range []struct {
		name      string
		recursive bool
		want      []string
	}{
		{"non-recursive", false, []string{"a.lua"}},
		{"recursive", true, []string{"a.lua", "sub/b.lua", "sub/deep/c.lua"}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			w := newTestWriter(t)
			res, err := Run(context.Background(), resolveInput(t, dir), Options{
				Recursive: tc.recursive,
				Filter:    filter,
				Process:   upper,
				Writer:    w,
			})
			if err != nil {
				t.Fatal(err)
			}

			if got := succeededPaths(res); !equalStrings(got, tc.want) {
				t.Errorf("paths: got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestRun_ArchiveSubtreeMirrorsFullPath(t *testing.T) {
	archive := packFixture(t, t.TempDir(), map[string][]byte{
		"a/x.bin":   bytes.Repeat([]byte("x"), 10),
		"a/b/y.bin": bytes.Repeat([]byte("y"), 20),
		"top.bin":   []byte("t"),
	})

	for _, tc := range []struct {
		name      string
		recursive bool
		want      []string
	}{
		{"non-recursive", false, []string{"a/x.bin"}},
		{"recursive", true, []string{"a/b/y.bin", "a/x.bin"}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			w := newTestWriter(t)
			res, err := Run(context.Background(), resolveInput(t, filepath.Join(archive, "a")), Options{
				Recursive: tc.recursive,
				Process:   upper,
				Writer:    w,
			})
			if err != nil {
				t.Fatal(err)
			}

			if got := succeededPaths(res); !equalStrings(got, tc.want) {
				t.Fatalf("paths: got %v, want %v", got, tc.want)
			}

			// Output mirrors the full logical entry path, rooted at "a/".
			for _, rel := range tc.want {
				if _, err := os.Stat(filepath.Join(w.Root(), filepath.FromSlash(rel))); err != nil {
					t.Errorf("missing output for %s: %v", rel, err)
				}
			}
		})
	}
}

func TestRun_ArchiveEntry(t *testing.T) {
	archive := packFixture(t, t.TempDir(), map[string][]byte{
		"scripts/main.lua": []byte("body"),
	})

	w := newTestWriter(t)
	res, err := Run(context.Background(), resolveInput(t, filepath.Join(archive, "scripts", "main.lua")), Options{
		Process: upper,
		Writer:  w,
	})
	if err != nil {
		t.Fatal(err)
	}

	if got := succeededPaths(res); !equalStrings(got, []string{"scripts/main.lua"}) {
		t.Fatalf("paths: got %v", got)
	}
}

func TestRun_WorkerCountsAgree(t *testing.T) {
	dir := t.TempDir()
	files := map[string][]byte{}
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		files[name+".lua"] = []byte(name)
	}
	files["bad.lua"] = nil
	writeTree(t, dir, files)

	fail := func(it *Item) ([]byte, error) {
		data, err := it.Bytes()
		if err != nil {
			return nil, err
		}
		if len(data) == 0 {
			return nil, errors.New("empty payload")
		}

		return bytes.ToUpper(data), nil
	}

	var results [2]*Result
	for i, workers := range []int{1, 8} {
		w := newTestWriter(t)
		res, err := Run(context.Background(), resolveInput(t, dir), Options{
			Recursive: true,
			Workers:   workers,
			Process:   fail,
			Writer:    w,
		})
		if err != nil {
			t.Fatal(err)
		}

		results[i] = res
	}

	for i, res := range results {
		if res.Enumerated != 9 || res.Attempted != 9 || res.Succeeded != 8 || res.Failures != 1 {
			t.Errorf("run %d: %+v", i, res)
		}
		if !res.Failed() {
			t.Errorf("run %d: expected Failed", i)
		}
	}

	if !equalStrings(succeededPaths(results[0]), succeededPaths(results[1])) {
		t.Errorf("sequential and parallel runs disagree: %v vs %v",
			succeededPaths(results[0]), succeededPaths(results[1]))
	}
}

func TestRun_PerItemFailureContinues(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string][]byte{
		"ok.lua":  []byte("ok"),
		"bad.lua": []byte("bad"),
	})

	w := newTestWriter(t)
	res, err := Run(context.Background(), resolveInput(t, dir), Options{
		Workers: 1,
		Process: func(it *Item) ([]byte, error) {
			if it.RelPath == "bad.lua" {
				return nil, errors.New("broken")
			}

			return it.Bytes()
		},
		Writer: w,
	})
	if err != nil {
		t.Fatal(err)
	}

	if res.Succeeded != 1 || res.Failures != 1 || res.FatalErr != nil {
		t.Fatalf("result: %+v", res)
	}
	for _, item := range res.Items {
		if item.RelPath == "bad.lua" && item.Err == nil {
			t.Error("bad.lua: expected recorded error")
		}
	}
}

func TestRun_FatalStopsDispatch(t *testing.T) {
	dir := t.TempDir()
	files := map[string][]byte{}
	for i := range 64 {
		files[string(rune('a'+i%26))+string(rune('a'+i/26))+".lua"] = []byte("x")
	}
	writeTree(t, dir, files)

	cause := errors.New("backend vanished")
	w := newTestWriter(t)
	res, err := Run(context.Background(), resolveInput(t, dir), Options{
		Workers: 1,
		Process: func(it *Item) ([]byte, error) {
			return nil, Fatal(cause)
		},
		Writer: w,
	})
	if err != nil {
		t.Fatal(err)
	}

	if res.FatalErr == nil || !errors.Is(res.FatalErr, cause) {
		t.Fatalf("FatalErr: got %v", res.FatalErr)
	}
	if !res.Failed() {
		t.Error("expected Failed")
	}
	// Sequential worker sees the fatal item, then stops pulling new work.
	if res.Attempted >= res.Enumerated {
		t.Errorf("dispatch not stopped: attempted %d of %d", res.Attempted, res.Enumerated)
	}
}

func TestRun_NoMatchedItems(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string][]byte{"readme.txt": []byte("x")})

	filter, err := NewExtensionMatcher([]string{"l64"})
	if err != nil {
		t.Fatal(err)
	}

	res, err := Run(context.Background(), resolveInput(t, dir), Options{
		Filter:  filter,
		Process: upper,
		Writer:  newTestWriter(t),
	})
	if err != nil {
		t.Fatalf("zero matched items must not be an error, got %v", err)
	}

	if res.Enumerated != 0 || res.Attempted != 0 || len(res.Items) != 0 {
		t.Errorf("expected empty result, got %+v", res)
	}
	if res.Failed() {
		t.Error("empty run must not count as failed")
	}
}

func TestRun_SkipPredicate(t *testing.T) {
	archive := packFixture(t, t.TempDir(), map[string][]byte{
		"scripts/keep.l64":          []byte("k"),
		"scripts/XMLSchema.l64":     []byte("s"),
		"scripts/sub/XMLSchema.l64": []byte("s"),
	})

	w := newTestWriter(t)
	res, err := Run(context.Background(), resolveInput(t, archive), Options{
		Recursive: true,
		Skip: func(rel string) bool {
			return filepath.Base(rel) == "XMLSchema.l64"
		},
		Process: upper,
		Writer:  w,
	})
	if err != nil {
		t.Fatal(err)
	}

	if got := succeededPaths(res); !equalStrings(got, []string{"scripts/keep.l64"}) {
		t.Errorf("paths: got %v", got)
	}
}

func TestRun_OutputNameRename(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string][]byte{"main.l64": []byte("x")})

	w := newTestWriter(t)
	_, err := Run(context.Background(), resolveInput(t, filepath.Join(dir, "main.l64")), Options{
		Process: upper,
		OutputName: func(rel string) string {
			return rel[:len(rel)-len(".l64")] + ".lua"
		},
		Writer: w,
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(filepath.Join(w.Root(), "main.lua")); err != nil {
		t.Errorf("renamed output missing: %v", err)
	}
}

func TestNewExtensionMatcher(t *testing.T) {
	m, err := NewExtensionMatcher([]string{"lua", ".L64"})
	if err != nil {
		t.Fatal(err)
	}

	cases := map[string]bool{
		"a.lua":         true,
		"dir/sub/b.LUA": true,
		"c.l64":         true,
		"d.txt":         false,
		"lua":           false,
	}
	for p, want := range cases {
		if got := m.Included(p, false); got != want {
			t.Errorf("%s: got %v, want %v", p, got, want)
		}
	}

	empty, err := NewExtensionMatcher(nil)
	if err != nil {
		t.Fatal(err)
	}
	if empty != nil {
		t.Error("empty extension list should yield nil matcher")
	}
}

func TestMergeResults(t *testing.T) {
	buffers := [][]ItemResult{
		{{RelPath: "a"}, {RelPath: "b", Err: errors.New("x")}},
		nil,
		{{RelPath: "c"}},
	}

	res := mergeResults(buffers, 5)

	if res.Enumerated != 5 || res.Attempted != 3 || res.Succeeded != 2 || res.Failures != 1 {
		t.Errorf("counts: %+v", res)
	}
	if len(res.Items) != 3 {
		t.Errorf("items: got %d", len(res.Items))
	}
	if !res.Failed() {
		t.Error("expected Failed")
	}
}

// writeTree materializes a path->payload map under root.
func writeTree(t *testing.T, root string, files map[string][]byte) {
	t.Helper()

	for rel, data := range files {
		dst := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(dst, data, 0o600); err != nil {
			t.Fatal(err)
		}
	}
}

func succeededPaths(res *Result) []string {
	var paths []string
	for _, item := range res.Items {
		if item.Err == nil {
			paths = append(paths, item.RelPath)
		}
	}
	sort.Strings(paths)

	return paths
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}
