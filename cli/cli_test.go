package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/scfmod/fs-utils/batch"
	"github.com/scfmod/fs-utils/garpath"
)

func TestOutputRoot(t *testing.T) {
	cases := []struct {
		name     string
		override string
		in       *garpath.Resolved
		want     string
	}{
		{"override wins", "custom", &garpath.Resolved{Kind: garpath.KindDir, Path: "mods"}, "custom"},
		{"file in place", "", &garpath.Resolved{Kind: garpath.KindFile, Path: filepath.Join("mods", "a.xml")}, "mods"},
		{"dir in place", "", &garpath.Resolved{Kind: garpath.KindDir, Path: "mods"}, "mods"},
		{"archive defaults to cwd", "", &garpath.Resolved{Kind: garpath.KindArchiveSubtree, Path: "dataS.gar"}, "."},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := outputRoot(tc.override, tc.in); got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestRunJob_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.xml", "b.xml", "c.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("data"), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	out := filepath.Join(t.TempDir(), "out")
	err := RunJob(context.Background(), Job{
		Input:      dir,
		Output:     out,
		Extensions: []string{"xml"},
		Process: func(it *batch.Item) ([]byte, error) {
			return it.Bytes()
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"a.xml", "b.xml"} {
		if _, err := os.Stat(filepath.Join(out, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(out, "c.txt")); err == nil {
		t.Error("c.txt should have been filtered out")
	}
}

func TestRunJob_NoMatchesExitsClean(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	err := RunJob(context.Background(), Job{
		Input:      dir,
		Output:     filepath.Join(t.TempDir(), "out"),
		Extensions: []string{"l64"},
		Process: func(it *batch.Item) ([]byte, error) {
			return it.Bytes()
		},
	})
	if err != nil {
		t.Fatalf("zero matched files must not fail the run, got %v", err)
	}
}

func TestRunJob_RequireItems(t *testing.T) {
	err := RunJob(context.Background(), Job{
		Input:        t.TempDir(),
		Output:       filepath.Join(t.TempDir(), "out"),
		RequireItems: true,
		Process: func(it *batch.Item) ([]byte, error) {
			return it.Bytes()
		},
	})
	if err == nil {
		t.Fatal("expected error for empty input with RequireItems")
	}
}

func TestRunJob_FailureReturnsError(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.xml"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	err := RunJob(context.Background(), Job{
		Input:  dir,
		Output: filepath.Join(t.TempDir(), "out"),
		Process: func(it *batch.Item) ([]byte, error) {
			return nil, os.ErrInvalid
		},
	})
	if err == nil {
		t.Fatal("expected error when items fail")
	}
}

func TestRunJob_UnresolvableInput(t *testing.T) {
	err := RunJob(context.Background(), Job{
		Input: filepath.Join(t.TempDir(), "missing"),
		Process: func(it *batch.Item) ([]byte, error) {
			return it.Bytes()
		},
	})
	if err == nil {
		t.Fatal("expected resolution error")
	}
}
