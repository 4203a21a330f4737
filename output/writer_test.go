package output

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestWriter_WriteCreatesDirs(t *testing.T) {
	w, err := NewWriter(filepath.Join(t.TempDir(), "out"))
	if err != nil {
		t.Fatal(err)
	}

	dst, err := w.Write("a/b/c.txt", []byte("payload"))
	if err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "payload" {
		t.Errorf("content: got %q", got)
	}
}

func TestWriter_OverwritesExistingFile(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if _, err := w.Write("x.txt", []byte("old")); err != nil {
		t.Fatal(err)
	}
	dst, err := w.Write("x.txt", []byte("new"))
	if err != nil {
		t.Fatal(err)
	}

	got, _ := os.ReadFile(dst)
	if string(got) != "new" {
		t.Errorf("content: got %q", got)
	}
}

func TestWriter_DirectoryConflict(t *testing.T) {
	root := t.TempDir()
	w, err := NewWriter(root)
	if err != nil {
		t.Fatal(err)
	}

	if err := os.MkdirAll(filepath.Join(root, "taken"), 0o750); err != nil {
		t.Fatal(err)
	}

	if _, err := w.Write("taken", []byte("x")); !errors.Is(err, ErrOutputConflict) {
		t.Fatalf("expected ErrOutputConflict, got %v", err)
	}
}

func TestWriter_RejectsTraversal(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	for _, rel := range []string{"../escape.txt", "a/../../b", "/abs.txt", `..\win.txt`, "C:/drive.txt", "", "."} {
		if _, err := w.Write(rel, []byte("x")); !errors.Is(err, ErrUnsafeRelPath) {
			t.Errorf("rel %q: expected ErrUnsafeRelPath, got %v", rel, err)
		}
	}
}

func TestWriter_NormalizesBackslashes(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	dst, err := w.Write(`dir\file.txt`, []byte("x"))
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(filepath.Dir(dst)) != "dir" {
		t.Errorf("destination: got %s", dst)
	}
}
