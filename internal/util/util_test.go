package util

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "present.txt")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if !FileExists(path) {
		t.Error("FileExists(file) = false, want true")
	}
	if FileExists(dir) {
		t.Error("FileExists(directory) = true, want false")
	}
	if FileExists(filepath.Join(dir, "absent.txt")) {
		t.Error("FileExists(missing) = true, want false")
	}
}

func TestDirExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "present.txt")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if !DirExists(dir) {
		t.Error("DirExists(directory) = false, want true")
	}
	if DirExists(path) {
		t.Error("DirExists(file) = true, want false")
	}
	if DirExists(filepath.Join(dir, "absent")) {
		t.Error("DirExists(missing) = true, want false")
	}
}

// A name too long for the filesystem makes Stat fail with an error
// other than not-exist; both checks must report false, not panic.
func TestExistsStatError(t *testing.T) {
	path := filepath.Join(t.TempDir(), strings.Repeat("a", 5000))
	if FileExists(path) {
		t.Error("FileExists on stat error = true, want false")
	}
	if DirExists(path) {
		t.Error("DirExists on stat error = true, want false")
	}
}
