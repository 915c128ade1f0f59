package storage

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteAndRead(t *testing.T) {
	for _, mode := range []WriteMode{ModeTruncate, ModeAtomic} {
		f := NewFile(filepath.Join(t.TempDir(), "contacts.json"), mode)
		content := []byte(`[{"name":"A","phone":"1"}]`)
		if err := f.Write(content); err != nil {
			t.Fatalf("Write(mode %d): %v", mode, err)
		}
		got, err := f.Read()
		if err != nil {
			t.Fatalf("Read(mode %d): %v", mode, err)
		}
		if string(got) != string(content) {
			t.Errorf("mode %d: content mismatch: got %q", mode, got)
		}
	}
}

func TestWriteOverwritesCompletely(t *testing.T) {
	f := NewFile(filepath.Join(t.TempDir(), "contacts.json"), ModeTruncate)
	_ = f.Write([]byte("a much longer original payload"))
	if err := f.Write([]byte("short")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, _ := f.Read()
	if string(got) != "short" {
		t.Errorf("content = %q, want %q", got, "short")
	}
}

func TestReadMissing(t *testing.T) {
	f := NewFile(filepath.Join(t.TempDir(), "nope.json"), ModeTruncate)
	_, err := f.Read()
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Read missing = %v, want fs.ErrNotExist", err)
	}
}

func TestWriteMissingDir(t *testing.T) {
	for _, mode := range []WriteMode{ModeTruncate, ModeAtomic} {
		f := NewFile(filepath.Join(t.TempDir(), "no", "such", "dir", "contacts.json"), mode)
		if err := f.Write([]byte("x")); err == nil {
			t.Errorf("mode %d: expected error writing into a missing directory", mode)
		}
	}
}

func TestAtomicWriteNoLeftovers(t *testing.T) {
	dir := t.TempDir()
	f := NewFile(filepath.Join(dir, "contacts.json"), ModeAtomic)
	_ = f.Write([]byte("original content"))
	if err := f.Write([]byte("updated content")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, _ := f.Read()
	if string(got) != "updated content" {
		t.Errorf("expected updated content, got %q", got)
	}

	matches, _ := filepath.Glob(filepath.Join(dir, ".rolodex-tmp-*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
	info, err := os.Stat(f.Path())
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Mode().Perm() != 0o644 {
		t.Errorf("mode = %v, want 0644", info.Mode().Perm())
	}
}
