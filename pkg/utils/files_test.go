package utils

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out.json")

	err := WriteFileAtomic(path, func(f *os.File) error {
		_, err := f.WriteString(`{"ok":true}`)
		return err
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read result: %v", err)
	}
	if string(data) != `{"ok":true}` {
		t.Errorf("Expected written content, got %q", data)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("Expected only the target file, got %d entries", len(entries))
	}
}

func TestWriteFileAtomicKeepsOldContentOnError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.json")
	if err := os.WriteFile(path, []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}

	boom := errors.New("boom")
	err := WriteFileAtomic(path, func(f *os.File) error {
		f.WriteString("partial")
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Expected write error, got %v", err)
	}

	data, _ := os.ReadFile(path)
	if string(data) != "old" {
		t.Errorf("Expected old content to survive, got %q", data)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("Expected temp file to be removed, got %d entries", len(entries))
	}
}

func TestDeleteFileMissing(t *testing.T) {
	if err := DeleteFile(filepath.Join(t.TempDir(), "missing")); err != nil {
		t.Errorf("Expected no error for a missing file, got %v", err)
	}
	if FileExists(t.TempDir()) {
		t.Error("Expected a directory not to count as a file")
	}
}
