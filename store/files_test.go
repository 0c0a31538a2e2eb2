package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestOpenFileStore(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "src/a.ts", []byte("export const a = 1;\n"))
	b := writeFile(t, dir, "src/b.json", []byte(`{"name":"b"}`))
	c := writeFile(t, dir, "README.md", []byte("# readme\n"))

	s := NewOpenFileStore(1 << 20)
	for _, p := range []string{a, b, c} {
		if _, err := s.Open(p); err != nil {
			t.Fatalf("open %s: %v", p, err)
		}
	}

	if s.Len() != 3 {
		t.Fatalf("len = %d", s.Len())
	}
	if active, _ := s.Active(); active.Path != c {
		t.Errorf("active = %s, want last opened", active.Path)
	}

	// reopening keeps position
	if _, err := s.Open(a); err != nil {
		t.Fatal(err)
	}
	if list := s.List(); list[0].Path != a {
		t.Errorf("reopen moved the file: %v", list[0].Path)
	}

	next, _ := s.Next()
	if next.Path != b {
		t.Errorf("next = %s, want %s", next.Path, b)
	}

	closed, err := s.CloseMatching(filepath.Join(dir, "src", "**"))
	if err != nil {
		t.Fatalf("close matching: %v", err)
	}
	if len(closed) != 2 {
		t.Fatalf("closed %v", closed)
	}
	if active, ok := s.Active(); !ok || active.Path != c {
		t.Errorf("active after close = %+v %v", active, ok)
	}

	if !s.Close(c) || s.Close(c) {
		t.Errorf("close should succeed once")
	}
	if _, ok := s.Active(); ok {
		t.Errorf("no file should be active")
	}
}

func TestOpenFileStoreRejects(t *testing.T) {
	dir := t.TempDir()
	s := NewOpenFileStore(16)

	binary := writeFile(t, dir, "img.png", []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"))
	if _, err := s.Open(binary); !errors.Is(err, ErrNotText) {
		t.Errorf("binary file: %v", err)
	}

	big := writeFile(t, dir, "big.txt", []byte("this is more than sixteen bytes"))
	if _, err := s.Open(big); !errors.Is(err, ErrFileTooBig) {
		t.Errorf("big file: %v", err)
	}

	if _, err := s.Open(dir); err == nil {
		t.Errorf("directory opened")
	}

	if _, err := s.CloseMatching("[unclosed"); err == nil {
		t.Errorf("bad pattern accepted")
	}

	if err := s.SetActive(filepath.Join(dir, "nope.txt")); !errors.Is(err, ErrFileNotOpen) {
		t.Errorf("set active on closed file: %v", err)
	}
}
