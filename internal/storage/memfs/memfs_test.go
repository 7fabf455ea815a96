package memfs

import (
	"bytes"
	"errors"
	"testing"
)

func TestReadWriteRoundTrip(t *testing.T) {
	s, err := Open()
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	// Binary content with bytes outside the ASCII range
	content := []byte{0x00, 0x01, 0xff, 0xfe, 'O', 'T', 'F', 0x80}

	if err := s.WriteFile("/font.otf", content); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	got, err := s.ReadFile("/font.otf")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Errorf("content mismatch: got %v, want %v", got, content)
	}

	// Mutating the returned slice must not affect stored bytes
	got[0] = 0x42
	again, _ := s.ReadFile("/font.otf")
	if again[0] != 0x00 {
		t.Error("stored content was mutated through returned slice")
	}
}

func TestWriteRequiresParent(t *testing.T) {
	s, _ := Open()

	err := s.WriteFile("/missing/file.glyphs", []byte("x"))
	if !errors.Is(err, ErrNotExist) {
		t.Errorf("expected ErrNotExist, got %v", err)
	}

	if err := s.MkdirAll("/missing"); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	if err := s.WriteFile("/missing/file.glyphs", []byte("x")); err != nil {
		t.Errorf("WriteFile after MkdirAll failed: %v", err)
	}
}

func TestReadDir(t *testing.T) {
	s, _ := Open()
	if err := s.MkdirAll("/fonts/sub"); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	s.WriteFile("/fonts/b.ufo", []byte("b"))
	s.WriteFile("/fonts/a.ufo", []byte("aa"))

	infos, err := s.ReadDir("/fonts")
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(infos) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(infos))
	}

	// Sorted by name
	if infos[0].Name != "a.ufo" || infos[1].Name != "b.ufo" || infos[2].Name != "sub" {
		t.Errorf("unexpected order: %v %v %v", infos[0].Name, infos[1].Name, infos[2].Name)
	}
	if infos[0].Size != 2 || infos[0].IsDir {
		t.Errorf("a.ufo: size=%d isDir=%v", infos[0].Size, infos[0].IsDir)
	}
	if !infos[2].IsDir {
		t.Error("sub should be a directory")
	}
}

func TestReadDirErrors(t *testing.T) {
	s, _ := Open()
	s.WriteFile("/file", []byte("x"))

	if _, err := s.ReadDir("/nope"); !errors.Is(err, ErrNotExist) {
		t.Errorf("missing dir: expected ErrNotExist, got %v", err)
	}
	if _, err := s.ReadDir("/file"); !errors.Is(err, ErrNotDir) {
		t.Errorf("file: expected ErrNotDir, got %v", err)
	}
}

func TestMkdirAllIdempotent(t *testing.T) {
	s, _ := Open()

	if err := s.MkdirAll("/a/b/c"); err != nil {
		t.Fatalf("first MkdirAll failed: %v", err)
	}
	if err := s.MkdirAll("/a/b/c"); err != nil {
		t.Fatalf("second MkdirAll failed: %v", err)
	}
	if !s.IsDir("/a") || !s.IsDir("/a/b") || !s.IsDir("/a/b/c") {
		t.Error("intermediate directories missing")
	}
}

func TestRemove(t *testing.T) {
	s, _ := Open()
	s.MkdirAll("/dir")
	s.WriteFile("/dir/f", []byte("x"))

	if err := s.Remove("/dir"); !errors.Is(err, ErrNotEmpty) {
		t.Errorf("non-empty dir: expected ErrNotEmpty, got %v", err)
	}
	if err := s.Remove("/dir/f"); err != nil {
		t.Fatalf("Remove file failed: %v", err)
	}
	if err := s.Remove("/dir"); err != nil {
		t.Fatalf("Remove empty dir failed: %v", err)
	}
	if err := s.Remove("/dir"); !errors.Is(err, ErrNotExist) {
		t.Errorf("missing: expected ErrNotExist, got %v", err)
	}
}

func TestRemoveAll(t *testing.T) {
	s, _ := Open()
	s.MkdirAll("/proj/nested")
	s.WriteFile("/proj/f1", []byte("1"))
	s.WriteFile("/proj/nested/f2", []byte("2"))

	if err := s.RemoveAll("/proj"); err != nil {
		t.Fatalf("RemoveAll failed: %v", err)
	}
	if s.Exists("/proj") || s.Exists("/proj/nested/f2") {
		t.Error("descendants survived RemoveAll")
	}

	// Removing a missing path succeeds
	if err := s.RemoveAll("/proj"); err != nil {
		t.Errorf("RemoveAll on missing path: %v", err)
	}
}

func TestStat(t *testing.T) {
	s, _ := Open()
	s.WriteFile("/f.plist", []byte("abc"))

	info, err := s.Stat("/f.plist")
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Name != "f.plist" || info.Size != 3 || info.IsDir {
		t.Errorf("unexpected info: %+v", info)
	}
	if info.ModTime.IsZero() {
		t.Error("ModTime should be set for files")
	}

	if _, err := s.Stat("/nope"); !errors.Is(err, ErrNotExist) {
		t.Errorf("expected ErrNotExist, got %v", err)
	}
}
