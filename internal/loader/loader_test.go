package loader

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"unicode/utf16"
)

func writeFile(t *testing.T, dir, name string, data []byte) {
	t.Helper()
	full := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestWalk_SortedAndFiltered(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "z-last.md", []byte("# Z"))
	writeFile(t, dir, "a-first.md", []byte("# A"))
	writeFile(t, dir, filepath.Join("guides", "auth.md"), []byte("# Auth"))
	writeFile(t, dir, "image.png", []byte{0x89, 0x50})
	writeFile(t, dir, ".hidden.md", []byte("# H"))
	writeFile(t, dir, filepath.Join(".git", "config.md"), []byte("x"))

	paths, err := Walk(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"a-first.md", "guides/auth.md", "z-last.md"}
	if len(paths) != len(want) {
		t.Fatalf("expected %v, got %v", want, paths)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("paths[%d]: expected %q, got %q", i, want[i], paths[i])
		}
	}
}

func TestWalk_BadRoot(t *testing.T) {
	if _, err := Walk(filepath.Join(t.TempDir(), "does-not-exist")); err == nil {
		t.Error("expected error for missing root")
	}
}

func TestWalk_RootIsFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "f.md", []byte("x"))
	if _, err := Walk(filepath.Join(dir, "f.md")); err == nil {
		t.Error("expected error for non-directory root")
	}
}

func TestReadFile_UTF8(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "doc.md", []byte("# Héllo"))

	text, err := ReadFile(dir, "doc.md", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "# Héllo" {
		t.Errorf("unexpected text %q", text)
	}
}

func TestReadFile_UTF8BOMStripped(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "doc.md", append([]byte{0xEF, 0xBB, 0xBF}, []byte("# Title")...))

	text, err := ReadFile(dir, "doc.md", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "# Title" {
		t.Errorf("expected BOM stripped, got %q", text)
	}
}

func TestReadFile_UTF16LE(t *testing.T) {
	dir := t.TempDir()
	units := utf16.Encode([]rune("# Title"))
	raw := []byte{0xFF, 0xFE}
	for _, u := range units {
		raw = binary.LittleEndian.AppendUint16(raw, u)
	}
	writeFile(t, dir, "doc.md", raw)

	text, err := ReadFile(dir, "doc.md", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "# Title" {
		t.Errorf("expected transcoded text, got %q", text)
	}
}

func TestReadFile_BinaryIsDecodeError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.md", []byte{0x00, 0x01, 0xFF, 0xFE, 0x00, 0x00, 0x80})

	_, err := ReadFile(dir, "bad.md", 0)
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
	if decodeErr.Path != "bad.md" {
		t.Errorf("expected path in error, got %q", decodeErr.Path)
	}
}

func TestReadFile_InvalidUTF8IsDecodeError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.md", []byte{'#', ' ', 0xC3, 0x28})

	_, err := ReadFile(dir, "bad.md", 0)
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
}

func TestReadFile_SizeLimit(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "big.md", []byte("# A long document body\n"))

	_, err := ReadFile(dir, "big.md", 4)
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected DecodeError for oversized file, got %v", err)
	}

	if _, err := ReadFile(dir, "big.md", 1<<20); err != nil {
		t.Errorf("expected success under the limit, got %v", err)
	}
}
