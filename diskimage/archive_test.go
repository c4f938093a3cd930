package diskimage

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadImage_RawD64PassesThrough(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "game.d64")
	want := bytes.Repeat([]byte{0xAB}, 4096)
	if err := os.WriteFile(path, want, 0o644); err != nil {
		t.Fatal(err)
	}

	data, name, err := LoadImage(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(data, want) {
		t.Error("expected raw .d64 bytes to pass through unchanged")
	}
	if name != "game.d64" {
		t.Errorf("expected name game.d64, got %s", name)
	}
}

func TestLoadImage_ZIPExtractsFirstImageEntry(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pack.zip")

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	readme, _ := zw.Create("readme.txt")
	readme.Write([]byte("not an image"))
	entry, _ := zw.Create("disk1.d64")
	want := bytes.Repeat([]byte{0xCD}, 2048)
	entry.Write(want)
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	f.Close()

	data, name, err := LoadImage(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(data, want) {
		t.Error("expected extracted bytes to match disk1.d64's contents")
	}
	if name != "disk1.d64" {
		t.Errorf("expected name disk1.d64, got %s", name)
	}
}

func TestLoadImage_ZIPWithNoImageEntryReturnsError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.zip")

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	w, _ := zw.Create("readme.txt")
	w.Write([]byte("nothing useful"))
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	f.Close()

	if _, _, err := LoadImage(path); err != ErrNoMatchingEntry {
		t.Fatalf("expected ErrNoMatchingEntry, got %v", err)
	}
}

func TestLoadImage_GzipDecompressesAndStripsExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "game.d64.gz")

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	gw := gzip.NewWriter(f)
	want := bytes.Repeat([]byte{0xEF}, 1024)
	gw.Write(want)
	gw.Close()
	f.Close()

	data, name, err := LoadImage(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(data, want) {
		t.Error("expected decompressed bytes to match original")
	}
	if name != "game.d64" {
		t.Errorf("expected stripped name game.d64, got %s", name)
	}
}

func TestLoadImage_UnsupportedFormatReturnsError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "whatever.xyz")
	if err := os.WriteFile(path, []byte("not anything recognizable"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := LoadImage(path); err == nil {
		t.Fatal("expected an error for an unrecognized format/extension")
	}
}

func TestLoadImage_OversizeEntryIsRejected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "huge.d64")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := f.Truncate(maxImageSize + 16); err != nil {
		t.Fatal(err)
	}
	f.Close()

	if _, _, err := LoadImage(path); err != ErrImageTooLarge {
		t.Fatalf("expected ErrImageTooLarge, got %v", err)
	}
}
