package nvram

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func openDeviceFile(t *testing.T, image []byte) *os.File {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nvram.img")
	if err := os.WriteFile(path, image, 0o644); err != nil {
		t.Fatalf("write image: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open image: %v", err)
	}
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestFindOnDevice(t *testing.T) {
	t.Parallel()

	image := concat(
		buildPartition(t, SigSystem, "common", 4, nil),
		buildPartition(t, SigOF, "of-config", 2, nil),
		buildPartition(t, SigFree, "wwwwwwwwwwww", 2, nil),
	)
	f := openDeviceFile(t, image)

	off, hdr, err := FindOnDevice(f, "of-config")
	if err != nil {
		t.Fatalf("find of-config: %v", err)
	}
	if off != 64 {
		t.Fatalf("offset: got %d want 64", off)
	}
	if hdr.Signature != SigOF || hdr.NameString() != "of-config" {
		t.Fatalf("header: got %02x %q", hdr.Signature, hdr.NameString())
	}

	// The descriptor must be left at the start of the matched header.
	pos, err := f.Seek(0, 1)
	if err != nil {
		t.Fatalf("tell: %v", err)
	}
	if pos != off {
		t.Fatalf("descriptor position: got %d want %d", pos, off)
	}

	if off, _, err = FindOnDevice(f, "common"); err != nil || off != 0 {
		t.Fatalf("find common: off=%d err=%v", off, err)
	}
}

func TestFindOnDeviceNotFound(t *testing.T) {
	t.Parallel()

	image := concat(
		buildPartition(t, SigSystem, "common", 4, nil),
	)
	f := openDeviceFile(t, image)

	_, _, err := FindOnDevice(f, "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v want ErrNotFound", err)
	}
}

func TestFindOnDeviceZeroLengthPartition(t *testing.T) {
	t.Parallel()

	image := concat(
		buildPartition(t, SigSystem, "common", 4, nil),
		make([]byte, BlockSize),
	)
	f := openDeviceFile(t, image)

	_, _, err := FindOnDevice(f, "missing")
	if !errors.Is(err, ErrCorruptFormat) {
		t.Fatalf("got %v want ErrCorruptFormat", err)
	}
}
