package nvram

import (
	"fmt"
	"io"
	"os"
)

// FindOnDevice locates a partition by name reading headers directly from
// the descriptor, without a full in-memory image. Non-matching partitions'
// payloads are skipped with a relative seek. On a match the descriptor is
// positioned back at the start of the partition's header and that offset is
// returned.
func FindOnDevice(f *os.File, name string) (int64, PartitionHeader, error) {
	var hdr PartitionHeader

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return 0, hdr, fmt.Errorf("cannot seek to beginning of %q: %w", f.Name(), err)
	}

	buf := make([]byte, HeaderSize)
	for {
		n, err := io.ReadFull(f, buf)
		if err == io.EOF {
			return 0, hdr, fmt.Errorf("%w: no %q partition in %q", ErrNotFound, name, f.Name())
		}
		if err != nil {
			return 0, hdr, fmt.Errorf("invalid read from %q: %w", f.Name(), err)
		}

		hdr, _ = DecodeHeader(buf)
		if hdr.Length == 0 {
			return 0, hdr, fmt.Errorf("%w: zero-length partition in %q", ErrCorruptFormat, f.Name())
		}

		if hdr.MatchName(name) {
			off, err := f.Seek(int64(-n), io.SeekCurrent)
			if err != nil {
				return 0, hdr, fmt.Errorf("cannot seek to %q partition: %w", name, err)
			}
			return off, hdr, nil
		}

		if _, err := f.Seek(int64(hdr.ByteLen()-n), io.SeekCurrent); err != nil {
			return 0, hdr, fmt.Errorf("seek error in %q: %w", f.Name(), err)
		}
	}
}

// writePartition issues one positioned write of an exact partition image.
// A short write is reported as an error; no retry or rollback is attempted.
func writePartition(f *os.File, off int64, image []byte) error {
	n, err := f.WriteAt(image, off)
	if err != nil {
		return fmt.Errorf("cannot write partition to %q: %w", f.Name(), err)
	}
	if n != len(image) {
		return fmt.Errorf("short write to %q: wrote %d of %d bytes", f.Name(), n, len(image))
	}
	return nil
}
