package nvram

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// Partition is one entry of the parsed partition directory.
type Partition struct {
	Header PartitionHeader
	// Offset is the position of the header within the store.
	Offset int64
	// DataOffset is the position of the payload within the store.
	DataOffset int64
	// DataLen is the payload length actually available in the store. It is
	// smaller than Header.DataLen() when the last partition claims more
	// blocks than the store holds.
	DataLen int
}

// Store holds one NVRAM image and its parsed partition directory.
//
// The buffer is exclusively owned by the store. Callers must serialize all
// operations against a given open store; no internal locking is provided.
type Store struct {
	Path string
	Data []byte

	f        *os.File
	parts    []Partition
	warnings []string
	mmapped  bool
}

// NewStore wraps an in-memory image. Parse must still be called.
func NewStore(data []byte) *Store {
	return &Store{Data: data}
}

// Open reads the backing file or device into an exclusively owned buffer.
//
// size is the expected store size in bytes and is only consulted when the
// file does not report one (character devices stat as zero length). Regular
// files are mapped read-only where mmap is available, with a plain read
// fallback otherwise. writable controls the open mode of the descriptor
// kept for update writes.
func Open(path string, size int, writable bool) (*Store, error) {
	mode := os.O_RDONLY
	if writable {
		mode = os.O_RDWR
	}
	f, err := os.OpenFile(path, mode, 0)
	if err != nil {
		return nil, err
	}

	stat, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	s := &Store{Path: path, f: f}

	n := int(stat.Size())
	if n > 0 {
		// Prefer mmap for regular files so large stores cost nothing to load.
		data, merr := unix.Mmap(int(f.Fd()), 0, n, unix.PROT_READ, unix.MAP_SHARED)
		if merr == nil {
			s.Data = data
			s.mmapped = true
			return s, nil
		}
		size = n
	}
	if size <= 0 {
		_ = f.Close()
		return nil, fmt.Errorf("%w: store size for %q unknown", ErrCorruptFormat, path)
	}

	data, short, err := readStore(f, size)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("cannot read %q: %w", path, err)
	}
	if short > 0 {
		s.warn(fmt.Sprintf("expected %d bytes, but only read %d", size, size-short))
	}
	s.Data = data
	return s, nil
}

// readStore reads up to size bytes, zero-filling any short remainder. The
// number of missing bytes is returned so the caller can warn about it.
func readStore(f *os.File, size int) ([]byte, int, error) {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, 0, err
	}
	data := make([]byte, size)
	off := 0
	for off < size {
		n, err := f.Read(data[off:])
		off += n
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, err
		}
	}
	return data, size - off, nil
}

// File exposes the backing descriptor for streamed lookups and update
// writes. It is nil for in-memory stores.
func (s *Store) File() *os.File {
	return s.f
}

// Close releases the buffer and the backing descriptor.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	var err error
	if s.mmapped && s.Data != nil {
		err = unix.Munmap(s.Data)
	}
	s.Data = nil
	s.parts = nil
	s.mmapped = false
	if s.f != nil {
		if cerr := s.f.Close(); err == nil {
			err = cerr
		}
		s.f = nil
	}
	return err
}

// Parse walks the store from offset 0 and builds the partition directory.
//
// A checksum mismatch is recorded as a warning and parsing continues with
// the data as found. A zero-length header fails with ErrCorruptFormat:
// advancing by zero blocks would never terminate, so the directory cannot
// be trusted past that point.
func (s *Store) Parse() error {
	s.parts = nil
	end := int64(len(s.Data))

	for off := int64(0); off < end; {
		if off+HeaderSize > end {
			return fmt.Errorf("%w: partition header at 0x%x extends past end of store", ErrCorruptFormat, off)
		}
		hdr, _ := DecodeHeader(s.Data[off:])
		if hdr.Length == 0 {
			return fmt.Errorf("%w: zero-length partition at 0x%x", ErrCorruptFormat, off)
		}

		if want := hdr.ComputedChecksum(); want != hdr.Checksum {
			s.warn(fmt.Sprintf("partition %q at 0x%x: checksum should be %02x",
				hdr.NameString(), off, want))
		}

		p := Partition{
			Header:     hdr,
			Offset:     off,
			DataOffset: off + HeaderSize,
			DataLen:    hdr.DataLen(),
		}
		if p.DataOffset+int64(p.DataLen) > end {
			p.DataLen = int(end - p.DataOffset)
			s.warn(fmt.Sprintf("partition %q at 0x%x claims %d blocks but the store ends first",
				hdr.NameString(), off, hdr.Length))
		}
		s.parts = append(s.parts, p)

		off += int64(hdr.ByteLen())
	}
	return nil
}

// Partitions returns the directory in store order.
func (s *Store) Partitions() []Partition {
	return s.parts
}

// Warnings returns the diagnostics accumulated by Open and Parse.
func (s *Store) Warnings() []string {
	return s.warnings
}

func (s *Store) warn(msg string) {
	s.warnings = append(s.warnings, msg)
}

// Find returns the first partition matching signature and name, or nil.
//
// A zero signature matches any signature and an empty name matches any
// name. If after is non-nil, the search resumes at the entry following it
// in directory order.
func (s *Store) Find(signature byte, name string, after *Partition) *Partition {
	start := 0
	if after != nil {
		for i := range s.parts {
			if s.parts[i].Offset == after.Offset {
				start = i + 1
				break
			}
		}
	}

	for i := start; i < len(s.parts); i++ {
		p := &s.parts[i]
		if signature != 0 && signature != p.Header.Signature {
			continue
		}
		if name != "" && !p.Header.MatchName(name) {
			continue
		}
		return p
	}
	return nil
}

// PartitionData returns the payload bytes of p.
func (s *Store) PartitionData(p *Partition) []byte {
	if p == nil || p.DataOffset > int64(len(s.Data)) {
		return nil
	}
	return s.Data[p.DataOffset : p.DataOffset+int64(p.DataLen)]
}

// RawPartition returns the header and payload bytes of p.
func (s *Store) RawPartition(p *Partition) []byte {
	if p == nil {
		return nil
	}
	return s.Data[p.Offset : p.DataOffset+int64(p.DataLen)]
}
