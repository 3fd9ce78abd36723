package nvram

import (
	"encoding/binary"
	"strings"
)

const (
	// BlockSize is the partition allocation granularity. Partition lengths
	// are counted in blocks and the header occupies exactly one block.
	BlockSize = 16

	// HeaderSize is the on-store size of a partition header.
	HeaderSize = 16

	// NameSize is the fixed width of the partition name field. Names are
	// space/NUL padded and not guaranteed to be NUL terminated.
	NameSize = 12
)

// Partition signatures used by firmware. Zero is never a valid signature
// and acts as a wildcard in lookups.
const (
	SigSupport byte = 0x02 // service processor partitions (ibm,err-log, ibm,es-logs)
	SigOF      byte = 0x50 // of-config
	SigHW      byte = 0x52 // hardware (ibm,vpd)
	SigSystem  byte = 0x70 // common
	SigErrLog  byte = 0x72
	SigFree    byte = 0x7f // free space
)

// PartitionHeader is the 16-byte header that starts every NVRAM partition.
// Length counts 16-byte blocks including the header itself and is stored
// big-endian on the wire.
type PartitionHeader struct {
	Signature byte
	Checksum  byte
	Length    uint16
	Name      [NameSize]byte
}

// ByteLen returns the full partition size in bytes, header included.
func (h *PartitionHeader) ByteLen() int {
	return int(h.Length) * BlockSize
}

// DataLen returns the payload size in bytes.
func (h *PartitionHeader) DataLen() int {
	n := h.ByteLen() - HeaderSize
	if n < 0 {
		return 0
	}
	return n
}

// NameString returns the name field with trailing padding removed.
func (h *PartitionHeader) NameString() string {
	return strings.TrimRight(string(h.Name[:]), "\x00 ")
}

// MatchName reports whether name refers to this partition. Comparison is
// bounded to the fixed field width; a shorter name matches only when the
// remainder of the field is padding.
func (h *PartitionHeader) MatchName(name string) bool {
	if len(name) > NameSize {
		name = name[:NameSize]
	}
	if string(h.Name[:len(name)]) != name {
		return false
	}
	for _, b := range h.Name[len(name):] {
		if b != 0 && b != ' ' {
			return false
		}
	}
	return true
}

// ComputedChecksum returns the checksum the header should carry: the
// signature, the length and the six 16-bit words of the name field are
// summed, bits above position 16 are folded back once, and the high and
// low bytes of the result are folded into a single byte.
func (h *PartitionHeader) ComputedChecksum() byte {
	sum := uint32(h.Signature) + uint32(h.Length)
	for i := 0; i < NameSize; i += 2 {
		sum += uint32(binary.BigEndian.Uint16(h.Name[i:]))
	}

	sum = ((sum & 0xffff) + (sum >> 16)) & 0xffff

	sum2 := (sum >> 8) + (sum << 8)
	return byte((sum + sum2) >> 8)
}

// DecodeHeader decodes a partition header from the first 16 bytes of b.
func DecodeHeader(b []byte) (PartitionHeader, bool) {
	var h PartitionHeader
	if len(b) < HeaderSize {
		return h, false
	}
	h.Signature = b[0]
	h.Checksum = b[1]
	h.Length = binary.BigEndian.Uint16(b[2:4])
	copy(h.Name[:], b[4:HeaderSize])
	return h, true
}

// EncodeHeader writes the header into the first 16 bytes of b.
func EncodeHeader(b []byte, h *PartitionHeader) bool {
	if len(b) < HeaderSize {
		return false
	}
	b[0] = h.Signature
	b[1] = h.Checksum
	binary.BigEndian.PutUint16(b[2:4], h.Length)
	copy(b[4:HeaderSize], h.Name[:])
	return true
}
