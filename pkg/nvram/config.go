package nvram

import (
	"bytes"
	"fmt"
	"strings"
)

const (
	// MaxNameLen bounds a config variable name. Open Firmware keeps names
	// under 32 characters.
	MaxNameLen = 31

	// MaxValueLen bounds a config value after de-escaping. OF does not
	// specify a maximum, 4k covers everything seen in the field.
	MaxValueLen = 4096
)

// ConfigPartitions is the fixed set of partitions that hold name=value
// records.
var ConfigPartitions = []string{"common", "ibm,setupcfg", "of-config"}

// Record is one decoded name=value config entry.
type Record struct {
	Name  string
	Value string
}

// PartitionConfig is the decoded record set of one partition.
type PartitionConfig struct {
	Partition string
	Records   []Record
}

func isConfigPartition(name string) bool {
	for _, p := range ConfigPartitions {
		if p == name {
			return true
		}
	}
	return false
}

// DecodeRecords decodes consecutive NUL-terminated name=value strings up
// to the terminating empty record. Values are de-escaped: a 0xff marker is
// followed by a count byte whose low 7 bits give a repeat count and whose
// high bit selects a 0xff or 0x00 fill.
func DecodeRecords(data []byte) ([]Record, error) {
	var recs []Record
	off := 0
	for {
		if off >= len(data) {
			return nil, fmt.Errorf("%w: config records missing terminator", ErrCorruptFormat)
		}
		nul := bytes.IndexByte(data[off:], 0)
		if nul < 0 {
			return nil, fmt.Errorf("%w: config record ran off end of partition", ErrCorruptFormat)
		}
		raw := data[off : off+nul]
		off += nul + 1
		if len(raw) == 0 {
			return recs, nil
		}

		eq := bytes.IndexByte(raw, '=')
		if eq < 0 {
			return nil, fmt.Errorf("%w: config record has no = sign", ErrCorruptFormat)
		}
		if eq > MaxNameLen {
			return nil, fmt.Errorf("%w: config name longer than %d bytes", ErrLimitExceeded, MaxNameLen)
		}
		value, err := deescape(raw[eq+1:])
		if err != nil {
			return nil, err
		}
		recs = append(recs, Record{Name: string(raw[:eq]), Value: string(value)})
	}
}

func deescape(v []byte) ([]byte, error) {
	out := make([]byte, 0, len(v))
	for i := 0; i < len(v); i++ {
		b := v[i]
		if b != 0xff {
			out = append(out, b)
			if len(out) > MaxValueLen {
				return nil, fmt.Errorf("%w: config value longer than %d bytes", ErrLimitExceeded, MaxValueLen)
			}
			continue
		}
		i++
		if i >= len(v) {
			return nil, fmt.Errorf("%w: truncated escape in config value", ErrCorruptFormat)
		}
		num := int(v[i] & 0x7f)
		var fill byte
		if v[i]&0x80 != 0 {
			fill = 0xff
		}
		if len(out)+num > MaxValueLen {
			return nil, fmt.Errorf("%w: config value longer than %d bytes", ErrLimitExceeded, MaxValueLen)
		}
		for ; num > 0; num-- {
			out = append(out, fill)
		}
	}
	return out, nil
}

// ReadConfig returns the decoded records of the named config partition, or
// of every config partition present when partName is empty. A non-empty
// partName that is not one of ConfigPartitions fails with ErrNotFound.
func (s *Store) ReadConfig(partName string) ([]PartitionConfig, error) {
	if partName == "" {
		var out []PartitionConfig
		for _, name := range ConfigPartitions {
			p := s.Find(0, name, nil)
			if p == nil {
				continue
			}
			recs, err := DecodeRecords(s.PartitionData(p))
			if err != nil {
				return out, fmt.Errorf("partition %q: %w", name, err)
			}
			out = append(out, PartitionConfig{Partition: name, Records: recs})
		}
		return out, nil
	}

	if !isConfigPartition(partName) {
		return nil, fmt.Errorf("%w: %q is not an Open Firmware config partition", ErrNotFound, partName)
	}
	p := s.Find(0, partName, nil)
	if p == nil {
		return nil, fmt.Errorf("%w: there is no %q partition", ErrNotFound, partName)
	}
	recs, err := DecodeRecords(s.PartitionData(p))
	if err != nil {
		return nil, fmt.Errorf("partition %q: %w", partName, err)
	}
	return []PartitionConfig{{Partition: partName, Records: recs}}, nil
}

// LookupConfig returns the values of every record named varName, searched
// in the named config partition or across all of them when partName is
// empty. ErrNotFound is returned when no record matches.
func (s *Store) LookupConfig(varName, partName string) ([]string, error) {
	cfgs, err := s.ReadConfig(partName)
	if err != nil {
		return nil, err
	}
	var values []string
	for _, cfg := range cfgs {
		for _, rec := range cfg.Records {
			if rec.Name == varName {
				values = append(values, rec.Value)
			}
		}
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: config variable %q", ErrNotFound, varName)
	}
	return values, nil
}

// UpdateConfig replaces the value of an existing variable in the named
// partition and writes the rebuilt partition back to the store in one
// positioned write.
//
// The variable must already exist: update never creates one. The partition
// keeps its exact byte capacity; slack behind the record set is
// zero-filled, and the header checksum is recomputed before the write.
func (s *Store) UpdateConfig(assignment, partName string) error {
	if s.f == nil {
		return fmt.Errorf("store %q is not backed by a writable device", s.Path)
	}

	eq := strings.IndexByte(assignment, '=')
	if eq <= 0 {
		return fmt.Errorf("%w: update requires a name=value assignment", ErrCorruptFormat)
	}
	if eq > MaxNameLen {
		return fmt.Errorf("%w: config name longer than %d bytes", ErrLimitExceeded, MaxNameLen)
	}
	if len(assignment)-eq-1 > MaxValueLen {
		return fmt.Errorf("%w: config value longer than %d bytes", ErrLimitExceeded, MaxValueLen)
	}

	p := s.Find(0, partName, nil)
	if p == nil {
		return fmt.Errorf("%w: there is no %q partition", ErrNotFound, partName)
	}

	data := s.PartitionData(p)
	matchStart, matchEnd, termEnd := -1, -1, -1
	for off := 0; ; {
		if off >= len(data) {
			return fmt.Errorf("%w: partition %q records missing terminator", ErrCorruptFormat, partName)
		}
		nul := bytes.IndexByte(data[off:], 0)
		if nul < 0 {
			return fmt.Errorf("%w: partition %q record ran off end", ErrCorruptFormat, partName)
		}
		rec := data[off : off+nul]
		if len(rec) == 0 {
			termEnd = off + 1
			break
		}
		if matchStart < 0 && len(rec) > eq && string(rec[:eq+1]) == assignment[:eq+1] {
			matchStart = off
			matchEnd = off + nul + 1
		}
		off += nul + 1
	}
	if matchStart < 0 {
		return fmt.Errorf("%w: config variable %q does not exist in the %q partition",
			ErrNotFound, assignment[:eq], partName)
	}

	capacity := p.Header.ByteLen()
	need := HeaderSize + matchStart + len(assignment) + 1 + (termEnd - matchEnd)
	if need > capacity {
		return fmt.Errorf("%w: cannot update %q in the %q partition",
			ErrInsufficientSpace, assignment[:eq], partName)
	}

	image := make([]byte, capacity)
	copy(image, s.RawPartition(p)[:HeaderSize])
	n := HeaderSize
	n += copy(image[n:], data[:matchStart])
	n += copy(image[n:], assignment)
	image[n] = 0
	n++
	copy(image[n:], data[matchEnd:termEnd])

	hdr := p.Header
	hdr.Checksum = hdr.ComputedChecksum()
	EncodeHeader(image, &hdr)

	off, _, err := FindOnDevice(s.f, partName)
	if err != nil {
		return err
	}
	return writePartition(s.f, off, image)
}
