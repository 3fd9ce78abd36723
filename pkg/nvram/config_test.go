package nvram

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDecodeRecords(t *testing.T) {
	t.Parallel()

	data := []byte("foo=1\x00boot-device=disk\x00\x00")
	recs, err := DecodeRecords(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := []Record{{"foo", "1"}, {"boot-device", "disk"}}
	if len(recs) != len(want) {
		t.Fatalf("records: got %d want %d", len(recs), len(want))
	}
	for i := range want {
		if recs[i] != want[i] {
			t.Fatalf("record %d: got %+v want %+v", i, recs[i], want[i])
		}
	}
}

func TestDecodeRecordsDeescape(t *testing.T) {
	t.Parallel()

	// 0xff escape: low 7 bits of the next byte repeat, high bit picks the
	// fill value.
	data := []byte("pad=a\xff\x03b\x00\x00")
	recs, err := DecodeRecords(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := recs[0].Value; got != "a\x00\x00\x00b" {
		t.Fatalf("zero fill: got %q", got)
	}

	data = []byte("pad=\xff\x82\x00\x00")
	recs, err = DecodeRecords(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := recs[0].Value; got != "\xff\xff" {
		t.Fatalf("ff fill: got %q", got)
	}
}

func TestDecodeRecordsCorrupt(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		data []byte
		want error
	}{
		{"missing terminator", []byte("foo=1\x00"), ErrCorruptFormat},
		{"record runs off end", []byte("foo=1"), ErrCorruptFormat},
		{"no equals sign", []byte("foo\x00\x00"), ErrCorruptFormat},
		{"truncated escape", []byte("foo=a\xff\x00\x00"), ErrCorruptFormat},
		{"name too long", append(append([]byte(strings.Repeat("n", 32)), '=', 'v'), 0, 0), ErrLimitExceeded},
	}
	for _, tc := range cases {
		if _, err := DecodeRecords(tc.data); !errors.Is(err, tc.want) {
			t.Fatalf("%s: got %v want %v", tc.name, err, tc.want)
		}
	}
}

func TestDecodeRecordsRejectsOversizeValue(t *testing.T) {
	t.Parallel()

	// Two max-count escapes keep the input small while the de-escaped
	// value blows past the limit only when long enough.
	var data []byte
	data = append(data, "big="...)
	for i := 0; i < MaxValueLen/127+1; i++ {
		data = append(data, 0xff, 0x7f)
	}
	data = append(data, 0, 0)
	if _, err := DecodeRecords(data); !errors.Is(err, ErrLimitExceeded) {
		t.Fatalf("oversize value: got %v want ErrLimitExceeded", err)
	}
}

func configImage(t *testing.T) []byte {
	t.Helper()
	return concat(
		buildPartition(t, SigSystem, "common", 4, []byte("bar=baz\x00foo=1\x00\x00")),
		buildPartition(t, SigOF, "of-config", 2, []byte("foo=2\x00\x00")),
		buildPartition(t, SigHW, "ibm,vpd", 2, nil),
	)
}

func TestReadConfig(t *testing.T) {
	t.Parallel()

	s := NewStore(configImage(t))
	if err := s.Parse(); err != nil {
		t.Fatalf("parse: %v", err)
	}

	cfgs, err := s.ReadConfig("")
	if err != nil {
		t.Fatalf("read all: %v", err)
	}
	if len(cfgs) != 2 {
		t.Fatalf("config partitions: got %d want 2", len(cfgs))
	}
	if cfgs[0].Partition != "common" || len(cfgs[0].Records) != 2 {
		t.Fatalf("common section: got %+v", cfgs[0])
	}
	if cfgs[1].Partition != "of-config" || len(cfgs[1].Records) != 1 {
		t.Fatalf("of-config section: got %+v", cfgs[1])
	}

	one, err := s.ReadConfig("of-config")
	if err != nil {
		t.Fatalf("read of-config: %v", err)
	}
	if len(one) != 1 || one[0].Records[0].Value != "2" {
		t.Fatalf("of-config records: got %+v", one)
	}

	if _, err := s.ReadConfig("ibm,vpd"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("non-config partition: got %v want ErrNotFound", err)
	}
	if _, err := s.ReadConfig("ibm,setupcfg"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("absent config partition: got %v want ErrNotFound", err)
	}
}

func TestLookupConfig(t *testing.T) {
	t.Parallel()

	s := NewStore(configImage(t))
	if err := s.Parse(); err != nil {
		t.Fatalf("parse: %v", err)
	}

	values, err := s.LookupConfig("foo", "")
	if err != nil {
		t.Fatalf("lookup across partitions: %v", err)
	}
	if len(values) != 2 || values[0] != "1" || values[1] != "2" {
		t.Fatalf("values: got %v want [1 2]", values)
	}

	values, err = s.LookupConfig("foo", "common")
	if err != nil {
		t.Fatalf("lookup in common: %v", err)
	}
	if len(values) != 1 || values[0] != "1" {
		t.Fatalf("values: got %v want [1]", values)
	}

	if _, err := s.LookupConfig("missing", ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing variable: got %v want ErrNotFound", err)
	}
}

func writeStoreFile(t *testing.T, image []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nvram.img")
	if err := os.WriteFile(path, image, 0o644); err != nil {
		t.Fatalf("write store file: %v", err)
	}
	return path
}

func TestUpdateConfig(t *testing.T) {
	t.Parallel()

	image := configImage(t)
	path := writeStoreFile(t, image)

	s, err := Open(path, 0, true)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = s.Close() }()
	if err := s.Parse(); err != nil {
		t.Fatalf("parse: %v", err)
	}

	if err := s.UpdateConfig("foo=22", "common"); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}

	want := concat(
		buildPartition(t, SigSystem, "common", 4, []byte("bar=baz\x00foo=22\x00\x00")),
		buildPartition(t, SigOF, "of-config", 2, []byte("foo=2\x00\x00")),
		buildPartition(t, SigHW, "ibm,vpd", 2, nil),
	)
	if !bytes.Equal(got, want) {
		t.Fatalf("store after update:\n got % x\nwant % x", got, want)
	}

	// The rewritten header must carry a checksum matching the fold.
	hdr, _ := DecodeHeader(got)
	if hdr.Checksum != hdr.ComputedChecksum() {
		t.Fatalf("header checksum: got %02x want %02x", hdr.Checksum, hdr.ComputedChecksum())
	}
}

func TestUpdateConfigNeverCreatesVariables(t *testing.T) {
	t.Parallel()

	image := configImage(t)
	path := writeStoreFile(t, image)

	s, err := Open(path, 0, true)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = s.Close() }()
	if err := s.Parse(); err != nil {
		t.Fatalf("parse: %v", err)
	}

	if err := s.UpdateConfig("newvar=1", "common"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("update of absent variable: got %v want ErrNotFound", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !bytes.Equal(got, image) {
		t.Fatal("failed update must not modify the store")
	}
}

func TestUpdateConfigInsufficientSpace(t *testing.T) {
	t.Parallel()

	image := concat(
		buildPartition(t, SigSystem, "common", 2, []byte("foo=1\x00\x00")),
	)
	path := writeStoreFile(t, image)

	s, err := Open(path, 0, true)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = s.Close() }()
	if err := s.Parse(); err != nil {
		t.Fatalf("parse: %v", err)
	}

	// Capacity is 32 bytes: 16 header + record + terminator. A 20-byte
	// value cannot fit.
	long := "foo=" + strings.Repeat("x", 20)
	if err := s.UpdateConfig(long, "common"); !errors.Is(err, ErrInsufficientSpace) {
		t.Fatalf("oversize update: got %v want ErrInsufficientSpace", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !bytes.Equal(got, image) {
		t.Fatal("failed update must not modify the store")
	}

	if err := s.UpdateConfig("foo=123456789", "common"); err != nil {
		t.Fatalf("update filling the partition exactly: %v", err)
	}
}

func TestUpdateConfigMissingPartition(t *testing.T) {
	t.Parallel()

	path := writeStoreFile(t, configImage(t))
	s, err := Open(path, 0, true)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = s.Close() }()
	if err := s.Parse(); err != nil {
		t.Fatalf("parse: %v", err)
	}

	if err := s.UpdateConfig("foo=1", "ibm,setupcfg"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("update in missing partition: got %v want ErrNotFound", err)
	}
}
