// Package hexdump renders byte buffers in the classic offset/hex/ASCII form
// used for raw partition dumps.
package hexdump

import (
	"fmt"
	"io"
)

const bytesPerRow = 16

// Dump writes data as rows of 16 bytes: an 8-digit hex offset, four groups
// of four hex bytes, and a printable-ASCII gutter.
func Dump(w io.Writer, data []byte) error {
	for off := 0; off < len(data); off += bytesPerRow {
		row := data[off:]
		if len(row) > bytesPerRow {
			row = row[:bytesPerRow]
		}
		if err := dumpRow(w, off, row); err != nil {
			return err
		}
	}
	return nil
}

func dumpRow(w io.Writer, off int, row []byte) error {
	buf := make([]byte, 0, 80)
	buf = fmt.Appendf(buf, "0x%08x  ", off)

	for i := 0; i < bytesPerRow; i++ {
		if i < len(row) {
			buf = fmt.Appendf(buf, "%02x", row[i])
		} else {
			buf = append(buf, "  "...)
		}
		if i%4 == 3 {
			buf = append(buf, ' ')
		}
	}

	buf = append(buf, '|')
	for i := 0; i < bytesPerRow; i++ {
		switch {
		case i >= len(row):
			buf = append(buf, ' ')
		case row[i] >= ' ' && row[i] <= '~':
			buf = append(buf, row[i])
		default:
			buf = append(buf, '.')
		}
	}
	buf = append(buf, '|', '\n')

	_, err := w.Write(buf)
	return err
}
