// Package eventscan decodes the ibm,es-logs partition: a service
// processor log of RTAS events. The payload starts with a big-endian
// 32-bit entry count followed by one header word per entry; each header
// word carries flags, a type and the entry's start offset, and an entry
// ends where the next one starts.
package eventscan

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/samcharles93/pnvram/internal/hexdump"
	"github.com/samcharles93/pnvram/internal/logger"
	"github.com/samcharles93/pnvram/pkg/nvram"
)

// MaxLogs bounds the number of entries decoded regardless of the count
// the partition claims.
const MaxLogs = 100

// Decoder decodes event-scan logs, delegating event payloads to an
// optional Renderer.
type Decoder struct {
	Renderer Renderer
	Log      logger.Logger
}

func (d *Decoder) log() logger.Logger {
	if d.Log != nil {
		return d.Log
	}
	return logger.Default()
}

// Decode writes every log entry of one ibm,es-logs payload to w.
//
// The claimed entry count is clamped both to MaxLogs and to the number of
// header words the partition can actually hold; either clamp is a
// warning, not an error.
func (d *Decoder) Decode(payload []byte, w io.Writer) error {
	words := len(payload) / 4
	if words < 1 {
		return fmt.Errorf("%w: event scan partition too small", nvram.ErrCorruptFormat)
	}

	count := int(binary.BigEndian.Uint32(payload))
	fmt.Fprintf(w, "Number of Logs: %d\n", count)

	if count > MaxLogs {
		count = MaxLogs
		d.log().Warn("limiting log entries (program limit)", "limit", count)
	}
	if count > words-1 {
		// No room left for event data; the partition is corrupt but the
		// headers that fit are still shown.
		count = words - 1
		d.log().Warn("limiting log entries (partition limit)", "limit", count)
	}

	headers := make([]uint32, count+1)
	for i := 0; i < count; i++ {
		headers[i] = binary.BigEndian.Uint32(payload[4*(i+1):])
	}
	// Artificial trailing entry so the last log has an end offset.
	headers[count] = uint32(words * 4)

	for i := 0; i < count; i++ {
		hdr := headers[i]
		flags := hdr >> 24
		logType := (hdr >> 16) & 0xff
		start := int(hdr & 0xffff)
		end := int(headers[i+1] & 0xffff)

		fmt.Fprintf(w, "Log Entry %d:  flags: 0x%02x  type: 0x%02x\n", i, flags, logType)

		if start > end || end > len(payload) {
			d.log().Warn("event entry has out-of-range offsets", "entry", i,
				"start", start, "end", end)
			continue
		}
		d.dumpEntry(payload[start:end], i, w)
	}
	return nil
}

func (d *Decoder) dumpEntry(data []byte, entry int, w io.Writer) {
	if d.Renderer != nil {
		ev, err := d.Renderer.Parse(data)
		if err == nil {
			renderErr := ev.Render(w)
			ev.Release()
			if renderErr == nil {
				return
			}
		}
	}
	fmt.Fprintf(w, "==== Log %d ====\n", entry)
	_ = hexdump.Dump(w, data)
}
