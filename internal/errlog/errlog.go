// Package errlog decodes the ibm,err-log partition, the post-mortem
// checkstop log filled in by the service processor. The payload is a
// sequence of big-endian 16-bit words: a small header of counts and
// self-relative offsets followed by raw register blocks.
package errlog

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/samcharles93/pnvram/internal/hexdump"
	"github.com/samcharles93/pnvram/pkg/nvram"
)

const (
	// MaxCPUs bounds the per-CPU offset table regardless of the count the
	// header claims.
	MaxCPUs = 128

	// maxRegDump caps a single register block dump. Corrupt offsets must
	// not turn into unbounded output.
	maxRegDump = 4096
)

// Decode writes the checkstop report for one ibm,err-log payload to w.
//
// Offsets embedded in the header are word counts relative to their own
// header slot. Any offset resolving outside the partition is treated as
// absent; the block it names is skipped rather than dumped.
func Decode(payload []byte, w io.Writer) error {
	words := len(payload) / 2
	if words < 4 {
		return fmt.Errorf("%w: error log partition too small", nvram.ErrCorruptFormat)
	}

	word := func(i int) uint16 {
		return binary.BigEndian.Uint16(payload[2*i:])
	}
	// resolve turns the self-relative offset stored in slot i into a word
	// index, or -1 when it lands outside the partition.
	resolve := func(i int) int {
		idx := int(word(i))/2 + 1 + i
		if idx >= words {
			return -1
		}
		return idx
	}

	checkstops := word(0) >> 8
	if checkstops != 0 {
		fmt.Fprintf(w, "Checkstops detected: %d\n", checkstops)
	} else {
		fmt.Fprintf(w, "No checkstops have been detected.\n")
	}

	sysRegs := resolve(1)

	numCPUs := int(word(2))
	fmt.Fprintf(w, "CPUS: %d\n", numCPUs)

	i := 2
	cpuRegs := make([]int, 0, MaxCPUs+1)
	for cpu := 0; cpu < numCPUs; cpu++ {
		i++
		if i >= words {
			return fmt.Errorf("%w: error log header truncated", nvram.ErrCorruptFormat)
		}
		if cpu < MaxCPUs {
			cpuRegs = append(cpuRegs, resolve(i))
		}
	}
	if numCPUs > MaxCPUs {
		numCPUs = MaxCPUs
	}

	i++
	if i+3 >= words {
		return fmt.Errorf("%w: error log header truncated", nvram.ErrCorruptFormat)
	}
	fmt.Fprintf(w, "Memory Controllers: %d\n", word(i))
	i++
	// Memory controller data offset. The block layout is undocumented and
	// is not dumped, matching the count-only report for controllers.
	_ = resolve(i)
	i++
	fmt.Fprintf(w, "I/O Controllers: %d\n", word(i))
	i++
	ioData := resolve(i)

	if sysRegs >= 0 && numCPUs > 0 && len(cpuRegs) > 0 && cpuRegs[0] > sysRegs {
		// The header gives no length for the system register block; it
		// runs up to the first CPU's block.
		fmt.Fprintf(w, "System Specific Registers\n")
		dumpWords(w, payload, sysRegs, cpuRegs[0])
	}

	// Artificial trailing entry so the last CPU's block has an end bound.
	cpuRegs = append(cpuRegs, ioData)

	for cpu := 0; cpu < numCPUs && cpu < len(cpuRegs)-1; cpu++ {
		cur, next := cpuRegs[cpu], cpuRegs[cpu+1]
		if cur < 0 {
			fmt.Fprintf(w, "CPU %d Register Data unavailable\n", cpu)
			continue
		}
		if next <= cur {
			fmt.Fprintf(w, "CPU %d Register Data (offset=%x)\n", cpu, cur)
			continue
		}
		length := (next - cur) * 2
		fmt.Fprintf(w, "CPU %d Register Data (len=%x, offset=%x)\n", cpu, length, cur)
		if length < maxRegDump {
			dumpWords(w, payload, cur, next)
		}
	}

	return nil
}

func dumpWords(w io.Writer, payload []byte, start, end int) {
	lo, hi := start*2, end*2
	if lo < 0 || hi > len(payload) || lo >= hi {
		return
	}
	_ = hexdump.Dump(w, payload[lo:hi])
}
