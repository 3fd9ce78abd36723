// Package vpd decodes the ibm,vpd partition: vendor and product
// identification records laid out as tagged, length-prefixed fields.
package vpd

import (
	"fmt"
	"io"

	"github.com/samcharles93/pnvram/pkg/nvram"
)

const (
	tagIdent = 0x82 // identification string descriptor
	tagEnd   = 0x79 // VPD end tag
)

// Field is one keyword field: a two-character key and its raw value.
// Label is empty for vendor-specific keys.
type Field struct {
	Key   string
	Label string
	Value string
}

// Section is one identification string and the keyword fields that follow
// it.
type Section struct {
	Ident  string
	Fields []Field
}

type cursor struct {
	data []byte
	off  int
}

func (c *cursor) remaining() int {
	return len(c.data) - c.off
}

func (c *cursor) peek() (byte, bool) {
	if c.off >= len(c.data) {
		return 0, false
	}
	return c.data[c.off], true
}

func (c *cursor) next() (byte, error) {
	b, ok := c.peek()
	if !ok {
		return 0, fmt.Errorf("%w: VPD data truncated", nvram.ErrCorruptFormat)
	}
	c.off++
	return b, nil
}

func (c *cursor) take(n int) ([]byte, error) {
	if n < 0 || c.remaining() < n {
		return nil, fmt.Errorf("%w: VPD data truncated", nvram.ErrCorruptFormat)
	}
	b := c.data[c.off : c.off+n]
	c.off += n
	return b, nil
}

// u16 reads the little-endian length that prefixes a keyword block.
func (c *cursor) u16() (int, error) {
	b, err := c.take(2)
	if err != nil {
		return 0, err
	}
	return int(b[0]) | int(b[1])<<8, nil
}

// Parse decodes every VPD section of the payload. It never reads past the
// payload's end; on corrupt input the sections decoded so far are returned
// together with the error.
func Parse(payload []byte) ([]Section, error) {
	c := cursor{data: payload}
	var sections []Section

	for {
		b, ok := c.peek()
		if !ok || b == 0 {
			return sections, nil
		}
		if b != tagIdent {
			return sections, fmt.Errorf("%w: unknown VPD descriptor byte 0x%02x",
				nvram.ErrCorruptFormat, b)
		}
		c.off++

		n, err := c.next()
		if err != nil {
			return sections, err
		}
		id, err := c.take(int(n))
		if err != nil {
			return sections, err
		}
		sec := Section{Ident: string(id)}

		for {
			tag, err := c.next()
			if err != nil {
				return append(sections, sec), err
			}
			if tag == tagEnd {
				break
			}
			blen, err := c.u16()
			if err != nil {
				return append(sections, sec), err
			}
			block, err := c.take(blen)
			if err != nil {
				return append(sections, sec), err
			}
			fields, err := parseFields(block)
			sec.Fields = append(sec.Fields, fields...)
			if err != nil {
				return append(sections, sec), err
			}
		}

		// A checksum byte may follow the end tag; it is not verified.
		if _, ok := c.peek(); ok {
			c.off++
		}
		sections = append(sections, sec)
	}
}

func parseFields(block []byte) ([]Field, error) {
	c := cursor{data: block}
	var fields []Field
	for c.remaining() > 0 {
		key, err := c.take(2)
		if err != nil {
			return fields, err
		}
		n, err := c.next()
		if err != nil {
			return fields, err
		}
		value, err := c.take(int(n))
		if err != nil {
			return fields, err
		}
		f := Field{Key: string(key), Value: string(value)}
		f.Label, _ = Label(f.Key)
		fields = append(fields, f)
	}
	return fields, nil
}

// Decode writes the identification strings and keyword fields of the
// payload to w, one field per line. Vendor-specific fields are shown only
// when showAll is set. Whatever was decoded before a corrupt descriptor is
// still written; the error is returned after.
func Decode(payload []byte, showAll bool, w io.Writer) error {
	sections, err := Parse(payload)
	for _, sec := range sections {
		fmt.Fprintf(w, "%s\n", sec.Ident)
		for _, f := range sec.Fields {
			switch {
			case f.Label != "":
				fmt.Fprintf(w, "\t%-20s %s\n", f.Label, f.Value)
			case showAll:
				fmt.Fprintf(w, "\t%-20s %s\n", f.Key, f.Value)
			}
		}
	}
	return err
}
