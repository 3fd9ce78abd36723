package main

import (
	"context"
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/pnvram/pkg/nvram"
)

type partitionRow struct {
	Index      int    `json:"index"`
	Signature  uint8  `json:"signature"`
	Checksum   uint8  `json:"checksum"`
	ChecksumOK bool   `json:"checksum_ok"`
	Blocks     int    `json:"blocks"`
	Bytes      int    `json:"bytes"`
	Offset     int64  `json:"offset"`
	Name       string `json:"name"`
}

func partitionsCmd() *cli.Command {
	var asJSON bool

	return &cli.Command{
		Name:  "partitions",
		Usage: "Print NVRAM partition header info",
		Flags: append(commonFlags(),
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "emit the partition table as JSON",
				Destination: &asJSON,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := setup(cmd)
			return withStore(log, false, func(s *nvram.Store) error {
				if asJSON {
					return printPartitionsJSON(s)
				}
				fmt.Printf(" # Sig Chk  Len  Name\n")
				for i, p := range s.Partitions() {
					hdr := p.Header
					fmt.Printf("%2d  %02x  %02x  %04x %s\n",
						i, hdr.Signature, hdr.Checksum, hdr.Length, hdr.NameString())
				}
				return nil
			})
		},
	}
}

func printPartitionsJSON(s *nvram.Store) error {
	rows := make([]partitionRow, 0, len(s.Partitions()))
	for i, p := range s.Partitions() {
		hdr := p.Header
		rows = append(rows, partitionRow{
			Index:      i,
			Signature:  hdr.Signature,
			Checksum:   hdr.Checksum,
			ChecksumOK: hdr.Checksum == hdr.ComputedChecksum(),
			Blocks:     int(hdr.Length),
			Bytes:      hdr.ByteLen(),
			Offset:     p.Offset,
			Name:       hdr.NameString(),
		})
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}
