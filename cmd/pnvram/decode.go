package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/pnvram/internal/errlog"
	"github.com/samcharles93/pnvram/internal/eventscan"
	"github.com/samcharles93/pnvram/internal/hexdump"
	"github.com/samcharles93/pnvram/internal/vpd"
	"github.com/samcharles93/pnvram/pkg/nvram"
)

func vpdCmd() *cli.Command {
	var showAll bool

	return &cli.Command{
		Name:  "vpd",
		Usage: "Print vital product data",
		Flags: append(commonFlags(),
			&cli.BoolFlag{
				Name:        "all",
				Usage:       "include vendor specific fields",
				Destination: &showAll,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := setup(cmd)
			return withStore(log, false, func(s *nvram.Store) error {
				p := s.Find(nvram.SigHW, "ibm,vpd", nil)
				if p == nil {
					return fmt.Errorf("%w: there is no ibm,vpd partition", nvram.ErrNotFound)
				}
				return vpd.Decode(s.PartitionData(p), showAll, os.Stdout)
			})
		},
	}
}

func errlogCmd() *cli.Command {
	return &cli.Command{
		Name:  "errlog",
		Usage: "Print the checkstop error log",
		Flags: commonFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := setup(cmd)
			return withStore(log, false, func(s *nvram.Store) error {
				p := s.Find(nvram.SigSupport, "ibm,err-log", nil)
				if p == nil {
					return fmt.Errorf("%w: there is no ibm,err-log partition", nvram.ErrNotFound)
				}
				return errlog.Decode(s.PartitionData(p), os.Stdout)
			})
		},
	}
}

func eventScanCmd() *cli.Command {
	return &cli.Command{
		Name:  "eventscan",
		Usage: "Print the event scan log",
		Flags: commonFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := setup(cmd)
			return withStore(log, false, func(s *nvram.Store) error {
				p := s.Find(nvram.SigSupport, "ibm,es-logs", nil)
				if p == nil {
					return fmt.Errorf("%w: there is no ibm,es-logs partition", nvram.ErrNotFound)
				}
				// No RTAS renderer is wired in; entries fall back to a
				// raw dump.
				dec := eventscan.Decoder{Log: log}
				return dec.Decode(s.PartitionData(p), os.Stdout)
			})
		},
	}
}

func dumpCmd() *cli.Command {
	return &cli.Command{
		Name:      "dump",
		Usage:     "Raw dump of a partition (use partitions to see names)",
		ArgsUsage: "<name>",
		Flags:     commonFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := setup(cmd)
			name := cmd.Args().First()
			if name == "" {
				return cli.Exit("dump requires a partition name", 1)
			}
			return withStore(log, false, func(s *nvram.Store) error {
				p := s.Find(0, name, nil)
				if p == nil {
					return fmt.Errorf("%w: there is no %q partition", nvram.ErrNotFound, name)
				}
				return hexdump.Dump(os.Stdout, s.RawPartition(p))
			})
		},
	}
}
