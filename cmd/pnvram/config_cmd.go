package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/pnvram/pkg/nvram"
)

func configCmd() *cli.Command {
	var partition string

	return &cli.Command{
		Name:      "config",
		Usage:     "Print config variables from the name=value partitions",
		ArgsUsage: "[var]",
		Flags: append(commonFlags(),
			&cli.StringFlag{
				Name:        "partition",
				Aliases:     []string{"p"},
				Usage:       "restrict to one config partition",
				Destination: &partition,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := setup(cmd)
			varName := cmd.Args().First()

			return withStore(log, false, func(s *nvram.Store) error {
				if varName == "" {
					cfgs, err := s.ReadConfig(partition)
					if err != nil {
						return err
					}
					for _, cfg := range cfgs {
						printConfigPart(cfg)
					}
					return nil
				}

				values, err := s.LookupConfig(varName, partition)
				if err != nil {
					return err
				}
				for _, v := range values {
					fmt.Println(v)
				}
				return nil
			})
		},
	}
}

func printConfigPart(cfg nvram.PartitionConfig) {
	title := fmt.Sprintf("%q Partition", cfg.Partition)
	fmt.Println(title)
	fmt.Println(strings.Repeat("-", len(title)))
	for _, rec := range cfg.Records {
		fmt.Printf("%s=%s\n", rec.Name, rec.Value)
	}
	fmt.Println()
}

func updateCmd() *cli.Command {
	var partition string

	return &cli.Command{
		Name:      "update",
		Usage:     "Update a config variable in the specified partition",
		ArgsUsage: "<var>=<value>",
		Flags: append(commonFlags(),
			&cli.StringFlag{
				Name:        "partition",
				Aliases:     []string{"p"},
				Usage:       "partition holding the variable",
				Value:       "common",
				Destination: &partition,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := setup(cmd)
			assignment := cmd.Args().First()
			if assignment == "" || !strings.Contains(assignment, "=") {
				return cli.Exit("update requires a name=value assignment", 1)
			}

			return withStore(log, true, func(s *nvram.Store) error {
				if err := s.UpdateConfig(assignment, partition); err != nil {
					return err
				}
				log.Info("updated config variable",
					"assignment", assignment, "partition", partition)
				return nil
			})
		},
	}
}
