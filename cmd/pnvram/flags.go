package main

import "github.com/urfave/cli/v3"

// Default backing devices, tried in order when no file is given.
const (
	nvramDevice    = "/dev/nvram"
	nvramDeviceAlt = "/dev/nvras"
)

var (
	nvramFile string
	nvramSize int64
	logLevel  string
	logFormat string
)

func storeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "nvram-file",
			Aliases:     []string{"n"},
			Usage:       "alternate nvram data file (default is /dev/nvram)",
			Destination: &nvramFile,
		},
		&cli.Int64Flag{
			Name:        "nvram-size",
			Aliases:     []string{"s"},
			Usage:       "size of nvram data in bytes (for repair operations)",
			Destination: &nvramSize,
		},
	}
}

func loggingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (pretty, json, text)",
			Value:       "pretty",
			Destination: &logFormat,
		},
	}
}

func commonFlags() []cli.Flag {
	return append(storeFlags(), loggingFlags()...)
}
