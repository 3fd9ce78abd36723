package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/pnvram/internal/devtree"
	"github.com/samcharles93/pnvram/internal/logger"
	"github.com/samcharles93/pnvram/pkg/nvram"
)

// setup applies the config file and builds the logger. Every command
// action calls it first.
func setup(cmd *cli.Command) logger.Logger {
	applyConfig(cmd, LoadConfig())
	return buildLogger()
}

func buildLogger() logger.Logger {
	level := logger.ParseLevel(logLevel)
	switch logFormat {
	case "json":
		return logger.JSON(os.Stderr, level)
	case "text":
		return logger.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	default:
		return logger.Pretty(os.Stderr, level)
	}
}

// openStore loads and parses the backing store. When no file is given the
// conventional device paths are tried in order. The store size comes from
// the flag, the file itself, or the device tree, in that order, with a
// fixed default when discovery fails.
func openStore(log logger.Logger, writable bool) (*nvram.Store, error) {
	size := int(nvramSize)
	if size == 0 {
		var err error
		size, err = (devtree.Resolver{}).NVRAMSize()
		if err != nil {
			log.Warn("could not determine nvram size from device tree",
				"error", err, "default", devtree.DefaultSize)
			size = devtree.DefaultSize
		}
	}

	paths := []string{nvramFile}
	if nvramFile == "" {
		paths = []string{nvramDevice, nvramDeviceAlt}
	}

	var (
		s       *nvram.Store
		lastErr error
	)
	for _, path := range paths {
		s, lastErr = nvram.Open(path, size, writable)
		if lastErr == nil {
			break
		}
		log.Debug("cannot open store", "path", path, "error", lastErr)
	}
	if lastErr != nil {
		return nil, fmt.Errorf("cannot open nvram: %w", lastErr)
	}

	if len(s.Data) != size {
		log.Warn("store size does not match the device tree",
			"store", len(s.Data), "device_tree", size)
	}

	if err := s.Parse(); err != nil {
		_ = s.Close()
		return nil, err
	}
	for _, msg := range s.Warnings() {
		log.Warn(msg)
	}
	log.Debug("parsed nvram store", "path", s.Path, "bytes", len(s.Data),
		"partitions", len(s.Partitions()))
	return s, nil
}

// withStore runs fn against an opened store and closes it afterwards.
func withStore(log logger.Logger, writable bool, fn func(s *nvram.Store) error) error {
	s, err := openStore(log, writable)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()
	return fn(s)
}
