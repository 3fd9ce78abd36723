package main

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/pnvram/internal/api"
	"github.com/samcharles93/pnvram/pkg/nvram"
)

func serveCmd() *cli.Command {
	var (
		addr        string
		readTimeout time.Duration
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve a read-only inspection API over the store",
		Flags: append(commonFlags(),
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address",
				Value:       "127.0.0.1:8080",
				Destination: &addr,
			},
			&cli.DurationFlag{
				Name:        "read-timeout",
				Usage:       "read timeout",
				Value:       30 * time.Second,
				Destination: &readTimeout,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := setup(cmd)
			applyServeConfig(cmd, LoadConfig(), &addr)

			return withStore(log, false, func(s *nvram.Store) error {
				server := api.NewServer(s, log)
				e := echo.New()
				e.Use(middleware.RequestLogger())
				e.Use(middleware.Recover())
				server.Register(e)

				log.Info("starting server", "address", addr, "store", s.Path)
				sc := echo.StartConfig{
					Address: addr,
					BeforeServeFunc: func(srv *http.Server) error {
						srv.ReadHeaderTimeout = readTimeout
						return nil
					},
				}
				return sc.Start(ctx, e)
			})
		},
	}
}
