package main

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/seatmap/internal/api"
	"github.com/samcharles93/seatmap/internal/extract"
	"github.com/samcharles93/seatmap/internal/logger"
	"github.com/samcharles93/seatmap/internal/worlddb"
)

func serveCmd() *cli.Command {
	var (
		addr          string
		readTimeout   time.Duration
		scaleOverride float64
	)

	return &cli.Command{
		Name:   "serve",
		Usage:  "Serve seat positions and table records over HTTP",
		Before: setup,
		Flags: withFlags(providerFlags(), worldFlags(), loggingFlags(), []cli.Flag{
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
			&cli.Float64Flag{
				Name:        "scale-override",
				Usage:       "use this display scale instead of CreatureDisplayInfo's",
				Destination: &scaleOverride,
			},
		}),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			applyServeConfig(cmd, config, &addr, &scaleOverride)

			provider, closeProvider, err := openProvider(ctx, log)
			if err != nil {
				return err
			}
			defer func() { _ = closeProvider() }()

			pipeline, err := extract.New(ctx, provider, log, extract.Options{ScaleOverride: float32(scaleOverride)})
			if err != nil {
				return err
			}

			var creatures api.Creatures
			if worldDB != "" {
				db, err := worlddb.Open(ctx, worldDB)
				if err != nil {
					return err
				}
				defer func() { _ = db.Close() }()
				creatures = db
			} else {
				log.Warn("no world database, creature routes are disabled")
			}

			server := api.NewServer(pipeline, creatures, log)
			e := echo.New()
			e.Use(middleware.RequestLogger())
			e.Use(middleware.Recover())
			server.Register(e)
			log.Info("starting server", "address", addr)
			sc := echo.StartConfig{
				Address: addr,
				BeforeServeFunc: func(srv *http.Server) error {
					srv.ReadHeaderTimeout = readTimeout
					return nil
				},
			}
			return sc.Start(ctx, e)
		},
	}
}
