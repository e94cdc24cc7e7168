package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/seatmap/internal/export"
	"github.com/samcharles93/seatmap/internal/extract"
	"github.com/samcharles93/seatmap/internal/logger"
	"github.com/samcharles93/seatmap/internal/worlddb"
)

func extractCmd() *cli.Command {
	var (
		format        string
		output        string
		scaleOverride float64
	)

	return &cli.Command{
		Name:   "extract",
		Usage:  "Compute seat positions for every vehicle creature in the world database",
		Before: setup,
		Flags: withFlags(providerFlags(), worldFlags(), loggingFlags(), []cli.Flag{
			formatFlag(&format),
			&cli.StringFlag{
				Name:        "output",
				Aliases:     []string{"o"},
				Usage:       "write results to a file instead of stdout",
				Destination: &output,
			},
			&cli.UintFlag{
				Name:  "entry",
				Usage: "only process this creature entry",
			},
			&cli.Float64Flag{
				Name:        "scale-override",
				Usage:       "use this display scale instead of CreatureDisplayInfo's",
				Destination: &scaleOverride,
			},
		}),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			applyExtractConfig(cmd, config, &format, &scaleOverride)

			f, err := export.ParseFormat(format)
			if err != nil {
				return cli.Exit(err.Error(), 2)
			}
			if worldDB == "" {
				return cli.Exit(fmt.Sprintf("--world-db is required unless %s is set", envWorldDB), 2)
			}

			provider, closeProvider, err := openProvider(ctx, log)
			if err != nil {
				return err
			}
			defer func() { _ = closeProvider() }()

			db, err := worlddb.Open(ctx, worldDB)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			pipeline, err := extract.New(ctx, provider, log, extract.Options{ScaleOverride: float32(scaleOverride)})
			if err != nil {
				return err
			}

			var out io.Writer = os.Stdout
			if output != "" {
				if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
					return err
				}
				file, err := os.Create(output)
				if err != nil {
					return err
				}
				defer func() { _ = file.Close() }()
				out = file
			}
			w, err := export.NewResultWriter(out, f)
			if err != nil {
				return err
			}

			if cmd.IsSet("entry") {
				err = extractOne(ctx, pipeline, db, uint32(cmd.Uint("entry")), w)
			} else {
				_, err = pipeline.Run(ctx, db, w.Write)
			}
			if err != nil {
				return err
			}
			if err := w.Close(); err != nil {
				return err
			}
			if output != "" {
				log.Info("results written", "path", output, "format", f)
			}
			return nil
		},
	}
}

func extractOne(ctx context.Context, p *extract.Pipeline, db *worlddb.DB, entry uint32, w export.ResultWriter) error {
	c, err := db.Creature(ctx, entry)
	if err != nil {
		return err
	}
	overrides, err := db.VehicleSeats(ctx, c.VehicleID)
	if err != nil {
		return err
	}
	results, err := p.Creature(ctx, c, overrides)
	if err != nil {
		return err
	}
	for _, r := range results {
		if err := w.Write(r); err != nil {
			return err
		}
	}
	return nil
}
