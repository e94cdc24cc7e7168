package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/seatmap/internal/logger"
)

var (
	installPath string
	dataDirs    []string
	cacheDB     string
	cacheCodec  string
	worldDB     string
	logLevel    string
	logFormat   string
	debug       bool

	// config is loaded by setup before any action runs.
	config Config
)

func providerFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "install-path",
			Aliases:     []string{"i"},
			Usage:       "client installation; files are read from its Data directory",
			Sources:     cli.EnvVars(envInstallPath),
			Destination: &installPath,
		},
		&cli.StringSliceFlag{
			Name:    "data-dir",
			Aliases: []string{"d"},
			Usage:   "extracted data directory, searched in order (repeatable)",
		},
		&cli.StringFlag{
			Name:        "cache-db",
			Usage:       "sqlite file caching compressed client files",
			Destination: &cacheDB,
		},
		&cli.StringFlag{
			Name:        "cache-codec",
			Usage:       "cache compression (zstd, lz4, none)",
			Value:       "zstd",
			Destination: &cacheCodec,
		},
	}
}

func worldFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "world-db",
			Aliases:     []string{"w"},
			Usage:       "sqlite world database with creature_template",
			Sources:     cli.EnvVars(envWorldDB),
			Destination: &worldDB,
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
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "enable debug logging (shorthand for --log-level=debug)",
			Destination: &debug,
		},
	}
}

func formatFlag(dest *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "format",
		Aliases:     []string{"f"},
		Usage:       "output format (text, json, yaml, cbor)",
		Value:       "text",
		Destination: dest,
	}
}

// setup runs before every subcommand: it applies the config file to unset
// flags and installs the logger in the context.
func setup(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	config = LoadConfig()
	applyCommonConfig(cmd, config)
	if cmd.IsSet("data-dir") {
		dataDirs = cmd.StringSlice("data-dir")
	}

	format, err := logger.ParseFormat(logFormat)
	if err != nil {
		return ctx, cli.Exit(err.Error(), 2)
	}
	level := logger.ParseLevel(logLevel)
	if debug {
		level = logger.ParseLevel("debug")
	}
	log := logger.NewWithFormat(os.Stderr, format, level)
	return logger.WithContext(ctx, log), nil
}

func withFlags(groups ...[]cli.Flag) []cli.Flag {
	var out []cli.Flag
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}
