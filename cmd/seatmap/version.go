package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/seatmap/internal/export"
	"github.com/samcharles93/seatmap/internal/version"
)

func versionCmd() *cli.Command {
	var format string

	return &cli.Command{
		Name:  "version",
		Usage: "Print version information",
		Flags: []cli.Flag{formatFlag(&format)},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return cli.Exit(err.Error(), 2)
			}
			info := version.Resolve()
			if f != export.FormatText {
				return export.Value(os.Stdout, f, info)
			}
			fmt.Printf("version:    %s\n", info.Version)
			if info.Commit != "" {
				fmt.Printf("commit:     %s\n", info.Commit)
			}
			if info.BuildTime != "" {
				fmt.Printf("build time: %s\n", info.BuildTime)
			}
			fmt.Printf("go:         %s\n", info.Go)
			return nil
		},
	}
}
