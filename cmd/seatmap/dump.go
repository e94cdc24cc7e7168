package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/seatmap/internal/export"
	"github.com/samcharles93/seatmap/internal/extract"
	"github.com/samcharles93/seatmap/internal/logger"
	"github.com/samcharles93/seatmap/pkg/dbc"
)

type dumpRecord struct {
	ID     uint32            `json:"id" yaml:"id" cbor:"id"`
	Fields map[string]string `json:"fields" yaml:"fields" cbor:"fields"`
}

func dumpCmd() *cli.Command {
	var (
		table  string
		format string
		list   bool
	)

	return &cli.Command{
		Name:   "dump",
		Usage:  "Print records of a client table",
		Before: setup,
		Flags: withFlags(providerFlags(), loggingFlags(), []cli.Flag{
			&cli.StringFlag{
				Name:        "table",
				Aliases:     []string{"t"},
				Usage:       "table name, e.g. VehicleSeat",
				Destination: &table,
			},
			&cli.UintFlag{
				Name:  "id",
				Usage: "print only this record",
			},
			&cli.BoolFlag{
				Name:        "list",
				Usage:       "list the known table layouts",
				Destination: &list,
			},
			formatFlag(&format),
		}),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			applyOutputConfig(cmd, config, &format)
			f, err := export.ParseFormat(format)
			if err != nil {
				return cli.Exit(err.Error(), 2)
			}

			if list {
				return listTables(os.Stdout)
			}
			if table == "" {
				return cli.Exit("--table is required (see --list)", 2)
			}

			provider, closeProvider, err := openProvider(ctx, log)
			if err != nil {
				return err
			}
			defer func() { _ = closeProvider() }()

			t, err := extract.NewTables(provider, log).Table(ctx, table)
			if err != nil {
				return err
			}

			var records []dbc.Record
			if cmd.IsSet("id") {
				rec, err := t.Get(uint32(cmd.Uint("id")))
				if err != nil {
					return err
				}
				records = append(records, rec)
			} else {
				for _, id := range t.IDs() {
					rec, _ := t.Lookup(id)
					records = append(records, rec)
				}
			}

			if f != export.FormatText {
				out := make([]dumpRecord, len(records))
				for i, rec := range records {
					out[i] = dumpRecord{ID: rec.ID(), Fields: rec.Values()}
				}
				return export.Value(os.Stdout, f, out)
			}
			return writeRecords(os.Stdout, t.Meta(), records)
		},
	}
}

func listTables(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "TABLE\tDIALECT\tRECORD\tCOLUMNS\tFORMAT")
	for _, name := range dbc.Registered() {
		m := dbc.MustLookup(name)
		dialect := "WDBC"
		if m.Sparse {
			dialect = "WDB2"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n", dbc.ShortName(m.Name), dialect, m.RecordSize, m.Columns(), m.FormatString())
	}
	return tw.Flush()
}

// writeRecords prints one row per record in field order.
func writeRecords(w io.Writer, meta *dbc.Meta, records []dbc.Record) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	names := make([]string, len(meta.Fields))
	for i, f := range meta.Fields {
		names[i] = f.Name
	}
	if _, err := fmt.Fprintln(tw, strings.Join(names, "\t")); err != nil {
		return err
	}
	cells := make([]string, len(meta.Fields))
	for _, rec := range records {
		for i := range meta.Fields {
			cells[i] = rec.Display(i)
		}
		if _, err := fmt.Fprintln(tw, strings.Join(cells, "\t")); err != nil {
			return err
		}
	}
	return tw.Flush()
}
