// Package export writes seat results and other command output as text,
// JSON, YAML or CBOR.
package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/fxamacker/cbor/v2"
	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/samcharles93/seatmap/internal/extract"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCBOR Format = "cbor"
)

// Formats lists every supported format.
var Formats = []Format{FormatText, FormatJSON, FormatYAML, FormatCBOR}

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatText, nil
	case "yml":
		return FormatYAML, nil
	case FormatText, FormatJSON, FormatYAML, FormatCBOR:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (want text, json, yaml or cbor)", s)
	}
}

// encMode uses Core Deterministic Encoding so identical results produce
// identical bytes.
var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("export: CBOR encoder initialization failed: " + err.Error())
	}
}

// ResultWriter streams results. Close must be called to flush.
type ResultWriter interface {
	Write(r extract.Result) error
	Close() error
}

func NewResultWriter(w io.Writer, f Format) (ResultWriter, error) {
	switch f {
	case FormatText:
		return newTextWriter(w), nil
	case FormatJSON, FormatYAML:
		return &bufferedWriter{w: w, format: f}, nil
	case FormatCBOR:
		return &cborWriter{enc: encMode.NewEncoder(w)}, nil
	default:
		return nil, fmt.Errorf("unknown format %q", f)
	}
}

// WriteResults writes all results and closes the writer.
func WriteResults(w io.Writer, f Format, results []extract.Result) error {
	rw, err := NewResultWriter(w, f)
	if err != nil {
		return err
	}
	for _, r := range results {
		if err := rw.Write(r); err != nil {
			return err
		}
	}
	return rw.Close()
}

// Value encodes a single value. Text output uses YAML.
func Value(w io.Writer, f Format, v any) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatText, FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case FormatCBOR:
		return encMode.NewEncoder(w).Encode(v)
	default:
		return fmt.Errorf("unknown format %q", f)
	}
}

type textWriter struct {
	tw *tabwriter.Writer
	n  int
}

func newTextWriter(w io.Writer) *textWriter {
	return &textWriter{tw: tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)}
}

func (t *textWriter) Write(r extract.Result) error {
	if t.n == 0 {
		if _, err := fmt.Fprintln(t.tw, "ENTRY\tNAME\tDISPLAY\tSEAT\tSEAT_ID\tATTACH\tX\tY\tZ\tNOTE"); err != nil {
			return err
		}
	}
	t.n++
	note := r.ModelAttachment
	if r.Fallback {
		note = "fallback"
	}
	if r.Override {
		note += " override"
	}
	_, err := fmt.Fprintf(t.tw, "%d\t%s\t%d\t%d\t%d\t%d\t%s\t%s\t%s\t%s\n",
		r.Entry, r.Name, r.DisplayID, r.SeatIndex, r.SeatID, r.AttachmentID,
		coord(r.X), coord(r.Y), coord(r.Z), strings.TrimSpace(note))
	return err
}

func (t *textWriter) Close() error { return t.tw.Flush() }

func coord(v float32) string {
	return strconv.FormatFloat(float64(v), 'f', 4, 32)
}

// bufferedWriter collects results and writes one document on Close.
type bufferedWriter struct {
	w       io.Writer
	format  Format
	results []extract.Result
}

func (b *bufferedWriter) Write(r extract.Result) error {
	b.results = append(b.results, r)
	return nil
}

func (b *bufferedWriter) Close() error {
	results := b.results
	if results == nil {
		results = []extract.Result{}
	}
	return Value(b.w, b.format, results)
}

// cborWriter emits a CBOR sequence, one item per result.
type cborWriter struct {
	enc *cbor.Encoder
}

func (c *cborWriter) Write(r extract.Result) error { return c.enc.Encode(r) }

func (c *cborWriter) Close() error { return nil }
