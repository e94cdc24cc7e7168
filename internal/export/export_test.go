package export

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/samcharles93/seatmap/internal/extract"
)

var sample = []extract.Result{
	{Entry: 32633, Name: "Traveler's Tundra Mammoth", DisplayID: 500, Model: `Creature\Mammoth\Mammoth.m2`, SeatIndex: 0, SeatID: 10, ModelAttachment: "vehicle_seat1", X: 2, Y: 0, Z: 2},
	{Entry: 32633, Name: "Traveler's Tundra Mammoth", DisplayID: 500, SeatIndex: 1, SeatID: 11, AttachmentID: 1, Fallback: true, Y: 2},
}

func TestParseFormat(t *testing.T) {
	t.Parallel()
	tests := map[string]Format{"": FormatText, "JSON": FormatJSON, "yml": FormatYAML, "cbor": FormatCBOR}
	for in, want := range tests {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("csv"); err == nil {
		t.Error("expected error for csv")
	}
}

func TestText(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	if err := WriteResults(&buf, FormatText, sample); err != nil {
		t.Fatalf("WriteResults: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "ENTRY") {
		t.Fatalf("header: %q", lines[0])
	}
	if !strings.Contains(lines[1], "2.0000") || !strings.Contains(lines[1], "vehicle_seat1") {
		t.Fatalf("row 1: %q", lines[1])
	}
	if !strings.HasSuffix(lines[2], "fallback") {
		t.Fatalf("row 2: %q", lines[2])
	}
}

func TestJSON(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	if err := WriteResults(&buf, FormatJSON, sample); err != nil {
		t.Fatalf("WriteResults: %v", err)
	}
	var got []extract.Result
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got) != 2 || got[0] != sample[0] || got[1] != sample[1] {
		t.Fatalf("got %+v", got)
	}
	if !strings.Contains(buf.String(), `"seat_index": 1`) {
		t.Fatalf("expected snake_case keys:\n%s", buf.String())
	}
}

func TestEmptyJSONIsArray(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	if err := WriteResults(&buf, FormatJSON, nil); err != nil {
		t.Fatalf("WriteResults: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Fatalf("got %q", buf.String())
	}
}

func TestYAML(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	if err := WriteResults(&buf, FormatYAML, sample); err != nil {
		t.Fatalf("WriteResults: %v", err)
	}
	var got []extract.Result
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got) != 2 || got[1] != sample[1] {
		t.Fatalf("got %+v", got)
	}
}

func TestCBORSequence(t *testing.T) {
	t.Parallel()
	var a, b bytes.Buffer
	if err := WriteResults(&a, FormatCBOR, sample); err != nil {
		t.Fatalf("WriteResults: %v", err)
	}
	if err := WriteResults(&b, FormatCBOR, sample); err != nil {
		t.Fatalf("WriteResults: %v", err)
	}
	if !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Fatal("encoding is not deterministic")
	}

	dec := cbor.NewDecoder(&a)
	var got []extract.Result
	for {
		var r extract.Result
		err := dec.Decode(&r)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		got = append(got, r)
	}
	if len(got) != 2 || got[0] != sample[0] {
		t.Fatalf("got %+v", got)
	}
}

func TestValue(t *testing.T) {
	t.Parallel()
	v := map[string]any{"table": "Vehicle", "records": 1}
	var buf bytes.Buffer
	if err := Value(&buf, FormatText, v); err != nil {
		t.Fatalf("Value: %v", err)
	}
	if !strings.Contains(buf.String(), "table: Vehicle") {
		t.Fatalf("got %q", buf.String())
	}
	if err := Value(io.Discard, Format("xml"), v); err == nil {
		t.Fatal("expected error for unknown format")
	}
	if _, err := NewResultWriter(io.Discard, Format("xml")); err == nil {
		t.Fatal("expected error for unknown format")
	}
}
