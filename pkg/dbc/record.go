package dbc

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Record is a view of one decoded row. Field arguments are indexes into
// Meta.Fields and i selects the array element; both panic when out of
// range, like slice indexing.
type Record struct {
	t   *Table
	row int
}

func (r Record) cells(field int) []uint64 {
	start := r.t.starts[field]
	n := r.t.meta.Fields[field].Arity()
	base := r.row * r.t.stride
	return r.t.cells[base+start : base+start+n]
}

func (r Record) ID() uint32 { return r.t.ids[r.row] }

func (r Record) Table() *Table { return r.t }

func (r Record) Uint32(field, i int) uint32 { return uint32(r.cells(field)[i]) }

func (r Record) Int32(field, i int) int32 { return int32(uint32(r.cells(field)[i])) }

func (r Record) Float32(field, i int) float32 {
	return math.Float32frombits(uint32(r.cells(field)[i]))
}

func (r Record) Int64(field, i int) int64 { return int64(r.cells(field)[i]) }

func (r Record) Byte(field, i int) byte { return byte(r.cells(field)[i]) }

func (r Record) StringRef(field, i int) StringRef {
	return StringRef{pool: r.t.pool, off: uint32(r.cells(field)[i])}
}

func (r Record) String(field, i int) string { return r.StringRef(field, i).String() }

// Display renders a field for display. Arrays are bracketed.
func (r Record) Display(field int) string {
	f := r.t.meta.Fields[field]
	n := f.Arity()
	if n == 1 {
		return r.formatCell(f.Type, field, 0)
	}
	parts := make([]string, n)
	for i := range n {
		parts[i] = r.formatCell(f.Type, field, i)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func (r Record) formatCell(t FieldType, field, i int) string {
	switch t {
	case FieldInt:
		return strconv.FormatInt(int64(r.Int32(field, i)), 10)
	case FieldUint, FieldEnum:
		return strconv.FormatUint(uint64(r.Uint32(field, i)), 10)
	case FieldFloat:
		return strconv.FormatFloat(float64(r.Float32(field, i)), 'g', -1, 32)
	case FieldInt64:
		return strconv.FormatInt(r.Int64(field, i), 10)
	case FieldByte:
		return strconv.Itoa(int(r.Byte(field, i)))
	case FieldString:
		return strconv.Quote(r.String(field, i))
	default:
		return fmt.Sprintf("?%c", byte(t))
	}
}

// Values returns every field of the record formatted, keyed by field name.
func (r Record) Values() map[string]string {
	out := make(map[string]string, len(r.t.meta.Fields))
	for i, f := range r.t.meta.Fields {
		out[f.Name] = r.Display(i)
	}
	return out
}

// Cursor starts a sequential read of the record's columns.
func (r Record) Cursor() *Cursor {
	return &Cursor{rec: r}
}
