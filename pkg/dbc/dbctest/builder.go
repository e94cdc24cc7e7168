// Package dbctest assembles table files from registered layouts for tests.
package dbctest

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/samcharles93/seatmap/pkg/dbc"
)

// Builder accumulates records for one layout. Strings are interned into a
// string block whose first byte is NUL, so offset 0 is the empty string.
type Builder struct {
	meta     *dbc.Meta
	rows     [][]byte
	strs     []byte
	interned map[string]uint32
}

func New(meta *dbc.Meta) *Builder {
	return &Builder{meta: meta, strs: []byte{0}, interned: map[string]uint32{"": 0}}
}

// Intern returns the string block offset of s.
func (b *Builder) Intern(s string) uint32 {
	if off, ok := b.interned[s]; ok {
		return off
	}
	off := uint32(len(b.strs))
	b.strs = append(append(b.strs, s...), 0)
	b.interned[s] = off
	return off
}

// Add appends a record. Values are keyed by field name; slices fill array
// fields from index 0. Unknown names or value types panic.
func (b *Builder) Add(values map[string]any) *Builder {
	row := make([]byte, b.meta.RecordSize)
	for name, v := range values {
		i, ok := b.meta.FieldIndex(name)
		if !ok {
			panic(fmt.Sprintf("dbctest: %s has no field %q", b.meta.Name, name))
		}
		f := b.meta.Fields[i]
		cells := b.cells(v)
		if len(cells) > f.Arity() {
			panic(fmt.Sprintf("dbctest: %d values for %s[%d]", len(cells), name, f.Arity()))
		}
		elem := f.Size / uint32(f.Arity())
		for j, c := range cells {
			var word [8]byte
			binary.LittleEndian.PutUint64(word[:], c)
			copy(row[f.Offset+uint32(j)*elem:], word[:elem])
		}
	}
	b.rows = append(b.rows, row)
	return b
}

func (b *Builder) cells(v any) []uint64 {
	switch v := v.(type) {
	case uint32:
		return []uint64{uint64(v)}
	case int32:
		return []uint64{uint64(uint32(v))}
	case int:
		return []uint64{uint64(uint32(int32(v)))}
	case int64:
		return []uint64{uint64(v)}
	case byte:
		return []uint64{uint64(v)}
	case float32:
		return []uint64{uint64(math.Float32bits(v))}
	case string:
		return []uint64{uint64(b.Intern(v))}
	case []uint32:
		out := make([]uint64, len(v))
		for i, x := range v {
			out[i] = uint64(x)
		}
		return out
	case []int32:
		out := make([]uint64, len(v))
		for i, x := range v {
			out[i] = uint64(uint32(x))
		}
		return out
	case []float32:
		out := make([]uint64, len(v))
		for i, x := range v {
			out[i] = uint64(math.Float32bits(x))
		}
		return out
	case []string:
		out := make([]uint64, len(v))
		for i, x := range v {
			out[i] = uint64(b.Intern(x))
		}
		return out
	default:
		panic(fmt.Sprintf("dbctest: unsupported value %T", v))
	}
}

// Bytes encodes the table in the layout's dialect.
func (b *Builder) Bytes() []byte {
	le := binary.LittleEndian
	var out []byte
	magic := dbc.MagicDBC
	if b.meta.Sparse {
		magic = dbc.MagicDB2
	}
	out = le.AppendUint32(out, magic)
	out = le.AppendUint32(out, uint32(len(b.rows)))
	out = le.AppendUint32(out, uint32(b.meta.Columns()))
	out = le.AppendUint32(out, b.meta.RecordSize)
	out = le.AppendUint32(out, uint32(len(b.strs)))

	if b.meta.Sparse {
		lo, hi := uint32(0), uint32(0)
		for i, row := range b.rows {
			id := le.Uint32(row)
			if i == 0 || id < lo {
				lo = id
			}
			if i == 0 || id > hi {
				hi = id
			}
		}
		out = le.AppendUint32(out, 0) // table hash
		out = le.AppendUint32(out, 12340)
		out = le.AppendUint32(out, 0) // timestamp
		out = le.AppendUint32(out, lo)
		out = le.AppendUint32(out, hi)
		out = le.AppendUint32(out, 0) // locale
		out = le.AppendUint32(out, 0) // copy table size
		out = append(out, make([]byte, int(hi-lo+1)*dbc.IndexEntrySize)...)
	}

	for _, row := range b.rows {
		out = append(out, row...)
	}
	return append(out, b.strs...)
}
