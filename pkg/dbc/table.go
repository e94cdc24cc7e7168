package dbc

import (
	"encoding/binary"
	"fmt"
	"iter"
	"slices"
)

var packedMasks = [4]uint32{0x000000FF, 0x0000FFFF, 0x00FFFFFF, 0xFFFFFFFF}

// Table is a decoded record file: every record's cells, keyed by the id in
// its first four bytes, plus the string pool the string cells point into.
// A Table is immutable once Decode returns and safe for concurrent reads.
type Table struct {
	meta   *Meta
	header Header
	sparse *SparseHeader
	index  []IndexEntry
	pool   *StringPool

	recordsOffset uint64
	starts        []int
	stride        int
	cells         []uint64
	ids           []uint32
	byID          map[uint32]int
	duplicates    int
}

// Decode parses data as a table with the given layout. The header dialect,
// magic and record stride are checked against meta before any record is
// read. Nothing in the returned table aliases data.
func Decode(meta *Meta, data []byte) (*Table, error) {
	if err := meta.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", meta.Name, err)
	}
	t := &Table{meta: meta}

	if meta.Sparse {
		sh, err := decodeSparseHeader(data)
		if err != nil {
			return nil, err
		}
		n := sh.IndexLen()
		off := uint64(SparseHeaderSize) + n*IndexEntrySize
		if off > uint64(len(data)) {
			return nil, fmt.Errorf("%w: index table of %d entries ends at %d, file is %d bytes", ErrTruncated, n, off, len(data))
		}
		t.header = sh.Header
		t.sparse = &sh
		t.index = decodeIndex(data[SparseHeaderSize:off], n)
		t.recordsOffset = off
	} else {
		h, err := decodeHeader(data)
		if err != nil {
			return nil, err
		}
		t.header = h
		t.recordsOffset = HeaderSize
	}

	h := t.header
	if h.RecordSize != meta.RecordSize {
		return nil, fmt.Errorf("%w: file record size %d, layout %s expects %d", ErrLayoutMismatch, h.RecordSize, meta.Name, meta.RecordSize)
	}
	for _, f := range meta.Fields {
		if f.Type == FieldByte && f.Size != 1 {
			return nil, fmt.Errorf("%w: byte array field %q (%d bytes)", ErrUnsupportedFieldType, f.Name, f.Size)
		}
	}

	stringsOffset := t.recordsOffset + uint64(h.RecordCount)*uint64(h.RecordSize)
	end := stringsOffset + uint64(h.StringBlockSize)
	if end > uint64(len(data)) {
		return nil, fmt.Errorf("%w: string block ends at %d, file is %d bytes", ErrTruncated, end, len(data))
	}
	t.pool = newStringPool(data[stringsOffset:end])

	t.starts = make([]int, len(meta.Fields))
	for i, f := range meta.Fields {
		t.starts[i] = t.stride
		t.stride += f.Arity()
	}

	count := int(h.RecordCount)
	t.cells = make([]uint64, count*t.stride)
	t.ids = make([]uint32, count)
	t.byID = make(map[uint32]int, count)
	for i := range count {
		base := t.recordsOffset + uint64(i)*uint64(h.RecordSize)
		rec := data[base : base+uint64(h.RecordSize)]
		row := t.cells[i*t.stride : (i+1)*t.stride]
		if err := t.decodeRecord(row, rec, data[base:]); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		id := binary.LittleEndian.Uint32(rec[0:4])
		t.ids[i] = id
		if _, dup := t.byID[id]; dup {
			t.duplicates++
		}
		t.byID[id] = i
	}
	return t, nil
}

// decodeRecord fills row from rec. tail is the file from the start of rec
// onwards; packed loads read their 4-byte slot from it before masking.
func (t *Table) decodeRecord(row []uint64, rec, tail []byte) error {
	le := binary.LittleEndian
	for fi, f := range t.meta.Fields {
		dst := row[t.starts[fi] : t.starts[fi]+f.Arity()]
		p := int(f.Offset)
		switch f.Type {
		case FieldInt, FieldUint, FieldEnum, FieldFloat:
			if f.Packed() {
				dst[0] = uint64(load32(tail[p:]) & packedMasks[f.Size-1])
				continue
			}
			for i := range dst {
				dst[i] = uint64(le.Uint32(rec[p+4*i:]))
			}
		case FieldInt64:
			for i := range dst {
				dst[i] = le.Uint64(rec[p+8*i:])
			}
		case FieldByte:
			dst[0] = uint64(rec[p])
		case FieldString:
			for i := range dst {
				off := le.Uint32(rec[p+4*i:])
				if !t.pool.Valid(off) {
					return fmt.Errorf("%w: field %q string offset %d outside %d byte pool", ErrTruncated, f.Name, off, t.pool.Len())
				}
				dst[i] = uint64(off)
			}
		default:
			return fmt.Errorf("%w: field %q has type %v", ErrUnsupportedFieldType, f.Name, f.Type)
		}
	}
	return nil
}

// load32 reads up to four little-endian bytes, zero filling past the end.
func load32(b []byte) uint32 {
	var slot [4]byte
	copy(slot[:], b)
	return binary.LittleEndian.Uint32(slot[:])
}

func (t *Table) Meta() *Meta { return t.meta }

// Header returns the common header prefix.
func (t *Table) Header() Header { return t.header }

// SparseHeader returns the WDB2 header for sparse tables.
func (t *Table) SparseHeader() (SparseHeader, bool) {
	if t.sparse == nil {
		return SparseHeader{}, false
	}
	return *t.sparse, true
}

// SparseIndex returns the index table that precedes the records of a
// sparse table, or nil for flat tables.
func (t *Table) SparseIndex() []IndexEntry { return t.index }

// RecordsOffset is the byte offset of the first record in the file.
func (t *Table) RecordsOffset() uint64 { return t.recordsOffset }

func (t *Table) Pool() *StringPool { return t.pool }

// Len is the record count declared by the header.
func (t *Table) Len() int { return int(t.header.RecordCount) }

// Duplicates counts records whose id was already present. The later record
// replaced the earlier one.
func (t *Table) Duplicates() int { return t.duplicates }

func (t *Table) Contains(id uint32) bool {
	_, ok := t.byID[id]
	return ok
}

func (t *Table) Lookup(id uint32) (Record, bool) {
	row, ok := t.byID[id]
	if !ok {
		return Record{}, false
	}
	return Record{t: t, row: row}, true
}

func (t *Table) Get(id uint32) (Record, error) {
	r, ok := t.Lookup(id)
	if !ok {
		return Record{}, fmt.Errorf("%w: %s id %d", ErrNotFound, ShortName(t.meta.Name), id)
	}
	return r, nil
}

// All yields every live record. Records replaced by a later duplicate are
// skipped. The order is unspecified.
func (t *Table) All() iter.Seq2[uint32, Record] {
	return func(yield func(uint32, Record) bool) {
		for row, id := range t.ids {
			if t.byID[id] != row {
				continue
			}
			if !yield(id, Record{t: t, row: row}) {
				return
			}
		}
	}
}

// IDs returns the distinct record ids in ascending order.
func (t *Table) IDs() []uint32 {
	ids := make([]uint32, 0, len(t.byID))
	for id := range t.byID {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
