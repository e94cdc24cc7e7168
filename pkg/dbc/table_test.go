package dbc

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"testing"
)

type testRecord []byte

func rec(words ...uint32) testRecord {
	var b []byte
	for _, w := range words {
		b = binary.LittleEndian.AppendUint32(b, w)
	}
	return b
}

type tableSpec struct {
	magic       uint32
	sparse      bool
	recordSize  uint32
	fieldCount  uint32
	minIndex    uint32
	maxIndex    uint32
	index       []IndexEntry
	records     []testRecord
	stringBlock []byte
}

func writeTestTable(s tableSpec) []byte {
	le := binary.LittleEndian
	magic := s.magic
	if magic == 0 {
		magic = MagicDBC
		if s.sparse {
			magic = MagicDB2
		}
	}
	var b []byte
	b = le.AppendUint32(b, magic)
	b = le.AppendUint32(b, uint32(len(s.records)))
	b = le.AppendUint32(b, s.fieldCount)
	b = le.AppendUint32(b, s.recordSize)
	b = le.AppendUint32(b, uint32(len(s.stringBlock)))
	if s.sparse {
		b = le.AppendUint32(b, 0xDEADBEEF) // table hash
		b = le.AppendUint32(b, 12340)      // build
		b = le.AppendUint32(b, 0)          // timestamp
		b = le.AppendUint32(b, s.minIndex)
		b = le.AppendUint32(b, s.maxIndex)
		b = le.AppendUint32(b, 0) // locale
		b = le.AppendUint32(b, 0) // copy table size
		n := int(s.maxIndex - s.minIndex + 1)
		for i := range n {
			var e IndexEntry
			if i < len(s.index) {
				e = s.index[i]
			}
			b = le.AppendUint32(b, e.RecordOffset)
			b = le.AppendUint16(b, e.RecordID)
		}
	}
	for _, r := range s.records {
		b = append(b, r...)
	}
	return append(b, s.stringBlock...)
}

var testCreatureMeta = NewMeta(`DBFilesClient\TestCreature.dbc`, false,
	Uint("ID"),
	Uint("ModelID"),
	Float("Scale"),
	String("Name"),
)

var testItemMeta = NewMeta(`DBFilesClient\TestItem.db2`, true,
	Uint("ID"),
	Enum("Class"),
	Int("Delta"),
)

func TestDecodeFlatKeysRecordsByLeadingID(t *testing.T) {
	t.Parallel()

	strs := []byte("\x00Mimiron\x00Flame Leviathan\x00")
	data := writeTestTable(tableSpec{
		recordSize: testCreatureMeta.RecordSize,
		fieldCount: 4,
		records: []testRecord{
			rec(33113, 25870, math.Float32bits(1.5), 9),
			rec(33432, 28831, math.Float32bits(1), 1),
			rec(7, 0, 0, 0),
		},
		stringBlock: strs,
	})

	tbl, err := Decode(testCreatureMeta, data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if tbl.Len() != 3 {
		t.Fatalf("len mismatch: got %d want 3", tbl.Len())
	}
	if tbl.RecordsOffset() != HeaderSize {
		t.Fatalf("records offset: got %d want %d", tbl.RecordsOffset(), HeaderSize)
	}

	seen := 0
	for id, r := range tbl.All() {
		seen++
		if r.ID() != id {
			t.Fatalf("record stored under %d has id %d", id, r.ID())
		}
		if !tbl.Contains(id) {
			t.Fatalf("contains(%d) = false", id)
		}
	}
	if seen != 3 {
		t.Fatalf("iterated %d records, want 3", seen)
	}

	r, err := tbl.Get(33113)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got := r.Uint32(1, 0); got != 25870 {
		t.Fatalf("model id: got %d want 25870", got)
	}
	if got := r.Float32(2, 0); got != 1.5 {
		t.Fatalf("scale: got %v want 1.5", got)
	}
	if got := r.String(3, 0); got != "Flame Leviathan" {
		t.Fatalf("name: got %q", got)
	}
	if got := r.Display(3); got != `"Flame Leviathan"` {
		t.Fatalf("display: got %s", got)
	}
	if r7, _ := tbl.Get(7); r7.String(3, 0) != "" {
		t.Fatalf("offset 0 should be the empty string, got %q", r7.String(3, 0))
	}

	if _, err := tbl.Get(1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing id: got %v want ErrNotFound", err)
	}
	if ids := tbl.IDs(); len(ids) != 3 || ids[0] != 7 || ids[2] != 33432 {
		t.Fatalf("ids not sorted: %v", ids)
	}
}

func TestDecodeSparseSkipsIndexTable(t *testing.T) {
	t.Parallel()

	data := writeTestTable(tableSpec{
		sparse:     true,
		recordSize: testItemMeta.RecordSize,
		fieldCount: 3,
		minIndex:   25,
		maxIndex:   29,
		index: []IndexEntry{
			{RecordOffset: 0x100, RecordID: 25},
			{RecordOffset: 0x10C, RecordID: 27},
		},
		records: []testRecord{
			rec(25, 2, uint32(0xFFFFFFFF)),
			rec(27, 4, 12),
		},
	})

	tbl, err := Decode(testItemMeta, data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := uint64(SparseHeaderSize + IndexEntrySize*(29-25+1))
	if tbl.RecordsOffset() != want {
		t.Fatalf("records offset: got %d want %d", tbl.RecordsOffset(), want)
	}
	sh, ok := tbl.SparseHeader()
	if !ok || sh.Build != 12340 {
		t.Fatalf("sparse header missing or wrong: %+v %v", sh, ok)
	}
	idx := tbl.SparseIndex()
	if len(idx) != 5 {
		t.Fatalf("index entries: got %d want 5", len(idx))
	}
	if idx[1] != (IndexEntry{RecordOffset: 0x10C, RecordID: 27}) {
		t.Fatalf("index entry 1: got %+v", idx[1])
	}

	r, err := tbl.Get(25)
	if err != nil {
		t.Fatalf("get 25: %v", err)
	}
	if got := r.Int32(2, 0); got != -1 {
		t.Fatalf("signed field: got %d want -1", got)
	}
	r, err = tbl.Get(27)
	if err != nil {
		t.Fatalf("get 27: %v", err)
	}
	if got := r.Uint32(1, 0); got != 4 {
		t.Fatalf("enum field: got %d want 4", got)
	}
}

func TestPackedFieldsMaskUpperBytes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		size uint32
		want uint32
	}{
		{size: 1, want: 0xDD},
		{size: 2, want: 0xCCDD},
		{size: 3, want: 0xBBCCDD},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d bytes", tt.size), func(t *testing.T) {
			t.Parallel()

			meta := NewMeta("Packed.dbc", false, Uint("ID"), Narrow(Uint("Value"), tt.size))
			slot := binary.LittleEndian.AppendUint32(nil, 0xAABBCCDD)
			// The record holds the low bytes of the slot; the rest spill
			// into the string block so the 4-byte load sees 0xAABBCCDD.
			record := append(rec(1), slot[:tt.size]...)
			data := writeTestTable(tableSpec{
				recordSize:  meta.RecordSize,
				fieldCount:  2,
				records:     []testRecord{record},
				stringBlock: slot[tt.size:],
			})

			tbl, err := Decode(meta, data)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			r, _ := tbl.Get(1)
			if got := r.Uint32(1, 0); got != tt.want {
				t.Fatalf("packed value: got %#x want %#x", got, tt.want)
			}
			if meta.Fields[1].Arity() != 1 {
				t.Fatalf("packed arity: got %d want 1", meta.Fields[1].Arity())
			}
		})
	}
}

func TestDuplicateIDsLastWriteWins(t *testing.T) {
	t.Parallel()

	meta := NewMeta("Dup.dbc", false, Uint("ID"), Uint("Value"))
	data := writeTestTable(tableSpec{
		recordSize: meta.RecordSize,
		records:    []testRecord{rec(4, 1), rec(5, 2), rec(4, 3)},
	})
	tbl, err := Decode(meta, data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if tbl.Duplicates() != 1 {
		t.Fatalf("duplicates: got %d want 1", tbl.Duplicates())
	}
	if tbl.Len() != 3 {
		t.Fatalf("len should follow the header: got %d want 3", tbl.Len())
	}
	r, _ := tbl.Get(4)
	if got := r.Uint32(1, 0); got != 3 {
		t.Fatalf("duplicate id kept value %d, want 3", got)
	}
	n := 0
	for range tbl.All() {
		n++
	}
	if n != 2 {
		t.Fatalf("iteration yielded %d records, want 2", n)
	}
}

func TestDecodeErrors(t *testing.T) {
	t.Parallel()

	flat := writeTestTable(tableSpec{recordSize: testCreatureMeta.RecordSize, records: []testRecord{rec(1, 2, 3, 0)}, stringBlock: []byte{0}})
	sparse := writeTestTable(tableSpec{sparse: true, recordSize: testItemMeta.RecordSize, records: []testRecord{rec(1, 2, 3)}})
	badString := writeTestTable(tableSpec{recordSize: testCreatureMeta.RecordSize, records: []testRecord{rec(1, 2, 3, 40)}, stringBlock: []byte("\x00abc\x00")})
	backwards := writeTestTable(tableSpec{sparse: true, recordSize: testItemMeta.RecordSize})
	le := binary.LittleEndian
	le.PutUint32(backwards[32:], 9)
	le.PutUint32(backwards[36:], 3)

	byteArray := NewMeta("Bytes.dbc", false, Uint("ID"), Array(Byte("Flags"), 4))
	byteData := writeTestTable(tableSpec{recordSize: 8, records: []testRecord{rec(1, 0)}})

	tests := []struct {
		name string
		meta *Meta
		data []byte
		want error
	}{
		{name: "empty", meta: testCreatureMeta, data: nil, want: ErrTruncated},
		{name: "flat as sparse", meta: testItemMeta, data: append(flat, make([]byte, 64)...), want: ErrBadMagic},
		{name: "sparse as flat", meta: testCreatureMeta, data: sparse, want: ErrBadMagic},
		{name: "truncated records", meta: testCreatureMeta, data: flat[:HeaderSize+8], want: ErrTruncated},
		{name: "truncated string block", meta: testCreatureMeta, data: flat[:len(flat)-1], want: ErrTruncated},
		{name: "record size", meta: NewMeta("Short.dbc", false, Uint("ID"), Uint("A")), data: flat, want: ErrLayoutMismatch},
		{name: "string offset", meta: testCreatureMeta, data: badString, want: ErrTruncated},
		{name: "max below min", meta: testItemMeta, data: backwards, want: ErrCorrupt},
		{name: "byte array", meta: byteArray, data: byteData, want: ErrUnsupportedFieldType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tbl, err := Decode(tt.meta, tt.data)
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v want %v", err, tt.want)
			}
			if tbl != nil {
				t.Fatalf("failed decode returned a partial table")
			}
		})
	}
}

func TestMetaValidate(t *testing.T) {
	t.Parallel()

	good := NewMeta("Good.dbc", false, Uint("ID"), Array(Float("Pos"), 3), Narrow(Int("Small"), 2), Int64("Big"), Byte("Flag"))
	if err := good.Validate(); err != nil {
		t.Fatalf("valid layout rejected: %v", err)
	}
	if good.RecordSize != 4+12+2+8+1 {
		t.Fatalf("record size: got %d", good.RecordSize)
	}
	if got := good.FormatString(); got != "ufffilb" {
		t.Fatalf("format string: got %q", got)
	}
	if good.Columns() != 7 {
		t.Fatalf("columns: got %d want 7", good.Columns())
	}

	gap := &Meta{Name: "Gap.dbc", RecordSize: 12, Fields: []Field{
		{Name: "ID", Offset: 0, Size: 4, Type: FieldUint},
		{Name: "A", Offset: 8, Size: 4, Type: FieldUint},
	}}
	if err := gap.Validate(); !errors.Is(err, ErrLayoutMismatch) {
		t.Fatalf("gap layout: got %v want ErrLayoutMismatch", err)
	}
	unknown := NewMeta("Unknown.dbc", false, Uint("ID"), Field{Name: "X", Size: 4, Type: 'x'})
	if err := unknown.Validate(); !errors.Is(err, ErrUnsupportedFieldType) {
		t.Fatalf("unknown type: got %v want ErrUnsupportedFieldType", err)
	}
	ragged := NewMeta("Ragged.dbc", false, Uint("ID"), Field{Name: "X", Size: 6, Type: FieldUint})
	if err := ragged.Validate(); !errors.Is(err, ErrLayoutMismatch) {
		t.Fatalf("ragged array: got %v want ErrLayoutMismatch", err)
	}
}
