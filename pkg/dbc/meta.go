package dbc

import (
	"fmt"
	"strings"
)

// FieldType is the logical type of a record field, using the single
// character codes of the client's own format strings.
type FieldType byte

const (
	FieldInt    FieldType = 'i'
	FieldUint   FieldType = 'u'
	FieldEnum   FieldType = 'n'
	FieldFloat  FieldType = 'f'
	FieldInt64  FieldType = 'l'
	FieldByte   FieldType = 'b'
	FieldString FieldType = 's'
)

func (t FieldType) String() string {
	switch t {
	case FieldInt:
		return "int"
	case FieldUint:
		return "uint"
	case FieldEnum:
		return "enum"
	case FieldFloat:
		return "float"
	case FieldInt64:
		return "int64"
	case FieldByte:
		return "byte"
	case FieldString:
		return "string"
	default:
		return fmt.Sprintf("FieldType(%q)", byte(t))
	}
}

// elemSize is the canonical in-memory width of one element.
func (t FieldType) elemSize() uint32 {
	switch t {
	case FieldInt, FieldUint, FieldEnum, FieldFloat, FieldString:
		return 4
	case FieldInt64:
		return 8
	case FieldByte:
		return 1
	default:
		return 0
	}
}

// Field describes one column of a record. Size is the total on-disk width
// including any array extent. A 4-byte type with Size below 4 is packed:
// it holds a single value whose upper bytes are masked off on load.
type Field struct {
	Name   string
	Offset uint32
	Size   uint32
	Type   FieldType
	Sparse bool
}

// Packed reports whether the field is stored narrower than its type.
func (f Field) Packed() bool {
	return f.Size < f.Type.elemSize()
}

// Arity is the number of elements the field decodes to.
func (f Field) Arity() int {
	if f.Packed() {
		return 1
	}
	es := f.Type.elemSize()
	if es == 0 {
		return 0
	}
	return int(f.Size / es)
}

func (f Field) validate(recordSize uint32) error {
	es := f.Type.elemSize()
	if es == 0 {
		return fmt.Errorf("%w: field %q has type %v", ErrUnsupportedFieldType, f.Name, f.Type)
	}
	if f.Size == 0 {
		return fmt.Errorf("%w: field %q has zero size", ErrLayoutMismatch, f.Name)
	}
	if uint64(f.Offset)+uint64(f.Size) > uint64(recordSize) {
		return fmt.Errorf("%w: field %q ends at %d past record size %d", ErrLayoutMismatch, f.Name, uint64(f.Offset)+uint64(f.Size), recordSize)
	}
	switch f.Type {
	case FieldInt, FieldUint, FieldEnum, FieldFloat:
		if f.Size >= 4 && f.Size%4 != 0 {
			return fmt.Errorf("%w: field %q size %d is not a multiple of 4", ErrLayoutMismatch, f.Name, f.Size)
		}
	case FieldInt64, FieldString:
		if f.Size%es != 0 {
			return fmt.Errorf("%w: field %q size %d is not a multiple of %d", ErrLayoutMismatch, f.Name, f.Size, es)
		}
	}
	return nil
}

// Meta is the static layout of one record type. Name is the canonical
// archive path of the file holding the table.
type Meta struct {
	Name       string
	Sparse     bool
	RecordSize uint32
	Fields     []Field
}

// NewMeta lays fields out back to back and derives the record size.
func NewMeta(name string, sparse bool, fields ...Field) *Meta {
	m := &Meta{Name: name, Sparse: sparse, Fields: make([]Field, len(fields))}
	var off uint32
	for i, f := range fields {
		f.Offset = off
		off += f.Size
		m.Fields[i] = f
	}
	m.RecordSize = off
	return m
}

// Validate checks that the field sizes add up to the record stride and
// that every field fits its type.
func (m *Meta) Validate() error {
	if m.RecordSize < 4 {
		return fmt.Errorf("%w: record size %d cannot hold an id", ErrLayoutMismatch, m.RecordSize)
	}
	if len(m.Fields) == 0 {
		return fmt.Errorf("%w: no fields", ErrLayoutMismatch)
	}
	var sum uint64
	for _, f := range m.Fields {
		if err := f.validate(m.RecordSize); err != nil {
			return err
		}
		sum += uint64(f.Size)
	}
	if sum != uint64(m.RecordSize) {
		return fmt.Errorf("%w: field sizes sum to %d, record size is %d", ErrLayoutMismatch, sum, m.RecordSize)
	}
	return nil
}

// FieldCount is the number of declared fields.
func (m *Meta) FieldCount() int {
	return len(m.Fields)
}

// Columns is the number of scalar columns once arrays are expanded.
func (m *Meta) Columns() int {
	n := 0
	for _, f := range m.Fields {
		n += f.Arity()
	}
	return n
}

// FieldIndex returns the index of the named field, matched case-insensitively.
func (m *Meta) FieldIndex(name string) (int, bool) {
	for i, f := range m.Fields {
		if strings.EqualFold(f.Name, name) {
			return i, true
		}
	}
	return -1, false
}

// FormatString renders the layout as a format string, one code per column.
func (m *Meta) FormatString() string {
	var b strings.Builder
	for _, f := range m.Fields {
		for range f.Arity() {
			b.WriteByte(byte(f.Type))
		}
	}
	return b.String()
}

func Int(name string) Field    { return Field{Name: name, Size: 4, Type: FieldInt} }
func Uint(name string) Field   { return Field{Name: name, Size: 4, Type: FieldUint} }
func Enum(name string) Field   { return Field{Name: name, Size: 4, Type: FieldEnum} }
func Float(name string) Field  { return Field{Name: name, Size: 4, Type: FieldFloat} }
func Int64(name string) Field  { return Field{Name: name, Size: 8, Type: FieldInt64} }
func Byte(name string) Field   { return Field{Name: name, Size: 1, Type: FieldByte} }
func String(name string) Field { return Field{Name: name, Size: 4, Type: FieldString} }

// Array widens f to n consecutive elements.
func Array(f Field, n int) Field {
	f.Size *= uint32(n)
	return f
}

// Narrow stores a 4-byte field in size bytes (1 to 3).
func Narrow(f Field, size uint32) Field {
	f.Size = size
	return f
}

// Inline marks the field as belonging to the sparse dialect's inline
// layout. Strings are still resolved through the string block.
func Inline(f Field) Field {
	f.Sparse = true
	return f
}
