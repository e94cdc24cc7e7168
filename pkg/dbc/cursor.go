package dbc

import (
	"fmt"
	"math"
)

// Cursor reads a record column by column in layout order. The first
// failure sticks: later reads return zero values and Err reports it.
type Cursor struct {
	rec   Record
	field int
	elem  int
	err   error
}

func (c *Cursor) Err() error { return c.err }

// Record is the record being read.
func (c *Cursor) Record() Record { return c.rec }

func (c *Cursor) next(accept ...FieldType) (uint64, FieldType, bool) {
	if c.err != nil {
		return 0, 0, false
	}
	fields := c.rec.t.meta.Fields
	if c.field >= len(fields) {
		c.err = fmt.Errorf("%w: read past last field of %s", ErrFieldType, ShortName(c.rec.t.meta.Name))
		return 0, 0, false
	}
	f := fields[c.field]
	ok := false
	for _, a := range accept {
		if f.Type == a {
			ok = true
			break
		}
	}
	if !ok {
		c.err = fmt.Errorf("%w: field %q is %v, read as %v", ErrFieldType, f.Name, f.Type, accept[0])
		return 0, 0, false
	}
	v := c.rec.cells(c.field)[c.elem]
	c.advance(1)
	return v, f.Type, true
}

func (c *Cursor) advance(n int) {
	fields := c.rec.t.meta.Fields
	for n > 0 && c.field < len(fields) {
		left := fields[c.field].Arity() - c.elem
		if n < left {
			c.elem += n
			return
		}
		n -= left
		c.field++
		c.elem = 0
	}
}

// Skip discards the next n columns.
func (c *Cursor) Skip(n int) {
	if c.err != nil {
		return
	}
	c.advance(n)
}

// Uint32 reads an unsigned, enum or signed column as raw bits.
func (c *Cursor) Uint32() uint32 {
	v, _, _ := c.next(FieldUint, FieldEnum, FieldInt)
	return uint32(v)
}

func (c *Cursor) Int32() int32 {
	v, _, _ := c.next(FieldInt, FieldUint, FieldEnum)
	return int32(uint32(v))
}

func (c *Cursor) Float32() float32 {
	v, _, _ := c.next(FieldFloat)
	return math.Float32frombits(uint32(v))
}

func (c *Cursor) Int64() int64 {
	v, _, _ := c.next(FieldInt64)
	return int64(v)
}

func (c *Cursor) Byte() byte {
	v, _, _ := c.next(FieldByte)
	return byte(v)
}

func (c *Cursor) StringRef() StringRef {
	v, _, ok := c.next(FieldString)
	if !ok {
		return StringRef{}
	}
	return StringRef{pool: c.rec.t.pool, off: uint32(v)}
}

func (c *Cursor) Uint32s(dst []uint32) {
	for i := range dst {
		dst[i] = c.Uint32()
	}
}

func (c *Cursor) Int32s(dst []int32) {
	for i := range dst {
		dst[i] = c.Int32()
	}
}

func (c *Cursor) Float32s(dst []float32) {
	for i := range dst {
		dst[i] = c.Float32()
	}
}

func (c *Cursor) StringRefs(dst []StringRef) {
	for i := range dst {
		dst[i] = c.StringRef()
	}
}
