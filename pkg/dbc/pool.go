package dbc

import "bytes"

// StringPool owns a copy of a table's string block. Strings are addressed
// by byte offset and run to the next NUL.
type StringPool struct {
	data []byte
}

func newStringPool(block []byte) *StringPool {
	return &StringPool{data: bytes.Clone(block)}
}

// Len is the size of the string block in bytes.
func (p *StringPool) Len() int {
	if p == nil {
		return 0
	}
	return len(p.data)
}

// Valid reports whether off addresses a string inside the pool. Offset 0
// into an empty pool is the empty string.
func (p *StringPool) Valid(off uint32) bool {
	if off == 0 {
		return true
	}
	return int64(off) < int64(p.Len())
}

// At returns the string starting at off.
func (p *StringPool) At(off uint32) string {
	if int64(off) >= int64(p.Len()) {
		return ""
	}
	s := p.data[off:]
	if i := bytes.IndexByte(s, 0); i >= 0 {
		s = s[:i]
	}
	return string(s)
}

// StringRef is a string field value: an offset paired with the pool that
// owns the bytes. The pool outlives every ref that points into it.
type StringRef struct {
	pool *StringPool
	off  uint32
}

// Offset is the raw byte offset stored on disk.
func (r StringRef) Offset() uint32 { return r.off }

// String resolves the reference. The zero StringRef is "".
func (r StringRef) String() string {
	if r.pool == nil {
		return ""
	}
	return r.pool.At(r.off)
}

// Empty reports whether the referenced string has no characters.
func (r StringRef) Empty() bool {
	if r.pool == nil || int64(r.off) >= int64(r.pool.Len()) {
		return true
	}
	return r.pool.data[r.off] == 0
}
