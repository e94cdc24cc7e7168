package dbc

import (
	"encoding/binary"
	"fmt"
)

const (
	// MagicDBC is "WDBC" read as a little-endian uint32.
	MagicDBC uint32 = 0x43424457
	// MagicDB2 is "WDB2" read as a little-endian uint32.
	MagicDB2 uint32 = 0x32424457

	HeaderSize       = 20
	SparseHeaderSize = 48
	IndexEntrySize   = 6
)

// Header is the prefix shared by both table dialects.
type Header struct {
	Magic           uint32
	RecordCount     uint32
	FieldCount      uint32
	RecordSize      uint32
	StringBlockSize uint32
}

// SparseHeader is the WDB2 header. It is followed on disk by an index
// table of MaxIndex-MinIndex+1 entries.
type SparseHeader struct {
	Header
	TableHash     uint32
	Build         uint32
	Timestamp     uint32
	MinIndex      uint32
	MaxIndex      uint32
	Locale        uint32
	CopyTableSize uint32
}

// IndexEntry is one slot of the sparse index table.
type IndexEntry struct {
	RecordOffset uint32
	RecordID     uint16
}

// IndexLen returns the number of index entries that follow the header.
func (h *SparseHeader) IndexLen() uint64 {
	return uint64(h.MaxIndex) - uint64(h.MinIndex) + 1
}

func decodeHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, fmt.Errorf("%w: header needs %d bytes, have %d", ErrTruncated, HeaderSize, len(data))
	}
	le := binary.LittleEndian
	h := Header{
		Magic:           le.Uint32(data[0:4]),
		RecordCount:     le.Uint32(data[4:8]),
		FieldCount:      le.Uint32(data[8:12]),
		RecordSize:      le.Uint32(data[12:16]),
		StringBlockSize: le.Uint32(data[16:20]),
	}
	if h.Magic != MagicDBC {
		return Header{}, fmt.Errorf("%w: got %#08x want %#08x", ErrBadMagic, h.Magic, MagicDBC)
	}
	return h, nil
}

func decodeSparseHeader(data []byte) (SparseHeader, error) {
	if len(data) < SparseHeaderSize {
		return SparseHeader{}, fmt.Errorf("%w: header needs %d bytes, have %d", ErrTruncated, SparseHeaderSize, len(data))
	}
	le := binary.LittleEndian
	h := SparseHeader{
		Header: Header{
			Magic:           le.Uint32(data[0:4]),
			RecordCount:     le.Uint32(data[4:8]),
			FieldCount:      le.Uint32(data[8:12]),
			RecordSize:      le.Uint32(data[12:16]),
			StringBlockSize: le.Uint32(data[16:20]),
		},
		TableHash:     le.Uint32(data[20:24]),
		Build:         le.Uint32(data[24:28]),
		Timestamp:     le.Uint32(data[28:32]),
		MinIndex:      le.Uint32(data[32:36]),
		MaxIndex:      le.Uint32(data[36:40]),
		Locale:        le.Uint32(data[40:44]),
		CopyTableSize: le.Uint32(data[44:48]),
	}
	if h.Magic != MagicDB2 {
		return SparseHeader{}, fmt.Errorf("%w: got %#08x want %#08x", ErrBadMagic, h.Magic, MagicDB2)
	}
	if h.MaxIndex < h.MinIndex {
		return SparseHeader{}, fmt.Errorf("%w: max index %d below min index %d", ErrCorrupt, h.MaxIndex, h.MinIndex)
	}
	return h, nil
}

func decodeIndex(data []byte, n uint64) []IndexEntry {
	le := binary.LittleEndian
	out := make([]IndexEntry, n)
	for i := range out {
		p := i * IndexEntrySize
		out[i] = IndexEntry{
			RecordOffset: le.Uint32(data[p : p+4]),
			RecordID:     le.Uint16(data[p+4 : p+6]),
		}
	}
	return out
}
