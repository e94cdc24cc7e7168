package dbc

import (
	"fmt"
	"iter"
)

// Entry is implemented by pointer-to-struct record types. TableName names
// the registered layout and ScanRecord fills the struct from a cursor.
type Entry[T any] interface {
	*T
	TableName() string
	ScanRecord(c *Cursor) error
}

// Store is a typed, id-keyed view of a table.
type Store[T any] struct {
	table   *Table
	entries []T
	byID    map[uint32]int
	ids     []uint32
}

// Load decodes data with the layout registered for T and scans every
// record into a T.
func Load[T any, P Entry[T]](data []byte) (*Store[T], error) {
	meta := MustLookup(P(new(T)).TableName())
	t, err := Decode(meta, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ShortName(meta.Name), err)
	}
	return FromTable[T, P](t)
}

// FromTable scans an already decoded table.
func FromTable[T any, P Entry[T]](t *Table) (*Store[T], error) {
	s := &Store[T]{
		table:   t,
		entries: make([]T, 0, len(t.byID)),
		byID:    make(map[uint32]int, len(t.byID)),
		ids:     make([]uint32, 0, len(t.byID)),
	}
	for id, rec := range t.All() {
		var e T
		c := rec.Cursor()
		if err := P(&e).ScanRecord(c); err != nil {
			return nil, fmt.Errorf("%s id %d: %w", ShortName(t.meta.Name), id, err)
		}
		if err := c.Err(); err != nil {
			return nil, fmt.Errorf("%s id %d: %w", ShortName(t.meta.Name), id, err)
		}
		s.byID[id] = len(s.entries)
		s.entries = append(s.entries, e)
		s.ids = append(s.ids, id)
	}
	return s, nil
}

func (s *Store[T]) Table() *Table { return s.table }

// Len is the record count declared by the file header.
func (s *Store[T]) Len() int { return s.table.Len() }

func (s *Store[T]) Contains(id uint32) bool {
	_, ok := s.byID[id]
	return ok
}

func (s *Store[T]) Lookup(id uint32) (*T, bool) {
	i, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	return &s.entries[i], true
}

func (s *Store[T]) Get(id uint32) (*T, error) {
	e, ok := s.Lookup(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s id %d", ErrNotFound, ShortName(s.table.meta.Name), id)
	}
	return e, nil
}

// All yields every entry. The order is unspecified.
func (s *Store[T]) All() iter.Seq2[uint32, *T] {
	return func(yield func(uint32, *T) bool) {
		for i, id := range s.ids {
			if !yield(id, &s.entries[i]) {
				return
			}
		}
	}
}
