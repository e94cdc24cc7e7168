package m2

import (
	"encoding/binary"
	"fmt"
	"iter"
)

// Array is an on-disk {count, offset} descriptor. Offset is relative to the
// start of the model buffer, including for arrays nested in other arrays.
type Array[T any] struct {
	Count  uint32
	Offset uint32
}

// Empty reports whether the descriptor has no elements.
func (a Array[T]) Empty() bool { return a.Count == 0 }

func elemSize[T any]() int {
	var zero T
	n := binary.Size(zero)
	if n <= 0 {
		panic(fmt.Sprintf("m2: %T has no fixed binary size", zero))
	}
	return n
}

// Resolve checks that the array lies inside buf and returns a view of it.
// The view aliases buf.
func Resolve[T any](buf []byte, a Array[T]) (View[T], error) {
	size := elemSize[T]()
	end := uint64(a.Offset) + uint64(a.Count)*uint64(size)
	if end > uint64(len(buf)) {
		return View[T]{}, fmt.Errorf("%w: %d x %d bytes at %#x exceeds %d byte buffer", ErrOutOfBounds, a.Count, size, a.Offset, len(buf))
	}
	return View[T]{data: buf[a.Offset:end], n: int(a.Count), size: size}, nil
}

// ElementAt decodes element i of the array.
func ElementAt[T any](buf []byte, a Array[T], i int) (T, error) {
	var zero T
	if i < 0 || uint64(i) >= uint64(a.Count) {
		return zero, fmt.Errorf("%w: index %d, count %d", ErrOutOfRange, i, a.Count)
	}
	v, err := Resolve(buf, a)
	if err != nil {
		return zero, err
	}
	return v.At(i)
}

// View is a bounds-checked window over a resolved array. Elements are
// decoded on access.
type View[T any] struct {
	data []byte
	n    int
	size int
}

func (v View[T]) Len() int { return v.n }

func (v View[T]) At(i int) (T, error) {
	var out T
	if i < 0 || i >= v.n {
		return out, fmt.Errorf("%w: index %d, count %d", ErrOutOfRange, i, v.n)
	}
	p := i * v.size
	if _, err := binary.Decode(v.data[p:p+v.size], binary.LittleEndian, &out); err != nil {
		return out, err
	}
	return out, nil
}

// Copy decodes every element into a new slice that does not alias the
// model buffer.
func (v View[T]) Copy() ([]T, error) {
	out := make([]T, v.n)
	if v.n == 0 {
		return out, nil
	}
	if _, err := binary.Decode(v.data, binary.LittleEndian, out); err != nil {
		return nil, err
	}
	return out, nil
}

// All yields each element in order.
func (v View[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i := range v.n {
			e, err := v.At(i)
			if err != nil {
				return
			}
			if !yield(i, e) {
				return
			}
		}
	}
}

// Last returns the final element, or false when the view is empty.
func (v View[T]) Last() (T, bool, error) {
	var zero T
	if v.n == 0 {
		return zero, false, nil
	}
	e, err := v.At(v.n - 1)
	return e, err == nil, err
}

// LastKey returns the last value of the last sequence in a track. It
// reports false when the track has no sequences or the last one is empty.
func LastKey[T any](buf []byte, t Track[T]) (T, bool, error) {
	var zero T
	seqs, err := Resolve(buf, t.Values)
	if err != nil {
		return zero, false, err
	}
	last, ok, err := seqs.Last()
	if err != nil || !ok {
		return zero, false, err
	}
	keys, err := Resolve(buf, last)
	if err != nil {
		return zero, false, err
	}
	return keys.Last()
}
