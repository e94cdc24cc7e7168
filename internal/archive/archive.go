// Package archive supplies raw client files to the decoders.
//
// A Provider resolves a client-relative name such as
// `DBFilesClient\Vehicle.dbc` to its bytes. MPQ reads the client's
// archives, Dir serves an extracted Data directory, Chain tries several
// providers in order and Cache keeps compressed copies in a sqlite database.
package archive

import (
	"context"
	"errors"
	"path"
	"strings"
	"sync"
)

// ErrNotFound is returned when no provider has the requested file.
var ErrNotFound = errors.New("archive: file not found")

// ErrInvalidName rejects names escaping the provider root.
var ErrInvalidName = errors.New("archive: invalid file name")

type Provider interface {
	Open(ctx context.Context, name string) (*Blob, error)
}

// Blob is a file body. Bytes is valid until Close.
type Blob struct {
	data    []byte
	release func() error
	once    sync.Once
	err     error
}

// NewBlob wraps heap memory; Close is a no-op.
func NewBlob(data []byte) *Blob {
	return &Blob{data: data}
}

func (b *Blob) Bytes() []byte { return b.data }

func (b *Blob) Len() int { return len(b.data) }

// Mapped reports whether the body is backed by a file mapping.
func (b *Blob) Mapped() bool { return b.release != nil }

func (b *Blob) Close() error {
	b.once.Do(func() {
		if b.release != nil {
			b.err = b.release()
		}
		b.data = nil
	})
	return b.err
}

// ReadFile opens name and returns a heap copy that outlives the provider.
func ReadFile(ctx context.Context, p Provider, name string) ([]byte, error) {
	blob, err := p.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	data := blob.Bytes()
	if blob.Mapped() {
		data = append([]byte(nil), data...)
	}
	if err := blob.Close(); err != nil {
		return nil, err
	}
	return data, nil
}

// Clean converts a client name to a slash separated relative path.
func Clean(name string) (string, error) {
	name = strings.ReplaceAll(strings.TrimSpace(name), `\`, "/")
	name = strings.TrimLeft(name, "/")
	if name == "" {
		return "", ErrInvalidName
	}
	cleaned := path.Clean(name)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", ErrInvalidName
	}
	return cleaned, nil
}

// Key is the case-folded form used for lookups; the client file system is
// case-insensitive.
func Key(name string) (string, error) {
	cleaned, err := Clean(name)
	if err != nil {
		return "", err
	}
	return strings.ToLower(cleaned), nil
}

// Chain tries providers in order and returns the first hit.
type Chain []Provider

func (c Chain) Open(ctx context.Context, name string) (*Blob, error) {
	for _, p := range c {
		blob, err := p.Open(ctx, name)
		if err == nil {
			return blob, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	return nil, notFound(name)
}

// Mem is an in-memory provider keyed by case-folded name.
type Mem map[string][]byte

func (m Mem) Put(name string, data []byte) {
	key, err := Key(name)
	if err != nil {
		panic(err)
	}
	m[key] = data
}

func (m Mem) Open(ctx context.Context, name string) (*Blob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key, err := Key(name)
	if err != nil {
		return nil, err
	}
	data, ok := m[key]
	if !ok {
		return nil, notFound(name)
	}
	return NewBlob(data), nil
}

func notFound(name string) error {
	return &NotFoundError{Name: name}
}

// NotFoundError names the missing file and matches ErrNotFound.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string { return "archive: file not found: " + e.Name }

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }
