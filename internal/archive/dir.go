package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/samcharles93/seatmap/internal/logger"
)

// Dir serves files from an extracted client Data directory. Names are
// matched case-insensitively; bodies are memory mapped when possible.
type Dir struct {
	root string
	log  logger.Logger

	mu    sync.Mutex
	index map[string]string
}

func NewDir(root string, log logger.Logger) (*Dir, error) {
	if log == nil {
		log = logger.Discard()
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	st, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if !st.IsDir() {
		return nil, fmt.Errorf("archive: %s is not a directory", abs)
	}
	return &Dir{root: abs, log: log.With("provider", "dir", "root", abs)}, nil
}

func (d *Dir) Root() string { return d.root }

func (d *Dir) Open(ctx context.Context, name string) (*Blob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rel, err := Clean(name)
	if err != nil {
		return nil, err
	}

	blob, err := mapFile(filepath.Join(d.root, filepath.FromSlash(rel)))
	if err == nil {
		return blob, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	actual, ok, err := d.resolve(rel)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, notFound(name)
	}
	d.log.Debug("case folded lookup", "name", name, "path", actual)
	blob, err = mapFile(filepath.Join(d.root, filepath.FromSlash(actual)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, notFound(name)
	}
	return blob, err
}

// resolve finds rel ignoring case. The tree is walked once.
func (d *Dir) resolve(rel string) (string, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.index == nil {
		index := make(map[string]string)
		err := filepath.WalkDir(d.root, func(p string, entry fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if entry.IsDir() {
				return nil
			}
			r, err := filepath.Rel(d.root, p)
			if err != nil {
				return err
			}
			r = filepath.ToSlash(r)
			index[strings.ToLower(r)] = r
			return nil
		})
		if err != nil {
			return "", false, fmt.Errorf("archive: index %s: %w", d.root, err)
		}
		d.index = index
		d.log.Debug("indexed data directory", "files", len(index))
	}
	actual, ok := d.index[strings.ToLower(rel)]
	return actual, ok, nil
}

// mapFile maps path read-only, falling back to a heap read when mmap is
// unavailable.
func mapFile(path string) (*Blob, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	st, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if st.IsDir() {
		return nil, fmt.Errorf("archive: %s is a directory", path)
	}
	size64 := st.Size()
	if size64 < 0 || size64 > int64(int(^uint(0)>>1)) {
		return nil, fmt.Errorf("archive: %s: invalid size %d", path, size64)
	}
	size := int(size64)
	if size == 0 {
		return NewBlob(nil), nil
	}

	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
	if err == nil {
		return &Blob{data: data, release: func() error { return unix.Munmap(data) }}, nil
	}

	data = make([]byte, size)
	if _, err := io.ReadFull(f, data); err != nil {
		return nil, fmt.Errorf("archive: read %s: %w", path, err)
	}
	return NewBlob(data), nil
}
