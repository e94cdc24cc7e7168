package archive

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/suprsokr/go-mpq"

	"github.com/samcharles93/seatmap/internal/logger"
)

// MPQ serves files out of the client's MPQ archives. Archives are searched
// in load priority order and the first one holding a file wins.
type MPQ struct {
	root     string
	log      logger.Logger
	scratch  string
	mu       sync.Mutex
	archives []mpqArchive
	seq      int
}

type mpqArchive struct {
	path string
	a    mpqReader
}

// mpqReader is the part of an opened archive MPQ uses.
type mpqReader interface {
	HasFile(name string) bool
	ExtractFile(name, dest string) error
	Close() error
}

// FindMPQ lists the MPQ archives under root, recursing into locale
// directories, highest priority first.
func FindMPQ(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(p), ".mpq") {
			paths = append(paths, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(paths, func(a, b string) int {
		pa, pb := archivePriority(root, a), archivePriority(root, b)
		if c := cmp.Compare(pb, pa); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
	return paths, nil
}

// archivePriority ranks an archive path relative to root. Patches outrank
// base archives, higher patch numbers outrank lower ones, and at equal rank
// archives in a locale directory outrank shared ones.
func archivePriority(root, p string) int {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		rel = p
	}
	localeBonus := 0
	if strings.ContainsRune(filepath.ToSlash(rel), '/') {
		localeBonus = 1
	}
	name := strings.ToLower(strings.TrimSuffix(filepath.Base(p), filepath.Ext(p)))

	if strings.HasPrefix(name, "patch") {
		return 1000 + patchLevel(name)*10 + localeBonus
	}
	base := 0
	switch {
	case strings.HasPrefix(name, "lichking"):
		base = 4
	case strings.HasPrefix(name, "expansion"):
		base = 3
	case strings.HasPrefix(name, "common-2"):
		base = 2
	case strings.HasPrefix(name, "common"), strings.HasPrefix(name, "locale"):
		base = 1
	}
	return base*10 + localeBonus
}

// patchLevel reads the suffix of patch, patch-2, patch-enUS-3 or patch-A.
// Lettered patches load above numbered ones.
func patchLevel(name string) int {
	i := strings.LastIndexByte(name, '-')
	if i < 0 {
		return 1
	}
	suffix := name[i+1:]
	if n, err := strconv.Atoi(suffix); err == nil {
		return n
	}
	if len(suffix) == 1 && suffix[0] >= 'a' && suffix[0] <= 'z' {
		return 10 + int(suffix[0]-'a')
	}
	return 1
}

// OpenMPQ opens every archive under root. The scratch directory for
// extracted files is removed by Close.
func OpenMPQ(root string, log logger.Logger) (*MPQ, error) {
	if log == nil {
		log = logger.Discard()
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	paths, err := FindMPQ(abs)
	if err != nil {
		return nil, err
	}
	scratch, err := os.MkdirTemp("", "seatmap-mpq-")
	if err != nil {
		return nil, err
	}

	m := &MPQ{root: abs, log: log, scratch: scratch}
	for _, p := range paths {
		a, err := mpq.Open(p)
		if err != nil {
			_ = m.Close()
			return nil, fmt.Errorf("open archive %s: %w", p, err)
		}
		m.archives = append(m.archives, mpqArchive{path: p, a: a})
		log.Debug("archive loaded", "path", p)
	}
	return m, nil
}

func (m *MPQ) Root() string { return m.root }

// Archives returns the loaded archive paths in search order.
func (m *MPQ) Archives() []string {
	out := make([]string, len(m.archives))
	for i, a := range m.archives {
		out[i] = a.path
	}
	return out
}

func (m *MPQ) Open(ctx context.Context, name string) (*Blob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cleaned, err := Clean(name)
	if err != nil {
		return nil, err
	}
	internal := strings.ReplaceAll(cleaned, "/", `\`)

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.archives {
		if !a.a.HasFile(internal) {
			continue
		}
		data, err := m.extract(a, internal)
		if err != nil {
			return nil, err
		}
		m.log.Debug("archive hit", "name", cleaned, "archive", filepath.Base(a.path), "bytes", len(data))
		return NewBlob(data), nil
	}
	return nil, notFound(name)
}

// extract copies one file out through the scratch directory. Callers hold mu.
func (m *MPQ) extract(a mpqArchive, internal string) ([]byte, error) {
	m.seq++
	dest := filepath.Join(m.scratch, strconv.Itoa(m.seq))
	defer func() { _ = os.Remove(dest) }()
	if err := a.a.ExtractFile(internal, dest); err != nil {
		return nil, fmt.Errorf("extract %s from %s: %w", internal, a.path, err)
	}
	return os.ReadFile(dest)
}

func (m *MPQ) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var errs []error
	for _, a := range m.archives {
		if err := a.a.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	m.archives = nil
	if m.scratch != "" {
		errs = append(errs, os.RemoveAll(m.scratch))
		m.scratch = ""
	}
	return errors.Join(errs...)
}
