package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/samcharles93/seatmap/internal/archive"
	"github.com/samcharles93/seatmap/internal/logger"
)

const (
	envInstallPath = "SEATMAP_INSTALL_PATH"
	envWorldDB     = "SEATMAP_WORLD_DB"
)

// resolveDataDirs returns the directories to read client files from.
// Explicit data directories win; otherwise the install path's Data
// directory is used, matched case-insensitively.
func resolveDataDirs(install string, dirs []string) ([]string, error) {
	var out []string
	for _, d := range dirs {
		if d = strings.TrimSpace(d); d != "" {
			out = append(out, filepath.Clean(d))
		}
	}
	if len(out) > 0 {
		return out, nil
	}

	install = strings.TrimSpace(install)
	if install == "" {
		return nil, fmt.Errorf("--install-path or --data-dir is required unless %s is set", envInstallPath)
	}
	ents, err := os.ReadDir(install)
	if err != nil {
		return nil, err
	}
	for _, e := range ents {
		if e.IsDir() && strings.EqualFold(e.Name(), "Data") {
			return []string{filepath.Join(install, e.Name())}, nil
		}
	}
	return nil, fmt.Errorf("no Data directory in %s", install)
}

// openProvider builds the provider chain from the flags. Each data
// directory contributes its loose files first and then its MPQ archives.
// The returned closer releases the archives and the cache database.
func openProvider(ctx context.Context, log logger.Logger) (archive.Provider, func() error, error) {
	dirs, err := resolveDataDirs(installPath, dataDirs)
	if err != nil {
		return nil, nil, err
	}

	var closers []func() error
	closeAll := func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = append(errs, closers[i]())
		}
		return errors.Join(errs...)
	}

	chain := make(archive.Chain, 0, 2*len(dirs))
	for _, d := range dirs {
		dir, err := archive.NewDir(d, log)
		if err != nil {
			_ = closeAll()
			return nil, nil, err
		}
		log.Debug("data directory", "path", dir.Root())
		chain = append(chain, dir)

		mpqs, err := archive.FindMPQ(dir.Root())
		if err != nil {
			_ = closeAll()
			return nil, nil, err
		}
		if len(mpqs) == 0 {
			continue
		}
		m, err := archive.OpenMPQ(dir.Root(), log)
		if err != nil {
			_ = closeAll()
			return nil, nil, err
		}
		log.Info("archives loaded", "path", dir.Root(), "count", len(m.Archives()))
		closers = append(closers, m.Close)
		chain = append(chain, m)
	}

	var provider archive.Provider = chain
	if len(chain) == 1 {
		provider = chain[0]
	}
	if cacheDB == "" {
		return provider, closeAll, nil
	}

	codec, err := archive.ParseCodec(cacheCodec)
	if err != nil {
		_ = closeAll()
		return nil, nil, err
	}
	if err := os.MkdirAll(filepath.Dir(cacheDB), 0o755); err != nil {
		_ = closeAll()
		return nil, nil, err
	}
	cache, err := archive.OpenCache(ctx, cacheDB, provider, codec, log)
	if err != nil {
		_ = closeAll()
		return nil, nil, err
	}
	closers = append(closers, cache.Close)
	return cache, closeAll, nil
}

// readModelFile reads a model from the local file system when name points
// at an existing file, and from provider otherwise.
func readModelFile(ctx context.Context, provider archive.Provider, name string) ([]byte, error) {
	if st, err := os.Stat(name); err == nil && !st.IsDir() {
		return os.ReadFile(name)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	if provider == nil {
		return nil, fmt.Errorf("%s: %w", name, archive.ErrNotFound)
	}
	return archive.ReadFile(ctx, provider, name)
}
