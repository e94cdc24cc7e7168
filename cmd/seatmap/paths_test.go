package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/suprsokr/go-mpq"

	"github.com/samcharles93/seatmap/internal/archive"
	"github.com/samcharles93/seatmap/internal/logger"
)

func TestResolveDataDirs(t *testing.T) {
	t.Run("explicit data dirs win", func(t *testing.T) {
		install := t.TempDir()
		got, err := resolveDataDirs(install, []string{" /srv/a/ ", "", "/srv/b"})
		if err != nil {
			t.Fatalf("resolveDataDirs returned error: %v", err)
		}
		want := []string{filepath.Clean("/srv/a"), "/srv/b"}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("got %v want %v", got, want)
		}
	})

	t.Run("install Data dir matched case-insensitively", func(t *testing.T) {
		install := t.TempDir()
		if err := os.Mkdir(filepath.Join(install, "DATA"), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		got, err := resolveDataDirs(install, nil)
		if err != nil {
			t.Fatalf("resolveDataDirs returned error: %v", err)
		}
		if want := []string{filepath.Join(install, "DATA")}; !reflect.DeepEqual(got, want) {
			t.Fatalf("got %v want %v", got, want)
		}
	})

	t.Run("install without Data", func(t *testing.T) {
		if _, err := resolveDataDirs(t.TempDir(), nil); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("nothing configured", func(t *testing.T) {
		if _, err := resolveDataDirs("", nil); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestReadModelFile(t *testing.T) {
	dir := t.TempDir()
	local := filepath.Join(dir, "local.m2")
	if err := os.WriteFile(local, []byte("local"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	mem := archive.Mem{}
	mem.Put(`Creature\A\A.m2`, []byte("archived"))
	ctx := context.Background()

	data, err := readModelFile(ctx, mem, local)
	if err != nil || string(data) != "local" {
		t.Fatalf("local file: %q %v", data, err)
	}
	data, err = readModelFile(ctx, mem, `creature\a\a.m2`)
	if err != nil || string(data) != "archived" {
		t.Fatalf("archived file: %q %v", data, err)
	}
	if _, err := readModelFile(ctx, nil, "missing.m2"); !errors.Is(err, archive.ErrNotFound) {
		t.Fatalf("missing without provider: %v", err)
	}
}

func TestOpenProviderReadsInstallArchives(t *testing.T) {
	install := t.TempDir()
	data := filepath.Join(install, "Data")
	if err := os.Mkdir(data, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	src := filepath.Join(t.TempDir(), "vehicle.dbc")
	if err := os.WriteFile(src, []byte("WDBC"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	a, err := mpq.Create(filepath.Join(data, "common.MPQ"), 16)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := a.AddFile(src, `DBFilesClient\Vehicle.dbc`); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	installPath, dataDirs, cacheDB = install, nil, ""
	t.Cleanup(func() { installPath = "" })

	provider, closeProvider, err := openProvider(context.Background(), logger.Discard())
	if err != nil {
		t.Fatalf("openProvider: %v", err)
	}
	defer func() { _ = closeProvider() }()

	got, err := archive.ReadFile(context.Background(), provider, `DBFilesClient\Vehicle.dbc`)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "WDBC" {
		t.Fatalf("got %q", got)
	}
}
