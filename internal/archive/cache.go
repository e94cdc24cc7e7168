package archive

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/zeebo/blake3"

	"github.com/samcharles93/seatmap/internal/logger"
)

const cacheSchema = `
CREATE TABLE IF NOT EXISTS files (
	name      TEXT PRIMARY KEY,
	digest    TEXT NOT NULL,
	size      INTEGER NOT NULL,
	codec     TEXT NOT NULL,
	body      BLOB NOT NULL,
	cached_at INTEGER NOT NULL
)`

// Digest is the hex blake3-256 of data.
func Digest(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Cache fronts a slower provider with a sqlite table of compressed bodies.
// Every hit is verified against its stored digest; a corrupt row is dropped
// and refetched.
type Cache struct {
	db    *sql.DB
	next  Provider
	codec Codec
	log   logger.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

type CacheStats struct {
	Files  int64 `json:"files"`
	Bytes  int64 `json:"bytes"`
	Stored int64 `json:"stored"`
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
}

func OpenCache(ctx context.Context, path string, next Provider, codec Codec, log logger.Logger) (*Cache, error) {
	if log == nil {
		log = logger.Discard()
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("archive: open cache %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, cacheSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("archive: cache schema: %w", err)
	}
	return &Cache{
		db:    db,
		next:  next,
		codec: codec,
		log:   log.With("provider", "cache", "path", path),
	}, nil
}

func (c *Cache) Open(ctx context.Context, name string) (*Blob, error) {
	key, err := Key(name)
	if err != nil {
		return nil, err
	}

	data, ok, err := c.lookup(ctx, key)
	if err != nil {
		return nil, err
	}
	if ok {
		c.hits.Add(1)
		return NewBlob(data), nil
	}
	c.misses.Add(1)

	if c.next == nil {
		return nil, notFound(name)
	}
	data, err = ReadFile(ctx, c.next, name)
	if err != nil {
		return nil, err
	}
	if err := c.store(ctx, key, data); err != nil {
		c.log.Warn("cache store failed", "name", key, "error", err)
	}
	return NewBlob(data), nil
}

func (c *Cache) lookup(ctx context.Context, key string) ([]byte, bool, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT digest, size, codec, body
		FROM files
		WHERE name = ?`, key)

	var (
		digest string
		size   int64
		codec  string
		body   []byte
	)
	err := row.Scan(&digest, &size, &codec, &body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	data, err := decompress(Codec(codec), body, size)
	if err == nil && (int64(len(data)) != size || Digest(data) != digest) {
		err = errors.New("digest mismatch")
	}
	if err != nil {
		c.log.Warn("dropping corrupt cache entry", "name", key, "error", err)
		if evictErr := c.Evict(ctx, key); evictErr != nil {
			return nil, false, evictErr
		}
		return nil, false, nil
	}
	return data, true, nil
}

func (c *Cache) store(ctx context.Context, key string, data []byte) error {
	body, codec, err := compress(c.codec, data)
	if err != nil {
		return err
	}
	_, err = c.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO files
			(name, digest, size, codec, body, cached_at)
		VALUES
			(?, ?, ?, ?, ?, ?)`,
		key, Digest(data), len(data), string(codec), body, time.Now().Unix())
	if err == nil {
		c.log.Debug("cached", "name", key, "size", len(data), "stored", len(body), "codec", codec)
	}
	return err
}

func (c *Cache) Evict(ctx context.Context, name string) error {
	key, err := Key(name)
	if err != nil {
		return err
	}
	_, err = c.db.ExecContext(ctx, `DELETE FROM files WHERE name = ?`, key)
	return err
}

func (c *Cache) Stats(ctx context.Context) (CacheStats, error) {
	stats := CacheStats{Hits: c.hits.Load(), Misses: c.misses.Load()}
	row := c.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(size), 0), COALESCE(SUM(LENGTH(body)), 0)
		FROM files`)
	if err := row.Scan(&stats.Files, &stats.Bytes, &stats.Stored); err != nil {
		return CacheStats{}, err
	}
	return stats, nil
}

func (c *Cache) Close() error {
	return c.db.Close()
}
