// Package jitcache records which source files have been JIT-compiled,
// keyed by a content hash of the source text. It stores only the hash,
// a cache-entry ID, and a timestamp, not compiled code: `tetra run
// --jit --cache` reports a hit for an unchanged file but still lowers
// and runs it. It never changes language semantics — see SPEC_FULL.md
// §6.3. Grounded on the teacher's pkg/database/sqlite.go
// connection setup (single-connection pure-Go SQLite via
// modernc.org/sqlite) and its pervasive use of google/uuid for entity
// identifiers.
package jitcache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Cache stores one row per distinct source-content hash, recording
// when it was last compiled and a cache-entry UUID for diagnostics.
type Cache struct {
	db *sql.DB
}

// Open opens (creating if necessary) the SQLite-backed cache at path.
// Pass ":memory:" for an ephemeral cache, used by tests.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("jitcache: open: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	const schema = `
CREATE TABLE IF NOT EXISTS compilations (
	id          TEXT PRIMARY KEY,
	source_hash TEXT NOT NULL UNIQUE,
	compiled_at INTEGER NOT NULL
);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("jitcache: migrate: %w", err)
	}
	return &Cache{db: db}, nil
}

func (c *Cache) Close() error { return c.db.Close() }

// HashSource returns the cache key for a source file's contents.
func HashSource(source string) string {
	sum := sha256.Sum256([]byte(source))
	return hex.EncodeToString(sum[:])
}

// Lookup reports whether hash has already been compiled.
func (c *Cache) Lookup(ctx context.Context, hash string) (bool, error) {
	var id string
	err := c.db.QueryRowContext(ctx, `SELECT id FROM compilations WHERE source_hash = ?`, hash).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("jitcache: lookup: %w", err)
	}
	return true, nil
}

// Record marks hash as compiled, assigning it a fresh cache-entry ID.
func (c *Cache) Record(ctx context.Context, hash string) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO compilations (id, source_hash, compiled_at) VALUES (?, ?, ?)`,
		uuid.NewString(), hash, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("jitcache: record: %w", err)
	}
	return nil
}
