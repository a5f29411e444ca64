package ares

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// CacheStore persists registry payloads in a single sqlite table keyed by
// registry ID. Writes are transactional upserts; concurrent resolves against
// the same file serialize writers at the storage layer.
type CacheStore struct {
	db *sqlx.DB
}

// CacheStats summarizes the cache contents.
type CacheStats struct {
	Rows        int64
	OldestFetch string
	NewestFetch string
}

const cacheSchema = `
CREATE TABLE IF NOT EXISTS ares_vr_cache (
	ico TEXT PRIMARY KEY,
	payload TEXT NOT NULL,
	fetched_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_ares_vr_cache_fetched_at ON ares_vr_cache(fetched_at);
`

// NewCacheStore opens (or creates) the cache database at path and runs the
// idempotent schema migration.
func NewCacheStore(path string) (*CacheStore, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping cache database: %w", err)
	}
	// sqlite serializes writers; a single connection avoids SQLITE_BUSY
	db.SetMaxOpenConns(1)

	s := &CacheStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewCacheStoreWithDB wraps an existing connection without migrating; used by
// tests that mock the SQL layer.
func NewCacheStoreWithDB(db *sql.DB, driverName string) *CacheStore {
	return &CacheStore{db: sqlx.NewDb(db, driverName)}
}

func (s *CacheStore) migrate() error {
	if _, err := s.db.Exec(cacheSchema); err != nil {
		return fmt.Errorf("%w: migrate: %v", ErrCacheIO, err)
	}
	return nil
}

// Get returns the serialized payload for ico, or ok=false on a miss.
func (s *CacheStore) Get(ctx context.Context, ico string) (payload string, ok bool, err error) {
	err = s.db.QueryRowxContext(ctx,
		`SELECT payload FROM ares_vr_cache WHERE ico = ?`, ico,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: get %s: %v", ErrCacheIO, ico, err)
	}
	return payload, true, nil
}

// Put upserts the payload for ico with the current UTC fetch timestamp.
func (s *CacheStore) Put(ctx context.Context, ico, payload string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ares_vr_cache(ico, payload, fetched_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(ico) DO UPDATE SET
		   payload = excluded.payload,
		   fetched_at = excluded.fetched_at`,
		ico, payload, now,
	)
	if err != nil {
		return fmt.Errorf("%w: put %s: %v", ErrCacheIO, ico, err)
	}
	return nil
}

// Purge removes the cached row for ico; an empty ico drops every row.
// Returns the number of rows removed.
func (s *CacheStore) Purge(ctx context.Context, ico string) (int64, error) {
	query := `DELETE FROM ares_vr_cache WHERE ico = ?`
	args := []interface{}{ico}
	if ico == "" {
		query = `DELETE FROM ares_vr_cache`
		args = nil
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: purge %s: %v", ErrCacheIO, ico, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: purge %s: %v", ErrCacheIO, ico, err)
	}
	return n, nil
}

// Stats reports row count and the fetch-timestamp range.
func (s *CacheStore) Stats(ctx context.Context) (CacheStats, error) {
	var st CacheStats
	var oldest, newest sql.NullString
	err := s.db.QueryRowxContext(ctx,
		`SELECT COUNT(*), MIN(fetched_at), MAX(fetched_at) FROM ares_vr_cache`,
	).Scan(&st.Rows, &oldest, &newest)
	if err != nil {
		return CacheStats{}, fmt.Errorf("%w: stats: %v", ErrCacheIO, err)
	}
	st.OldestFetch = oldest.String
	st.NewestFetch = newest.String
	return st, nil
}

// Close releases the underlying database handle.
func (s *CacheStore) Close() error {
	return s.db.Close()
}
