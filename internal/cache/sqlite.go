package cache

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
//
// Reads are read-mostly and may run concurrently; writes are serialized.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore opens (creating if needed) a SQLite-backed fragment cache.
// Use ":memory:" for an in-memory store, or a file path for persistence.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if dbPath == ":memory:" {
		// Each pooled connection gets its own in-memory database; pin the
		// pool to one so every caller sees the same schema and rows.
		db.SetMaxOpenConns(1)
	}

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS fragments (
		key TEXT PRIMARY KEY,
		lang TEXT NOT NULL,
		output BLOB NOT NULL,
		checksum TEXT NOT NULL,
		pass_id TEXT,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_fragments_created_at ON fragments(created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Get returns the cached output for key, verifying the stored checksum
// before serving it.
func (s *SQLiteStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var output []byte
	var checksum string
	err := s.db.QueryRowContext(ctx,
		"SELECT output, checksum FROM fragments WHERE key = ?", key,
	).Scan(&output, &checksum)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query fragment: %w", err)
	}

	if resultChecksum(key, string(output)) != checksum {
		return "", false, fmt.Errorf("fragment %s: %w", key, ErrChecksumMismatch)
	}
	return string(output), true, nil
}

// Put stores the output for key, replacing any previous entry.
func (s *SQLiteStore) Put(ctx context.Context, key, lang, output, passID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO fragments (key, lang, output, checksum, pass_id, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		key, lang, []byte(output), resultChecksum(key, output), passID, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert fragment: %w", err)
	}
	return nil
}

// Delete removes an entry; a missing key is a no-op.
func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, "DELETE FROM fragments WHERE key = ?", key); err != nil {
		return fmt.Errorf("delete fragment: %w", err)
	}
	return nil
}

// Stats reports entry count, stored bytes, and oldest entry age.
func (s *SQLiteStore) Stats(ctx context.Context) (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var st Stats
	var oldest sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(LENGTH(output)), 0), MIN(created_at) FROM fragments",
	).Scan(&st.Entries, &st.Bytes, &oldest)
	if err != nil {
		return Stats{}, fmt.Errorf("query stats: %w", err)
	}
	if oldest.Valid {
		st.Oldest = time.Unix(oldest.Int64, 0)
	}
	return st, nil
}

// Clear removes all entries.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, "DELETE FROM fragments"); err != nil {
		return fmt.Errorf("clear fragments: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
